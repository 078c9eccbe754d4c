package adapters

import (
	"archive/tar"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/ulikunitz/xz"

	"slack-thread-dump-tap/internal/ports"
	"slack-thread-dump-tap/internal/shared"
	"slack-thread-dump-tap/internal/types"
)

const defaultArchiveTimeout = 60 * time.Second
const defaultArchiveRetries = 3
const defaultArchiveRetryDelay = 200 * time.Millisecond
const maxArchiveRetryDelay = 2 * time.Second
const defaultArchiveMaxBytes int64 = 512 << 20

// ArchiveSourceAdapter downloads a tarball over HTTP (or reads it from a
// local path), checks its sha256 and optional detached OpenPGP signature,
// and unpacks it.
type ArchiveSourceAdapter struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	// MaxBytes caps every download. Zero means defaultArchiveMaxBytes.
	MaxBytes int64
	// Progress receives a download progress bar. Nil disables it.
	Progress io.Writer
}

// downloadSink is a download destination that can be emptied before a
// retry.
type downloadSink interface {
	io.Writer
	reset() error
}

// fileSink streams into a file and a running hash.
type fileSink struct {
	file *os.File
	hash hash.Hash
}

func (s *fileSink) Write(p []byte) (int, error) {
	n, err := s.file.Write(p)
	s.hash.Write(p[:n])
	return n, err
}

func (s *fileSink) reset() error {
	s.hash.Reset()
	if err := s.file.Truncate(0); err != nil {
		return err
	}
	_, err := s.file.Seek(0, io.SeekStart)
	return err
}

type bufferSink struct {
	bytes.Buffer
}

func (s *bufferSink) reset() error {
	s.Reset()
	return nil
}

func NewArchiveSourceAdapter(timeoutSec int, retries int) ArchiveSourceAdapter {
	return ArchiveSourceAdapter{
		Timeout:    normalizeArchiveTimeout(timeoutSec),
		Retries:    normalizeArchiveRetries(retries),
		RetryDelay: defaultArchiveRetryDelay,
	}
}

func (a ArchiveSourceAdapter) Fetch(ctx context.Context, source types.Source, destDir string) (types.FetchedSource, error) {
	if strings.TrimSpace(source.SHA256) == "" {
		return types.FetchedSource{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("archive source requires sha256")
	}
	tmp, err := os.CreateTemp("", "tap-archive-*")
	if err != nil {
		return types.FetchedSource{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create download file").
			WithCause(err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	sink := &fileSink{file: tmp, hash: sha256.New()}
	if err := a.download(ctx, source.URL, sink); err != nil {
		return types.FetchedSource{}, err
	}
	digest := hex.EncodeToString(sink.hash.Sum(nil))
	if !strings.EqualFold(digest, strings.TrimSpace(source.SHA256)) {
		return types.FetchedSource{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("archive checksum mismatch").
			WithCause(fmt.Errorf("want %s got %s", source.SHA256, digest))
	}
	if strings.TrimSpace(source.Signature) != "" {
		if err := a.verifySignature(ctx, tmp, source); err != nil {
			return types.FetchedSource{}, err
		}
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return types.FetchedSource{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to rewind archive").
			WithCause(err)
	}
	if err := extractArchive(tmp, source.URL, destDir); err != nil {
		return types.FetchedSource{}, err
	}
	root, err := archiveRoot(destDir)
	if err != nil {
		return types.FetchedSource{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read extracted archive").
			WithCause(err)
	}
	return types.FetchedSource{Dir: root, Kind: types.SourceKindArchive, Revision: digest}, nil
}

func (a ArchiveSourceAdapter) verifySignature(ctx context.Context, archive *os.File, source types.Source) error {
	var sig, key bufferSink
	if err := a.download(ctx, source.Signature, &sig); err != nil {
		return err
	}
	if err := a.download(ctx, source.SigningKey, &key); err != nil {
		return err
	}
	keyring, err := openpgp.ReadArmoredKeyRing(&key)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid signing key").
			WithCause(err)
	}
	if _, err := archive.Seek(0, io.SeekStart); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to rewind archive").
			WithCause(err)
	}
	if _, err := openpgp.CheckArmoredDetachedSignature(keyring, archive, &sig, nil); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("archive signature verification failed").
			WithCause(err)
	}
	return nil
}

// download copies ref into w, at most MaxBytes. Remote refs are retried on
// transport errors and 5xx/429 responses; w is reset before each retry.
func (a ArchiveSourceAdapter) download(ctx context.Context, ref string, w downloadSink) error {
	if !isRemote(ref) {
		file, err := os.Open(shared.LocalPath(ref))
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("archive file not found").
				WithCause(err)
		}
		defer file.Close()
		n, err := io.Copy(w, io.LimitReader(file, a.maxBytes()+1))
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read archive file").
				WithCause(err)
		}
		if n > a.maxBytes() {
			return a.tooLarge(ref)
		}
		return nil
	}
	retries := a.Retries
	if retries <= 0 {
		retries = defaultArchiveRetries
	}
	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt > 0 {
			if err := w.reset(); err != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("failed to reset download").
					WithCause(err)
			}
		}
		retry, err := a.downloadOnce(ctx, ref, w)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || attempt == retries-1 {
			return err
		}
		log.Debug().Str("url", ref).Int("attempt", attempt+1).Err(err).Msg("retrying download")
		time.Sleep(a.retryDelay(attempt))
	}
	return lastErr
}

func (a ArchiveSourceAdapter) downloadOnce(ctx context.Context, url string, w io.Writer) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to create download request").
			WithCause(err)
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = defaultArchiveTimeout
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return true, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("archive download failed").
			WithCause(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retry := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
		code := errbuilder.CodeInternal
		if resp.StatusCode == http.StatusNotFound {
			code = errbuilder.CodeNotFound
		}
		return retry, errbuilder.New().
			WithCode(code).
			WithMsg("archive download failed").
			WithCause(shared.HTTPStatusError(resp.StatusCode, url))
	}
	if resp.ContentLength > a.maxBytes() {
		return false, a.tooLarge(url)
	}
	var body io.Reader = io.LimitReader(resp.Body, a.maxBytes()+1)
	if a.Progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(a.Progress),
			progressbar.OptionSetDescription("downloading"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		body = io.TeeReader(body, bar)
	}
	n, err := io.Copy(w, body)
	if err != nil {
		return true, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("archive download interrupted").
			WithCause(err)
	}
	if n > a.maxBytes() {
		return false, a.tooLarge(url)
	}
	return false, nil
}

func (a ArchiveSourceAdapter) maxBytes() int64 {
	if a.MaxBytes <= 0 {
		return defaultArchiveMaxBytes
	}
	return a.MaxBytes
}

func (a ArchiveSourceAdapter) tooLarge(ref string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("download exceeds %d bytes", a.maxBytes())).
		WithCause(fmt.Errorf("%s", ref))
}

func (a ArchiveSourceAdapter) retryDelay(attempt int) time.Duration {
	base := a.RetryDelay
	if base <= 0 {
		base = defaultArchiveRetryDelay
	}
	delay := base * time.Duration(1<<attempt)
	if delay > maxArchiveRetryDelay {
		delay = maxArchiveRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

func extractArchive(r io.Reader, name string, destDir string) error {
	lower := strings.ToLower(name)
	var stream io.Reader = r
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return invalidArchive(err)
		}
		defer gz.Close()
		stream = gz
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return invalidArchive(err)
		}
		stream = xzReader
	}
	if err := untar(stream, destDir); err != nil {
		return invalidArchive(err)
	}
	return nil
}

func untar(r io.Reader, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}
		name := path.Clean(strings.TrimPrefix(header.Name, "./"))
		if name == "." {
			continue
		}
		if path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
			return fmt.Errorf("archive entry escapes destination: %s", header.Name)
		}
		target := filepath.Join(destDir, filepath.FromSlash(name))
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create dir %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("prepare file %s: %w", target, err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode).Perm())
			if err != nil {
				return fmt.Errorf("create file %s: %w", target, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("write file %s: %w", target, err)
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("close file %s: %w", target, err)
			}
		default:
			log.Debug().Str("entry", header.Name).Msg("skipping archive entry")
		}
	}
}

// archiveRoot descends into a single top-level directory, the usual
// layout of release tarballs.
func archiveRoot(destDir string) (string, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(destDir, entries[0].Name()), nil
	}
	return destDir, nil
}

func invalidArchive(err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("failed to extract archive").
		WithCause(err)
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func normalizeArchiveTimeout(value int) time.Duration {
	timeout := time.Duration(value) * time.Second
	if timeout <= 0 {
		return defaultArchiveTimeout
	}
	return timeout
}

func normalizeArchiveRetries(value int) int {
	if value <= 0 {
		return defaultArchiveRetries
	}
	return value
}

var _ ports.SourcePort = ArchiveSourceAdapter{}
