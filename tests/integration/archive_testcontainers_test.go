//go:build integration

package integration

import (
	"archive/tar"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"slack-thread-dump-tap/internal/app"
	"slack-thread-dump-tap/internal/core"
	"slack-thread-dump-tap/tests/testutil"
)

func TestInstallFromArchiveServedByContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers test in short mode")
	}
	ctx := t.Context()
	root := testutil.RepoRoot(t)

	archive := buildReleaseArchive(t, root)
	sum := sha256.Sum256(archive)
	serveDir := t.TempDir()
	archivePath := filepath.Join(serveDir, "slack-thread-dump-0.1.0.tar.gz")
	require.NoError(t, os.WriteFile(archivePath, archive, 0o644))

	endpoint, cleanup := startArchiveServer(ctx, t, archivePath)
	t.Cleanup(cleanup)

	dir := t.TempDir()
	formula := filepath.Join(dir, "slack-thread-dump.yaml")
	content := testutil.FormulaWithSource(
		"url: "+endpoint+"/slack-thread-dump-0.1.0.tar.gz",
		"sha256: "+hex.EncodeToString(sum[:]),
	)
	require.NoError(t, os.WriteFile(formula, []byte(content), 0o644))

	prefix := filepath.Join(dir, "prefix")
	service := app.NewService(app.ServiceConfig{HTTPTimeoutSec: 10, HTTPRetries: 2})
	result, err := service.Install(ctx, app.InstallRequest{
		FormulaPath: formula,
		IndexPath:   filepath.Join(root, "fixtures", "index.yaml"),
		Prefix:      prefix,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Report.Verify.ExitCode)
	assert.FileExists(t, filepath.Join(prefix, "bin", "slack-thread-dump"))

	t.Run("checksum mismatch is a source failure", func(t *testing.T) {
		bad := testutil.FormulaWithSource(
			"url: "+endpoint+"/slack-thread-dump-0.1.0.tar.gz",
			"sha256: "+hex.EncodeToString(make([]byte, 32)),
		)
		badPath := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(badPath, []byte(bad), 0o644))
		_, err := service.Install(ctx, app.InstallRequest{
			FormulaPath: badPath,
			IndexPath:   filepath.Join(root, "fixtures", "index.yaml"),
			Prefix:      t.TempDir(),
		})
		var srcErr *core.SourceUnavailableError
		require.ErrorAs(t, err, &srcErr)
	})
}

func buildReleaseArchive(t *testing.T, root string) []byte {
	t.Helper()
	script, err := os.ReadFile(filepath.Join(root, "fixtures", "source", "slack-thread-dump.sh"))
	require.NoError(t, err)
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "slack-thread-dump-0.1.0/",
		Mode:     0o755,
		Typeflag: tar.TypeDir,
	}))
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "slack-thread-dump-0.1.0/slack-thread-dump.sh",
		Mode:     0o755,
		Size:     int64(len(script)),
		Typeflag: tar.TypeReg,
	}))
	_, err = tw.Write(script)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func startArchiveServer(ctx context.Context, t *testing.T, archivePath string) (string, func()) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "python:3.12-alpine",
		ExposedPorts: []string{"8080/tcp"},
		Files: []testcontainers.ContainerFile{{
			HostFilePath:      archivePath,
			ContainerFilePath: "/srv/" + filepath.Base(archivePath),
			FileMode:          0o644,
		}},
		Cmd:        []string{"python", "-m", "http.server", "8080", "--directory", "/srv"},
		WaitingFor: wait.ForListeningPort("8080/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8080/tcp")
	require.NoError(t, err)

	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())
	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return endpoint, cleanup
}
