package app

import (
	"io"
	"time"

	"github.com/google/uuid"

	"slack-thread-dump-tap/internal/adapters"
	"slack-thread-dump-tap/internal/ports"
)

type Service struct {
	Formulas      ports.FormulaSourcePort
	FormulaWriter ports.FormulaWriterPort
	Source        ports.SourcePort
	Installer     ports.InstallerPort
	Verifier      ports.VerifierPort
	Receipts      ports.ReceiptPort
	Lock          ports.PrefixLockPort
	Index         func(path string) ports.IndexPort
	Probe         func(prefix string) ports.DependencyProbePort
	Clock         func() time.Time
	NewID         func() string
}

// ServiceConfig carries the transport and locking knobs the CLI reads
// from flags and config.
type ServiceConfig struct {
	HTTPTimeoutSec int
	HTTPRetries    int
	MaxDownloadMB  int
	LockTimeoutSec int
	Progress       io.Writer
}

func NewService(cfg ServiceConfig) Service {
	formulas := adapters.NewFormulaFileAdapter()
	archive := adapters.NewArchiveSourceAdapter(cfg.HTTPTimeoutSec, cfg.HTTPRetries)
	archive.Progress = cfg.Progress
	if cfg.MaxDownloadMB > 0 {
		archive.MaxBytes = int64(cfg.MaxDownloadMB) << 20
	}
	return Service{
		Formulas:      formulas,
		FormulaWriter: formulas,
		Source: adapters.NewSourceRouterAdapter(
			adapters.NewGitSourceAdapter(),
			adapters.NewDirSourceAdapter(),
			archive,
		),
		Installer: adapters.NewFileInstallerAdapter(),
		Verifier:  adapters.NewCommandVerifierAdapter(),
		Receipts:  adapters.NewReceiptFileAdapter(),
		Lock:      adapters.NewPrefixLockAdapter(cfg.LockTimeoutSec),
		Index: func(path string) ports.IndexPort {
			return adapters.NewIndexFileAdapter(path)
		},
		Probe: func(prefix string) ports.DependencyProbePort {
			return adapters.NewDependencyProbeAdapter(prefix)
		},
		Clock: time.Now,
		NewID: func() string { return uuid.NewString() },
	}
}
