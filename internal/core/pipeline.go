package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"slack-thread-dump-tap/internal/ports"
	"slack-thread-dump-tap/internal/types"
)

const defaultVerifyTimeout = 30 * time.Second

// Pipeline runs Resolve, Fetch, Install and Verify in order. Each stage
// gates the next; the first failure aborts the run without rollback.
type Pipeline struct {
	Resolver  DependencyResolver
	Source    ports.SourcePort
	Installer ports.InstallerPort
	Verifier  ports.VerifierPort
	Receipts  ports.ReceiptPort
	Clock     func() time.Time
	NewID     func() string
}

type PipelineOptions struct {
	Prefix        string
	WorkDir       string
	DryRun        bool
	SkipVerify    bool
	VerifyTimeout time.Duration
}

func (p Pipeline) Run(ctx context.Context, formula types.Formula, opts PipelineOptions) (types.InstallReport, error) {
	if err := p.check(opts); err != nil {
		return types.InstallReport{}, err
	}
	report := types.InstallReport{
		Formula: formula.Name,
		Version: formula.Version,
		DryRun:  opts.DryRun,
	}
	logger := log.Ctx(ctx).With().Str("formula", formula.Name).Str("version", formula.Version).Logger()

	deps, err := timed(p, &report, types.StageResolve, func() ([]types.ResolvedDependency, error) {
		return p.Resolver.Resolve(ctx, formula)
	})
	if err != nil {
		return report, err
	}
	report.Dependencies = deps
	logger.Info().Int("dependencies", len(deps)).Msg("dependencies resolved")
	if opts.DryRun {
		return report, nil
	}

	fetched, err := timed(p, &report, types.StageFetch, func() (types.FetchedSource, error) {
		return p.Fetch(ctx, formula, opts.WorkDir)
	})
	if err != nil {
		return report, err
	}
	report.Source = fetched
	logger.Info().Str("kind", string(fetched.Kind)).Str("dir", fetched.Dir).Msg("source fetched")

	installed, err := timed(p, &report, types.StageInstall, func() (types.InstallResult, error) {
		return p.install(fetched.Dir, opts.Prefix, formula.Install)
	})
	if err != nil {
		return report, err
	}
	report.Install = installed
	logger.Info().Int("files", len(installed.Files)).Int("unchanged", installed.Unchanged).Msg("files installed")

	if p.Receipts != nil {
		if err := p.writeReceipt(formula, opts.Prefix, report); err != nil {
			return report, err
		}
	}

	if opts.SkipVerify {
		logger.Warn().Msg("smoke test skipped")
		return report, nil
	}
	verified, err := timed(p, &report, types.StageVerify, func() (types.VerifyResult, error) {
		return p.Verify(ctx, formula, opts.Prefix, opts.VerifyTimeout)
	})
	report.Verify = verified
	if err != nil {
		return report, err
	}
	logger.Info().Msg("smoke test passed")
	return report, nil
}

// Verify runs the formula's test command against an installed prefix.
func (p Pipeline) Verify(ctx context.Context, formula types.Formula, prefix string, timeout time.Duration) (types.VerifyResult, error) {
	if p.Verifier == nil {
		return types.VerifyResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("pipeline requires a verifier port")
	}
	if timeout <= 0 {
		timeout = defaultVerifyTimeout
		if formula.Test.TimeoutSec > 0 {
			timeout = time.Duration(formula.Test.TimeoutSec) * time.Second
		}
	}
	executable := ExpandPlaceholders(formula.Test.Executable, formula, prefix)
	args := make([]string, 0, len(formula.Test.Args))
	for _, arg := range formula.Test.Args {
		args = append(args, ExpandPlaceholders(arg, formula, prefix))
	}
	command := strings.TrimSpace(strings.Join(append([]string{executable}, args...), " "))

	if _, err := os.Stat(executable); err != nil && filepath.IsAbs(executable) {
		return types.VerifyResult{ExitCode: -1}, &TestFailureError{Command: command, ExitCode: -1, Cause: err}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	result, err := p.Verifier.Run(runCtx, executable, args)
	if err != nil {
		return result, &TestFailureError{Command: command, ExitCode: result.ExitCode, Output: result.Output, Cause: err}
	}
	if result.ExitCode != 0 {
		return result, &TestFailureError{Command: command, ExitCode: result.ExitCode, Output: result.Output}
	}
	return result, nil
}

func (p Pipeline) check(opts PipelineOptions) error {
	if strings.TrimSpace(opts.Prefix) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("install prefix is required")
	}
	if opts.DryRun {
		return nil
	}
	if strings.TrimSpace(opts.WorkDir) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("work directory is required")
	}
	if p.Source == nil || p.Installer == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("pipeline requires source and installer ports")
	}
	return nil
}

// Fetch materializes the formula source under workDir/<name>-<version>.
func (p Pipeline) Fetch(ctx context.Context, formula types.Formula, workDir string) (types.FetchedSource, error) {
	destDir := filepath.Join(workDir, fmt.Sprintf("%s-%s", formula.Name, formula.Version))
	if err := os.RemoveAll(destDir); err != nil {
		return types.FetchedSource{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to clear work directory").
			WithCause(err)
	}
	fetched, err := p.Source.Fetch(ctx, formula.Source, destDir)
	if err != nil {
		var srcErr *SourceUnavailableError
		if errors.As(err, &srcErr) {
			return types.FetchedSource{}, err
		}
		return types.FetchedSource{}, &SourceUnavailableError{URL: formula.Source.URL, Cause: err}
	}
	return fetched, nil
}

func (p Pipeline) install(srcDir string, prefix string, steps []types.InstallStep) (types.InstallResult, error) {
	if missing := MissingInstallSources(srcDir, steps); len(missing) > 0 {
		return types.InstallResult{}, &InstallPathMissingError{Paths: missing}
	}
	return p.Installer.Install(srcDir, prefix, steps)
}

func (p Pipeline) writeReceipt(formula types.Formula, prefix string, report types.InstallReport) error {
	previous, found, err := p.Receipts.ReadReceipt(prefix, formula.Name)
	if err != nil {
		return err
	}
	id := ""
	if found && previous.Version == formula.Version {
		id = previous.InstallID
	}
	if id == "" && p.NewID != nil {
		id = p.NewID()
	}
	revision := report.Source.Revision
	if revision == "" {
		revision = formula.Source.Revision
	}
	return p.Receipts.WriteReceipt(prefix, types.Receipt{
		InstallID:    id,
		Name:         formula.Name,
		Version:      formula.Version,
		SourceURL:    formula.Source.URL,
		Branch:       formula.Source.Branch,
		Revision:     revision,
		Dependencies: report.Dependencies,
		Files:        report.Install.Files,
		InstalledAt:  p.now().Format(time.RFC3339),
	})
}

func (p Pipeline) now() time.Time {
	if p.Clock != nil {
		return p.Clock().UTC()
	}
	return time.Now().UTC()
}

// timed runs one stage and records its duration on the report.
func timed[T any](p Pipeline, report *types.InstallReport, stage types.Stage, fn func() (T, error)) (T, error) {
	start := p.now()
	out, err := fn()
	report.Timings = append(report.Timings, types.StageTiming{Stage: stage, Duration: p.now().Sub(start)})
	return out, err
}

// MissingInstallSources lists install step sources that do not exist in
// the fetched tree.
func MissingInstallSources(srcDir string, steps []types.InstallStep) []string {
	var missing []string
	for _, step := range steps {
		source := filepath.Join(srcDir, filepath.FromSlash(strings.TrimSpace(step.Source)))
		info, err := os.Stat(source)
		if err != nil || info.IsDir() {
			missing = append(missing, step.Source)
		}
	}
	return missing
}
