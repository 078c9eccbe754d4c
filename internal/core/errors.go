package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"slack-thread-dump-tap/internal/types"
)

// DependencyNotFoundError reports a dependency the index cannot satisfy.
type DependencyNotFoundError struct {
	Name  string
	Cause error
}

func (e *DependencyNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dependency not found: %s: %s", e.Name, errorMessage(e.Cause))
	}
	return fmt.Sprintf("dependency not found: %s", e.Name)
}

func (e *DependencyNotFoundError) Unwrap() error { return e.Cause }

// SourceUnavailableError reports a failed fetch of the formula source.
type SourceUnavailableError struct {
	URL   string
	Cause error
}

func (e *SourceUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("source unavailable: %s: %s", e.URL, errorMessage(e.Cause))
	}
	return fmt.Sprintf("source unavailable: %s", e.URL)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Cause }

// InstallPathMissingError reports install step sources absent from the
// fetched tree.
type InstallPathMissingError struct {
	Paths []string
}

func (e *InstallPathMissingError) Error() string {
	return fmt.Sprintf("install path missing from source tree: %s", strings.Join(e.Paths, ", "))
}

// TestFailureError reports a smoke test that did not exit zero.
type TestFailureError struct {
	Command  string
	ExitCode int
	Output   string
	Cause    error
}

func (e *TestFailureError) Error() string {
	msg := fmt.Sprintf("test failed: %s exited with status %d", e.Command, e.ExitCode)
	if e.Cause != nil {
		msg = fmt.Sprintf("test failed: %s: %s", e.Command, errorMessage(e.Cause))
	}
	if tail := outputTail(e.Output, 5); tail != "" {
		msg += "\n" + tail
	}
	return msg
}

func (e *TestFailureError) Unwrap() error { return e.Cause }

// StageOf maps a stage error to the pipeline stage that produced it.
func StageOf(err error) (types.Stage, bool) {
	var depErr *DependencyNotFoundError
	var srcErr *SourceUnavailableError
	var pathErr *InstallPathMissingError
	var testErr *TestFailureError
	switch {
	case errors.As(err, &depErr):
		return types.StageResolve, true
	case errors.As(err, &srcErr):
		return types.StageFetch, true
	case errors.As(err, &pathErr):
		return types.StageInstall, true
	case errors.As(err, &testErr):
		return types.StageVerify, true
	default:
		return "", false
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}

func outputTail(output string, lines int) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "\n")
	if len(parts) > lines {
		parts = parts[len(parts)-lines:]
	}
	return strings.Join(parts, "\n")
}
