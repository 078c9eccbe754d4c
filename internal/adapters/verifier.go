package adapters

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"slack-thread-dump-tap/internal/ports"
	"slack-thread-dump-tap/internal/types"
)

type CommandVerifierAdapter struct{}

func NewCommandVerifierAdapter() CommandVerifierAdapter {
	return CommandVerifierAdapter{}
}

// Run executes the command and reports its exit code with combined output.
// A non-zero exit is a result, not an error; errors mean the command could
// not run or was cut off by ctx.
func (a CommandVerifierAdapter) Run(ctx context.Context, executable string, args []string) (types.VerifyResult, error) {
	cmd := exec.CommandContext(ctx, executable, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	err := cmd.Run()
	result := types.VerifyResult{Output: output.String()}
	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		return result, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	result.ExitCode = -1
	return result, err
}

var _ ports.VerifierPort = CommandVerifierAdapter{}
