package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"slack-thread-dump-tap/internal/core"
	"slack-thread-dump-tap/internal/types"
)

func (s Service) Compare(_ context.Context, req CompareRequest) (CompareResult, error) {
	a := strings.TrimSpace(req.A)
	b := strings.TrimSpace(req.B)
	if a == "" || b == "" {
		return CompareResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("two versions are required")
	}
	scheme := types.VersionScheme(strings.ToLower(strings.TrimSpace(req.Scheme)))
	if scheme == "" {
		scheme = types.VersionSchemeSemver
	}
	result, err := core.CompareVersions(scheme, a, b)
	if err != nil {
		return CompareResult{}, err
	}
	return CompareResult{Result: result}, nil
}

// Convert re-encodes a validated formula into the format implied by the
// output extension.
func (s Service) Convert(ctx context.Context, req ConvertRequest) (ConvertResult, error) {
	formula, _, err := s.loadFormula(ctx, req.FormulaPath)
	if err != nil {
		return ConvertResult{}, err
	}
	output := strings.TrimSpace(req.OutputPath)
	if output == "" {
		return ConvertResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output path is required")
	}
	if err := s.FormulaWriter.WriteFormula(output, formula); err != nil {
		return ConvertResult{}, err
	}
	return ConvertResult{OutputPath: output}, nil
}
