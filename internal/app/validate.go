package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"slack-thread-dump-tap/internal/core"
	"slack-thread-dump-tap/internal/types"
)

func (s Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResult, error) {
	formula, validation, err := s.loadFormula(ctx, req.FormulaPath)
	if err != nil {
		return ValidateResult{}, err
	}
	return ValidateResult{
		Name:     formula.Name,
		Version:  formula.Version,
		Warnings: validation.Warnings,
	}, nil
}

// loadFormula reads and validates a formula. Every operation that acts on
// a formula goes through here, so nothing runs against an invalid one.
func (s Service) loadFormula(ctx context.Context, path string) (types.Formula, core.ValidationResult, error) {
	formulaPath := strings.TrimSpace(path)
	if formulaPath == "" {
		return types.Formula{}, core.ValidationResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("formula path is required")
	}
	formula, err := s.Formulas.LoadFormula(formulaPath)
	if err != nil {
		return types.Formula{}, core.ValidationResult{}, err
	}
	validation, err := core.NewFormulaValidator().ValidateFormula(ctx, formula)
	if err != nil {
		return types.Formula{}, core.ValidationResult{}, err
	}
	return formula, validation, nil
}

func requirePrefix(prefix string) (string, error) {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("install prefix is required")
	}
	return trimmed, nil
}
