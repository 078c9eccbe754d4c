package app

import (
	"context"
	"strings"

	"slack-thread-dump-tap/internal/shared"
)

func (s Service) Info(ctx context.Context, req InfoRequest) (InfoResult, error) {
	formula, _, err := s.loadFormula(ctx, req.FormulaPath)
	if err != nil {
		return InfoResult{}, err
	}
	result := InfoResult{Formula: formula, SourceKind: shared.SourceKindOf(formula.Source)}
	prefix := strings.TrimSpace(req.Prefix)
	if prefix == "" || s.Receipts == nil {
		return result, nil
	}
	receipt, found, err := s.Receipts.ReadReceipt(prefix, formula.Name)
	if err != nil {
		return InfoResult{}, err
	}
	result.Installed = found
	result.Receipt = receipt
	return result, nil
}
