package ports

import "slack-thread-dump-tap/internal/types"

type FormulaSourcePort interface {
	LoadFormula(path string) (types.Formula, error)
}

type FormulaWriterPort interface {
	WriteFormula(path string, formula types.Formula) error
}
