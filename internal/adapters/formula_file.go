package adapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"

	"slack-thread-dump-tap/internal/ports"
	"slack-thread-dump-tap/internal/types"
)

type FormulaFileAdapter struct{}

func NewFormulaFileAdapter() FormulaFileAdapter {
	return FormulaFileAdapter{}
}

// LoadFormula decodes a formula file. The format follows the extension:
// .yaml/.yml, .toml or .json. Unknown keys are rejected in every format.
func (a FormulaFileAdapter) LoadFormula(path string) (types.Formula, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Formula{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("formula file not found").
			WithCause(err)
	}
	var formula types.Formula
	switch formulaFormat(path) {
	case "toml":
		meta, err := toml.Decode(string(data), &formula)
		if err != nil {
			return types.Formula{}, parseError("toml", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, key := range undecoded {
				keys = append(keys, key.String())
			}
			sort.Strings(keys)
			return types.Formula{}, parseError("toml", fmt.Errorf("unknown keys: %s", strings.Join(keys, ", ")))
		}
	case "json":
		if err := sigsyaml.UnmarshalStrict(data, &formula); err != nil {
			return types.Formula{}, parseError("json", err)
		}
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&formula); err != nil {
			return types.Formula{}, parseError("yaml", err)
		}
	}
	return formula, nil
}

func (a FormulaFileAdapter) WriteFormula(path string, formula types.Formula) error {
	if strings.TrimSpace(path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output path is required")
	}
	var data []byte
	var err error
	switch formulaFormat(path) {
	case "toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(formula)
		data = buf.Bytes()
	case "json":
		data, err = json.MarshalIndent(formula, "", "  ")
		data = append(data, '\n')
	default:
		data, err = yaml.Marshal(formula)
	}
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to marshal formula").
			WithCause(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create formula directory").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write formula").
			WithCause(err)
	}
	return nil
}

func formulaFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

func parseError(format string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("failed to parse formula %s", format)).
		WithCause(err)
}

var (
	_ ports.FormulaSourcePort = FormulaFileAdapter{}
	_ ports.FormulaWriterPort = FormulaFileAdapter{}
)
