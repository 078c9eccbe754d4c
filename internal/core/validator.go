package core

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/github/go-spdx/v2/spdxexp"
	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"slack-thread-dump-tap/internal/shared"
	"slack-thread-dump-tap/internal/types"
)

//go:embed schema/formula.schema.json
var formulaSchemaJSON []byte

const formulaSchemaURL = "https://slack-thread-dump-tap.local/formula.schema.json"

const maxDescLength = 80

var formulaNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9+_.-]*$`)

var validInstallDirs = map[types.InstallDir]struct{}{
	"":                      {},
	types.InstallDirBin:     {},
	types.InstallDirLibexec: {},
	types.InstallDirShare:   {},
	types.InstallDirEtc:     {},
}

var compiledFormulaSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(formulaSchemaURL, bytes.NewReader(formulaSchemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(formulaSchemaURL)
})

type FormulaValidator struct{}

type ValidationResult struct {
	Warnings []string
}

func NewFormulaValidator() FormulaValidator {
	return FormulaValidator{}
}

// ValidateDocument checks a decoded formula document (the generic
// map/slice form produced by encoding/json) against the formula schema.
func (v FormulaValidator) ValidateDocument(doc any) error {
	schema, err := compiledFormulaSchema()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to compile formula schema").
			WithCause(err)
	}
	if err := schema.Validate(doc); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("formula does not match schema").
			WithCause(err)
	}
	return nil
}

func (v FormulaValidator) ValidateFormula(ctx context.Context, formula types.Formula) (ValidationResult, error) {
	doc, err := formulaDocument(formula)
	if err != nil {
		return ValidationResult{}, err
	}
	if err := v.ValidateDocument(doc); err != nil {
		return ValidationResult{}, err
	}
	assert.NotEmpty(ctx, formula.Name, "name must be set")
	assert.NotEmpty(ctx, formula.Version, "version must be set")

	if !formulaNamePattern.MatchString(formula.Name) {
		return ValidationResult{}, invalidFormula(fmt.Sprintf("invalid formula name: %s", formula.Name))
	}
	if err := validateDesc(formula.Desc); err != nil {
		return ValidationResult{}, err
	}
	if err := validateHomepage(formula.Homepage); err != nil {
		return ValidationResult{}, err
	}
	if err := validateSource(formula.Source); err != nil {
		return ValidationResult{}, err
	}
	if !ValidSemver(formula.Version) {
		return ValidationResult{}, invalidFormula(fmt.Sprintf("version is not a semantic version: %s", formula.Version))
	}
	if err := validateLicense(formula.License); err != nil {
		return ValidationResult{}, err
	}
	if err := validateDependencies(formula.Name, formula.Dependencies); err != nil {
		return ValidationResult{}, err
	}
	if err := validateInstallSteps(formula.Install); err != nil {
		return ValidationResult{}, err
	}
	if strings.TrimSpace(formula.Test.Executable) == "" {
		return ValidationResult{}, invalidFormula("test.executable must not be empty")
	}

	result := ValidationResult{Warnings: auditFormula(formula)}
	for _, warning := range result.Warnings {
		log.Ctx(ctx).Warn().Str("formula", formula.Name).Msg(warning)
	}
	log.Ctx(ctx).Debug().Str("formula", formula.Name).Msg("formula validated")
	return result, nil
}

// formulaDocument renders a typed formula into the generic JSON form the
// schema validator expects.
func formulaDocument(formula types.Formula) (any, error) {
	data, err := json.Marshal(formula)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode formula").
			WithCause(err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode formula").
			WithCause(err)
	}
	return doc, nil
}

func validateDesc(desc string) error {
	trimmed := strings.TrimSpace(desc)
	if trimmed == "" {
		return invalidFormula("desc must not be empty")
	}
	if len(trimmed) > maxDescLength {
		return invalidFormula(fmt.Sprintf("desc is longer than %d characters", maxDescLength))
	}
	if strings.HasSuffix(trimmed, ".") {
		return invalidFormula("desc must not end with a period")
	}
	return nil
}

func validateHomepage(homepage string) error {
	parsed, err := url.Parse(strings.TrimSpace(homepage))
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return invalidFormula(fmt.Sprintf("homepage is not a valid http(s) URL: %s", homepage))
	}
	return nil
}

func validateSource(source types.Source) error {
	if strings.TrimSpace(source.URL) == "" {
		return invalidFormula("source.url must not be empty")
	}
	switch shared.SourceKindOf(source) {
	case types.SourceKindGit:
		if strings.TrimSpace(source.Branch) == "" && strings.TrimSpace(source.Revision) == "" {
			return invalidFormula("git sources require source.branch or source.revision")
		}
	case types.SourceKindArchive:
		if strings.TrimSpace(source.SHA256) == "" {
			return invalidFormula("archive sources require source.sha256")
		}
	}
	if (source.Signature == "") != (source.SigningKey == "") {
		return invalidFormula("source.signature and source.signing_key must be set together")
	}
	return nil
}

func validateLicense(license string) error {
	valid, invalid := spdxexp.ValidateLicenses([]string{strings.TrimSpace(license)})
	if !valid {
		return invalidFormula(fmt.Sprintf("license is not a valid SPDX expression: %s", strings.Join(invalid, ", ")))
	}
	return nil
}

func validateDependencies(formulaName string, deps []types.DependencySpec) error {
	seen := map[string]struct{}{}
	for _, spec := range deps {
		name := strings.TrimSpace(spec.Name)
		if !formulaNamePattern.MatchString(name) {
			return invalidFormula(fmt.Sprintf("invalid dependency name: %s", spec.Name))
		}
		if name == formulaName {
			return invalidFormula(fmt.Sprintf("formula %s depends on itself", formulaName))
		}
		if _, ok := seen[name]; ok {
			return invalidFormula(fmt.Sprintf("duplicate dependency: %s", name))
		}
		seen[name] = struct{}{}
		if _, err := ParseDependency(spec, "formula"); err != nil {
			return err
		}
	}
	return nil
}

func validateInstallSteps(steps []types.InstallStep) error {
	if len(steps) == 0 {
		return invalidFormula("install must contain at least one step")
	}
	targets := map[string]struct{}{}
	for _, step := range steps {
		if err := validateRelativePath(step.Source, "install source"); err != nil {
			return err
		}
		if _, ok := validInstallDirs[step.Dir]; !ok {
			return invalidFormula(fmt.Sprintf("invalid install dir: %s", step.Dir))
		}
		target := InstallTarget(step)
		if err := validateRelativePath(target, "install target"); err != nil {
			return err
		}
		if _, err := ParseMode(step.Mode); err != nil {
			return err
		}
		key := path.Join(string(InstallDirOf(step)), target)
		if _, ok := targets[key]; ok {
			return invalidFormula(fmt.Sprintf("duplicate install target: %s", key))
		}
		targets[key] = struct{}{}
	}
	return nil
}

func validateRelativePath(value string, label string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return invalidFormula(fmt.Sprintf("%s must not be empty", label))
	}
	cleaned := path.Clean(trimmed)
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return invalidFormula(fmt.Sprintf("%s must stay inside the tree: %s", label, value))
	}
	return nil
}

// auditFormula returns style findings that do not block installation.
func auditFormula(formula types.Formula) []string {
	var warnings []string
	desc := strings.TrimSpace(formula.Desc)
	lower := strings.ToLower(desc)
	if strings.HasPrefix(lower, strings.ToLower(formula.Name)) {
		warnings = append(warnings, "desc should not start with the formula name")
	}
	for _, article := range []string{"a ", "an ", "the "} {
		if strings.HasPrefix(lower, article) {
			warnings = append(warnings, "desc should not start with an article")
			break
		}
	}
	if strings.HasPrefix(formula.Homepage, "http://") {
		warnings = append(warnings, "homepage should use https")
	}
	return warnings
}

// InstallTarget is the file name a step installs as.
func InstallTarget(step types.InstallStep) string {
	if target := strings.TrimSpace(step.Target); target != "" {
		return target
	}
	return path.Base(path.Clean(strings.TrimSpace(step.Source)))
}

func InstallDirOf(step types.InstallStep) types.InstallDir {
	if step.Dir == "" {
		return types.InstallDirBin
	}
	return step.Dir
}

// ParseMode parses an octal permission string. Empty means 0755.
func ParseMode(value string) (uint32, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0o755, nil
	}
	mode, err := strconv.ParseUint(trimmed, 8, 32)
	if err != nil || mode > 0o777 {
		return 0, invalidFormula(fmt.Sprintf("invalid install mode: %s", value))
	}
	return uint32(mode), nil
}

func invalidFormula(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
}
