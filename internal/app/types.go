package app

import "slack-thread-dump-tap/internal/types"

type ValidateRequest struct {
	FormulaPath string
}

type ValidateResult struct {
	Name     string
	Version  string
	Warnings []string
}

type InfoRequest struct {
	FormulaPath string
	Prefix      string
}

type InfoResult struct {
	Formula    types.Formula
	SourceKind types.SourceKind
	Installed  bool
	Receipt    types.Receipt
}

type ResolveRequest struct {
	FormulaPath      string
	IndexPath        string
	Prefix           string
	Mode             string
	SkipRecommended  bool
	RequireSatisfied bool
}

type ResolveResult struct {
	Name         string
	Version      string
	Dependencies []types.ResolvedDependency
}

type FetchRequest struct {
	FormulaPath string
	WorkDir     string
}

type FetchResult struct {
	Source types.FetchedSource
}

type InstallRequest struct {
	FormulaPath      string
	IndexPath        string
	Prefix           string
	WorkDir          string
	DryRun           bool
	SkipVerify       bool
	SkipRecommended  bool
	RequireSatisfied bool
	VerifyTimeoutSec int
}

type InstallResult struct {
	Report types.InstallReport
}

type TestRequest struct {
	FormulaPath string
	IndexPath   string
	Prefix      string
	TimeoutSec  int
}

type TestResult struct {
	Name   string
	Verify types.VerifyResult
}

type UninstallRequest struct {
	Name   string
	Prefix string
}

type UninstallResult struct {
	Name    string
	Version string
	Removed int
}

type ListRequest struct {
	Prefix string
}

type ListResult struct {
	Receipts []types.Receipt
}

type CompareRequest struct {
	Scheme string
	A      string
	B      string
}

type CompareResult struct {
	Result int
}

type ConvertRequest struct {
	FormulaPath string
	OutputPath  string
}

type ConvertResult struct {
	OutputPath string
}
