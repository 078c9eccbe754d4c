package types

import "time"

type FetchedSource struct {
	Dir      string
	Kind     SourceKind
	Revision string
}

type InstallResult struct {
	Files     []InstalledFile
	Unchanged int
}

type VerifyResult struct {
	ExitCode int
	Output   string
}

type StageTiming struct {
	Stage    Stage
	Duration time.Duration
}

type InstallReport struct {
	Formula      string
	Version      string
	Dependencies []ResolvedDependency
	Source       FetchedSource
	Install      InstallResult
	Verify       VerifyResult
	Timings      []StageTiming
	DryRun       bool
}
