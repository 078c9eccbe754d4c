package types

type DependencyTag string

const (
	DependencyTagRuntime     DependencyTag = ""
	DependencyTagBuild       DependencyTag = "build"
	DependencyTagTest        DependencyTag = "test"
	DependencyTagOptional    DependencyTag = "optional"
	DependencyTagRecommended DependencyTag = "recommended"
)

type VersionScheme string

const (
	VersionSchemeSemver VersionScheme = "semver"
	VersionSchemeDeb    VersionScheme = "deb"
	VersionSchemePep440 VersionScheme = "pep440"
)

type InstallDir string

const (
	InstallDirBin     InstallDir = "bin"
	InstallDirLibexec InstallDir = "libexec"
	InstallDirShare   InstallDir = "share"
	InstallDirEtc     InstallDir = "etc"
)

type SourceKind string

const (
	SourceKindGit     SourceKind = "git"
	SourceKindDir     SourceKind = "dir"
	SourceKindArchive SourceKind = "archive"
)

type Stage string

const (
	StageResolve Stage = "resolve"
	StageFetch   Stage = "fetch"
	StageInstall Stage = "install"
	StageVerify  Stage = "verify"
)

type ConstraintOp string

const (
	ConstraintOpNone   ConstraintOp = ""
	ConstraintOpEq     ConstraintOp = "="
	ConstraintOpEq2    ConstraintOp = "=="
	ConstraintOpNe     ConstraintOp = "!="
	ConstraintOpCompat ConstraintOp = "~="
	ConstraintOpGte    ConstraintOp = ">="
	ConstraintOpLte    ConstraintOp = "<="
	ConstraintOpGt     ConstraintOp = ">"
	ConstraintOpLt     ConstraintOp = "<"
)
