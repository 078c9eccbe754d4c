package types

// Formula is the declarative install descriptor for one package. It is
// read once per install and never mutated by the runtime.
type Formula struct {
	Name         string           `yaml:"name" toml:"name" json:"name"`
	Desc         string           `yaml:"desc" toml:"desc" json:"desc"`
	Homepage     string           `yaml:"homepage" toml:"homepage" json:"homepage"`
	Source       Source           `yaml:"source" toml:"source" json:"source"`
	Version      string           `yaml:"version" toml:"version" json:"version"`
	License      string           `yaml:"license" toml:"license" json:"license"`
	Dependencies []DependencySpec `yaml:"dependencies,omitempty" toml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Install      []InstallStep    `yaml:"install" toml:"install" json:"install"`
	Test         TestCommand      `yaml:"test" toml:"test" json:"test"`
}

// Source locates the upstream tree. Git sources need Branch; archive
// sources need SHA256. Signature and SigningKey are optional paths or
// URLs to an armored detached signature and public key.
type Source struct {
	URL        string `yaml:"url" toml:"url" json:"url"`
	Branch     string `yaml:"branch,omitempty" toml:"branch,omitempty" json:"branch,omitempty"`
	Revision   string `yaml:"revision,omitempty" toml:"revision,omitempty" json:"revision,omitempty"`
	SHA256     string `yaml:"sha256,omitempty" toml:"sha256,omitempty" json:"sha256,omitempty"`
	Signature  string `yaml:"signature,omitempty" toml:"signature,omitempty" json:"signature,omitempty"`
	SigningKey string `yaml:"signing_key,omitempty" toml:"signing_key,omitempty" json:"signing_key,omitempty"`
}

// DependencySpec is a depends_on entry. Constraint is either a bare
// version requirement (">=1.6") or empty.
type DependencySpec struct {
	Name       string          `yaml:"name" toml:"name" json:"name"`
	Constraint string          `yaml:"constraint,omitempty" toml:"constraint,omitempty" json:"constraint,omitempty"`
	Tags       []DependencyTag `yaml:"tags,omitempty" toml:"tags,omitempty" json:"tags,omitempty"`
}

// InstallStep copies Source (relative to the fetched tree) into Dir under
// the name Target.
type InstallStep struct {
	Source string     `yaml:"source" toml:"source" json:"source"`
	Target string     `yaml:"target,omitempty" toml:"target,omitempty" json:"target,omitempty"`
	Dir    InstallDir `yaml:"dir,omitempty" toml:"dir,omitempty" json:"dir,omitempty"`
	Mode   string     `yaml:"mode,omitempty" toml:"mode,omitempty" json:"mode,omitempty"`
}

type TestCommand struct {
	Executable string   `yaml:"executable" toml:"executable" json:"executable"`
	Args       []string `yaml:"args,omitempty" toml:"args,omitempty" json:"args,omitempty"`
	TimeoutSec int      `yaml:"timeout_sec,omitempty" toml:"timeout_sec,omitempty" json:"timeout_sec,omitempty"`
}
