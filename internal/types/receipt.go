package types

type ResolvedDependency struct {
	Name      string        `yaml:"name"`
	Version   string        `yaml:"version"`
	Tag       DependencyTag `yaml:"tag,omitempty"`
	Satisfied bool          `yaml:"satisfied"`
}

type InstalledFile struct {
	Path   string `yaml:"path"`
	SHA256 string `yaml:"sha256"`
	Mode   string `yaml:"mode"`
}

type Receipt struct {
	InstallID    string               `yaml:"install_id"`
	Name         string               `yaml:"name"`
	Version      string               `yaml:"version"`
	SourceURL    string               `yaml:"source_url"`
	Branch       string               `yaml:"branch,omitempty"`
	Revision     string               `yaml:"revision,omitempty"`
	Dependencies []ResolvedDependency `yaml:"dependencies,omitempty"`
	Files        []InstalledFile      `yaml:"files"`
	InstalledAt  string               `yaml:"installed_at"`
}
