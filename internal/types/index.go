package types

type IndexFile struct {
	Packages map[string]IndexEntry `yaml:"packages"`
}

type IndexEntry struct {
	Scheme      VersionScheme `yaml:"scheme,omitempty"`
	Versions    []string      `yaml:"versions"`
	Executables []string      `yaml:"executables,omitempty"`
	Desc        string        `yaml:"desc,omitempty"`
}
