package core

import (
	"path/filepath"
	"strings"

	"slack-thread-dump-tap/internal/types"
)

// PrefixDir returns the absolute directory an install dir maps to.
func PrefixDir(prefix string, dir types.InstallDir) string {
	if dir == "" {
		dir = types.InstallDirBin
	}
	return filepath.Join(prefix, string(dir))
}

// ExpandPlaceholders substitutes #{bin}, #{prefix}, #{libexec}, #{share},
// #{etc}, #{name} and #{version} in a test command token.
func ExpandPlaceholders(value string, formula types.Formula, prefix string) string {
	replacer := strings.NewReplacer(
		"#{bin}", PrefixDir(prefix, types.InstallDirBin),
		"#{libexec}", PrefixDir(prefix, types.InstallDirLibexec),
		"#{share}", PrefixDir(prefix, types.InstallDirShare),
		"#{etc}", PrefixDir(prefix, types.InstallDirEtc),
		"#{prefix}", prefix,
		"#{name}", formula.Name,
		"#{version}", formula.Version,
	)
	return replacer.Replace(value)
}
