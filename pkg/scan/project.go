package scan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ProjectName returns the importable name of the project declared in
// dir/pyproject.toml, or "" when there is none. PEP 621 [project] takes
// precedence over [tool.poetry].
func ProjectName(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml"))
	if err != nil {
		return ""
	}
	var pyproject struct {
		Project struct {
			Name string `toml:"name"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Name string `toml:"name"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &pyproject); err != nil {
		return ""
	}
	name := pyproject.Project.Name
	if name == "" {
		name = pyproject.Tool.Poetry.Name
	}
	return moduleName(name)
}

// moduleName converts a distribution name to the identifier it is usually
// imported as ("my-project" -> "my_project").
func moduleName(dist string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(strings.TrimSpace(dist))
}
