package aliases

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pybundle/pkg/errors"
)

// file is the on-disk overlay format:
//
//	[aliases]
//	cv2 = "opencv-python-headless"
//	internal_sdk = "acme-sdk"
type file struct {
	Aliases map[string]string `toml:"aliases"`
}

// Load reads an alias overlay from a TOML file.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, errors.Wrap(errors.ErrCodeFileRead, err, "read alias file %s", path)
	}
	return Parse(data)
}

// Parse decodes an alias overlay from TOML data. Empty keys or values are
// rejected.
func Parse(data []byte) (Table, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return Table{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse alias file")
	}
	for k, v := range f.Aliases {
		if k == "" || v == "" {
			return Table{}, errors.New(errors.ErrCodeInvalidConfig, "alias entries need both an import and a package (%q = %q)", k, v)
		}
	}
	return Table{m: f.Aliases}, nil
}
