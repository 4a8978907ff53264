// Package aliases maps Python import identifiers to the names of the
// distributions that provide them.
//
// Many packages are imported under a name that differs from the name they are
// published under on the package index: "import cv2" needs "opencv-python",
// "import yaml" needs "pyyaml". A [Table] records these substitutions.
//
// Tables are immutable values. [Default] returns the built-in table,
// [Load] reads an overlay from a TOML file, and [Table.Merge] combines the
// two into a new table without touching either input:
//
//	t := aliases.Default()
//	overlay, err := aliases.Load("aliases.toml")
//	if err != nil {
//	    return err
//	}
//	t = t.Merge(overlay)
//	pkg := t.Resolve("cv2") // "opencv-python"
//
// Lookups are exact-string: no case folding or punctuation normalization is
// applied to keys.
package aliases
