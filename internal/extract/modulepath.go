package extract

import (
	"path"
	"strings"
)

// ModulePath derives the Rust module path for a canonical (root
// relative, forward-slash) source path. The crate name is the root
// segment; src/ is transparent; lib.rs, main.rs and mod.rs collapse
// into their directory module.
//
//	src/lib.rs            -> crate
//	src/widget.rs         -> crate::widget
//	src/gears/mod.rs      -> crate::gears
//	src/gears/spur.rs     -> crate::gears::spur
//	tools/gen.rs          -> crate::tools::gen
func ModulePath(crateName, canonicalPath string) string {
	dir, file := path.Split(canonicalPath)
	stem := strings.TrimSuffix(file, path.Ext(file))

	segments := []string{}
	for _, seg := range strings.Split(strings.Trim(dir, "/"), "/") {
		if seg == "" || seg == "src" || seg == "." {
			continue
		}
		segments = append(segments, seg)
	}

	switch stem {
	case "lib", "main", "mod", "":
		// Crate and directory roots add no segment.
	default:
		segments = append(segments, stem)
	}

	parts := append([]string{crateName}, segments...)
	return strings.Join(parts, "::")
}
