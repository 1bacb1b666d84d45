package extract

import (
	"strings"

	"archscope/internal/snapshot"
)

// NormalizeTypeRef rewrites a type reference from source text into the
// snapshot's qualified-name space. `crate::` becomes the crate name,
// `self::` the current module, `super::` walks up one module segment.
// Bare names are local to the module. Anything else (std::..., other
// crates) is left as written and simply will not resolve.
func NormalizeTypeRef(crateName, module, ref string) string {
	ref = strings.TrimSpace(strings.TrimPrefix(ref, "&"))
	if ref == "" {
		return ""
	}

	if !strings.Contains(ref, "::") {
		return snapshot.QualifiedName(module, ref)
	}

	switch {
	case strings.HasPrefix(ref, "crate::"):
		return crateName + ref[len("crate"):]
	case strings.HasPrefix(ref, "self::"):
		return module + ref[len("self"):]
	case strings.HasPrefix(ref, "super::"):
		parent := module
		for strings.HasPrefix(ref, "super::") {
			ref = ref[len("super::"):]
			if idx := strings.LastIndex(parent, "::"); idx >= 0 {
				parent = parent[:idx]
			}
		}
		return parent + "::" + ref
	default:
		return ref
	}
}

// fileScope is the per-file name resolution context: types declared in
// the file itself, then names reachable through the file's imports.
type fileScope struct {
	crateName string
	module    string

	// localTypes maps bare type name to qualified name for same-file types.
	localTypes map[string]string

	// imported maps the visible leaf name (alias or last path segment)
	// to the normalized import path.
	imported map[string]string
}

func newFileScope(crateName string, unit *snapshot.SourceUnit) *fileScope {
	scope := &fileScope{
		crateName:  crateName,
		module:     unit.Module,
		localTypes: make(map[string]string, len(unit.Types)),
		imported:   make(map[string]string, len(unit.Imports)),
	}

	for _, t := range unit.Types {
		scope.localTypes[t.Name] = t.Qualified
	}

	for _, imp := range unit.Imports {
		path := NormalizeTypeRef(crateName, unit.Module, imp.Path)
		leaf := imp.Alias
		if leaf == "" {
			leaf = snapshot.LocalName(imp.Path)
		}
		if leaf == "" || leaf == "*" {
			continue
		}
		scope.imported[leaf] = path
	}

	return scope
}

// resolveTypeRef resolves a textual type reference against the sealed
// snapshot: same-file types first, then imports, then module-relative
// qualification.
func (sc *fileScope) resolveTypeRef(snap *snapshot.Snapshot, ref string) (string, bool) {
	if ref == "" {
		return "", false
	}

	segments := strings.Split(ref, "::")
	head := segments[0]

	// Same-file types shadow imports.
	if qualified, ok := sc.localTypes[head]; ok {
		candidate := qualified
		if len(segments) > 1 {
			candidate = qualified + "::" + strings.Join(segments[1:], "::")
		}
		if _, ok := snap.Lookup(candidate); ok {
			return candidate, true
		}
	}

	// Imported names: the leaf may be the type itself or a module the
	// reference continues into.
	if importPath, ok := sc.imported[head]; ok {
		candidate := importPath
		if len(segments) > 1 {
			candidate = importPath + "::" + strings.Join(segments[1:], "::")
		}
		if _, ok := snap.Lookup(candidate); ok {
			return candidate, true
		}
	}

	// Explicitly scoped references (crate::, self::, super::, or an
	// absolute module path).
	candidate := NormalizeTypeRef(sc.crateName, sc.module, ref)
	if _, ok := snap.Lookup(candidate); ok {
		return candidate, true
	}

	return "", false
}

// splitCallee splits a callee expression into a type reference and
// method name. Method-style calls through a value (self.draw, obj.run)
// have no statically known type and return ok=false.
func splitCallee(callee string) (typeRef, method string, ok bool) {
	// Drop turbofish type arguments: Vec::<u8>::new -> Vec::new
	for {
		idx := strings.Index(callee, "::<")
		if idx < 0 {
			break
		}
		depth := 0
		end := -1
		for i := idx + 2; i < len(callee); i++ {
			switch callee[i] {
			case '<':
				depth++
			case '>':
				depth--
				if depth == 0 {
					end = i
				}
			}
			if end >= 0 {
				break
			}
		}
		if end < 0 {
			return "", "", false
		}
		callee = callee[:idx] + callee[end+1:]
	}

	if strings.ContainsAny(callee, ".(") {
		return "", "", false
	}

	segments := strings.Split(callee, "::")
	if len(segments) == 1 {
		// Bare call: either a free function or a tuple-struct
		// constructor. Try the name as a type.
		return segments[0], "", true
	}

	return strings.Join(segments[:len(segments)-1], "::"), segments[len(segments)-1], true
}

// Resolver resolves textual type references appearing in one source
// unit against a sealed snapshot, using the unit's own types and
// imports as scope.
type Resolver struct {
	snap  *snapshot.Snapshot
	scope *fileScope
}

// NewResolver builds a resolver for one unit. The crate name is taken
// from the unit's module path.
func NewResolver(snap *snapshot.Snapshot, unit *snapshot.SourceUnit) *Resolver {
	crate := unit.Module
	if idx := strings.Index(crate, "::"); idx >= 0 {
		crate = crate[:idx]
	}
	return &Resolver{snap: snap, scope: newFileScope(crate, unit)}
}

// Resolve maps a textual type reference to a registered qualified name.
func (r *Resolver) Resolve(ref string) (string, bool) {
	return r.scope.resolveTypeRef(r.snap, ref)
}

// ResolveCalls fills in call-site targets across a sealed snapshot.
// This is the second phase of the two-phase pipeline: the registry is
// complete and immutable, so results do not depend on file order.
// Unresolved callees are kept and flagged, never dropped.
func ResolveCalls(crateName string, snap *snapshot.Snapshot) {
	for _, path := range snap.SortedPaths() {
		unit := snap.Units[path]
		scope := newFileScope(crateName, unit)

		for i := range unit.Impls {
			for j := range unit.Impls[i].Methods {
				method := &unit.Impls[i].Methods[j]
				for k := range method.Calls {
					call := &method.Calls[k]

					typeRef, _, ok := splitCallee(call.Callee)
					if !ok {
						call.Target = ""
						call.Unresolved = true
						continue
					}

					if target, ok := scope.resolveTypeRef(snap, typeRef); ok {
						call.Target = target
						call.Unresolved = false
					} else {
						call.Target = ""
						call.Unresolved = true
					}
				}
			}
		}
	}
}

// CalleeMethod returns the method segment of a callee expression, e.g.
// "new" for Widget::new. Empty when the callee has no method segment.
func CalleeMethod(callee string) string {
	_, method, ok := splitCallee(callee)
	if !ok {
		return ""
	}
	return method
}
