// Package extract builds architecture snapshots from source trees. A
// per-file pass turns scanner output into source units; a tree pass
// runs the per-file extraction on a worker pool and merges the results
// into a sealed snapshot with a resolved call registry.
package extract

import (
	"context"
	"os"

	"archscope/internal/scanner"
	"archscope/internal/snapshot"
)

// Extractor turns scanned syntax into snapshot source units.
type Extractor struct {
	crateName string
}

// NewExtractor creates an extractor for one crate.
func NewExtractor(crateName string) *Extractor {
	return &Extractor{crateName: crateName}
}

// ExtractFile reads and extracts one file. canonicalPath is the
// root-relative forward-slash path used as the unit's identity.
func (e *Extractor) ExtractFile(ctx context.Context, absPath, canonicalPath string) (*snapshot.SourceUnit, error) {
	source, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}
	return e.Extract(ctx, canonicalPath, source)
}

// Extract builds a source unit from source text. The unit's call sites
// keep their textual callees; resolution against the registry happens
// after the whole tree is extracted.
func (e *Extractor) Extract(ctx context.Context, canonicalPath string, source []byte) (*snapshot.SourceUnit, error) {
	syntax, err := scanner.NewScanner().ScanSource(ctx, canonicalPath, source)
	if err != nil {
		return nil, err
	}

	module := ModulePath(e.crateName, canonicalPath)
	unit := &snapshot.SourceUnit{
		Path:   canonicalPath,
		Module: module,
	}

	for _, decl := range syntax.Types {
		unit.Types = append(unit.Types, snapshot.TypeDefinition{
			Name:       decl.Name,
			Qualified:  snapshot.QualifiedName(module, decl.Name),
			Kind:       snapshot.TypeKind(decl.Kind),
			Visibility: decl.Visibility,
			Fields:     convertFields(decl.Fields),
			StartLine:  decl.StartLine,
			EndLine:    decl.EndLine,
		})
	}

	for _, impl := range syntax.Impls {
		block := snapshot.ImplBlock{
			Target: e.qualifyLocalRef(module, impl.TargetType),
		}
		if impl.TraitName != "" {
			block.Trait = e.qualifyLocalRef(module, impl.TraitName)
		}
		for _, m := range impl.Methods {
			method := snapshot.Method{
				Name:       m.Name,
				Signature:  m.Signature,
				ReturnType: m.ReturnType,
				StartLine:  m.StartLine,
			}
			for _, call := range m.Calls {
				method.Calls = append(method.Calls, snapshot.CallSite{
					Callee: call.Callee,
					Line:   call.Line,
				})
			}
			block.Methods = append(block.Methods, method)
		}
		unit.Impls = append(unit.Impls, block)
	}

	for _, imp := range syntax.Imports {
		unit.Imports = append(unit.Imports, snapshot.Import{
			Path:  imp.Path,
			Alias: imp.Alias,
		})
	}

	return unit, nil
}

// qualifyLocalRef qualifies a type reference that appeared in this
// module. Already-scoped references (foo::Bar, crate::x::Bar) get the
// crate prefix normalized; bare names are assumed local to the module.
func (e *Extractor) qualifyLocalRef(module, name string) string {
	return NormalizeTypeRef(e.crateName, module, name)
}

func convertFields(fields []scanner.FieldDecl) []snapshot.Field {
	out := make([]snapshot.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, snapshot.Field{Name: f.Name, Type: f.TypeText})
	}
	return out
}
