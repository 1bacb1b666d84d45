package snapshot

import (
	"testing"
)

func unitWithType(path, module, name string) *SourceUnit {
	return &SourceUnit{
		Path:   path,
		Module: module,
		Types: []TypeDefinition{
			{Name: name, Qualified: QualifiedName(module, name), Kind: KindStruct},
		},
	}
}

func TestSealBuildsRegistry(t *testing.T) {
	snap := New()
	snap.Add(unitWithType("src/widget.rs", "crate::widget", "Widget"))
	snap.Add(unitWithType("src/factory.rs", "crate::factory", "Factory"))

	dups := snap.Seal()
	if len(dups) != 0 {
		t.Fatalf("expected no duplicates, got %v", dups)
	}

	path, ok := snap.Lookup("crate::widget::Widget")
	if !ok || path != "src/widget.rs" {
		t.Errorf("expected Widget to resolve to src/widget.rs, got %q ok=%v", path, ok)
	}

	names := snap.RegisteredTypes()
	if len(names) != 2 {
		t.Errorf("expected 2 registered types, got %v", names)
	}
}

func TestSealReportsDuplicates(t *testing.T) {
	snap := New()
	snap.Add(unitWithType("src/a.rs", "crate::shared", "Widget"))
	snap.Add(unitWithType("src/b.rs", "crate::shared", "Widget"))
	snap.Add(unitWithType("src/c.rs", "crate::other", "Other"))

	dups := snap.Seal()
	if len(dups) != 1 {
		t.Fatalf("expected 1 duplicate, got %v", dups)
	}

	dup := dups[0]
	if dup.Qualified != "crate::shared::Widget" {
		t.Errorf("expected duplicate crate::shared::Widget, got %q", dup.Qualified)
	}
	if len(dup.Files) != 2 || dup.Files[0] != "src/a.rs" || dup.Files[1] != "src/b.rs" {
		t.Errorf("duplicate must name both files, got %v", dup.Files)
	}

	// The violating name is excluded from resolution.
	if _, ok := snap.Lookup("crate::shared::Widget"); ok {
		t.Error("duplicated name must not resolve")
	}
	// Unaffected names still resolve.
	if _, ok := snap.Lookup("crate::other::Other"); !ok {
		t.Error("non-duplicated name should resolve")
	}
}

func TestSealIsOrderIndependent(t *testing.T) {
	build := func(order []string) []Duplicate {
		snap := New()
		for _, path := range order {
			snap.Add(unitWithType(path, "crate::m", "Widget"))
		}
		return snap.Seal()
	}

	forward := build([]string{"src/a.rs", "src/b.rs"})
	reverse := build([]string{"src/b.rs", "src/a.rs"})

	if len(forward) != 1 || len(reverse) != 1 {
		t.Fatalf("both orders must report the duplicate, got %v and %v", forward, reverse)
	}
	for i := range forward[0].Files {
		if forward[0].Files[i] != reverse[0].Files[i] {
			t.Errorf("duplicate file order must not depend on insertion order: %v vs %v",
				forward[0].Files, reverse[0].Files)
		}
	}
}

func TestNormalizeOrdersCollections(t *testing.T) {
	unit := &SourceUnit{
		Path: "src/lib.rs",
		Types: []TypeDefinition{
			{Name: "Zeta", Qualified: "crate::Zeta"},
			{Name: "Alpha", Qualified: "crate::Alpha"},
		},
		Impls: []ImplBlock{
			{Target: "crate::Zeta"},
			{Target: "crate::Alpha", Trait: "crate::Draw"},
			{Target: "crate::Alpha"},
		},
		Imports: []Import{
			{Path: "std::fmt"},
			{Path: "std::collections::HashMap"},
		},
	}
	unit.Impls[0].Methods = []Method{{Name: "run"}, {Name: "init"}}

	unit.Normalize()

	if unit.Types[0].Name != "Alpha" {
		t.Errorf("types should be sorted by name, got %s first", unit.Types[0].Name)
	}
	if unit.Impls[0].Target != "crate::Alpha" || unit.Impls[0].Trait != "" {
		t.Errorf("impls should sort by target then trait, got %+v", unit.Impls[0])
	}
	if unit.Impls[2].Methods[0].Name != "init" {
		t.Errorf("methods should be sorted by name, got %s", unit.Impls[2].Methods[0].Name)
	}
	if unit.Imports[0].Path != "std::collections::HashMap" {
		t.Errorf("imports should be sorted by path, got %s", unit.Imports[0].Path)
	}
}

func TestQualifiedNameHelpers(t *testing.T) {
	if got := QualifiedName("crate::widgets", "Widget"); got != "crate::widgets::Widget" {
		t.Errorf("QualifiedName = %q", got)
	}
	if got := QualifiedName("", "Widget"); got != "Widget" {
		t.Errorf("QualifiedName with empty module = %q", got)
	}
	if got := LocalName("crate::widgets::Widget"); got != "Widget" {
		t.Errorf("LocalName = %q", got)
	}
	if got := LocalName("Widget"); got != "Widget" {
		t.Errorf("LocalName without module = %q", got)
	}
}
