package diffengine

import (
	"testing"

	"archscope/internal/snapshot"
)

func buildSnapshot(t *testing.T, units ...*snapshot.SourceUnit) *snapshot.Snapshot {
	t.Helper()
	snap := snapshot.New()
	for _, u := range units {
		snap.Add(u)
	}
	if dups := snap.Seal(); len(dups) != 0 {
		t.Fatalf("unexpected duplicates: %v", dups)
	}
	return snap
}

func widgetUnit(typeName, path string) *snapshot.SourceUnit {
	qualified := "gearbox::widget::" + typeName
	return &snapshot.SourceUnit{
		Path:   path,
		Module: "gearbox::widget",
		Types: []snapshot.TypeDefinition{{
			Name:      typeName,
			Qualified: qualified,
			Kind:      snapshot.KindStruct,
			Fields:    []snapshot.Field{{Name: "label", Type: "String"}},
		}},
		Impls: []snapshot.ImplBlock{{
			Target: qualified,
			Methods: []snapshot.Method{
				{Name: "new", Signature: "pub fn new() -> Self"},
			},
		}},
	}
}

func factoryUnit() *snapshot.SourceUnit {
	return &snapshot.SourceUnit{
		Path:   "src/factory.rs",
		Module: "gearbox::factory",
		Types: []snapshot.TypeDefinition{{
			Name:      "Factory",
			Qualified: "gearbox::factory::Factory",
			Kind:      snapshot.KindStruct,
		}},
	}
}

func TestDiffIdentity(t *testing.T) {
	snap := buildSnapshot(t, widgetUnit("Widget", "src/widget.rs"), factoryUnit())
	result := Diff(snap, snap)
	if !result.Empty() {
		t.Errorf("diff of a snapshot with itself must be empty, got %+v", result)
	}
}

// Renaming a type is one removed plus one added entry, never a
// modification: identity is the qualified name.
func TestDiffRename(t *testing.T) {
	old := buildSnapshot(t, widgetUnit("Widget", "src/widget.rs"), factoryUnit())
	new := buildSnapshot(t, widgetUnit("Gadget", "src/widget.rs"), factoryUnit())

	result := Diff(old, new)
	if len(result.Added) != 1 || result.Added[0] != "gearbox::widget::Gadget" {
		t.Errorf("added = %v", result.Added)
	}
	if len(result.Removed) != 1 || result.Removed[0] != "gearbox::widget::Widget" {
		t.Errorf("removed = %v", result.Removed)
	}
	if len(result.Modified) != 0 {
		t.Errorf("rename must not produce modified entries: %v", result.Modified)
	}
}

// A type that moved to a different file with no structural change is
// unchanged.
func TestDiffIgnoresFileMove(t *testing.T) {
	old := buildSnapshot(t, widgetUnit("Widget", "src/widget.rs"))
	new := buildSnapshot(t, widgetUnit("Widget", "src/parts/widget.rs"))

	if result := Diff(old, new); !result.Empty() {
		t.Errorf("file move must be invisible, got %+v", result)
	}
}

func TestDiffMethodDetail(t *testing.T) {
	old := buildSnapshot(t, widgetUnit("Widget", "src/widget.rs"))

	changed := widgetUnit("Widget", "src/widget.rs")
	changed.Impls[0].Methods = []snapshot.Method{
		{Name: "new", Signature: "pub fn new(label: String) -> Self"},
		{Name: "resize", Signature: "pub fn resize(&mut self, w: u32)"},
	}
	new := buildSnapshot(t, changed)

	result := Diff(old, new)
	if len(result.Modified) != 1 {
		t.Fatalf("expected 1 modified entry, got %+v", result)
	}
	mod := result.Modified[0]
	if mod.Qualified != "gearbox::widget::Widget" {
		t.Errorf("qualified = %q", mod.Qualified)
	}
	if len(mod.Methods.Added) != 1 || mod.Methods.Added[0] != "resize" {
		t.Errorf("methods added = %v", mod.Methods.Added)
	}
	if len(mod.Methods.Changed) != 1 || mod.Methods.Changed[0] != "new" {
		t.Errorf("methods changed = %v", mod.Methods.Changed)
	}
	if mod.FieldsChanged {
		t.Error("fields did not change")
	}
}

func TestDiffFieldAndTraitDetail(t *testing.T) {
	old := buildSnapshot(t, widgetUnit("Widget", "src/widget.rs"))

	changed := widgetUnit("Widget", "src/widget.rs")
	changed.Types[0].Fields = append(changed.Types[0].Fields, snapshot.Field{Name: "size", Type: "u32"})
	changed.Impls = append(changed.Impls, snapshot.ImplBlock{
		Target: "gearbox::widget::Widget",
		Trait:  "gearbox::widget::Draw",
	})
	new := buildSnapshot(t, changed)

	result := Diff(old, new)
	if len(result.Modified) != 1 {
		t.Fatalf("expected 1 modified entry, got %+v", result)
	}
	mod := result.Modified[0]
	if !mod.FieldsChanged {
		t.Error("field addition must be reported")
	}
	if len(mod.TraitsAdded) != 1 || mod.TraitsAdded[0] != "gearbox::widget::Draw" {
		t.Errorf("traitsAdded = %v", mod.TraitsAdded)
	}
}

// Every qualified name in the union of both snapshots lands in exactly
// one bucket (added, removed, modified, or implicitly unchanged).
func TestDiffCompleteness(t *testing.T) {
	old := buildSnapshot(t, widgetUnit("Widget", "src/widget.rs"), factoryUnit())
	new := buildSnapshot(t, widgetUnit("Gadget", "src/widget.rs"), factoryUnit())

	result := Diff(old, new)
	seen := map[string]int{}
	for _, q := range result.Added {
		seen[q]++
	}
	for _, q := range result.Removed {
		seen[q]++
	}
	for _, m := range result.Modified {
		seen[m.Qualified]++
	}
	for q, n := range seen {
		if n != 1 {
			t.Errorf("%s classified %d times", q, n)
		}
	}

	union := map[string]bool{}
	for _, q := range old.RegisteredTypes() {
		union[q] = true
	}
	for _, q := range new.RegisteredTypes() {
		union[q] = true
	}
	classified := len(result.Added) + len(result.Removed) + len(result.Modified)
	unchanged := 0
	for q := range union {
		if seen[q] == 0 {
			unchanged++
		}
	}
	if classified+unchanged != len(union) {
		t.Errorf("union size %d, classified %d + unchanged %d", len(union), classified, unchanged)
	}
}
