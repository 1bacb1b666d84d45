// Package diffengine compares two architecture snapshots. Identity is
// the qualified type name: a type that moved files without changing
// shape is unchanged, and a rename is one removed plus one added
// entry. Structural comparison covers the field list, the implemented
// trait set, and the method signature set; source lines and file paths
// are provenance and never enter the comparison.
package diffengine

import (
	"sort"

	"archscope/internal/snapshot"
)

// MethodDelta details method-level changes inside one modified type.
type MethodDelta struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Changed []string `json:"changed,omitempty"`
}

func (d MethodDelta) empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Modification is one type present in both snapshots with a structural
// difference, with sub-detail for what moved.
type Modification struct {
	Qualified     string      `json:"qualified"`
	FieldsChanged bool        `json:"fieldsChanged,omitempty"`
	KindChanged   bool        `json:"kindChanged,omitempty"`
	TraitsAdded   []string    `json:"traitsAdded,omitempty"`
	TraitsRemoved []string    `json:"traitsRemoved,omitempty"`
	Methods       MethodDelta `json:"methods,omitempty"`
}

// Result is the structural diff of two snapshots. Each qualified name
// appears in at most one of the three lists; names absent from all
// three are unchanged.
type Result struct {
	Added    []string       `json:"added,omitempty"`
	Removed  []string       `json:"removed,omitempty"`
	Modified []Modification `json:"modified,omitempty"`
}

// Empty reports whether the two snapshots are structurally identical.
func (r *Result) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Modified) == 0
}

// typeView is the comparable shape of one type: its definition plus
// the impl surface gathered from every impl block targeting it.
type typeView struct {
	def     *snapshot.TypeDefinition
	traits  map[string]bool
	methods map[string]string // name -> signature
}

func buildViews(snap *snapshot.Snapshot) map[string]*typeView {
	views := make(map[string]*typeView)
	for _, qualified := range snap.RegisteredTypes() {
		def, _ := snap.TypeByQualified(qualified)
		views[qualified] = &typeView{
			def:     def,
			traits:  make(map[string]bool),
			methods: make(map[string]string),
		}
	}

	for _, path := range snap.SortedPaths() {
		for _, impl := range snap.Units[path].Impls {
			view, ok := views[impl.Target]
			if !ok {
				continue
			}
			if impl.Trait != "" {
				view.traits[impl.Trait] = true
			}
			for _, m := range impl.Methods {
				view.methods[m.Name] = m.Signature
			}
		}
	}
	return views
}

// Diff classifies every qualified type in the union of the two
// snapshots as added, removed, modified, or unchanged.
func Diff(old, new *snapshot.Snapshot) *Result {
	oldViews := buildViews(old)
	newViews := buildViews(new)

	union := make(map[string]bool, len(oldViews)+len(newViews))
	for q := range oldViews {
		union[q] = true
	}
	for q := range newViews {
		union[q] = true
	}

	result := &Result{}
	for q := range union {
		before, inOld := oldViews[q]
		after, inNew := newViews[q]
		switch {
		case !inOld:
			result.Added = append(result.Added, q)
		case !inNew:
			result.Removed = append(result.Removed, q)
		default:
			if mod, changed := compare(q, before, after); changed {
				result.Modified = append(result.Modified, mod)
			}
		}
	}

	sort.Strings(result.Added)
	sort.Strings(result.Removed)
	sort.Slice(result.Modified, func(i, j int) bool {
		return result.Modified[i].Qualified < result.Modified[j].Qualified
	})
	return result
}

func compare(qualified string, before, after *typeView) (Modification, bool) {
	mod := Modification{Qualified: qualified}

	mod.KindChanged = before.def.Kind != after.def.Kind
	mod.FieldsChanged = !fieldsEqual(before.def.Fields, after.def.Fields)

	for trait := range after.traits {
		if !before.traits[trait] {
			mod.TraitsAdded = append(mod.TraitsAdded, trait)
		}
	}
	for trait := range before.traits {
		if !after.traits[trait] {
			mod.TraitsRemoved = append(mod.TraitsRemoved, trait)
		}
	}
	sort.Strings(mod.TraitsAdded)
	sort.Strings(mod.TraitsRemoved)

	for name, sig := range after.methods {
		oldSig, ok := before.methods[name]
		switch {
		case !ok:
			mod.Methods.Added = append(mod.Methods.Added, name)
		case oldSig != sig:
			mod.Methods.Changed = append(mod.Methods.Changed, name)
		}
	}
	for name := range before.methods {
		if _, ok := after.methods[name]; !ok {
			mod.Methods.Removed = append(mod.Methods.Removed, name)
		}
	}
	sort.Strings(mod.Methods.Added)
	sort.Strings(mod.Methods.Removed)
	sort.Strings(mod.Methods.Changed)

	changed := mod.KindChanged || mod.FieldsChanged ||
		len(mod.TraitsAdded) > 0 || len(mod.TraitsRemoved) > 0 || !mod.Methods.empty()
	return mod, changed
}

func fieldsEqual(a, b []snapshot.Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Type != b[i].Type {
			return false
		}
	}
	return true
}
