// Package snapshot defines the extracted architecture model and its
// on-disk store. A snapshot is the complete structural architecture of
// one source tree at one point in time: per-file source units plus a
// derived registry mapping qualified type names to their owning file.
package snapshot

import (
	"fmt"
	"sort"
	"strings"
)

// TypeKind classifies a type definition.
type TypeKind string

const (
	// KindStruct is a plain data type
	KindStruct TypeKind = "struct"
	// KindEnum is an enumerated variant type
	KindEnum TypeKind = "enum"
	// KindTrait is a trait (interface-like) type
	KindTrait TypeKind = "trait"
)

// Field is one field of a type definition: name plus the raw declared
// type text, with no generic resolution.
type Field struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
}

// TypeDefinition is one extracted type. Its qualified name
// (module::Name) is the stable identity used across extraction,
// diffing, and graph building; file and lines are provenance only.
type TypeDefinition struct {
	Name       string   `yaml:"name"`
	Qualified  string   `yaml:"qualified"`
	Kind       TypeKind `yaml:"kind"`
	Visibility string   `yaml:"visibility,omitempty"`
	Fields     []Field  `yaml:"fields,omitempty"`
	StartLine  int      `yaml:"startLine,omitempty"`
	EndLine    int      `yaml:"endLine,omitempty"`
}

// CallSite is one textual invocation found in a method body. Target is
// the resolved qualified type name; unresolved calls keep an empty
// target and are flagged.
type CallSite struct {
	Callee     string `yaml:"callee"`
	Target     string `yaml:"target,omitempty"`
	Unresolved bool   `yaml:"unresolved,omitempty"`
	Line       int    `yaml:"line,omitempty"`
}

// Method is one function inside an impl block.
type Method struct {
	Name       string     `yaml:"name"`
	Signature  string     `yaml:"signature"`
	ReturnType string     `yaml:"returnType,omitempty"`
	Calls      []CallSite `yaml:"calls,omitempty"`
	StartLine  int        `yaml:"startLine,omitempty"`
}

// ImplBlock is one impl block. Target and Trait reference type
// definitions by qualified name only; resolution happens at
// graph-build time.
type ImplBlock struct {
	Target  string   `yaml:"target"`
	Trait   string   `yaml:"trait,omitempty"`
	Methods []Method `yaml:"methods,omitempty"`
}

// Import is one imported path with an optional alias.
type Import struct {
	Path  string `yaml:"path"`
	Alias string `yaml:"alias,omitempty"`
}

// SourceUnit is the extracted architecture of one source file. The
// file path is its identity within a snapshot.
type SourceUnit struct {
	Path    string           `yaml:"path"`
	Module  string           `yaml:"module,omitempty"`
	Types   []TypeDefinition `yaml:"types,omitempty"`
	Impls   []ImplBlock      `yaml:"impls,omitempty"`
	Imports []Import         `yaml:"imports,omitempty"`
}

// Duplicate records one qualified name declared in more than one file.
type Duplicate struct {
	Qualified string
	Files     []string
}

func (d Duplicate) String() string {
	return fmt.Sprintf("%s declared in %s", d.Qualified, strings.Join(d.Files, " and "))
}

// Snapshot is the extracted architecture of a whole source tree.
type Snapshot struct {
	// Units maps canonical file path to its source unit.
	Units map[string]*SourceUnit

	// registry maps qualified type name to owning file path. Names
	// involved in a duplicate violation are excluded.
	registry map[string]string

	// duplicates lists qualified-name collisions found while building
	// the registry.
	duplicates []Duplicate
}

// New creates an empty snapshot.
func New() *Snapshot {
	return &Snapshot{
		Units:    make(map[string]*SourceUnit),
		registry: make(map[string]string),
	}
}

// Add inserts a source unit. Call Seal after the last Add; lookups
// before sealing see an empty registry.
func (s *Snapshot) Add(unit *SourceUnit) {
	s.Units[unit.Path] = unit
}

// Seal builds the qualified-name registry from all units. It runs once
// after every unit is added so duplicate detection does not depend on
// insertion order. Duplicated names are excluded from the registry and
// reported; everything else resolves normally.
func (s *Snapshot) Seal() []Duplicate {
	owners := make(map[string][]string)
	for _, unit := range s.Units {
		for _, t := range unit.Types {
			owners[t.Qualified] = append(owners[t.Qualified], unit.Path)
		}
	}

	s.registry = make(map[string]string, len(owners))
	s.duplicates = nil
	for qualified, files := range owners {
		if len(files) > 1 {
			sort.Strings(files)
			s.duplicates = append(s.duplicates, Duplicate{Qualified: qualified, Files: files})
			continue
		}
		s.registry[qualified] = files[0]
	}

	sort.Slice(s.duplicates, func(i, j int) bool {
		return s.duplicates[i].Qualified < s.duplicates[j].Qualified
	})

	return s.duplicates
}

// Duplicates returns the qualified-name collisions found at seal time.
func (s *Snapshot) Duplicates() []Duplicate {
	return s.duplicates
}

// Lookup resolves a qualified type name to its owning file path.
func (s *Snapshot) Lookup(qualified string) (string, bool) {
	path, ok := s.registry[qualified]
	return path, ok
}

// RegisteredTypes returns all resolvable qualified type names, sorted.
func (s *Snapshot) RegisteredTypes() []string {
	names := make([]string, 0, len(s.registry))
	for name := range s.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypeByQualified returns a type definition by qualified name.
func (s *Snapshot) TypeByQualified(qualified string) (*TypeDefinition, bool) {
	path, ok := s.registry[qualified]
	if !ok {
		return nil, false
	}
	unit := s.Units[path]
	for i := range unit.Types {
		if unit.Types[i].Qualified == qualified {
			return &unit.Types[i], true
		}
	}
	return nil, false
}

// SortedPaths returns all unit paths in sorted order.
func (s *Snapshot) SortedPaths() []string {
	out := make([]string, 0, len(s.Units))
	for path := range s.Units {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// TypeCount returns the number of type definitions across all units.
func (s *Snapshot) TypeCount() int {
	n := 0
	for _, unit := range s.Units {
		n += len(unit.Types)
	}
	return n
}

// Normalize sorts every unit's collections into the canonical order the
// store writes: types by name, impls by target then trait, methods by
// name, imports by path then alias. Call-site order within a method is
// source order and is preserved.
func (u *SourceUnit) Normalize() {
	sort.SliceStable(u.Types, func(i, j int) bool {
		return u.Types[i].Name < u.Types[j].Name
	})
	sort.SliceStable(u.Impls, func(i, j int) bool {
		if u.Impls[i].Target != u.Impls[j].Target {
			return u.Impls[i].Target < u.Impls[j].Target
		}
		return u.Impls[i].Trait < u.Impls[j].Trait
	})
	for i := range u.Impls {
		sort.SliceStable(u.Impls[i].Methods, func(a, b int) bool {
			return u.Impls[i].Methods[a].Name < u.Impls[i].Methods[b].Name
		})
	}
	sort.SliceStable(u.Imports, func(i, j int) bool {
		if u.Imports[i].Path != u.Imports[j].Path {
			return u.Imports[i].Path < u.Imports[j].Path
		}
		return u.Imports[i].Alias < u.Imports[j].Alias
	})
}

// QualifiedName joins a module path and a local type name.
func QualifiedName(module, name string) string {
	if module == "" {
		return name
	}
	return module + "::" + name
}

// LocalName returns the last segment of a qualified name.
func LocalName(qualified string) string {
	if idx := strings.LastIndex(qualified, "::"); idx >= 0 {
		return qualified[idx+2:]
	}
	return qualified
}
