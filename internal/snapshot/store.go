package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	archerrors "archscope/internal/errors"
	"archscope/internal/paths"
)

// Store persists snapshots as a directory of YAML documents, one per
// source unit. Output is deterministic: collections are written in
// canonical order and source-line provenance is dropped, so two
// semantically identical snapshots produce byte-identical directories
// regardless of the original declaration order.
type Store struct{}

// NewStore creates a Store.
func NewStore() *Store {
	return &Store{}
}

// storedUnit is the on-disk form of a SourceUnit.
type storedUnit struct {
	Schema int         `yaml:"schema"`
	Unit   *SourceUnit `yaml:"unit"`
}

// StoreSchemaVersion is the current snapshot document schema.
const StoreSchemaVersion = 1

// Write emits one document per source unit into dir, creating it if
// needed. Stale documents from a previous write are removed so the
// directory mirrors the snapshot exactly.
func (st *Store) Write(snap *Snapshot, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	wanted := make(map[string]bool)
	for _, path := range snap.SortedPaths() {
		unit := snap.Units[path]

		canonical := stripProvenance(unit)
		canonical.Normalize()

		doc := storedUnit{Schema: StoreSchemaVersion, Unit: canonical}
		data, err := yaml.Marshal(&doc)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}

		fileName := paths.SnapshotFileName(path)
		wanted[fileName] = true
		if err := os.WriteFile(filepath.Join(dir, fileName), data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", fileName, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := paths.SourcePathFromSnapshotFile(entry.Name()); !ok {
			continue
		}
		if !wanted[entry.Name()] {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
	}

	return nil
}

// Read loads a snapshot directory written by Write. The returned
// snapshot is sealed. Directories that cannot be parsed surface
// DIFF_INCOMPATIBLE, since diffing is the operation that requires a
// readable pair of snapshots.
func (st *Store) Read(dir string) (*Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, archerrors.New(archerrors.SnapshotMissing,
				fmt.Sprintf("snapshot directory %s does not exist", dir), err)
		}
		return nil, archerrors.New(archerrors.DiffIncompatible,
			fmt.Sprintf("cannot read snapshot directory %s", dir), err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := paths.SourcePathFromSnapshotFile(entry.Name()); ok {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, archerrors.New(archerrors.SnapshotMissing,
			fmt.Sprintf("no snapshot documents in %s", dir), nil)
	}

	snap := New()
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, archerrors.New(archerrors.DiffIncompatible,
				fmt.Sprintf("cannot read snapshot document %s", name), err)
		}

		var doc storedUnit
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, archerrors.New(archerrors.DiffIncompatible,
				fmt.Sprintf("cannot parse snapshot document %s", name), err)
		}
		if doc.Unit == nil || doc.Unit.Path == "" {
			return nil, archerrors.New(archerrors.DiffIncompatible,
				fmt.Sprintf("snapshot document %s has no source unit", name), nil)
		}
		if doc.Schema != StoreSchemaVersion {
			return nil, archerrors.New(archerrors.DiffIncompatible,
				fmt.Sprintf("snapshot document %s has schema %d, want %d",
					name, doc.Schema, StoreSchemaVersion), nil)
		}

		snap.Add(doc.Unit)
	}

	snap.Seal()
	return snap, nil
}

// stripProvenance deep-copies a unit without source-line information.
// Line numbers are provenance, not identity, and would break the
// byte-determinism guarantee when declarations move.
func stripProvenance(unit *SourceUnit) *SourceUnit {
	out := &SourceUnit{
		Path:   unit.Path,
		Module: unit.Module,
	}

	out.Types = make([]TypeDefinition, len(unit.Types))
	for i, t := range unit.Types {
		copied := t
		copied.StartLine = 0
		copied.EndLine = 0
		copied.Fields = append([]Field(nil), t.Fields...)
		out.Types[i] = copied
	}

	out.Impls = make([]ImplBlock, len(unit.Impls))
	for i, impl := range unit.Impls {
		copied := ImplBlock{Target: impl.Target, Trait: impl.Trait}
		copied.Methods = make([]Method, len(impl.Methods))
		for j, m := range impl.Methods {
			method := m
			method.StartLine = 0
			method.Calls = make([]CallSite, len(m.Calls))
			for k, c := range m.Calls {
				call := c
				call.Line = 0
				method.Calls[k] = call
			}
			copied.Methods[j] = method
		}
		out.Impls[i] = copied
	}

	out.Imports = append([]Import(nil), unit.Imports...)
	return out
}
