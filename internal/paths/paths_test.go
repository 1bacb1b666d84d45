package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalizePath(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "src", "widgets")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "widget.rs")
	if err := os.WriteFile(file, []byte("struct Widget;"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := CanonicalizePath(file, root)
	if err != nil {
		t.Fatalf("CanonicalizePath failed: %v", err)
	}
	if got != "src/widgets/widget.rs" {
		t.Errorf("expected src/widgets/widget.rs, got %q", got)
	}
}

func TestCanonicalizePathNonexistent(t *testing.T) {
	root := t.TempDir()
	got, err := CanonicalizePath(filepath.Join(root, "src", "missing.rs"), root)
	if err != nil {
		t.Fatalf("nonexistent paths should not fail: %v", err)
	}
	if got != "src/missing.rs" {
		t.Errorf("expected src/missing.rs, got %q", got)
	}
}

func TestIsWithinRoot(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "src", "main.rs")
	outside := filepath.Join(root, "..", "elsewhere.rs")

	if !IsWithinRoot(inside, root) {
		t.Error("path under root should be within root")
	}
	if IsWithinRoot(outside, root) {
		t.Error("path outside root should not be within root")
	}
}

func TestSnapshotFileNameRoundTrip(t *testing.T) {
	cases := []string{
		"src/main.rs",
		"src/widgets/factory.rs",
		"lib.rs",
	}
	for _, c := range cases {
		name := SnapshotFileName(c)
		back, ok := SourcePathFromSnapshotFile(name)
		if !ok {
			t.Errorf("%q: expected snapshot file to be recognized", name)
			continue
		}
		if back != c {
			t.Errorf("round trip of %q gave %q", c, back)
		}
	}
}

func TestSourcePathFromSnapshotFileRejectsOtherFiles(t *testing.T) {
	if _, ok := SourcePathFromSnapshotFile("notes.txt"); ok {
		t.Error("non-snapshot files should be rejected")
	}
}
