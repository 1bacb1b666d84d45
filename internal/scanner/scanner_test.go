package scanner

import (
	"context"
	"testing"

	archerrors "archscope/internal/errors"
)

const widgetSource = `
use crate::factory::Factory;
use std::collections::HashMap;

pub struct Widget {
    pub id: u32,
    name: String,
    parts: Vec<Part>,
}

struct Part {
    label: String,
}

pub enum State {
    Idle,
    Running(u32),
    Done { code: i32 },
}

pub trait Draw {
    fn draw(&self);
}

impl Widget {
    pub fn new(id: u32) -> Widget {
        Widget { id, name: String::new(), parts: Vec::new() }
    }

    fn rename(&mut self, name: String) {
        self.name = name;
        log(name);
    }
}

impl Draw for Widget {
    fn draw(&self) {
        render(self.id);
    }
}
`

func scanTestSource(t *testing.T, src string) *FileSyntax {
	t.Helper()
	syntax, err := NewScanner().ScanSource(context.Background(), "src/widget.rs", []byte(src))
	if err != nil {
		t.Fatalf("ScanSource failed: %v", err)
	}
	return syntax
}

func TestScanTypes(t *testing.T) {
	syntax := scanTestSource(t, widgetSource)

	if len(syntax.Types) != 4 {
		t.Fatalf("expected 4 types, got %d", len(syntax.Types))
	}

	widget := syntax.Types[0]
	if widget.Name != "Widget" || widget.Kind != KindStruct {
		t.Errorf("expected struct Widget first, got %s %s", widget.Kind, widget.Name)
	}
	if widget.Visibility != "pub" {
		t.Errorf("expected Widget to be pub, got %q", widget.Visibility)
	}
	if len(widget.Fields) != 3 {
		t.Fatalf("expected 3 Widget fields, got %d", len(widget.Fields))
	}
	if widget.Fields[2].Name != "parts" || widget.Fields[2].TypeText != "Vec<Part>" {
		t.Errorf("expected field parts: Vec<Part>, got %s: %s",
			widget.Fields[2].Name, widget.Fields[2].TypeText)
	}

	part := syntax.Types[1]
	if part.Visibility != "" {
		t.Errorf("expected Part to be private, got %q", part.Visibility)
	}

	state := syntax.Types[2]
	if state.Kind != KindEnum {
		t.Errorf("expected State to be an enum, got %s", state.Kind)
	}
	if len(state.Fields) != 3 || state.Fields[1].Name != "Running" {
		t.Errorf("expected 3 variants with Running second, got %v", state.Fields)
	}

	draw := syntax.Types[3]
	if draw.Kind != KindTrait || draw.Name != "Draw" {
		t.Errorf("expected trait Draw, got %s %s", draw.Kind, draw.Name)
	}
}

func TestScanImpls(t *testing.T) {
	syntax := scanTestSource(t, widgetSource)

	if len(syntax.Impls) != 2 {
		t.Fatalf("expected 2 impl blocks, got %d", len(syntax.Impls))
	}

	inherent := syntax.Impls[0]
	if inherent.TargetType != "Widget" || inherent.TraitName != "" {
		t.Errorf("expected inherent impl Widget, got %s for %q", inherent.TargetType, inherent.TraitName)
	}
	if len(inherent.Methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(inherent.Methods))
	}

	newMethod := inherent.Methods[0]
	if newMethod.Name != "new" {
		t.Errorf("expected method new first, got %s", newMethod.Name)
	}
	if newMethod.ReturnType != "-> Widget" {
		t.Errorf("expected return type '-> Widget', got %q", newMethod.ReturnType)
	}
	if newMethod.Signature == "" || newMethod.Signature[len(newMethod.Signature)-1] == '{' {
		t.Errorf("signature should stop before the body, got %q", newMethod.Signature)
	}

	traitImpl := syntax.Impls[1]
	if traitImpl.TraitName != "Draw" || traitImpl.TargetType != "Widget" {
		t.Errorf("expected impl Draw for Widget, got %q for %q", traitImpl.TraitName, traitImpl.TargetType)
	}
}

func TestScanCallSites(t *testing.T) {
	syntax := scanTestSource(t, widgetSource)

	calls := syntax.Impls[0].Methods[0].Calls
	callees := make(map[string]bool)
	for _, c := range calls {
		callees[c.Callee] = true
	}
	if !callees["String::new"] || !callees["Vec::new"] {
		t.Errorf("expected String::new and Vec::new call sites, got %v", calls)
	}

	renameCalls := syntax.Impls[0].Methods[1].Calls
	if len(renameCalls) != 1 || renameCalls[0].Callee != "log" {
		t.Errorf("expected single call to log, got %v", renameCalls)
	}
}

func TestScanImports(t *testing.T) {
	syntax := scanTestSource(t, widgetSource)

	if len(syntax.Imports) != 2 {
		t.Fatalf("expected 2 imports, got %d", len(syntax.Imports))
	}
	if syntax.Imports[0].Path != "crate::factory::Factory" {
		t.Errorf("expected crate::factory::Factory, got %q", syntax.Imports[0].Path)
	}
	if syntax.Imports[1].Path != "std::collections::HashMap" {
		t.Errorf("expected std::collections::HashMap, got %q", syntax.Imports[1].Path)
	}
}

func TestScanGroupedAndAliasedImports(t *testing.T) {
	src := `
use crate::widgets::{Widget, Part};
use crate::factory::Factory as Builder;
`
	syntax := scanTestSource(t, src)

	if len(syntax.Imports) != 3 {
		t.Fatalf("expected 3 imports, got %d: %v", len(syntax.Imports), syntax.Imports)
	}
	if syntax.Imports[0].Path != "crate::widgets::Widget" {
		t.Errorf("expected grouped import to fan out, got %q", syntax.Imports[0].Path)
	}
	if syntax.Imports[1].Path != "crate::widgets::Part" {
		t.Errorf("expected grouped import to fan out, got %q", syntax.Imports[1].Path)
	}
	if syntax.Imports[2].Alias != "Builder" {
		t.Errorf("expected alias Builder, got %q", syntax.Imports[2].Alias)
	}
}

func TestScanInlineModule(t *testing.T) {
	src := `
mod inner {
    pub struct Hidden {
        value: u8,
    }
}
`
	syntax := scanTestSource(t, src)
	if len(syntax.Types) != 1 || syntax.Types[0].Name != "Hidden" {
		t.Errorf("expected type inside inline module to be scanned, got %v", syntax.Types)
	}
}

func TestScanUnbalancedSource(t *testing.T) {
	src := "pub struct Broken {\n    field: u32,\n"
	_, err := NewScanner().ScanSource(context.Background(), "src/broken.rs", []byte(src))
	if err == nil {
		t.Fatal("expected unbalanced source to fail")
	}
	if !archerrors.HasCode(err, archerrors.ScanFailed) {
		t.Errorf("expected SCAN_FAILED, got %v", err)
	}
}

func TestScanSkipsUnrecognizedSyntax(t *testing.T) {
	src := `
macro_rules! gadget { () => {}; }

pub struct Survivor {
    field: u32,
}

const SOME_CONSTANT: u32 = 7;
`
	syntax := scanTestSource(t, src)
	if len(syntax.Types) != 1 || syntax.Types[0].Name != "Survivor" {
		t.Errorf("unrecognized constructs should be skipped, not fatal; got %v", syntax.Types)
	}
}

func TestCheckDelimiters(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		wantErr bool
	}{
		{"balanced", "fn main() { let x = (1 + 2) * [3][0]; }", false},
		{"brace in string", "fn main() { let s = \"{\"; }", false},
		{"brace in comment", "fn main() { /* { */ }", false},
		{"brace in line comment", "fn main() { // {\n}", false},
		{"lifetime is not a literal", "fn id<'a>(x: &'a str) -> &'a str { x }", false},
		{"unclosed brace", "fn main() {", true},
		{"unmatched close", "fn main() }", true},
		{"mismatched pair", "fn main() { (]) }", true},
		{"unterminated string", "fn main() { let s = \"oops; }", true},
		{"unterminated block comment", "fn main() {} /* trailing", true},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := checkDelimiters([]byte(tt.src))
			if tt.wantErr && err == nil {
				t.Errorf("expected error for %q", tt.src)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for %q: %v", tt.src, err)
			}
		})
	}
}
