package scanner

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	archerrors "archscope/internal/errors"
)

// TypeKind classifies a scanned type declaration.
type TypeKind string

const (
	// KindStruct is a plain data type
	KindStruct TypeKind = "struct"
	// KindEnum is an enumerated variant type
	KindEnum TypeKind = "enum"
	// KindTrait is a trait (interface-like) type
	KindTrait TypeKind = "trait"
)

// FileSyntax is the scanner's view of one source file.
type FileSyntax struct {
	Path    string
	Types   []TypeDecl
	Impls   []ImplDecl
	Imports []UseDecl
}

// TypeDecl is a scanned type declaration.
type TypeDecl struct {
	Name       string
	Kind       TypeKind
	Visibility string // "pub", "pub(crate)", ... or empty
	Fields     []FieldDecl
	StartLine  int
	EndLine    int
}

// FieldDecl is one struct field or enum variant.
type FieldDecl struct {
	Name     string
	TypeText string // raw declared-type text, no generic resolution
}

// ImplDecl is a scanned impl block.
type ImplDecl struct {
	TargetType string
	TraitName  string // empty for inherent impls
	Methods    []MethodDecl
	StartLine  int
	EndLine    int
}

// MethodDecl is one function inside an impl or trait block.
type MethodDecl struct {
	Name       string
	Signature  string // signature text up to the body
	ReturnType string // raw return type text, empty for unit
	Calls      []CallDecl
	StartLine  int
}

// CallDecl is one call expression found in a method body.
type CallDecl struct {
	Callee string // verbatim callee expression, e.g. Widget::new or self.draw
	Line   int
}

// UseDecl is one imported symbol or path.
type UseDecl struct {
	Path  string // e.g. crate::widgets::Widget
	Alias string // rename from `use ... as alias`, or empty
	Line  int
}

// Scanner scans Rust source into FileSyntax.
type Scanner struct {
	parser *Parser
}

// NewScanner creates a Scanner.
func NewScanner() *Scanner {
	return &Scanner{parser: NewParser()}
}

// ScanSource scans one file's source text. A delimiter-balance failure
// returns a SCAN_FAILED error; everything else is best-effort.
func (s *Scanner) ScanSource(ctx context.Context, path string, source []byte) (*FileSyntax, error) {
	if err := checkDelimiters(source); err != nil {
		return nil, archerrors.New(archerrors.ScanFailed,
			fmt.Sprintf("cannot scan %s", path), err)
	}

	root, err := s.parser.Parse(ctx, source)
	if err != nil {
		return nil, archerrors.New(archerrors.ScanFailed,
			fmt.Sprintf("cannot parse %s", path), err)
	}

	syntax := &FileSyntax{Path: path}

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			switch child.Type() {
			case "struct_item":
				if decl, ok := scanStruct(child, source); ok {
					syntax.Types = append(syntax.Types, decl)
				}
			case "enum_item":
				if decl, ok := scanEnum(child, source); ok {
					syntax.Types = append(syntax.Types, decl)
				}
			case "trait_item":
				if decl, ok := scanTrait(child, source); ok {
					syntax.Types = append(syntax.Types, decl)
				}
			case "impl_item":
				if decl, ok := scanImpl(child, source); ok {
					syntax.Impls = append(syntax.Impls, decl)
				}
			case "use_declaration":
				syntax.Imports = append(syntax.Imports, scanUse(child, source)...)
			case "mod_item":
				// Inline modules nest further declarations.
				if body := childOfType(child, "declaration_list"); body != nil {
					walk(body)
				}
			}
		}
	}
	walk(root)

	return syntax, nil
}

func scanStruct(node *sitter.Node, source []byte) (TypeDecl, bool) {
	name := nodeText(node.ChildByFieldName("name"), source)
	if name == "" {
		return TypeDecl{}, false
	}

	decl := TypeDecl{
		Name:       name,
		Kind:       KindStruct,
		Visibility: visibilityOf(node, source),
		StartLine:  startLine(node),
		EndLine:    endLine(node),
	}

	if body := node.ChildByFieldName("body"); body != nil && body.Type() == "field_declaration_list" {
		for i := 0; i < int(body.ChildCount()); i++ {
			field := body.Child(i)
			if field == nil || field.Type() != "field_declaration" {
				continue
			}
			fieldName := nodeText(field.ChildByFieldName("name"), source)
			fieldType := nodeText(field.ChildByFieldName("type"), source)
			if fieldName == "" {
				continue
			}
			decl.Fields = append(decl.Fields, FieldDecl{Name: fieldName, TypeText: fieldType})
		}
	}

	return decl, true
}

func scanEnum(node *sitter.Node, source []byte) (TypeDecl, bool) {
	name := nodeText(node.ChildByFieldName("name"), source)
	if name == "" {
		return TypeDecl{}, false
	}

	decl := TypeDecl{
		Name:       name,
		Kind:       KindEnum,
		Visibility: visibilityOf(node, source),
		StartLine:  startLine(node),
		EndLine:    endLine(node),
	}

	// Variants are recorded as fields: variant name plus its payload text.
	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			variant := body.Child(i)
			if variant == nil || variant.Type() != "enum_variant" {
				continue
			}
			variantName := nodeText(variant.ChildByFieldName("name"), source)
			if variantName == "" {
				continue
			}
			payload := ""
			if v := variant.ChildByFieldName("body"); v != nil {
				payload = nodeText(v, source)
			}
			decl.Fields = append(decl.Fields, FieldDecl{Name: variantName, TypeText: payload})
		}
	}

	return decl, true
}

func scanTrait(node *sitter.Node, source []byte) (TypeDecl, bool) {
	name := nodeText(node.ChildByFieldName("name"), source)
	if name == "" {
		return TypeDecl{}, false
	}

	return TypeDecl{
		Name:       name,
		Kind:       KindTrait,
		Visibility: visibilityOf(node, source),
		StartLine:  startLine(node),
		EndLine:    endLine(node),
	}, true
}

func scanImpl(node *sitter.Node, source []byte) (ImplDecl, bool) {
	target := typeNameText(node.ChildByFieldName("type"), source)
	if target == "" {
		return ImplDecl{}, false
	}

	decl := ImplDecl{
		TargetType: target,
		TraitName:  typeNameText(node.ChildByFieldName("trait"), source),
		StartLine:  startLine(node),
		EndLine:    endLine(node),
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return decl, true
	}

	for i := 0; i < int(body.ChildCount()); i++ {
		fn := body.Child(i)
		if fn == nil || fn.Type() != "function_item" {
			continue
		}
		if method, ok := scanMethod(fn, source); ok {
			decl.Methods = append(decl.Methods, method)
		}
	}

	return decl, true
}

func scanMethod(node *sitter.Node, source []byte) (MethodDecl, bool) {
	name := nodeText(node.ChildByFieldName("name"), source)
	if name == "" {
		return MethodDecl{}, false
	}

	method := MethodDecl{
		Name:       name,
		Signature:  signatureText(node, source),
		ReturnType: strings.TrimSpace(nodeText(node.ChildByFieldName("return_type"), source)),
		StartLine:  startLine(node),
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for _, call := range findNodes(body, "call_expression") {
			callee := nodeText(call.ChildByFieldName("function"), source)
			if callee == "" {
				continue
			}
			method.Calls = append(method.Calls, CallDecl{
				Callee: callee,
				Line:   startLine(call),
			})
		}
	}

	return method, true
}

// scanUse flattens one use declaration into one UseDecl per imported
// symbol. Grouped imports (`use a::{B, C}`) fan out; glob imports keep
// their trailing star.
func scanUse(node *sitter.Node, source []byte) []UseDecl {
	arg := node.ChildByFieldName("argument")
	if arg == nil {
		return nil
	}
	return flattenUseTree(arg, source, "", startLine(node))
}

func flattenUseTree(node *sitter.Node, source []byte, prefix string, line int) []UseDecl {
	joinPath := func(a, b string) string {
		if a == "" {
			return b
		}
		return a + "::" + b
	}

	switch node.Type() {
	case "use_as_clause":
		path := nodeText(node.ChildByFieldName("path"), source)
		alias := nodeText(node.ChildByFieldName("alias"), source)
		return []UseDecl{{Path: joinPath(prefix, path), Alias: alias, Line: line}}

	case "scoped_use_list":
		path := nodeText(node.ChildByFieldName("path"), source)
		list := node.ChildByFieldName("list")
		if list == nil {
			return nil
		}
		var decls []UseDecl
		for i := 0; i < int(list.ChildCount()); i++ {
			child := list.Child(i)
			if child == nil || !child.IsNamed() {
				continue
			}
			decls = append(decls, flattenUseTree(child, source, joinPath(prefix, path), line)...)
		}
		return decls

	case "use_wildcard":
		return []UseDecl{{Path: joinPath(prefix, nodeText(node, source)), Line: line}}

	case "identifier", "scoped_identifier", "crate", "self", "super":
		return []UseDecl{{Path: joinPath(prefix, nodeText(node, source)), Line: line}}
	}

	return nil
}

// visibilityOf returns the visibility modifier text of a declaration.
func visibilityOf(node *sitter.Node, source []byte) string {
	return nodeText(childOfType(node, "visibility_modifier"), source)
}

// typeNameText extracts a bare type name from a (possibly generic or
// scoped) type node: `Foo<T>` -> Foo, `a::b::Foo` -> a::b::Foo.
func typeNameText(node *sitter.Node, source []byte) string {
	text := nodeText(node, source)
	if idx := strings.Index(text, "<"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// signatureText returns a function's text up to its body.
func signatureText(node *sitter.Node, source []byte) string {
	text := nodeText(node, source)
	if idx := strings.Index(text, "{"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
