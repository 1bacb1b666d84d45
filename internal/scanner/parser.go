// Package scanner turns Rust source text into the structured syntax
// archscope extracts architecture from: type declarations, impl blocks,
// use declarations, and the call expressions inside method bodies.
//
// The scanner is best-effort, not a compiler front end: constructs it
// does not understand are skipped. It only fails a file outright when
// delimiters are unbalanced or unterminated.
package scanner

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
)

// Parser wraps a tree-sitter parser configured for Rust.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new Rust parser.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return &Parser{parser: p}
}

// Parse parses source code and returns the AST root node.
func (p *Parser) Parse(ctx context.Context, source []byte) (*sitter.Node, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return tree.RootNode(), nil
}

// nodeText returns the source text covered by a node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// startLine returns the 1-indexed first line of a node.
func startLine(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// endLine returns the 1-indexed last line of a node.
func endLine(node *sitter.Node) int {
	return int(node.EndPoint().Row) + 1
}

// findNodes collects all descendants of root whose type is in types.
func findNodes(root *sitter.Node, types ...string) []*sitter.Node {
	if root == nil || len(types) == 0 {
		return nil
	}

	var result []*sitter.Node

	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		for _, t := range types {
			if node.Type() == t {
				result = append(result, node)
				break
			}
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}

	walk(root)
	return result
}

// childOfType returns the first direct child with the given node type.
func childOfType(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == nodeType {
			return child
		}
	}
	return nil
}
