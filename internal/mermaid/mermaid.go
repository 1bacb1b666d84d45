// Package mermaid turns relationship graphs into mermaid diagram
// markup. Three modes: class (full classDiagram with members and all
// edge kinds), state (stateDiagram-v2 over the transition layer), and
// connections (abbreviated graph LR with one edge per node pair).
package mermaid

import (
	"fmt"
	"sort"
	"strings"

	"archscope/internal/errors"
	"archscope/internal/graph"
	"archscope/internal/snapshot"
)

// Mode selects the diagram flavor.
type Mode string

const (
	// ModeClass is the full class diagram.
	ModeClass Mode = "class"
	// ModeState is the state-transition diagram.
	ModeState Mode = "state"
	// ModeConnections is the abbreviated connections view.
	ModeConnections Mode = "connections"
)

// ParseMode validates a mode string from the command line.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeClass, ModeState, ModeConnections:
		return Mode(s), nil
	default:
		return "", errors.New(errors.RenderMarkup,
			fmt.Sprintf("unknown diagram mode %q (expected class, state, or connections)", s), nil)
	}
}

// Renderer emits markup for one snapshot's graph. The snapshot
// supplies class-body detail (fields, methods); markup structure comes
// from the graph alone.
type Renderer struct {
	snap *snapshot.Snapshot
}

// NewRenderer creates a renderer. snap may be nil, in which case class
// bodies are empty.
func NewRenderer(snap *snapshot.Snapshot) *Renderer {
	return &Renderer{snap: snap}
}

// Render produces diagram markup for the graph in the given mode.
func (r *Renderer) Render(g *graph.Graph, mode Mode) (string, error) {
	for _, e := range g.Edges {
		if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
			return "", errors.New(errors.RenderMarkup,
				fmt.Sprintf("edge %s -> %s references a node outside the graph", e.Source, e.Target), nil)
		}
	}

	names := displayNames(g.Nodes)
	switch mode {
	case ModeClass:
		return r.renderClass(g, names), nil
	case ModeState:
		return r.renderState(g, names), nil
	case ModeConnections:
		return r.renderConnections(g, names), nil
	default:
		return "", errors.New(errors.RenderMarkup, fmt.Sprintf("unknown diagram mode %q", mode), nil)
	}
}

// displayNames maps qualified names to mermaid-safe identifiers. Local
// names are used when unique; colliding locals keep their full module
// path with :: flattened to _.
func displayNames(nodes []string) map[string]string {
	byLocal := make(map[string][]string)
	for _, n := range nodes {
		local := snapshot.LocalName(n)
		byLocal[local] = append(byLocal[local], n)
	}

	names := make(map[string]string, len(nodes))
	for local, qualifieds := range byLocal {
		if len(qualifieds) == 1 {
			names[qualifieds[0]] = local
			continue
		}
		for _, q := range qualifieds {
			names[q] = strings.ReplaceAll(q, "::", "_")
		}
	}
	return names
}

func (r *Renderer) renderClass(g *graph.Graph, names map[string]string) string {
	var b strings.Builder
	b.WriteString("classDiagram\n")

	for _, node := range g.Nodes {
		b.WriteString(fmt.Sprintf("    class %s {\n", names[node]))
		if r.snap != nil {
			if def, ok := r.snap.TypeByQualified(node); ok {
				for _, f := range def.Fields {
					if f.Type != "" {
						b.WriteString(fmt.Sprintf("        +%s: %s\n", f.Name, escapeMember(f.Type)))
					} else {
						b.WriteString(fmt.Sprintf("        +%s\n", f.Name))
					}
				}
			}
			for _, m := range r.methodsOf(node) {
				if m.ReturnType != "" {
					b.WriteString(fmt.Sprintf("        +%s() %s\n", m.Name, escapeMember(m.ReturnType)))
				} else {
					b.WriteString(fmt.Sprintf("        +%s()\n", m.Name))
				}
			}
		}
		b.WriteString("    }\n\n")
	}

	for _, e := range g.Edges {
		src, dst := names[e.Source], names[e.Target]
		switch e.Kind {
		case graph.KindImplements:
			b.WriteString(fmt.Sprintf("    %s ..|> %s\n", src, dst))
		case graph.KindContains:
			b.WriteString(fmt.Sprintf("    %s o-- %s : %s\n", src, dst, e.Label))
		case graph.KindCalls:
			if e.Label != "" {
				b.WriteString(fmt.Sprintf("    %s --> %s : %s\n", src, dst, e.Label))
			} else {
				b.WriteString(fmt.Sprintf("    %s --> %s\n", src, dst))
			}
		case graph.KindTransition:
			// The transition layer duplicates calls edges; the class
			// view shows each relationship once.
		}
	}

	return b.String()
}

func (r *Renderer) renderState(g *graph.Graph, names map[string]string) string {
	var b strings.Builder
	b.WriteString("stateDiagram-v2\n")

	for _, e := range g.Edges {
		if e.Kind != graph.KindTransition {
			continue
		}
		if e.Label != "" {
			b.WriteString(fmt.Sprintf("    %s --> %s : %s\n", names[e.Source], names[e.Target], e.Label))
		} else {
			b.WriteString(fmt.Sprintf("    %s --> %s\n", names[e.Source], names[e.Target]))
		}
	}

	return b.String()
}

func (r *Renderer) renderConnections(g *graph.Graph, names map[string]string) string {
	collapsed := g.Collapse()

	var b strings.Builder
	b.WriteString("graph LR\n\n")
	for _, e := range collapsed.Edges {
		b.WriteString(fmt.Sprintf("    %s --> %s\n", names[e.Source], names[e.Target]))
	}
	return b.String()
}

// methodsOf gathers the methods from every impl block targeting the
// type, sorted by name.
func (r *Renderer) methodsOf(qualified string) []snapshot.Method {
	var methods []snapshot.Method
	for _, path := range r.snap.SortedPaths() {
		for _, impl := range r.snap.Units[path].Impls {
			if impl.Target == qualified {
				methods = append(methods, impl.Methods...)
			}
		}
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i].Name < methods[j].Name })
	return methods
}

// escapeMember strips characters mermaid treats as markup inside class
// bodies.
func escapeMember(s string) string {
	replacer := strings.NewReplacer("<", "~", ">", "~", "{", "", "}", "")
	return replacer.Replace(s)
}

// WithThemeInit prepends a mermaid init directive carrying the theme.
// Markup that already opens with an init directive is returned as is.
func WithThemeInit(markup, theme string) string {
	if theme == "" || strings.HasPrefix(strings.TrimSpace(markup), "%%{init") {
		return markup
	}
	init := fmt.Sprintf("%%%%{init: {'theme': '%s'}}%%%%\n", theme)
	return init + markup
}
