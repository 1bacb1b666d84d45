// Package graph builds the relationship graph over a sealed snapshot:
// call edges from resolved call sites, implements edges from trait
// impls, containment edges from field types, and a derived
// state-transition layer over constructor-like calls.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"archscope/internal/errors"
	"archscope/internal/extract"
	"archscope/internal/snapshot"
)

// EdgeKind labels the relationship an edge represents.
type EdgeKind string

const (
	// KindCalls means the source's methods invoke the target.
	KindCalls EdgeKind = "calls"
	// KindImplements means the source implements the target trait.
	KindImplements EdgeKind = "implements"
	// KindContains means the source holds the target as a field.
	KindContains EdgeKind = "contains"
	// KindTransition is the derived state-transition layer: a call to
	// a constructor-like or self-returning method on the target.
	KindTransition EdgeKind = "transition"
)

// Edge is one directed, labeled relationship between two nodes.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind,omitempty"`
	Label  string   `json:"label,omitempty"`
}

// Graph is the relationship graph over a snapshot's types. Nodes and
// edges are sorted and deduplicated so a snapshot always produces the
// identical graph.
type Graph struct {
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// HasNode reports whether the qualified name is a node of the graph.
func (g *Graph) HasNode(qualified string) bool {
	idx := sort.SearchStrings(g.Nodes, qualified)
	return idx < len(g.Nodes) && g.Nodes[idx] == qualified
}

// wrapperTypes are standard container and smart-pointer types that are
// looked through when deriving containment edges: a field of type
// Option<Arc<Widget>> contains a Widget.
var wrapperTypes = map[string]bool{
	"Option":   true,
	"Result":   true,
	"Box":      true,
	"Rc":       true,
	"Arc":      true,
	"Cell":     true,
	"RefCell":  true,
	"Mutex":    true,
	"RwLock":   true,
	"Vec":      true,
	"VecDeque": true,
	"HashSet":  true,
	"BTreeSet": true,
	"HashMap":  true,
	"BTreeMap": true,
}

// Build constructs the relationship graph for a sealed snapshot.
// Unresolved callees contribute no edges. Building fails only when the
// snapshot carries qualified-name collisions, since resolution against
// an ambiguous registry would be arbitrary.
func Build(snap *snapshot.Snapshot) (*Graph, error) {
	if dups := snap.Duplicates(); len(dups) > 0 {
		return nil, errors.New(errors.GraphInvalid,
			fmt.Sprintf("snapshot has %d duplicate qualified names", len(dups)), nil).
			WithDetails(dups)
	}

	b := &builder{
		snap:    snap,
		edges:   make(map[Edge]bool),
		methods: make(map[string][]snapshot.Method),
	}

	// Impl surfaces first: transition tagging needs the callee's
	// method list regardless of file order.
	for _, path := range snap.SortedPaths() {
		for _, impl := range snap.Units[path].Impls {
			b.methods[impl.Target] = append(b.methods[impl.Target], impl.Methods...)
		}
	}

	for _, path := range snap.SortedPaths() {
		unit := snap.Units[path]
		resolver := extract.NewResolver(snap, unit)

		for _, t := range unit.Types {
			for _, field := range t.Fields {
				for _, ref := range fieldTypeRefs(field.Type) {
					if target, ok := resolver.Resolve(ref); ok && target != t.Qualified {
						b.add(Edge{Source: t.Qualified, Target: target, Kind: KindContains, Label: field.Name})
					}
				}
			}
		}

		for _, impl := range unit.Impls {
			source := impl.Target
			if _, ok := snap.Lookup(source); !ok {
				continue
			}
			if impl.Trait != "" {
				if _, ok := snap.Lookup(impl.Trait); ok {
					b.add(Edge{Source: source, Target: impl.Trait, Kind: KindImplements})
				}
			}
			for _, method := range impl.Methods {
				for _, call := range method.Calls {
					if call.Unresolved || call.Target == "" || call.Target == source {
						continue
					}
					callee := extract.CalleeMethod(call.Callee)
					b.add(Edge{Source: source, Target: call.Target, Kind: KindCalls, Label: callee})
					if b.isTransition(call.Target, callee) {
						b.add(Edge{Source: source, Target: call.Target, Kind: KindTransition, Label: callee})
					}
				}
			}
		}
	}

	return b.finish(), nil
}

type builder struct {
	snap    *snapshot.Snapshot
	edges   map[Edge]bool
	methods map[string][]snapshot.Method
}

func (b *builder) add(e Edge) {
	b.edges[e] = true
}

// isTransition reports whether calling the named method on the target
// type reads as a state change: a constructor-like name, or a method
// the target declares as returning Self.
func (b *builder) isTransition(target, method string) bool {
	if method == "" {
		return false
	}
	if method == "new" || method == "default" ||
		strings.HasPrefix(method, "new_") ||
		strings.HasPrefix(method, "with_") ||
		strings.HasPrefix(method, "from_") {
		return true
	}
	localName := snapshot.LocalName(target)
	for _, m := range b.methods[target] {
		if m.Name != method {
			continue
		}
		if strings.Contains(m.ReturnType, "Self") || strings.Contains(m.ReturnType, localName) {
			return true
		}
	}
	return false
}

func (b *builder) finish() *Graph {
	g := &Graph{Nodes: b.snap.RegisteredTypes()}
	for e := range b.edges {
		g.Edges = append(g.Edges, e)
	}
	sortEdges(g.Edges)
	return g
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Label < b.Label
	})
}

// Collapse produces the abbreviated connections view: one unlabeled
// edge per (source, target) pair regardless of kind, and only nodes
// that touch at least one edge. Collapsing a collapsed graph is a
// no-op.
func (g *Graph) Collapse() *Graph {
	pairs := make(map[Edge]bool)
	connected := make(map[string]bool)
	for _, e := range g.Edges {
		pairs[Edge{Source: e.Source, Target: e.Target}] = true
		connected[e.Source] = true
		connected[e.Target] = true
	}

	out := &Graph{}
	for _, n := range g.Nodes {
		if connected[n] {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for e := range pairs {
		out.Edges = append(out.Edges, e)
	}
	sortEdges(out.Edges)
	return out
}

// fieldTypeRefs extracts the resolvable type references from a field's
// declared type text, looking through references, lifetimes, and
// wrapper types.
func fieldTypeRefs(typeText string) []string {
	typeText = strings.TrimSpace(typeText)
	for {
		trimmed := typeText
		for _, prefix := range []string{"&mut ", "&", "dyn ", "impl ", "mut "} {
			trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
		}
		if trimmed == typeText {
			break
		}
		typeText = trimmed
	}
	name, args := splitGeneric(typeText)
	if strings.HasPrefix(name, "'") {
		// A bare reference like &'a Widget leaves the lifetime as the
		// head token; the real type follows it.
		if idx := strings.IndexAny(name, " \t"); idx >= 0 {
			return fieldTypeRefs(name[idx+1:] + args)
		}
		return nil
	}

	if wrapperTypes[name] || wrapperTypes[snapshot.LocalName(name)] {
		var refs []string
		for _, arg := range splitGenericArgs(args) {
			refs = append(refs, fieldTypeRefs(arg)...)
		}
		return refs
	}

	if name == "" || !isTypeStart(name[0]) {
		return nil
	}
	return []string{name}
}

func isTypeStart(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_'
}

// splitGeneric splits "HashMap<String, Widget>" into the head name and
// the bracketed argument text (including the brackets).
func splitGeneric(t string) (name, args string) {
	if idx := strings.Index(t, "<"); idx >= 0 && strings.HasSuffix(t, ">") {
		return t[:idx], t[idx:]
	}
	return t, ""
}

// splitGenericArgs splits "<String, Vec<Widget>>" into its top-level
// comma-separated arguments.
func splitGenericArgs(args string) []string {
	args = strings.TrimSuffix(strings.TrimPrefix(args, "<"), ">")
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case '<', '(':
			depth++
		case '>', ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(args[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(args[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}
