package graph

import (
	"testing"

	"archscope/internal/errors"
	"archscope/internal/extract"
	"archscope/internal/snapshot"
)

func sealedSnapshot(t *testing.T, units ...*snapshot.SourceUnit) *snapshot.Snapshot {
	t.Helper()
	snap := snapshot.New()
	for _, u := range units {
		snap.Add(u)
	}
	snap.Seal()
	extract.ResolveCalls("gearbox", snap)
	return snap
}

func widgetAndFactory() []*snapshot.SourceUnit {
	return []*snapshot.SourceUnit{
		{
			Path:   "src/widget.rs",
			Module: "gearbox::widget",
			Types: []snapshot.TypeDefinition{{
				Name:      "Widget",
				Qualified: "gearbox::widget::Widget",
				Kind:      snapshot.KindStruct,
			}},
			Impls: []snapshot.ImplBlock{{
				Target: "gearbox::widget::Widget",
				Methods: []snapshot.Method{
					{Name: "new", Signature: "pub fn new() -> Self", ReturnType: "Self"},
				},
			}},
		},
		{
			Path:   "src/factory.rs",
			Module: "gearbox::factory",
			Types: []snapshot.TypeDefinition{{
				Name:      "Factory",
				Qualified: "gearbox::factory::Factory",
				Kind:      snapshot.KindStruct,
			}},
			Impls: []snapshot.ImplBlock{{
				Target: "gearbox::factory::Factory",
				Methods: []snapshot.Method{{
					Name:      "make",
					Signature: "pub fn make(&self) -> Widget",
					Calls:     []snapshot.CallSite{{Callee: "Widget::new"}},
				}},
			}},
			Imports: []snapshot.Import{{Path: "crate::widget::Widget"}},
		},
	}
}

func hasEdge(g *Graph, e Edge) bool {
	for _, got := range g.Edges {
		if got == e {
			return true
		}
	}
	return false
}

// A cross-file constructor call produces a calls edge from the calling
// type to the resolved target.
func TestBuildCallsEdge(t *testing.T) {
	snap := sealedSnapshot(t, widgetAndFactory()...)
	g, err := Build(snap)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := Edge{
		Source: "gearbox::factory::Factory",
		Target: "gearbox::widget::Widget",
		Kind:   KindCalls,
		Label:  "new",
	}
	if !hasEdge(g, want) {
		t.Errorf("missing calls edge, got %v", g.Edges)
	}
}

// Calling a constructor on another type also tags a transition edge.
func TestBuildTransitionEdge(t *testing.T) {
	snap := sealedSnapshot(t, widgetAndFactory()...)
	g, err := Build(snap)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := Edge{
		Source: "gearbox::factory::Factory",
		Target: "gearbox::widget::Widget",
		Kind:   KindTransition,
		Label:  "new",
	}
	if !hasEdge(g, want) {
		t.Errorf("missing transition edge, got %v", g.Edges)
	}
}

func TestBuildImplementsAndContains(t *testing.T) {
	units := []*snapshot.SourceUnit{
		{
			Path:   "src/shapes.rs",
			Module: "gearbox::shapes",
			Types: []snapshot.TypeDefinition{
				{Name: "Draw", Qualified: "gearbox::shapes::Draw", Kind: snapshot.KindTrait},
				{
					Name:      "Canvas",
					Qualified: "gearbox::shapes::Canvas",
					Kind:      snapshot.KindStruct,
					Fields: []snapshot.Field{
						{Name: "layers", Type: "Vec<Arc<Layer>>"},
						{Name: "title", Type: "String"},
					},
				},
				{Name: "Layer", Qualified: "gearbox::shapes::Layer", Kind: snapshot.KindStruct},
			},
			Impls: []snapshot.ImplBlock{{
				Target: "gearbox::shapes::Canvas",
				Trait:  "gearbox::shapes::Draw",
			}},
		},
	}

	g, err := Build(sealedSnapshot(t, units...))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !hasEdge(g, Edge{Source: "gearbox::shapes::Canvas", Target: "gearbox::shapes::Draw", Kind: KindImplements}) {
		t.Errorf("missing implements edge, got %v", g.Edges)
	}
	if !hasEdge(g, Edge{Source: "gearbox::shapes::Canvas", Target: "gearbox::shapes::Layer", Kind: KindContains, Label: "layers"}) {
		t.Errorf("wrapper types must be looked through for containment, got %v", g.Edges)
	}
	for _, e := range g.Edges {
		if e.Label == "title" {
			t.Errorf("String field must not produce an edge: %v", e)
		}
	}
}

// Every edge endpoint is a node of the graph.
func TestBuildEdgeValidity(t *testing.T) {
	snap := sealedSnapshot(t, widgetAndFactory()...)
	g, err := Build(snap)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, e := range g.Edges {
		if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
			t.Errorf("dangling edge %v", e)
		}
	}
}

func TestBuildUnresolvedCallsOmitted(t *testing.T) {
	units := widgetAndFactory()
	units[1].Impls[0].Methods[0].Calls = append(units[1].Impls[0].Methods[0].Calls,
		snapshot.CallSite{Callee: "serde_json::to_string"})

	g, err := Build(sealedSnapshot(t, units...))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, e := range g.Edges {
		if e.Target == "serde_json" || e.Target == "" {
			t.Errorf("unresolved callee produced an edge: %v", e)
		}
	}
}

func TestBuildRejectsDuplicateNames(t *testing.T) {
	snap := snapshot.New()
	snap.Add(&snapshot.SourceUnit{
		Path: "src/a.rs", Module: "gearbox::gears",
		Types: []snapshot.TypeDefinition{{Name: "Cog", Qualified: "gearbox::gears::Cog", Kind: snapshot.KindStruct}},
	})
	snap.Add(&snapshot.SourceUnit{
		Path: "src/b.rs", Module: "gearbox::gears",
		Types: []snapshot.TypeDefinition{{Name: "Cog", Qualified: "gearbox::gears::Cog", Kind: snapshot.KindStruct}},
	})
	snap.Seal()

	if _, err := Build(snap); !errors.HasCode(err, errors.GraphInvalid) {
		t.Errorf("expected GRAPH_INVALID, got %v", err)
	}
}

// Parallel edges of different kinds collapse to one, isolated nodes
// drop, and collapsing again changes nothing.
func TestCollapse(t *testing.T) {
	g := &Graph{
		Nodes: []string{"a::A", "b::B", "c::C"},
		Edges: []Edge{
			{Source: "a::A", Target: "b::B", Kind: KindCalls, Label: "new"},
			{Source: "a::A", Target: "b::B", Kind: KindTransition, Label: "new"},
			{Source: "a::A", Target: "b::B", Kind: KindContains, Label: "inner"},
		},
	}

	collapsed := g.Collapse()
	if len(collapsed.Edges) != 1 {
		t.Fatalf("expected 1 collapsed edge, got %v", collapsed.Edges)
	}
	if collapsed.Edges[0] != (Edge{Source: "a::A", Target: "b::B"}) {
		t.Errorf("collapsed edge = %v", collapsed.Edges[0])
	}
	if len(collapsed.Nodes) != 2 {
		t.Errorf("isolated node must drop, got %v", collapsed.Nodes)
	}

	again := g.Collapse().Collapse()
	if len(again.Edges) != len(collapsed.Edges) || len(again.Nodes) != len(collapsed.Nodes) {
		t.Error("collapsing a collapsed graph must be a no-op")
	}
}

func TestFieldTypeRefs(t *testing.T) {
	cases := []struct {
		typeText string
		want     []string
	}{
		{"Widget", []string{"Widget"}},
		{"Vec<Widget>", []string{"Widget"}},
		{"Option<Arc<Widget>>", []string{"Widget"}},
		{"HashMap<String, Widget>", []string{"String", "Widget"}},
		{"&Widget", []string{"Widget"}},
		{"&'a Widget", []string{"Widget"}},
		{"Box<dyn Draw>", []string{"Draw"}},
		{"crate::widget::Widget", []string{"crate::widget::Widget"}},
	}
	for _, tc := range cases {
		got := fieldTypeRefs(tc.typeText)
		if len(got) != len(tc.want) {
			t.Errorf("fieldTypeRefs(%q) = %v, want %v", tc.typeText, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("fieldTypeRefs(%q) = %v, want %v", tc.typeText, got, tc.want)
			}
		}
	}
}
