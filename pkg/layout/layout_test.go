package layout

import (
	"fmt"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/archview/pkg/errors"
	"github.com/matzehuels/archview/pkg/graph"
)

func testConfig() Config {
	return Config{
		Inner:                Spacing{RankSep: 10, NodeSep: 5, Padding: 4},
		Top:                  Spacing{RankSep: 20, NodeSep: 10, Padding: 0},
		NodeWidth:            30,
		NodeHeight:           10,
		EmptyContainerWidth:  50,
		EmptyContainerHeight: 40,
		Passes:               4,
	}
}

func node(id string, kind graph.NodeKind, parent string) graph.Node {
	return graph.Node{ID: id, Kind: kind, ParentID: parent}
}

func edge(id, from, to string) graph.Edge {
	return graph.Edge{ID: id, Source: from, Target: to, Kind: graph.EdgeConnects}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"NegativeRankSep", func(c *Config) { c.Inner.RankSep = -1 }},
		{"ZeroNodeWidth", func(c *Config) { c.NodeWidth = 0 }},
		{"NegativeTopPadding", func(c *Config) { c.Top.Padding = -5 }},
		{"TooManyPasses", func(c *Config) { c.Passes = 5000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
			if _, err := Apply(nil, nil, cfg); err == nil {
				t.Error("Apply should reject an invalid config")
			}
		})
	}
}

func TestRanked_Chain(t *testing.T) {
	boxes := []Box{{ID: "a", Width: 30, Height: 10}, {ID: "b", Width: 30, Height: 10}, {ID: "c", Width: 30, Height: 10}}
	links := []Link{{ID: "ab", From: "a", To: "b"}, {ID: "bc", From: "b", To: "c"}}
	p := Ranked(boxes, links, Spacing{RankSep: 10, NodeSep: 5}, 4)

	want := map[string]graph.Position{"a": {X: 0, Y: 0}, "b": {X: 40, Y: 0}, "c": {X: 80, Y: 0}}
	if !reflect.DeepEqual(p.Positions, want) {
		t.Errorf("Positions = %v, want %v", p.Positions, want)
	}
	if p.Width != 110 || p.Height != 10 {
		t.Errorf("bounds = %vx%v, want 110x10", p.Width, p.Height)
	}
	if route := p.Routes["ab"]; !reflect.DeepEqual(route, []graph.Position{{X: 30, Y: 5}, {X: 40, Y: 5}}) {
		t.Errorf("route ab = %v", route)
	}
}

func TestRanked_LongEdgeAndCycle(t *testing.T) {
	boxes := []Box{{ID: "a", Width: 30, Height: 10}, {ID: "b", Width: 30, Height: 10}, {ID: "c", Width: 30, Height: 10}}
	links := []Link{
		{ID: "ab", From: "a", To: "b"},
		{ID: "bc", From: "b", To: "c"},
		{ID: "ac", From: "a", To: "c"},
		{ID: "ca", From: "c", To: "a"},
		{ID: "self", From: "a", To: "a"},
		{ID: "dangling", From: "a", To: "zzz"},
	}
	p := Ranked(boxes, links, Spacing{RankSep: 10, NodeSep: 5}, 4)

	if len(p.Positions) != 3 {
		t.Errorf("Positions has %d entries, want only the 3 boxes", len(p.Positions))
	}
	if got := len(p.Routes["ac"]); got != 3 {
		t.Errorf("route ac has %d points, want 3 (through one subdivider)", got)
	}
	ca := p.Routes["ca"]
	if len(ca) != 3 {
		t.Fatalf("route ca = %v, want 3 points", ca)
	}
	// A reversed edge is drawn from its original source (c) to its target (a).
	if ca[0].X <= ca[len(ca)-1].X {
		t.Errorf("route ca should run right to left, got %v", ca)
	}
	if _, ok := p.Routes["self"]; ok {
		t.Error("self-loop should not be routed")
	}
	if _, ok := p.Routes["dangling"]; ok {
		t.Error("dangling link should not be routed")
	}
}

func TestApply_ContainerBoundsChildren(t *testing.T) {
	cfg := testConfig()
	nodes := []graph.Node{
		node("sys", graph.KindContainer, ""),
		node("a", graph.KindRegular, "sys"),
		node("b", graph.KindRegular, "sys"),
		node("c", graph.KindRegular, "sys"),
		node("d", graph.KindRegular, "sys"),
	}
	edges := []graph.Edge{edge("ab", "a", "b"), edge("ac", "a", "c"), edge("cd", "c", "d")}

	res, err := Apply(nodes, edges, cfg)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	size := res.Sizes["sys"]
	pad := cfg.Inner.Padding
	for _, id := range []string{"a", "b", "c", "d"} {
		p, s := res.Positions[id], res.Sizes[id]
		if p.X < pad || p.Y < pad || p.X+s.Width > size.Width-pad || p.Y+s.Height > size.Height-pad {
			t.Errorf("%s at %v size %v escapes container %v with padding %v", id, p, s, size, pad)
		}
	}
}

func TestApply_NestedContainers(t *testing.T) {
	cfg := testConfig()
	nodes := []graph.Node{
		node("a", graph.KindRegular, "inner"),
		node("outer", graph.KindContainer, ""),
		node("inner", graph.KindContainer, "outer"),
		node("b", graph.KindRegular, "outer"),
		node("free", graph.KindRegular, ""),
	}
	edges := []graph.Edge{edge("ab", "a", "b"), edge("free-a", "free", "a")}

	res, err := Apply(nodes, edges, cfg)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	inner := res.Sizes["inner"]
	if inner.Width != cfg.NodeWidth+2*cfg.Inner.Padding || inner.Height != cfg.NodeHeight+2*cfg.Inner.Padding {
		t.Errorf("inner size = %v", inner)
	}
	outer := res.Sizes["outer"]
	if outer.Width < inner.Width+cfg.NodeWidth+2*cfg.Inner.Padding {
		t.Errorf("outer size %v does not fit inner container and b", outer)
	}

	wantOrder := []string{"outer", "free", "inner", "b", "a"}
	if !slices.Equal(res.Order, wantOrder) {
		t.Errorf("Order = %v, want %v", res.Order, wantOrder)
	}

	// ab is routed inside outer (a lifts to inner), free-a at the top level.
	ab := res.Routes["ab"]
	if len(ab) < 2 {
		t.Fatalf("route ab = %v", ab)
	}
	outerPos := res.Positions["outer"]
	if ab[0].X < outerPos.X || ab[0].X > outerPos.X+outer.Width {
		t.Errorf("route ab starts at %v, outside outer at %v", ab[0], outerPos)
	}
	if len(res.Routes["free-a"]) < 2 {
		t.Errorf("route free-a = %v", res.Routes["free-a"])
	}
}

func TestApply_RouteReachesNestedEndpoint(t *testing.T) {
	cfg := testConfig()
	nodes := []graph.Node{
		node("x", graph.KindRegular, ""),
		node("box", graph.KindContainer, ""),
		node("b", graph.KindRegular, "box"),
	}
	res, err := Apply(nodes, []graph.Edge{edge("xb", "x", "b")}, cfg)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// x is 30x10 at (0,4); box is 38x18 at (50,0) with b at (4,4) inside it.
	want := []graph.Position{{X: 30, Y: 9}, {X: 50, Y: 9}, {X: 54, Y: 9}}
	if got := res.Routes["xb"]; !reflect.DeepEqual(got, want) {
		t.Errorf("route xb = %v, want %v", got, want)
	}

	res, err = Apply(nodes, []graph.Edge{edge("bx", "b", "x")}, cfg)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	route := res.Routes["bx"]
	if len(route) != 3 {
		t.Fatalf("route bx = %v", route)
	}
	bPos := res.Positions["box"].Add(res.Positions["b"])
	if start := route[0]; start.X != bPos.X+res.Sizes["b"].Width || start.Y != bPos.Y+res.Sizes["b"].Height/2 {
		t.Errorf("route bx starts at %v, want the right side of b at %v", start, bPos)
	}
}

func TestApply_EmptyContainerDefaultSize(t *testing.T) {
	cfg := testConfig()
	res, err := Apply([]graph.Node{node("empty", graph.KindContainer, ""), node("dg", graph.KindDecisionGroup, "")}, nil, cfg)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := graph.Size{Width: cfg.EmptyContainerWidth, Height: cfg.EmptyContainerHeight}
	for _, id := range []string{"empty", "dg"} {
		if res.Sizes[id] != want {
			t.Errorf("%s size = %v, want %v", id, res.Sizes[id], want)
		}
	}
}

func TestApply_InnerEdgesExcludedFromTopLevel(t *testing.T) {
	cfg := testConfig()
	nodes := []graph.Node{
		node("sys", graph.KindContainer, ""),
		node("a", graph.KindRegular, "sys"),
		node("b", graph.KindRegular, "sys"),
		node("x", graph.KindRegular, ""),
		node("y", graph.KindRegular, ""),
	}
	// Only inner edges: top-level units stay unconnected in one rank.
	res, err := Apply(nodes, []graph.Edge{edge("ab", "a", "b")}, cfg)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	center := func(id string) float64 { return res.Positions[id].X + res.Sizes[id].Width/2 }
	for _, id := range []string{"x", "y"} {
		if center(id) != center("sys") {
			t.Errorf("%s is not in the same rank as sys", id)
		}
	}
	if _, ok := res.Routes["ab"]; !ok {
		t.Error("inner edge ab should be routed by the inner pass")
	}
}

func TestApply_CyclicContainment(t *testing.T) {
	nodes := []graph.Node{
		node("a", graph.KindContainer, "b"),
		node("b", graph.KindContainer, "a"),
		node("c", graph.KindRegular, "a"),
	}
	res, err := Apply(nodes, nil, testConfig())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Order) != 3 {
		t.Fatalf("Order = %v", res.Order)
	}
	// Walking up from a, the link b→a closes the loop and is cut.
	if res.Parents["a"] != "b" || res.Parents["b"] != "" {
		t.Errorf("Parents = %v", res.Parents)
	}
}

func TestApply_Deterministic(t *testing.T) {
	var nodes []graph.Node
	var edges []graph.Edge
	for i := 0; i < 12; i++ {
		parent := ""
		if i%3 == 0 && i > 0 {
			parent = "c1"
		}
		nodes = append(nodes, node(fmt.Sprintf("n%d", i), graph.KindRegular, parent))
	}
	nodes = append(nodes, node("c1", graph.KindContainer, ""))
	for i := 0; i < 12; i++ {
		edges = append(edges, edge(fmt.Sprintf("e%d", i), fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", (i*7+3)%12)))
	}

	first, err := Apply(nodes, edges, DefaultConfig())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := Apply(nodes, edges, DefaultConfig())
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}
