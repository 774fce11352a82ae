package graph

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/archview/pkg/calm"
)

func sampleGraph() Graph {
	return Graph{
		Nodes: []Node{
			{ID: "k8s", Kind: KindContainer, Position: Position{X: 10, Y: 20}, Size: Size{Width: 300, Height: 200}, Data: Payload{Label: "Cluster"}},
			{ID: "user", Kind: KindRegular, Position: Position{X: 400, Y: 0}, Size: Size{Width: 150, Height: 60}},
			{ID: "svc", Kind: KindRegular, ParentID: "k8s", Position: Position{X: 30, Y: 40}, Size: Size{Width: 150, Height: 60},
				Data: Payload{Label: "API", NodeType: "service", Controls: calm.Object{"security": "tls"}}},
		},
		Edges: []Edge{
			{ID: "user-svc", Source: "user", Target: "svc", Kind: EdgeConnects, RelationshipID: "user-svc",
				FlowTransitions: []Transition{{Sequence: 1, Description: "login", Direction: calm.DirectionSourceToDestination}},
				MarkerEnd:       MarkerArrow, Animated: true},
		},
	}
}

func TestMarshalGraph(t *testing.T) {
	tests := []struct {
		name      string
		graph     Graph
		wantNodes int
		wantEdges int
		contains  []string
	}{
		{
			name:     "Empty",
			graph:    Graph{},
			contains: []string{`"nodes": []`, `"edges": []`},
		},
		{
			name:      "Sample",
			graph:     sampleGraph(),
			wantNodes: 3,
			wantEdges: 1,
			contains:  []string{`"parentId": "k8s"`, `"kind": "container"`, `"relationshipId": "user-svc"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalGraph(tt.graph)
			if err != nil {
				t.Fatalf("MarshalGraph: %v", err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(string(data), s) {
					t.Errorf("output missing %q:\n%s", s, data)
				}
			}
			g, err := UnmarshalGraph(data)
			if err != nil {
				t.Fatalf("UnmarshalGraph: %v", err)
			}
			if g.NodeCount() != tt.wantNodes || g.EdgeCount() != tt.wantEdges {
				t.Errorf("got %d nodes %d edges, want %d/%d", g.NodeCount(), g.EdgeCount(), tt.wantNodes, tt.wantEdges)
			}
		})
	}
}

func TestMarshalGraph_OmitsCallback(t *testing.T) {
	g := sampleGraph()
	called := false
	g.Nodes[2].Data.OnShowDetails = func(string) { called = true }

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph: %v", err)
	}
	if strings.Contains(string(data), "OnShowDetails") {
		t.Error("callback must not be serialized")
	}
	if called {
		t.Error("callback must not be invoked")
	}
}

func TestReadWriteGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	want := sampleGraph()
	if err := WriteGraphFile(want, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}

	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	svc, ok := got.Node("svc")
	if !ok {
		t.Fatal("svc missing after round trip")
	}
	if svc.ParentID != "k8s" || svc.Position != (Position{X: 30, Y: 40}) || svc.Data.NodeType != "service" {
		t.Errorf("svc = %+v", svc)
	}
	e, _ := got.Edge("user-svc")
	if len(e.FlowTransitions) != 1 || e.FlowTransitions[0].Description != "login" {
		t.Errorf("edge transitions = %+v", e.FlowTransitions)
	}

	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want os.ErrNotExist", err)
	}
}

func TestReadGraph_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"UnknownParent", `{"nodes":[{"id":"a","kind":"regular","parentId":"zzz"}],"edges":[]}`, ErrUnknownParent},
		{"RegularParent", `{"nodes":[{"id":"a","kind":"regular"},{"id":"b","kind":"regular","parentId":"a"}],"edges":[]}`, ErrInvalidParent},
		{"DuplicateNode", `{"nodes":[{"id":"a","kind":"regular"},{"id":"a","kind":"regular"}],"edges":[]}`, ErrDuplicateNode},
		{"UnknownEndpoint", `{"nodes":[{"id":"a","kind":"regular"}],"edges":[{"id":"e","source":"a","target":"b"}]}`, ErrUnknownEndpoint},
		{"DuplicateEdge", `{"nodes":[{"id":"a","kind":"regular"}],"edges":[{"id":"e","source":"a","target":"a"},{"id":"e","source":"a","target":"a"}]}`, ErrDuplicateEdge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGraph(bytes.NewReader([]byte(tt.input)))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := ReadGraph(strings.NewReader("{")); err == nil {
		t.Error("expected decode error")
	}
}

func TestGraphAccessors(t *testing.T) {
	g := sampleGraph()

	if children := g.Children("k8s"); len(children) != 1 || children[0] != "svc" {
		t.Errorf("Children(k8s) = %v", children)
	}
	if top := g.Children(""); len(top) != 2 {
		t.Errorf("top-level = %v, want 2 nodes", top)
	}

	abs, ok := g.AbsolutePosition("svc")
	if !ok || abs != (Position{X: 40, Y: 60}) {
		t.Errorf("AbsolutePosition(svc) = %v, %v", abs, ok)
	}
	if _, ok := g.AbsolutePosition("nope"); ok {
		t.Error("AbsolutePosition should fail for unknown node")
	}

	n, _ := g.Node("user")
	if n.DisplayLabel() != "user" {
		t.Errorf("DisplayLabel() = %q, want id fallback", n.DisplayLabel())
	}
	if !KindDecisionGroup.IsGroup() || KindRegular.IsGroup() {
		t.Error("IsGroup mismatch")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestEmpty(t *testing.T) {
	g := Empty()
	if !g.IsEmpty() || g.Nodes == nil || g.Edges == nil {
		t.Errorf("Empty() = %+v", g)
	}
}
