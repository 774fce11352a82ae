package pipeline

import (
	"bytes"
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/archview/pkg/cache"
	"github.com/matzehuels/archview/pkg/calm"
	"github.com/matzehuels/archview/pkg/decision"
	"github.com/matzehuels/archview/pkg/errors"
	"github.com/matzehuels/archview/pkg/graph"
	"github.com/matzehuels/archview/pkg/layout"
	"github.com/matzehuels/archview/pkg/observability"
)

const svcDB = `{
  "nodes": [
    {"unique-id": "svc", "node-type": "service", "name": "Service"},
    {"unique-id": "db", "node-type": "database", "name": "Database"}
  ],
  "relationships": [
    {"unique-id": "svc-db", "relationship-type": {"connects": {"source": {"node": "svc"}, "destination": {"node": "db"}}}}
  ]
}`

const nested = `
nodes:
  - unique-id: platform
    node-type: system
    name: Platform
  - unique-id: k8s
    node-type: system
    name: Kubernetes
  - unique-id: svc
    node-type: service
  - unique-id: worker
    node-type: service
  - unique-id: db
    node-type: database
  - oneOf:
      - unique-id: pg
        node-type: database
      - unique-id: mysql
        node-type: database
relationships:
  - unique-id: platform-k8s
    relationship-type:
      composed-of:
        container: platform
        nodes: [k8s]
  - unique-id: k8s-apps
    relationship-type:
      deployed-in:
        container: k8s
        nodes: [svc, worker]
  - unique-id: svc-worker
    relationship-type:
      connects:
        source: {node: svc}
        destination: {node: worker}
  - unique-id: worker-db
    relationship-type:
      connects:
        source: {node: worker}
        destination: {node: db}
  - unique-id: svc-pg
    relationship-type:
      connects:
        source: {node: svc}
        destination: {node: pg}
  - unique-id: svc-mysql
    relationship-type:
      connects:
        source: {node: svc}
        destination: {node: mysql}
  - unique-id: store-choice
    description: Which store?
    relationship-type:
      options:
        - description: Postgres
          nodes: [pg]
          relationships: [svc-pg]
        - description: MySQL
          nodes: [mysql]
          relationships: [svc-mysql]
`

func mustParse(t *testing.T, src string) calm.Document {
	t.Helper()
	doc, err := calm.Parse([]byte(src))
	if err != nil {
		t.Fatalf("calm.Parse: %v", err)
	}
	return doc
}

func nodeByID(t *testing.T, g graph.Graph, id string) graph.Node {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %s missing", id)
	}
	return n
}

func TestParse_Empty(t *testing.T) {
	tests := []struct {
		name string
		doc  calm.Document
	}{
		{"zero", calm.Document{}},
		{"no nodes key", calm.NewDocument(calm.Object{"relationships": []any{}})},
		{"empty nodes", calm.NewDocument(calm.Object{"nodes": []any{}})},
		{"nodes not a list", calm.NewDocument(calm.Object{"nodes": "oops"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Parse(tt.doc, Options{})
			if g.Nodes == nil || g.Edges == nil || len(g.Nodes) != 0 || len(g.Edges) != 0 {
				t.Errorf("expected empty non-nil slices, got %+v", g)
			}
		})
	}
}

func TestParse_ServiceDatabase(t *testing.T) {
	g := Parse(mustParse(t, svcDB), Options{})

	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("got %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}

	svc, db := nodeByID(t, g, "svc"), nodeByID(t, g, "db")
	if svc.Position != (graph.Position{X: 0, Y: 0}) {
		t.Errorf("svc at %+v", svc.Position)
	}
	if db.Position != (graph.Position{X: 400, Y: 0}) {
		t.Errorf("db at %+v, want one rank (250 + 150) to the right", db.Position)
	}
	if svc.Size != (graph.Size{Width: 250, Height: 100}) {
		t.Errorf("svc size %+v", svc.Size)
	}

	e := g.Edges[0]
	if e.ID != "svc-db" || e.Source != "svc" || e.Target != "db" || !e.Animated {
		t.Errorf("edge = %+v", e)
	}
	want := []graph.Position{{X: 250, Y: 50}, {X: 400, Y: 50}}
	if !reflect.DeepEqual(e.Points, want) {
		t.Errorf("route = %v, want %v", e.Points, want)
	}
}

func TestParse_Nested(t *testing.T) {
	g := Parse(mustParse(t, nested), Options{})

	// Every parent precedes its children.
	seen := make(map[string]bool)
	for _, n := range g.Nodes {
		if n.ParentID != "" && !seen[n.ParentID] {
			t.Errorf("%s appears before its parent %s", n.ID, n.ParentID)
		}
		seen[n.ID] = true
	}

	k8s := nodeByID(t, g, "k8s")
	if k8s.ParentID != "platform" || k8s.Kind != graph.KindContainer {
		t.Errorf("k8s = %+v", k8s)
	}
	svc := nodeByID(t, g, "svc")
	if svc.ParentID != "k8s" {
		t.Errorf("svc parent = %q", svc.ParentID)
	}
	// Inner padding is 40; svc is the first rank inside k8s.
	if svc.Position.X != 40 {
		t.Errorf("svc relative x = %v, want 40", svc.Position.X)
	}
	worker := nodeByID(t, g, "worker")
	if worker.Position.X <= svc.Position.X {
		t.Errorf("worker should be ranked after svc: %v <= %v", worker.Position.X, svc.Position.X)
	}

	// Children fit inside their parent's box.
	for _, n := range g.Nodes {
		if n.ParentID == "" {
			continue
		}
		p := nodeByID(t, g, n.ParentID)
		if n.Position.X < 0 || n.Position.Y < 0 ||
			n.Position.X+n.Size.Width > p.Size.Width || n.Position.Y+n.Size.Height > p.Size.Height {
			t.Errorf("%s (%+v %+v) exceeds parent %s size %+v", n.ID, n.Position, n.Size, p.ID, p.Size)
		}
	}

	// The options relationship became choices on the oneOf group.
	points := decision.ExtractPoints(g.Nodes)
	if len(points) != 1 || len(points[0].Choices) != 2 || points[0].Prompt != "Which store?" {
		t.Fatalf("points = %+v", points)
	}
	view := decision.Apply(g, decision.Selections{points[0].GroupID: {0}})
	if !view.NodeVisible("pg") || view.NodeVisible("mysql") || !view.EdgeVisible("svc-pg") || view.EdgeVisible("svc-mysql") {
		t.Errorf("unexpected view: nodes=%v edges=%v", view.Nodes.Sorted(), view.Edges.Sorted())
	}

	// Edges crossing container borders are routed in absolute coordinates.
	for _, e := range g.Edges {
		if e.ID == "worker-db" && len(e.Points) < 2 {
			t.Errorf("worker-db has no route")
		}
	}
}

func TestParse_Deterministic(t *testing.T) {
	doc := mustParse(t, nested)
	a, err := graph.MarshalGraph(Parse(doc, Options{}))
	if err != nil {
		t.Fatal(err)
	}
	for range 3 {
		b, _ := graph.MarshalGraph(Parse(doc, Options{}))
		if !bytes.Equal(a, b) {
			t.Fatal("Parse is not deterministic")
		}
	}
}

func TestParse_OnShowDetails(t *testing.T) {
	var got []string
	g := Parse(mustParse(t, svcDB), Options{OnShowDetails: func(id string) { got = append(got, id) }})
	for _, n := range g.Nodes {
		if n.Data.OnShowDetails == nil {
			t.Fatalf("%s has no callback", n.ID)
		}
		n.Data.OnShowDetails(n.ID)
	}
	if len(got) != 2 {
		t.Errorf("callback calls = %v", got)
	}
}

type panickingHooks struct {
	observability.NoopPipelineHooks
}

func (panickingHooks) OnLayoutComplete(context.Context, int, time.Duration) { panic("boom") }

func TestParse_RecoversFromPanic(t *testing.T) {
	observability.SetPipelineHooks(panickingHooks{})
	defer observability.Reset()

	g := Parse(mustParse(t, svcDB), Options{})
	if len(g.Nodes) != 0 || g.Nodes == nil {
		t.Errorf("expected empty graph after panic, got %d nodes", len(g.Nodes))
	}
}

func TestParse_InvalidLayout(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.NodeWidth = -1
	g := Parse(mustParse(t, svcDB), Options{Layout: cfg})
	if len(g.Nodes) != 0 {
		t.Errorf("expected empty graph for invalid layout, got %d nodes", len(g.Nodes))
	}
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		nodes int
	}{
		{"json", svcDB, 2},
		{"yaml", nested, 8},
		{"empty", "", 0},
		{"garbage", "{not json", 0},
		{"scalar", "42", 0},
		{"pattern", `{"properties": {"nodes": {"prefixItems": [{"properties": {"unique-id": {"const": "a"}}}]}}}`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := ParseBytes([]byte(tt.data), Options{})
			if len(g.Nodes) != tt.nodes {
				t.Errorf("nodes = %d, want %d", len(g.Nodes), tt.nodes)
			}
			if g.Nodes == nil || g.Edges == nil {
				t.Error("slices must be non-nil")
			}
		})
	}
}

func TestRunner_GraphCache(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	g1, hit, err := r.GraphWithCacheInfo(ctx, []byte(svcDB), Options{})
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	g2, hit, err := r.GraphWithCacheInfo(ctx, []byte(svcDB), Options{})
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	a, _ := graph.MarshalGraph(g1)
	b, _ := graph.MarshalGraph(g2)
	if !bytes.Equal(a, b) {
		t.Error("cached graph differs from built graph")
	}

	if _, hit, _ := r.GraphWithCacheInfo(ctx, []byte(svcDB), Options{Refresh: true}); hit {
		t.Error("Refresh should bypass the cache")
	}

	cfg := layout.DefaultConfig()
	cfg.NodeWidth = 300
	if _, hit, _ := r.GraphWithCacheInfo(ctx, []byte(svcDB), Options{Layout: cfg}); hit {
		t.Error("different layout settings should miss")
	}
}

func TestRunner_Errors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	if _, err := r.Graph(ctx, []byte("[1, 2]"), Options{}); !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("expected INVALID_DOCUMENT, got %v", err)
	}

	cfg := layout.DefaultConfig()
	cfg.Passes = -1
	if _, err := r.Graph(ctx, []byte(svcDB), Options{Layout: cfg}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}

	if _, err := r.Render(ctx, graph.Empty(), RenderOptions{Format: "gif"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("expected INVALID_FORMAT, got %v", err)
	}
}

func TestRunner_RenderDOT(t *testing.T) {
	ctx := context.Background()
	c, _ := cache.NewFileCache(t.TempDir())
	r := NewRunner(c, nil, nil)

	g, err := r.Graph(ctx, []byte(nested), Options{})
	if err != nil {
		t.Fatal(err)
	}
	points := decision.ExtractPoints(g.Nodes)
	opts := RenderOptions{
		Format:       FormatDOT,
		Selections:   decision.Selections{points[0].GroupID: {1}},
		HideFiltered: true,
	}

	dot, hit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil || hit {
		t.Fatalf("first render: hit=%v err=%v", hit, err)
	}
	if !bytes.Contains(dot, []byte(`"mysql"`)) || bytes.Contains(dot, []byte(`"pg"`)) {
		t.Errorf("filter not applied:\n%s", dot)
	}

	again, hit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil || !hit || !bytes.Equal(dot, again) {
		t.Errorf("second render: hit=%v err=%v", hit, err)
	}

	opts.Selections = nil
	if _, hit, _ := r.RenderWithCacheInfo(ctx, g, opts); hit {
		t.Error("different selections should miss")
	}
}

func TestRender_JSON(t *testing.T) {
	g := Parse(mustParse(t, svcDB), Options{})
	data, err := Render(context.Background(), g, RenderOptions{Format: FormatJSON})
	if err != nil {
		t.Fatal(err)
	}
	back, err := graph.UnmarshalGraph(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Nodes) != 2 || len(back.Edges) != 1 {
		t.Errorf("round trip lost elements: %+v", back)
	}
}
