package architecture

import (
	"slices"
	"testing"

	"github.com/matzehuels/archview/pkg/calm"
	"github.com/matzehuels/archview/pkg/graph"
)

func mustParse(t *testing.T, src string) calm.Document {
	t.Helper()
	doc, err := calm.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func edgeIDs(edges []graph.Edge) []string {
	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.ID
	}
	return ids
}

func findNode(t *testing.T, nodes []graph.Node, id string) graph.Node {
	t.Helper()
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %q not found", id)
	return graph.Node{}
}

func TestBuild_SimpleConnects(t *testing.T) {
	doc := mustParse(t, `{
		"nodes": [{"unique-id": "svc"}, {"unique-id": "db"}],
		"relationships": [{"unique-id": "svc-db", "relationship-type": {"connects": {
			"source": {"node": "svc"}, "destination": {"node": "db"}}}}]
	}`)

	arch := Build(doc, Options{})
	if len(arch.Edges) != 1 {
		t.Fatalf("edges = %v, want 1", edgeIDs(arch.Edges))
	}
	e := arch.Edges[0]
	if e.Source != "svc" || e.Target != "db" || e.ID != "svc-db" || e.RelationshipID != "svc-db" {
		t.Errorf("edge = %+v", e)
	}
	if e.FlowTransitions == nil || len(e.FlowTransitions) != 0 {
		t.Errorf("FlowTransitions = %#v, want empty non-nil", e.FlowTransitions)
	}
	if !e.Animated || e.MarkerEnd != graph.MarkerArrow || e.Direction != graph.DirectionNone {
		t.Errorf("edge style = %+v", e)
	}
}

func TestBuild_UnresolvableEndpoint(t *testing.T) {
	resolvable := mustParse(t, `{
		"nodes": [{"unique-id": "a"}, {"unique-id": "b"}],
		"relationships": [
			{"unique-id": "r1", "relationship-type": {"connects": {"source": {"node": "a"}, "destination": {"node": "b"}}}},
			{"unique-id": "r2", "relationship-type": {"connects": {"source": {"node": "b"}, "destination": {"node": "a"}}}}
		]
	}`)
	broken := mustParse(t, `{
		"nodes": [{"unique-id": "a"}, {"unique-id": "b"}],
		"relationships": [
			{"unique-id": "r1", "relationship-type": {"connects": {"source": {"node": "a"}, "destination": {"node": "b"}}}},
			{"unique-id": "r2", "relationship-type": {"connects": {"source": {"node": "b"}, "destination": {"node": "ghost"}}}}
		]
	}`)

	full := Build(resolvable, Options{})
	partial := Build(broken, Options{})
	if len(partial.Edges) >= len(full.Edges) {
		t.Errorf("unresolvable endpoint: %d edges, want fewer than %d", len(partial.Edges), len(full.Edges))
	}
}

func TestBuild_BidirectionalFlow(t *testing.T) {
	doc := mustParse(t, `{
		"nodes": [{"unique-id": "web"}, {"unique-id": "api"}],
		"relationships": [{"unique-id": "web-api", "relationship-type": {"connects": {
			"source": {"node": "web"}, "destination": {"node": "api"}}}}],
		"flows": [{"unique-id": "login", "name": "Login", "transitions": [
			{"relationship-unique-id": "web-api", "sequence-number": 2, "direction": "destination-to-source", "description": "token"},
			{"relationship-unique-id": "web-api", "sequence-number": 1, "description": "credentials"}
		]}]
	}`)

	arch := Build(doc, Options{})
	if len(arch.Edges) != 2 {
		t.Fatalf("edges = %v, want 2", edgeIDs(arch.Edges))
	}
	fwd, bwd := arch.Edges[0], arch.Edges[1]
	if fwd.Direction != graph.DirectionForward || fwd.ID != "web-api-forward" {
		t.Errorf("forward edge = %+v", fwd)
	}
	if bwd.Direction != graph.DirectionBackward || bwd.ID != "web-api-backward" {
		t.Errorf("backward edge = %+v", bwd)
	}
	if len(fwd.FlowTransitions) != 1 || fwd.FlowTransitions[0].Description != "credentials" {
		t.Errorf("forward transitions = %+v", fwd.FlowTransitions)
	}
	if len(bwd.FlowTransitions) != 1 || bwd.FlowTransitions[0].Description != "token" {
		t.Errorf("backward transitions = %+v", bwd.FlowTransitions)
	}
	if bwd.MarkerStart != graph.MarkerArrow || bwd.MarkerEnd != "" || !bwd.Dashed {
		t.Errorf("backward style = start %q end %q dashed %v", bwd.MarkerStart, bwd.MarkerEnd, bwd.Dashed)
	}
	if fwd.FlowTransitions[0].FlowID != "login" {
		t.Errorf("FlowID = %q, want login", fwd.FlowTransitions[0].FlowID)
	}
}

func TestBuild_TransitionsSortedBySequence(t *testing.T) {
	doc := mustParse(t, `{
		"nodes": [{"unique-id": "a"}, {"unique-id": "b"}],
		"relationships": [{"unique-id": "ab", "relationship-type": {"connects": {"source": {"node": "a"}, "destination": {"node": "b"}}}}],
		"flows": [
			{"name": "f1", "transitions": [{"relationship-unique-id": "ab", "sequence-number": 3, "description": "third"}]},
			{"name": "f2", "transitions": [{"relationship-unique-id": "ab", "description": "zero"}, {"relationship-unique-id": "ab", "sequence-number": 1, "description": "first"}]}
		]
	}`)
	arch := Build(doc, Options{})
	var got []string
	for _, tr := range arch.Edges[0].FlowTransitions {
		got = append(got, tr.Description)
	}
	if want := []string{"zero", "first", "third"}; !slices.Equal(got, want) {
		t.Errorf("transitions = %v, want %v", got, want)
	}
}

func TestBuild_Interacts(t *testing.T) {
	doc := mustParse(t, `{
		"nodes": [{"unique-id": "user"}, {"unique-id": "web"}, {"unique-id": "app"}],
		"relationships": [{"unique-id": "uses", "description": "browses", "relationship-type": {"interacts": {
			"actor": "user", "nodes": ["web", "missing", "app"]}}}]
	}`)
	arch := Build(doc, Options{})
	if want := []string{"uses-0", "uses-2"}; !slices.Equal(edgeIDs(arch.Edges), want) {
		t.Fatalf("edge ids = %v, want %v", edgeIDs(arch.Edges), want)
	}
	for _, e := range arch.Edges {
		if e.Kind != graph.EdgeInteracts || e.Animated || !e.Dashed || e.RelationshipID != "uses" || e.Label != "browses" {
			t.Errorf("interacts edge = %+v", e)
		}
	}
}

func TestBuild_DuplicateRelationshipIDs(t *testing.T) {
	doc := mustParse(t, `{
		"nodes": [{"unique-id": "a"}, {"unique-id": "b"}],
		"relationships": [
			{"unique-id": "dup", "relationship-type": {"connects": {"source": {"node": "a"}, "destination": {"node": "b"}}}},
			{"unique-id": "dup", "relationship-type": {"connects": {"source": {"node": "b"}, "destination": {"node": "a"}}}},
			{"relationship-type": {"connects": {"source": {"node": "a"}, "destination": {"node": "b"}}}}
		]
	}`)
	arch := Build(doc, Options{})
	if want := []string{"dup", "dup__2", "relationship-2"}; !slices.Equal(edgeIDs(arch.Edges), want) {
		t.Errorf("edge ids = %v, want %v", edgeIDs(arch.Edges), want)
	}
	g := graph.Graph{Nodes: arch.Nodes, Edges: arch.Edges}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestBuild_Containment(t *testing.T) {
	doc := mustParse(t, `{
		"nodes": [
			{"unique-id": "platform", "node-type": "system"},
			{"unique-id": "k8s", "node-type": "infra"},
			{"unique-id": "svc", "node-type": "service"},
			{"unique-id": "db", "node-type": "database"}
		],
		"relationships": [
			{"unique-id": "r1", "relationship-type": {"deployed-in": {"container": "k8s", "nodes": ["svc"]}}},
			{"unique-id": "r2", "relationship-type": {"composed-of": {"container": "platform", "nodes": ["k8s", "db"]}}},
			{"unique-id": "r3", "relationship-type": {"deployed-in": {"container": "nowhere", "nodes": ["db"]}}}
		]
	}`)
	arch := Build(doc, Options{})

	if len(arch.Edges) != 0 {
		t.Errorf("containment produced edges: %v", edgeIDs(arch.Edges))
	}
	if n := findNode(t, arch.Nodes, "platform"); n.Kind != graph.KindContainer {
		t.Errorf("system node kind = %s", n.Kind)
	}
	k8s := findNode(t, arch.Nodes, "k8s")
	if k8s.Kind != graph.KindContainer || k8s.ParentID != "platform" {
		t.Errorf("k8s = %+v", k8s)
	}
	if svc := findNode(t, arch.Nodes, "svc"); svc.ParentID != "k8s" || svc.Kind != graph.KindRegular {
		t.Errorf("svc = %+v", svc)
	}
	// Last write wins: db moves to "nowhere", which is not a node, so db ends up top-level.
	if db := findNode(t, arch.Nodes, "db"); db.ParentID != "" {
		t.Errorf("db parent = %q, want none", db.ParentID)
	}
	if arch.Containers.Parent("db") != "nowhere" {
		t.Errorf("ParentOf[db] = %q, want last write", arch.Containers.Parent("db"))
	}
	if got := arch.Containers.Ancestors("svc"); !slices.Equal(got, []string{"k8s", "platform"}) {
		t.Errorf("Ancestors(svc) = %v", got)
	}
}

func TestContainerInfo_CyclicContainment(t *testing.T) {
	info := ResolveContainers([]calm.Relationship{
		{Kind: calm.KindDeployedIn, Container: "a", Nodes: []string{"b"}},
		{Kind: calm.KindComposedOf, Container: "b", Nodes: []string{"a"}},
		{Kind: calm.KindComposedOf, Container: "self", Nodes: []string{"self"}},
	})
	if got := info.Ancestors("a"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Ancestors(a) = %v, want [b]", got)
	}
	if info.Depth("self") != 0 {
		t.Errorf("Depth(self) = %d, want 0", info.Depth("self"))
	}

	doc := calm.NewDocument(calm.Object{
		"nodes": []any{
			map[string]any{"unique-id": "a"},
			map[string]any{"unique-id": "b"},
			map[string]any{"unique-id": "self"},
		},
		"relationships": []any{
			map[string]any{"relationship-type": map[string]any{"deployed-in": map[string]any{"container": "a", "nodes": []any{"b"}}}},
			map[string]any{"relationship-type": map[string]any{"composed-of": map[string]any{"container": "b", "nodes": []any{"a"}}}},
			map[string]any{"relationship-type": map[string]any{"composed-of": map[string]any{"container": "self", "nodes": []any{"self"}}}},
		},
	})
	arch := Build(doc, Options{})
	g := graph.Graph{Nodes: arch.Nodes, Edges: arch.Edges}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if findNode(t, arch.Nodes, "self").ParentID != "" {
		t.Error("self-containment should be dropped")
	}
	a, b := findNode(t, arch.Nodes, "a"), findNode(t, arch.Nodes, "b")
	if a.ParentID != "" && b.ParentID != "" {
		t.Errorf("cycle not broken: a→%q b→%q", a.ParentID, b.ParentID)
	}
}

func TestExtractNodes_DecisionGroups(t *testing.T) {
	entries := []calm.Object{
		{"unique-id": "svc", "name": "Service"},
		{"name": "missing id"},
		{"oneOf": []any{
			map[string]any{"unique-id": "pg", "name": "Postgres"},
			map[string]any{"unique-id": "mysql"},
		}},
		{"unique-id": "svc", "name": "duplicate"},
	}
	var calls []string
	set := ExtractNodes(entries, ContainerInfo{}, func(id string) { calls = append(calls, id) })

	if len(set.Nodes) != 4 {
		t.Fatalf("nodes = %d, want 4 (svc, group, pg, mysql)", len(set.Nodes))
	}
	if findNode(t, set.Nodes, "svc").Data.Label != "Service" {
		t.Error("duplicate id should not replace the first node")
	}
	group := findNode(t, set.Nodes, "decision-group-2")
	if group.Kind != graph.KindDecisionGroup || group.Data.Mode != calm.ModeOneOf {
		t.Errorf("group = %+v", group)
	}
	if len(group.Data.Choices) != 2 || group.Data.Choices[0].Description != "Postgres" || group.Data.Choices[1].NodeIDs[0] != "mysql" {
		t.Errorf("default choices = %+v", group.Data.Choices)
	}
	for _, id := range []string{"pg", "mysql"} {
		if n := findNode(t, set.Nodes, id); n.ParentID != "decision-group-2" {
			t.Errorf("%s parent = %q", id, n.ParentID)
		}
	}
	if len(set.Groups) != 1 || !slices.Equal(set.Groups[0].MemberNodeIDs, []string{"pg", "mysql"}) {
		t.Errorf("groups = %+v", set.Groups)
	}
	if len(set.Regular()) != 3 || len(set.DecisionGroups()) != 1 || len(set.Containers()) != 0 {
		t.Errorf("kind split = %d/%d/%d", len(set.Regular()), len(set.DecisionGroups()), len(set.Containers()))
	}

	for _, n := range set.Regular() {
		if n.Data.OnShowDetails == nil {
			t.Errorf("%s has no details callback", n.ID)
		}
	}
	if group.Data.OnShowDetails != nil {
		t.Error("decision group should not carry the details callback")
	}
	if len(calls) != 0 {
		t.Errorf("callback invoked during extraction: %v", calls)
	}
}

func TestExtractNodes_GroupIDTaken(t *testing.T) {
	entries := []calm.Object{
		{"unique-id": "decision-group-1", "name": "Clash"},
		{"anyOf": []any{
			map[string]any{"unique-id": "redis"},
			map[string]any{"unique-id": "memcached"},
		}},
	}
	set := ExtractNodes(entries, ContainerInfo{}, nil)

	if len(set.Nodes) != 4 {
		t.Fatalf("nodes = %d, want 4", len(set.Nodes))
	}
	if n := findNode(t, set.Nodes, "decision-group-1"); n.Kind != graph.KindRegular {
		t.Errorf("plain node kind = %v", n.Kind)
	}
	group := findNode(t, set.Nodes, "decision-group-1_")
	if group.Kind != graph.KindDecisionGroup || group.Data.Mode != calm.ModeAnyOf {
		t.Errorf("group = %+v", group)
	}
	for _, id := range []string{"redis", "memcached"} {
		if n := findNode(t, set.Nodes, id); n.ParentID != "decision-group-1_" {
			t.Errorf("%s parent = %q", id, n.ParentID)
		}
	}
}

func TestMergeOptions(t *testing.T) {
	doc := mustParse(t, `{
		"nodes": [
			{"unique-id": "svc"},
			{"anyOf": [{"unique-id": "redis"}, {"unique-id": "memcached"}]},
			{"unique-id": "kafka"},
			{"unique-id": "rabbit"}
		],
		"relationships": [
			{"unique-id": "cache-choice", "description": "Which caches?", "relationship-type": {"options": {"anyOf": [
				{"description": "Redis", "nodes": ["redis"], "relationships": ["svc-redis"]},
				{"description": "Memcached", "nodes": ["memcached"]}
			]}}},
			{"unique-id": "broker", "description": "Pick a broker", "relationship-type": {"options": [
				{"description": "Kafka", "nodes": ["kafka"]},
				{"description": "RabbitMQ", "nodes": ["rabbit"]}
			]}}
		]
	}`)
	arch := Build(doc, Options{})

	group := findNode(t, arch.Nodes, "decision-group-1")
	if group.Data.Prompt != "Which caches?" || group.Data.Mode != calm.ModeAnyOf {
		t.Errorf("merged group = %+v", group.Data)
	}
	if len(group.Data.Choices) != 2 || group.Data.Choices[0].RelationshipIDs[0] != "svc-redis" {
		t.Errorf("merged choices = %+v", group.Data.Choices)
	}

	synth := findNode(t, arch.Nodes, "decision-broker")
	if synth.Kind != graph.KindDecisionGroup || synth.Data.Mode != calm.ModeOneOf || len(synth.Data.Choices) != 2 {
		t.Errorf("synthesized group = %+v", synth)
	}
	for _, id := range []string{"kafka", "rabbit"} {
		if n := findNode(t, arch.Nodes, id); n.ParentID != "decision-broker" {
			t.Errorf("%s parent = %q, want decision-broker", id, n.ParentID)
		}
	}
	if len(arch.Groups) != 2 {
		t.Errorf("groups = %+v", arch.Groups)
	}
}

func TestBuild_EmptyDocument(t *testing.T) {
	arch := Build(calm.Document{}, Options{})
	if len(arch.Nodes) != 0 || len(arch.Edges) != 0 {
		t.Errorf("empty document produced %d nodes %d edges", len(arch.Nodes), len(arch.Edges))
	}
}
