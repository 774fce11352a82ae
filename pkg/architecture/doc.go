// Package architecture turns a decoded CALM document into an unpositioned
// graph model.
//
// # Pipeline
//
//	relationships ─▶ ResolveContainers ─▶ ContainerInfo
//	nodes + ContainerInfo ─▶ ExtractNodes ─▶ NodeSet
//	NodeSet + options relationships ─▶ MergeOptions
//	flows ─▶ IndexFlows ─▶ FlowIndex
//	relationships + FlowIndex ─▶ BuildEdges ─▶ []graph.Edge
//
// [Build] runs all steps. Missing or malformed input degrades to fewer
// nodes and edges, never to an error: entries without ids are skipped and
// relationships that reference unknown nodes are dropped.
//
// # Decision Groups
//
// A node slot holding {"oneOf": [...]} or {"anyOf": [...]} becomes a
// decision group node with the alternatives as its children. Options
// relationships supply the prompt and choices shown to the user; see
// [MergeOptions].
//
// # Edge IDs
//
// Edge ids are derived from relationship ids: "<id>" for a connects edge,
// "<id>-forward" and "<id>-backward" for a split bidirectional edge and
// "<id>-<n>" for the n-th target of an interacts relationship. A repeated
// id gets a "__<n>" suffix.
package architecture
