package architecture

import "github.com/matzehuels/archview/pkg/calm"

// ContainerInfo is the containment derived from deployed-in and composed-of
// relationships. It is built once per parse.
type ContainerInfo struct {
	// ContainerIDs holds every id named as a container.
	ContainerIDs map[string]bool
	// ParentOf maps a child id to its container. When a child is named by
	// several containment relationships, the last one wins.
	ParentOf map[string]string
}

// ResolveContainers scans relationships for containment kinds.
func ResolveContainers(rels []calm.Relationship) ContainerInfo {
	info := ContainerInfo{
		ContainerIDs: make(map[string]bool),
		ParentOf:     make(map[string]string),
	}
	for _, r := range rels {
		if !r.IsContainment() || r.Container == "" {
			continue
		}
		info.ContainerIDs[r.Container] = true
		for _, child := range r.Nodes {
			info.ParentOf[child] = r.Container
		}
	}
	return info
}

// IsContainer reports whether id is named as a container.
func (c ContainerInfo) IsContainer(id string) bool { return c.ContainerIDs[id] }

// Parent returns the container of id, or "".
func (c ContainerInfo) Parent(id string) string { return c.ParentOf[id] }

// Ancestors returns the container chain of id, innermost first. A chain
// that loops back on itself stops before the repeated id.
func (c ContainerInfo) Ancestors(id string) []string {
	var out []string
	visited := map[string]bool{id: true}
	for p := c.ParentOf[id]; p != "" && !visited[p]; p = c.ParentOf[p] {
		visited[p] = true
		out = append(out, p)
	}
	return out
}

// Depth returns the number of containers enclosing id.
func (c ContainerInfo) Depth(id string) int { return len(c.Ancestors(id)) }
