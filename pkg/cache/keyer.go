package cache

// Keyer generates cache keys.
type Keyer interface {
	// GraphKey returns the key for the graph built from the document with
	// content hash docHash.
	GraphKey(docHash string, opts GraphKeyOpts) string

	// RenderKey returns the key for an artifact rendered from the graph with
	// content hash graphHash.
	RenderKey(graphHash string, opts RenderKeyOpts) string
}

// GraphKeyOpts are the inputs besides the document that shape a graph.
type GraphKeyOpts struct {
	Pattern bool `json:"pattern"`
	// Layout is any JSON-encodable description of the layout settings.
	Layout any `json:"layout"`
}

// RenderKeyOpts are the inputs besides the graph that shape an artifact.
type RenderKeyOpts struct {
	Format     string `json:"format"`
	Selections string `json:"selections,omitempty"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(docHash string, opts GraphKeyOpts) string {
	return hashKey("graph", docHash, opts)
}

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return hashKey("render", graphHash, opts)
}
