package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants (or
// several server instances with different defaults) can share one backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "archview:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey generates a prefixed graph key.
func (k *ScopedKeyer) GraphKey(docHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(docHash, opts)
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(graphHash, opts)
}
