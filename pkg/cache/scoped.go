package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// The render service uses this so documents submitted by different
// clients never share cache entries.
//
// Example usage:
//
//	// Per-client keys for submitted documents
//	clientKeyer := NewScopedKeyer(NewDefaultKeyer(), "client:abc123:")
//
//	// Shared keys for anonymous requests
//	sharedKeyer := NewDefaultKeyer()
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

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// DocumentKey generates a prefixed key for parsed document caching.
func (k *ScopedKeyer) DocumentKey(sourceHash string) string {
	return k.prefix + k.inner.DocumentKey(sourceHash)
}

// ArtifactKey generates a prefixed key for rendered artifact caching.
func (k *ScopedKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(docHash, opts)
}
