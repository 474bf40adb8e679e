package cache

import "fmt"

// Keyer derives cache keys for the pipeline's stages. Implementations
// must be deterministic so repeated runs over the same input hit the
// same entries.
type Keyer interface {
	// HTTPKey keys a fetched remote document by namespace and URL.
	HTTPKey(namespace, key string) string

	// DocumentKey keys a parsed, normalized document by the content
	// hash of its source bytes.
	DocumentKey(sourceHash string) string

	// ArtifactKey keys a rendered artifact by document hash and the
	// render settings that affect its bytes.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts captures the settings that change rendered output.
// Two renders with equal document hashes and equal opts produce the
// same bytes, so they share a cache entry.
type ArtifactKeyOpts struct {
	Format     string
	Backend    string
	Scale      float64
	Background string
}

// DefaultKeyer implements the standard key scheme. HTTP keys stay
// readable for debugging; document and artifact keys hash their
// components so option changes cannot collide.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return fmt.Sprintf("http:%s:%s", namespace, key)
}

// DocumentKey generates a key for parsed document caching.
func (k *DefaultKeyer) DocumentKey(sourceHash string) string {
	return hashKey("document", sourceHash)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts)
}
