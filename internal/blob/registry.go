package blob

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Scheme is the URL scheme of object references.
const Scheme = "blob:"

// opaqueOrigin is serialised when the registry has no origin, as browsers do
// for documents without one.
const opaqueOrigin = "null"

// Registry maps object URLs to the blobs they reference.
// It is safe for concurrent use.
type Registry struct {
	origin string

	mu   sync.Mutex
	refs map[string]*Blob
}

// NewRegistry creates a Registry whose URLs are scoped to origin
// (for example "http://127.0.0.1:8000").
func NewRegistry(origin string) *Registry {
	origin = strings.TrimSuffix(origin, "/")
	if origin == "" {
		origin = opaqueOrigin
	}
	return &Registry{
		origin: origin,
		refs:   make(map[string]*Blob),
	}
}

// CreateObjectURL registers b and returns a unique "blob:<origin>/<uuid>" URL for it.
func (r *Registry) CreateObjectURL(b *Blob) string {
	url := Scheme + r.origin + "/" + uuid.NewString()

	r.mu.Lock()
	r.refs[url] = b
	r.mu.Unlock()

	return url
}

// Resolve returns the blob referenced by url, if the reference is still live.
func (r *Registry) Resolve(url string) (*Blob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.refs[url]
	return b, ok
}

// RevokeObjectURL releases url. Revoking an unknown or already revoked URL is a no-op.
func (r *Registry) RevokeObjectURL(url string) {
	r.mu.Lock()
	delete(r.refs, url)
	r.mu.Unlock()
}

// Live returns the number of references that have not been revoked.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.refs)
}

// IsObjectURL reports whether s uses the blob: scheme.
func IsObjectURL(s string) bool {
	return strings.HasPrefix(s, Scheme)
}
