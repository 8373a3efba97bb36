package interop

import (
	"errors"
	"sync"
)

// ErrClassNotFound indicates the catalog has no class with the requested
// name.
var ErrClassNotFound = errors.New("class not found")

// Catalog supplies the native members declared on a class. Lookup must
// return identical results for repeated calls with the same name within
// one compilation; the returned slice is treated as read-only.
type Catalog interface {
	// Lookup returns the members of the class with the given internal
	// binary name. A class that exists but declares no members yields an
	// empty slice; an unknown class yields ErrClassNotFound.
	Lookup(className string) ([]*MemberSignature, error)
}

// CachedCatalog memoizes another catalog so the backing lookup (which may
// do file or database I/O) runs at most once per distinct class name per
// compilation. Safe for concurrent use; after the first load a class entry
// is read-only.
type CachedCatalog struct {
	backend Catalog

	mu      sync.Mutex
	classes map[string]*catalogEntry
}

type catalogEntry struct {
	once    sync.Once
	members []*MemberSignature
	err     error
}

// NewCachedCatalog wraps backend with a per-class memo cache.
func NewCachedCatalog(backend Catalog) *CachedCatalog {
	return &CachedCatalog{
		backend: backend,
		classes: make(map[string]*catalogEntry),
	}
}

// Lookup implements Catalog.
func (c *CachedCatalog) Lookup(className string) ([]*MemberSignature, error) {
	c.mu.Lock()
	entry, ok := c.classes[className]
	if !ok {
		entry = &catalogEntry{}
		c.classes[className] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.members, entry.err = c.backend.Lookup(className)
	})
	return entry.members, entry.err
}
