package taxonomy

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry keeps built taxonomies by entry point for the life of the
// process. Entries are never replaced or evicted. Lookups take no locks and
// each entry point is built at most once.
type Registry struct {
	entries sync.Map // entry point -> *entry
}

type entry struct {
	once     sync.Once
	done     chan struct{}
	taxonomy *Taxonomy
	err      error
}

func newEntry() *entry {
	return &entry{done: make(chan struct{})}
}

func (e *entry) build(fn func() (*Taxonomy, error)) {
	e.once.Do(func() {
		defer close(e.done)
		e.taxonomy, e.err = fn()
	})
}

func (e *entry) ready() bool {
	select {
	case <-e.done:
		return e.err == nil
	default:
		return false
	}
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Load builds doc and registers it. Registering an entry point that is
// already present, or being built, fails with ErrAlreadyLoaded. A failed
// build leaves nothing behind.
func (r *Registry) Load(doc *Document, opts ...Option) (*Taxonomy, error) {
	if doc == nil {
		return nil, taxonomyErrorf("nil document")
	}
	e := newEntry()
	if _, loaded := r.entries.LoadOrStore(doc.EntryPoint, e); loaded {
		return nil, fmt.Errorf("%w: %s (loaded: %s)",
			ErrAlreadyLoaded, doc.EntryPoint, strings.Join(r.EntryPoints(), ", "))
	}
	e.build(func() (*Taxonomy, error) { return New(doc, opts...) })
	if e.err != nil {
		r.entries.CompareAndDelete(doc.EntryPoint, e)
		return nil, e.err
	}
	return e.taxonomy, nil
}

// Ensure returns the taxonomy for entryPoint, building it with fetch on
// first use. Concurrent callers for the same entry point share one build.
func (r *Registry) Ensure(entryPoint string, fetch func() (*Document, error), opts ...Option) (*Taxonomy, error) {
	v, _ := r.entries.LoadOrStore(entryPoint, newEntry())
	e := v.(*entry)
	e.build(func() (*Taxonomy, error) {
		doc, err := fetch()
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, taxonomyErrorf("no document for %s", entryPoint)
		}
		if doc.EntryPoint != entryPoint {
			return nil, taxonomyErrorf("document for %s declares entry point %s", entryPoint, doc.EntryPoint)
		}
		return New(doc, opts...)
	})
	<-e.done
	if e.err != nil {
		r.entries.CompareAndDelete(entryPoint, e)
		return nil, e.err
	}
	return e.taxonomy, nil
}

// Get returns the taxonomy registered for entryPoint, waiting for a build
// in progress.
func (r *Registry) Get(entryPoint string) (*Taxonomy, error) {
	v, ok := r.entries.Load(entryPoint)
	if !ok {
		return nil, &UnknownTaxonomyError{EntryPoint: entryPoint}
	}
	e := v.(*entry)
	<-e.done
	if e.err != nil {
		return nil, &UnknownTaxonomyError{EntryPoint: entryPoint, Cause: e.err}
	}
	return e.taxonomy, nil
}

// EntryPoints returns the entry points of every built taxonomy, sorted.
func (r *Registry) EntryPoints() []string {
	var out []string
	r.entries.Range(func(k, v any) bool {
		if v.(*entry).ready() {
			out = append(out, k.(string))
		}
		return true
	})
	sort.Strings(out)
	return out
}

// Len returns the number of built taxonomies.
func (r *Registry) Len() int {
	return len(r.EntryPoints())
}

// Default is the process-wide registry.
var Default = NewRegistry()

// Load builds doc into the Default registry.
func Load(doc *Document, opts ...Option) (*Taxonomy, error) {
	return Default.Load(doc, opts...)
}

// Get returns a taxonomy from the Default registry.
func Get(entryPoint string) (*Taxonomy, error) {
	return Default.Get(entryPoint)
}

// EntryPoints lists the Default registry.
func EntryPoints() []string {
	return Default.EntryPoints()
}
