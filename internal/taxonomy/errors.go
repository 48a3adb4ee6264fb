package taxonomy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/xbrlmap/internal/qname"
)

var (
	// ErrTaxonomy is the root of every error this package returns for
	// malformed or inconsistent taxonomy data.
	ErrTaxonomy = errors.New("taxonomy error")

	// ErrUnknownTaxonomy is returned for entry points that were never loaded.
	ErrUnknownTaxonomy = fmt.Errorf("%w: unknown taxonomy", ErrTaxonomy)

	// ErrAmbiguous is returned when a lookup matches more than one component.
	ErrAmbiguous = fmt.Errorf("%w: ambiguous lookup", ErrTaxonomy)

	// ErrAlreadyLoaded is returned when an entry point is registered twice.
	ErrAlreadyLoaded = fmt.Errorf("%w: taxonomy already loaded", ErrTaxonomy)

	// ErrConceptNotFound is returned when a QName names no concept.
	ErrConceptNotFound = errors.New("concept not found")
)

func taxonomyErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTaxonomy, fmt.Sprintf(format, args...))
}

// AmbiguousError reports every candidate of a lookup that matched more than
// once. Candidates are sorted.
type AmbiguousError struct {
	Kind       string // "name", "label" or "domain member"
	Key        string
	Candidates []qname.QName
}

func (e *AmbiguousError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.String()
	}
	return fmt.Sprintf("ambiguous %s %q: candidates: %s", e.Kind, e.Key, strings.Join(names, ", "))
}

func (e *AmbiguousError) Unwrap() error { return ErrAmbiguous }

func newAmbiguousError(kind, key string, candidates []*Concept) *AmbiguousError {
	sorted := sortedConcepts(candidates)
	names := make([]qname.QName, len(sorted))
	for i, c := range sorted {
		names[i] = c.QName()
	}
	return &AmbiguousError{Kind: kind, Key: key, Candidates: names}
}

// UnknownTaxonomyError is returned by registry lookups for entry points
// that are not loaded.
type UnknownTaxonomyError struct {
	EntryPoint string
	Cause      error // set when a load of this entry point failed
}

func (e *UnknownTaxonomyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unknown taxonomy entry point %q: load failed: %v", e.EntryPoint, e.Cause)
	}
	return fmt.Sprintf("unknown taxonomy entry point %q", e.EntryPoint)
}

func (e *UnknownTaxonomyError) Unwrap() error { return ErrUnknownTaxonomy }
