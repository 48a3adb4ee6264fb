package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/xbrlmap/internal/metrics"
	"github.com/JonMunkholm/xbrlmap/internal/taxonomy"
)

// LookupKind selects how LookupConcept interprets its key.
type LookupKind string

const (
	LookupQName LookupKind = "qname" // prefix:local or {namespace}local
	LookupName  LookupKind = "name"  // local name in any namespace
	LookupLabel LookupKind = "label" // standard label, default language
)

// ParseLookupKind validates a lookup kind.
func ParseLookupKind(s string) (LookupKind, error) {
	switch k := LookupKind(strings.ToLower(strings.TrimSpace(s))); k {
	case LookupQName, LookupName, LookupLabel:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown lookup kind %q", ErrInvalidRequest, s)
}

// EntryPoints lists the loaded taxonomies.
func (s *Service) EntryPoints() []string {
	return s.registry.EntryPoints()
}

// Taxonomy returns the taxonomy for entryPoint. An empty entry point
// selects the only loaded taxonomy when there is exactly one.
func (s *Service) Taxonomy(entryPoint string) (*taxonomy.Taxonomy, error) {
	entryPoint = strings.TrimSpace(entryPoint)
	if entryPoint == "" {
		eps := s.registry.EntryPoints()
		if len(eps) != 1 {
			return nil, fmt.Errorf("%w: entry point is required (loaded: %s)",
				ErrInvalidRequest, strings.Join(eps, ", "))
		}
		entryPoint = eps[0]
	}
	return s.registry.Get(entryPoint)
}

// LookupConcept finds one concept. A miss is taxonomy.ErrConceptNotFound
// and several matches an *taxonomy.AmbiguousError, so callers can tell the
// three outcomes apart.
func (s *Service) LookupConcept(entryPoint string, kind LookupKind, key string) (*taxonomy.Concept, error) {
	c, err := s.lookupConcept(entryPoint, kind, key)
	s.metrics.RecordLookup(string(kind), lookupOutcome(err))
	return c, err
}

func (s *Service) lookupConcept(entryPoint string, kind LookupKind, key string) (*taxonomy.Concept, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: %s is required", ErrInvalidRequest, kind)
	}
	t, err := s.Taxonomy(entryPoint)
	if err != nil {
		return nil, err
	}

	var c *taxonomy.Concept
	switch kind {
	case LookupQName:
		return t.ConceptFor(key)
	case LookupName:
		c, err = t.ConceptForName(key)
	case LookupLabel:
		c, err = t.ConceptForLabel(key)
	default:
		return nil, fmt.Errorf("%w: unknown lookup kind %q", ErrInvalidRequest, kind)
	}
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: no concept with %s %q", taxonomy.ErrConceptNotFound, kind, key)
	}
	return c, nil
}

func lookupOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeHit
	case errors.Is(err, taxonomy.ErrConceptNotFound):
		return metrics.OutcomeMiss
	case errors.Is(err, taxonomy.ErrAmbiguous):
		return metrics.OutcomeAmbiguous
	}
	return metrics.OutcomeError
}

// DimensionForMember resolves which explicit dimension of primaryItem
// allows member. Both are QNames.
func (s *Service) DimensionForMember(entryPoint, primaryItem, member string) (*taxonomy.Concept, error) {
	item, err := s.LookupConcept(entryPoint, LookupQName, primaryItem)
	if err != nil {
		return nil, err
	}
	m, err := s.LookupConcept(entryPoint, LookupQName, member)
	if err != nil {
		return nil, err
	}
	dim, err := item.Taxonomy().ExplicitDimensionForDomainMember(item, m)
	if err != nil {
		return nil, err
	}
	if dim == nil {
		return nil, fmt.Errorf("%w: %s on %s", ErrNoDimension, m, item)
	}
	return dim, nil
}

// Summaries describes every loaded taxonomy, sorted by entry point.
func (s *Service) Summaries() []Summary {
	eps := s.registry.EntryPoints()
	out := make([]Summary, 0, len(eps))
	for _, ep := range eps {
		t, err := s.registry.Get(ep)
		if err != nil {
			continue
		}
		out = append(out, Summarize(t))
	}
	return out
}
