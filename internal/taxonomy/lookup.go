package taxonomy

import (
	"fmt"

	"github.com/JonMunkholm/xbrlmap/internal/qname"
)

// Concept returns the concept named q. The prefix of q is ignored.
func (t *Taxonomy) Concept(q qname.QName) (*Concept, bool) {
	c, ok := t.concepts[conceptKey(q)]
	return c, ok
}

// ConceptFor parses s with the taxonomy prefixes and returns the concept.
func (t *Taxonomy) ConceptFor(s string) (*Concept, error) {
	q, err := t.maker.Parse(s)
	if err != nil {
		return nil, err
	}
	c, ok := t.Concept(q)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConceptNotFound, q)
	}
	return c, nil
}

// ConceptForName looks a concept up by local name alone. It returns nil
// without error when nothing matches and an *AmbiguousError when more than
// one namespace defines the name.
func (t *Taxonomy) ConceptForName(local string) (*Concept, error) {
	return pick("name", local, t.byName[local])
}

// ConceptForLabel looks a concept up by standard label in the default
// language. When the exact label misses it retries with unicode dashes
// normalised, then with any trailing bracketed suffix removed and case
// folded. Each step reports ambiguity rather than picking a candidate.
func (t *Taxonomy) ConceptForLabel(label string) (*Concept, error) {
	if found := t.byLabel[label]; len(found) > 0 {
		return pick("label", label, found)
	}
	if found := t.byNormalized[NormalizeDashes(label)]; len(found) > 0 {
		return pick("label", label, found)
	}
	return pick("label", label, t.byPretend[pretendLabel(label)])
}

func pick(kind, key string, candidates []*Concept) (*Concept, error) {
	switch len(candidates) {
	case 0:
		return nil, nil
	case 1:
		return candidates[0], nil
	}
	return nil, newAmbiguousError(kind, key, candidates)
}
