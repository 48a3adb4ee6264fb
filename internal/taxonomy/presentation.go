package taxonomy

import (
	"fmt"
	"strings"
)

// Style classifies the shape of a presentation network.
type Style int

const (
	// StyleEmpty has no reportable concepts.
	StyleEmpty Style = iota
	// StyleList has reportable concepts, none inside a hypercube.
	StyleList
	// StyleTable has every reportable concept inside a hypercube.
	StyleTable
	// StyleHybrid mixes both.
	StyleHybrid
)

var styleNames = [...]string{"empty", "list", "table", "hybrid"}

func (s Style) String() string {
	if s < 0 || int(s) >= len(styleNames) {
		return fmt.Sprintf("Style(%d)", int(s))
	}
	return styleNames[s]
}

func (s Style) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Relationship is one row of a presentation or primary item tree.
type Relationship struct {
	RoleURI        string
	Depth          int
	Concept        *Concept
	PreferredLabel string
}

func (r Relationship) IsPeriodStart() bool {
	return strings.Contains(r.PreferredLabel, "periodStart")
}

func (r Relationship) IsPeriodEnd() bool {
	return strings.Contains(r.PreferredLabel, "periodEnd") && r.Concept.IsNumeric()
}

func (r Relationship) IsNegated() bool {
	return strings.Contains(r.PreferredLabel, "negated") && r.Concept.IsNumeric()
}

// LabelRole is the preferred label role, or the standard label role.
func (r Relationship) LabelRole() string {
	if r.PreferredLabel != "" {
		return r.PreferredLabel
	}
	return StandardLabelRole
}

// Label resolves the concept label in the preferred role. Suffixes are
// removed unless KeepSuffix is given.
func (r Relationship) Label(opts ...LabelOption) (string, bool) {
	return r.Concept.Label(r.LabelRole(), append([]LabelOption{RemoveSuffix()}, opts...)...)
}

// PresentationGroup is one presentation network in document order.
type PresentationGroup struct {
	RoleURI       string
	Definition    string
	Labels        map[string]string // language -> text
	Relationships []Relationship
	Style         Style

	defaultLanguage string
}

// Label returns the group label in lang, then in the default language,
// then the role definition.
func (g *PresentationGroup) Label(lang string) string {
	if text := g.Labels[normalizeLanguage(lang)]; text != "" {
		return text
	}
	if text := g.Labels[g.defaultLanguage]; text != "" {
		return text
	}
	return g.Definition
}

// Concepts returns the concepts of the group in row order, without repeats.
func (g *PresentationGroup) Concepts() []*Concept {
	seen := make(map[*Concept]struct{}, len(g.Relationships))
	out := make([]*Concept, 0, len(g.Relationships))
	for _, r := range g.Relationships {
		if _, ok := seen[r.Concept]; ok {
			continue
		}
		seen[r.Concept] = struct{}{}
		out = append(out, r.Concept)
	}
	return out
}

// ClassifyStyle classifies rows in the order given. A hypercube row opens a
// scope at its depth; a later row at the same depth or shallower closes it.
// Reportable rows at or below an open scope are table rows, all other
// reportable rows are list rows.
func ClassifyStyle(rows []Relationship) Style {
	var reportable, hypercubes bool
	for _, r := range rows {
		reportable = reportable || r.Concept.IsReportable()
		hypercubes = hypercubes || r.Concept.IsHypercube()
	}
	switch {
	case !reportable:
		return StyleEmpty
	case !hypercubes:
		return StyleList
	}

	var (
		scopes      []int
		table, list bool
	)
	for _, r := range rows {
		for len(scopes) > 0 && r.Depth <= scopes[len(scopes)-1] {
			scopes = scopes[:len(scopes)-1]
		}
		if r.Concept.IsHypercube() {
			scopes = append(scopes, r.Depth)
			continue
		}
		if !r.Concept.IsReportable() {
			continue
		}
		if len(scopes) > 0 && r.Depth >= scopes[len(scopes)-1] {
			table = true
		} else {
			list = true
		}
	}

	switch {
	case table && list:
		return StyleHybrid
	case table:
		return StyleTable
	case list:
		return StyleList
	}
	return StyleEmpty
}
