package core

import (
	"github.com/JonMunkholm/xbrlmap/internal/qname"
	"github.com/JonMunkholm/xbrlmap/internal/taxonomy"
)

// The view types are the JSON and YAML shapes shared by the HTTP API and
// the command line tool.

// Summary describes one loaded taxonomy.
type Summary struct {
	EntryPoint         string   `json:"entryPoint" yaml:"entryPoint"`
	Concepts           int      `json:"concepts" yaml:"concepts"`
	PresentationGroups int      `json:"presentationGroups" yaml:"presentationGroups"`
	DefaultLanguage    string   `json:"defaultLanguage,omitempty" yaml:"defaultLanguage,omitempty"`
	Languages          []string `json:"languages" yaml:"languages"`
	DimensionContainer string   `json:"dimensionContainer" yaml:"dimensionContainer"`
	Hypercubes         int      `json:"hypercubes" yaml:"hypercubes"`
	OpenHypercubes     int      `json:"openHypercubes" yaml:"openHypercubes"`
}

// Summarize builds the summary of t.
func Summarize(t *taxonomy.Taxonomy) Summary {
	lang, _ := t.DefaultLanguage()
	return Summary{
		EntryPoint:         t.EntryPoint(),
		Concepts:           len(t.Concepts()),
		PresentationGroups: len(t.Presentation()),
		DefaultLanguage:    lang,
		Languages:          t.SupportedLanguages(),
		DimensionContainer: string(t.DimensionContainer()),
		Hypercubes:         len(t.Hypercubes()),
		OpenHypercubes:     len(t.OpenHypercubes()),
	}
}

// Languages answers which label language serves a request.
type Languages struct {
	EntryPoint string   `json:"entryPoint" yaml:"entryPoint"`
	Default    string   `json:"default" yaml:"default"`
	Supported  []string `json:"supported" yaml:"supported"`
	Requested  string   `json:"requested,omitempty" yaml:"requested,omitempty"`
	Best       string   `json:"best" yaml:"best"`
}

// LanguagesFor resolves requested against t.
func LanguagesFor(t *taxonomy.Taxonomy, requested string) Languages {
	def, _ := t.DefaultLanguage()
	return Languages{
		EntryPoint: t.EntryPoint(),
		Default:    def,
		Supported:  t.SupportedLanguages(),
		Requested:  requested,
		Best:       t.BestSupportedLanguage(requested),
	}
}

// labelRoles are the roles a concept view reports, keyed by short name.
var labelRoles = []struct {
	name string
	role string
}{
	{"standard", taxonomy.StandardLabelRole},
	{"terse", taxonomy.TerseLabelRole},
	{"verbose", taxonomy.VerboseLabelRole},
	{"documentation", taxonomy.DocumentationLabelRole},
	{"periodStart", taxonomy.PeriodStartLabelRole},
	{"periodEnd", taxonomy.PeriodEndLabelRole},
	{"negated", taxonomy.NegatedLabelRole},
	{"measurementGuidance", taxonomy.MeasurementGuidanceLabelRole},
}

// ConceptView is a concept with its labels resolved in one language.
type ConceptView struct {
	QName             string            `json:"qname" yaml:"qname"`
	ExpandedName      string            `json:"expandedName" yaml:"expandedName"`
	PeriodType        string            `json:"periodType" yaml:"periodType"`
	DataType          string            `json:"dataType" yaml:"dataType"`
	BaseDataType      string            `json:"baseDataType" yaml:"baseDataType"`
	TypedElement      string            `json:"typedElement,omitempty" yaml:"typedElement,omitempty"`
	Abstract          bool              `json:"abstract" yaml:"abstract"`
	Nillable          bool              `json:"nillable" yaml:"nillable"`
	Numeric           bool              `json:"numeric" yaml:"numeric"`
	Monetary          bool              `json:"monetary" yaml:"monetary"`
	Dimension         bool              `json:"dimension" yaml:"dimension"`
	Hypercube         bool              `json:"hypercube" yaml:"hypercube"`
	Enumeration       string            `json:"enumeration,omitempty" yaml:"enumeration,omitempty"` // single | set
	Language          string            `json:"language" yaml:"language"`
	Labels            map[string]string `json:"labels" yaml:"labels"`
	LabelLanguages    []string          `json:"labelLanguages" yaml:"labelLanguages"`
	EnumerationDomain []string          `json:"enumerationDomain,omitempty" yaml:"enumerationDomain,omitempty"`
	RequiredUnits     []string          `json:"requiredUnits,omitempty" yaml:"requiredUnits,omitempty"`
	ValidUnits        []string          `json:"validUnits,omitempty" yaml:"validUnits,omitempty"`
	OpenHypercube     bool              `json:"openHypercube,omitempty" yaml:"openHypercube,omitempty"`
}

// NewConceptView resolves c in the best supported language for lang.
func NewConceptView(c *taxonomy.Concept, lang string) ConceptView {
	t := c.Taxonomy()
	lang = t.BestSupportedLanguage(lang)

	v := ConceptView{
		QName:          c.String(),
		ExpandedName:   c.ExpandedName(),
		PeriodType:     string(c.PeriodType()),
		DataType:       c.DataType().String(),
		BaseDataType:   c.BaseDataType().String(),
		Abstract:       c.IsAbstract(),
		Nillable:       c.IsNillable(),
		Numeric:        c.IsNumeric(),
		Monetary:       c.IsMonetary(),
		Dimension:      c.IsDimension(),
		Hypercube:      c.IsHypercube(),
		Language:       lang,
		Labels:         make(map[string]string),
		LabelLanguages: c.Languages(),
		RequiredUnits:  qnameStrings(c.RequiredUnits()),
		OpenHypercube:  t.HasOpenHypercube(c),
	}
	if te, ok := c.TypedElement(); ok {
		v.TypedElement = te.String()
	}
	switch {
	case c.IsEnumerationSingle():
		v.Enumeration = "single"
	case c.IsEnumerationSet():
		v.Enumeration = "set"
	}
	for _, r := range labelRoles {
		if text, ok := c.Label(r.role, taxonomy.WithLanguage(lang)); ok {
			v.Labels[r.name] = text
		}
	}
	v.EnumerationDomain = conceptStrings(c.EnumerationDomain())
	if c.IsNumeric() {
		v.ValidUnits = t.Units().UnitIDsForDataType(c.DataType())
	}
	return v
}

// DimensionsView is the dimensional structure around one concept, which
// may be a primary item, a hypercube or an explicit dimension.
type DimensionsView struct {
	Concept            string             `json:"concept" yaml:"concept"`
	Container          string             `json:"container" yaml:"container"`
	Hypercubes         []string           `json:"hypercubes,omitempty" yaml:"hypercubes,omitempty"`
	ExplicitDimensions []ExplicitDimView  `json:"explicitDimensions,omitempty" yaml:"explicitDimensions,omitempty"`
	TypedDimensions    []string           `json:"typedDimensions,omitempty" yaml:"typedDimensions,omitempty"`
	PrimaryItems       []string           `json:"primaryItems,omitempty" yaml:"primaryItems,omitempty"`
	Domain             []string           `json:"domain,omitempty" yaml:"domain,omitempty"`
	Default            string             `json:"default,omitempty" yaml:"default,omitempty"`
	Open               bool               `json:"open,omitempty" yaml:"open,omitempty"`
	Definitions        []HypercubeDefView `json:"definitions,omitempty" yaml:"definitions,omitempty"`
}

// ExplicitDimView is an explicit dimension with its domain and default.
type ExplicitDimView struct {
	Dimension string   `json:"dimension" yaml:"dimension"`
	Domain    []string `json:"domain" yaml:"domain"`
	Default   string   `json:"default,omitempty" yaml:"default,omitempty"`
}

// HypercubeDefView is one hypercube definition in one role.
type HypercubeDefView struct {
	RoleURI            string   `json:"roleUri" yaml:"roleUri"`
	Closed             bool     `json:"closed" yaml:"closed"`
	ExplicitDimensions []string `json:"explicitDimensions,omitempty" yaml:"explicitDimensions,omitempty"`
	TypedDimensions    []string `json:"typedDimensions,omitempty" yaml:"typedDimensions,omitempty"`
	PrimaryItems       int      `json:"primaryItems" yaml:"primaryItems"`
}

// NewDimensionsView collects the dimensional facts about c.
func NewDimensionsView(c *taxonomy.Concept) DimensionsView {
	t := c.Taxonomy()
	v := DimensionsView{
		Concept:   c.String(),
		Container: string(t.DimensionContainer()),
	}

	switch {
	case c.IsHypercube():
		v.ExplicitDimensions = explicitDimViews(t, t.ExplicitDimensionsForHypercube(c))
		v.TypedDimensions = conceptStrings(t.TypedDimensionsForHypercube(c))
		v.PrimaryItems = conceptStrings(t.PrimaryItemsForHypercube(c))
		for _, d := range t.HypercubeDefinitions(c) {
			dv := HypercubeDefView{
				RoleURI:         d.RoleURI,
				Closed:          d.Closed,
				TypedDimensions: conceptStrings(d.TypedDimensions),
				PrimaryItems:    len(d.PrimaryItems),
			}
			for _, e := range d.ExplicitDimensions {
				dv.ExplicitDimensions = append(dv.ExplicitDimensions, e.Dimension.String())
			}
			v.Definitions = append(v.Definitions, dv)
		}
	case c.IsExplicitDimension():
		v.Domain = conceptStrings(t.DomainMembersForExplicitDimension(c))
		if m, ok := t.DimensionDefault(c); ok {
			v.Default = m.String()
		}
	case c.IsTypedDimension():
		if te, ok := c.TypedElement(); ok {
			v.Domain = []string{te.String()}
		}
	default:
		v.Hypercubes = conceptStrings(t.HypercubesForPrimaryItem(c))
		v.ExplicitDimensions = explicitDimViews(t, t.ExplicitDimensionsForPrimaryItem(c))
		v.TypedDimensions = conceptStrings(t.TypedDimensionsForPrimaryItem(c))
		v.Open = t.HasOpenHypercube(c)
	}
	return v
}

func explicitDimViews(t *taxonomy.Taxonomy, dims []*taxonomy.Concept) []ExplicitDimView {
	out := make([]ExplicitDimView, 0, len(dims))
	for _, d := range dims {
		ev := ExplicitDimView{
			Dimension: d.String(),
			Domain:    conceptStrings(t.DomainMembersForExplicitDimension(d)),
		}
		if m, ok := t.DimensionDefault(d); ok {
			ev.Default = m.String()
		}
		out = append(out, ev)
	}
	return out
}

// GroupView summarises one presentation group.
type GroupView struct {
	Index      int    `json:"index" yaml:"index"`
	RoleURI    string `json:"roleUri" yaml:"roleUri"`
	Definition string `json:"definition" yaml:"definition"`
	Label      string `json:"label" yaml:"label"`
	Style      string `json:"style" yaml:"style"`
	Rows       int    `json:"rows" yaml:"rows"`
	Concepts   int    `json:"concepts" yaml:"concepts"`
}

// GroupViews summarises the presentation groups of t in document order.
func GroupViews(t *taxonomy.Taxonomy, lang string) []GroupView {
	lang = t.BestSupportedLanguage(lang)
	groups := t.Presentation()
	out := make([]GroupView, len(groups))
	for i, g := range groups {
		out[i] = GroupView{
			Index:      i,
			RoleURI:    g.RoleURI,
			Definition: g.Definition,
			Label:      g.Label(lang),
			Style:      g.Style.String(),
			Rows:       len(g.Relationships),
			Concepts:   len(g.Concepts()),
		}
	}
	return out
}

// RowView is one presentation row with its label resolved.
type RowView struct {
	Depth     int    `json:"depth" yaml:"depth"`
	Concept   string `json:"concept" yaml:"concept"`
	Label     string `json:"label" yaml:"label"`
	Abstract  bool   `json:"abstract" yaml:"abstract"`
	Hypercube bool   `json:"hypercube,omitempty" yaml:"hypercube,omitempty"`
	Negated   bool   `json:"negated,omitempty" yaml:"negated,omitempty"`
}

// RowViews resolves the rows of g. Labels fall back to any language and
// then to the QName so every row has text.
func RowViews(g *taxonomy.PresentationGroup, lang string) []RowView {
	out := make([]RowView, len(g.Relationships))
	for i, r := range g.Relationships {
		label, _ := r.Label(taxonomy.WithLanguage(lang), taxonomy.FallbackToAnyLanguage(), taxonomy.FallbackToQName())
		out[i] = RowView{
			Depth:     r.Depth,
			Concept:   r.Concept.String(),
			Label:     label,
			Abstract:  r.Concept.IsAbstract(),
			Hypercube: r.Concept.IsHypercube(),
			Negated:   r.IsNegated(),
		}
	}
	return out
}

func conceptStrings(cs []*taxonomy.Concept) []string {
	if len(cs) == 0 {
		return nil
	}
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

func qnameStrings(qs []qname.QName) []string {
	if len(qs) == 0 {
		return nil
	}
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.String()
	}
	return out
}
