package taxonomy

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/xbrlmap/internal/qname"
	"github.com/JonMunkholm/xbrlmap/internal/utr"
)

// UnitRegistry is the unit lookup surface the taxonomy needs.
type UnitRegistry interface {
	QNameForUnitID(id string) (qname.QName, bool)
	UnitsForDataType(dataType qname.QName) []qname.QName
	UnitIDsForDataType(dataType qname.QName) []string
	Valid(dataType, unit qname.QName) bool
}

// UnitRegistryFunc builds a unit registry against the prefixes of the
// taxonomy being constructed.
type UnitRegistryFunc func(*qname.Maker) (UnitRegistry, error)

type options struct {
	logger     *slog.Logger
	rejectOpen bool
	units      UnitRegistryFunc
}

// Option configures taxonomy construction.
type Option func(*options)

// WithLogger sets the logger construction warnings go to.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// RejectOpenHypercubes makes open hypercubes a construction error instead
// of a warning.
func RejectOpenHypercubes() Option {
	return func(o *options) { o.rejectOpen = true }
}

// WithUnitRegistry replaces the embedded unit registry.
func WithUnitRegistry(fn UnitRegistryFunc) Option {
	return func(o *options) { o.units = fn }
}

// UnitRegistryFromFile loads the unit registry from a file.
func UnitRegistryFromFile(path string) UnitRegistryFunc {
	return func(m *qname.Maker) (UnitRegistry, error) {
		r, err := utr.Load(path, m)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

func defaultUnitRegistry(m *qname.Maker) (UnitRegistry, error) {
	r, err := utr.Default(m)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// OpenHypercube names a hypercube declared open (xbrldt:closed false).
type OpenHypercube struct {
	RoleURI   string
	Hypercube *Concept
}

// Taxonomy is the queryable model of one taxonomy entry point. It is
// immutable and safe for concurrent use once New returns.
type Taxonomy struct {
	entryPoint string
	maker      *qname.Maker
	units      UnitRegistry

	concepts    map[qname.QName]*Concept // keys carry no prefix
	conceptList []*Concept
	groups      []*PresentationGroup

	byName       map[string][]*Concept
	byLabel      map[string][]*Concept
	byNormalized map[string][]*Concept
	byPretend    map[string][]*Concept

	languages       []string
	defaultLanguage string

	dimensions
}

// New builds a taxonomy from doc. Any inconsistency fails the whole build.
func New(doc *Document, opts ...Option) (*Taxonomy, error) {
	o := options{logger: slog.Default(), units: defaultUnitRegistry}
	for _, opt := range opts {
		opt(&o)
	}
	if doc == nil || strings.TrimSpace(doc.EntryPoint) == "" {
		return nil, taxonomyErrorf("document has no entry point")
	}
	logger := o.logger.With("entry_point", doc.EntryPoint)

	t := &Taxonomy{
		entryPoint: doc.EntryPoint,
		maker:      qname.NewMaker(),
		concepts:   make(map[qname.QName]*Concept, len(doc.Concepts)),
	}

	for _, ns := range doc.Namespaces {
		if err := t.maker.AddNamespacePrefix(ns.Prefix, ns.Namespace); err != nil {
			return nil, taxonomyErrorf("%v", err)
		}
	}

	for _, data := range doc.Concepts {
		c, err := newConcept(t.maker, data)
		if err != nil {
			return nil, err
		}
		key := conceptKey(c.qname)
		if _, dup := t.concepts[key]; dup {
			return nil, taxonomyErrorf("concept %s defined more than once", c.qname)
		}
		t.concepts[key] = c
		t.conceptList = append(t.conceptList, c)
	}
	t.conceptList = sortedConcepts(t.conceptList)

	for _, c := range t.conceptList {
		if err := c.reify(t); err != nil {
			return nil, err
		}
	}

	if err := t.buildPresentation(doc.Presentation); err != nil {
		return nil, err
	}

	t.languages, t.defaultLanguage = countLanguages(t.conceptList, t.groups)
	for _, g := range t.groups {
		g.defaultLanguage = t.defaultLanguage
	}

	t.buildIndices()

	if err := t.buildDimensions(doc, logger, o.rejectOpen); err != nil {
		return nil, err
	}

	units, err := o.units(t.maker)
	if err != nil {
		return nil, taxonomyErrorf("unit registry: %v", err)
	}
	t.units = units
	for _, c := range t.conceptList {
		c.requiredUnits = t.requiredUnits(c)
	}

	logger.Debug("taxonomy built",
		"concepts", len(t.conceptList),
		"presentation_groups", len(t.groups),
		"base_sets", len(t.baseSets),
		"default_language", t.defaultLanguage,
	)
	return t, nil
}

func conceptKey(q qname.QName) qname.QName {
	return qname.QName{Namespace: q.Namespace, Local: q.Local}
}

func (t *Taxonomy) buildPresentation(data []PresentationData) error {
	for _, p := range data {
		g := &PresentationGroup{
			RoleURI:       p.RoleURI,
			Definition:    strings.TrimSpace(p.Definition),
			Labels:        make(map[string]string, len(p.Labels)),
			Relationships: make([]Relationship, 0, len(p.Rows)),
		}
		for lang, text := range p.Labels {
			if text != "" {
				g.Labels[strings.ToLower(strings.TrimSpace(lang))] = text
			}
		}
		rels, err := t.relationships(p.RoleURI, p.Rows)
		if err != nil {
			return fmt.Errorf("presentation %s: %w", p.RoleURI, err)
		}
		g.Relationships = rels
		g.Style = ClassifyStyle(rels)
		t.groups = append(t.groups, g)
	}
	return nil
}

func (t *Taxonomy) relationships(role string, rows []Row) ([]Relationship, error) {
	out := make([]Relationship, 0, len(rows))
	for _, row := range rows {
		if row.Depth < 0 {
			return nil, taxonomyErrorf("row %s has negative depth %d", row.QName, row.Depth)
		}
		c, err := t.ConceptFor(row.QName)
		if err != nil {
			return nil, taxonomyErrorf("row %s: %v", row.QName, err)
		}
		out = append(out, Relationship{
			RoleURI:        role,
			Depth:          row.Depth,
			Concept:        c,
			PreferredLabel: row.PreferredLabel,
		})
	}
	return out, nil
}

// buildIndices records every concept under each key it can be looked up
// by. Collisions are kept so lookups can report them.
func (t *Taxonomy) buildIndices() {
	t.byName = make(map[string][]*Concept)
	t.byLabel = make(map[string][]*Concept)
	t.byNormalized = make(map[string][]*Concept)
	t.byPretend = make(map[string][]*Concept)

	for _, c := range t.conceptList {
		t.byName[c.qname.Local] = append(t.byName[c.qname.Local], c)

		label, ok := c.StandardLabel()
		if !ok {
			continue
		}
		t.byLabel[label] = appendUnique(t.byLabel[label], c)

		if k := NormalizeDashes(label); k != "" {
			t.byNormalized[k] = appendUnique(t.byNormalized[k], c)
		}
		if k := pretendLabel(label); k != "" {
			t.byPretend[k] = appendUnique(t.byPretend[k], c)
		}
	}
}

func appendUnique(list []*Concept, c *Concept) []*Concept {
	for _, existing := range list {
		if existing == c {
			return list
		}
	}
	return append(list, c)
}

// EntryPoint returns the entry point the taxonomy was loaded for.
func (t *Taxonomy) EntryPoint() string { return t.entryPoint }

// QNameMaker returns the prefix registry of the taxonomy. Callers must not
// bind new prefixes.
func (t *Taxonomy) QNameMaker() *qname.Maker { return t.maker }

// Units returns the unit registry the taxonomy was built with.
func (t *Taxonomy) Units() UnitRegistry { return t.units }

// Presentation returns the presentation groups in document order.
func (t *Taxonomy) Presentation() []*PresentationGroup {
	return append([]*PresentationGroup(nil), t.groups...)
}

// Concepts returns every concept sorted by QName.
func (t *Taxonomy) Concepts() []*Concept {
	return append([]*Concept(nil), t.conceptList...)
}

func (t *Taxonomy) String() string {
	return fmt.Sprintf("Taxonomy(%s, %d concepts)", t.entryPoint, len(t.conceptList))
}
