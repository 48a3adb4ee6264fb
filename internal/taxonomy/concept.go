package taxonomy

import (
	"sort"
	"strings"

	"github.com/JonMunkholm/xbrlmap/internal/qname"
)

// PeriodType is the period a fact about a concept refers to.
type PeriodType string

const (
	PeriodDuration PeriodType = "duration"
	PeriodInstant  PeriodType = "instant"
)

// Data types the derived classifications test against.
var (
	monetaryItemType       = qname.QName{Namespace: qname.XBRLI, Local: "monetaryItemType"}
	dateItemType           = qname.QName{Namespace: qname.XBRLI, Local: "dateItemType"}
	booleanItemType        = qname.QName{Namespace: qname.XBRLI, Local: "booleanItemType"}
	enumerationItemType    = qname.QName{Namespace: qname.Enum2, Local: "enumerationItemType"}
	enumerationSetItemType = qname.QName{Namespace: qname.Enum2, Local: "enumerationSetItemType"}
)

const textBlockItemType = "textBlockItemType"

// enumDomain is the extensible enumeration domain of a concept: raw member
// names until the concept is reified, member concepts afterwards.
type enumDomain interface {
	isEnumDomain()
}

type rawDomain []string

type resolvedDomain []*Concept

func (rawDomain) isEnumDomain()      {}
func (resolvedDomain) isEnumDomain() {}

// Concept is one taxonomy element. It is immutable once its taxonomy has
// been built.
type Concept struct {
	qname        qname.QName
	periodType   PeriodType
	dataType     qname.QName
	baseDataType qname.QName
	typedElement qname.QName

	abstract  bool
	dimension bool
	hypercube bool
	nillable  bool
	numeric   bool

	// language (lower case) -> label role -> text
	labels    map[string]map[string]string
	languages []string

	domain        enumDomain
	requiredUnits []qname.QName

	taxonomy *Taxonomy
}

func newConcept(m *qname.Maker, data ConceptData) (*Concept, error) {
	name, err := m.Parse(data.QName)
	if err != nil {
		return nil, taxonomyErrorf("concept %q: %v", data.QName, err)
	}

	c := &Concept{
		qname:     name,
		abstract:  data.Abstract,
		dimension: data.Dimension,
		hypercube: data.Hypercube,
		nillable:  data.Nillable,
		numeric:   data.Numeric,
	}

	switch PeriodType(data.PeriodType) {
	case PeriodDuration, PeriodInstant:
		c.periodType = PeriodType(data.PeriodType)
	case "":
		return nil, taxonomyErrorf("concept %s has no period type", name)
	default:
		return nil, taxonomyErrorf("concept %s has invalid period type %q", name, data.PeriodType)
	}

	if data.DataType == "" {
		return nil, taxonomyErrorf("concept %s has no data type", name)
	}
	if c.dataType, err = m.Parse(data.DataType); err != nil {
		return nil, taxonomyErrorf("concept %s data type: %v", name, err)
	}
	if data.BaseDataType == "" {
		return nil, taxonomyErrorf("concept %s has no base data type", name)
	}
	if c.baseDataType, err = m.Parse(data.BaseDataType); err != nil {
		return nil, taxonomyErrorf("concept %s base data type: %v", name, err)
	}

	if data.Other.TypedElement != "" {
		if c.typedElement, err = m.Parse(data.Other.TypedElement); err != nil {
			return nil, taxonomyErrorf("concept %s typed element: %v", name, err)
		}
	}
	if len(data.Other.EnumerationDomain) > 0 {
		c.domain = rawDomain(append([]string(nil), data.Other.EnumerationDomain...))
	}

	c.labels = make(map[string]map[string]string, len(data.Labels))
	for lang, roles := range data.Labels {
		key := strings.ToLower(strings.TrimSpace(lang))
		bucket, ok := c.labels[key]
		if !ok {
			bucket = make(map[string]string, len(roles))
			c.labels[key] = bucket
		}
		for role, text := range roles {
			if text == "" {
				continue
			}
			// Same language spelled twice: keep the longer text.
			if existing := bucket[role]; len(existing) >= len(text) {
				continue
			}
			bucket[role] = text
		}
	}
	for lang, bucket := range c.labels {
		if len(bucket) == 0 {
			delete(c.labels, lang)
			continue
		}
		c.languages = append(c.languages, lang)
	}
	sort.Strings(c.languages)

	return c, nil
}

// reify resolves references to other concepts and binds c to t. It runs
// exactly once per concept, after every concept of t exists.
func (c *Concept) reify(t *Taxonomy) error {
	if c.taxonomy != nil {
		return taxonomyErrorf("concept %s reified twice", c.qname)
	}
	switch d := c.domain.(type) {
	case rawDomain:
		members := make(resolvedDomain, 0, len(d))
		for _, s := range d {
			m, err := t.ConceptFor(s)
			if err != nil {
				return taxonomyErrorf("concept %s enumeration domain: %v", c.qname, err)
			}
			members = append(members, m)
		}
		c.domain = members
	case resolvedDomain:
		return taxonomyErrorf("concept %s enumeration domain already resolved", c.qname)
	}
	c.taxonomy = t
	return nil
}

func (c *Concept) QName() qname.QName { return c.qname }

// ExpandedName returns namespace#local.
func (c *Concept) ExpandedName() string { return c.qname.Expanded() }

func (c *Concept) String() string { return c.qname.String() }

func (c *Concept) PeriodType() PeriodType { return c.periodType }

func (c *Concept) DataType() qname.QName { return c.dataType }

func (c *Concept) BaseDataType() qname.QName { return c.baseDataType }

// TypedElement returns the element that holds values of a typed dimension.
func (c *Concept) TypedElement() (qname.QName, bool) {
	return c.typedElement, !c.typedElement.IsZero()
}

// Taxonomy returns the taxonomy c belongs to.
func (c *Concept) Taxonomy() *Taxonomy { return c.taxonomy }

func (c *Concept) IsAbstract() bool   { return c.abstract }
func (c *Concept) IsDimension() bool  { return c.dimension }
func (c *Concept) IsHypercube() bool  { return c.hypercube }
func (c *Concept) IsNillable() bool   { return c.nillable }
func (c *Concept) IsNumeric() bool    { return c.numeric }
func (c *Concept) IsReportable() bool { return !c.abstract }

func (c *Concept) IsMonetary() bool { return c.baseDataType.Equal(monetaryItemType) }
func (c *Concept) IsDate() bool     { return c.baseDataType.Equal(dateItemType) }
func (c *Concept) IsBoolean() bool  { return c.baseDataType.Equal(booleanItemType) }

func (c *Concept) IsTextBlock() bool { return c.dataType.Local == textBlockItemType }

func (c *Concept) IsEnumerationSingle() bool { return c.dataType.Equal(enumerationItemType) }
func (c *Concept) IsEnumerationSet() bool    { return c.dataType.Equal(enumerationSetItemType) }

func (c *Concept) IsTypedDimension() bool { return c.dimension && !c.typedElement.IsZero() }

func (c *Concept) IsExplicitDimension() bool { return c.dimension && c.typedElement.IsZero() }

// EnumerationDomain returns the members of an extensible enumeration
// concept in declaration order. It is nil for other concepts.
func (c *Concept) EnumerationDomain() []*Concept {
	d, ok := c.domain.(resolvedDomain)
	if !ok {
		return nil
	}
	return append([]*Concept(nil), d...)
}

// Languages returns the languages c has labels in, sorted.
func (c *Concept) Languages() []string {
	return append([]string(nil), c.languages...)
}

// RequiredUnits returns the units the measurement guidance label of a
// numeric concept asks for, restricted to units valid for its data type.
func (c *Concept) RequiredUnits() []qname.QName {
	return append([]qname.QName(nil), c.requiredUnits...)
}

func sortedConcepts(in []*Concept) []*Concept {
	out := append([]*Concept(nil), in...)
	sort.Slice(out, func(i, j int) bool { return qname.Less(out[i].qname, out[j].qname) })
	return out
}
