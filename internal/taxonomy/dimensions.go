package taxonomy

import (
	"log/slog"
	"sort"
	"strings"
)

// DimensionContainer is the context element dimensions are reported in.
type DimensionContainer string

const (
	ContainerSegment  DimensionContainer = "segment"
	ContainerScenario DimensionContainer = "scenario"
)

// BaseSet identifies one dimensional structure: the hypercubes defined in
// one extended link role.
type BaseSet struct {
	RoleURI    string
	Hypercubes []*Concept // sorted
}

func (b *BaseSet) String() string {
	names := make([]string, len(b.Hypercubes))
	for i, h := range b.Hypercubes {
		names[i] = h.String()
	}
	return b.RoleURI + " [" + strings.Join(names, " ") + "]"
}

// HypercubeDefinition is one hypercube as defined in one base set.
type HypercubeDefinition struct {
	RoleURI            string
	Hypercube          *Concept
	Closed             bool
	Container          DimensionContainer
	PrimaryItems       []Relationship
	ExplicitDimensions []ExplicitDimension
	TypedDimensions    []*Concept
}

// ExplicitDimension is an explicit dimension with the members a
// hypercube definition allows, in declaration order.
type ExplicitDimension struct {
	Dimension *Concept
	Members   []*Concept

	allowed map[*Concept]struct{}
}

// Allows reports whether member is in the domain.
func (e ExplicitDimension) Allows(member *Concept) bool {
	_, ok := e.allowed[member]
	return ok
}

type conceptSet map[*Concept]struct{}

func (s conceptSet) add(cs ...*Concept) {
	for _, c := range cs {
		s[c] = struct{}{}
	}
}

func (s conceptSet) sorted() []*Concept {
	out := make([]*Concept, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	return sortedConcepts(out)
}

// hypercubeView aggregates every definition of one hypercube.
type hypercubeView struct {
	definitions  []*HypercubeDefinition
	explicit     []*Concept
	typed        []*Concept
	all          []*Concept
	primaryItems []*Concept
}

// itemView aggregates the dimensional structure around one primary item.
type itemView struct {
	baseSets   []*BaseSet
	hypercubes []*Concept
	explicit   []*Concept
	typed      []*Concept
	all        []*Concept
	open       bool
}

// dimensions holds the dimensional model. Everything is derived at
// construction; queries only read.
type dimensions struct {
	baseSets       []*BaseSet
	definitions    map[*BaseSet][]*HypercubeDefinition
	defaults       map[*Concept]*Concept
	container      DimensionContainer
	openHypercubes []OpenHypercube

	hypercubes      []*Concept
	emptyHypercubes []*Concept
	defaulted       []*Concept
	cubeViews       map[*Concept]*hypercubeView
	itemViews       map[*Concept]*itemView
	domains         map[*Concept][]*Concept
}

func (t *Taxonomy) buildDimensions(doc *Document, logger *slog.Logger, rejectOpen bool) error {
	t.dimensions = dimensions{
		definitions: make(map[*BaseSet][]*HypercubeDefinition),
		defaults:    make(map[*Concept]*Concept, len(doc.DimensionDefaults)),
	}

	for _, d := range doc.DimensionDefaults {
		dim, err := t.ConceptFor(d.Dimension)
		if err != nil {
			return taxonomyErrorf("dimension default %s: %v", d.Dimension, err)
		}
		member, err := t.ConceptFor(d.Member)
		if err != nil {
			return taxonomyErrorf("dimension default %s: member %s: %v", d.Dimension, d.Member, err)
		}
		t.defaults[dim] = member
	}

	containers := make(map[DimensionContainer]struct{})
	for _, role := range doc.Dimensions {
		if len(role.Hypercubes) == 0 {
			continue
		}
		cubes := make(conceptSet, len(role.Hypercubes))
		defs := make([]*HypercubeDefinition, 0, len(role.Hypercubes))
		for _, h := range role.Hypercubes {
			def, err := t.hypercubeDefinition(role.RoleURI, h)
			if err != nil {
				return err
			}
			if _, dup := cubes[def.Hypercube]; dup {
				return taxonomyErrorf("role %s defines hypercube %s more than once", role.RoleURI, def.Hypercube)
			}
			cubes.add(def.Hypercube)
			defs = append(defs, def)
			containers[def.Container] = struct{}{}
			if !def.Closed {
				t.openHypercubes = append(t.openHypercubes, OpenHypercube{RoleURI: role.RoleURI, Hypercube: def.Hypercube})
			}
		}
		bs := &BaseSet{RoleURI: role.RoleURI, Hypercubes: cubes.sorted()}
		t.baseSets = append(t.baseSets, bs)
		t.definitions[bs] = defs
	}

	switch len(containers) {
	case 0:
		t.container = ContainerScenario
	case 1:
		for c := range containers {
			t.container = c
		}
	default:
		seen := make([]string, 0, len(containers))
		for c := range containers {
			seen = append(seen, string(c))
		}
		sort.Strings(seen)
		return taxonomyErrorf("base sets use more than one dimension container: %s",
			strings.Join(seen, ", "))
	}

	if len(t.openHypercubes) > 0 {
		open := make([]string, len(t.openHypercubes))
		for i, o := range t.openHypercubes {
			open[i] = o.Hypercube.String() + " in " + o.RoleURI
		}
		if rejectOpen {
			return taxonomyErrorf("open hypercubes are not supported: %s", strings.Join(open, ", "))
		}
		logger.Warn("taxonomy has open hypercubes; their dimension lists are not exhaustive",
			"hypercubes", open)
	}

	sort.SliceStable(t.baseSets, func(i, j int) bool {
		return t.baseSets[i].String() < t.baseSets[j].String()
	})
	t.deriveDimensionViews()
	return nil
}

func (t *Taxonomy) hypercubeDefinition(role string, h HypercubeData) (*HypercubeDefinition, error) {
	hc, err := t.ConceptFor(h.QName)
	if err != nil {
		return nil, taxonomyErrorf("dimensions %s: hypercube %s: %v", role, h.QName, err)
	}
	if !hc.IsHypercube() {
		return nil, taxonomyErrorf("dimensions %s: %s is not a hypercube", role, hc)
	}

	def := &HypercubeDefinition{
		RoleURI:   role,
		Hypercube: hc,
		Closed:    h.Closed,
		Container: DimensionContainer(h.ContextElement),
	}
	switch def.Container {
	case ContainerSegment, ContainerScenario:
	default:
		return nil, taxonomyErrorf("dimensions %s: hypercube %s has invalid context element %q", role, hc, h.ContextElement)
	}

	if def.PrimaryItems, err = t.relationships(role, h.PrimaryItems); err != nil {
		return nil, taxonomyErrorf("dimensions %s: hypercube %s primary items: %v", role, hc, err)
	}

	for _, ed := range h.ExplicitDimensions {
		dim, err := t.ConceptFor(ed.Dimension)
		if err != nil {
			return nil, taxonomyErrorf("dimensions %s: explicit dimension %s: %v", role, ed.Dimension, err)
		}
		e := ExplicitDimension{Dimension: dim, allowed: make(map[*Concept]struct{}, len(ed.Members))}
		for _, s := range ed.Members {
			m, err := t.ConceptFor(s)
			if err != nil {
				return nil, taxonomyErrorf("dimensions %s: member %s of %s: %v", role, s, dim, err)
			}
			if _, dup := e.allowed[m]; dup {
				continue
			}
			e.allowed[m] = struct{}{}
			e.Members = append(e.Members, m)
		}
		def.ExplicitDimensions = append(def.ExplicitDimensions, e)
	}

	for _, s := range h.TypedDimensions {
		dim, err := t.ConceptFor(s)
		if err != nil {
			return nil, taxonomyErrorf("dimensions %s: typed dimension %s: %v", role, s, err)
		}
		def.TypedDimensions = append(def.TypedDimensions, dim)
	}
	return def, nil
}

func (t *Taxonomy) deriveDimensionViews() {
	cubeViews := make(map[*Concept]*hypercubeView)
	itemBaseSets := make(map[*Concept][]*BaseSet)
	itemOpen := make(map[*Concept]bool)
	domains := make(map[*Concept]conceptSet)

	for _, bs := range t.baseSets {
		for _, def := range t.definitions[bs] {
			v, ok := cubeViews[def.Hypercube]
			if !ok {
				v = &hypercubeView{}
				cubeViews[def.Hypercube] = v
			}
			v.definitions = append(v.definitions, def)

			for _, r := range def.PrimaryItems {
				sets := itemBaseSets[r.Concept]
				if len(sets) == 0 || sets[len(sets)-1] != bs {
					itemBaseSets[r.Concept] = append(sets, bs)
				}
				if !def.Closed {
					itemOpen[r.Concept] = true
				}
			}
			for _, e := range def.ExplicitDimensions {
				d, ok := domains[e.Dimension]
				if !ok {
					d = make(conceptSet)
					domains[e.Dimension] = d
				}
				d.add(e.Members...)
			}
		}
	}

	t.cubeViews = make(map[*Concept]*hypercubeView, len(cubeViews))
	for hc, v := range cubeViews {
		explicit, typed, items := make(conceptSet), make(conceptSet), make(conceptSet)
		for _, def := range v.definitions {
			for _, e := range def.ExplicitDimensions {
				explicit.add(e.Dimension)
			}
			typed.add(def.TypedDimensions...)
			for _, r := range def.PrimaryItems {
				items.add(r.Concept)
			}
		}
		v.explicit = explicit.sorted()
		v.typed = typed.sorted()
		v.all = sortedConcepts(append(append([]*Concept(nil), v.explicit...), v.typed...))
		v.primaryItems = items.sorted()
		t.cubeViews[hc] = v

		t.hypercubes = append(t.hypercubes, hc)
	}
	t.hypercubes = sortedConcepts(t.hypercubes)

	// conceptList is already sorted.
	t.emptyHypercubes = nil
	for _, c := range t.conceptList {
		if _, used := t.cubeViews[c]; c.IsHypercube() && !used {
			t.emptyHypercubes = append(t.emptyHypercubes, c)
		}
	}

	t.itemViews = make(map[*Concept]*itemView, len(itemBaseSets))
	for item, sets := range itemBaseSets {
		cubes, explicit, typed := make(conceptSet), make(conceptSet), make(conceptSet)
		for _, bs := range sets {
			cubes.add(bs.Hypercubes...)
		}
		for hc := range cubes {
			if v, ok := t.cubeViews[hc]; ok {
				explicit.add(v.explicit...)
				typed.add(v.typed...)
			}
		}
		v := &itemView{
			baseSets:   sets,
			hypercubes: cubes.sorted(),
			explicit:   explicit.sorted(),
			typed:      typed.sorted(),
			open:       itemOpen[item],
		}
		v.all = sortedConcepts(append(append([]*Concept(nil), v.explicit...), v.typed...))
		t.itemViews[item] = v
	}

	t.domains = make(map[*Concept][]*Concept, len(domains))
	for dim, members := range domains {
		t.domains[dim] = members.sorted()
	}

	for dim := range t.defaults {
		t.defaulted = append(t.defaulted, dim)
	}
	t.defaulted = sortedConcepts(t.defaulted)
}

func clone(cs []*Concept) []*Concept {
	if len(cs) == 0 {
		return nil
	}
	return append([]*Concept(nil), cs...)
}

// BaseSets returns every base set, sorted.
func (t *Taxonomy) BaseSets() []*BaseSet {
	return append([]*BaseSet(nil), t.baseSets...)
}

// Hypercubes returns every hypercube used in a base set.
func (t *Taxonomy) Hypercubes() []*Concept { return clone(t.hypercubes) }

// EmptyHypercubes returns hypercube concepts that no base set uses.
func (t *Taxonomy) EmptyHypercubes() []*Concept { return clone(t.emptyHypercubes) }

// HypercubeDefinitions returns every definition of hc, in base set order.
func (t *Taxonomy) HypercubeDefinitions(hc *Concept) []*HypercubeDefinition {
	v, ok := t.cubeViews[hc]
	if !ok {
		return nil
	}
	return append([]*HypercubeDefinition(nil), v.definitions...)
}

// DimensionsForHypercube returns the explicit and typed dimensions of hc
// across all of its definitions.
func (t *Taxonomy) DimensionsForHypercube(hc *Concept) []*Concept {
	if v, ok := t.cubeViews[hc]; ok {
		return clone(v.all)
	}
	return nil
}

func (t *Taxonomy) ExplicitDimensionsForHypercube(hc *Concept) []*Concept {
	if v, ok := t.cubeViews[hc]; ok {
		return clone(v.explicit)
	}
	return nil
}

func (t *Taxonomy) TypedDimensionsForHypercube(hc *Concept) []*Concept {
	if v, ok := t.cubeViews[hc]; ok {
		return clone(v.typed)
	}
	return nil
}

func (t *Taxonomy) PrimaryItemsForHypercube(hc *Concept) []*Concept {
	if v, ok := t.cubeViews[hc]; ok {
		return clone(v.primaryItems)
	}
	return nil
}

// HypercubesForPrimaryItem returns the hypercubes of every base set item
// is a primary item of.
func (t *Taxonomy) HypercubesForPrimaryItem(item *Concept) []*Concept {
	if v, ok := t.itemViews[item]; ok {
		return clone(v.hypercubes)
	}
	return nil
}

// DimensionsForPrimaryItem returns every dimension a fact about item may
// carry.
func (t *Taxonomy) DimensionsForPrimaryItem(item *Concept) []*Concept {
	if v, ok := t.itemViews[item]; ok {
		return clone(v.all)
	}
	return nil
}

func (t *Taxonomy) ExplicitDimensionsForPrimaryItem(item *Concept) []*Concept {
	if v, ok := t.itemViews[item]; ok {
		return clone(v.explicit)
	}
	return nil
}

func (t *Taxonomy) TypedDimensionsForPrimaryItem(item *Concept) []*Concept {
	if v, ok := t.itemViews[item]; ok {
		return clone(v.typed)
	}
	return nil
}

// ExplicitDimensionForDomainMember returns the explicit dimension whose
// domain contains member in some base set of item. It returns nil without
// error when there is none and an *AmbiguousError when several dimensions
// allow the member.
func (t *Taxonomy) ExplicitDimensionForDomainMember(item, member *Concept) (*Concept, error) {
	v, ok := t.itemViews[item]
	if !ok || member == nil {
		return nil, nil
	}
	found := make(conceptSet)
	for _, bs := range v.baseSets {
		for _, def := range t.definitions[bs] {
			for _, e := range def.ExplicitDimensions {
				if e.Allows(member) {
					found.add(e.Dimension)
				}
			}
		}
	}
	return pick("domain member", member.String(), found.sorted())
}

// DomainMembersForExplicitDimension returns the members dim allows in any
// base set.
func (t *Taxonomy) DomainMembersForExplicitDimension(dim *Concept) []*Concept {
	return clone(t.domains[dim])
}

// DimensionDefault returns the default member of dim.
func (t *Taxonomy) DimensionDefault(dim *Concept) (*Concept, bool) {
	m, ok := t.defaults[dim]
	return m, ok
}

// DefaultedDimensions returns the dimensions that have a default member.
func (t *Taxonomy) DefaultedDimensions() []*Concept { return clone(t.defaulted) }

// DimensionContainer returns the context element every base set uses.
func (t *Taxonomy) DimensionContainer() DimensionContainer { return t.container }

// OpenHypercubes returns the hypercubes declared open.
func (t *Taxonomy) OpenHypercubes() []OpenHypercube {
	return append([]OpenHypercube(nil), t.openHypercubes...)
}

// HasOpenHypercube reports whether item is a primary item of an open
// hypercube, in which case its declared dimensions are not exhaustive.
func (t *Taxonomy) HasOpenHypercube(item *Concept) bool {
	v, ok := t.itemViews[item]
	return ok && v.open
}
