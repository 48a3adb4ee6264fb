package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(cs []*Concept) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

func TestTaxonomy_DimensionsForPrimaryItem(t *testing.T) {
	tax := fixtureTaxonomy(t)
	employees := mustConcept(t, tax, "vsme:NumberOfEmployees")

	assert.Equal(t, []string{"vsme:EmployeesTable"}, names(tax.HypercubesForPrimaryItem(employees)))
	assert.Equal(t, []string{"vsme:GenderAxis"}, names(tax.ExplicitDimensionsForPrimaryItem(employees)))
	assert.Equal(t, []string{"vsme:SiteAxis"}, names(tax.TypedDimensionsForPrimaryItem(employees)))
	assert.Equal(t, []string{"vsme:GenderAxis", "vsme:SiteAxis"}, names(tax.DimensionsForPrimaryItem(employees)))
	assert.False(t, tax.HasOpenHypercube(employees))

	revenue := mustConcept(t, tax, "vsme:Revenue")
	assert.Empty(t, tax.DimensionsForPrimaryItem(revenue))
	assert.Empty(t, tax.HypercubesForPrimaryItem(revenue))
}

func TestTaxonomy_DomainMemberRoundTrip(t *testing.T) {
	tax := fixtureTaxonomy(t)
	item := mustConcept(t, tax, "vsme:NumberOfEmployees")
	axis := mustConcept(t, tax, "vsme:GenderAxis")

	for _, m := range []string{"vsme:AllGendersMember", "vsme:MaleMember", "vsme:FemaleMember"} {
		member := mustConcept(t, tax, m)
		dim, err := tax.ExplicitDimensionForDomainMember(item, member)
		require.NoError(t, err)
		assert.Same(t, axis, dim, m)
		assert.Contains(t, tax.DomainMembersForExplicitDimension(axis), member)
	}

	assert.Equal(t,
		[]string{"vsme:AllGendersMember", "vsme:FemaleMember", "vsme:MaleMember"},
		names(tax.DomainMembersForExplicitDimension(axis)))

	dim, err := tax.ExplicitDimensionForDomainMember(mustConcept(t, tax, "vsme:Revenue"), mustConcept(t, tax, "vsme:MaleMember"))
	require.NoError(t, err)
	assert.Nil(t, dim)

	dim, err = tax.ExplicitDimensionForDomainMember(item, mustConcept(t, tax, "vsme:BasisIndividualMember"))
	require.NoError(t, err)
	assert.Nil(t, dim)
}

func TestTaxonomy_DomainMemberOnTwoDimensionsIsAmbiguous(t *testing.T) {
	doc := cubeDoc("http://example.com/ep")
	other := doc.Concepts[1]
	other.QName = "ex:OtherAxis"
	doc.Concepts = append(doc.Concepts, other)
	cube := &doc.Dimensions[0].Hypercubes[0]
	cube.ExplicitDimensions = append(cube.ExplicitDimensions,
		ExplicitDimensionData{Dimension: "ex:OtherAxis", Members: []string{"ex:Member"}})

	tax, err := New(doc, quiet)
	require.NoError(t, err)

	dim, err := tax.ExplicitDimensionForDomainMember(mustConcept(t, tax, "ex:Item"), mustConcept(t, tax, "ex:Member"))
	assert.Nil(t, dim)
	var amb *AmbiguousError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, "domain member", amb.Kind)
	assert.Len(t, amb.Candidates, 2)
}

func TestTaxonomy_HypercubeAggregatesAcrossBaseSets(t *testing.T) {
	doc := cubeDoc("http://example.com/ep")
	typed := doc.Concepts[1]
	typed.QName = "ex:TypedAxis"
	typed.Other.TypedElement = "ex:Code"
	second := ConceptData{
		QName: "ex:Second", DataType: "xbrli:stringItemType", BaseDataType: "xbrli:stringItemType", PeriodType: "instant",
	}
	doc.Concepts = append(doc.Concepts, typed, second)
	doc.Dimensions = append(doc.Dimensions, RoleDimensions{
		RoleURI: "http://example.com/role/extended",
		Hypercubes: []HypercubeData{{
			QName:           "ex:Table",
			Closed:          true,
			ContextElement:  "scenario",
			PrimaryItems:    []Row{{Depth: 0, QName: "ex:Second"}},
			TypedDimensions: []string{"ex:TypedAxis"},
		}},
	})

	tax, err := New(doc, quiet)
	require.NoError(t, err)
	table := mustConcept(t, tax, "ex:Table")

	assert.Len(t, tax.BaseSets(), 2)
	assert.Len(t, tax.HypercubeDefinitions(table), 2)
	assert.Equal(t, []string{"ex:Axis", "ex:TypedAxis"}, names(tax.DimensionsForHypercube(table)))
	assert.Equal(t, []string{"ex:Axis"}, names(tax.ExplicitDimensionsForHypercube(table)))
	assert.Equal(t, []string{"ex:TypedAxis"}, names(tax.TypedDimensionsForHypercube(table)))
	assert.Equal(t, []string{"ex:Item", "ex:Second"}, names(tax.PrimaryItemsForHypercube(table)))

	// each primary item sees the hypercube's dimensions from every base set
	for _, item := range []string{"ex:Item", "ex:Second"} {
		assert.Equal(t, []string{"ex:Axis", "ex:TypedAxis"}, names(tax.DimensionsForPrimaryItem(mustConcept(t, tax, item))), item)
	}
}

func TestTaxonomy_Defaults(t *testing.T) {
	tax := fixtureTaxonomy(t)
	axis := mustConcept(t, tax, "vsme:GenderAxis")

	member, ok := tax.DimensionDefault(axis)
	require.True(t, ok)
	assert.Equal(t, "vsme:AllGendersMember", member.String())

	_, ok = tax.DimensionDefault(mustConcept(t, tax, "vsme:SiteAxis"))
	assert.False(t, ok)

	assert.Equal(t, []string{"vsme:GenderAxis"}, names(tax.DefaultedDimensions()))
}

func TestTaxonomy_Hypercubes(t *testing.T) {
	tax := fixtureTaxonomy(t)

	assert.Equal(t, []string{"vsme:EmployeesTable"}, names(tax.Hypercubes()))
	assert.Empty(t, tax.EmptyHypercubes())
	assert.Equal(t, ContainerScenario, tax.DimensionContainer())

	sets := tax.BaseSets()
	require.Len(t, sets, 1)
	assert.Equal(t, roleEmployees, sets[0].RoleURI)
	assert.Equal(t, []string{"vsme:EmployeesTable"}, names(sets[0].Hypercubes))

	defs := tax.HypercubeDefinitions(sets[0].Hypercubes[0])
	require.Len(t, defs, 1)
	assert.True(t, defs[0].Closed)
	assert.Equal(t, ContainerScenario, defs[0].Container)
	require.Len(t, defs[0].ExplicitDimensions, 1)
	assert.Equal(t, []string{"vsme:AllGendersMember", "vsme:MaleMember", "vsme:FemaleMember"},
		names(defs[0].ExplicitDimensions[0].Members))
}

func TestTaxonomy_EmptyHypercube(t *testing.T) {
	doc := cubeDoc("http://example.com/ep")
	unused := doc.Concepts[0]
	unused.QName = "ex:UnusedTable"
	doc.Concepts = append(doc.Concepts, unused)

	tax, err := New(doc, quiet)
	require.NoError(t, err)
	assert.Equal(t, []string{"ex:UnusedTable"}, names(tax.EmptyHypercubes()))
	assert.Equal(t, []string{"ex:Table"}, names(tax.Hypercubes()))
}

func TestTaxonomy_HypercubeWithoutDimensionsIsStillUsed(t *testing.T) {
	doc := cubeDoc("http://example.com/ep")
	doc.Dimensions[0].Hypercubes[0].ExplicitDimensions = nil

	tax, err := New(doc, quiet)
	require.NoError(t, err)
	assert.Empty(t, tax.EmptyHypercubes())
	assert.Equal(t, []string{"ex:Table"}, names(tax.Hypercubes()))
	assert.Empty(t, tax.DimensionsForPrimaryItem(mustConcept(t, tax, "ex:Item")))
}

func TestTaxonomy_QueryResultsAreCopies(t *testing.T) {
	tax := fixtureTaxonomy(t)
	item := mustConcept(t, tax, "vsme:NumberOfEmployees")

	dims := tax.DimensionsForPrimaryItem(item)
	dims[0] = nil
	assert.NotNil(t, tax.DimensionsForPrimaryItem(item)[0])
}
