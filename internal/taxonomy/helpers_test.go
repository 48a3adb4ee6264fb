package taxonomy

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	vsmeEntryPoint = "https://xbrl.efrag.org/taxonomy/vsme/2024-12-17/vsme-all.xsd"
	vsmeNS         = "https://xbrl.efrag.org/taxonomy/vsme/2024-12-17"

	roleGeneral   = "https://xbrl.efrag.org/roles/general"
	roleEmployees = "https://xbrl.efrag.org/roles/employees"
)

var quiet = WithLogger(slog.New(slog.DiscardHandler))

func readFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/vsme-mini.json")
	require.NoError(t, err)
	return data
}

func fixtureDocument(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse(readFixture(t))
	require.NoError(t, err)
	return doc
}

func fixtureTaxonomy(t *testing.T, opts ...Option) *Taxonomy {
	t.Helper()
	tax, err := New(fixtureDocument(t), append([]Option{quiet}, opts...)...)
	require.NoError(t, err)
	return tax
}

func mustConcept(t *testing.T, tax *Taxonomy, name string) *Concept {
	t.Helper()
	c, err := tax.ConceptFor(name)
	require.NoError(t, err)
	return c
}

// cubeDoc is a small dimensional taxonomy: hypercube ex:Table over primary
// item ex:Item with explicit dimension ex:Axis.
func cubeDoc(entryPoint string) *Document {
	concept := func(name string, abstract bool) ConceptData {
		return ConceptData{
			QName:        name,
			DataType:     "xbrli:stringItemType",
			BaseDataType: "xbrli:stringItemType",
			PeriodType:   "duration",
			Abstract:     abstract,
			Labels:       map[string]map[string]string{"en": {StandardLabelRole: name}},
		}
	}
	table := concept("ex:Table", true)
	table.Hypercube = true
	axis := concept("ex:Axis", true)
	axis.Dimension = true

	return &Document{
		EntryPoint: entryPoint,
		Namespaces: []NamespaceBinding{{Prefix: "ex", Namespace: "http://example.com/ex"}},
		Concepts: []ConceptData{
			table, axis,
			concept("ex:Item", false),
			concept("ex:Member", true),
		},
		Dimensions: []RoleDimensions{{
			RoleURI: "http://example.com/role/cube",
			Hypercubes: []HypercubeData{{
				QName:          "ex:Table",
				Closed:         true,
				ContextElement: "scenario",
				PrimaryItems:   []Row{{Depth: 0, QName: "ex:Item"}},
				ExplicitDimensions: []ExplicitDimensionData{
					{Dimension: "ex:Axis", Members: []string{"ex:Member"}},
				},
			}},
		}},
	}
}
