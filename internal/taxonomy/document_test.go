package taxonomy

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Fixture(t *testing.T) {
	doc := fixtureDocument(t)

	assert.Equal(t, vsmeEntryPoint, doc.EntryPoint)
	assert.Equal(t, NamespaceBinding{Prefix: "vsme", Namespace: vsmeNS}, doc.Namespaces[0])

	// key order survives decoding
	assert.Equal(t, "vsme:GeneralInformationAbstract", doc.Concepts[0].QName)
	roles := make([]string, len(doc.Presentation))
	for i, p := range doc.Presentation {
		roles[i] = p.RoleURI
	}
	want := []string{
		roleGeneral,
		roleEmployees,
		"https://xbrl.efrag.org/roles/mixed",
		"https://xbrl.efrag.org/roles/members",
	}
	if diff := cmp.Diff(want, roles); diff != "" {
		t.Errorf("presentation roles (-want +got):\n%s", diff)
	}

	general := doc.Presentation[0]
	assert.Equal(t, "[B1] General information", general.Definition)
	assert.Equal(t, Row{Depth: 1, QName: "vsme:ReportingDate", PreferredLabel: PeriodStartLabelRole}, general.Rows[3])

	require.Len(t, doc.Dimensions, 1)
	cube := doc.Dimensions[0].Hypercubes[0]
	assert.Equal(t, "vsme:EmployeesTable", cube.QName)
	assert.True(t, cube.Closed)
	assert.Equal(t, "scenario", cube.ContextElement)
	assert.Equal(t, []string{"vsme:SiteAxis"}, cube.TypedDimensions)
	assert.Equal(t, []DimensionDefault{{Dimension: "vsme:GenderAxis", Member: "vsme:AllGendersMember"}}, doc.DimensionDefaults)
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "missing period type",
			doc: `{"entryPoint": "e", "namespaces": {}, "concepts": {
				"xbrli:X": {"dataType": "xbrli:stringItemType", "baseDataType": "xbrli:stringItemType"}}}`,
		},
		{
			name: "bad period type",
			doc: `{"entryPoint": "e", "namespaces": {}, "concepts": {
				"xbrli:X": {"dataType": "xbrli:stringItemType", "baseDataType": "xbrli:stringItemType", "periodType": "forever"}}}`,
		},
		{
			name: "missing entry point",
			doc:  `{"namespaces": {}, "concepts": {}}`,
		},
		{
			name: "row too long",
			doc: `{"entryPoint": "e", "namespaces": {}, "concepts": {},
				"presentation": {"r": {"definition": "", "rows": [[0, "a:b", null, "extra"]]}}}`,
		},
		{
			name: "bad context element",
			doc: `{"entryPoint": "e", "namespaces": {}, "concepts": {},
				"dimensions": {"r": {"a:T": {"xbrldt:closed": true, "xbrldt:contextElement": "header"}}}}`,
		},
		{
			name: "not json",
			doc:  `{"entryPoint": `,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTaxonomy)
		})
	}
}

func TestParse_DuplicateRoleIsFatal(t *testing.T) {
	doc := `{"entryPoint": "e", "namespaces": {}, "concepts": {},
		"presentation": {
			"http://example.com/role": {"definition": "a", "rows": []},
			"http://example.com/role": {"definition": "b", "rows": []}
		}}`

	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTaxonomy)
	assert.Contains(t, err.Error(), "http://example.com/role")
}

func TestParse_DuplicateConceptIsFatal(t *testing.T) {
	doc := `{"entryPoint": "e", "namespaces": {}, "concepts": {
		"xbrli:X": {"dataType": "xbrli:stringItemType", "baseDataType": "xbrli:stringItemType", "periodType": "instant"},
		"xbrli:X": {"dataType": "xbrli:stringItemType", "baseDataType": "xbrli:stringItemType", "periodType": "instant"}}}`

	_, err := Parse([]byte(doc))
	assert.ErrorIs(t, err, ErrTaxonomy)
}

func TestRow_JSON(t *testing.T) {
	var rows []Row
	require.NoError(t, json.Unmarshal([]byte(`[[0, "a:b"], [2, "a:c", "role"], [1, "a:d", null]]`), &rows))
	assert.Equal(t, []Row{
		{Depth: 0, QName: "a:b"},
		{Depth: 2, QName: "a:c", PreferredLabel: "role"},
		{Depth: 1, QName: "a:d"},
	}, rows)

	var r Row
	assert.Error(t, json.Unmarshal([]byte(`[0]`), &r))
	assert.Error(t, json.Unmarshal([]byte(`["0", "a:b"]`), &r))

	out, err := json.Marshal(rows[1])
	require.NoError(t, err)
	assert.JSONEq(t, `[2, "a:c", "role"]`, string(out))
}
