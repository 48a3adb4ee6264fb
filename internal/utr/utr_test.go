package utr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/xbrlmap/internal/qname"
)

const dtrTypes = "http://www.xbrl.org/dtr/type/2022-03-31"

func TestDefault(t *testing.T) {
	m := qname.NewMaker()
	require.NoError(t, m.AddNamespacePrefix("dtr-types", dtrTypes))

	r, err := Default(m)
	require.NoError(t, err)

	monetary := m.New(qname.XBRLI, "monetaryItemType")
	eur, ok := r.QNameForUnitID("EUR")
	require.True(t, ok)
	assert.Equal(t, "iso4217:EUR", eur.String())
	assert.True(t, r.Valid(monetary, eur))

	energy := m.New(dtrTypes, "energyItemType")
	assert.Equal(t, []string{"GJ", "GWh", "MWh", "Wh", "kWh"}, r.UnitIDsForDataType(energy))

	mwh, ok := r.QNameForUnitID("MWh")
	require.True(t, ok)
	assert.False(t, r.Valid(monetary, mwh))
	assert.True(t, r.Valid(energy, mwh))
}

func TestNew_SkipsEntriesNotInForce(t *testing.T) {
	m := qname.NewMaker()
	pureType := m.New(qname.XBRLI, "pureItemType")

	r := New([]Entry{
		{UnitID: "pure", NsUnit: qname.XBRLI, ItemType: "pureItemType", NsItemType: qname.XBRLI, Status: "REC"},
		{UnitID: "FTE", NsUnit: qname.UTR, ItemType: "pureItemType", NsItemType: qname.XBRLI, Status: "DEP"},
	}, m)

	_, ok := r.QNameForUnitID("FTE")
	assert.False(t, ok)
	assert.Equal(t, []string{"pure"}, r.UnitIDsForDataType(pureType))
	assert.Equal(t, 1, r.Len())
}

func TestValid_IgnoresPrefixes(t *testing.T) {
	m := qname.NewMaker()
	r := New([]Entry{
		{UnitID: "EUR", NsUnit: qname.ISO4217, ItemType: "monetaryItemType", NsItemType: qname.XBRLI},
	}, m)

	dataType := qname.QName{Namespace: qname.XBRLI, Local: "monetaryItemType", Prefix: "x"}
	unit := qname.QName{Namespace: qname.ISO4217, Local: "EUR", Prefix: "cur"}
	assert.True(t, r.Valid(dataType, unit))
	assert.Len(t, r.UnitsForDataType(dataType), 1)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{"utr": [`), qname.NewMaker())
	assert.Error(t, err)
}
