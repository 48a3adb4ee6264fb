// Package utr implements the Unit Type Registry lookups needed to attach
// units to numeric facts: which units are valid for a data type, and which
// unit a bare unit id refers to.
package utr

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/JonMunkholm/xbrlmap/internal/qname"
)

//go:embed utr.json
var defaultRegistry []byte

// StatusRecommended is the status of entries in force.
const StatusRecommended = "REC"

// Entry is one row of the registry as written by the extraction step.
type Entry struct {
	UnitID                string `json:"unitId"`
	UnitName              string `json:"unitName,omitempty"`
	NsUnit                string `json:"nsUnit"`
	ItemType              string `json:"itemType,omitempty"`
	NsItemType            string `json:"nsItemType,omitempty"`
	NumeratorItemType     string `json:"numeratorItemType,omitempty"`
	NsNumeratorItemType   string `json:"nsNumeratorItemType,omitempty"`
	DenominatorItemType   string `json:"denominatorItemType,omitempty"`
	NsDenominatorItemType string `json:"nsDenominatorItemType,omitempty"`
	Symbol                string `json:"symbol,omitempty"`
	Definition            string `json:"definition,omitempty"`
	Status                string `json:"status,omitempty"`
}

type document struct {
	UTR []Entry `json:"utr"`
}

// Registry answers unit lookups. It is immutable after construction and
// safe for concurrent use.
type Registry struct {
	byUnitID map[string]qname.QName
	// keyed by expanded names so prefixes never affect matching
	byDataType map[string]map[string]unitRef
}

type unitRef struct {
	unit qname.QName
	id   string
}

var decodeDefault = sync.OnceValues(func() ([]Entry, error) {
	return decode(defaultRegistry)
})

// Default builds a registry from the embedded unit data using m for QNames.
func Default(m *qname.Maker) (*Registry, error) {
	entries, err := decodeDefault()
	if err != nil {
		return nil, err
	}
	return New(entries, m), nil
}

// Load reads a registry file from disk.
func Load(path string, m *qname.Maker) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read unit registry %s: %w", path, err)
	}
	return Parse(data, m)
}

// Parse decodes registry JSON.
func Parse(data []byte, m *qname.Maker) (*Registry, error) {
	entries, err := decode(data)
	if err != nil {
		return nil, err
	}
	return New(entries, m), nil
}

func decode(data []byte) ([]Entry, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode unit registry: %w", err)
	}
	return doc.UTR, nil
}

// New indexes entries. Entries that are not in force are ignored; entries
// without an item type only contribute to unit id lookups.
func New(entries []Entry, m *qname.Maker) *Registry {
	r := &Registry{
		byUnitID:   make(map[string]qname.QName),
		byDataType: make(map[string]map[string]unitRef),
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UnitID < sorted[j].UnitID
	})

	for _, e := range sorted {
		if e.Status != "" && e.Status != StatusRecommended {
			continue
		}
		if e.UnitID == "" || e.NsUnit == "" {
			continue
		}
		unit := m.New(e.NsUnit, e.UnitID)
		if _, ok := r.byUnitID[e.UnitID]; !ok {
			r.byUnitID[e.UnitID] = unit
		}
		if e.ItemType == "" || e.NsItemType == "" {
			continue
		}
		dataType := m.New(e.NsItemType, e.ItemType).Expanded()
		units, ok := r.byDataType[dataType]
		if !ok {
			units = make(map[string]unitRef)
			r.byDataType[dataType] = units
		}
		units[unit.Expanded()] = unitRef{unit: unit, id: e.UnitID}
	}
	return r
}

// QNameForUnitID returns the unit QName registered under id.
func (r *Registry) QNameForUnitID(id string) (qname.QName, bool) {
	q, ok := r.byUnitID[id]
	return q, ok
}

// UnitsForDataType returns the units valid for dataType, sorted.
func (r *Registry) UnitsForDataType(dataType qname.QName) []qname.QName {
	units := r.byDataType[dataType.Expanded()]
	out := make([]qname.QName, 0, len(units))
	for _, ref := range units {
		out = append(out, ref.unit)
	}
	sort.Slice(out, func(i, j int) bool { return qname.Less(out[i], out[j]) })
	return out
}

// UnitIDsForDataType returns the unit ids valid for dataType, sorted.
func (r *Registry) UnitIDsForDataType(dataType qname.QName) []string {
	units := r.byDataType[dataType.Expanded()]
	out := make([]string, 0, len(units))
	for _, ref := range units {
		out = append(out, ref.id)
	}
	sort.Strings(out)
	return out
}

// Valid reports whether unit may be used with dataType.
func (r *Registry) Valid(dataType, unit qname.QName) bool {
	_, ok := r.byDataType[dataType.Expanded()][unit.Expanded()]
	return ok
}

// Len returns the number of distinct unit ids.
func (r *Registry) Len() int {
	return len(r.byUnitID)
}
