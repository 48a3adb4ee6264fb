package taxonomy

import (
	"regexp"
	"sort"
	"strings"

	"github.com/JonMunkholm/xbrlmap/internal/qname"
)

var bracketedRE = regexp.MustCompile(`\[([^\[\]]+)\]`)

// requiredUnits reads the measurement guidance label of a numeric concept
// as a unit id, a unit QName, bracketed unit QNames ("[iso4217:EUR]") or a
// list of bare unit ids, keeping only units valid for the data type.
func (t *Taxonomy) requiredUnits(c *Concept) []qname.QName {
	if !c.numeric || t.units == nil {
		return nil
	}
	guidance, ok := c.MeasurementGuidanceLabel(FallbackToAnyLanguage())
	guidance = strings.TrimSpace(guidance)
	if !ok || guidance == "" {
		return nil
	}

	valid := make(map[string]qname.QName)
	byLocal := make(map[string]qname.QName)
	for _, u := range t.units.UnitsForDataType(c.dataType) {
		valid[u.Expanded()] = u
		byLocal[u.Local] = u
	}
	if len(valid) == 0 {
		return nil
	}

	if u, ok := t.units.QNameForUnitID(guidance); ok {
		if v, ok := valid[u.Expanded()]; ok {
			return []qname.QName{v}
		}
	}
	if u, err := t.maker.Parse(guidance); err == nil {
		if v, ok := valid[u.Expanded()]; ok {
			return []qname.QName{v}
		}
	}

	found := make(map[string]qname.QName)
	for _, m := range bracketedRE.FindAllStringSubmatch(guidance, -1) {
		for _, s := range qname.FindAll(m[1]) {
			u, err := t.maker.Parse(s)
			if err != nil {
				continue
			}
			if v, ok := valid[u.Expanded()]; ok {
				found[v.Expanded()] = v
			}
		}
	}
	if len(found) == 0 && strings.ContainsAny(guidance, " ,/*") {
		for _, s := range qname.FindNCNames(guidance) {
			if v, ok := byLocal[s]; ok {
				found[v.Expanded()] = v
			}
		}
	}
	if len(found) == 0 {
		return nil
	}

	out := make([]qname.QName, 0, len(found))
	for _, u := range found {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return qname.Less(out[i], out[j]) })
	return out
}
