package core

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewConceptView(t *testing.T) {
	svc := loadedService(t)
	c, err := svc.LookupConcept(vsmeEntryPoint, LookupQName, "vsme:Revenue")
	if err != nil {
		t.Fatal(err)
	}

	v := NewConceptView(c, "da_DK")
	if v.Language != "da" {
		t.Errorf("Language = %q, want da", v.Language)
	}
	if v.Labels["standard"] != "Omsætning" {
		t.Errorf("standard label = %q, want Omsætning", v.Labels["standard"])
	}
	if !v.Monetary || !v.Numeric || v.Abstract {
		t.Errorf("classification = %+v", v)
	}
	if diff := cmp.Diff([]string{"iso4217:EUR"}, v.RequiredUnits); diff != "" {
		t.Errorf("RequiredUnits mismatch (-want +got):\n%s", diff)
	}
	if !slices.Contains(v.ValidUnits, "EUR") {
		t.Errorf("ValidUnits = %v, want EUR among them", v.ValidUnits)
	}
}

func TestNewDimensionsView(t *testing.T) {
	svc := loadedService(t)

	item, err := svc.LookupConcept(vsmeEntryPoint, LookupQName, "vsme:NumberOfEmployees")
	if err != nil {
		t.Fatal(err)
	}
	v := NewDimensionsView(item)
	want := DimensionsView{
		Concept:    "vsme:NumberOfEmployees",
		Container:  "scenario",
		Hypercubes: []string{"vsme:EmployeesTable"},
		ExplicitDimensions: []ExplicitDimView{{
			Dimension: "vsme:GenderAxis",
			Domain:    []string{"vsme:AllGendersMember", "vsme:FemaleMember", "vsme:MaleMember"},
			Default:   "vsme:AllGendersMember",
		}},
		TypedDimensions: []string{"vsme:SiteAxis"},
	}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Errorf("NewDimensionsView(item) mismatch (-want +got):\n%s", diff)
	}

	axis, err := svc.LookupConcept(vsmeEntryPoint, LookupQName, "vsme:GenderAxis")
	if err != nil {
		t.Fatal(err)
	}
	av := NewDimensionsView(axis)
	if av.Default != "vsme:AllGendersMember" || len(av.Domain) != 3 {
		t.Errorf("NewDimensionsView(axis) = %+v", av)
	}
}

func TestGroupAndRowViews(t *testing.T) {
	svc := loadedService(t)
	tax, err := svc.Taxonomy(vsmeEntryPoint)
	if err != nil {
		t.Fatal(err)
	}

	groups := GroupViews(tax, "")
	styles := make([]string, len(groups))
	for i, g := range groups {
		styles[i] = g.Style
	}
	if diff := cmp.Diff([]string{"list", "table", "hybrid", "empty"}, styles); diff != "" {
		t.Errorf("styles mismatch (-want +got):\n%s", diff)
	}
	if groups[0].Label != "General information" || groups[0].Definition != "[B1] General information" {
		t.Errorf("group 0 = %+v", groups[0])
	}

	rows := RowViews(tax.Presentation()[0], "en")
	if rows[0].Label != "General information" || !rows[0].Abstract {
		t.Errorf("row 0 = %+v, want suffix-free abstract label", rows[0])
	}
	if rows[1].Label != "Revenue" {
		t.Errorf("row 1 = %+v, want Revenue", rows[1])
	}
	// no period start label in any language
	if rows[3].Concept != "vsme:ReportingDate" || rows[3].Label != "vsme:ReportingDate" {
		t.Errorf("row 3 = %+v, want the QName", rows[3])
	}
}
