package taxonomy

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed document.schema.json
var documentSchema []byte

const defaultsKey = "_defaults"

// Document is a decoded taxonomy document. Slices keep the key order of the
// JSON objects they were decoded from; presentation order is meaningful.
type Document struct {
	EntryPoint        string
	Namespaces        []NamespaceBinding
	Concepts          []ConceptData
	Presentation      []PresentationData
	Dimensions        []RoleDimensions
	DimensionDefaults []DimensionDefault
}

type NamespaceBinding struct {
	Prefix    string
	Namespace string
}

// ConceptData holds the raw attributes of one concept.
type ConceptData struct {
	QName        string                       `json:"-"`
	DataType     string                       `json:"dataType"`
	BaseDataType string                       `json:"baseDataType"`
	PeriodType   string                       `json:"periodType"`
	Abstract     bool                         `json:"abstract,omitempty"`
	Dimension    bool                         `json:"dimension,omitempty"`
	Hypercube    bool                         `json:"hypercube,omitempty"`
	Nillable     bool                         `json:"nillable,omitempty"`
	Numeric      bool                         `json:"numeric,omitempty"`
	Labels       map[string]map[string]string `json:"labels,omitempty"`
	Other        ConceptOther                 `json:"other"`
}

type ConceptOther struct {
	TypedElement      string   `json:"typedElement,omitempty"`
	EnumerationDomain []string `json:"ee20DomainMembers,omitempty"`
}

// PresentationData is one presentation network (extended link role).
type PresentationData struct {
	RoleURI    string            `json:"-"`
	Definition string            `json:"definition"`
	Labels     map[string]string `json:"labels,omitempty"`
	Rows       []Row             `json:"rows"`
}

// Row is one [depth, qname] or [depth, qname, preferredLabel] tree row.
type Row struct {
	Depth          int
	QName          string
	PreferredLabel string
}

// RoleDimensions holds the hypercubes defined in one extended link role.
type RoleDimensions struct {
	RoleURI    string
	Hypercubes []HypercubeData
}

type HypercubeData struct {
	QName              string
	Closed             bool
	ContextElement     string
	PrimaryItems       []Row
	ExplicitDimensions []ExplicitDimensionData
	TypedDimensions    []string
}

type ExplicitDimensionData struct {
	Dimension string
	Members   []string
}

type DimensionDefault struct {
	Dimension string
	Member    string
}

var compileSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(documentSchema))
})

// ReadFile reads and parses a taxonomy document from disk.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse validates data against the document schema and decodes it.
func Parse(data []byte) (*Document, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var top struct {
		EntryPoint   string          `json:"entryPoint"`
		Namespaces   json.RawMessage `json:"namespaces"`
		Concepts     json.RawMessage `json:"concepts"`
		Presentation json.RawMessage `json:"presentation"`
		Dimensions   json.RawMessage `json:"dimensions"`
	}
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, taxonomyErrorf("decode document: %v", err)
	}

	doc := &Document{EntryPoint: top.EntryPoint}

	err := eachMember(top.Namespaces, "namespace prefix", func(prefix string, raw json.RawMessage) error {
		var ns string
		if err := json.Unmarshal(raw, &ns); err != nil {
			return err
		}
		doc.Namespaces = append(doc.Namespaces, NamespaceBinding{Prefix: prefix, Namespace: ns})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachMember(top.Concepts, "concept", func(name string, raw json.RawMessage) error {
		c := ConceptData{QName: name}
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("concept %s: %w", name, err)
		}
		doc.Concepts = append(doc.Concepts, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachMember(top.Presentation, "presentation role", func(role string, raw json.RawMessage) error {
		p := PresentationData{RoleURI: role}
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("presentation %s: %w", role, err)
		}
		p.Definition = strings.TrimSpace(p.Definition)
		doc.Presentation = append(doc.Presentation, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachMember(top.Dimensions, "dimension role", func(role string, raw json.RawMessage) error {
		if role == defaultsKey {
			return eachMember(raw, "dimension default", func(dim string, raw json.RawMessage) error {
				var member string
				if err := json.Unmarshal(raw, &member); err != nil {
					return fmt.Errorf("default for %s: %w", dim, err)
				}
				doc.DimensionDefaults = append(doc.DimensionDefaults, DimensionDefault{Dimension: dim, Member: member})
				return nil
			})
		}
		rd := RoleDimensions{RoleURI: role}
		err := eachMember(raw, "hypercube in role "+role, func(hc string, raw json.RawMessage) error {
			h, err := decodeHypercube(hc, raw)
			if err != nil {
				return fmt.Errorf("dimensions %s: %w", role, err)
			}
			rd.Hypercubes = append(rd.Hypercubes, h)
			return nil
		})
		if err != nil {
			return err
		}
		doc.Dimensions = append(doc.Dimensions, rd)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func decodeHypercube(name string, raw json.RawMessage) (HypercubeData, error) {
	var h struct {
		Closed             bool            `json:"xbrldt:closed"`
		ContextElement     string          `json:"xbrldt:contextElement"`
		PrimaryItems       []Row           `json:"primaryItems"`
		ExplicitDimensions json.RawMessage `json:"explicitDimensions"`
		TypedDimensions    []string        `json:"typedDimensions"`
	}
	if err := json.Unmarshal(raw, &h); err != nil {
		return HypercubeData{}, fmt.Errorf("hypercube %s: %w", name, err)
	}
	out := HypercubeData{
		QName:           name,
		Closed:          h.Closed,
		ContextElement:  h.ContextElement,
		PrimaryItems:    h.PrimaryItems,
		TypedDimensions: h.TypedDimensions,
	}
	err := eachMember(h.ExplicitDimensions, "explicit dimension", func(dim string, raw json.RawMessage) error {
		var members []string
		if err := json.Unmarshal(raw, &members); err != nil {
			return fmt.Errorf("explicit dimension %s: %w", dim, err)
		}
		out.ExplicitDimensions = append(out.ExplicitDimensions, ExplicitDimensionData{Dimension: dim, Members: members})
		return nil
	})
	return out, err
}

// UnmarshalJSON decodes the two or three element array form of a row.
func (r *Row) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("row %s: want 2 or 3 elements, got %d", data, len(parts))
	}
	if err := json.Unmarshal(parts[0], &r.Depth); err != nil {
		return fmt.Errorf("row %s: depth: %w", data, err)
	}
	if err := json.Unmarshal(parts[1], &r.QName); err != nil {
		return fmt.Errorf("row %s: qname: %w", data, err)
	}
	r.PreferredLabel = ""
	if len(parts) == 3 {
		var label *string
		if err := json.Unmarshal(parts[2], &label); err != nil {
			return fmt.Errorf("row %s: preferred label: %w", data, err)
		}
		if label != nil {
			r.PreferredLabel = *label
		}
	}
	return nil
}

// MarshalJSON writes the array form read by UnmarshalJSON.
func (r Row) MarshalJSON() ([]byte, error) {
	if r.PreferredLabel == "" {
		return json.Marshal([]any{r.Depth, r.QName})
	}
	return json.Marshal([]any{r.Depth, r.QName, r.PreferredLabel})
}

func validate(data []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compile document schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return taxonomyErrorf("decode document: %v", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return taxonomyErrorf("document does not match schema: %s", strings.Join(problems, "; "))
}

// eachMember walks the members of a JSON object in document order. A key
// seen twice is a taxonomy error. A missing or null object has no members.
func eachMember(data json.RawMessage, what string, fn func(key string, value json.RawMessage) error) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return taxonomyErrorf("decode %s: %v", what, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return taxonomyErrorf("decode %s: expected object", what)
	}

	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return taxonomyErrorf("decode %s: %v", what, err)
		}
		key, ok := tok.(string)
		if !ok {
			return taxonomyErrorf("decode %s: expected key", what)
		}
		if _, dup := seen[key]; dup {
			return taxonomyErrorf("%s %q defined more than once", what, key)
		}
		seen[key] = struct{}{}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return taxonomyErrorf("decode %s %q: %v", what, key, err)
		}
		if err := fn(key, value); err != nil {
			if errors.Is(err, ErrTaxonomy) {
				return err
			}
			return taxonomyErrorf("%v", err)
		}
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return taxonomyErrorf("decode %s: %v", what, err)
	}
	return nil
}
