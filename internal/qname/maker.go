package qname

import (
	"fmt"
	"strings"
)

var bootstrapPrefixes = []struct{ prefix, namespace string }{
	{"xbrli", XBRLI},
	{"link", Link},
	{"xlink", XLink},
	{"xs", XS},
	{"xbrldt", XBRLDT},
	{"xbrldi", XBRLDI},
	{"enum2", Enum2},
	{"iso4217", ISO4217},
	{"utr", UTR},
}

// Maker owns the prefix <-> namespace bijection of one taxonomy.
// It is populated during construction and read-only afterwards.
type Maker struct {
	byPrefix    map[string]string
	byNamespace map[string]string
}

// NewMaker returns a Maker pre-bound with the XBRL bootstrap prefixes.
func NewMaker() *Maker {
	m := &Maker{
		byPrefix:    make(map[string]string),
		byNamespace: make(map[string]string),
	}
	for _, b := range bootstrapPrefixes {
		m.byPrefix[b.prefix] = b.namespace
		m.byNamespace[b.namespace] = b.prefix
	}
	return m
}

// AddNamespacePrefix binds prefix to namespace. Rebinding an existing pair
// is a no-op; binding either side to something different is an error.
func (m *Maker) AddNamespacePrefix(prefix, namespace string) error {
	if !IsNCName(prefix) {
		return fmt.Errorf("%w: prefix %q is not an NCName", ErrBrokenNamespacePrefix, prefix)
	}
	if existing, ok := m.byPrefix[prefix]; ok && existing != namespace {
		return fmt.Errorf("%w: prefix %q already bound to %q, cannot bind to %q",
			ErrBrokenNamespacePrefix, prefix, existing, namespace)
	}
	if existing, ok := m.byNamespace[namespace]; ok && existing != prefix {
		return fmt.Errorf("%w: namespace %q already bound to prefix %q, cannot bind to %q",
			ErrBrokenNamespacePrefix, namespace, existing, prefix)
	}
	m.byPrefix[prefix] = namespace
	m.byNamespace[namespace] = prefix
	return nil
}

// New returns the QName for namespace and local, carrying the bound prefix
// (empty if the namespace has none).
func (m *Maker) New(namespace, local string) QName {
	return QName{Namespace: namespace, Local: local, Prefix: m.byNamespace[namespace]}
}

// Parse accepts prefix:local or {namespace}local.
func (m *Maker) Parse(s string) (QName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return QName{}, fmt.Errorf("%w: empty name", ErrBrokenQName)
	}
	if sub := clarkRE.FindStringSubmatch(s); sub != nil {
		return m.New(sub[1], sub[2]), nil
	}
	sub := qnameRE.FindStringSubmatch(s)
	if sub == nil {
		return QName{}, fmt.Errorf("%w: %q", ErrBrokenQName, s)
	}
	prefix, local := sub[1], sub[2]
	if prefix == "" {
		return QName{}, fmt.Errorf("%w: %q has no prefix", ErrBrokenQName, s)
	}
	ns, ok := m.byPrefix[prefix]
	if !ok {
		return QName{}, fmt.Errorf("%w: unknown prefix %q in %q", ErrBrokenQName, prefix, s)
	}
	return QName{Namespace: ns, Local: local, Prefix: prefix}, nil
}

// MustParse is Parse for names known to be valid (tests, constants).
func (m *Maker) MustParse(s string) QName {
	q, err := m.Parse(s)
	if err != nil {
		panic(err)
	}
	return q
}

// IsValid reports whether s parses with this Maker.
func (m *Maker) IsValid(s string) bool {
	_, err := m.Parse(s)
	return err == nil
}

// Prefix returns the prefix bound to namespace.
func (m *Maker) Prefix(namespace string) (string, bool) {
	p, ok := m.byNamespace[namespace]
	return p, ok
}

// NamespacePrefixes returns a copy of the prefix -> namespace bindings.
func (m *Maker) NamespacePrefixes() map[string]string {
	out := make(map[string]string, len(m.byPrefix))
	for p, ns := range m.byPrefix {
		out[p] = ns
	}
	return out
}
