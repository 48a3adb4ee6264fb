// Package qname provides namespace-qualified names and the per-taxonomy
// registry that binds namespace URIs to prefixes.
//
// Unlike raw XML, where a prefix may be rebound per document, a [Maker]
// enforces a bijection: every prefix maps to exactly one namespace and
// every namespace to exactly one prefix. QNames built by the same Maker
// therefore compare equal with == exactly when namespace and local name
// match, which lets them be used directly as map keys.
package qname

import (
	"errors"
	"regexp"
)

// Well-known namespaces.
const (
	XBRLI   = "http://www.xbrl.org/2003/instance"
	Link    = "http://www.xbrl.org/2003/linkbase"
	XLink   = "http://www.w3.org/1999/xlink"
	XS      = "http://www.w3.org/2001/XMLSchema"
	XBRLDT  = "http://xbrl.org/2005/xbrldt"
	XBRLDI  = "http://xbrl.org/2006/xbrldi"
	Enum2   = "http://xbrl.org/2020/extensible-enumerations-2.0"
	ISO4217 = "http://www.xbrl.org/2003/iso4217"
	UTR     = "http://www.xbrl.org/2009/utr"
)

var (
	// ErrBrokenQName is returned for malformed names or unknown prefixes.
	ErrBrokenQName = errors.New("invalid qname")

	// ErrBrokenNamespacePrefix is returned when a prefix or namespace is
	// already bound to something else.
	ErrBrokenNamespacePrefix = errors.New("namespace prefix conflict")
)

const ncName = `[\p{L}_][\p{L}\p{N}_.\-]*`

var (
	ncNameRE = regexp.MustCompile(`^` + ncName + `$`)
	qnameRE  = regexp.MustCompile(`^(?:(` + ncName + `):)?(` + ncName + `)$`)
	clarkRE  = regexp.MustCompile(`^\{([^{}]*)\}(` + ncName + `)$`)
	findRE   = regexp.MustCompile(ncName + `:` + ncName)
	findNCRE = regexp.MustCompile(ncName)
)

// QName is a namespace-qualified name. Equality is by namespace and local
// name; the prefix is cosmetic.
type QName struct {
	Namespace string
	Local     string
	Prefix    string
}

// String returns prefix:local, or {namespace}local when no prefix is bound.
func (q QName) String() string {
	if q.Prefix != "" {
		return q.Prefix + ":" + q.Local
	}
	if q.Namespace == "" {
		return q.Local
	}
	return "{" + q.Namespace + "}" + q.Local
}

// Expanded returns namespace#local.
func (q QName) Expanded() string {
	return q.Namespace + "#" + q.Local
}

// Equal reports whether q and other name the same thing, ignoring prefixes.
func (q QName) Equal(other QName) bool {
	return q.Namespace == other.Namespace && q.Local == other.Local
}

// IsZero reports whether q is the zero value.
func (q QName) IsZero() bool {
	return q.Namespace == "" && q.Local == ""
}

// Less orders QNames by their string form.
func Less(a, b QName) bool {
	return a.String() < b.String()
}

// IsNCName reports whether s is a valid non-colonised name.
func IsNCName(s string) bool {
	return ncNameRE.MatchString(s)
}

// FindAll returns every prefix:local shaped token in s, in order.
func FindAll(s string) []string {
	return findRE.FindAllString(s, -1)
}

// FindNCNames returns every NCName shaped token in s, in order.
func FindNCNames(s string) []string {
	return findNCRE.FindAllString(s, -1)
}
