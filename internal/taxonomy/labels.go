package taxonomy

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Label roles.
const (
	StandardLabelRole            = "http://www.xbrl.org/2003/role/label"
	TerseLabelRole               = "http://www.xbrl.org/2003/role/terseLabel"
	VerboseLabelRole             = "http://www.xbrl.org/2003/role/verboseLabel"
	DocumentationLabelRole       = "http://www.xbrl.org/2003/role/documentation"
	PeriodStartLabelRole         = "http://www.xbrl.org/2003/role/periodStartLabel"
	PeriodEndLabelRole           = "http://www.xbrl.org/2003/role/periodEndLabel"
	NegatedLabelRole             = "http://www.xbrl.org/2009/role/negatedLabel"
	MeasurementGuidanceLabelRole = "http://www.xbrl.org/2021/role/measurementGuidance"
)

var (
	// " [abstract]", " [table]", " [member]" and friends
	labelSuffixRE = regexp.MustCompile(`\s*\[[a-z ]+\]\s*$`)
	// any trailing bracketed text, for tolerant label matching
	anySuffixRE = regexp.MustCompile(`\s*\[[^\[\]]*\]\s*$`)

	dashReplacer = strings.NewReplacer("—", "-", "–", "-", "−", "-", "‐", "-", "‑", "-")
)

type labelOptions struct {
	lang         string
	fallback     *string
	anyLanguage  bool
	toQName      bool
	removeSuffix bool
}

// LabelOption adjusts label resolution.
type LabelOption func(*labelOptions)

// WithLanguage requests a language. Without it the taxonomy default
// language is used.
func WithLanguage(lang string) LabelOption {
	return func(o *labelOptions) { o.lang = lang }
}

// WithFallback returns s when no label is found.
func WithFallback(s string) LabelOption {
	return func(o *labelOptions) { o.fallback = &s }
}

// FallbackToAnyLanguage searches every language, default language first.
func FallbackToAnyLanguage() LabelOption {
	return func(o *labelOptions) { o.anyLanguage = true }
}

// FallbackToQName returns the concept QName when no label is found.
func FallbackToQName() LabelOption {
	return func(o *labelOptions) { o.toQName = true }
}

// RemoveSuffix strips a trailing " [abstract]" style suffix.
func RemoveSuffix() LabelOption {
	return func(o *labelOptions) { o.removeSuffix = true }
}

// KeepSuffix undoes RemoveSuffix.
func KeepSuffix() LabelOption {
	return func(o *labelOptions) { o.removeSuffix = false }
}

// Label resolves the label of role. Resolution tries, in order: the
// requested language, any language sharing its base language, every
// language (with FallbackToAnyLanguage), the caller fallback, and the QName
// (with FallbackToQName). It reports false when nothing matched or when the
// taxonomy has no labels at all.
func (c *Concept) Label(role string, opts ...LabelOption) (string, bool) {
	var o labelOptions
	for _, opt := range opts {
		opt(&o)
	}

	if c.taxonomy == nil {
		return "", false
	}
	defaultLang, ok := c.taxonomy.DefaultLanguage()
	if !ok {
		return "", false
	}
	lang := normalizeLanguage(o.lang)
	if lang == "" {
		lang = defaultLang
	}

	label, found := c.lookupLabel(role, lang, defaultLang, o.anyLanguage)
	if !found && o.fallback != nil {
		label, found = *o.fallback, true
	}
	if !found && o.toQName {
		label, found = c.qname.String(), true
	}
	if !found {
		return "", false
	}
	if o.removeSuffix {
		label = StripLabelSuffix(label)
	}
	return label, true
}

func (c *Concept) lookupLabel(role, lang, defaultLang string, anyLanguage bool) (string, bool) {
	if text := c.labels[lang][role]; text != "" {
		return text, true
	}

	base := baseLanguage(lang)
	for _, l := range c.languages {
		if l == lang || baseLanguage(l) != base {
			continue
		}
		if text := c.labels[l][role]; text != "" {
			return text, true
		}
	}

	if !anyLanguage {
		return "", false
	}
	if text := c.labels[defaultLang][role]; text != "" {
		return text, true
	}
	for _, l := range c.languages {
		if text := c.labels[l][role]; text != "" {
			return text, true
		}
	}
	return "", false
}

// StandardLabel resolves the standard label.
func (c *Concept) StandardLabel(opts ...LabelOption) (string, bool) {
	return c.Label(StandardLabelRole, opts...)
}

// DocumentationLabel resolves the documentation label.
func (c *Concept) DocumentationLabel(opts ...LabelOption) (string, bool) {
	return c.Label(DocumentationLabelRole, opts...)
}

// MeasurementGuidanceLabel resolves the measurement guidance label.
func (c *Concept) MeasurementGuidanceLabel(opts ...LabelOption) (string, bool) {
	return c.Label(MeasurementGuidanceLabelRole, opts...)
}

// StripLabelSuffix removes a trailing lower case bracketed suffix such as
// " [abstract]".
func StripLabelSuffix(label string) string {
	return labelSuffixRE.ReplaceAllString(label, "")
}

// NormalizeDashes maps unicode dashes to "-" and trims surrounding space.
func NormalizeDashes(s string) string {
	return strings.TrimSpace(dashReplacer.Replace(s))
}

// pretendLabel is the tolerant matching key of a label: dashes normalised,
// any trailing bracketed suffix removed, case folded.
func pretendLabel(s string) string {
	s = anySuffixRE.ReplaceAllString(NormalizeDashes(s), "")
	// A Caser may hold state, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(s))
}
