package taxonomy

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// normalizeLanguage turns a requested tag into the lower case form label
// buckets are keyed by. Legacy subtags such as iw are kept as written.
func normalizeLanguage(tag string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
}

// canonicalBase returns the BCP 47 base language of tag with deprecated
// codes replaced (iw is he, in is id), or "" when tag does not parse.
func canonicalBase(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	base, conf := t.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

func baseLanguage(tag string) string {
	base, _, _ := strings.Cut(tag, "-")
	return base
}

// BestSupportedLanguage picks the supported language that best serves
// requested: an exact match, then a supported tag equal to the requested
// base language, then a region-qualified supported tag with the same base
// language, then a supported tag whose canonical base language is the same
// (he serves iw), then defaultLang. Supported tags are compared in lower case.
// It returns "" when nothing matches and there is no default.
func BestSupportedLanguage(requested string, supported []string, defaultLang string) (string, error) {
	set := make(map[string]struct{}, len(supported))
	tags := make([]string, 0, len(supported))
	for _, s := range supported {
		s = strings.ToLower(s)
		if _, dup := set[s]; dup {
			continue
		}
		set[s] = struct{}{}
		tags = append(tags, s)
	}

	defaultLang = strings.ToLower(defaultLang)
	if defaultLang != "" {
		if _, ok := set[defaultLang]; !ok {
			return "", taxonomyErrorf("default language %q is not a supported language %v", defaultLang, tags)
		}
	}

	req := normalizeLanguage(requested)
	if req == "" {
		return defaultLang, nil
	}
	if _, ok := set[req]; ok {
		return req, nil
	}
	base := baseLanguage(req)
	if _, ok := set[base]; ok {
		return base, nil
	}

	sort.Sort(sort.Reverse(sort.StringSlice(tags)))
	for _, s := range tags {
		sBase, _, qualified := strings.Cut(s, "-")
		if qualified && sBase == base {
			return s, nil
		}
	}

	if canon := canonicalBase(req); canon != "" {
		sort.Strings(tags)
		for _, s := range tags {
			if canonicalBase(s) == canon {
				return s, nil
			}
		}
	}
	return defaultLang, nil
}

// DefaultLanguage returns the language with the most labels across the
// taxonomy. It reports false for a taxonomy without labels.
func (t *Taxonomy) DefaultLanguage() (string, bool) {
	return t.defaultLanguage, t.defaultLanguage != ""
}

// SupportedLanguages returns every language any label is written in, sorted.
func (t *Taxonomy) SupportedLanguages() []string {
	return append([]string(nil), t.languages...)
}

// BestSupportedLanguage matches requested against the taxonomy languages,
// falling back to the default language.
func (t *Taxonomy) BestSupportedLanguage(requested string) string {
	lang, err := BestSupportedLanguage(requested, t.languages, t.defaultLanguage)
	if err != nil {
		// The default language is always one of t.languages.
		return t.defaultLanguage
	}
	return lang
}

// countLanguages tallies labels per language over concepts and presentation
// groups and picks the most used one. Ties go to the smaller tag.
func countLanguages(concepts []*Concept, groups []*PresentationGroup) (languages []string, defaultLang string) {
	counts := make(map[string]int)
	for _, c := range concepts {
		for lang, bucket := range c.labels {
			counts[lang] += len(bucket)
		}
	}
	for _, g := range groups {
		for lang := range g.Labels {
			counts[lang]++
		}
	}

	languages = make([]string, 0, len(counts))
	for lang := range counts {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	best := -1
	for _, lang := range languages {
		if counts[lang] > best {
			best, defaultLang = counts[lang], lang
		}
	}
	return languages, defaultLang
}
