package web

// Shared request parsing used across handlers.

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/xbrlmap/internal/core"
	"github.com/JonMunkholm/xbrlmap/internal/taxonomy"
)

// Query parameters shared by the API and the pages.
const (
	paramEntryPoint = "entryPoint"
	paramLang       = "lang"
)

// query holds the parameters every taxonomy request carries.
type query struct {
	entryPoint string
	lang       string
}

func parseQuery(r *http.Request) query {
	v := r.URL.Query()
	return query{entryPoint: v.Get(paramEntryPoint), lang: v.Get(paramLang)}
}

// pathParam returns a URL parameter with percent escapes decoded, so that
// Clark notation such as %7Bns%7DName reaches the lookup intact.
func pathParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	s, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("%w: bad %s %q", core.ErrInvalidRequest, name, raw)
	}
	return s, nil
}

// presentationGroup resolves the {index} URL parameter against t.
func presentationGroup(r *http.Request, t *taxonomy.Taxonomy) (int, *taxonomy.PresentationGroup, error) {
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	groups := t.Presentation()
	if err != nil || i < 0 || i >= len(groups) {
		return 0, nil, fmt.Errorf("%w: presentation group %q out of range (0-%d)",
			core.ErrInvalidRequest, raw, len(groups)-1)
	}
	return i, groups[i], nil
}
