package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/xbrlmap/internal/core"
	"github.com/JonMunkholm/xbrlmap/internal/web/templates"
)

// ConceptResponse is a lookup answer with the entry point it came from.
type ConceptResponse struct {
	EntryPoint string           `json:"entryPoint"`
	Concept    core.ConceptView `json:"concept"`
}

// PresentationResponse is one presentation group with its rows.
type PresentationResponse struct {
	EntryPoint string         `json:"entryPoint"`
	Language   string         `json:"language"`
	Group      core.GroupView `json:"group"`
	Rows       []core.RowView `json:"rows"`
}

// handleHealth reports liveness and how many taxonomies are loaded.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"taxonomies": len(s.service.EntryPoints()),
	})
}

// handleIndex renders the overview page of every loaded taxonomy.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := parseQuery(r)
	summaries := s.service.Summaries()
	groups := make(map[string][]core.GroupView, len(summaries))
	for _, sum := range summaries {
		t, err := s.service.Taxonomy(sum.EntryPoint)
		if err != nil {
			continue
		}
		groups[sum.EntryPoint] = core.GroupViews(t, q.lang)
	}
	s.render(w, r, templates.Layout("Taxonomies", templates.Index(summaries, groups)))
}

// handlePresentationPage renders one presentation group as an indented table.
func (s *Server) handlePresentationPage(w http.ResponseWriter, r *http.Request) {
	resp, err := s.presentation(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	title := resp.Group.Label
	if title == "" {
		title = resp.Group.RoleURI
	}
	s.render(w, r, templates.Layout(title, templates.PresentationTable(resp.Group, resp.Rows)))
}

func (s *Server) handleListTaxonomies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Summaries())
}

// handleLanguages reports the supported languages and which one serves
// the requested lang.
func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	q := parseQuery(r)
	t, err := s.service.Taxonomy(q.entryPoint)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.LanguagesFor(t, q.lang))
}

// handleConcept looks a concept up by QName taken from the path.
func (s *Server) handleConcept(w http.ResponseWriter, r *http.Request) {
	key, err := pathParam(r, "qname")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.lookup(w, r, core.LookupQName, key)
}

// handleLookup accepts exactly one of qname, name or label.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	var (
		kind core.LookupKind
		key  string
		n    int
	)
	for _, k := range []core.LookupKind{core.LookupQName, core.LookupName, core.LookupLabel} {
		if v.Has(string(k)) {
			kind, key = k, v.Get(string(k))
			n++
		}
	}
	if n != 1 {
		s.respondError(w, r, fmt.Errorf("%w: give exactly one of qname, name or label", core.ErrInvalidRequest))
		return
	}
	s.lookup(w, r, kind, key)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request, kind core.LookupKind, key string) {
	q := parseQuery(r)
	c, err := s.service.LookupConcept(q.entryPoint, kind, key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ConceptResponse{
		EntryPoint: c.Taxonomy().EntryPoint(),
		Concept:    core.NewConceptView(c, q.lang),
	})
}

// handleDimensions describes the dimensional structure around a concept.
func (s *Server) handleDimensions(w http.ResponseWriter, r *http.Request) {
	key, err := pathParam(r, "qname")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	c, err := s.service.LookupConcept(parseQuery(r).entryPoint, core.LookupQName, key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.NewDimensionsView(c))
}

// handleDimensionForMember resolves ?primaryItem=..&member=.. to the
// explicit dimension that allows the member.
func (s *Server) handleDimensionForMember(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	item, member := v.Get("primaryItem"), v.Get("member")
	if item == "" || member == "" {
		s.respondError(w, r, fmt.Errorf("%w: primaryItem and member are required", core.ErrInvalidRequest))
		return
	}
	dim, err := s.service.DimensionForMember(parseQuery(r).entryPoint, item, member)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"primaryItem": item,
		"member":      member,
		"dimension":   dim.String(),
	})
}

// handleListPresentation lists the presentation groups of a taxonomy.
func (s *Server) handleListPresentation(w http.ResponseWriter, r *http.Request) {
	q := parseQuery(r)
	t, err := s.service.Taxonomy(q.entryPoint)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.GroupViews(t, q.lang))
}

func (s *Server) handlePresentationRows(w http.ResponseWriter, r *http.Request) {
	resp, err := s.presentation(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) presentation(r *http.Request) (*PresentationResponse, error) {
	q := parseQuery(r)
	t, err := s.service.Taxonomy(q.entryPoint)
	if err != nil {
		return nil, err
	}
	i, g, err := presentationGroup(r, t)
	if err != nil {
		return nil, err
	}
	lang := t.BestSupportedLanguage(q.lang)
	return &PresentationResponse{
		EntryPoint: t.EntryPoint(),
		Language:   lang,
		Group:      core.GroupViews(t, lang)[i],
		Rows:       core.RowViews(g, lang),
	}, nil
}

// render writes an HTML page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		slog.Error("render page", "path", r.URL.Path, "error", err)
	}
}
