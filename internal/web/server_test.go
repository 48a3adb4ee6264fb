package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/xbrlmap/internal/config"
	"github.com/JonMunkholm/xbrlmap/internal/core"
	"github.com/JonMunkholm/xbrlmap/internal/metrics"
	"github.com/JonMunkholm/xbrlmap/internal/source"
	"github.com/JonMunkholm/xbrlmap/internal/taxonomy"
)

const vsmeEntryPoint = "https://xbrl.efrag.org/taxonomy/vsme/2024-12-17/vsme-all.xsd"

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{RequestTimeout: 5 * time.Second},
		Security: config.SecurityConfig{EnableCSP: true},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	src, err := source.NewDirSource("../taxonomy/testdata", "")
	require.NoError(t, err)

	m, err := metrics.New()
	require.NoError(t, err)

	svc := core.NewService(taxonomy.NewRegistry(), src, core.Options{
		Logger:  slog.New(slog.DiscardHandler),
		Metrics: m,
	})
	report, err := svc.LoadAll(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.Err())
	require.Len(t, report.Loaded, 1)

	srv := NewServer(svc, cfg, m)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func get(t *testing.T, srv *Server, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testConfig())
	rec := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	body := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), body["taxonomies"])
}

func TestListTaxonomies(t *testing.T) {
	srv := newTestServer(t, testConfig())
	rec := get(t, srv, "/api/taxonomies")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[[]core.Summary](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, vsmeEntryPoint, got[0].EntryPoint)
	assert.Equal(t, "en", got[0].DefaultLanguage)
}

func TestConcept(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := get(t, srv, "/api/concepts/vsme:Revenue?lang=da")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[ConceptResponse](t, rec)
	assert.Equal(t, vsmeEntryPoint, got.EntryPoint)
	assert.Equal(t, "vsme:Revenue", got.Concept.QName)
	assert.Equal(t, "Omsætning", got.Concept.Labels["standard"])

	// Clark notation arrives percent-encoded.
	clark := "/api/concepts/%7Bhttps:%2F%2Fxbrl.efrag.org%2Ftaxonomy%2Fvsme%2F2024-12-17%7DRevenue"
	rec = get(t, srv, clark)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "vsme:Revenue", decode[ConceptResponse](t, rec).Concept.QName)
}

func TestLookup(t *testing.T) {
	srv := newTestServer(t, testConfig())

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
		want       string
	}{
		{name: "by name", target: "/api/lookup?name=ProfitLoss", wantStatus: http.StatusOK, want: "vsme:ProfitLoss"},
		{name: "by label", target: "/api/lookup?label=Revenue", wantStatus: http.StatusOK, want: "vsme:Revenue"},
		{name: "miss", target: "/api/lookup?qname=vsme:Nope", wantStatus: http.StatusNotFound, wantCode: "TAX003"},
		{name: "broken qname", target: "/api/lookup?qname=foo:Bar", wantStatus: http.StatusBadRequest, wantCode: "QN001"},
		{name: "two keys", target: "/api/lookup?name=Revenue&label=Revenue", wantStatus: http.StatusBadRequest, wantCode: "REQ003"},
		{name: "no key", target: "/api/lookup", wantStatus: http.StatusBadRequest, wantCode: "REQ003"},
		{name: "unknown entry point", target: "/api/lookup?name=Revenue&entryPoint=https://example.com/x.xsd", wantStatus: http.StatusNotFound, wantCode: "TAX001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv, tt.target)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code)
				return
			}
			assert.Equal(t, tt.want, decode[ConceptResponse](t, rec).Concept.QName)
		})
	}
}

func TestLookup_AmbiguousListsCandidates(t *testing.T) {
	srv := newTestServer(t, testConfig())
	rec := get(t, srv, "/api/lookup?name=Revenue")
	require.Equal(t, http.StatusConflict, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "TAX002", resp.Code)
	assert.Equal(t, []string{"other:Revenue", "vsme:Revenue"}, resp.Candidates)
}

func TestDimensions(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := get(t, srv, "/api/dimensions/vsme:NumberOfEmployees")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[core.DimensionsView](t, rec)
	assert.Equal(t, "scenario", view.Container)
	require.NotEmpty(t, view.ExplicitDimensions)
	assert.Equal(t, "vsme:GenderAxis", view.ExplicitDimensions[0].Dimension)

	rec = get(t, srv, "/api/dimension-for-member?primaryItem=vsme:NumberOfEmployees&member=vsme:MaleMember")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "vsme:GenderAxis", decode[map[string]string](t, rec)["dimension"])

	rec = get(t, srv, "/api/dimension-for-member?primaryItem=vsme:Revenue&member=vsme:MaleMember")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TAX006", decode[ErrorResponse](t, rec).Code)

	rec = get(t, srv, "/api/dimension-for-member?member=vsme:MaleMember")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPresentation(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := get(t, srv, "/api/presentation")
	require.Equal(t, http.StatusOK, rec.Code)
	groups := decode[[]core.GroupView](t, rec)
	require.Len(t, groups, 4)
	assert.Equal(t, "General information", groups[0].Label)

	rec = get(t, srv, "/api/presentation/0")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[PresentationResponse](t, rec)
	assert.Equal(t, "en", resp.Language)
	require.NotEmpty(t, resp.Rows)
	assert.Equal(t, "General information", resp.Rows[0].Label)

	for _, bad := range []string{"/api/presentation/4", "/api/presentation/-1", "/api/presentation/x"} {
		rec = get(t, srv, bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestLanguages(t *testing.T) {
	srv := newTestServer(t, testConfig())
	rec := get(t, srv, "/api/languages?lang=da-DK")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[core.Languages](t, rec)
	assert.Equal(t, "en", got.Default)
	assert.Equal(t, "da", got.Best)
}

func TestPages(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := get(t, srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), vsmeEntryPoint)

	rec = get(t, srv, "/presentation/0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "General information")

	// Errors outside /api render as HTML unless JSON is asked for.
	rec = get(t, srv, "/presentation/99")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "REQ003")

	rec = get(t, srv, "/presentation/99", "Accept", "application/json")
	assert.Equal(t, "REQ003", decode[ErrorResponse](t, rec).Code)
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	srv := newTestServer(t, cfg)

	rec := get(t, srv, "/api/taxonomies")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, "AUTH001", decode[ErrorResponse](t, rec).Code)

	rec = get(t, srv, "/api/taxonomies", "X-API-Key", "wrong")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, "AUTH002", decode[ErrorResponse](t, rec).Code)

	assert.Equal(t, http.StatusOK, get(t, srv, "/api/taxonomies", "X-API-Key", "secret").Code)
	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	srv := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)

	rec := get(t, srv, "/api/taxonomies")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decode[ErrorResponse](t, rec).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())
	get(t, srv, "/api/concepts/vsme:Revenue")

	rec := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `xbrlmap_concept_lookups_total{kind="qname",outcome="hit"} 1`), body)
	assert.Contains(t, body, `route="/api/concepts/{qname}"`)
	assert.Contains(t, body, "xbrlmap_taxonomies_registered 1")
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := newRateLimiter(1, 20*time.Millisecond)
	defer rl.stop()

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.allow("10.0.0.1"))
	rl.stop() // idempotent
}
