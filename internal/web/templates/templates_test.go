package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/xbrlmap/internal/core"
)

func TestPresentationTable_EscapesText(t *testing.T) {
	var b strings.Builder
	err := PresentationTable(
		core.GroupView{RoleURI: "https://example.com/role", Style: "list"},
		[]core.RowView{
			{Depth: 0, Concept: "ex:Abstract", Label: "Heading", Abstract: true},
			{Depth: 1, Concept: "ex:Item", Label: "<b>Revenue</b> & more", Negated: true},
		},
	).Render(context.Background(), &b)
	require.NoError(t, err)

	html := b.String()
	assert.Contains(t, html, "&lt;b&gt;Revenue&lt;/b&gt; &amp; more")
	assert.Contains(t, html, `<tr class="abstract">`)
	assert.Contains(t, html, "padding-left:1.85rem")
	assert.Contains(t, html, "(negated)")
}

func TestLayoutAndErrorAlert(t *testing.T) {
	var b strings.Builder
	err := Layout("Lookup failed", ErrorAlert("No concept matches", "Check the spelling", "TAX003")).
		Render(context.Background(), &b)
	require.NoError(t, err)

	html := b.String()
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>Lookup failed</title>")
	assert.Contains(t, html, "Code: TAX003")
}

func TestIndex(t *testing.T) {
	ep := "https://example.com/ep.xsd"
	var b strings.Builder
	err := Index(
		[]core.Summary{{EntryPoint: ep, Concepts: 3, DefaultLanguage: "en", DimensionContainer: "scenario"}},
		map[string][]core.GroupView{ep: {{Index: 0, Label: "General", Style: "list"}}},
	).Render(context.Background(), &b)
	require.NoError(t, err)
	assert.Contains(t, b.String(), "/presentation/0?entryPoint=https%3A%2F%2Fexample.com%2Fep.xsd")

	b.Reset()
	require.NoError(t, Index(nil, nil).Render(context.Background(), &b))
	assert.Contains(t, b.String(), "No taxonomies are loaded.")
}

func TestPresentationURL(t *testing.T) {
	assert.Equal(t, "/presentation/2?entryPoint=ep&lang=da", PresentationURL("ep", 2, "da"))
}
