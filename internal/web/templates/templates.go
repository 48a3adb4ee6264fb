// Package templates renders the HTML views of the taxonomy browser. The
// components are plain templ.ComponentFunc values so they compose with any
// templ code and need no generation step.
package templates

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/xbrlmap/internal/core"
)

const style = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
table{border-collapse:collapse;width:100%}
td,th{border-bottom:1px solid #e5e7eb;padding:.35rem .6rem;text-align:left}
.abstract{font-weight:600}.hypercube{color:#7c3aed}.muted{color:#6b7280}
.alert{border:1px solid #fca5a5;background:#fef2f2;padding:1rem;border-radius:.4rem}`

// htmlWriter writes escaped and raw fragments, keeping the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// Layout wraps body in a page.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`)
		h.text(title)
		h.raw(`</title><style>`, style, `</style></head><body><h1>`)
		h.text(title)
		h.raw(`</h1>`)
		h.component(ctx, body)
		h.raw(`</body></html>`)
		return h.err
	})
}

// Index lists the loaded taxonomies with links to their presentation groups.
func Index(summaries []core.Summary, groups map[string][]core.GroupView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		if len(summaries) == 0 {
			h.raw(`<p class="muted">No taxonomies are loaded.</p>`)
			return h.err
		}
		for _, s := range summaries {
			h.raw(`<h2>`)
			h.text(s.EntryPoint)
			h.raw(`</h2><p class="muted">`)
			h.text(fmt.Sprintf("%d concepts, default language %s, %s container",
				s.Concepts, s.DefaultLanguage, s.DimensionContainer))
			h.raw(`</p><ul>`)
			for _, g := range groups[s.EntryPoint] {
				h.raw(`<li><a href="`)
				h.text(PresentationURL(s.EntryPoint, g.Index, ""))
				h.raw(`">`)
				h.text(g.Label)
				h.raw(`</a> <span class="muted">`)
				h.text(g.Style)
				h.raw(`</span></li>`)
			}
			h.raw(`</ul>`)
		}
		return h.err
	})
}

// PresentationURL links to one group of a taxonomy.
func PresentationURL(entryPoint string, index int, lang string) string {
	q := url.Values{"entryPoint": {entryPoint}}
	if lang != "" {
		q.Set("lang", lang)
	}
	return "/presentation/" + strconv.Itoa(index) + "?" + q.Encode()
}

// PresentationTable renders the rows of one presentation group, indented
// by depth.
func PresentationTable(group core.GroupView, rows []core.RowView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<p class="muted">`)
		h.text(group.RoleURI + " (" + group.Style + ")")
		h.raw(`</p><table><thead><tr><th>Label</th><th>Concept</th></tr></thead><tbody>`)
		for _, r := range rows {
			var classes []string
			if r.Abstract {
				classes = append(classes, "abstract")
			}
			if r.Hypercube {
				classes = append(classes, "hypercube")
			}
			h.raw(`<tr class="`, strings.Join(classes, " "), `"><td style="padding-left:`)
			h.raw(strconv.FormatFloat(0.6+1.25*float64(r.Depth), 'f', 2, 64))
			h.raw(`rem">`)
			h.text(r.Label)
			if r.Negated {
				h.raw(` <span class="muted">(negated)</span>`)
			}
			h.raw(`</td><td><code>`)
			h.text(r.Concept)
			h.raw(`</code></td></tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}

// ErrorAlert renders a user facing error.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		h.raw(`<p class="muted">Code: `)
		h.text(code)
		h.raw(`</p></div>`)
		return h.err
	})
}
