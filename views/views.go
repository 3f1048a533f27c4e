// Package views renders every console page as a templ component. Pages
// are assembled in plain Go with a buffer, the same way the markdown
// renderer works, so no template generation step is needed.
package views

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"io"

	"github.com/a-h/templ"
)

// Page carries the per-request chrome every layout needs.
type Page struct {
	Site     string // site name for the header and <title>
	Title    string
	CSRF     string
	SignedIn bool
	Active   string // nav highlight: dashboard, posts, categories, submissions
	Notice   string // one-shot success banner
	Error    string // one-shot error banner
}

func component(fn func(buf *bytes.Buffer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		fn(&buf)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func esc(s string) string { return html.EscapeString(s) }

// jsonAttr marshals v for embedding in a data attribute. The result still
// goes through esc at the call site.
func jsonAttr(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func navLink(buf *bytes.Buffer, href, label, key, active string) {
	class := "nav-link"
	if key == active {
		class += " active"
	}
	buf.WriteString(`<a class="` + class + `" href="` + href + `">` + esc(label) + `</a>`)
}

func layout(p Page, body func(buf *bytes.Buffer)) templ.Component {
	return component(func(buf *bytes.Buffer) {
		title := p.Site
		if p.Title != "" {
			title = p.Title + " | " + p.Site
		}
		buf.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		buf.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		buf.WriteString(`<title>` + esc(title) + `</title>`)
		buf.WriteString(`<link rel="stylesheet" href="/public/console.css">`)
		buf.WriteString(`</head><body>`)
		buf.WriteString(`<header class="topbar"><div class="topbar-inner">`)
		buf.WriteString(`<a class="brand" href="/console/">` + esc(p.Site) + `</a>`)
		if p.SignedIn {
			buf.WriteString(`<nav class="nav">`)
			navLink(buf, "/console/", "Dashboard", "dashboard", p.Active)
			navLink(buf, "/console/posts/", "Posts", "posts", p.Active)
			navLink(buf, "/console/categories/", "Categories", "categories", p.Active)
			navLink(buf, "/console/form_submits/", "Submissions", "submissions", p.Active)
			buf.WriteString(`</nav>`)
			buf.WriteString(`<form class="signout" method="post" action="/signout/">`)
			csrfField(buf, p.CSRF)
			buf.WriteString(`<button type="submit" class="btn btn-ghost">Sign Out</button></form>`)
		}
		buf.WriteString(`</div></header>`)
		if p.Notice != "" {
			buf.WriteString(`<div class="banner banner-ok">` + esc(p.Notice) + `</div>`)
		}
		if p.Error != "" {
			buf.WriteString(`<div class="banner banner-err">` + esc(p.Error) + `</div>`)
		}
		buf.WriteString(`<main class="content">`)
		body(buf)
		buf.WriteString(`</main>`)
		buf.WriteString(`<script src="/public/charts.js" defer></script>`)
		buf.WriteString(`</body></html>`)
	})
}

func csrfField(buf *bytes.Buffer, token string) {
	buf.WriteString(`<input type="hidden" name="_csrf" value="` + esc(token) + `">`)
}

// NotFound is the shared 404 page.
func NotFound(p Page) templ.Component {
	p.Title = "Not Found"
	return layout(p, func(buf *bytes.Buffer) {
		buf.WriteString(`<section class="empty"><h1>404</h1><p>The page you are looking for does not exist.</p>`)
		buf.WriteString(`<a class="btn" href="/console/">Back to Dashboard</a></section>`)
	})
}

// ServerError is the shared 500 page.
func ServerError(p Page) templ.Component {
	p.Title = "Something Went Wrong"
	return layout(p, func(buf *bytes.Buffer) {
		buf.WriteString(`<section class="empty"><h1>Something went wrong</h1><p>Please try again in a moment.</p>`)
		buf.WriteString(`<a class="btn" href="/console/">Back to Dashboard</a></section>`)
	})
}
