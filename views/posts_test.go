package views

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/govdesk/govdesk/content"
)

func renderToString(t *testing.T, cmp templ.Component) string {
	t.Helper()
	var sb strings.Builder
	if err := cmp.Render(context.Background(), &sb); err != nil {
		t.Fatalf("render: %v", err)
	}
	return sb.String()
}

func TestPostsListActions(t *testing.T) {
	posts := []content.Post{{
		ID:         "p1",
		Title:      "Launch Notes",
		CategoryID: "c1",
		Published:  false,
		CreatedAt:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}}
	cats := []content.Category{{ID: "c1", Name: "News"}}

	html := renderToString(t, Posts(Page{Site: "GovDesk", SignedIn: true}, posts, cats))

	if !strings.Contains(html, `action="/console/posts/p1/delete/"`) {
		t.Error("missing delete form")
	}
	// Delete fires immediately, with no confirmation dialog in between.
	if strings.Contains(html, "confirm(") {
		t.Error("delete form carries a confirmation dialog")
	}
	if !strings.Contains(html, `action="/console/posts/p1/publish/"`) {
		t.Error("missing publish toggle")
	}
	if !strings.Contains(html, "News") {
		t.Error("category name not resolved")
	}
}

func TestPostFormEscapesValues(t *testing.T) {
	post := content.Post{ID: "p1", Title: `War & "Peace" <draft>`, CategoryID: "c1"}
	cats := []content.Category{{ID: "c1", Name: "Books"}}

	html := renderToString(t, PostForm(Page{Site: "GovDesk", SignedIn: true}, post, cats, false))

	if strings.Contains(html, `<draft>`) {
		t.Error("title rendered unescaped")
	}
	if !strings.Contains(html, "War &amp;") {
		t.Error("escaped title missing from form")
	}
	if !strings.Contains(html, `value="c1" selected`) {
		t.Error("current category not preselected")
	}
}
