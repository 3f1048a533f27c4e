package views

import (
	"bytes"

	"github.com/a-h/templ"

	"github.com/govdesk/govdesk/content"
)

// Posts renders the post list with publish toggles and delete buttons.
func Posts(p Page, posts []content.Post, cats []content.Category) templ.Component {
	p.Title = "Posts"
	p.Active = "posts"
	return layout(p, func(buf *bytes.Buffer) {
		buf.WriteString(`<div class="page-head"><h1>Posts</h1>`)
		buf.WriteString(`<a class="btn btn-primary" href="/console/posts/add/">New Post</a></div>`)
		if len(posts) == 0 {
			buf.WriteString(`<p class="empty">No posts yet. Write the first one.</p>`)
			return
		}
		buf.WriteString(`<table class="table"><thead><tr><th>Title</th><th>Category</th><th>Created</th><th>Status</th><th></th></tr></thead><tbody>`)
		for _, post := range posts {
			buf.WriteString(`<tr><td><a href="/console/posts/` + esc(post.ID) + `/">` + esc(post.Title) + `</a></td>`)
			buf.WriteString(`<td>` + esc(content.CategoryName(cats, post.CategoryID)) + `</td>`)
			buf.WriteString(`<td>` + esc(post.CreatedAt.Format("2006-01-02")) + `</td>`)
			if post.Published {
				buf.WriteString(`<td><span class="badge badge-ok">Published</span></td>`)
			} else {
				buf.WriteString(`<td><span class="badge">Draft</span></td>`)
			}
			buf.WriteString(`<td class="row-actions">`)
			postToggleForm(buf, p.CSRF, post)
			buf.WriteString(`<a class="btn btn-ghost" href="/console/posts/` + esc(post.ID) + `/edit/">Edit</a>`)
			// Deletion is immediate; there is no confirmation step.
			buf.WriteString(`<form method="post" action="/console/posts/` + esc(post.ID) + `/delete/">`)
			csrfField(buf, p.CSRF)
			buf.WriteString(`<button type="submit" class="btn btn-danger">Delete</button></form>`)
			buf.WriteString(`</td></tr>`)
		}
		buf.WriteString(`</tbody></table>`)
	})
}

func postToggleForm(buf *bytes.Buffer, csrf string, post content.Post) {
	label := "Publish"
	if post.Published {
		label = "Unpublish"
	}
	buf.WriteString(`<form method="post" action="/console/posts/` + esc(post.ID) + `/publish/">`)
	csrfField(buf, csrf)
	buf.WriteString(`<button type="submit" class="btn btn-ghost">` + label + `</button></form>`)
}

// PostForm renders the editor for both the add and edit pages.
func PostForm(p Page, post content.Post, cats []content.Category, isNew bool) templ.Component {
	action := "/console/posts/" + post.ID + "/edit/"
	heading := "Edit Post"
	if isNew {
		action = "/console/posts/add/"
		heading = "New Post"
	}
	p.Title = heading
	p.Active = "posts"
	return layout(p, func(buf *bytes.Buffer) {
		buf.WriteString(`<div class="page-head"><h1>` + heading + `</h1>`)
		buf.WriteString(`<a class="btn btn-ghost" href="/console/posts/">Back</a></div>`)
		buf.WriteString(`<form class="editor" method="post" action="` + esc(action) + `">`)
		csrfField(buf, p.CSRF)
		buf.WriteString(`<label>Title<input type="text" name="title" value="` + esc(post.Title) + `"></label>`)
		buf.WriteString(`<label>Category<select name="category_id">`)
		buf.WriteString(`<option value="">Select a category</option>`)
		for _, cat := range cats {
			selected := ""
			if cat.ID == post.CategoryID {
				selected = " selected"
			}
			buf.WriteString(`<option value="` + esc(cat.ID) + `"` + selected + `>` + esc(cat.Name) + `</option>`)
		}
		buf.WriteString(`</select></label>`)
		buf.WriteString(`<label>Content<textarea name="content" rows="18">` + esc(post.Content) + `</textarea></label>`)
		checked := ""
		if post.Published {
			checked = " checked"
		}
		buf.WriteString(`<label class="check"><input type="checkbox" name="published"` + checked + `> Published</label>`)
		buf.WriteString(`<button type="submit" class="btn btn-primary">Save</button>`)
		buf.WriteString(`</form>`)
	})
}

// PostDetail renders a read-only view of one post.
func PostDetail(p Page, post content.Post, categoryName string) templ.Component {
	p.Title = post.Title
	p.Active = "posts"
	return layout(p, func(buf *bytes.Buffer) {
		buf.WriteString(`<div class="page-head"><h1>` + esc(post.Title) + `</h1>`)
		buf.WriteString(`<a class="btn btn-ghost" href="/console/posts/">Back</a>`)
		buf.WriteString(`<a class="btn" href="/console/posts/` + esc(post.ID) + `/edit/">Edit</a></div>`)
		buf.WriteString(`<p class="meta">` + esc(categoryName) + ` · ` + esc(post.CreatedAt.Format("2006-01-02")))
		if post.Published {
			buf.WriteString(` · <span class="badge badge-ok">Published</span>`)
		} else {
			buf.WriteString(` · <span class="badge">Draft</span>`)
		}
		buf.WriteString(`</p>`)
		buf.WriteString(`<article class="post-body"><pre>` + esc(post.Content) + `</pre></article>`)
	})
}

// Categories renders the category list and the inline create form.
func Categories(p Page, cats []content.Category) templ.Component {
	p.Title = "Categories"
	p.Active = "categories"
	return layout(p, func(buf *bytes.Buffer) {
		buf.WriteString(`<div class="page-head"><h1>Categories</h1></div>`)
		buf.WriteString(`<form class="inline-form" method="post" action="/console/categories/add/">`)
		csrfField(buf, p.CSRF)
		buf.WriteString(`<input type="text" name="name" placeholder="New category name">`)
		buf.WriteString(`<button type="submit" class="btn btn-primary">Add Category</button></form>`)
		if len(cats) == 0 {
			buf.WriteString(`<p class="empty">No categories yet.</p>`)
			return
		}
		buf.WriteString(`<table class="table"><thead><tr><th>Name</th><th>Created</th></tr></thead><tbody>`)
		for _, cat := range cats {
			buf.WriteString(`<tr><td>` + esc(cat.Name) + `</td><td>` + esc(cat.CreatedAt.Format("2006-01-02")) + `</td></tr>`)
		}
		buf.WriteString(`</tbody></table>`)
	})
}
