package views

import (
	"bytes"

	"github.com/a-h/templ"
)

// SignIn renders the sign-in form. next is carried through so a guarded
// page can be returned to after authentication.
func SignIn(p Page, email, next string) templ.Component {
	p.Title = "Sign In"
	return layout(p, func(buf *bytes.Buffer) {
		buf.WriteString(`<section class="auth-card"><h1>Sign In</h1>`)
		buf.WriteString(`<form method="post" action="/signin/">`)
		csrfField(buf, p.CSRF)
		buf.WriteString(`<input type="hidden" name="next" value="` + esc(next) + `">`)
		buf.WriteString(`<label>Email<input type="email" name="email" value="` + esc(email) + `" required autofocus></label>`)
		buf.WriteString(`<label>Password<input type="password" name="password" required></label>`)
		buf.WriteString(`<button type="submit" class="btn btn-primary">Sign In</button>`)
		buf.WriteString(`</form></section>`)
	})
}
