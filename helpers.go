package govdesk

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/govdesk/govdesk/views"
)

// page assembles the chrome every rendered view needs. One-shot notices
// ride on query parameters across redirects.
func (a *App) page(c echo.Context) views.Page {
	return views.Page{
		Site:     a.Config.Name,
		CSRF:     CsrfToken(c),
		SignedIn: a.Auth.SignedIn(c),
		Notice:   c.QueryParam("msg"),
		Error:    c.QueryParam("err"),
	}
}

// redirectMsg redirects to path with a success notice.
func redirectMsg(c echo.Context, path, msg string) error {
	return c.Redirect(http.StatusSeeOther, path+"?msg="+url.QueryEscape(msg))
}

// redirectErr redirects to path with an error notice.
func redirectErr(c echo.Context, path, msg string) error {
	return c.Redirect(http.StatusSeeOther, path+"?err="+url.QueryEscape(msg))
}
