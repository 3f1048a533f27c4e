package govdesk

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/govdesk/govdesk/auth"
	"github.com/govdesk/govdesk/submissions"
	"github.com/govdesk/govdesk/views"
)

func (a *App) handleSignInPage(c echo.Context) error {
	if a.Auth.SignedIn(c) {
		return c.Redirect(http.StatusFound, "/console/")
	}
	return Render(c, views.SignIn(a.page(c), "", auth.NextLocation(c)))
}

func (a *App) handleSignIn(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many sign-in attempts. Try again later.")
	}
	email := c.FormValue("email")
	if _, err := a.Auth.SignIn(c, email, c.FormValue("password")); err != nil {
		a.loginLimiter.Record(ip)
		a.Log.Info("sign-in rejected", zap.String("email", email))
		p := a.page(c)
		p.Error = "Invalid email or password."
		return RenderStatus(c, http.StatusUnauthorized, views.SignIn(p, email, auth.NextLocation(c)))
	}
	return c.Redirect(http.StatusSeeOther, auth.NextLocation(c))
}

func (a *App) handleSignOut(c echo.Context) error {
	if err := a.Auth.SignOut(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/signin/")
}

func (a *App) handleDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Content.Posts(ctx)
	if err != nil {
		return err
	}
	cats, err := a.Content.Categories(ctx)
	if err != nil {
		return err
	}
	subs := a.Submissions.All()

	d := views.Dashboard{
		TotalPosts:       len(posts),
		TotalCategories:  len(cats),
		TotalSubmissions: len(subs),
		Dist:             submissions.StatusDistribution(subs),
		TypeCounts:       submissions.CountByType(subs),
		Range:            c.QueryParam("range"),
		Recent:           submissions.Recent(subs, 5),
		LoadError:        a.Submissions.LastError(),
	}
	for _, p := range posts {
		if p.Published {
			d.PublishedPosts++
		}
	}

	d.Years = submissions.YearOptions(subs)
	d.Year, _ = strconv.Atoi(c.QueryParam("year"))
	if d.Year == 0 && len(d.Years) > 0 {
		d.Year = d.Years[len(d.Years)-1]
	}
	switch d.Range {
	case "monthly":
		d.Monthly = submissions.MonthlyCounts(subs, d.Year)
	case "yearly":
		d.Yearly = submissions.YearlyCounts(subs)
	default:
		d.Range = "daily"
		d.Daily = submissions.DailyCounts(subs, 7)
	}

	return Render(c, views.Console(a.page(c), d))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.page(c)))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
		_ = RenderStatus(c, code, views.ServerError(a.page(c)))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
