package govdesk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/govdesk/govdesk/auth"
	"github.com/govdesk/govdesk/backend"
	"github.com/govdesk/govdesk/content"
	"github.com/govdesk/govdesk/submissions"
)

// newTestApp wires a full app over a throwaway database, without
// binding a listener.
func newTestApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()

	a := New(SiteConfig{
		Name:          "GovDesk Test",
		DatabasePath:  filepath.Join(dir, "test.db"),
		UploadsDir:    filepath.Join(dir, "uploads"),
		AdminEmail:    "admin@example.com",
		AdminPassword: "opensesame",
		SessionSecret: "test-secret",
	}, nil)

	client, err := backend.Open(a.Config.DatabasePath, a.Config.UploadsDir, "/public/uploads")
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	a.Backend = client

	ctx := context.Background()
	if _, err := client.CreateUser(ctx, a.Config.AdminEmail, a.Config.AdminPassword); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	a.Content = content.NewStore(client)
	a.Auth = auth.NewStore(client, nil)
	a.Submissions = submissions.NewStore(client, nil)
	if err := a.Submissions.Start(ctx); err != nil {
		t.Fatalf("start submissions: %v", err)
	}
	t.Cleanup(a.Submissions.Stop)

	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

func get(a *App, target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestRootRedirectsToConsole(t *testing.T) {
	a := newTestApp(t)
	rec := get(a, "/", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/console/" {
		t.Fatalf("location = %q", loc)
	}
}

func TestConsoleRequiresSignIn(t *testing.T) {
	a := newTestApp(t)
	for _, target := range []string{
		"/console/",
		"/console/posts/",
		"/console/categories/",
		"/console/form_submits/",
		"/console/form_submits/passport_applications/",
	} {
		rec := get(a, target, nil)
		if rec.Code != http.StatusFound {
			t.Fatalf("GET %s status = %d, want 302", target, rec.Code)
		}
		if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/signin/?next=") {
			t.Fatalf("GET %s location = %q, want sign-in redirect", target, loc)
		}
	}
}

func TestSignInPageRenders(t *testing.T) {
	a := newTestApp(t)
	rec := get(a, "/signin/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Sign In") || !strings.Contains(body, `name="_csrf"`) {
		t.Fatalf("sign-in page missing form pieces: %s", body)
	}
}

// signInSession performs the full CSRF'd sign-in flow and returns the
// cookies a signed-in request needs.
func signInSession(t *testing.T, a *App) []*http.Cookie {
	t.Helper()

	// Load the form first for the CSRF cookie and token.
	form := get(a, "/signin/", nil)
	token := extractCSRF(t, form.Body.String())
	cookies := form.Result().Cookies()

	body := "email=admin@example.com&password=opensesame&_csrf=" + token
	req := httptest.NewRequest(http.MethodPost, "/signin/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("sign-in status = %d, want 303: %s", rec.Code, rec.Body.String())
	}
	return append(cookies, rec.Result().Cookies()...)
}

func TestSignInFlowReachesDashboard(t *testing.T) {
	a := newTestApp(t)
	session := signInSession(t, a)
	dash := get(a, "/console/", session)
	if dash.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200", dash.Code)
	}
	if !strings.Contains(dash.Body.String(), "Dashboard") {
		t.Fatal("dashboard page missing heading")
	}
}

func extractCSRF(t *testing.T, html string) string {
	t.Helper()
	marker := `name="_csrf" value="`
	i := strings.Index(html, marker)
	if i < 0 {
		t.Fatal("no CSRF field in page")
	}
	rest := html[i+len(marker):]
	j := strings.Index(rest, `"`)
	if j < 0 {
		t.Fatal("unterminated CSRF field")
	}
	return rest[:j]
}

func TestEmbeddedAssetsServed(t *testing.T) {
	a := newTestApp(t)
	for _, target := range []string{"/public/console.css", "/public/charts.js"} {
		rec := get(a, target, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d, want 200", target, rec.Code)
		}
		if rec.Body.Len() == 0 {
			t.Fatalf("GET %s returned empty body", target)
		}
	}
}

func TestUnknownFormTypeIs404(t *testing.T) {
	a := newTestApp(t)
	session := signInSession(t, a)

	notFound := get(a, "/console/form_submits/dog_licenses/", session)
	if notFound.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", notFound.Code)
	}
}

func TestDashboardDailyChartWindowIsSevenDays(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// Ten consecutive active days; the daily chart keeps the last seven.
	for i := 0; i < 10; i++ {
		_, err := a.Backend.Insert(ctx, backend.TablePassports, backend.Record{
			"first_name": "Ada", "surname": "Lovelace", "status": "pending",
			"created_at": now.AddDate(0, 0, -i).Format(time.RFC3339),
		})
		if err != nil {
			t.Fatalf("seed submission: %v", err)
		}
	}

	session := signInSession(t, a)
	dash := get(a, "/console/", session)
	if dash.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200", dash.Code)
	}

	body := dash.Body.String()
	today := now.Format("2006-01-02")
	dropped := now.AddDate(0, 0, -9).Format("2006-01-02")
	if !strings.Contains(body, today) {
		t.Errorf("daily chart missing today (%s)", today)
	}
	if strings.Contains(body, dropped) {
		t.Errorf("daily chart includes %s, outside the 7-day window", dropped)
	}
}
