package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/govdesk/govdesk/backend"
)

type fakeAuthClient struct {
	users map[string]backend.User // id -> user
}

func (c *fakeAuthClient) SignIn(_ context.Context, email, password string) (backend.User, error) {
	if email == "admin@example.com" && password == "opensesame" {
		return c.users["u1"], nil
	}
	return backend.User{}, backend.ErrInvalidLogin
}

func (c *fakeAuthClient) CurrentUser(_ context.Context, id string) (backend.User, error) {
	user, ok := c.users[id]
	if !ok {
		return backend.User{}, backend.ErrNotFound
	}
	return user, nil
}

func (c *fakeAuthClient) Select(context.Context, string, backend.Filter) ([]backend.Record, error) {
	return nil, nil
}

func (c *fakeAuthClient) Insert(context.Context, string, backend.Record) (backend.Record, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeAuthClient) Update(context.Context, string, string, backend.Record) (backend.Record, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeAuthClient) Delete(context.Context, string, string) error { return nil }

func (c *fakeAuthClient) Subscribe(func(backend.Change)) func() { return func() {} }

func (c *fakeAuthClient) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", nil
}

func (c *fakeAuthClient) PublicURL(string, string) string { return "" }

func (c *fakeAuthClient) Close() error { return nil }

func testApp(t *testing.T) (*echo.Echo, *Store) {
	t.Helper()
	client := &fakeAuthClient{users: map[string]backend.User{
		"u1": {ID: "u1", Email: "admin@example.com"},
	}}
	store := NewStore(client, nil)

	e := echo.New()
	e.Use(session.Middleware(sessions.NewCookieStore([]byte("test-secret"))))
	e.POST("/signin/", func(c echo.Context) error {
		_, err := store.SignIn(c, c.FormValue("email"), c.FormValue("password"))
		if err != nil {
			return c.String(http.StatusUnauthorized, "no")
		}
		return c.Redirect(http.StatusFound, NextLocation(c))
	})
	e.GET("/console/", func(c echo.Context) error {
		user, ok := store.CurrentUser(c)
		if !ok {
			return c.String(http.StatusInternalServerError, "no user")
		}
		return c.String(http.StatusOK, user.Email)
	}, store.RequireSignIn)
	return e, store
}

func signIn(t *testing.T, e *echo.Echo) []*http.Cookie {
	t.Helper()
	form := "email=admin@example.com&password=opensesame"
	req := httptest.NewRequest(http.MethodPost, "/signin/", strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("sign in status = %d, want 302", rec.Code)
	}
	return rec.Result().Cookies()
}

func TestGuardRedirectsWithNextLocation(t *testing.T) {
	e, _ := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/console/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/signin/?next=%2Fconsole%2F" {
		t.Fatalf("location = %q", loc)
	}
}

func TestSignInGrantsAccess(t *testing.T) {
	e, _ := testApp(t)
	cookies := signIn(t, e)

	req := httptest.NewRequest(http.MethodGet, "/console/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "admin@example.com" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestSignInRejectsBadPassword(t *testing.T) {
	e, _ := testApp(t)

	form := "email=admin@example.com&password=wrong"
	req := httptest.NewRequest(http.MethodPost, "/signin/", strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestSignOutEndsSession(t *testing.T) {
	e, store := testApp(t)
	e.POST("/signout/", func(c echo.Context) error {
		if err := store.SignOut(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusFound, "/signin/")
	})
	cookies := signIn(t, e)

	req := httptest.NewRequest(http.MethodPost, "/signout/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("sign out status = %d, want 302", rec.Code)
	}

	// The expired cookie replaces the old one.
	req = httptest.NewRequest(http.MethodGet, "/console/", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("status after sign out = %d, want redirect", rec.Code)
	}
}

func TestNextLocationRejectsOffsiteTargets(t *testing.T) {
	e := echo.New()
	for target, want := range map[string]string{
		"/console/posts/":   "/console/posts/",
		"https://evil.test": "/console/",
		"//evil.test":       "/console/",
		"":                  "/console/",
	} {
		req := httptest.NewRequest(http.MethodGet, "/signin/?next="+strings.ReplaceAll(target, "/", "%2F"), nil)
		c := e.NewContext(req, httptest.NewRecorder())
		if got := NextLocation(c); got != want {
			t.Fatalf("NextLocation(%q) = %q, want %q", target, got, want)
		}
	}
}
