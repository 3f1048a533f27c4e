// Package auth keeps track of who is signed in to the console. Sessions
// are cookie-backed and hold only the user id; the user record itself is
// re-read from the backend on demand.
package auth

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/govdesk/govdesk/backend"
)

const SessionName = "auth-store"

// Store performs sign-in against the backend and manages the cookie
// session for each request.
type Store struct {
	client backend.Client
	log    *zap.Logger
}

// NewStore creates an auth store over the given backend client.
func NewStore(client backend.Client, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{client: client, log: log}
}

// SignIn verifies the credentials and records the user id in the session.
func (s *Store) SignIn(c echo.Context, email, password string) (backend.User, error) {
	user, err := s.client.SignIn(c.Request().Context(), email, password)
	if err != nil {
		return backend.User{}, err
	}
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return backend.User{}, err
	}
	sess.Values["user_id"] = user.ID
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return backend.User{}, err
	}
	s.log.Info("signed in", zap.String("email", user.Email))
	return user, nil
}

// SignOut drops the session cookie.
func (s *Store) SignOut(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// CurrentUser resolves the session back to a user record. A stale id,
// for instance after the user row was removed, reads as signed out.
func (s *Store) CurrentUser(c echo.Context) (backend.User, bool) {
	id := sessionUserID(c)
	if id == "" {
		return backend.User{}, false
	}
	user, err := s.client.CurrentUser(c.Request().Context(), id)
	if err != nil {
		return backend.User{}, false
	}
	return user, true
}

// SignedIn reports whether the request carries a valid session.
func (s *Store) SignedIn(c echo.Context) bool {
	return sessionUserID(c) != ""
}

// RequireSignIn guards console routes. Unauthenticated requests are
// redirected to the sign-in page with the original location preserved in
// the next parameter.
func (s *Store) RequireSignIn(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.SignedIn(c) {
			return next(c)
		}
		target := c.Request().URL.RequestURI()
		return c.Redirect(http.StatusFound, "/signin/?next="+url.QueryEscape(target))
	}
}

// NextLocation returns a safe post-sign-in destination from the request.
// Only same-site paths are honored; anything else falls back to the
// console root.
func NextLocation(c echo.Context) string {
	next := c.QueryParam("next")
	if next == "" {
		next = c.FormValue("next")
	}
	if next == "" || next[0] != '/' || (len(next) > 1 && next[1] == '/') {
		return "/console/"
	}
	return next
}

func sessionUserID(c echo.Context) string {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return ""
	}
	id, _ := sess.Values["user_id"].(string)
	return id
}
