// Package govdesk is an administrative web console built with Go, Echo,
// and templ. It pairs a small blog CMS with a review dashboard for
// government form submissions: passports, birth certificates, company
// registrations, and sole proprietorships.
package govdesk

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/govdesk/govdesk/auth"
	"github.com/govdesk/govdesk/backend"
	"github.com/govdesk/govdesk/content"
	"github.com/govdesk/govdesk/submissions"
)

// App is the central govdesk application. It wires together the backend
// client, the domain stores, middleware, and routes.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Log    *zap.Logger

	Backend     *backend.SQLite
	Content     *content.Store
	Auth        *auth.Store
	Submissions *submissions.Store

	loginLimiter *LoginLimiter
}

// New creates a govdesk App with the given configuration. The logger may
// be nil for tests.
func New(cfg SiteConfig, log *zap.Logger) *App {
	cfg.setDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		Config: cfg,
		Echo:   echo.New(),
		Log:    log,
	}
}

// Start initializes the backend, the stores, middleware, and routes, and
// runs the server until it is shut down.
func (a *App) Start() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("govdesk: SessionSecret is required")
	}
	if a.Config.AdminEmail == "" || a.Config.AdminPassword == "" {
		return fmt.Errorf("govdesk: AdminEmail and AdminPassword are required")
	}

	client, err := backend.Open(a.Config.DatabasePath, a.Config.UploadsDir, "/public/uploads")
	if err != nil {
		return fmt.Errorf("govdesk: open backend: %w", err)
	}
	a.Backend = client

	ctx := context.Background()
	if _, err := client.CreateUser(ctx, a.Config.AdminEmail, a.Config.AdminPassword); err != nil {
		return fmt.Errorf("govdesk: seed admin user: %w", err)
	}

	a.Content = content.NewStore(client)
	a.Auth = auth.NewStore(client, a.Log.Named("auth"))
	a.Submissions = submissions.NewStore(client, a.Log.Named("submissions"))
	if err := a.Submissions.Start(ctx); err != nil {
		// A cold cache is survivable; pages show the load error and the
		// next change event retries.
		a.Log.Warn("initial submission load failed", zap.Error(err))
	}

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	a.Log.Info("listening", zap.String("addr", a.Config.Addr))
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Console assets ship embedded; uploaded files come off disk.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/console.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/charts.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.Static("/public/uploads", a.Config.UploadsDir)

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/console/")
	})
	e.GET("/signin/", a.handleSignInPage)
	e.POST("/signin/", a.handleSignIn)
	e.POST("/signout/", a.handleSignOut)

	console := e.Group("/console", a.Auth.RequireSignIn)
	console.GET("/", a.handleDashboard)

	console.GET("/posts/", a.handlePosts)
	console.GET("/posts/add/", a.handlePostAddForm)
	console.POST("/posts/add/", a.handlePostAdd)
	console.GET("/posts/:id/", a.handlePostDetail)
	console.GET("/posts/:id/edit/", a.handlePostEditForm)
	console.POST("/posts/:id/edit/", a.handlePostEdit)
	console.POST("/posts/:id/publish/", a.handlePostPublishToggle)
	console.POST("/posts/:id/delete/", a.handlePostDelete)

	console.GET("/categories/", a.handleCategories)
	console.POST("/categories/add/", a.handleCategoryAdd)

	console.GET("/form_submits/", a.handleSubmissions)
	console.GET("/form_submits/export.csv", a.handleSubmissionsCSV)
	console.GET("/form_submits/:formType/", a.handleSubmissions)
	console.GET("/form_submits/:formType/export.csv", a.handleSubmissionsCSV)
	console.GET("/form_submits/:formType/:id/", a.handleSubmissionDetail)
	console.GET("/form_submits/:formType/:id/export.pdf", a.handleSubmissionPDF)
	console.POST("/form_submits/:formType/:id/approve/", a.handleSubmissionApprove)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Submissions != nil {
		a.Submissions.Stop()
	}
	if a.Backend != nil {
		return a.Backend.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or an error
// message suitable for startup failure when it is unset.
func MustEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("govdesk: required environment variable %s is not set", key)
	}
	return v, nil
}
