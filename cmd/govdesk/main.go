// Command govdesk runs the administrative console. All configuration
// comes from environment variables; see SiteConfig for defaults.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/govdesk/govdesk"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := configFromEnv()
	if err != nil {
		log.Fatal("configuration", zap.Error(err))
	}

	app := govdesk.New(cfg, log)
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func configFromEnv() (govdesk.SiteConfig, error) {
	adminEmail, err := govdesk.MustEnv("ADMIN_EMAIL")
	if err != nil {
		return govdesk.SiteConfig{}, err
	}
	adminPassword, err := govdesk.MustEnv("ADMIN_PASSWORD")
	if err != nil {
		return govdesk.SiteConfig{}, err
	}
	sessionSecret, err := govdesk.MustEnv("SESSION_SECRET")
	if err != nil {
		return govdesk.SiteConfig{}, err
	}
	return govdesk.SiteConfig{
		Name:          govdesk.EnvOr("SITE_NAME", "GovDesk"),
		URL:           govdesk.EnvOr("SITE_URL", "http://localhost:3000"),
		Addr:          govdesk.EnvOr("ADDR", ":3000"),
		DatabasePath:  govdesk.EnvOr("DATABASE_PATH", "data/govdesk.db"),
		UploadsDir:    govdesk.EnvOr("UPLOADS_DIR", "data/uploads"),
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
		SessionSecret: sessionSecret,
		CookieSecure:  os.Getenv("COOKIE_SECURE") == "true",
	}, nil
}
