package govdesk

// SiteConfig holds all configuration for a govdesk console instance.
type SiteConfig struct {
	Name string // Console name shown in the header (default "GovDesk")
	URL  string // Canonical URL (default "http://localhost:3000")

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/govdesk.db")
	UploadsDir   string // Uploaded file root (default "data/uploads")

	AdminEmail    string // Required: seeded reviewer account
	AdminPassword string // Required: seeded reviewer password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "GovDesk"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/govdesk.db"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "data/uploads"
	}
}
