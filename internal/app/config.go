package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"HTTP listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (STOREFRONT_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Redis       RedisConfig
	Session     SessionConfig
	Catalog     CatalogConfig
	Graceful    GracefulConfig
}

// RedisConfig selects the session backend. An empty Addr keeps sessions in
// process memory.
type RedisConfig struct {
	Addr     string `default:"" usage:"Redis address for sessions; empty uses in-memory sessions"`
	Password string `default:"" usage:"Redis password"`
	DB       int    `default:"0" usage:"Redis database number"`
}

// SessionConfig controls the visitor session cookie.
type SessionConfig struct {
	CookieName string        `default:"storefront_session" usage:"Session cookie name" flag:"session-cookie"`
	TTL        time.Duration `default:"24h" usage:"Session lifetime, refreshed on every write" flag:"session-ttl"`
	Secure     bool          `default:"false" usage:"Mark the session cookie Secure" flag:"session-secure"`
}

// CatalogConfig controls product listing.
type CatalogConfig struct {
	PageSize int `default:"4" usage:"Products per catalog page" flag:"page-size"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML files,
// then applies platform defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database URL is required: set STOREFRONT_DATABASE_URL or DATABASE_URL")
	}
	if c.Catalog.PageSize <= 0 {
		return errors.Errorf("catalog page size must be positive, got %d", c.Catalog.PageSize)
	}
	if c.Session.TTL <= 0 {
		return errors.Errorf("session TTL must be positive, got %s", c.Session.TTL)
	}
	return nil
}

// applyPlatformDefaults maps the DATABASE_URL and PORT variables set by
// hosting platforms onto the STOREFRONT_ configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
