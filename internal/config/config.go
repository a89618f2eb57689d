package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Backend driver kinds.
const (
	DriverREST = "rest"
	DriverBaaS = "baas"
	DriverMock = "mock"
)

// DefaultBaseURL is used when the REST driver is selected without a base URL.
const DefaultBaseURL = "http://localhost:8080/api"

// Config aggregates all runtime settings. Variables are named SECTION_FIELD,
// e.g. SERVER_PORT or PROVISIONING_MAX_ELAPSED.
type Config struct {
	App          AppConfig
	Server       HTTPConfig
	Backend      BackendConfig
	Storage      StorageConfig
	Provisioning ProvisioningConfig
	DB           DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Context      ContextConfig
	Log          LoggerConfig
	Migrations   MigrationsConfig
	Janitor      JanitorConfig

	warnings []string
}

type AppConfig struct {
	Name string `default:"peoplesearch"`
	Env  string `default:"development"`
}

type HTTPConfig struct {
	Host          string        `default:"0.0.0.0"`
	Port          string        `default:"8080"`
	ReadTimeout   time.Duration `split_words:"true" default:"10s"`
	WriteTimeout  time.Duration `split_words:"true" default:"10s"`
	IdleTimeout   time.Duration `split_words:"true" default:"120s"`
	MaxConn       int           `split_words:"true" default:"0"`
	EnableMetrics bool          `split_words:"true" default:"false"`
}

// BackendConfig selects the client's backend driver.
type BackendConfig struct {
	Driver  string `default:"rest"`
	BaseURL string `split_words:"true"`
	// Timeout bounds each REST call; zero leaves it to the caller's context.
	Timeout time.Duration `default:"0s"`
	// ProvisionDelay makes the mock backend create profiles late.
	ProvisionDelay time.Duration `split_words:"true" default:"0s"`
	Seed           bool          `default:"true"`
}

type StorageConfig struct {
	// Path of the bbolt file holding the credential; empty keeps it in memory.
	Path string `default:"./data/session.db"`
	// MaxAge drops stored slots not written for this long; zero keeps them.
	MaxAge time.Duration `split_words:"true" default:"720h"`
}

// ProvisioningConfig bounds the wait for a freshly registered profile.
type ProvisioningConfig struct {
	InitialInterval time.Duration `split_words:"true" default:"250ms"`
	Multiplier      float64       `default:"2"`
	MaxInterval     time.Duration `split_words:"true" default:"2s"`
	MaxElapsed      time.Duration `split_words:"true" default:"10s"`
	MaxAttempts     uint64        `split_words:"true" default:"6"`
}

type DatabaseConfig struct {
	Enabled         bool          `default:"false"`
	URL             string
	Host            string        `default:"localhost"`
	Port            string        `default:"5432"`
	Name            string        `default:"peoplesearch"`
	User            string        `default:"peoplesearch"`
	Password        string
	MaxOpenConns    int           `split_words:"true" default:"25"`
	MaxIdleConns    int           `split_words:"true" default:"5"`
	MaxConnLifetime time.Duration `split_words:"true" default:"1h"`
	SSLMode         string        `split_words:"true" default:"disable"`
	ConnectTimeout  time.Duration `split_words:"true" default:"5s"`
}

type RedisConfig struct {
	Enabled  bool   `default:"false"`
	URL      string `default:"redis://localhost:6379"`
	Password string
	DB       int    `default:"0"`
	Prefix   string `default:"peoplesearch:session:"`
	// ConnectTimeout bounds the retries of the first ping.
	ConnectTimeout time.Duration `split_words:"true" default:"5s"`
}

type JWTConfig struct {
	Secret string
	Issuer string        `default:"peoplesearch"`
	TTL    time.Duration `default:"24h"`
}

type ContextConfig struct {
	RequestTimeout  time.Duration `split_words:"true" default:"5s"`
	ShutdownTimeout time.Duration `split_words:"true" default:"15s"`
}

type LoggerConfig struct {
	Level    string `default:"info"`
	Encoding string `default:"json"`
}

type MigrationsConfig struct {
	Enabled bool   `default:"true"`
	Path    string `default:"./migrations"`
}

type JanitorConfig struct {
	Schedule string `default:"@every 5m"`
}

// Load reads .env files (missing ones are ignored), then the environment.
// Missing required settings do not fail; they are reported by Warnings and
// replaced with documented defaults.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) resolve() error {
	c.Backend.Driver = strings.ToLower(strings.TrimSpace(c.Backend.Driver))
	switch c.Backend.Driver {
	case DriverREST, DriverBaaS, DriverMock:
	default:
		return fmt.Errorf("unsupported BACKEND_DRIVER: %q", c.Backend.Driver)
	}

	if c.Backend.Driver == DriverREST && strings.TrimSpace(c.Backend.BaseURL) == "" {
		c.warnings = append(c.warnings, "BACKEND_BASE_URL is not set; using "+DefaultBaseURL)
		c.Backend.BaseURL = DefaultBaseURL
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")

	if c.Backend.Driver == DriverBaaS && !c.DB.Enabled {
		c.warnings = append(c.warnings, "BACKEND_DRIVER=baas requires Postgres; enabling DB with default settings")
		c.DB.Enabled = true
	}
	if c.Backend.Driver == DriverBaaS && !c.Redis.Enabled {
		c.warnings = append(c.warnings, "BACKEND_DRIVER=baas without REDIS_ENABLED keeps sessions in process memory; a saved login is not valid in the next run")
	}
	if c.JWT.Secret == "" {
		c.warnings = append(c.warnings, "JWT_SECRET is not set; tokens are signed with an insecure development secret")
		c.JWT.Secret = "peoplesearch-dev-secret"
	}
	if c.Storage.Path == "" {
		c.warnings = append(c.warnings, "STORAGE_PATH is empty; the session will not survive restarts")
	}
	if c.DB.URL == "" {
		c.DB.URL = buildPostgresURL(c.DB)
	}
	return nil
}

// Warnings lists configuration problems that were replaced by defaults.
func (c *Config) Warnings() []string {
	return append([]string(nil), c.warnings...)
}

func buildPostgresURL(db DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		db.SSLMode,
	)
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
