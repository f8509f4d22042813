package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port          string        `env:"PORT,           default=8080"`
	Env           string        `env:"ENV,            default=development"`
	LogLevel      string        `env:"LOG_LEVEL,      default=info"`
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL,    default=24h"`
	CookieSecure  bool          `env:"COOKIE_SECURE,  default=false"`

	API      APIConfig
	Query    QueryConfig
	Breaker  BreakerConfig
	Activity ActivityConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

// APIConfig points at the remote Roots REST API.
type APIConfig struct {
	BaseURL          string        `env:"API_BASE_URL,       default=http://localhost:4000"`
	Timeout          time.Duration `env:"API_TIMEOUT,        default=15s"`
	UsersPageSize    int           `env:"USERS_PAGE_SIZE,    default=10"`
	RequestsPageSize int           `env:"REQUESTS_PAGE_SIZE, default=20"`
	UploadMaxBytes   int64         `env:"UPLOAD_MAX_BYTES,   default=5242880"`
}

type QueryConfig struct {
	StaleTime     time.Duration `env:"QUERY_STALE_TIME,     default=0s"`
	Retry         int           `env:"QUERY_RETRY,          default=0"`
	WorkspaceIdle time.Duration `env:"WORKSPACE_IDLE,       default=30m"`
	SweepInterval time.Duration `env:"WORKSPACE_SWEEP,      default=5m"`
	InboxSize     int           `env:"NOTIFICATION_BUFFER,  default=50"`
}

type BreakerConfig struct {
	MaxRequests  uint32        `env:"BREAKER_MAX_REQUESTS,  default=1"`
	Interval     time.Duration `env:"BREAKER_INTERVAL,      default=60s"`
	Timeout      time.Duration `env:"BREAKER_TIMEOUT,       default=30s"`
	FailureRatio float64       `env:"BREAKER_FAILURE_RATIO, default=0.5"`
	MinRequests  uint32        `env:"BREAKER_MIN_REQUESTS,  default=5"`
}

type ActivityConfig struct {
	Workers int `env:"ACTIVITY_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=roots_console"`
	AppName  string `env:"MONGO_APP_NAME, default=admin-console"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// IsDevelopment reports whether the console runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SessionSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("SESSION_SECRET is required outside development")
		}
		c.SessionSecret = "development-only-session-secret"
	}
	if c.API.BaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	if c.API.UsersPageSize <= 0 || c.API.RequestsPageSize <= 0 {
		return errors.New("page sizes must be positive")
	}
	return nil
}
