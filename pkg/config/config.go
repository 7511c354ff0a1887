package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	CacheBackendFile     = "file"
	CacheBackendBadger   = "badger"
	CacheBackendPostgres = "postgres"
)

type Config struct {
	App struct {
		Env       string `yaml:"env" env:"APP_ENV" env-default:"development"`
		Port      int    `yaml:"port" env:"APP_PORT" env-default:"8080"`
		SentryUrl string `yaml:"sentry_url" env:"SENTRY_URL"`
	} `yaml:"app"`
	Paths struct {
		DataPath      string `yaml:"data_path" env:"DATA_PATH"`
		PublicPath    string `yaml:"public_path" env:"PUBLIC_PATH"`
		PublicPathURL string `yaml:"public_path_url" env:"PUBLIC_PATH_URL"`
		RepostConf    string `yaml:"repost_conf" env:"REPOST_CONF"`
	} `yaml:"paths"`
	Facebook struct {
		AccessToken       string        `yaml:"access_token" env:"FACEBOOK_ACCESS_TOKEN"`
		APIURL            string        `yaml:"api_url" env:"FACEBOOK_API_URL" env-default:"https://graph.facebook.com/"`
		Timeout           time.Duration `yaml:"timeout" env:"FACEBOOK_TIMEOUT" env-default:"30s"`
		RequestsPerSecond float64       `yaml:"requests_per_second" env:"FACEBOOK_REQUESTS_PER_SECOND" env-default:"2"`
		Burst             int           `yaml:"burst" env:"FACEBOOK_BURST" env-default:"5"`
	} `yaml:"facebook"`
	Parser struct {
		FetchLimit           int           `yaml:"fetch_limit" env:"PARSER_FETCH_LIMIT" env-default:"10"`
		DefaultCheckInterval time.Duration `yaml:"default_check_interval" env:"PARSER_DEFAULT_CHECK_INTERVAL" env-default:"5m"`
		StartupDelay         time.Duration `yaml:"startup_delay" env:"PARSER_STARTUP_DELAY" env-default:"5s"`
		ShutdownTimeout      time.Duration `yaml:"shutdown_timeout" env:"PARSER_SHUTDOWN_TIMEOUT" env-default:"30s"`
	} `yaml:"parser"`
	Cache struct {
		Backend string `yaml:"backend" env:"CACHE_BACKEND" env-default:"file"`
	} `yaml:"cache"`
	Postgres struct {
		Port    int    `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `yaml:"host" env:"POSTGRES_HOST"`
		User    string `yaml:"user" env:"POSTGRES_USER"`
		Pass    string `yaml:"pass" env:"POSTGRES_PASS"`
		Name    string `yaml:"name" env:"POSTGRES_NAME"`
		SslMode string `yaml:"ssl_mode" env:"POSTGRES_SSL_MODE" env-default:"disable"`
	} `yaml:"postgres"`
	Telegram struct {
		Token string `yaml:"token" env:"TELEGRAM_TOKEN"`
		User  int64  `yaml:"user" env:"TELEGRAM_USER"`
	} `yaml:"telegram"`
}

// New reads the YAML file named by CONFIG_PATH (./main.yml by default) when it
// exists and then applies environment overrides.
func New() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./main.yml"
	}
	return Load(path)
}

func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if _, statErr := os.Stat(path); statErr == nil {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		help, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("failed to read configuration: %w\n%s", err, help)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Paths.PublicPathURL = strings.TrimSuffix(cfg.Paths.PublicPathURL, "/")

	return cfg, nil
}

// Validate checks the settings the bot cannot start without. The access token
// is checked separately by the bootstrap so it can fail with its own code.
func (c *Config) Validate() error {
	if c.Paths.DataPath == "" {
		return fmt.Errorf("DATA_PATH must be set")
	}
	if c.Paths.PublicPath == "" {
		return fmt.Errorf("PUBLIC_PATH must be set")
	}
	if c.Paths.PublicPathURL == "" {
		return fmt.Errorf("PUBLIC_PATH_URL must be set")
	}
	u, err := url.Parse(c.Paths.PublicPathURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("PUBLIC_PATH_URL %q is not a valid absolute URL", c.Paths.PublicPathURL)
	}
	if c.Parser.FetchLimit <= 0 {
		return fmt.Errorf("PARSER_FETCH_LIMIT must be positive")
	}
	if c.Parser.DefaultCheckInterval <= 0 {
		return fmt.Errorf("PARSER_DEFAULT_CHECK_INTERVAL must be positive")
	}

	switch c.Cache.Backend {
	case CacheBackendFile, CacheBackendBadger, CacheBackendPostgres:
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend)
	}

	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}
