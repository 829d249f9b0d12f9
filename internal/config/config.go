// Package config loads claimestimate settings from an optional YAML file and
// the environment. Environment variables win over the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joelkehle/claimestimate/internal/claims"
	"github.com/joelkehle/claimestimate/internal/oracle"
	"github.com/joelkehle/claimestimate/internal/storage"
)

const appDir = "claimestimate"

type Config struct {
	Language  string          `yaml:"language"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Store     StoreConfig     `yaml:"store"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Report    ReportConfig    `yaml:"report"`
}

type OracleConfig struct {
	Provider        string `yaml:"provider"` // anthropic, gemini
	Model           string `yaml:"model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	Timeout         string `yaml:"timeout"`
	MaxAttempts     int    `yaml:"max_attempts"`
}

type StoreConfig struct {
	Backend       string `yaml:"backend"` // memory, file, sqlite, postgres, redis
	Path          string `yaml:"path"`
	DSN           string `yaml:"dsn"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

type ReportConfig struct {
	ChromePath string `yaml:"chrome_path"`
}

// Dir is where the config file and the default file store live.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, appDir)
}

func DefaultPath() string { return filepath.Join(Dir(), "config.yaml") }

func DefaultConfig() *Config {
	return &Config{
		Language: string(claims.DefaultLanguage),
		Oracle: OracleConfig{
			Provider:    oracle.ProviderAnthropic,
			Timeout:     oracle.DefaultTimeout.String(),
			MaxAttempts: oracle.DefaultMaxAttempts,
		},
		Store: StoreConfig{
			Backend:     storage.BackendFile,
			Path:        filepath.Join(Dir(), "state.json"),
			RedisPrefix: storage.DefaultRedisPrefix,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "claimestimate",
		},
	}
}

// Load reads path when it exists, then applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (c *Config) applyEnvOverrides() {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setString(&c.Oracle.Provider, "CLAIMESTIMATE_PROVIDER")
	setString(&c.Oracle.Model, "CLAIMESTIMATE_MODEL")
	setString(&c.Oracle.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&c.Oracle.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.Oracle.Timeout, "CLAIMESTIMATE_TIMEOUT")
	if v := strings.TrimSpace(os.Getenv("CLAIMESTIMATE_MAX_ATTEMPTS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Oracle.MaxAttempts = n
		}
	}
	setString(&c.Store.Backend, "CLAIMESTIMATE_STORE")
	setString(&c.Store.Path, "CLAIMESTIMATE_STORE_PATH")
	setString(&c.Store.DSN, "CLAIMESTIMATE_STORE_DSN")
	setString(&c.Store.RedisAddr, "CLAIMESTIMATE_REDIS_ADDR")
	setString(&c.Language, "CLAIMESTIMATE_LANG")
	setString(&c.Logging.Level, "CLAIMESTIMATE_LOG_LEVEL")
	setString(&c.Logging.Format, "CLAIMESTIMATE_LOG_FORMAT")
	setString(&c.Telemetry.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&c.Report.ChromePath, "CHROME_PATH")
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Oracle.Provider) {
	case oracle.ProviderAnthropic, oracle.ProviderGemini:
	default:
		return fmt.Errorf("unknown oracle provider %q", c.Oracle.Provider)
	}
	if _, err := c.parseTimeout(); err != nil {
		return err
	}
	if c.Oracle.MaxAttempts < 1 {
		return fmt.Errorf("oracle max_attempts must be at least 1, got %d", c.Oracle.MaxAttempts)
	}
	switch strings.ToLower(c.Store.Backend) {
	case storage.BackendMemory, storage.BackendFile, storage.BackendSQLite, storage.BackendPostgres, storage.BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	return nil
}

// APIKey returns the credential for the configured provider. It may be
// blank; the oracle client reports that on first use.
func (c *Config) APIKey() string {
	if strings.EqualFold(c.Oracle.Provider, oracle.ProviderGemini) {
		return c.Oracle.GeminiAPIKey
	}
	return c.Oracle.AnthropicAPIKey
}

func (c *Config) OracleTimeout() time.Duration {
	d, err := c.parseTimeout()
	if err != nil {
		return oracle.DefaultTimeout
	}
	return d
}

func (c *Config) parseTimeout() (time.Duration, error) {
	if strings.TrimSpace(c.Oracle.Timeout) == "" {
		return oracle.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Oracle.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid oracle timeout %q: %w", c.Oracle.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("oracle timeout must not be negative")
	}
	return d, nil
}

func (c *Config) Lang() claims.Language { return claims.ParseLanguage(c.Language) }

func (c *Config) StoreOptions() storage.Options {
	return storage.Options{
		Backend: strings.ToLower(c.Store.Backend),
		Path:    c.Store.Path,
		DSN:     c.Store.DSN,
		Redis: storage.RedisConfig{
			Addr:     c.Store.RedisAddr,
			Password: c.Store.RedisPassword,
			DB:       c.Store.RedisDB,
			Prefix:   c.Store.RedisPrefix,
		},
	}
}
