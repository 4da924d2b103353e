// Package config loads talentsearch settings from defaults, an optional YAML
// file, a .env file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/smallnest/talentsearch/log"
	"github.com/smallnest/talentsearch/oracle"
	"github.com/smallnest/talentsearch/search"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Drivers lists the supported session store drivers.
var Drivers = []string{DriverMemory, DriverRedis, DriverPostgres, DriverSQLite}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all talentsearch configuration.
type Config struct {
	Oracle  OracleConfig  `yaml:"oracle"`
	Agent   AgentConfig   `yaml:"agent"`
	Store   StoreConfig   `yaml:"store"`
	Search  SearchConfig  `yaml:"search"`
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
}

// OracleConfig configures the completion provider. An empty APIKey runs
// the assistant on its fallbacks only.
type OracleConfig struct {
	Provider    string        `yaml:"provider"` // langchain, openai
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// AgentConfig bounds turns.
type AgentConfig struct {
	TurnTimeout time.Duration `yaml:"turn_timeout"`
}

// StoreConfig selects the session backend.
type StoreConfig struct {
	Driver string `yaml:"driver"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
	TableName   string `yaml:"table_name"`

	// MaxAge is how long an idle session survives; ReapInterval is how
	// often idle sessions are removed.
	MaxAge       time.Duration `yaml:"max_age"`
	ReapInterval time.Duration `yaml:"reap_interval"`
}

// SearchConfig selects the search backend.
type SearchConfig struct {
	Backend          string   `yaml:"backend"` // memory, elasticsearch
	ElasticAddresses []string `yaml:"elasticsearch_urls"`
	PeopleIndex      string   `yaml:"people_index"`
	CompanyIndex     string   `yaml:"company_index"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	Mode            string        `yaml:"mode"` // gin mode: debug, release, test
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Oracle: OracleConfig{
			Provider:    oracle.ProviderLangChain,
			Model:       "gpt-4o-mini",
			Temperature: oracle.DefaultTemperature,
			Timeout:     30 * time.Second,
		},
		Agent: AgentConfig{TurnTimeout: 2 * time.Minute},
		Store: StoreConfig{
			Driver:       DriverMemory,
			RedisAddr:    "localhost:6379",
			SQLitePath:   "talentsearch.db",
			TableName:    "chat_sessions",
			MaxAge:       24 * time.Hour,
			ReapInterval: 10 * time.Minute,
		},
		Search: SearchConfig{
			Backend:      search.BackendMemory,
			PeopleIndex:  "people",
			CompanyIndex: "companies",
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			Mode:            "release",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load builds the configuration. path names an optional YAML file; a
// missing file is not an error. envFiles are loaded with godotenv before
// the environment is read and default to ".env". Variables already set in
// the environment win over .env entries.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	setString(&c.Oracle.APIKey, "OPENAI_API_KEY")
	setString(&c.Oracle.Model, "OPENAI_MODEL")
	setString(&c.Oracle.BaseURL, "OPENAI_BASE_URL")
	setString(&c.Oracle.Provider, "ORACLE_PROVIDER")

	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.RedisAddr, "REDIS_ADDR")
	setString(&c.Store.DatabaseURL, "DATABASE_URL")
	setString(&c.Store.SQLitePath, "SQLITE_PATH")

	setString(&c.Search.Backend, "SEARCH_BACKEND")
	setList(&c.Search.ElasticAddresses, "ELASTICSEARCH_URL")

	setString(&c.HTTP.Addr, "HTTP_ADDR")
	setString(&c.HTTP.Mode, "GIN_MODE")
	setList(&c.HTTP.CORSOrigins, "CORS_ORIGINS")

	setString(&c.Logging.Level, "LOG_LEVEL")

	for key, dst := range map[string]*time.Duration{
		"SESSION_MAX_AGE": &c.Store.MaxAge,
		"ORACLE_TIMEOUT":  &c.Oracle.Timeout,
		"TURN_TIMEOUT":    &c.Agent.TurnTimeout,
	} {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
			}
			*dst = d
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	switch strings.ToLower(c.Oracle.Provider) {
	case oracle.ProviderLangChain, oracle.ProviderOpenAI:
	default:
		fail("oracle provider %q (valid: %s, %s)", c.Oracle.Provider, oracle.ProviderLangChain, oracle.ProviderOpenAI)
	}
	if c.Oracle.Timeout <= 0 {
		fail("oracle timeout must be positive")
	}
	if c.Agent.TurnTimeout <= 0 {
		fail("turn timeout must be positive")
	}

	if !slices.Contains(Drivers, c.Store.Driver) {
		fail("store driver %q (valid: %v)", c.Store.Driver, Drivers)
	}
	switch c.Store.Driver {
	case DriverRedis:
		if c.Store.RedisAddr == "" {
			fail("redis store requires REDIS_ADDR")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			fail("postgres store requires DATABASE_URL")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			fail("sqlite store requires SQLITE_PATH")
		}
	}
	if c.Store.MaxAge <= 0 {
		fail("session max age must be positive")
	}

	switch c.Search.Backend {
	case search.BackendMemory:
	case search.BackendElastic:
		if len(c.Search.ElasticAddresses) == 0 {
			fail("elasticsearch backend requires ELASTICSEARCH_URL")
		}
	default:
		fail("search backend %q", c.Search.Backend)
	}

	if c.HTTP.Addr == "" {
		fail("http addr is empty")
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		fail("log level: %v", err)
	}
	return errors.Join(errs...)
}

// OracleSettings converts the oracle settings for oracle.New.
func (c *Config) OracleSettings() oracle.Config {
	return oracle.Config{
		Provider:    c.Oracle.Provider,
		APIKey:      c.Oracle.APIKey,
		Model:       c.Oracle.Model,
		BaseURL:     c.Oracle.BaseURL,
		Temperature: c.Oracle.Temperature,
		Timeout:     c.Oracle.Timeout,
	}
}

// SearchSettings converts the search settings for search.New.
func (c *Config) SearchSettings() search.Config {
	return search.Config{
		Backend: c.Search.Backend,
		Elastic: search.ElasticOptions{
			Addresses:    c.Search.ElasticAddresses,
			PeopleIndex:  c.Search.PeopleIndex,
			CompanyIndex: c.Search.CompanyIndex,
		},
	}
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.LogLevel {
	level, err := log.ParseLevel(c.Logging.Level)
	if err != nil {
		return log.LogLevelInfo
	}
	return level
}

// HasOracle reports whether an API key is configured.
func (c *Config) HasOracle() bool {
	return c.Oracle.APIKey != ""
}
