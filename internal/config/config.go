package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Engine drivers.
const (
	DriverOpenSearch = "opensearch"
	DriverRedis      = "redis"
)

// Config holds the labsearch configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Engine  EngineConfig  `yaml:"engine"`
	Search  SearchConfig  `yaml:"search"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// EngineConfig holds search engine connection settings.
// No addrs means no engine: the service starts but every search reports it unavailable.
type EngineConfig struct {
	Driver           string   `yaml:"driver"` // opensearch, redis (default: opensearch)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"` // redis only
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	RequestTimeout   int      `yaml:"request_timeout_sec"`
}

// SearchConfig holds index registry, timeout and pagination settings.
type SearchConfig struct {
	Indexes           []string `yaml:"indexes"`     // default: entity catalog defaults
	TextFields        []string `yaml:"text_fields"` // added to the entity catalog's fields
	PerIndexTimeoutMs int      `yaml:"per_index_timeout_ms"`
	OverallTimeoutMs  int      `yaml:"overall_timeout_ms"`
	MaxWorkers        int      `yaml:"max_workers"` // 0 = one worker per index search
	DefaultPerPage    int      `yaml:"default_per_page"`
	MaxPerPage        int      `yaml:"max_per_page"`
	EnsureIndexes     bool     `yaml:"ensure_indexes"`
}

// PerIndexTimeout returns the per-index timeout as a duration.
func (s SearchConfig) PerIndexTimeout() time.Duration {
	return time.Duration(s.PerIndexTimeoutMs) * time.Millisecond
}

// OverallTimeout returns the overall multi-search timeout as a duration.
func (s SearchConfig) OverallTimeout() time.Duration {
	return time.Duration(s.OverallTimeoutMs) * time.Millisecond
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, when present, is loaded first.
func Load(env string) (Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	return LoadFile(findConfigPath(env))
}

// LoadFile reads, expands and validates one configuration file.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadDotEnv loads variables from the given .env files without overriding ones
// already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if !fileExists(p) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Must outlast the overall search timeout.
		c.HTTP.WriteTimeoutSec = 35
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Engine.Driver == "" {
		c.Engine.Driver = DriverOpenSearch
	}
	if c.Engine.ReadinessTimeout <= 0 {
		c.Engine.ReadinessTimeout = 10
	}
	if c.Engine.RequestTimeout <= 0 {
		c.Engine.RequestTimeout = 30
	}
	if c.Engine.KeyPrefix == "" {
		c.Engine.KeyPrefix = "labsearch:"
	}
	if c.Search.PerIndexTimeoutMs <= 0 {
		c.Search.PerIndexTimeoutMs = 10_000
	}
	if c.Search.OverallTimeoutMs <= 0 {
		c.Search.OverallTimeoutMs = 30_000
	}
	if c.Search.DefaultPerPage <= 0 {
		c.Search.DefaultPerPage = 20
	}
	if c.Search.MaxPerPage <= 0 {
		c.Search.MaxPerPage = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Engine.Driver {
	case DriverOpenSearch, DriverRedis:
	default:
		return fmt.Errorf("engine.driver must be %q or %q, got %q", DriverOpenSearch, DriverRedis, c.Engine.Driver)
	}
	if c.Search.DefaultPerPage > c.Search.MaxPerPage {
		return fmt.Errorf("search.default_per_page (%d) exceeds search.max_per_page (%d)",
			c.Search.DefaultPerPage, c.Search.MaxPerPage)
	}
	if c.Search.MaxWorkers < 0 {
		return fmt.Errorf("search.max_workers must not be negative, got %d", c.Search.MaxWorkers)
	}
	for _, name := range c.Search.Indexes {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("search.indexes must not contain empty names")
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
