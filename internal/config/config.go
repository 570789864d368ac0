package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Scoring providers.
const (
	ScoringHeuristic = "heuristic"
	ScoringInference = "inference"
)

// Niche profilers.
const (
	NicheKeyword   = "keyword"
	NicheEmbedding = "embedding"
)

// Config holds the influencersphere service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	App       AppConfig       `yaml:"app"`
	Auth      AuthConfig      `yaml:"auth"`
	Search    SearchConfig    `yaml:"search"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Niche     NicheConfig     `yaml:"niche"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig maps API keys to tenant ids. Empty means development mode (X-Tenant-ID header).
type AuthConfig struct {
	Tenants map[string]string `yaml:"tenants"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds document store settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, sqlite, memory (default: memory)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	SQLitePath       string   `yaml:"sqlite_path"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// AppConfig identifies the application partition and the service principal.
type AppConfig struct {
	AppID         string `yaml:"app_id"`
	ServiceTenant string `yaml:"service_tenant"`
}

// SearchConfig holds pagination and scoring fan-out settings.
type SearchConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
	Workers         int `yaml:"workers"`
}

// ScoringConfig selects and configures the market scorer.
type ScoringConfig struct {
	Provider  string          `yaml:"provider"` // heuristic, inference (default: heuristic)
	CacheSize int             `yaml:"cache_size"`
	Inference InferenceConfig `yaml:"inference"`
}

// InferenceConfig holds remote model endpoint settings.
type InferenceConfig struct {
	BaseURL         string  `yaml:"base_url"`
	Model           string  `yaml:"model"`
	APIKey          string  `yaml:"api_key"`
	TimeoutSec      int     `yaml:"timeout_sec"`
	MaxRetries      int     `yaml:"max_retries"`
	RatePerSecond   float64 `yaml:"rate_per_second"` // 0 = unlimited
	Burst           int     `yaml:"burst"`
	RetryDelayMS    int     `yaml:"retry_delay_ms"`
	MaxRetryDelayMS int     `yaml:"max_retry_delay_ms"`
}

// NicheConfig selects the niche profiler.
type NicheConfig struct {
	Provider   string `yaml:"provider"` // keyword, embedding (default: keyword)
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// SchedulerConfig holds background evaluation settings.
type SchedulerConfig struct {
	Enabled     *bool `yaml:"enabled"` // default: true
	IntervalSec int   `yaml:"interval_sec"`
	GraceSec    int   `yaml:"grace_sec"`
}

// IsEnabled reports whether serve should start the scheduler.
func (s SchedulerConfig) IsEnabled() bool { return s.Enabled == nil || *s.Enabled }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, substitutes ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMemory
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "influencersphere:"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "influencersphere.db"
	}
	if c.App.AppID == "" {
		c.App.AppID = "influencersphere"
	}
	if c.App.ServiceTenant == "" {
		c.App.ServiceTenant = "system"
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 25
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Search.Workers <= 0 {
		c.Search.Workers = 4
	}
	if c.Scoring.Provider == "" {
		c.Scoring.Provider = ScoringHeuristic
	}
	if c.Scoring.CacheSize <= 0 {
		c.Scoring.CacheSize = 4096
	}
	if c.Scoring.Inference.TimeoutSec <= 0 {
		c.Scoring.Inference.TimeoutSec = 5
	}
	if c.Niche.Provider == "" {
		c.Niche.Provider = NicheKeyword
	}
	if c.Niche.Model == "" {
		c.Niche.Model = "text-embedding-3-small"
	}
	if c.Scheduler.IntervalSec <= 0 {
		c.Scheduler.IntervalSec = 300
	}
	if c.Scheduler.GraceSec <= 0 {
		c.Scheduler.GraceSec = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Database.Driver {
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for the redis driver")
		}
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("database.driver must be \"redis\", \"sqlite\" or \"memory\", got %q", c.Database.Driver)
	}

	if strings.ContainsRune(c.App.AppID, '/') || strings.ContainsRune(c.App.ServiceTenant, '/') {
		return fmt.Errorf("app.app_id and app.service_tenant must not contain '/'")
	}
	for key, tenant := range c.Auth.Tenants {
		if key == "" || tenant == "" {
			return fmt.Errorf("auth.tenants entries must have a non-empty key and tenant")
		}
		if strings.ContainsRune(tenant, '/') {
			return fmt.Errorf("auth.tenants: tenant %q must not contain '/'", tenant)
		}
	}

	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size (%d) must not exceed search.max_page_size (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}

	switch c.Scoring.Provider {
	case ScoringHeuristic:
	case ScoringInference:
		if c.Scoring.Inference.BaseURL == "" || c.Scoring.Inference.Model == "" {
			return fmt.Errorf("scoring.inference.base_url and scoring.inference.model are required")
		}
		if c.Scoring.Inference.RatePerSecond < 0 {
			return fmt.Errorf("scoring.inference.rate_per_second must be non-negative")
		}
	default:
		return fmt.Errorf("scoring.provider must be \"heuristic\" or \"inference\", got %q", c.Scoring.Provider)
	}

	switch c.Niche.Provider {
	case NicheKeyword:
	case NicheEmbedding:
		if c.Niche.APIKey == "" {
			return fmt.Errorf("niche.api_key is required for the embedding profiler")
		}
	default:
		return fmt.Errorf("niche.provider must be \"keyword\" or \"embedding\", got %q", c.Niche.Provider)
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
