package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("expected Driver=memory, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Database.KeyPrefix != "influencersphere:" {
		t.Errorf("expected KeyPrefix=influencersphere:, got %q", cfg.Database.KeyPrefix)
	}
	if cfg.App.AppID != "influencersphere" || cfg.App.ServiceTenant != "system" {
		t.Errorf("unexpected app defaults %+v", cfg.App)
	}
	if cfg.Search.DefaultPageSize != 25 || cfg.Search.MaxPageSize != 100 || cfg.Search.Workers != 4 {
		t.Errorf("unexpected search defaults %+v", cfg.Search)
	}
	if cfg.Scoring.Provider != ScoringHeuristic {
		t.Errorf("expected scoring provider heuristic, got %q", cfg.Scoring.Provider)
	}
	if cfg.Niche.Provider != NicheKeyword {
		t.Errorf("expected niche provider keyword, got %q", cfg.Niche.Provider)
	}
	if cfg.Scheduler.IntervalSec != 300 {
		t.Errorf("expected IntervalSec=300, got %d", cfg.Scheduler.IntervalSec)
	}
	if cfg.Scheduler.GraceSec != 5 {
		t.Errorf("expected GraceSec=5, got %d", cfg.Scheduler.GraceSec)
	}
	if !cfg.Scheduler.IsEnabled() {
		t.Error("scheduler should be enabled by default")
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 9000},
		Scheduler: SchedulerConfig{IntervalSec: 60},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 {
		t.Errorf("expected Port=9000, got %d", cfg.HTTP.Port)
	}
	if cfg.Scheduler.IntervalSec != 60 {
		t.Errorf("expected IntervalSec=60, got %d", cfg.Scheduler.IntervalSec)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"port out of range", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "valkey" }, "database.driver"},
		{"redis without addrs", func(c *Config) { c.Database.Driver = DriverRedis }, "database.addrs"},
		{"redis with addrs", func(c *Config) {
			c.Database.Driver = DriverRedis
			c.Database.Addrs = []string{"localhost:6379"}
		}, ""},
		{"sqlite", func(c *Config) { c.Database.Driver = DriverSQLite }, ""},
		{"slash in app id", func(c *Config) { c.App.AppID = "a/b" }, "app.app_id"},
		{"empty tenant", func(c *Config) { c.Auth.Tenants = map[string]string{"key": ""} }, "auth.tenants"},
		{"slash in tenant", func(c *Config) { c.Auth.Tenants = map[string]string{"key": "a/b"} }, "auth.tenants"},
		{"default page above max", func(c *Config) { c.Search.DefaultPageSize = 500 }, "search.default_page_size"},
		{"unknown scorer", func(c *Config) { c.Scoring.Provider = "oracle" }, "scoring.provider"},
		{"inference without endpoint", func(c *Config) { c.Scoring.Provider = ScoringInference }, "scoring.inference"},
		{"inference with endpoint", func(c *Config) {
			c.Scoring.Provider = ScoringInference
			c.Scoring.Inference.BaseURL = "http://model:8501"
			c.Scoring.Inference.Model = "market"
		}, ""},
		{"embedding niche without key", func(c *Config) { c.Niche.Provider = NicheEmbedding }, "niche.api_key"},
		{"unknown niche provider", func(c *Config) { c.Niche.Provider = "llm" }, "niche.provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("IS_TEST_KEY", "secret")

	cfg, err := Parse([]byte(`
http:
  port: ${IS_TEST_PORT:-8181}
auth:
  tenants:
    ${IS_TEST_KEY}: alice
scheduler:
  enabled: false
  interval_sec: 30
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.HTTP.Port != 8181 {
		t.Errorf("expected Port=8181 from default, got %d", cfg.HTTP.Port)
	}
	if cfg.Auth.Tenants["secret"] != "alice" {
		t.Errorf("expected tenant mapping from env, got %v", cfg.Auth.Tenants)
	}
	if cfg.Scheduler.IsEnabled() || cfg.Scheduler.IntervalSec != 30 {
		t.Errorf("unexpected scheduler config %+v", cfg.Scheduler)
	}
	if cfg.Scheduler.GraceSec != 5 {
		t.Errorf("expected GraceSec default, got %d", cfg.Scheduler.GraceSec)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("load local config: %v", err)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("local config should use the memory driver, got %q", cfg.Database.Driver)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("IS_SET", "value")

	got := string(expandEnvVars([]byte("a=${IS_SET} b=${IS_UNSET:-fallback} c=${IS_UNSET}")))
	if got != "a=value b=fallback c=" {
		t.Errorf("got %q", got)
	}
}
