package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validYAML = `
server:
  port: 9102
  target_concurrency: 10
  metric_max_retries: 5
  window: 14d
  period: 86400
  log:
    level: info
    output: stdout
accounts:
  - account_id: "123456789012"
    account_name: prod
    access_key_id: AKIAEXAMPLE
    access_key_secret: secret
    regions: [us-east-1, us-west-2]
    audits: ["*"]
`

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, validYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9102 {
		t.Errorf("Port = %d, want 9102", cfg.Server.Port)
	}
	if cfg.Concurrency() != 10 {
		t.Errorf("Concurrency() = %d, want 10", cfg.Concurrency())
	}
	if cfg.MetricRetries() != 5 {
		t.Errorf("MetricRetries() = %d, want 5", cfg.MetricRetries())
	}
	if cfg.Window() != 14*24*time.Hour {
		t.Errorf("Window() = %v, want 336h", cfg.Window())
	}
	if cfg.Period() != 86400*time.Second {
		t.Errorf("Period() = %v, want 24h", cfg.Period())
	}
	if len(cfg.Accounts) != 1 || len(cfg.Accounts[0].Regions) != 2 {
		t.Errorf("accounts not parsed: %+v", cfg.Accounts)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("AUDIT_TEST_SECRET", "from-env")
	path := writeConfig(t, `
accounts:
  - account_id: "123456789012"
    access_key_id: AKIAEXAMPLE
    access_key_secret: ${AUDIT_TEST_SECRET}
    regions: [us-east-1]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Accounts[0].AccessKeySecret != "from-env" {
		t.Errorf("env expansion failed: %q", cfg.Accounts[0].AccessKeySecret)
	}
}

func TestLoad_EnvDefault(t *testing.T) {
	path := writeConfig(t, `
accounts:
  - account_id: "123456789012"
    access_key_id: AKIAEXAMPLE
    access_key_secret: ${AUDIT_UNSET_VAR:-fallback}
    regions: [us-east-1]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Accounts[0].AccessKeySecret != "fallback" {
		t.Errorf("env default failed: %q", cfg.Accounts[0].AccessKeySecret)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() should fail for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			"valid minimal",
			Config{Accounts: []CloudAccount{{AccountID: "1", AccessKeyID: "k", AccessKeySecret: "s", Regions: []string{"us-east-1"}}}},
			false,
		},
		{"no accounts", Config{}, true},
		{
			"missing credentials",
			Config{Accounts: []CloudAccount{{AccountID: "1", Regions: []string{"us-east-1"}}}},
			true,
		},
		{
			"empty regions",
			Config{Accounts: []CloudAccount{{AccountID: "1", AccessKeyID: "k", AccessKeySecret: "s"}}},
			true,
		},
		{
			"bad port",
			Config{
				Server:   &ServerConf{Port: 70000},
				Accounts: []CloudAccount{{AccountID: "1", AccessKeyID: "k", AccessKeySecret: "s", Regions: []string{"us-east-1"}}},
			},
			true,
		},
		{
			"bad window",
			Config{
				Server:   &ServerConf{Window: "lots"},
				Accounts: []CloudAccount{{AccountID: "1", AccessKeyID: "k", AccessKeySecret: "s", Regions: []string{"us-east-1"}}},
			},
			true,
		},
		{
			"bad log level",
			Config{
				Server:   &ServerConf{Log: &LogConfig{Level: "chatty"}},
				Accounts: []CloudAccount{{AccountID: "1", AccessKeyID: "k", AccessKeySecret: "s", Regions: []string{"us-east-1"}}},
			},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{"30d", 30 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"2h", 2 * time.Hour, false},
		{"xd", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.err)
			continue
		}
		if !tt.err && got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	if cfg.Concurrency() != 20 {
		t.Errorf("default Concurrency() = %d, want 20", cfg.Concurrency())
	}
	if cfg.MetricRetries() != 3 {
		t.Errorf("default MetricRetries() = %d, want 3", cfg.MetricRetries())
	}
	if cfg.Window() != 30*24*time.Hour {
		t.Errorf("default Window() = %v, want 720h", cfg.Window())
	}
	if cfg.Period() != 24*time.Hour {
		t.Errorf("default Period() = %v, want 24h", cfg.Period())
	}
}
