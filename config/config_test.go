package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
source:
  url: https://example.com/outage/
  timeout_seconds: 5
watch:
  interval_minutes: 15
storage:
  path: /tmp/test.db
telegram:
  enabled: true
  token: "123:abc"
mqtt:
  enabled: false
metrics:
  prometheus_enabled: true
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "cfg.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.URL != "https://example.com/outage/" {
		t.Fatalf("source url = %q", cfg.Source.URL)
	}
	if cfg.Watch.IntervalMinutes != 15 {
		t.Fatalf("interval = %d", cfg.Watch.IntervalMinutes)
	}
	if cfg.Storage.Path != "/tmp/test.db" {
		t.Fatalf("storage path = %q", cfg.Storage.Path)
	}
	if !cfg.Telegram.Enabled || cfg.Telegram.Token != "123:abc" {
		t.Fatalf("telegram config = %+v", cfg.Telegram)
	}
	// defaults applied to sections the file omits
	if cfg.Watch.SendTimeoutSeconds == 0 {
		t.Fatal("send timeout default not applied")
	}
	if cfg.Metrics.PrometheusPort != ":9090" {
		t.Fatalf("prometheus port = %q", cfg.Metrics.PrometheusPort)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ZW_WATCH__INTERVAL_MINUTES", "5")
	cfg, err := Load(writeConfig(t, "cfg.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Watch.IntervalMinutes != 5 {
		t.Fatalf("env override ignored: interval = %d", cfg.Watch.IntervalMinutes)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, err := Load(writeConfig(t, "cfg.toml", "x = 1")); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	bad := `
telegram:
  enabled: true
`
	if _, err := Load(writeConfig(t, "cfg.yaml", bad)); err == nil {
		t.Fatal("expected validation error for enabled telegram without token")
	}
}
