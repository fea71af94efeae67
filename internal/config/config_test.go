package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/vango-dev/reactor/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func errorCode(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Scheduler.MaxUpdateCount != DefaultMaxUpdateCount {
		t.Errorf("Scheduler.MaxUpdateCount = %d, want %d", cfg.Scheduler.MaxUpdateCount, DefaultMaxUpdateCount)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if !cfg.Dev.Warnings {
		t.Error("Dev.Warnings should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v", err)
	}
}

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(dir); errorCode(err) != "F001" {
		t.Errorf("Load(empty dir) error = %v, want F001", err)
	}

	writeFile(t, dir, "reactor.json", `{
  "scheduler": {"maxUpdateCount": 10},
  "dev": {"warnings": false},
  "log": {"level": "debug"},
  "server": {"addr": ":8080", "writeTimeout": "5s"},
  "metrics": {"enabled": false}
}
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Scheduler.MaxUpdateCount != 10 {
		t.Errorf("Scheduler.MaxUpdateCount = %d, want 10", cfg.Scheduler.MaxUpdateCount)
	}
	if cfg.Dev.Warnings {
		t.Error("Dev.Warnings should be false")
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, want debug", cfg.LogLevel())
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.WriteTimeout() != 5*time.Second {
		t.Errorf("WriteTimeout() = %v, want 5s", cfg.WriteTimeout())
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false")
	}
	// Unset fields keep their defaults.
	if cfg.Server.HeartbeatInterval != "20s" || cfg.Log.Format != "text" {
		t.Errorf("defaults not applied: heartbeat %q format %q", cfg.Server.HeartbeatInterval, cfg.Log.Format)
	}
	if cfg.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), dir)
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "reactor.yaml", `
name: demo
scheduler:
  maxUpdateCount: 5
log:
  format: json
tracing:
  enabled: true
  tracerName: demo-tracer
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Name != "demo" {
		t.Errorf("Name = %q, want demo", cfg.Name)
	}
	if cfg.Scheduler.MaxUpdateCount != 5 {
		t.Errorf("Scheduler.MaxUpdateCount = %d, want 5", cfg.Scheduler.MaxUpdateCount)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.TracerName != "demo-tracer" {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should keep its default")
	}
}

func TestLoad_JSONWinsOverYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "reactor.json", `{"name": "json"}`)
	writeFile(t, dir, "reactor.yaml", "name: yaml\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Name != "json" {
		t.Errorf("Name = %q, want json", cfg.Name)
	}
}

func TestLoadFile_InvalidSyntax(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "reactor.json", `{"name": `},
		{"yaml", "reactor.yaml", "name: [unclosed\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			_, err := LoadFile(path)
			if errorCode(err) != "F002" {
				t.Errorf("LoadFile() error = %v, want F002", err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"reactor.json", "reactor.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := New()
			cfg.Name = "saved"
			cfg.Server.Addr = ":9000"
			cfg.Tracing.Enabled = true

			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo error: %v", err)
			}
			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile error: %v", err)
			}
			if diff := cmp.Diff(cfg, loaded, cmpopts.IgnoreUnexported(Config{})); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSave_WithoutPath(t *testing.T) {
	if err := New().Save(); err == nil {
		t.Error("Save() without a path should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		detail string
	}{
		{"max update count", func(c *Config) { c.Scheduler.MaxUpdateCount = 0 }, "maxUpdateCount"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"colors", func(c *Config) { c.Dev.Colors = "sometimes" }, "dev.colors"},
		{"bad duration", func(c *Config) { c.Server.WriteTimeout = "soon" }, "server.writeTimeout"},
		{"negative duration", func(c *Config) { c.Server.ReadTimeout = "-1s" }, "server.readTimeout"},
		{"heartbeat too slow", func(c *Config) { c.Server.HeartbeatInterval = "2m" }, "heartbeatInterval"},
		{"queue size", func(c *Config) { c.Server.SendQueueSize = 0 }, "sendQueueSize"},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
		{"publish endpoint", func(c *Config) { c.Publish.Endpoint = "minio:9000" }, "publish.endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if errorCode(err) != "F002" {
				t.Fatalf("Validate() = %v, want F002", err)
			}
			var e *errors.Error
			stderrors.As(err, &e)
			if !strings.Contains(e.Detail, tt.detail) {
				t.Errorf("Detail = %q, want it to mention %q", e.Detail, tt.detail)
			}
		})
	}
}

func TestDurations_FallBackToDefaults(t *testing.T) {
	cfg := New()
	cfg.Server.ReadTimeout = "bogus"
	cfg.Server.HeartbeatInterval = ""

	if cfg.ReadTimeout() != 60*time.Second {
		t.Errorf("ReadTimeout() = %v, want 60s", cfg.ReadTimeout())
	}
	if cfg.HeartbeatInterval() != 20*time.Second {
		t.Errorf("HeartbeatInterval() = %v, want 20s", cfg.HeartbeatInterval())
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "reactor.yml", "name: nested\n")
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(deep)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot() = %q, want %q", got, want)
	}
	if !Exists(root) || Exists(deep) {
		t.Errorf("Exists(root) = %v, Exists(deep) = %v; want true, false", Exists(root), Exists(deep))
	}
}
