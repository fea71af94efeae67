package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactor/internal/errors"
)

// Config file names, in lookup order.
var FileNames = []string{"reactor.json", "reactor.yaml", "reactor.yml"}

const (
	// DefaultAddr is the default listen address of reactor serve.
	DefaultAddr = "localhost:3000"

	// DefaultMaxUpdateCount is how often one watcher may run in a single
	// flush before it is reported as an infinite update loop.
	DefaultMaxUpdateCount = 100

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "reactor"
)

// Config represents a reactor.json or reactor.yaml file.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
	Dev       DevConfig       `json:"dev" yaml:"dev"`
	Log       LogConfig       `json:"log" yaml:"log"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
	Tracing   TracingConfig   `json:"tracing" yaml:"tracing"`
	Publish   PublishConfig   `json:"publish" yaml:"publish"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SchedulerConfig configures the watcher scheduler.
type SchedulerConfig struct {
	// MaxUpdateCount bounds the runs of one watcher per flush.
	MaxUpdateCount int `json:"maxUpdateCount,omitempty" yaml:"maxUpdateCount,omitempty"`
}

// DevConfig contains development settings.
type DevConfig struct {
	// Warnings enables developer warnings.
	Warnings bool `json:"warnings" yaml:"warnings"`

	// Colors forces colored error output on or off. Empty detects the
	// terminal.
	Colors string `json:"colors,omitempty" yaml:"colors,omitempty"`
}

// LogConfig configures slog output.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// ServerConfig configures reactor serve and its websocket sessions.
// Durations use time.ParseDuration syntax, e.g. "10s".
type ServerConfig struct {
	Addr              string `json:"addr,omitempty" yaml:"addr,omitempty"`
	ReadTimeout       string `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeout      string `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	HeartbeatInterval string `json:"heartbeatInterval,omitempty" yaml:"heartbeatInterval,omitempty"`

	// SendQueueSize bounds the frames waiting to be written per session.
	SendQueueSize int `json:"sendQueueSize,omitempty" yaml:"sendQueueSize,omitempty"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// Path is where reactor serve exposes the metrics (default: /metrics).
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// TracingConfig configures OpenTelemetry spans.
type TracingConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// PublishConfig configures reactor render --publish for s3:// targets.
// Credentials come from the AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
// AWS_SESSION_TOKEN environment variables.
type PublishConfig struct {
	// Region defaults to $AWS_REGION.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, e.g. for MinIO.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// PathStyle addresses buckets as endpoint/bucket instead of
	// bucket.endpoint.
	PathStyle bool `json:"pathStyle,omitempty" yaml:"pathStyle,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Scheduler: SchedulerConfig{MaxUpdateCount: DefaultMaxUpdateCount},
		Dev:       DevConfig{Warnings: true},
		Log:       LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:              DefaultAddr,
			ReadTimeout:       "60s",
			WriteTimeout:      "10s",
			HeartbeatInterval: "20s",
			SendQueueSize:     64,
		},
		Metrics: MetricsConfig{Enabled: true, Namespace: DefaultNamespace, Path: "/metrics"},
		Tracing: TracingConfig{TracerName: "reactor"},
	}
}

// Load reads the first config file found in dir.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("F001").
		WithDetail("No reactor.json or reactor.yaml found in " + dir).
		WithSuggestion("Create reactor.json or run without a config to use the defaults")
}

// LoadFile reads configuration from path. The format follows the file
// extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("F001").WithDetail("No config file at " + path)
		}
		return nil, errors.New("F002").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("F002").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid " + formatName(path))
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func formatName(path string) string {
	if isYAML(path) {
		return "YAML"
	}
	return "JSON"
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path in the format of its extension.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("F002").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("F002").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()
	if c.Scheduler.MaxUpdateCount == 0 {
		c.Scheduler.MaxUpdateCount = d.Scheduler.MaxUpdateCount
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	if c.Server.HeartbeatInterval == "" {
		c.Server.HeartbeatInterval = d.Server.HeartbeatInterval
	}
	if c.Server.SendQueueSize == 0 {
		c.Server.SendQueueSize = d.Server.SendQueueSize
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = d.Metrics.Path
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = d.Tracing.TracerName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Scheduler.MaxUpdateCount < 1 {
		return errors.New("F002").
			WithDetail("scheduler.maxUpdateCount must be at least 1")
	}
	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		return errors.New("F002").
			WithDetail("log.level must be debug, info, warn or error, got " + c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("F002").
			WithDetail("log.format must be text or json, got " + c.Log.Format)
	}
	switch c.Dev.Colors {
	case "", "auto", "always", "never":
	default:
		return errors.New("F002").
			WithDetail("dev.colors must be auto, always or never, got " + c.Dev.Colors)
	}

	durations := map[string]string{
		"server.readTimeout":       c.Server.ReadTimeout,
		"server.writeTimeout":      c.Server.WriteTimeout,
		"server.heartbeatInterval": c.Server.HeartbeatInterval,
	}
	for name, v := range durations {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return errors.New("F002").
				WithDetail(name + " must be a positive duration such as \"10s\", got " + v)
		}
	}
	if c.HeartbeatInterval() >= c.ReadTimeout() {
		return errors.New("F002").
			WithDetail("server.heartbeatInterval must be shorter than server.readTimeout").
			WithSuggestion("Clients would time out between heartbeats")
	}
	if c.Server.SendQueueSize < 1 {
		return errors.New("F002").
			WithDetail("server.sendQueueSize must be at least 1")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("F002").
			WithDetail("metrics.path must start with /")
	}
	if e := c.Publish.Endpoint; e != "" && !strings.HasPrefix(e, "http://") && !strings.HasPrefix(e, "https://") {
		return errors.New("F002").
			WithDetail("publish.endpoint must be an http or https URL, got " + e)
	}
	return nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// LogLevel returns the configured slog level, or info.
func (c *Config) LogLevel() slog.Level {
	if l, ok := levels[strings.ToLower(c.Log.Level)]; ok {
		return l
	}
	return slog.LevelInfo
}

// ReadTimeout returns server.readTimeout, or the default if unparsable.
func (c *Config) ReadTimeout() time.Duration {
	return duration(c.Server.ReadTimeout, 60*time.Second)
}

// WriteTimeout returns server.writeTimeout, or the default if unparsable.
func (c *Config) WriteTimeout() time.Duration {
	return duration(c.Server.WriteTimeout, 10*time.Second)
}

// HeartbeatInterval returns server.heartbeatInterval, or the default if
// unparsable.
func (c *Config) HeartbeatInterval() time.Duration {
	return duration(c.Server.HeartbeatInterval, 20*time.Second)
}

func duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Exists reports whether dir holds a config file.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up from startDir to the first directory holding a
// config file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("F001").
				WithDetail("No reactor.json or reactor.yaml found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads the nearest config at or above the working
// directory. Without one it returns the defaults.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}

	return Load(root)
}
