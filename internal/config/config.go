package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-storypdf/internal/fileutil"
	"github.com/alnah/go-storypdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength  = 4096
	MaxNameLength  = 64
	MaxAddrLength  = 256
	MaxPagesCeiling = 64
)

// Rendering backends.
const (
	BackendRod      = "rod"
	BackendChromedp = "chromedp"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvTemplateDir = "STORYPDF_TEMPLATE_DIR"
	EnvOutputDir   = "STORYPDF_OUTPUT_DIR"
	EnvBrowserBin  = "ROD_BROWSER_BIN"
	EnvNoSandbox   = "ROD_NO_SANDBOX"
)

// Config holds all configuration for story generation.
type Config struct {
	Templates TemplatesConfig `yaml:"templates"`
	Images    ImagesConfig    `yaml:"images"`
	Output    OutputConfig    `yaml:"output"`
	Engine    EngineConfig    `yaml:"engine"`
	Retention RetentionConfig `yaml:"retention"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// TemplatesConfig selects the template directory and asset names.
type TemplatesConfig struct {
	Dir        string `yaml:"dir"`        // Empty = embedded templates only
	Name       string `yaml:"name"`       // Template name without .html
	Stylesheet string `yaml:"stylesheet"` // Stylesheet name without .css
}

// ImagesConfig defines where relative image paths are resolved.
type ImagesConfig struct {
	BaseDir string `yaml:"baseDir"` // Empty = leave relative paths untouched
}

// OutputConfig defines the artifact directory.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// EngineConfig defines the headless browser settings.
type EngineConfig struct {
	Backend        string `yaml:"backend"`        // "rod" or "chromedp"
	BrowserBin     string `yaml:"browserBin"`     // Empty = auto-detect/download
	Sandbox        bool   `yaml:"sandbox"`        // Chrome sandbox; off by default for containers
	MaxPages       int    `yaml:"maxPages"`       // 0 = derived from GOMAXPROCS
	ContentTimeout string `yaml:"contentTimeout"` // Go duration, e.g. "60s"
}

// RetentionConfig defines age-based pruning of the output directory.
type RetentionConfig struct {
	MaxAge   string `yaml:"maxAge"`   // Files at least this old are deleted
	Interval string `yaml:"interval"` // How often serve mode prunes; "0" disables
}

// ServerConfig defines the HTTP server settings.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdownTimeout"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
	Output string `yaml:"output"` // stdout, stderr or a file path
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Templates: TemplatesConfig{
			Name:       "story-template",
			Stylesheet: "pdf-styles",
		},
		Output: OutputConfig{
			Dir: filepath.Join("temp", "pdfs"),
		},
		Engine: EngineConfig{
			Backend:        BackendRod,
			ContentTimeout: "60s",
		},
		Retention: RetentionConfig{
			MaxAge:   "24h",
			Interval: "1h",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Validate checks field lengths, enumerations and durations.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"templates.dir", c.Templates.Dir, MaxPathLength},
		{"templates.name", c.Templates.Name, MaxNameLength},
		{"templates.stylesheet", c.Templates.Stylesheet, MaxNameLength},
		{"images.baseDir", c.Images.BaseDir, MaxPathLength},
		{"output.dir", c.Output.Dir, MaxPathLength},
		{"engine.browserBin", c.Engine.BrowserBin, MaxPathLength},
		{"server.addr", c.Server.Addr, MaxAddrLength},
		{"log.output", c.Log.Output, MaxPathLength},
	} {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("%w: output.dir cannot be empty", ErrInvalidValue)
	}
	switch c.Engine.Backend {
	case BackendRod, BackendChromedp:
	default:
		return fmt.Errorf("%w: engine.backend must be %q or %q, got %q",
			ErrInvalidValue, BackendRod, BackendChromedp, c.Engine.Backend)
	}
	if c.Engine.MaxPages < 0 || c.Engine.MaxPages > MaxPagesCeiling {
		return fmt.Errorf("%w: engine.maxPages must be between 0 and %d, got %d",
			ErrInvalidValue, MaxPagesCeiling, c.Engine.MaxPages)
	}

	if _, err := c.ContentTimeout(); err != nil {
		return err
	}
	if _, err := c.RetentionMaxAge(); err != nil {
		return err
	}
	if _, err := c.RetentionInterval(); err != nil {
		return err
	}
	if _, err := c.ShutdownTimeout(); err != nil {
		return err
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidValue, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log.format must be console or json, got %q", ErrInvalidValue, c.Log.Format)
	}

	return nil
}

// ContentTimeout returns engine.contentTimeout as a positive duration.
func (c *Config) ContentTimeout() (time.Duration, error) {
	return parseDuration("engine.contentTimeout", c.Engine.ContentTimeout, false)
}

// RetentionMaxAge returns retention.maxAge. Zero means "everything is expired".
func (c *Config) RetentionMaxAge() (time.Duration, error) {
	return parseDuration("retention.maxAge", c.Retention.MaxAge, true)
}

// RetentionInterval returns retention.interval. Zero disables periodic pruning.
func (c *Config) RetentionInterval() (time.Duration, error) {
	return parseDuration("retention.interval", c.Retention.Interval, true)
}

// ShutdownTimeout returns server.shutdownTimeout.
func (c *Config) ShutdownTimeout() (time.Duration, error) {
	return parseDuration("server.shutdownTimeout", c.Server.ShutdownTimeout, false)
}

// ApplyEnv overrides fields from environment variables. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvTemplateDir); v != "" {
		c.Templates.Dir = v
	}
	if v := getenv(EnvOutputDir); v != "" {
		c.Output.Dir = v
	}
	if v := getenv(EnvBrowserBin); v != "" {
		c.Engine.BrowserBin = v
	}
	switch strings.ToLower(getenv(EnvNoSandbox)) {
	case "1", "true", "yes":
		c.Engine.Sandbox = false
	case "0", "false", "no":
		c.Engine.Sandbox = true
	}
}

// LoadConfig loads a YAML config from a file path or a config name.
// Names are resolved to ./<name>.yaml, ./<name>.yml, then the same files under
// <user config dir>/go-storypdf/. Empty fields take their DefaultConfig value.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := yamlutil.DecodeFile(configPath, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// fillDefaults replaces empty string fields with their DefaultConfig value.
func (c *Config) fillDefaults() {
	d := DefaultConfig()
	for _, f := range []struct {
		dst *string
		def string
	}{
		{&c.Templates.Name, d.Templates.Name},
		{&c.Templates.Stylesheet, d.Templates.Stylesheet},
		{&c.Output.Dir, d.Output.Dir},
		{&c.Engine.Backend, d.Engine.Backend},
		{&c.Engine.ContentTimeout, d.Engine.ContentTimeout},
		{&c.Retention.MaxAge, d.Retention.MaxAge},
		{&c.Retention.Interval, d.Retention.Interval},
		{&c.Server.Addr, d.Server.Addr},
		{&c.Server.ShutdownTimeout, d.Server.ShutdownTimeout},
		{&c.Log.Level, d.Log.Level},
		{&c.Log.Format, d.Log.Format},
		{&c.Log.Output, d.Log.Output},
	} {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}
}

// SearchPaths returns the candidate files LoadConfig tries for a config name.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-storypdf", name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s is %d characters (max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func parseDuration(fieldName, value string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, fieldName, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, fieldName, value)
	}
	return d, nil
}
