package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for the figbridge gateway.
type Config struct {
	Port           int           `yaml:"port"`
	LogLevel       string        `yaml:"log_level"`
	ConfigFile     string        `yaml:"-"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	OutputDir      string        `yaml:"output_dir"`
	FigmaBaseURL   string        `yaml:"figma_base_url"`
	RequestTimeout time.Duration `yaml:"-"`
	MaxAttempts    int           `yaml:"max_attempts"`
	BackoffCeiling time.Duration `yaml:"-"`
	MaxDepth       int           `yaml:"max_depth"`
	DrainTimeout   time.Duration `yaml:"-"`
}

// SetDefaults initializes c with built-in defaults.
func (c *Config) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Port == 0 {
		c.Port = 3333
	}
	if c.AllowedOrigins == nil {
		c.AllowedOrigins = []string{"*"}
	}
	if c.OutputDir == "" {
		c.OutputDir = "figma_designs"
	}
	if c.FigmaBaseURL == "" {
		c.FigmaBaseURL = "https://api.figma.com/v1"
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffCeiling == 0 {
		c.BackoffCeiling = 10 * time.Second
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = 10
	}
	if c.DrainTimeout == 0 {
		c.DrainTimeout = 30 * time.Second
	}
	if c.ConfigFile == "" {
		c.ConfigFile = DefaultConfigPath("figbridge.yaml")
	}
}

// ApplyEnv overlays environment variables onto the current config values.
func (c *Config) ApplyEnv() {
	if v := GetEnv("CONFIG_FILE", ""); v != "" {
		c.ConfigFile = v
	}
	if v := GetEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := GetEnv("PORT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Port = n
		}
	}
	if v := GetEnv("ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitComma(v)
	}
	if v := GetEnv("OUTPUT_DIR", ""); v != "" {
		c.OutputDir = v
	}
	if v := GetEnv("FIGMA_BASE_URL", ""); v != "" {
		c.FigmaBaseURL = v
	}
	if v := GetEnv("FIGMA_TIMEOUT", ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RequestTimeout = time.Duration(f * float64(time.Second))
		}
	}
	if v := GetEnv("FIGMA_MAX_ATTEMPTS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAttempts = n
		}
	}
	if v := GetEnv("BACKOFF_CEILING", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.BackoffCeiling = d
		}
	}
	if v := GetEnv("MAX_DEPTH", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxDepth = n
		}
	}
	if v := GetEnv("DRAIN_TIMEOUT", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.DrainTimeout = d
		}
	}
}

// BindFlagsFromCurrent binds command line flags using the current config values as defaults.
func (c *Config) BindFlagsFromCurrent() {
	flag.StringVar(&c.ConfigFile, "config", c.ConfigFile, "config file path")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log verbosity (all, debug, info, warn, error, fatal, none)")
	flag.IntVar(&c.Port, "port", c.Port, "HTTP listen port")
	flag.Func("allowed-origins", "comma separated list of allowed CORS origins", func(v string) error {
		c.AllowedOrigins = splitComma(v)
		return nil
	})
	flag.StringVar(&c.OutputDir, "output-dir", c.OutputDir, "directory where saved design code is written")
	flag.StringVar(&c.FigmaBaseURL, "figma-base-url", c.FigmaBaseURL, "base URL of the Figma REST API")
	flag.Func("figma-timeout", "per-call Figma API timeout in seconds", func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.RequestTimeout = time.Duration(f * float64(time.Second))
		return nil
	})
	flag.IntVar(&c.MaxAttempts, "figma-max-attempts", c.MaxAttempts, "total attempts per Figma API call before giving up")
	flag.DurationVar(&c.BackoffCeiling, "backoff-ceiling", c.BackoffCeiling, "maximum delay before a rate-limit retry")
	flag.IntVar(&c.MaxDepth, "max-depth", c.MaxDepth, "maximum node tree depth returned by design context tools")
	flag.DurationVar(&c.DrainTimeout, "drain-timeout", c.DrainTimeout, "time to wait for in-flight requests on shutdown")
}

// BindFlags populates the struct with defaults overlaid by environment
// variables and binds command line flags so main can call flag.Parse().
func (c *Config) BindFlags() {
	c.SetDefaults()
	c.ApplyEnv()
	c.BindFlagsFromCurrent()
}

// LoadFile populates the config from a YAML file.
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

// GetEnv returns the value of the environment variable or def when unset.
func GetEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func splitComma(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
