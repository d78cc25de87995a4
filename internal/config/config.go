// internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// LoggerConfig controls the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"` // "console" or "json"
	ServiceName string `mapstructure:"service_name"`
	AddSource   bool   `mapstructure:"add_source"`

	// File output with rotation; empty LogFile disables it.
	LogFile    string `mapstructure:"log_file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// BrowserConfig controls the shared browser process and per-call page
// behavior.
type BrowserConfig struct {
	Headless  bool   `mapstructure:"headless"`
	NoSandbox bool   `mapstructure:"no_sandbox"`
	ExecPath  string `mapstructure:"exec_path"`
	UserAgent string `mapstructure:"user_agent"`

	// NetworkIdleQuiet is the quiet period that counts as "network idle";
	// PostLoadWait is the fixed settle delay applied after it. Neither is a
	// timeout: the caller's context bounds the call.
	NetworkIdleQuiet time.Duration `mapstructure:"network_idle_quiet"`
	PostLoadWait     time.Duration `mapstructure:"post_load_wait"`
}

// AnalyzerConfig controls snapshot extraction output.
type AnalyzerConfig struct {
	SummaryMaxBytes int `mapstructure:"summary_max_bytes"`
}

// Config is the application configuration. Fields are private; access goes
// through the getters so a loaded config stays read-only.
type Config struct {
	logger   LoggerConfig
	browser  BrowserConfig
	analyzer AnalyzerConfig
}

func (c *Config) Logger() LoggerConfig     { return c.logger }
func (c *Config) Browser() BrowserConfig   { return c.browser }
func (c *Config) Analyzer() AnalyzerConfig { return c.analyzer }

// SetBrowserHeadless overrides the headless flag (CLI binding).
func (c *Config) SetBrowserHeadless(b bool) { c.browser.Headless = b }

// SetLoggerLevel overrides the log level (CLI binding).
func (c *Config) SetLoggerLevel(level string) {
	if level != "" {
		c.logger.Level = level
	}
}

// raw mirrors Config for viper unmarshalling.
type raw struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Analyzer AnalyzerConfig `mapstructure:"analyzer"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "pagescope")
	v.SetDefault("logger.max_size_mb", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age_days", 14)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.network_idle_quiet", 500*time.Millisecond)
	v.SetDefault("browser.post_load_wait", time.Second)

	v.SetDefault("analyzer.summary_max_bytes", 8192)
}

// Load reads configuration from the given file, or from the default
// location (~/.pagescope.yaml) when path is empty, layered under PAGESCOPE_*
// environment variables. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PAGESCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		home, err := homedir.Dir()
		if err == nil {
			v.SetConfigFile(filepath.Join(home, ".pagescope.yaml"))
		}
	}

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			if explicit {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			// Default location is best effort.
		}
	}

	var r raw
	if err := v.Unmarshal(&r); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg := &Config{logger: r.Logger, browser: r.Browser, analyzer: r.Analyzer}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.logger.Format)
	}
	if c.analyzer.SummaryMaxBytes <= 0 {
		return fmt.Errorf("analyzer.summary_max_bytes must be positive, got %d", c.analyzer.SummaryMaxBytes)
	}
	return nil
}
