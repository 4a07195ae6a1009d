// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration. Values are loaded
// from config.yaml, AUTOEDU_* environment variables and bound CLI
// flags, in ascending precedence.
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	Portal      PortalConfig      `mapstructure:"portal" yaml:"portal"`
	Browser     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	Interaction InteractionConfig `mapstructure:"interaction" yaml:"interaction"`
	Input       InputConfig       `mapstructure:"input" yaml:"input"`
	Report      ReportConfig      `mapstructure:"report" yaml:"report"`
	Database    DatabaseConfig    `mapstructure:"database" yaml:"database"`
}

// LoggerConfig configures the zap logger and optional rotating file sink.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // "console" or "json"
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// PortalConfig selects the portal workflow to run and its entry point.
type PortalConfig struct {
	URL      string `mapstructure:"url" yaml:"url"`
	Module   string `mapstructure:"module" yaml:"module"`
	Task     string `mapstructure:"task" yaml:"task"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	// Class and Section are the admission target for imported students.
	Class   string `mapstructure:"class" yaml:"class"`
	Section string `mapstructure:"section" yaml:"section"`
	// CaptchaWait is how long login pauses for manual captcha entry.
	CaptchaWait   time.Duration `mapstructure:"captcha_wait" yaml:"captcha_wait"`
	LoginAttempts int           `mapstructure:"login_attempts" yaml:"login_attempts"`
}

// BrowserConfig configures the Chrome session.
type BrowserConfig struct {
	Headless bool `mapstructure:"headless" yaml:"headless"`
	// StartupTimeout bounds browser launch plus initial navigation.
	StartupTimeout time.Duration `mapstructure:"startup_timeout" yaml:"startup_timeout"`
}

// InteractionConfig tunes the resilient interaction core.
type InteractionConfig struct {
	// Retries is the maximum number of attempts per interaction.
	Retries int `mapstructure:"retries" yaml:"retries"`
	// Timeout is the per-wait ceiling for a single element resolution.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// Backoff is the pause between failed attempts.
	Backoff time.Duration `mapstructure:"backoff" yaml:"backoff"`
}

// InputConfig locates the record source.
type InputConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// ReportConfig selects the status report rendering.
type ReportConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // "json" or "text"
	Output string `mapstructure:"output" yaml:"output"` // empty means stdout
}

// DatabaseConfig gates the optional Postgres run-history store.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	DSN     string `mapstructure:"dsn" yaml:"dsn"`
}

// SetDefaults registers the defaults on the given viper instance. Kept
// in one place so tests and the CLI agree on baseline behavior.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "autoedu")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)

	v.SetDefault("portal.module", "student")
	v.SetDefault("portal.task", "import")
	v.SetDefault("portal.captcha_wait", 15*time.Second)
	v.SetDefault("portal.login_attempts", 3)

	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.startup_timeout", 60*time.Second)

	v.SetDefault("interaction.retries", 3)
	v.SetDefault("interaction.timeout", 30*time.Second)
	v.SetDefault("interaction.backoff", time.Second)

	v.SetDefault("report.format", "json")
}

// Load reads configuration from the optional file path, the
// environment, and defaults, and unmarshals it into a Config.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("AUTOEDU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the invariants the pipeline relies on.
func (c *Config) Validate() error {
	if c.Portal.URL == "" {
		return fmt.Errorf("portal.url is required")
	}
	if c.Portal.Module == "" || c.Portal.Task == "" {
		return fmt.Errorf("portal.module and portal.task are required")
	}
	if c.Interaction.Retries < 1 {
		return fmt.Errorf("interaction.retries must be at least 1, got %d", c.Interaction.Retries)
	}
	if c.Interaction.Timeout <= 0 {
		return fmt.Errorf("interaction.timeout must be positive")
	}
	if c.Database.Enabled && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required when database.enabled is set")
	}
	return nil
}
