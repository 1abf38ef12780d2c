package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnginePlaywright = "playwright"
	EngineScrapemate = "scrapemate"
)

var knownFormats = []string{"json", "csv", "xlsx"}

// configKeys are bound to the environment explicitly so Unmarshal sees
// variables for keys without a default.
var configKeys = []string{
	"data-folder", "profile-dir", "engine", "headless", "install-browsers",
	"block-resources", "timeout", "settle-delay", "formats", "stdout",
	"history-db", "disable-history", "pg-dsn",
	"s3-bucket", "s3-prefix", "s3-region", "s3-access-key", "s3-secret-key",
	"writer-plugin-dir", "writer-plugin-name",
	"telemetry-key", "telemetry-endpoint", "verbose",
}

type Config struct {
	DataFolder      string        `mapstructure:"data-folder"`
	ProfileDir      string        `mapstructure:"profile-dir"`
	Engine          string        `mapstructure:"engine"`
	Headless        bool          `mapstructure:"headless"`
	InstallBrowsers bool          `mapstructure:"install-browsers"`
	BlockResources  bool          `mapstructure:"block-resources"`
	Timeout         time.Duration `mapstructure:"timeout"`
	SettleDelay     time.Duration `mapstructure:"settle-delay"`
	Formats         []string      `mapstructure:"formats"`
	Stdout          bool          `mapstructure:"stdout"`
	HistoryDB       string        `mapstructure:"history-db"`
	DisableHistory  bool          `mapstructure:"disable-history"`
	PostgresDSN     string        `mapstructure:"pg-dsn"`

	S3Bucket    string `mapstructure:"s3-bucket"`
	S3Prefix    string `mapstructure:"s3-prefix"`
	S3Region    string `mapstructure:"s3-region"`
	S3AccessKey string `mapstructure:"s3-access-key"`
	S3SecretKey string `mapstructure:"s3-secret-key"`

	WriterPluginDir  string `mapstructure:"writer-plugin-dir"`
	WriterPluginName string `mapstructure:"writer-plugin-name"`

	TelemetryKey      string `mapstructure:"telemetry-key"`
	TelemetryEndpoint string `mapstructure:"telemetry-endpoint"`

	Verbose bool `mapstructure:"verbose"`
}

func defaultDataFolder() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gmfav")
	}

	return ".gmfav"
}

// NewViper returns a viper instance with defaults and GMFAV_* environment
// lookups, e.g. GMFAV_DATA_FOLDER or GMFAV_S3_BUCKET.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("GMFAV")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}

	v.SetDefault("data-folder", defaultDataFolder())
	v.SetDefault("engine", EnginePlaywright)
	v.SetDefault("headless", true)
	v.SetDefault("block-resources", true)
	v.SetDefault("timeout", 5*time.Minute)
	v.SetDefault("settle-delay", 2*time.Second)
	v.SetDefault("formats", []string{"json"})
	v.SetDefault("writer-plugin-name", "Writer")

	return v
}

// ReadConfigFile merges a yaml/json/toml config file into v. Without an
// explicit path, <data folder>/gmfav.yaml is used when it exists.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		path = filepath.Join(v.GetString("data-folder"), "gmfav.yaml")
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}

	v.SetConfigFile(path)

	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.ProfileDir == "" {
		cfg.ProfileDir = filepath.Join(cfg.DataFolder, "profile")
	}

	if cfg.HistoryDB == "" {
		cfg.HistoryDB = filepath.Join(cfg.DataFolder, "history.db")
	}

	for i := range cfg.Formats {
		cfg.Formats[i] = strings.ToLower(strings.TrimSpace(cfg.Formats[i]))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DataFolder == "" {
		return errors.New("data folder is required")
	}

	if c.Engine != EnginePlaywright && c.Engine != EngineScrapemate {
		return fmt.Errorf("unknown engine %q (want %s or %s)", c.Engine, EnginePlaywright, EngineScrapemate)
	}

	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}

	if c.SettleDelay < 0 {
		return errors.New("settle delay must not be negative")
	}

	for _, f := range c.Formats {
		if !slices.Contains(knownFormats, f) {
			return fmt.Errorf("unknown output format %q (want one of %s)", f, strings.Join(knownFormats, ", "))
		}
	}

	if (c.S3AccessKey == "") != (c.S3SecretKey == "") {
		return errors.New("s3 access key and secret key must be set together")
	}

	return nil
}
