package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix     = "TEXDOWN"
	configName    = "texdown"
	defaultWidth  = 80
	defaultDBName = "notes.db"
	maxWorkers    = 8
	formatHTML    = "html"
	formatText    = "text"
	formatEvents  = "events"
	formatTree    = "tree"
	defaultFormat = formatHTML
	defaultLogFmt = "text"
	defaultLogLvl = "warning"
)

var formats = []string{formatHTML, formatText, formatEvents, formatTree}

// Config holds the settings shared by all commands. Values come from flags,
// TEXDOWN_* environment variables and texdown.yaml, in that order of
// precedence.
type Config struct {
	Format    string `mapstructure:"format"`
	Rules     string `mapstructure:"rules"`
	Out       string `mapstructure:"out"`
	Workers   int    `mapstructure:"workers"`
	Width     int    `mapstructure:"width"`
	Highlight string `mapstructure:"highlight"`
	DB        string `mapstructure:"db"`
	Author    string `mapstructure:"author"`
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	Debug     bool   `mapstructure:"debug"`
}

// configDir returns the per-user configuration directory for texdown.
func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configName)
}

func newViper(configFile string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := configDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	v.SetDefault("format", defaultFormat)
	v.SetDefault("width", defaultWidth)
	v.SetDefault("db", filepath.Join(configDir(), defaultDBName))
	v.SetDefault("log-level", defaultLogLvl)
	v.SetDefault("log-format", defaultLogFmt)
	return v
}

// loadConfig reads the configuration file, if any, and merges it with the
// environment and the flags of the running command.
func loadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := newViper(configFile)
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	// Read config file (optional - won't error if missing)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("%w: unknown format %q (want one of %s)", ErrConfig, c.Format, strings.Join(formats, ", "))
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrConfig, c.Workers)
	}
	if c.Width < 0 {
		return fmt.Errorf("%w: width must be positive, got %d", ErrConfig, c.Width)
	}
	if c.Width == 0 {
		c.Width = defaultWidth
	}
	return nil
}
