// Package config loads the ember CLI configuration.
//
// Settings come from, in increasing priority: built-in defaults, an
// ember.toml file (the working directory, then $XDG_CONFIG_HOME/ember), and
// EMBER_-prefixed environment variables. Nested keys map to environment
// names by replacing dots with underscores, so cache.backend is read from
// EMBER_CACHE_BACKEND. Command-line flags are applied by the caller on top.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/matzehuels/ember/pkg/errors"
)

const (
	// AppName names the config file, the env prefix and the XDG directories.
	AppName = "ember"

	// EnvPrefix is prepended to every environment override.
	EnvPrefix = "EMBER"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the decoded CLI configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Render RenderConfig `mapstructure:"render"`
	Play   PlayConfig   `mapstructure:"play"`
	Serve  ServeConfig  `mapstructure:"serve"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CacheConfig struct {
	Backend string      `mapstructure:"backend"`
	Dir     string      `mapstructure:"dir"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	URL         string        `mapstructure:"url"`
	Prefix      string        `mapstructure:"prefix"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// RenderConfig holds defaults for resolve, render and graph. Zero width or
// height defers to the scene.
type RenderConfig struct {
	Width   int      `mapstructure:"width"`
	Height  int      `mapstructure:"height"`
	Theme   string   `mapstructure:"theme"`
	Formats []string `mapstructure:"formats"`
}

type PlayConfig struct {
	FPS float64 `mapstructure:"fps"`
}

type ServeConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	Burst        int           `mapstructure:"burst"`
}

// SetDefaults registers every key with its default value. Keys without a
// default are invisible to environment overrides.
func SetDefaults(v *viper.Viper) {
	// -- Log --
	v.SetDefault("log.level", "info")

	// -- Cache --
	v.SetDefault("cache.backend", BackendFile)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.redis.url", "")
	v.SetDefault("cache.redis.prefix", "ember:")
	v.SetDefault("cache.redis.dial_timeout", "5s")

	// -- Render --
	v.SetDefault("render.width", 0)
	v.SetDefault("render.height", 0)
	v.SetDefault("render.theme", "")
	v.SetDefault("render.formats", []string{"png"})

	// -- Play --
	v.SetDefault("play.fps", 30.0)

	// -- Serve --
	v.SetDefault("serve.addr", "127.0.0.1:7420")
	v.SetDefault("serve.read_timeout", "10s")
	v.SetDefault("serve.write_timeout", "30s")
	v.SetDefault("serve.rate_limit", 20.0)
	v.SetDefault("serve.burst", 40)
}

// Default returns the configuration with only defaults applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults are static; a decode failure is a programming error.
		panic(err)
	}
	return &cfg
}

// Load reads the configuration. An explicit file must exist; without one
// the search paths are tried and a missing file is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config")
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "log.level: %v", err)
	}
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendNone}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend must be one of file, redis, none (got %q)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.Redis.URL == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis.url is required for the redis backend")
	}
	if c.Render.Width < 0 || c.Render.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render.width and render.height must not be negative")
	}
	if c.Play.FPS <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "play.fps must be positive")
	}
	if c.Serve.RateLimit < 0 || c.Serve.Burst < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "serve.rate_limit and serve.burst must not be negative")
	}
	return nil
}

// LogLevel returns the parsed log level, Info when it does not parse.
func (c *Config) LogLevel() log.Level {
	l, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// CacheDir returns cache.dir, or the XDG cache directory (~/.cache/ember/)
// when it is unset.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// configDir returns $XDG_CONFIG_HOME/ember, falling back to the platform
// user config directory.
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}
