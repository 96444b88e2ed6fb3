// Package config loads hydrodiff options from defaults, an optional
// hydrodiff.yaml file and HYDRODIFF_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sprite-ai/hydrodiff/internal/mismatch"
	"github.com/sprite-ai/hydrodiff/internal/report"
)

// Sentinel validation errors.
var (
	ErrInvalidPort    = errors.New("invalid server port")
	ErrInvalidIndex   = errors.New("index file name must not be empty")
	ErrInvalidTimeout = errors.New("durations must not be negative")
)

// Default configuration values.
const (
	defaultIndex   = "index.html"
	defaultFormat  = "text"
	defaultWait    = time.Second
	defaultTimeout = 30 * time.Second
	defaultAddr    = "127.0.0.1:6143"
	maxPort        = 65535
	envPrefix      = "HYDRODIFF"
)

// Config holds every option a run needs.
type Config struct {
	Index       string        `mapstructure:"index"`
	Port        int           `mapstructure:"port"`
	Verbose     bool          `mapstructure:"verbose"`
	Format      string        `mapstructure:"format"`
	RootMarkers []string      `mapstructure:"root_markers"`
	NoFilter    bool          `mapstructure:"no_filter"`
	KeepMeta    bool          `mapstructure:"keep_meta"`
	Wait        time.Duration `mapstructure:"wait"`
	ReadyExpr   string        `mapstructure:"ready_expr"`
	Timeout     time.Duration `mapstructure:"timeout"`
	NoColor     bool          `mapstructure:"no_color"`
	ChromePath  string        `mapstructure:"chrome_path"`
	NoSandbox   bool          `mapstructure:"no_sandbox"`
	Addr        string        `mapstructure:"addr"`
}

// Load reads configuration. A non-empty path names a config file that must
// exist; otherwise hydrodiff.yaml is looked up in the working directory and
// ./.config and is optional. Flags in fs, when set, override everything else.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hydrodiff")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./.config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("index", defaultIndex)
	v.SetDefault("port", 0)
	v.SetDefault("verbose", false)
	v.SetDefault("format", defaultFormat)
	v.SetDefault("root_markers", mismatch.DefaultRootMarkers)
	v.SetDefault("no_filter", false)
	v.SetDefault("keep_meta", false)
	v.SetDefault("wait", defaultWait)
	v.SetDefault("ready_expr", "")
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("no_color", false)
	v.SetDefault("chrome_path", "")
	v.SetDefault("no_sandbox", false)
	v.SetDefault("addr", defaultAddr)
}

// bindFlags binds flags that exist in fs to their config keys; flag names
// use dashes where keys use underscores.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	known := make(map[string]bool)
	for _, k := range v.AllKeys() {
		known[k] = true
	}

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !known[key] {
			return
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil && err == nil {
			err = fmt.Errorf("binding flag %s: %w", f.Name, bindErr)
		}
	})
	return err
}

// Validate checks option ranges.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if strings.TrimSpace(c.Index) == "" {
		return ErrInvalidIndex
	}
	if c.Wait < 0 || c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		return err
	}
	return nil
}

// Predicate builds the relevance predicate the options describe.
func (c *Config) Predicate() mismatch.Predicate {
	if c.NoFilter {
		return mismatch.MatchAll
	}
	if len(c.RootMarkers) == 0 {
		return mismatch.DefaultPredicate()
	}
	return mismatch.ContainsAny(c.RootMarkers...)
}
