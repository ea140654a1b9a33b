package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/papapumpkin/starchart/internal/route"
	"github.com/papapumpkin/starchart/internal/value"
)

// View names accepted by default_view.
var Views = []string{"detailed", "compact", "table"}

// ErrInvalid is wrapped by every validation error returned from Load.
var ErrInvalid = errors.New("config: invalid")

// gameDir is the journal location relative to the user's Saved Games folder.
var gameDir = filepath.Join("Saved Games", "Frontier Developments", "Elite Dangerous")

// protonPrefix is where Steam's Proton keeps the game's Windows profile.
var protonPrefix = filepath.Join(".steam", "steam", "steamapps", "compatdata", "359320",
	"pfx", "drive_c", "users", "steamuser")

// Config holds all runtime configuration for a starchart session.
// Values are populated from .starchart.toml, STARCHART_* env vars, and CLI flags.
type Config struct {
	JournalDir      string        `mapstructure:"journal_dir"`
	StatusFile      string        `mapstructure:"status_file"`
	NavRouteFile    string        `mapstructure:"navroute_file"`
	CachePath       string        `mapstructure:"cache_path"`
	ValueThreshold  int           `mapstructure:"value_threshold"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	JumpSettleDelay time.Duration `mapstructure:"jump_settle_delay"`
	TelemetryPath   string        `mapstructure:"telemetry_path"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	DefaultView     string        `mapstructure:"default_view"`
	Verbose         bool          `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("journal_dir", DefaultJournalDir())
	viper.SetDefault("status_file", "")
	viper.SetDefault("navroute_file", "")
	viper.SetDefault("cache_path", DefaultCachePath())
	viper.SetDefault("value_threshold", value.DefaultThreshold)
	viper.SetDefault("poll_interval", 500*time.Millisecond)
	viper.SetDefault("jump_settle_delay", time.Second)
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("metrics_addr", "")
	viper.SetDefault("default_view", Views[0])
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c Config) Validate() error {
	if c.JournalDir == "" {
		return fmt.Errorf("%w: journal_dir is empty", ErrInvalid)
	}
	if c.ValueThreshold < 0 {
		return fmt.Errorf("%w: value_threshold %d is negative", ErrInvalid, c.ValueThreshold)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive, got %s", ErrInvalid, c.PollInterval)
	}
	if c.JumpSettleDelay < 0 {
		return fmt.Errorf("%w: jump_settle_delay is negative", ErrInvalid)
	}
	if !slices.Contains(Views, c.DefaultView) {
		return fmt.Errorf("%w: default_view %q (want one of %v)", ErrInvalid, c.DefaultView, Views)
	}
	return nil
}

// StatusPath returns status_file, or Status.json inside the journal directory.
func (c Config) StatusPath() string {
	if c.StatusFile != "" {
		return c.StatusFile
	}
	return filepath.Join(c.JournalDir, route.StatusFile)
}

// NavRoutePath returns navroute_file, or NavRoute.json inside the journal
// directory.
func (c Config) NavRoutePath() string {
	if c.NavRouteFile != "" {
		return c.NavRouteFile
	}
	return filepath.Join(c.JournalDir, route.NavRouteFile)
}

// DefaultJournalDir returns where the game writes its journal: the Saved
// Games folder on Windows, the Proton prefix elsewhere.
func DefaultJournalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, gameDir)
	}
	return filepath.Join(home, protonPrefix, gameDir)
}

// DefaultCachePath returns the cache database location under the user cache
// directory.
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "starchart.db"
	}
	return filepath.Join(dir, "starchart", "systems.db")
}
