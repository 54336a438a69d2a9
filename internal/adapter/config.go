package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/mmcdole/leaf/internal/animate"
)

// Config holds all application configuration
type Config struct {
	Reader  ReaderConfig             `mapstructure:"reader"`
	Cache   CacheConfig              `mapstructure:"cache"`
	Timing  map[string]time.Duration `mapstructure:"timing"`
	Store   StoreConfig              `mapstructure:"store"`
	Logging LoggingConfig            `mapstructure:"logging"`
}

// ReaderConfig holds reading preferences
type ReaderConfig struct {
	NarrowWidth int  `mapstructure:"narrow_width"` // Below this many columns show one page
	StartPage   int  `mapstructure:"start_page"`   // Used when no position is saved
	Sound       bool `mapstructure:"sound"`        // Ring the bell on flips

	ImageViewer     string   `mapstructure:"image_viewer"`      // Empty uses the system default
	ImageViewerArgs []string `mapstructure:"image_viewer_args"`
}

// CacheConfig bounds the materialized-page and image bookkeeping
type CacheConfig struct {
	Pages  int `mapstructure:"pages"`
	Images int `mapstructure:"images"`
}

// StoreConfig holds reading position persistence settings
type StoreConfig struct {
	Path string `mapstructure:"path"` // Directory for the position database; empty keeps positions in memory
}

// Dir returns the database directory with a leading ~ expanded
func (c StoreConfig) Dir() (string, error) {
	return expandHome(c.Path)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	timing := make(map[string]time.Duration, len(animate.Defaults))
	for k, d := range animate.Defaults {
		timing[k] = d
	}
	return &Config{
		Reader: ReaderConfig{
			NarrowWidth: 100,
			Sound:       false,
		},
		Cache: CacheConfig{
			Pages:  12,
			Images: 100,
		},
		Timing: timing,
		Store: StoreConfig{
			Path: defaultDataPath(),
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "leaf.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the directory for the log and position database
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "leaf")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "leaf")
	}
}

// DefaultConfigPath returns the default config directory for the current OS
func DefaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "leaf")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "leaf")
	}
}

// Settings owns the loaded configuration and keeps it current while the
// config file is watched. It also serves the timing section to the engine.
type Settings struct {
	v *viper.Viper

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// LoadConfig loads configuration from file and environment. An empty path
// searches the default config directory and the working directory.
func LoadConfig(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides, e.g. LEAF_TIMING_ROTATE=600ms
	v.SetEnvPrefix("LEAF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	s := &Settings{v: v}
	cfg, err := s.load()
	if err != nil {
		return nil, err
	}
	s.config = cfg
	return s, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("reader.narrow_width", cfg.Reader.NarrowWidth)
	v.SetDefault("reader.start_page", cfg.Reader.StartPage)
	v.SetDefault("reader.sound", cfg.Reader.Sound)
	v.SetDefault("reader.image_viewer", cfg.Reader.ImageViewer)
	v.SetDefault("reader.image_viewer_args", cfg.Reader.ImageViewerArgs)
	v.SetDefault("cache.pages", cfg.Cache.Pages)
	v.SetDefault("cache.images", cfg.Cache.Images)
	for k, d := range cfg.Timing {
		v.SetDefault("timing."+k, d)
	}
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

func (s *Settings) load() (*Config, error) {
	var cfg Config
	if err := s.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration
func (s *Settings) Get() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// File returns the config file in use, or "" when running on defaults
func (s *Settings) File() string {
	return s.v.ConfigFileUsed()
}

// Duration implements domain.Timings over the timing section. Values are
// read on every call, so a reloaded file applies to the next animation.
func (s *Settings) Duration(name string) (time.Duration, bool) {
	cfg := s.Get()
	d, ok := cfg.Timing[name]
	if !ok || d <= 0 {
		return 0, false
	}
	return d, true
}

// OnChange registers a callback for config reloads. Callbacks run on the
// watcher goroutine.
func (s *Settings) OnChange(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// WatchConfig reloads the configuration whenever the file changes
func (s *Settings) WatchConfig() {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := s.load()
		if err != nil {
			return
		}

		s.mu.Lock()
		s.config = cfg
		callbacks := make([]func(*Config), len(s.callbacks))
		copy(callbacks, s.callbacks)
		s.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	s.v.WatchConfig()
}

// WriteConfig saves cfg as YAML at path, creating its directory
func WriteConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("reader.narrow_width", cfg.Reader.NarrowWidth)
	v.Set("reader.start_page", cfg.Reader.StartPage)
	v.Set("reader.sound", cfg.Reader.Sound)
	v.Set("reader.image_viewer", cfg.Reader.ImageViewer)
	v.Set("reader.image_viewer_args", cfg.Reader.ImageViewerArgs)
	v.Set("cache.pages", cfg.Cache.Pages)
	v.Set("cache.images", cfg.Cache.Images)
	for k, d := range cfg.Timing {
		v.Set("timing."+k, d.String())
	}
	v.Set("store.path", cfg.Store.Path)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
