package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files.
	ConfigFileName = "numberbook"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "NUMBERBOOK"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader backed by the global viper instance so
// cobra flag bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// GetViper exposes the underlying viper instance.
func (l *Loader) GetViper() *viper.Viper { return l.v }

// Load reads configuration from the default search paths, environment
// variables, and defaults, then validates it.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine; defaults and env vars apply.
	}
	return l.unmarshal()
}

// LoadWithFile loads configuration from an explicit file path.
func (l *Loader) LoadWithFile(path string) (*Config, error) {
	l.setupEnvironment()
	l.setDefaults()
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
		l.v.AddConfigPath(filepath.Join(home, ".config", "numberbook"))
	}
	if runtime.GOOS != "windows" {
		l.v.AddConfigPath("/etc/numberbook")
	}
}

func (l *Loader) setupEnvironment() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

func (l *Loader) setDefaults() {
	l.v.SetDefault("log_level", "info")
	l.v.SetDefault("verbose", false)

	l.v.SetDefault("data.raw_dir", "data/raw")
	l.v.SetDefault("data.numbers_dir", "data/numbers")
	l.v.SetDefault("data.output_dir", "output")
	l.v.SetDefault("data.manifest_file", "data/numbers/manifest.yaml")

	l.v.SetDefault("pipeline.max_number", 50000)
	l.v.SetDefault("pipeline.min_confidence", 0.90)
	l.v.SetDefault("pipeline.token_gap_threshold", 16)
	l.v.SetDefault("pipeline.extraction_margin", 2)
	l.v.SetDefault("pipeline.background_threshold", 0.005)
	l.v.SetDefault("pipeline.inter_token_spacing", 6)
	l.v.SetDefault("pipeline.workers", 0)

	l.v.SetDefault("fetch.max_items", 10)
	l.v.SetDefault("fetch.timeout_sec", 120)

	// Letter page at 96 DPI with book margins (see assembler).
	l.v.SetDefault("assemble.columns", 5)
	l.v.SetDefault("assemble.column_width", 75)
	l.v.SetDefault("assemble.column_target_height", 790)
	l.v.SetDefault("assemble.max_per_page", 1000)
}
