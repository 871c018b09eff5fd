// Package config defines the application configuration and its loading
// from files, environment variables, and command-line flags.
package config

import (
	"fmt"
	"strings"
)

// Config is the complete configuration for the numberbook pipeline.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Data     DataConfig     `mapstructure:"data" yaml:"data" json:"data"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Fetch    FetchConfig    `mapstructure:"fetch" yaml:"fetch" json:"fetch"`
	Assemble AssembleConfig `mapstructure:"assemble" yaml:"assemble" json:"assemble"`
}

// DataConfig locates the on-disk data directories.
type DataConfig struct {
	RawDir       string `mapstructure:"raw_dir" yaml:"raw_dir" json:"raw_dir"`
	NumbersDir   string `mapstructure:"numbers_dir" yaml:"numbers_dir" json:"numbers_dir"`
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	ManifestFile string `mapstructure:"manifest_file" yaml:"manifest_file" json:"manifest_file"`
}

// PipelineConfig tunes extraction and composition.
type PipelineConfig struct {
	MaxNumber           int     `mapstructure:"max_number" yaml:"max_number" json:"max_number"`
	MinConfidence       float64 `mapstructure:"min_confidence" yaml:"min_confidence" json:"min_confidence"`
	TokenGapThreshold   int     `mapstructure:"token_gap_threshold" yaml:"token_gap_threshold" json:"token_gap_threshold"`
	ExtractionMargin    int     `mapstructure:"extraction_margin" yaml:"extraction_margin" json:"extraction_margin"`
	BackgroundThreshold float64 `mapstructure:"background_threshold" yaml:"background_threshold" json:"background_threshold"`
	InterTokenSpacing   int     `mapstructure:"inter_token_spacing" yaml:"inter_token_spacing" json:"inter_token_spacing"`
	Workers             int     `mapstructure:"workers" yaml:"workers" json:"workers"`
}

// FetchConfig configures Internet Archive acquisition.
type FetchConfig struct {
	Email      string `mapstructure:"email" yaml:"email" json:"email"`
	Collection string `mapstructure:"collection" yaml:"collection" json:"collection"`
	MaxItems   int    `mapstructure:"max_items" yaml:"max_items" json:"max_items"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// AssembleConfig controls the book page layout.
type AssembleConfig struct {
	Columns            int `mapstructure:"columns" yaml:"columns" json:"columns"`
	ColumnWidth        int `mapstructure:"column_width" yaml:"column_width" json:"column_width"`
	ColumnTargetHeight int `mapstructure:"column_target_height" yaml:"column_target_height" json:"column_target_height"`
	MaxPerPage         int `mapstructure:"max_per_page" yaml:"max_per_page" json:"max_per_page"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []string

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log_level %q", c.LogLevel))
	}
	if c.Pipeline.MaxNumber < 1 {
		errs = append(errs, "pipeline.max_number must be >= 1")
	}
	if c.Pipeline.MinConfidence < 0 || c.Pipeline.MinConfidence > 1 {
		errs = append(errs, "pipeline.min_confidence must be in [0, 1]")
	}
	if c.Pipeline.TokenGapThreshold < 0 {
		errs = append(errs, "pipeline.token_gap_threshold must be >= 0")
	}
	if c.Pipeline.ExtractionMargin < 0 {
		errs = append(errs, "pipeline.extraction_margin must be >= 0")
	}
	if c.Pipeline.BackgroundThreshold < 0 {
		errs = append(errs, "pipeline.background_threshold must be >= 0")
	}
	if c.Pipeline.InterTokenSpacing < 0 {
		errs = append(errs, "pipeline.inter_token_spacing must be >= 0")
	}
	if c.Pipeline.Workers < 0 {
		errs = append(errs, "pipeline.workers must be >= 0")
	}
	if c.Assemble.Columns < 1 {
		errs = append(errs, "assemble.columns must be >= 1")
	}
	if c.Assemble.ColumnWidth < 1 {
		errs = append(errs, "assemble.column_width must be >= 1")
	}
	if c.Assemble.ColumnTargetHeight < 1 {
		errs = append(errs, "assemble.column_target_height must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}
