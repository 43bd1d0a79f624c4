// Package config manages grouping configuration using Viper.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/gilchrisn/peer-grouping/pkg/grouping"
	"github.com/gilchrisn/peer-grouping/pkg/ingest"
	"github.com/gilchrisn/peer-grouping/pkg/models"
	"github.com/gilchrisn/peer-grouping/pkg/priority"
	"github.com/gilchrisn/peer-grouping/pkg/report"
	"github.com/gilchrisn/peer-grouping/pkg/validation"
)

// EnvPrefix prefixes environment overrides, e.g. PEERGROUP_GROUPING_MAX_GROUP_SIZE.
const EnvPrefix = "PEERGROUP"

// Config wraps a viper instance with typed getters.
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Grouping parameters
	v.SetDefault("grouping.max_group_size", grouping.DefaultMaxGroupSize)
	v.SetDefault("grouping.tie_break", string(grouping.Lexicographic))
	v.SetDefault("grouping.record_decisions", true)

	// Priority thresholds
	th := priority.DefaultThresholds()
	v.SetDefault("priority.tier1_min", th.Tier1Min)
	v.SetDefault("priority.tier2_min", th.Tier2Min)
	v.SetDefault("priority.tier3_min", th.Tier3Min)
	v.SetDefault("priority.tier4_exact", th.Tier4Exact)

	// Diagnostics
	diag := validation.DefaultOptions()
	v.SetDefault("validation.typo_tolerance", diag.TypoTolerance)
	v.SetDefault("validation.top_popular", diag.TopPopular)

	// Survey columns
	cols := ingest.DefaultColumns()
	v.SetDefault("ingest.first_name_column", cols.FirstName)
	v.SetDefault("ingest.last_name_column", cols.LastName)
	v.SetDefault("ingest.full_name_column", cols.FullName)
	v.SetDefault("ingest.requested_columns", cols.Requested)

	v.SetDefault("output.format", report.FormatText)
	v.SetDefault("logging.level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

func (c *Config) MaxGroupSize() int { return c.v.GetInt("grouping.max_group_size") }
func (c *Config) TieBreak() grouping.TieBreak { return grouping.TieBreak(c.v.GetString("grouping.tie_break")) }
func (c *Config) RecordDecisions() bool { return c.v.GetBool("grouping.record_decisions") }

func (c *Config) TypoTolerance() int { return c.v.GetInt("validation.typo_tolerance") }
func (c *Config) TopPopular() int { return c.v.GetInt("validation.top_popular") }

func (c *Config) OutputFormat() string { return strings.ToLower(c.v.GetString("output.format")) }
func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }

// Thresholds returns the configured tier cut-points.
func (c *Config) Thresholds() priority.Thresholds {
	return priority.Thresholds{
		Tier1Min:   c.v.GetFloat64("priority.tier1_min"),
		Tier2Min:   c.v.GetFloat64("priority.tier2_min"),
		Tier3Min:   c.v.GetFloat64("priority.tier3_min"),
		Tier4Exact: c.v.GetFloat64("priority.tier4_exact"),
	}
}

// GroupingOptions returns the clustering engine options.
func (c *Config) GroupingOptions() grouping.Options {
	return grouping.Options{
		MaxGroupSize:    c.MaxGroupSize(),
		TieBreak:        c.TieBreak(),
		RecordDecisions: c.RecordDecisions(),
	}
}

// ValidationOptions returns the diagnostic options.
func (c *Config) ValidationOptions() validation.Options {
	return validation.Options{
		TypoTolerance: c.TypoTolerance(),
		TopPopular:    c.TopPopular(),
	}
}

// Columns returns the survey column names.
func (c *Config) Columns() ingest.Columns {
	return ingest.Columns{
		FirstName: c.v.GetString("ingest.first_name_column"),
		LastName:  c.v.GetString("ingest.last_name_column"),
		FullName:  c.v.GetString("ingest.full_name_column"),
		Requested: c.v.GetStringSlice("ingest.requested_columns"),
	}
}

// Validate rejects the configuration before any processing starts.
func (c *Config) Validate() error {
	if err := c.GroupingOptions().Validate(); err != nil {
		return err
	}
	if err := c.Thresholds().Validate(); err != nil {
		return err
	}
	if _, err := report.NewWriter(c.OutputFormat()); err != nil {
		return &models.InvalidConfigError{Field: "output.format", Value: c.OutputFormat(), Reason: err.Error()}
	}
	if c.TypoTolerance() < 0 {
		return &models.InvalidConfigError{Field: "validation.typo_tolerance", Value: c.TypoTolerance(), Reason: "must not be negative"}
	}
	if _, err := zerolog.ParseLevel(c.LogLevel()); err != nil {
		return &models.InvalidConfigError{Field: "logging.level", Value: c.LogLevel(), Reason: err.Error()}
	}
	return nil
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "peer-grouping").Logger()
}
