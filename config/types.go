package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

const (
	DefaultLogDir       = "logs"
	DefaultLogFile      = "fsevents_analysis.log"
	DefaultAnalysisFile = "fsevents_log.json"
	DefaultStartMethod  = "thread"
	DefaultDeletedLevel = "warn"
	DefaultJoinInterval = "1s"
)

// Config is the lograt.yml configuration.
type Config struct {
	// Watches lists the directories to watch when none are given on the
	// command line.
	Watches []WatchConfig `yaml:"watches,omitempty" toml:"watches,omitempty"`

	// Recursive also watches every subdirectory of each root.
	Recursive bool `yaml:"recursive,omitempty" toml:"recursive,omitempty"`

	// StartMethod is "thread" (default) or "process".
	StartMethod string `yaml:"start_method,omitempty" toml:"start_method,omitempty"`

	// LogDir holds the event log and the analysis file.
	LogDir string `yaml:"log_dir,omitempty" toml:"log_dir,omitempty"`

	// LogFile is the event log name, relative to LogDir unless absolute.
	LogFile string `yaml:"log_file,omitempty" toml:"log_file,omitempty"`

	// AnalysisFile is the analysis index name, relative to LogDir unless absolute.
	AnalysisFile string `yaml:"analysis_file,omitempty" toml:"analysis_file,omitempty"`

	// DeletedLevel is the severity logged for deletions: warn (default) or critical.
	DeletedLevel string `yaml:"deleted_level,omitempty" toml:"deleted_level,omitempty"`

	// Ignore holds .dockerignore-style patterns relative to each watch root.
	Ignore []string `yaml:"ignore,omitempty" toml:"ignore,omitempty"`

	// JoinInterval is how long a stopping child process gets before it is
	// killed, as a Go duration string.
	JoinInterval string `yaml:"join_interval,omitempty" toml:"join_interval,omitempty"`

	// Rotation controls size-based rotation of the event log.
	Rotation RotationConfig `yaml:"rotation,omitempty" toml:"rotation,omitempty"`

	// Extensions captures any other top-level section, such as "logging".
	Extensions map[string]interface{} `yaml:",inline" toml:"-"`

	sources []string
}

// WatchConfig is one configured watch.
type WatchConfig struct {
	Path string `yaml:"path" toml:"path"`
	// Name defaults to a unique name derived from Path.
	Name string `yaml:"name,omitempty" toml:"name,omitempty"`
}

// RotationConfig mirrors lumberjack's rotation settings.
type RotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb,omitempty" toml:"max_size_mb,omitempty"`
	MaxBackups int  `yaml:"max_backups,omitempty" toml:"max_backups,omitempty"`
	MaxAgeDays int  `yaml:"max_age_days,omitempty" toml:"max_age_days,omitempty"`
	Compress   bool `yaml:"compress,omitempty" toml:"compress,omitempty"`
}

// coreKeys are the top-level keys owned by Config itself. Everything else in
// a file is an extension.
var coreKeys = map[string]bool{
	"watches":       true,
	"recursive":     true,
	"start_method":  true,
	"log_dir":       true,
	"log_file":      true,
	"analysis_file": true,
	"deleted_level": true,
	"ignore":        true,
	"join_interval": true,
	"rotation":      true,
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.StartMethod == "" {
		c.StartMethod = DefaultStartMethod
	}
	if c.LogDir == "" {
		c.LogDir = DefaultLogDir
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	if c.AnalysisFile == "" {
		c.AnalysisFile = DefaultAnalysisFile
	}
	if c.DeletedLevel == "" {
		c.DeletedLevel = DefaultDeletedLevel
	}
	if c.JoinInterval == "" {
		c.JoinInterval = DefaultJoinInterval
	}
}

// Sources lists the files this configuration was loaded from, lowest
// precedence first.
func (c *Config) Sources() []string {
	return c.sources
}

// JoinIntervalDuration parses JoinInterval. Call Validate first.
func (c *Config) JoinIntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.JoinInterval)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultJoinInterval)
	}
	return d
}

// WatchPaths returns the configured watch paths and names. Names is nil
// unless every watch has one, so partially named lists fall back to
// derived names.
func (c *Config) WatchPaths() (paths, names []string) {
	allNamed := len(c.Watches) > 0
	for _, w := range c.Watches {
		paths = append(paths, w.Path)
		names = append(names, w.Name)
		if w.Name == "" {
			allNamed = false
		}
	}
	if !allNamed {
		names = nil
	}
	return paths, names
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded lograt.yml into the provided target struct. The target must be a
// pointer. A missing section leaves target untouched.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
