package logging

// Config is the "logging" section of lograt.yml.
type Config struct {
	// Level is the minimum diagnostic level. LOGRAT_LOG_LEVEL wins over it.
	Level string `yaml:"level"`
	// ReportCaller adds file:line to every entry. Also LOGRAT_LOG_CALLER=true.
	ReportCaller bool           `yaml:"report_caller"`
	File         FileSinkConfig `yaml:"file"`
	Format       FormatConfig   `yaml:"format"`
}

// FileSinkConfig sends diagnostics to a rotating file as well.
type FileSinkConfig struct {
	Enabled bool `yaml:"enabled"`
	// Path defaults to lograt.log in the lograt state directory.
	Path string `yaml:"path"`
	// MaxSizeMB rotates the file once it reaches this size. Zero means 100.
	MaxSizeMB int `yaml:"max_size_mb"`
}

// FormatConfig selects how diagnostic entries look.
type FormatConfig struct {
	// Preset is "default", "simple" (no timestamp or component) or "json".
	Preset           string `yaml:"preset"`
	DisableTimestamp bool   `yaml:"disable_timestamp"`
	DisableComponent bool   `yaml:"disable_component"`
	// StructuredToStderr is "auto" (only when stderr is not a terminal, or
	// at debug level), "always" or "never".
	StructuredToStderr string `yaml:"structured_to_stderr"`
}
