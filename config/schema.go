package config

import (
	"encoding/json"
	"sync"

	"github.com/grovetools/lograt/schema"
	"github.com/invopop/jsonschema"
)

//go:generate go run ../tools/schema-generator -o ../schema/definitions/lograt.schema.json

// GenerateSchema generates the JSON Schema for lograt.yml. Known properties
// are closed; unknown top-level keys are allowed so extension sections such
// as "logging" pass.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	// Mirrors Config without Extensions.
	type BaseConfig struct {
		Watches      []WatchConfig  `yaml:"watches,omitempty" jsonschema:"description=Directories to watch when none are given on the command line"`
		Recursive    bool           `yaml:"recursive,omitempty" jsonschema:"description=Also watch every subdirectory"`
		StartMethod  string         `yaml:"start_method,omitempty" jsonschema:"enum=thread,enum=process,description=Run watches as goroutines or child processes"`
		LogDir       string         `yaml:"log_dir,omitempty" jsonschema:"description=Directory for the event log and analysis file"`
		LogFile      string         `yaml:"log_file,omitempty" jsonschema:"description=Event log file name"`
		AnalysisFile string         `yaml:"analysis_file,omitempty" jsonschema:"description=Analysis index file name"`
		DeletedLevel string         `yaml:"deleted_level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=warning,enum=error,enum=critical,description=Severity logged for deletions"`
		Ignore       []string       `yaml:"ignore,omitempty" jsonschema:"description=.dockerignore-style patterns relative to each watch root"`
		JoinInterval string         `yaml:"join_interval,omitempty" jsonschema:"description=Grace period for stopping child processes (Go duration)"`
		Rotation     RotationConfig `yaml:"rotation,omitempty" jsonschema:"description=Event log rotation"`
	}

	s := r.Reflect(&BaseConfig{})
	s.Title = "lograt Configuration"
	s.Description = "Schema for lograt.yml."
	s.Version = "http://json-schema.org/draft-07/schema#"
	s.AdditionalProperties = jsonschema.TrueSchema

	return json.MarshalIndent(s, "", "  ")
}

var (
	validatorOnce sync.Once
	validator     *schema.Validator
	validatorErr  error
)

// NewSchemaValidator returns the validator for GenerateSchema's schema,
// compiled once per process.
func NewSchemaValidator() (*schema.Validator, error) {
	validatorOnce.Do(func() {
		data, err := GenerateSchema()
		if err != nil {
			validatorErr = err
			return
		}
		validator, validatorErr = schema.NewValidator("lograt.json", data)
	})
	return validator, validatorErr
}
