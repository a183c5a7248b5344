// Command schema-generator writes the lograt.yml JSON Schema to disk.
//
//	go run ./tools/schema-generator -o schema/definitions/lograt.schema.json
package main

import (
	"os"
	"path/filepath"

	"github.com/grovetools/lograt/config"
	"github.com/grovetools/lograt/logging"
	"github.com/spf13/pflag"
)

func main() {
	output := pflag.StringP("output", "o", filepath.Join("schema", "definitions", "lograt.schema.json"), "Schema file to write")
	pflag.Parse()

	logger := logging.NewLogger("schema-generator")

	schemaBytes, err := config.GenerateSchema()
	if err != nil {
		logger.WithError(err).Fatal("Error generating schema")
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		logger.WithError(err).Fatal("Error creating schema directory")
	}
	if err := os.WriteFile(*output, append(schemaBytes, '\n'), 0o644); err != nil {
		logger.WithError(err).Fatal("Error writing schema file")
	}

	logger.WithField("path", *output).Info("Generated lograt schema")
}
