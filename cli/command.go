package cli

import (
	"os"

	"github.com/grovetools/lograt/config"
	"github.com/grovetools/lograt/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommandOptions holds the options shared by every lograt command.
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a command carrying lograt's standard flags.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to lograt.yml config file")

	SetStyledHelp(cmd)

	return cmd
}

// GetLogger returns the component logger for a command, raised to debug
// when --verbose is set.
func GetLogger(cmd *cobra.Command, component string) *logrus.Entry {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logging.SetLevel(logrus.DebugLevel)
	}
	return logging.NewLogger(component)
}

// GetOptions extracts the standard options from a command.
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// LoadConfig loads the file named by --config, or the merged global and
// project configuration. With no configuration anywhere it returns the
// defaults.
func LoadConfig(opts CommandOptions, logger *logrus.Entry) (*config.Config, error) {
	if opts.ConfigFile != "" {
		return config.Load(opts.ConfigFile)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadFromWithLogger(cwd, logger.Logger)
	if err != nil {
		if isNotFound(err) {
			logger.Debug("No configuration found, using defaults")
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}
