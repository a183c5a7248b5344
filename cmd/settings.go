package cmd

import (
	"path/filepath"

	"github.com/grovetools/lograt/cli"
	"github.com/grovetools/lograt/config"
	"github.com/grovetools/lograt/pkg/eventlog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// addOutputFlags registers the flags that locate the event log and the
// analysis file.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-dir", "", "Directory holding the event log and analysis file (default: logs)")
	cmd.Flags().String("log-file", "", "Event log file name (default: fsevents_analysis.log)")
	cmd.Flags().String("analysis-file", "", "Analysis file name (default: fsevents_log.json)")
}

// loadSettings loads configuration and lays any flags the user set over it.
func loadSettings(cmd *cobra.Command, logger *logrus.Entry) (*config.Config, error) {
	cfg, err := cli.LoadConfig(cli.GetOptions(cmd), logger)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}

	str("log-dir", &cfg.LogDir)
	str("log-file", &cfg.LogFile)
	str("analysis-file", &cfg.AnalysisFile)
	str("start-method", &cfg.StartMethod)
	str("deleted-level", &cfg.DeletedLevel)
	str("join-interval", &cfg.JoinInterval)

	if flags.Changed("recursive") {
		cfg.Recursive, _ = flags.GetBool("recursive")
	}
	if flags.Changed("ignore") {
		cfg.Ignore, _ = flags.GetStringArray("ignore")
	}
}

// eventlogOptions maps configuration onto eventlog.Options. The log
// directory is made absolute so child processes agree on it.
func eventlogOptions(cfg *config.Config) (eventlog.Options, error) {
	dir, err := filepath.Abs(cfg.LogDir)
	if err != nil {
		return eventlog.Options{}, err
	}
	return eventlog.Options{
		Dir:          dir,
		LogFile:      cfg.LogFile,
		AnalysisFile: cfg.AnalysisFile,
		Rotation: eventlog.Rotation{
			MaxSizeMB:  cfg.Rotation.MaxSizeMB,
			MaxBackups: cfg.Rotation.MaxBackups,
			MaxAgeDays: cfg.Rotation.MaxAgeDays,
			Compress:   cfg.Rotation.Compress,
		},
	}, nil
}
