package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/grovetools/lograt/cli"
	"github.com/grovetools/lograt/config"
	"github.com/grovetools/lograt/errors"
	"github.com/grovetools/lograt/logging"
	"github.com/grovetools/lograt/pkg/eventlog"
	"github.com/grovetools/lograt/pkg/manager"
	"github.com/grovetools/lograt/pkg/observer"
	"github.com/grovetools/lograt/pkg/router"
	"github.com/grovetools/lograt/util/pathutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the `watch` command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [PATH...]",
		Short: "Watch directories and log their filesystem events",
		Long: `Watches each PATH and writes one line per event to the event log, plus
a per-kind index of touched paths to the analysis file. Without PATH
arguments the watches listed in lograt.yml are used.

Each watch is named after its directory. Colliding names are widened with
parent segments, or set explicitly with --name (once per PATH, in order).

Examples:
  # Watch two trees recursively
  lograt watch -r /srv/photos /srv/docs

  # One child process per watch, deletions logged as critical
  lograt watch --start-method process --deleted-level critical /data

  # Kill individual watches from stdin
  lograt watch -i -n photos -n docs /srv/photos /srv/docs
`,
		RunE: runWatchE,
	}

	cmd.Flags().StringArrayP("name", "n", nil, "Name for the watch on the matching PATH (repeatable)")
	cmd.Flags().BoolP("recursive", "r", false, "Also watch every subdirectory")
	cmd.Flags().String("start-method", "", "How watches run: thread or process (default: thread)")
	cmd.Flags().String("deleted-level", "", "Severity of deletions: warn or critical (default: warn)")
	cmd.Flags().StringArray("ignore", nil, "Ignore pattern relative to the watch root (repeatable)")
	cmd.Flags().String("join-interval", "", "Grace period before a stopping child process is killed (default: 1s)")
	cmd.Flags().BoolP("interactive", "i", false, "Read list, kill NAME and quit commands from stdin")
	addOutputFlags(cmd)

	return cmd
}

func runWatchE(cmd *cobra.Command, args []string) error {
	logger := cli.GetLogger(cmd, "watch")
	cfg, err := loadSettings(cmd, logger)
	if err != nil {
		return err
	}

	paths := args
	names, _ := cmd.Flags().GetStringArray("name")
	if len(paths) == 0 {
		var cfgNames []string
		paths, cfgNames = cfg.WatchPaths()
		if len(names) == 0 {
			names = cfgNames
		}
	}
	if len(paths) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "nothing to watch: pass PATH arguments or list watches in lograt.yml")
	}
	paths, err = pathutil.ExpandAll(paths)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid watch path")
	}
	for _, dup := range pathutil.Duplicates(paths) {
		logger.WithField("path", dup).Warn("Directory is watched more than once")
	}

	method, err := observer.ParseStartMethod(cfg.StartMethod)
	if err != nil {
		return err
	}
	deleted, err := eventlog.ParseLevel(cfg.DeletedLevel)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid deleted level")
	}

	logOpts, err := eventlogOptions(cfg)
	if err != nil {
		return err
	}
	logOpts.Logger = logging.NewLogger("eventlog")
	events, err := eventlog.New(logOpts)
	if err != nil {
		return err
	}
	defer events.Close()

	rt, err := router.New(events, router.Options{
		DeletedLevel: &deleted,
		Ignore:       cfg.Ignore,
		Logger:       logging.NewLogger("router"),
	})
	if err != nil {
		return err
	}

	orch := observer.New(rt, observer.Options{
		Recursive:    cfg.Recursive,
		JoinInterval: cfg.JoinIntervalDuration(),
		ProcessArgs:  childArgs(cfg, logOpts, cli.GetOptions(cmd)),
		Logger:       logging.NewLogger("orchestrator"),
	})
	watches, err := orch.CreateWatches(paths, names)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, err := orch.Run(ctx, watches, method)
	if err != nil {
		return err
	}
	mgr := manager.New(group.Workers(), logging.NewLogger("manager"))

	logger.WithFields(logrus.Fields{
		"watches":  mgr.WorkersCount(),
		"method":   string(method),
		"log":      events.LogPath(),
		"analysis": events.AnalysisPath(),
	}).Debug("Watching")

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		pretty := logging.NewPrettyLogger().WithWriter(cmd.ErrOrStderr())
		for _, w := range watches {
			pretty.Path(w.Name(), w.Root())
		}
		pretty.InfoPretty(fmt.Sprintf("%d watches running (%s). Commands: list, kill NAME, quit", len(watches), method))
		go runInteractive(ctx, cmd.InOrStdin(), cmd.ErrOrStderr(), mgr, group.Stop)
	}

	return group.Wait()
}

// childArgs are the flags a process-mode child needs to write to the same
// outputs as this process. Children always run their single watch in-process.
func childArgs(cfg *config.Config, logOpts eventlog.Options, opts cli.CommandOptions) []string {
	args := []string{
		"--start-method", string(observer.StartThread),
		"--log-dir", logOpts.Dir,
		"--log-file", cfg.LogFile,
		"--analysis-file", cfg.AnalysisFile,
		"--deleted-level", cfg.DeletedLevel,
	}
	for _, pattern := range cfg.Ignore {
		args = append(args, "--ignore", pattern)
	}
	if opts.ConfigFile != "" {
		args = append(args, "--config", opts.ConfigFile)
	}
	if opts.Verbose {
		args = append(args, "--verbose")
	}
	return args
}
