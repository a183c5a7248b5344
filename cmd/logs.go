package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/lograt/cli"
	"github.com/grovetools/lograt/logging"
	"github.com/grovetools/lograt/pkg/eventlog"
	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print or follow the event log",
		Long: `Prints the event log written by watch. With --follow, keeps printing
lines as they are appended, across rotations, until interrupted.

Examples:
  # Last 20 events
  lograt logs -n 20

  # Follow the log of another project
  lograt logs -f --log-dir /srv/app/logs
`,
		Args: cobra.NoArgs,
		RunE: runLogsE,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().IntP("lines", "n", -1, "Number of lines to show from the end of the log (default: all)")
	cmd.Flags().Bool("no-color", false, "Print lines without level colors")
	addOutputFlags(cmd)

	return cmd
}

func runLogsE(cmd *cobra.Command, args []string) error {
	logger := cli.GetLogger(cmd, "logs")
	cfg, err := loadSettings(cmd, logger)
	if err != nil {
		return err
	}
	logOpts, err := eventlogOptions(cfg)
	if err != nil {
		return err
	}
	logPath, _ := eventlog.OutputPaths(logOpts)

	follow, _ := cmd.Flags().GetBool("follow")
	lines, _ := cmd.Flags().GetInt("lines")
	noColor, _ := cmd.Flags().GetBool("no-color")

	offset, err := tailOffset(logPath, lines)
	if err != nil {
		if os.IsNotExist(err) && !follow {
			logging.NewPrettyLogger().WithWriter(cmd.ErrOrStderr()).WarnPretty(fmt.Sprintf("No event log at %s", logPath))
			return nil
		}
		if !os.IsNotExist(err) {
			return err
		}
		offset = 0
	}

	t, err := tail.TailFile(logPath, tail.Config{
		Follow:    follow,
		ReOpen:    follow,
		MustExist: !follow,
		Location:  &tail.SeekInfo{Offset: offset, Whence: io.SeekStart},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return err
	}
	defer t.Cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			_ = t.Stop()
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return t.Wait()
			}
			if line.Err != nil {
				logger.WithError(line.Err).Warn("Error reading event log")
				continue
			}
			if noColor {
				fmt.Fprintln(out, line.Text)
			} else {
				fmt.Fprintln(out, colorizeLine(line.Text))
			}
		}
	}
}

// tailOffset returns the byte offset of the last n lines of path. A negative
// n means the whole file.
func tailOffset(path string, n int) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, nil
	}
	if n == 0 {
		return int64(len(data)), nil
	}

	end := len(data)
	if end > 0 && data[end-1] == '\n' {
		end--
	}
	for i := 0; i < n; i++ {
		idx := bytes.LastIndexByte(data[:end], '\n')
		if idx < 0 {
			return 0, nil
		}
		end = idx
	}
	return int64(end + 1), nil
}

var levelStyles = map[string]lipgloss.Style{
	"[DEBUG]":    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	"[INFO]":     lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	"[WARN]":     lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	"[ERROR]":    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	"[CRITICAL]": lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

// colorizeLine styles the leading level tag of an event log line.
func colorizeLine(line string) string {
	tag, rest, ok := strings.Cut(line, "\t")
	if !ok {
		return line
	}
	style, known := levelStyles[tag]
	if !known {
		return line
	}
	return style.Render(tag) + "\t" + rest
}
