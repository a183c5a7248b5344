package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/grovetools/lograt/cli"
	"github.com/grovetools/lograt/errors"
	"github.com/grovetools/lograt/pkg/eventlog"
	"github.com/grovetools/lograt/pkg/fsevent"
	"github.com/spf13/cobra"
)

// NewAnalysisCmd creates the `analysis` command.
func NewAnalysisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analysis",
		Short: "Show which paths saw which kinds of events",
		Long: `Reads the analysis file written by watch and prints every recorded path
grouped by event kind.

Examples:
  # Everything, as a table
  lograt analysis

  # Only deletions, as JSON
  lograt analysis --kind deleted --json
`,
		Args: cobra.NoArgs,
		RunE: runAnalysisE,
	}

	cmd.Flags().StringP("kind", "k", "", "Only show this kind: created, deleted, modified, moved or closed")
	addOutputFlags(cmd)

	return cmd
}

func runAnalysisE(cmd *cobra.Command, args []string) error {
	logger := cli.GetLogger(cmd, "analysis")
	cfg, err := loadSettings(cmd, logger)
	if err != nil {
		return err
	}
	logOpts, err := eventlogOptions(cfg)
	if err != nil {
		return err
	}
	_, analysisPath := eventlog.OutputPaths(logOpts)

	index, err := eventlog.ReadIndexFile(analysisPath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to read analysis file").
			WithDetail("path", analysisPath)
	}

	if kind, _ := cmd.Flags().GetString("kind"); kind != "" {
		if !fsevent.Kind(kind).Valid() {
			return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown event kind '%s'", kind)).
				WithDetail("valid", fsevent.Kinds)
		}
		index = eventlog.Index{kind: index.Paths(kind)}
	}

	out := cmd.OutOrStdout()
	if cli.GetOptions(cmd).JSONOutput {
		data, err := json.MarshalIndent(index, "", "    ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintln(out, renderIndex(index))
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	kindStyles  = map[string]lipgloss.Style{
		string(fsevent.Created):  cellStyle.Foreground(lipgloss.Color("10")),
		string(fsevent.Deleted):  cellStyle.Foreground(lipgloss.Color("9")),
		string(fsevent.Modified): cellStyle.Foreground(lipgloss.Color("12")),
		string(fsevent.Moved):    cellStyle.Foreground(lipgloss.Color("13")),
		string(fsevent.Closed):   cellStyle.Foreground(lipgloss.Color("11")),
	}
)

// renderIndex draws index as a KIND | PATH table followed by a per-kind
// count.
func renderIndex(index eventlog.Index) string {
	var rows [][]string
	total := 0
	for _, kind := range index.Kinds() {
		for _, path := range index.Paths(kind) {
			rows = append(rows, []string{kind, path})
		}
		total += index.Count(kind)
	}
	if total == 0 {
		return "No events recorded."
	}

	t := ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("KIND", "PATH").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			if col == 0 && row >= 0 && row < len(rows) {
				if style, ok := kindStyles[rows[row][0]]; ok {
					return style
				}
			}
			return cellStyle
		})

	summary := ltable.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle })
	for _, kind := range index.Kinds() {
		summary = summary.Row(kind, strconv.Itoa(index.Count(kind)))
	}
	summary = summary.Row("total", strconv.Itoa(total))

	return t.String() + "\n" + summary.String()
}
