package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/grovetools/lograt/errors"
	"github.com/grovetools/lograt/version"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapText(t *testing.T) {
	assert.Equal(t, "short", wrapText("short", 20))
	assert.Equal(t, "one two\nthree", wrapText("one two three", 8))
	assert.Equal(t, "keep\nbreaks", wrapText("keep\nbreaks", 20))
}

func TestParseDescription(t *testing.T) {
	desc, examples := parseDescription("Watch directories.\n\nExamples:\n  lograt watch /srv")
	assert.Equal(t, "Watch directories.", desc)
	assert.Equal(t, "lograt watch /srv", examples)

	desc, examples = parseDescription("No examples here")
	assert.Equal(t, "No examples here", desc)
	assert.Empty(t, examples)
}

func TestStyledHelpListsFlagsAndCommands(t *testing.T) {
	root := NewStandardCommand("lograt", "Log filesystem events")
	root.AddCommand(&cobra.Command{Use: "watch", Short: "Watch directories", Run: func(*cobra.Command, []string) {}})
	ApplyStyledHelpRecursive(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})
	require.NoError(t, root.Execute())

	help := out.String()
	assert.Contains(t, help, "LOGRAT")
	assert.Contains(t, help, "watch")
	assert.Contains(t, help, "--config")
	assert.Contains(t, help, "Path to lograt.yml config file")
}

func TestGetOptions(t *testing.T) {
	cmd := NewStandardCommand("lograt", "")
	require.NoError(t, cmd.ParseFlags([]string{"-v", "--json", "-c", "/etc/lograt.yml"}))

	opts := GetOptions(cmd)
	assert.True(t, opts.Verbose)
	assert.True(t, opts.JSONOutput)
	assert.Equal(t, "/etc/lograt.yml", opts.ConfigFile)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "config not found", err: errors.ConfigNotFound("/x"), want: "Configuration not found"},
		{name: "duplicate", err: errors.DuplicateWatchName("photos"), want: "Watch name 'photos' is used more than once"},
		{name: "worker", err: errors.WorkerNotFound("docs"), want: "No running watch named 'docs'"},
		{name: "watch failed", err: errors.WatchFailed("a", "/srv/a", fmt.Errorf("boom")), want: "Watch 'a' on /srv/a failed"},
		{name: "wrapped", err: fmt.Errorf("outer: %w", errors.UnknownEventKind("attrib", "/p")), want: "unknown kind 'attrib' for /p"},
		{name: "plain", err: fmt.Errorf("plain failure"), want: "Error: plain failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			h := &ErrorHandler{Out: &out}
			assert.Equal(t, tt.err, h.Handle(tt.err))
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestErrorHandlerVerboseDetails(t *testing.T) {
	var out bytes.Buffer
	h := &ErrorHandler{Verbose: true, Out: &out}
	_ = h.Handle(errors.WorkerNotFound("docs"))
	assert.Contains(t, out.String(), `"code": "WORKER_NOT_FOUND"`)
	assert.Nil(t, h.Handle(nil))
}

func TestVersionCommand(t *testing.T) {
	root := NewStandardCommand("lograt", "")
	root.AddCommand(NewVersionCommand("lograt", version.Info{Version: "v1.2.3", Commit: "abc"}))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "lograt v1.2.3\n"))

	out.Reset()
	root.SetArgs([]string{"version", "--json"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), `"version": "v1.2.3"`)
}
