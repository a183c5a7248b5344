package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/grovetools/lograt/errors"
	"github.com/grovetools/lograt/logging"
	"github.com/grovetools/lograt/pkg/manager"
)

// runInteractive reads commands from in until quit, end of input, or ctx is
// done. quit calls stop.
func runInteractive(ctx context.Context, in io.Reader, out io.Writer, mgr *manager.Manager, stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	pretty := logging.NewPrettyLogger().WithWriter(out)
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !handleCommand(line, out, pretty, mgr) {
				stop()
				return
			}
		}
	}
}

// handleCommand runs one interactive command and reports whether to keep
// reading.
func handleCommand(line string, out io.Writer, pretty *logging.PrettyLogger, mgr *manager.Manager) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "list", "ls":
		for _, w := range mgr.ActiveWorkers() {
			kind := "thread"
			if w.IsProcess() {
				kind = "process"
			}
			if p, ok := w.(interface{ Pid() int }); ok {
				kind = fmt.Sprintf("%s pid=%d", kind, p.Pid())
			}
			fmt.Fprintf(out, "  %s\t%s\n", w.Name(), kind)
		}
		pretty.InfoPretty(fmt.Sprintf("%d active, %d killed", len(mgr.ActiveWorkers()), mgr.KilledCount()))

	case "kill":
		if len(fields) != 2 {
			pretty.WarnPretty("usage: kill NAME")
			return true
		}
		if w := mgr.Kill(fields[1]); w == nil {
			pretty.ErrorPretty("kill", errors.WorkerNotFound(fields[1]))
		} else {
			pretty.Success(fmt.Sprintf("Stopped watch %s", w.Name()))
		}

	case "quit", "exit", "q":
		return false

	case "help", "?":
		fmt.Fprintln(out, "  list        show running watches")
		fmt.Fprintln(out, "  kill NAME   stop one watch")
		fmt.Fprintln(out, "  quit        stop every watch and exit")

	default:
		pretty.WarnPretty(fmt.Sprintf("unknown command %q (try help)", fields[0]))
	}
	return true
}
