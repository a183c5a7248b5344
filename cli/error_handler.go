package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/lograt/errors"
)

// ErrorHandler turns lograt errors into actionable messages.
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates an error handler writing to stderr.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, errors.ErrCodeConfigNotFound)
}

// Handle prints a message for err and returns it unchanged.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	le, _ := errors.As(err)
	detail := func(key string) interface{} {
		if le == nil {
			return ""
		}
		return le.Details[key]
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(h.Out, "Configuration not found. Create lograt.yml or pass --config.\n")

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fmt.Fprintf(h.Out, "Invalid configuration: %v\n", err)
		fmt.Fprintf(h.Out, "Run 'lograt config schema' to see the accepted keys.\n")

	case errors.ErrCodeDuplicateWatchName:
		fmt.Fprintf(h.Out, "Watch name '%v' is used more than once. Give each watch a unique --name.\n", detail("watch"))

	case errors.ErrCodeWatchFailed:
		fmt.Fprintf(h.Out, "Watch '%v' on %v failed: %v\n", detail("watch"), detail("path"), err)

	case errors.ErrCodeUnknownEventKind:
		fmt.Fprintf(h.Out, "Received an event of unknown kind '%v' for %v\n", detail("kind"), detail("path"))

	case errors.ErrCodeWorkerNotFound:
		fmt.Fprintf(h.Out, "No running watch named '%v'\n", detail("worker"))

	case errors.ErrCodePermissionDenied:
		fmt.Fprintf(h.Out, "Permission denied: %v\n", err)

	default:
		fmt.Fprintf(h.Out, "Error: %v\n", err)
	}

	if h.Verbose && le != nil {
		fmt.Fprintf(h.Out, "\nError details:\n%s\n", le.ToJSON())
	}
	return err
}
