package eventlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/grovetools/lograt/pkg/fsevent"
)

// TimeLayout renders timestamps as DD-MM-YYYY HH:MM:SS AM/PM.
const TimeLayout = "02-01-2006 03:04:05 PM"

// FormatLine renders one event log line, including the trailing newline.
func FormatLine(ev fsevent.Event, watchName string, level Level, at time.Time) string {
	return fmt.Sprintf("[%s]\t  %-10s - %-26s %s\n",
		level.Tag(),
		strings.ToUpper(ev.Kind.String()),
		DisplayPath(ev.Path, watchName),
		at.Format(TimeLayout),
	)
}

// DisplayPath strips everything up to and including the first occurrence of
// watchName from path, so the result is relative to the watched root.
// The root itself displays as watchName. A path that does not contain
// watchName is returned unchanged.
func DisplayPath(path, watchName string) string {
	if watchName == "" {
		return path
	}
	idx := strings.Index(path, watchName)
	if idx < 0 {
		return path
	}
	rest := strings.TrimLeft(path[idx+len(watchName):], `/\`)
	if rest == "" {
		return watchName
	}
	return rest
}
