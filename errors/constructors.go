package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *LogratError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *LogratError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// UnknownEventKind reports an event kind outside the routed vocabulary.
// It means the watch backend and the router have drifted apart.
func UnknownEventKind(kind string, path string) *LogratError {
	return New(ErrCodeUnknownEventKind, fmt.Sprintf("unknown filesystem event kind '%s'", kind)).
		WithDetail("kind", kind).
		WithDetail("path", path)
}

// WatchFailed creates an error for a watch that could not be established or kept alive
func WatchFailed(name, path string, err error) *LogratError {
	return Wrap(err, ErrCodeWatchFailed, fmt.Sprintf("watch '%s' failed on %s", name, path)).
		WithDetail("watch", name).
		WithDetail("path", path)
}

// DuplicateWatchName creates an error for two watches sharing a name in one session
func DuplicateWatchName(name string) *LogratError {
	return New(ErrCodeDuplicateWatchName, fmt.Sprintf("watch name '%s' is already in use", name)).
		WithDetail("watch", name)
}

// WorkerNotFound creates an error for a kill request naming no active worker
func WorkerNotFound(name string) *LogratError {
	return New(ErrCodeWorkerNotFound, fmt.Sprintf("no active worker named '%s'", name)).
		WithDetail("worker", name)
}

// LogWrite creates an error for a failed event log append
func LogWrite(path string, err error) *LogratError {
	return Wrap(err, ErrCodeLogWrite, fmt.Sprintf("failed to append to event log %s", path)).
		WithDetail("path", path)
}

// AnalysisWrite creates an error for a failed analysis file update
func AnalysisWrite(path string, err error) *LogratError {
	return Wrap(err, ErrCodeAnalysisWrite, fmt.Sprintf("failed to update analysis file %s", path)).
		WithDetail("path", path)
}
