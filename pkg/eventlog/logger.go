// Package eventlog writes the lograt event log and maintains the analysis
// file that indexes observed paths by event kind.
//
// The event log is append-only text, one line per event. The analysis file
// is a JSON object mapping each event kind to the sorted, de-duplicated list
// of paths seen for it. Both files may be shared by every watch in a run,
// including watches running in separate processes: log lines are written
// with a single O_APPEND write each, and analysis updates hold an advisory lock on
// a sibling ".lock" file for the whole read-modify-write.
package eventlog

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovetools/lograt/errors"
	"github.com/grovetools/lograt/pkg/fsevent"
	"github.com/sirupsen/logrus"
)

const (
	DefaultDir          = "logs"
	DefaultLogFile      = "fsevents_analysis.log"
	DefaultAnalysisFile = "fsevents_log.json"
)

// Rotation controls size-based rotation of the event log. Rotation is off
// unless MaxSizeMB is positive; the other fields only apply when it is on.
// A rotating log must not be shared with other processes.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Enabled reports whether the event log rotates.
func (r Rotation) Enabled() bool {
	return r.MaxSizeMB > 0
}

// Options configures a Logger.
type Options struct {
	// Dir holds both output files. Created if missing.
	Dir string
	// LogFile and AnalysisFile are joined to Dir unless absolute.
	LogFile      string
	AnalysisFile string
	Rotation     Rotation
	// Logger receives diagnostic output. Defaults to a discarded logger.
	Logger *logrus.Entry
	// Clock stamps log lines. Defaults to time.Now.
	Clock func() time.Time
}

// Logger appends event lines and updates the analysis index.
// It is safe for concurrent use.
type Logger struct {
	logPath      string
	analysisPath string
	sink         io.WriteCloser
	logger       *logrus.Entry
	clock        func() time.Time

	analysisMu sync.Mutex
}

// New creates a Logger, creating the log directory if needed.
func New(opts Options) (*Logger, error) {
	if opts.Dir == "" {
		opts.Dir = DefaultDir
	}
	if opts.LogFile == "" {
		opts.LogFile = DefaultLogFile
	}
	if opts.AnalysisFile == "" {
		opts.AnalysisFile = DefaultAnalysisFile
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		discard := logrus.New()
		discard.SetOutput(nopWriter{})
		opts.Logger = logrus.NewEntry(discard)
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePermissionDenied, "failed to create log directory").
			WithDetail("path", opts.Dir)
	}

	logPath := resolve(opts.Dir, opts.LogFile)
	return &Logger{
		logPath:      logPath,
		analysisPath: resolve(opts.Dir, opts.AnalysisFile),
		sink:         newSink(logPath, opts.Rotation),
		logger:       opts.Logger,
		clock:        opts.Clock,
	}, nil
}

// LogPath returns the event log location.
func (l *Logger) LogPath() string {
	return l.logPath
}

// AnalysisPath returns the analysis file location.
func (l *Logger) AnalysisPath() string {
	return l.analysisPath
}

// WriteLog appends one line for ev. The file is created on first write.
func (l *Logger) WriteLog(ev fsevent.Event, watchName string, level Level) error {
	line := FormatLine(ev, watchName, level, l.clock())
	if _, err := l.sink.Write([]byte(line)); err != nil {
		return errors.LogWrite(l.logPath, err)
	}

	l.logger.WithFields(logrus.Fields{
		"watch": watchName,
		"kind":  ev.Kind.String(),
		"level": level.String(),
	}).Debug(DisplayPath(ev.Path, watchName))
	return nil
}

// Close releases the event log file.
func (l *Logger) Close() error {
	return l.sink.Close()
}

// OutputPaths returns the event log and analysis file locations a Logger
// built from opts would use, without creating anything.
func OutputPaths(opts Options) (logPath, analysisPath string) {
	dir := opts.Dir
	if dir == "" {
		dir = DefaultDir
	}
	logFile := opts.LogFile
	if logFile == "" {
		logFile = DefaultLogFile
	}
	analysisFile := opts.AnalysisFile
	if analysisFile == "" {
		analysisFile = DefaultAnalysisFile
	}
	return resolve(dir, logFile), resolve(dir, analysisFile)
}

func resolve(dir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
