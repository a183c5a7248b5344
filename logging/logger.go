// Package logging provides lograt's per-component diagnostic loggers.
//
// These loggers report what lograt itself is doing. They are unrelated to
// the event log lograt writes for the filesystems it watches.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/grovetools/lograt/config"
	"github.com/grovetools/lograt/pkg/paths"
	"github.com/grovetools/lograt/util/pathutil"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	// levelOverride is set by SetLevel and wins over env and config.
	levelOverride *logrus.Level
)

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logCfg := loadConfig()
	logger := logrus.New()

	levelStr := "info"
	if env := os.Getenv("LOGRAT_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	if levelOverride != nil {
		level = *levelOverride
	}
	logger.SetLevel(level)

	if os.Getenv("LOGRAT_LOG_CALLER") == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	var writers []io.Writer
	if w := fileSink(logCfg.File); w != nil {
		writers = append(writers, w)
	}
	if shouldLogToStderr(logCfg.Format.StructuredToStderr, logger.GetLevel()) {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		// Interactive terminal in auto mode: stay quiet.
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// SetLevel changes the level of every component logger, including ones
// created later. Used by --verbose.
func SetLevel(level logrus.Level) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	levelOverride = &level
	for _, entry := range loggers {
		entry.Logger.SetLevel(level)
		if level >= logrus.DebugLevel && entry.Logger.Out == io.Discard {
			entry.Logger.SetOutput(os.Stderr)
		}
	}
}

// Reset forgets every cached logger and any SetLevel override.
func Reset() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	loggers = make(map[string]*logrus.Entry)
	levelOverride = nil
}

// loadConfig reads the "logging" section of lograt.yml. A missing or broken
// config yields the zero Config.
func loadConfig() Config {
	var logCfg Config
	cfg, err := config.LoadDefault()
	if err != nil {
		return logCfg
	}
	if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
		logrus.Warnf("Failed to parse 'logging' config: %v", err)
	}
	return logCfg
}

func fileSink(cfg FileSinkConfig) io.Writer {
	if !cfg.Enabled {
		return nil
	}
	path := cfg.Path
	if path != "" {
		expanded, err := pathutil.Expand(path)
		if err != nil {
			logrus.Warnf("Invalid log file path %s: %v", path, err)
			return nil
		}
		path = expanded
	} else {
		dir := paths.StateDir()
		if dir == "" {
			return nil
		}
		path = filepath.Join(dir, "lograt.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logrus.Warnf("Failed to create log directory %s: %v", filepath.Dir(path), err)
		return nil
	}
	return &lumberjack.Logger{
		Filename:  path,
		MaxSize:   cfg.MaxSizeMB,
		LocalTime: true,
	}
}

// shouldLogToStderr decides the stderr sink. In "auto" mode structured logs
// go to stderr when debugging or when stderr is not a terminal.
func shouldLogToStderr(mode string, level logrus.Level) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		isDebug := os.Getenv("LOGRAT_DEBUG") == "1" || level >= logrus.DebugLevel
		isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		return isDebug || !isInteractive
	}
}
