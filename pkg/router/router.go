// Package router classifies filesystem events and hands them to the event
// logger at the severity their kind calls for.
package router

import (
	"path/filepath"
	"sync"

	"github.com/grovetools/lograt/errors"
	"github.com/grovetools/lograt/pkg/eventlog"
	"github.com/grovetools/lograt/pkg/fsevent"
	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"
)

// Sink receives every event a watch produces, tagged with the watch name.
type Sink interface {
	OnEvent(ev fsevent.Event, watchName string) error
}

// EventLogger is the part of eventlog.Logger the router needs.
type EventLogger interface {
	WriteLog(ev fsevent.Event, watchName string, level eventlog.Level) error
	WriteAnalysis(ev fsevent.Event) error
}

// Options configures a Router.
type Options struct {
	// DeletedLevel is the severity of deletions. Defaults to warn; set
	// critical where deletions should page someone.
	DeletedLevel *eventlog.Level
	// Ignore holds .dockerignore-style patterns matched against the event
	// path relative to its watch root.
	Ignore []string
	// Roots maps a watch name to its root, for relative pattern matching.
	Roots  map[string]string
	Logger *logrus.Entry
}

// Router is a Sink that writes the analysis index and the event log.
type Router struct {
	events       EventLogger
	deletedLevel eventlog.Level
	matcher      *patternmatcher.PatternMatcher
	logger       *logrus.Entry

	rootsMu sync.RWMutex
	roots   map[string]string
}

// New creates a Router writing to events.
func New(events EventLogger, opts Options) (*Router, error) {
	deleted := eventlog.LevelWarn
	if opts.DeletedLevel != nil {
		deleted = *opts.DeletedLevel
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	r := &Router{
		events:       events,
		deletedLevel: deleted,
		roots:        make(map[string]string, len(opts.Roots)),
		logger:       logger,
	}
	for name, root := range opts.Roots {
		r.roots[name] = root
	}

	if len(opts.Ignore) > 0 {
		matcher, err := patternmatcher.New(opts.Ignore)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid ignore pattern")
		}
		r.matcher = matcher
	}
	return r, nil
}

// SetRoot records the root of a watch so ignore patterns can be matched
// relative to it.
func (r *Router) SetRoot(watchName, root string) {
	r.rootsMu.Lock()
	r.roots[watchName] = root
	r.rootsMu.Unlock()
}

// OnEvent records ev in the analysis index and, unless the kind's rule
// suppresses it, appends it to the event log.
//
// An event kind outside the routed vocabulary is returned as an
// UNKNOWN_EVENT_KIND error without touching either file.
func (r *Router) OnEvent(ev fsevent.Event, watchName string) error {
	level, suppressed, err := r.classify(ev)
	if err != nil {
		r.logger.WithField("watch", watchName).WithError(err).Error("Unroutable filesystem event")
		return err
	}
	if r.ignored(ev, watchName) {
		r.logger.WithFields(logrus.Fields{"watch": watchName, "path": ev.Path}).Debug("Ignored event")
		return nil
	}

	r.logger.Debugf("<lograt: %s>", watchName)

	if err := r.events.WriteAnalysis(ev); err != nil {
		return err
	}
	if suppressed {
		return nil
	}
	return r.events.WriteLog(ev, watchName, level)
}

// classify is the routing table. Directory modifications are suppressed
// from the log because every child change already produces its own event.
func (r *Router) classify(ev fsevent.Event) (level eventlog.Level, suppressed bool, err error) {
	switch ev.Kind {
	case fsevent.Created:
		return eventlog.LevelInfo, false, nil
	case fsevent.Deleted:
		return r.deletedLevel, false, nil
	case fsevent.Modified:
		return eventlog.LevelInfo, ev.IsDir, nil
	case fsevent.Moved:
		return eventlog.LevelInfo, false, nil
	case fsevent.Closed:
		return eventlog.LevelWarn, false, nil
	default:
		return 0, false, errors.UnknownEventKind(ev.Kind.String(), ev.Path)
	}
}

func (r *Router) ignored(ev fsevent.Event, watchName string) bool {
	if r.matcher == nil {
		return false
	}
	rel := ev.Path
	r.rootsMu.RLock()
	root, ok := r.roots[watchName]
	r.rootsMu.RUnlock()
	if ok {
		if p, err := filepath.Rel(root, ev.Path); err == nil {
			rel = p
		}
	}
	matched, err := r.matcher.MatchesOrParentMatches(rel)
	if err != nil {
		r.logger.WithError(err).Warnf("Ignore pattern match failed for %s", ev.Path)
		return false
	}
	return matched
}
