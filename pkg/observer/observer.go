// Package observer runs named filesystem watches and hands their events to a
// router.Sink.
//
// An Observer owns one fsnotify watcher rooted at a directory. An
// Orchestrator creates uniquely named observers and runs them together,
// either as goroutines in this process or as child lograt processes.
package observer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/lograt/errors"
	"github.com/grovetools/lograt/pkg/fsevent"
	"github.com/grovetools/lograt/pkg/router"
	"github.com/sirupsen/logrus"
)

// Status is the lifecycle state of a watch.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
)

// Observer watches one root and forwards every event to its sink tagged with
// the observer's name.
type Observer struct {
	name      string
	root      string
	recursive bool
	sink      router.Sink
	logger    *logrus.Entry

	mu     sync.Mutex
	status Status
}

// Name returns the watch name used to tag events.
func (o *Observer) Name() string {
	return o.name
}

// Root returns the absolute path being watched.
func (o *Observer) Root() string {
	return o.root
}

// Status returns the current lifecycle state.
func (o *Observer) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

func (o *Observer) setStatus(s Status) {
	o.mu.Lock()
	o.status = s
	o.mu.Unlock()
}

// Run watches the root until ctx is cancelled. Cancellation is not an error.
//
// An event already handed to the sink is finished before Run returns. An
// UNKNOWN_EVENT_KIND error from the sink stops the watch and is returned;
// any other sink error is logged and the watch carries on.
func (o *Observer) Run(ctx context.Context) error {
	defer o.setStatus(StatusStopped)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WatchFailed(o.name, o.root, err)
	}
	defer watcher.Close()

	if err := o.add(watcher, o.root); err != nil {
		return errors.WatchFailed(o.name, o.root, err)
	}

	o.setStatus(StatusRunning)
	o.logger.WithField("recursive", o.recursive).Infof("Watching %s", o.root)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if err := o.handle(watcher, event); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if err == fsnotify.ErrEventOverflow {
				o.logger.Warn("Event queue overflowed, some events were dropped")
				continue
			}
			o.logger.WithError(err).Error("Watcher error")
		case <-ctx.Done():
			o.logger.Debug("Watch stopped")
			return nil
		}
	}
}

func (o *Observer) handle(watcher *fsnotify.Watcher, raw fsnotify.Event) error {
	o.logger.Debugf("fsnotify event: %s op=%v", raw.Name, raw.Op)

	ev, ok := fsevent.FromFsnotify(raw)
	if !ok {
		return nil
	}

	if o.recursive && ev.Kind == fsevent.Created && ev.IsDir {
		if err := o.add(watcher, ev.Path); err != nil {
			o.logger.WithError(err).Warnf("Failed to watch new directory %s", ev.Path)
		}
	}

	if err := o.sink.OnEvent(ev, o.name); err != nil {
		if errors.GetCode(err) == errors.ErrCodeUnknownEventKind {
			return err
		}
		o.logger.WithError(err).Errorf("Failed to record %s event for %s", ev.Kind, ev.Path)
	}
	return nil
}

// add watches path and, for recursive observers, every directory below it.
func (o *Observer) add(watcher *fsnotify.Watcher, path string) error {
	if !o.recursive {
		return watcher.Add(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(path)
	}

	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == path {
				return err
			}
			// A subdirectory vanished or is unreadable; keep going.
			o.logger.WithError(err).Debugf("Skipping %s", p)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(p); err != nil {
			if p == path {
				return err
			}
			o.logger.WithError(err).Warnf("Failed to watch %s", p)
		}
		return nil
	})
}
