// Package manager keeps the books on running watch workers and can stop one
// by name.
package manager

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Worker is one running watch, backed by a goroutine or a child process.
type Worker interface {
	Name() string
	Alive() bool
	Kill() error
	IsProcess() bool
}

// Manager tracks workers as active or killed. A worker is in exactly one of
// the two lists, and active to killed is the only move. It is safe for
// concurrent use.
type Manager struct {
	mu      sync.Mutex
	initial int
	active  []Worker
	killed  []Worker
	logger  *logrus.Entry
}

// New creates a Manager over workers. A nil logger discards diagnostics.
func New(workers []Worker, logger *logrus.Entry) *Manager {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(nopWriter{})
		logger = logrus.NewEntry(discard)
	}
	active := make([]Worker, len(workers))
	copy(active, workers)
	return &Manager{
		initial: len(workers),
		active:  active,
		logger:  logger,
	}
}

// WorkersCount returns the number of workers the Manager was created with.
// It does not change as workers are killed.
func (m *Manager) WorkersCount() int {
	return m.initial
}

// ActiveCount returns the number of workers not yet killed, whether or not
// they are still alive.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// ActiveWorkers returns the non-killed workers that are still alive.
func (m *Manager) ActiveWorkers() []Worker {
	m.mu.Lock()
	defer m.mu.Unlock()
	alive := make([]Worker, 0, len(m.active))
	for _, w := range m.active {
		if w.Alive() {
			alive = append(alive, w)
		}
	}
	return alive
}

// KilledCount returns the number of workers killed through the Manager.
func (m *Manager) KilledCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.killed)
}

// Killed returns the killed workers in the order they were killed.
func (m *Manager) Killed() []Worker {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Worker, len(m.killed))
	copy(out, m.killed)
	return out
}

// Kill stops the first active worker called name and moves it to the killed
// list. It returns nil when no active worker has that name.
//
// A worker whose Kill fails (typically because it already exited) is still
// moved; the failure is logged.
func (m *Manager) Kill(name string) Worker {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, w := range m.active {
		if w.Name() != name {
			continue
		}
		if err := w.Kill(); err != nil {
			m.logger.WithError(err).WithField("worker", name).Warn("Kill reported an error")
		}
		m.active = append(m.active[:i], m.active[i+1:]...)
		m.killed = append(m.killed, w)
		m.logger.WithField("worker", name).Info("Worker killed")
		return w
	}
	return nil
}

// AreProcesses reports whether any worker runs as a separate process.
func (m *Manager) AreProcesses() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.active {
		if w.IsProcess() {
			return true
		}
	}
	for _, w := range m.killed {
		if w.IsProcess() {
			return true
		}
	}
	return false
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
