package observer

import (
	"context"
	"os/exec"
	"sync"
	"time"

	"github.com/grovetools/lograt/pkg/process"
)

// threadWorker is a watch running as a goroutine in this process.
type threadWorker struct {
	obs    *Observer
	cancel context.CancelFunc
	done   chan struct{}
}

func (w *threadWorker) Name() string    { return w.obs.name }
func (w *threadWorker) IsProcess() bool { return false }

func (w *threadWorker) Alive() bool {
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// Kill stops the watch loop and waits for any in-flight event to finish.
func (w *threadWorker) Kill() error {
	w.cancel()
	<-w.done
	return nil
}

// processWorker is a watch running as a child lograt process.
type processWorker struct {
	obs   *Observer
	cmd   *exec.Cmd
	grace time.Duration

	done    chan struct{}
	waitErr error

	mu     sync.Mutex
	killed bool
}

func (w *processWorker) Name() string    { return w.obs.name }
func (w *processWorker) IsProcess() bool { return true }

// Pid returns the child's process id.
func (w *processWorker) Pid() int { return w.cmd.Process.Pid }

func (w *processWorker) Alive() bool {
	select {
	case <-w.done:
		return false
	default:
		return process.IsProcessAlive(w.cmd.Process.Pid)
	}
}

// Kill terminates the child immediately and waits for it to be reaped.
func (w *processWorker) Kill() error {
	w.mu.Lock()
	w.killed = true
	w.mu.Unlock()

	if err := process.Kill(w.cmd.Process, w.done); err != nil {
		return err
	}
	<-w.done
	return nil
}

func (w *processWorker) wasKilled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.killed
}

// stop interrupts the child, escalating to kill after the grace period.
func (w *processWorker) stop() error {
	if err := process.Stop(w.cmd.Process, w.done, w.grace); err != nil {
		return err
	}
	<-w.done
	return nil
}
