// Package process holds the liveness and shutdown helpers used for
// process-mode watch workers.
package process

import (
	"os"
	"syscall"
	"time"
)

// IsProcessAlive checks if a process with the given PID is still running.
// On Unix, signal 0 checks for existence without delivering anything;
// EPERM still means the process exists.
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || os.IsPermission(err)
}

// Stop asks proc to exit with an interrupt and kills it if done is not
// closed within grace. done must be closed once the process has been reaped.
func Stop(proc *os.Process, done <-chan struct{}, grace time.Duration) error {
	select {
	case <-done:
		return nil
	default:
	}

	if err := proc.Signal(os.Interrupt); err != nil {
		// Interrupt is unsupported on some platforms; fall through to kill.
		return Kill(proc, done)
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return Kill(proc, done)
	}
}

// Kill terminates proc immediately. A process that already exited is not an
// error.
func Kill(proc *os.Process, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	default:
	}
	if err := proc.Kill(); err != nil && err != os.ErrProcessDone {
		return err
	}
	return nil
}
