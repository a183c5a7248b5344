// Package testutil holds helpers shared by lograt's tests.
package testutil

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/lograt/logging"
	"github.com/stretchr/testify/require"
)

// RequireWatcher skips the test when the platform cannot create an fsnotify
// watcher, e.g. when inotify instances are exhausted.
func RequireWatcher(t *testing.T) {
	t.Helper()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	_ = w.Close()
}

// Isolate runs the rest of the test from an empty working directory with an
// empty LOGRAT_HOME, so no real configuration leaks in. It returns the
// working directory.
func Isolate(t *testing.T) string {
	t.Helper()

	t.Setenv("LOGRAT_HOME", t.TempDir())
	t.Setenv("LOGRAT_LOG_LEVEL", "error")
	dir := t.TempDir()
	t.Chdir(dir)
	logging.Reset()
	t.Cleanup(logging.Reset)
	return dir
}

// WaitForContent polls path until it contains substr.
func WaitForContent(t *testing.T, path, substr string, timeout time.Duration) {
	t.Helper()

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(data), substr)
	}, timeout, 20*time.Millisecond, "%s never contained %q", path, substr)
}
