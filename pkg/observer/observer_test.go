package observer

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/grovetools/lograt/errors"
	"github.com/grovetools/lograt/pkg/fsevent"
	"github.com/grovetools/lograt/pkg/manager"
	"github.com/grovetools/lograt/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 5 * time.Second
const tick = 20 * time.Millisecond

type received struct {
	ev    fsevent.Event
	watch string
}

type recordingSink struct {
	mu     sync.Mutex
	events []received
	roots  map[string]string
	err    error
}

func (s *recordingSink) OnEvent(ev fsevent.Event, watchName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, received{ev: ev, watch: watchName})
	return s.err
}

func (s *recordingSink) SetRoot(watchName, root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roots == nil {
		s.roots = make(map[string]string)
	}
	s.roots[watchName] = root
}

func (s *recordingSink) saw(kind fsevent.Kind, path, watch string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.events {
		if r.ev.Kind == kind && r.ev.Path == path && r.watch == watch {
			return true
		}
	}
	return false
}

func quietLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func newOrchestrator(sink *recordingSink, opts Options) *Orchestrator {
	opts.Logger = quietLogger()
	return New(sink, opts)
}

func waitRunning(t *testing.T, watches ...*Observer) {
	t.Helper()
	for _, w := range watches {
		require.Eventually(t, func() bool { return w.Status() == StatusRunning }, waitFor, tick,
			"watch %s never started", w.Name())
	}
}

func TestCreateWatch(t *testing.T) {
	sink := &recordingSink{}
	o := newOrchestrator(sink, Options{})
	dir := t.TempDir()

	w, err := o.CreateWatch(filepath.Join(dir, "photos"), "")
	require.NoError(t, err)
	assert.Equal(t, "photos", w.Name())
	assert.Equal(t, filepath.Join(dir, "photos"), w.Root())
	assert.Equal(t, StatusPending, w.Status())
	assert.Equal(t, w.Root(), sink.roots["photos"])

	named, err := o.CreateWatch(dir, "custom")
	require.NoError(t, err)
	assert.Equal(t, "custom", named.Name())

	_, err = o.CreateWatch(dir, "photos")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDuplicateWatchName, errors.GetCode(err))

	_, err = o.CreateWatch("  ", "blank")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestCreateWatchResolvesRelativePath(t *testing.T) {
	o := newOrchestrator(&recordingSink{}, Options{})

	w, err := o.CreateWatch("relative/dir", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(w.Root()))
	assert.Equal(t, "dir", w.Name())
}

func TestCreateWatchNamesFilesystemRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no single filesystem root on windows")
	}
	sink := &recordingSink{}
	o := newOrchestrator(sink, Options{})

	w, err := o.CreateWatch("/", "")
	require.NoError(t, err)
	assert.Equal(t, "root", w.Name())
	assert.Equal(t, "/", sink.roots["root"])
}

func TestCreateWatches(t *testing.T) {
	tests := []struct {
		name      string
		paths     []string
		names     []string
		wantNames []string
	}{
		{
			name:      "derived names",
			paths:     []string{"/x/photos", "/y/x/photos", "/z/x/photos"},
			wantNames: []string{"photos", "x", "z"},
		},
		{
			name:      "explicit names",
			paths:     []string{"/a", "/b"},
			names:     []string{"first", "second"},
			wantNames: []string{"first", "second"},
		},
		{
			name:      "fewer names than paths",
			paths:     []string{"/a", "/b", "/c"},
			names:     []string{"only"},
			wantNames: []string{"only"},
		},
		{
			name:      "more names than paths",
			paths:     []string{"/a"},
			names:     []string{"one", "two"},
			wantNames: []string{"one"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrchestrator(&recordingSink{}, Options{})
			watches, err := o.CreateWatches(tt.paths, tt.names)
			require.NoError(t, err)

			got := make([]string, len(watches))
			for i, w := range watches {
				got[i] = w.Name()
			}
			assert.Equal(t, tt.wantNames, got)
		})
	}
}

func TestCreateWatchesRejectsDuplicatesAtomically(t *testing.T) {
	o := newOrchestrator(&recordingSink{}, Options{})

	_, err := o.CreateWatches([]string{"/a", "/b", "/c"}, []string{"one", "two", "one"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDuplicateWatchName, errors.GetCode(err))

	// Nothing from the failed call was kept.
	watches, err := o.CreateWatches([]string{"/a", "/b"}, []string{"one", "two"})
	require.NoError(t, err)
	assert.Len(t, watches, 2)
}

func TestParseStartMethod(t *testing.T) {
	m, err := ParseStartMethod("")
	require.NoError(t, err)
	assert.Equal(t, StartThread, m)

	m, err = ParseStartMethod("Process")
	require.NoError(t, err)
	assert.Equal(t, StartProcess, m)

	_, err = ParseStartMethod("fork")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestRunThreadsDeliversEvents(t *testing.T) {
	testutil.RequireWatcher(t)
	sink := &recordingSink{}
	o := newOrchestrator(sink, Options{})

	photos := filepath.Join(t.TempDir(), "photos")
	docs := filepath.Join(t.TempDir(), "docs")
	require.NoError(t, os.Mkdir(photos, 0o755))
	require.NoError(t, os.Mkdir(docs, 0o755))

	watches, err := o.CreateWatches([]string{photos, docs}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	group, err := o.Run(ctx, watches, StartThread)
	require.NoError(t, err)
	require.Len(t, group.Workers(), 2)
	waitRunning(t, watches...)

	a := filepath.Join(photos, "a.jpg")
	b := filepath.Join(docs, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("y"), 0o644))

	assert.Eventually(t, func() bool { return sink.saw(fsevent.Created, a, "photos") }, waitFor, tick)
	assert.Eventually(t, func() bool { return sink.saw(fsevent.Created, b, "docs") }, waitFor, tick)

	require.NoError(t, os.Remove(a))
	assert.Eventually(t, func() bool { return sink.saw(fsevent.Deleted, a, "photos") }, waitFor, tick)

	cancel()
	require.NoError(t, group.Wait())
	for _, w := range watches {
		assert.Equal(t, StatusStopped, w.Status())
	}
	for _, w := range group.Workers() {
		assert.False(t, w.Alive())
		assert.False(t, w.IsProcess())
	}
}

func TestRunRecursiveWatchesNewDirectories(t *testing.T) {
	testutil.RequireWatcher(t)
	sink := &recordingSink{}
	o := newOrchestrator(sink, Options{Recursive: true})

	root := filepath.Join(t.TempDir(), "tree")
	existing := filepath.Join(root, "existing")
	require.NoError(t, os.MkdirAll(existing, 0o755))

	w, err := o.CreateWatch(root, "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	group, err := o.Run(ctx, []*Observer{w}, StartThread)
	require.NoError(t, err)
	waitRunning(t, w)

	nested := filepath.Join(existing, "n.txt")
	require.NoError(t, os.WriteFile(nested, nil, 0o644))
	assert.Eventually(t, func() bool { return sink.saw(fsevent.Created, nested, "tree") }, waitFor, tick)

	fresh := filepath.Join(root, "fresh")
	require.NoError(t, os.Mkdir(fresh, 0o755))
	require.Eventually(t, func() bool { return sink.saw(fsevent.Created, fresh, "tree") }, waitFor, tick)

	inFresh := filepath.Join(fresh, "f.txt")
	require.NoError(t, os.WriteFile(inFresh, nil, 0o644))
	assert.Eventually(t, func() bool { return sink.saw(fsevent.Created, inFresh, "tree") }, waitFor, tick)

	cancel()
	require.NoError(t, group.Wait())
}

func TestRunMissingRootFails(t *testing.T) {
	o := newOrchestrator(&recordingSink{}, Options{})
	w, err := o.CreateWatch(filepath.Join(t.TempDir(), "nope"), "")
	require.NoError(t, err)

	group, err := o.Run(context.Background(), []*Observer{w}, StartThread)
	require.NoError(t, err)

	err = group.Wait()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWatchFailed, errors.GetCode(err))
	assert.Equal(t, StatusStopped, w.Status())
}

func TestRunMissingRootLeavesOthersRunning(t *testing.T) {
	testutil.RequireWatcher(t)
	sink := &recordingSink{}
	o := newOrchestrator(sink, Options{})

	good := t.TempDir()
	watches, err := o.CreateWatches([]string{filepath.Join(t.TempDir(), "nope"), good}, []string{"missing", "good"})
	require.NoError(t, err)
	missing := watches[0]

	group, err := o.Run(context.Background(), watches, StartThread)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return missing.Status() == StatusStopped }, waitFor, tick)
	waitRunning(t, watches[1])

	created := filepath.Join(good, "after.txt")
	require.NoError(t, os.WriteFile(created, nil, 0o644))
	assert.Eventually(t, func() bool { return sink.saw(fsevent.Created, created, "good") }, waitFor, tick)
	assert.Equal(t, StatusRunning, watches[1].Status())

	group.Stop()
	err = group.Wait()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWatchFailed, errors.GetCode(err))
	assert.Equal(t, StatusStopped, watches[1].Status())
}

func TestUnknownKindStopsEveryWatch(t *testing.T) {
	testutil.RequireWatcher(t)
	sink := &recordingSink{err: errors.UnknownEventKind("opened", "/x")}
	o := newOrchestrator(sink, Options{})

	bad := t.TempDir()
	other := t.TempDir()
	watches, err := o.CreateWatches([]string{bad, other}, []string{"bad", "other"})
	require.NoError(t, err)

	group, err := o.Run(context.Background(), watches, StartThread)
	require.NoError(t, err)
	waitRunning(t, watches...)

	require.NoError(t, os.WriteFile(filepath.Join(bad, "trigger"), nil, 0o644))

	done := make(chan error, 1)
	go func() { done <- group.Wait() }()
	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeUnknownEventKind))
	case <-time.After(waitFor):
		t.Fatal("group did not stop after an unknown event kind")
	}
	for _, w := range watches {
		assert.Equal(t, StatusStopped, w.Status())
	}
}

func TestManagerKillsThreadWorker(t *testing.T) {
	testutil.RequireWatcher(t)
	sink := &recordingSink{}
	o := newOrchestrator(sink, Options{})

	photos := t.TempDir()
	docs := t.TempDir()
	watches, err := o.CreateWatches([]string{photos, docs}, []string{"photos", "docs"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	group, err := o.Run(ctx, watches, StartThread)
	require.NoError(t, err)
	waitRunning(t, watches...)

	m := manager.New(group.Workers(), quietLogger())
	killed := m.Kill("photos")
	require.NotNil(t, killed)
	assert.False(t, killed.Alive())
	assert.Equal(t, 1, m.ActiveCount())
	require.Len(t, m.ActiveWorkers(), 1)
	assert.Equal(t, "docs", m.ActiveWorkers()[0].Name())
	assert.Nil(t, m.Kill("missing"))

	// The surviving watch still delivers.
	f := filepath.Join(docs, "still.txt")
	require.NoError(t, os.WriteFile(f, nil, 0o644))
	assert.Eventually(t, func() bool { return sink.saw(fsevent.Created, f, "docs") }, waitFor, tick)

	cancel()
	require.NoError(t, group.Wait())
}

func sleepCommand(t *testing.T) CommandFunc {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires sleep(1)")
	}
	return func(ctx context.Context, w *Observer) (*exec.Cmd, error) {
		return exec.Command("sleep", "30"), nil
	}
}

func TestRunProcesses(t *testing.T) {
	o := newOrchestrator(&recordingSink{}, Options{
		Command:      sleepCommand(t),
		JoinInterval: 2 * time.Second,
		Stdout:       io.Discard,
		Stderr:       io.Discard,
	})
	watches, err := o.CreateWatches([]string{"/a", "/b"}, []string{"a", "b"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	group, err := o.Run(ctx, watches, StartProcess)
	require.NoError(t, err)

	m := manager.New(group.Workers(), quietLogger())
	assert.True(t, m.AreProcesses())
	assert.Len(t, m.ActiveWorkers(), 2)

	killed := m.Kill("a")
	require.NotNil(t, killed)
	assert.True(t, killed.IsProcess())
	assert.False(t, killed.Alive())
	assert.Len(t, m.ActiveWorkers(), 1)

	cancel()
	require.NoError(t, group.Wait())
	for _, w := range group.Workers() {
		assert.False(t, w.Alive())
	}
}

func TestRunProcessUnexpectedExitFails(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires false(1)")
	}
	o := newOrchestrator(&recordingSink{}, Options{
		Command: func(ctx context.Context, w *Observer) (*exec.Cmd, error) {
			return exec.Command("false"), nil
		},
		Stdout: io.Discard,
		Stderr: io.Discard,
	})
	w, err := o.CreateWatch("/a", "a")
	require.NoError(t, err)

	group, err := o.Run(context.Background(), []*Observer{w}, StartProcess)
	require.NoError(t, err)

	err = group.Wait()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWatchFailed, errors.GetCode(err))
}
