package router

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/grovetools/lograt/errors"
	"github.com/grovetools/lograt/pkg/eventlog"
	"github.com/grovetools/lograt/pkg/fsevent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op    string
	kind  fsevent.Kind
	path  string
	watch string
	level eventlog.Level
}

type recordingLogger struct {
	mu    sync.Mutex
	calls []call
}

func (r *recordingLogger) WriteLog(ev fsevent.Event, watchName string, level eventlog.Level) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{op: "log", kind: ev.Kind, path: ev.Path, watch: watchName, level: level})
	return nil
}

func (r *recordingLogger) WriteAnalysis(ev fsevent.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{op: "analysis", kind: ev.Kind, path: ev.Path})
	return nil
}

func (r *recordingLogger) ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]string, len(r.calls))
	for i, c := range r.calls {
		ops[i] = c.op
	}
	return ops
}

func newRouter(t *testing.T, opts Options) (*Router, *recordingLogger) {
	t.Helper()
	rec := &recordingLogger{}
	r, err := New(rec, opts)
	require.NoError(t, err)
	return r, rec
}

func TestOnEventRouting(t *testing.T) {
	critical := eventlog.LevelCritical

	tests := []struct {
		name      string
		opts      Options
		ev        fsevent.Event
		wantOps   []string
		wantLevel eventlog.Level
	}{
		{
			name:      "created file",
			ev:        fsevent.Event{Kind: fsevent.Created, Path: "/data/photos/a.jpg"},
			wantOps:   []string{"analysis", "log"},
			wantLevel: eventlog.LevelInfo,
		},
		{
			name:      "created directory",
			ev:        fsevent.Event{Kind: fsevent.Created, Path: "/data/photos/2024", IsDir: true},
			wantOps:   []string{"analysis", "log"},
			wantLevel: eventlog.LevelInfo,
		},
		{
			name:      "deleted defaults to warn",
			ev:        fsevent.Event{Kind: fsevent.Deleted, Path: "/data/photos/a.jpg"},
			wantOps:   []string{"analysis", "log"},
			wantLevel: eventlog.LevelWarn,
		},
		{
			name:      "deleted at configured level",
			opts:      Options{DeletedLevel: &critical},
			ev:        fsevent.Event{Kind: fsevent.Deleted, Path: "/data/photos/a.jpg"},
			wantOps:   []string{"analysis", "log"},
			wantLevel: eventlog.LevelCritical,
		},
		{
			name:      "modified file",
			ev:        fsevent.Event{Kind: fsevent.Modified, Path: "/data/photos/a.jpg"},
			wantOps:   []string{"analysis", "log"},
			wantLevel: eventlog.LevelInfo,
		},
		{
			name:    "modified directory is not logged",
			ev:      fsevent.Event{Kind: fsevent.Modified, Path: "/data/photos", IsDir: true},
			wantOps: []string{"analysis"},
		},
		{
			name:      "moved",
			ev:        fsevent.Event{Kind: fsevent.Moved, Path: "/data/photos/a.jpg", DestPath: "/data/photos/b.jpg"},
			wantOps:   []string{"analysis", "log"},
			wantLevel: eventlog.LevelInfo,
		},
		{
			name:      "closed",
			ev:        fsevent.Event{Kind: fsevent.Closed, Path: "/data/photos/a.jpg"},
			wantOps:   []string{"analysis", "log"},
			wantLevel: eventlog.LevelWarn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, rec := newRouter(t, tt.opts)

			require.NoError(t, r.OnEvent(tt.ev, "photos"))

			assert.Equal(t, tt.wantOps, rec.ops())
			for _, c := range rec.calls {
				assert.Equal(t, tt.ev.Kind, c.kind)
				assert.Equal(t, tt.ev.Path, c.path)
				if c.op == "log" {
					assert.Equal(t, "photos", c.watch)
					assert.Equal(t, tt.wantLevel, c.level)
				}
			}
		})
	}
}

func TestOnEventUnknownKind(t *testing.T) {
	r, rec := newRouter(t, Options{})

	err := r.OnEvent(fsevent.Event{Kind: fsevent.Kind("attrib"), Path: "/data/x"}, "data")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnknownEventKind, errors.GetCode(err))
	assert.Empty(t, rec.calls)
}

func TestOnEventIgnorePatterns(t *testing.T) {
	r, rec := newRouter(t, Options{
		Ignore: []string{"*.tmp", ".git", "cache/**"},
		Roots:  map[string]string{"photos": "/data/photos"},
	})

	for _, path := range []string{
		"/data/photos/upload.tmp",
		"/data/photos/.git/HEAD",
		"/data/photos/cache/thumbs/a.png",
	} {
		require.NoError(t, r.OnEvent(fsevent.Event{Kind: fsevent.Created, Path: path}, "photos"))
	}
	assert.Empty(t, rec.calls)

	require.NoError(t, r.OnEvent(fsevent.Event{Kind: fsevent.Created, Path: "/data/photos/a.jpg"}, "photos"))
	assert.Equal(t, []string{"analysis", "log"}, rec.ops())
}

func TestSetRootScopesIgnorePatterns(t *testing.T) {
	r, rec := newRouter(t, Options{Ignore: []string{"build"}})

	// Without a root the absolute path does not match a relative pattern.
	require.NoError(t, r.OnEvent(fsevent.Event{Kind: fsevent.Created, Path: "/src/app/build/out.o"}, "app"))
	assert.Len(t, rec.calls, 2)

	r.SetRoot("app", "/src/app")
	require.NoError(t, r.OnEvent(fsevent.Event{Kind: fsevent.Created, Path: "/src/app/build/out2.o"}, "app"))
	assert.Len(t, rec.calls, 2)
}

func TestNewRejectsInvalidPattern(t *testing.T) {
	_, err := New(&recordingLogger{}, Options{Ignore: []string{"[unclosed"}})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigValidation, errors.GetCode(err))
}

func TestRouterWithEventLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	events, err := eventlog.New(eventlog.Options{Dir: dir})
	require.NoError(t, err)
	defer events.Close()

	r, err := New(events, Options{})
	require.NoError(t, err)

	require.NoError(t, r.OnEvent(fsevent.Event{Kind: fsevent.Created, Path: "/data/photos/a.jpg"}, "photos"))
	require.NoError(t, r.OnEvent(fsevent.Event{Kind: fsevent.Modified, Path: "/data/photos", IsDir: true}, "photos"))
	require.NoError(t, r.OnEvent(fsevent.Event{Kind: fsevent.Deleted, Path: "/data/photos/a.jpg"}, "photos"))

	data, err := os.ReadFile(events.LogPath())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "[INFO]\t  CREATED    - a.jpg "), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "[WARN]\t  DELETED    - a.jpg "), lines[1])

	index, err := events.ReadAnalysis()
	require.NoError(t, err)
	assert.Equal(t, eventlog.Index{
		"created":  {"/data/photos/a.jpg"},
		"deleted":  {"/data/photos/a.jpg"},
		"modified": {"/data/photos"},
	}, index)
}
