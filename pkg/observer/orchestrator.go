package observer

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/grovetools/lograt/errors"
	"github.com/grovetools/lograt/logging"
	"github.com/grovetools/lograt/pkg/manager"
	"github.com/grovetools/lograt/pkg/naming"
	"github.com/grovetools/lograt/pkg/router"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// StartMethod selects how Run schedules watches.
type StartMethod string

const (
	// StartThread runs every watch as a goroutine in this process.
	StartThread StartMethod = "thread"
	// StartProcess runs every watch in its own child process.
	StartProcess StartMethod = "process"
)

// DefaultJoinInterval is how long a stopping child process is given to exit
// after an interrupt before it is killed.
const DefaultJoinInterval = time.Second

// ParseStartMethod parses "thread" or "process". Empty means thread.
func ParseStartMethod(s string) (StartMethod, error) {
	switch StartMethod(strings.ToLower(strings.TrimSpace(s))) {
	case "", StartThread:
		return StartThread, nil
	case StartProcess:
		return StartProcess, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown start method '%s'", s)).
			WithDetail("valid", []string{string(StartThread), string(StartProcess)})
	}
}

// CommandFunc builds the child process that runs a single watch.
type CommandFunc func(ctx context.Context, w *Observer) (*exec.Cmd, error)

// Options configures an Orchestrator.
type Options struct {
	// Recursive watches every subdirectory of each root.
	Recursive bool
	// JoinInterval bounds how long a child process has to exit after an
	// interrupt. Defaults to DefaultJoinInterval.
	JoinInterval time.Duration
	// ProcessArgs are passed to every child in process mode, ahead of the
	// watched path. Used to forward output options.
	ProcessArgs []string
	// Command overrides how process-mode children are built.
	Command CommandFunc
	// Stdout and Stderr receive child process output. Default os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	Logger *logrus.Entry
}

// Orchestrator creates uniquely named watches bound to one sink and runs
// them.
type Orchestrator struct {
	sink   router.Sink
	opts   Options
	logger *logrus.Entry

	mu    sync.Mutex
	names map[string]bool
}

type rootSetter interface {
	SetRoot(watchName, root string)
}

// New creates an Orchestrator whose watches deliver to sink.
func New(sink router.Sink, opts Options) *Orchestrator {
	if opts.JoinInterval <= 0 {
		opts.JoinInterval = DefaultJoinInterval
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stderr
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Command == nil {
		opts.Command = selfCommand(opts.ProcessArgs)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger("orchestrator")
	}
	return &Orchestrator{
		sink:   sink,
		opts:   opts,
		logger: logger,
		names:  make(map[string]bool),
	}
}

// CreateWatch creates a pending watch on path. An empty name defaults to the
// last segment of path. Names must be unique across the Orchestrator.
func (o *Orchestrator) CreateWatch(path, name string) (*Observer, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.createLocked(path, name)
}

// CreateWatches creates one watch per path. Without names, unique names are
// derived from the paths. Extra paths or names beyond the shorter list are
// ignored. Either every watch is created or none is.
func (o *Orchestrator) CreateWatches(paths, names []string) ([]*Observer, error) {
	if len(names) == 0 {
		names = naming.NamesFor(paths)
	}
	n := len(paths)
	if len(names) < n {
		n = len(names)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	watches := make([]*Observer, 0, n)
	for i := 0; i < n; i++ {
		w, err := o.createLocked(paths[i], names[i])
		if err != nil {
			for _, created := range watches {
				delete(o.names, created.name)
			}
			return nil, err
		}
		watches = append(watches, w)
	}
	return watches, nil
}

func (o *Orchestrator) createLocked(path, name string) (*Observer, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "watch path is empty")
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "cannot resolve watch path").
			WithDetail("path", path)
	}
	if name == "" {
		name = naming.NameFor(root)
	}
	if o.names[name] {
		return nil, errors.DuplicateWatchName(name)
	}
	o.names[name] = true

	if rs, ok := o.sink.(rootSetter); ok {
		rs.SetRoot(name, root)
	}

	return &Observer{
		name:      name,
		root:      root,
		recursive: o.opts.Recursive,
		sink:      o.sink,
		logger:    o.logger.WithField("watch", name),
		status:    StatusPending,
	}, nil
}

// Run starts every watch concurrently, one goroutine or child process each,
// and returns once they are all started. Cancelling ctx stops them; use
// Group.Wait to join.
func (o *Orchestrator) Run(ctx context.Context, watches []*Observer, method StartMethod) (*Group, error) {
	ctx, cancel := context.WithCancel(ctx)
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(len(watches))

	group := &Group{eg: eg, cancel: cancel}

	switch method {
	case StartThread, "":
		for _, w := range watches {
			group.add(o.startThread(gctx, eg, group, w))
		}
	case StartProcess:
		for _, w := range watches {
			pw, err := o.startProcess(gctx, w)
			if err != nil {
				cancel()
				_ = group.Wait()
				return nil, err
			}
			eg.Go(func() error { return o.settle(pw.obs, group.record(o.supervise(gctx, pw))) })
			group.add(pw)
		}
	default:
		cancel()
		return nil, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown start method '%s'", method))
	}

	o.logger.WithFields(logrus.Fields{
		"watches": len(watches),
		"method":  string(method),
	}).Info("Watches started")
	return group, nil
}

func (o *Orchestrator) startThread(ctx context.Context, eg *errgroup.Group, group *Group, w *Observer) *threadWorker {
	wctx, wcancel := context.WithCancel(ctx)
	tw := &threadWorker{obs: w, cancel: wcancel, done: make(chan struct{})}
	eg.Go(func() error {
		defer close(tw.done)
		defer wcancel()
		return o.settle(w, group.record(w.Run(wctx)))
	})
	return tw
}

// settle decides whether a finished watch's error stops its siblings. Only
// an unknown event kind does; any other failure ends that watch alone and is
// still reported by Group.Wait.
func (o *Orchestrator) settle(w *Observer, err error) error {
	if err == nil {
		return nil
	}
	if errors.GetCode(err) == errors.ErrCodeUnknownEventKind {
		return err
	}
	o.logger.WithError(err).WithField("watch", w.name).Error("Watch failed, others keep running")
	return nil
}

func (o *Orchestrator) startProcess(ctx context.Context, w *Observer) (*processWorker, error) {
	cmd, err := o.opts.Command(ctx, w)
	if err != nil {
		return nil, errors.WatchFailed(w.name, w.root, err)
	}
	if cmd.Stdout == nil {
		cmd.Stdout = o.opts.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = o.opts.Stderr
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.WatchFailed(w.name, w.root, err)
	}
	w.setStatus(StatusRunning)

	pw := &processWorker{obs: w, cmd: cmd, done: make(chan struct{}), grace: o.opts.JoinInterval}
	go func() {
		pw.waitErr = cmd.Wait()
		w.setStatus(StatusStopped)
		close(pw.done)
	}()
	o.logger.WithFields(logrus.Fields{"watch": w.name, "pid": cmd.Process.Pid}).Debug("Started watch process")
	return pw, nil
}

// supervise waits for a child to exit, interrupting it when ctx is cancelled.
// An unexpected exit is reported as a failed watch.
func (o *Orchestrator) supervise(ctx context.Context, pw *processWorker) error {
	select {
	case <-pw.done:
		if pw.wasKilled() || ctx.Err() != nil {
			return nil
		}
		if pw.waitErr != nil {
			return errors.WatchFailed(pw.obs.name, pw.obs.root, pw.waitErr)
		}
		return nil
	case <-ctx.Done():
		if err := pw.stop(); err != nil {
			o.logger.WithError(err).WithField("watch", pw.obs.name).Warn("Failed to stop watch process")
			return err
		}
		return nil
	}
}

func selfCommand(extra []string) CommandFunc {
	return func(ctx context.Context, w *Observer) (*exec.Cmd, error) {
		self, err := os.Executable()
		if err != nil {
			return nil, err
		}
		args := []string{"watch", "--name", w.name}
		if w.recursive {
			args = append(args, "--recursive")
		}
		args = append(args, extra...)
		args = append(args, "--", w.root)
		// Not CommandContext: shutdown goes through an interrupt first.
		return exec.Command(self, args...), nil
	}
}

// Group is a set of running watches.
type Group struct {
	eg     *errgroup.Group
	cancel context.CancelFunc

	mu      sync.Mutex
	workers []manager.Worker
	errs    *multierror.Error
}

func (g *Group) add(w manager.Worker) {
	g.mu.Lock()
	g.workers = append(g.workers, w)
	g.mu.Unlock()
}

func (g *Group) record(err error) error {
	if err == nil {
		return nil
	}
	g.mu.Lock()
	g.errs = multierror.Append(g.errs, err)
	g.mu.Unlock()
	return err
}

// Workers returns the running watches in start order.
func (g *Group) Workers() []manager.Worker {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]manager.Worker, len(g.workers))
	copy(out, g.workers)
	return out
}

// Stop cancels every watch. Call Wait to join.
func (g *Group) Stop() {
	g.cancel()
}

// Wait blocks until every watch has stopped and returns their combined
// errors. An unknown event kind in any watch stops the others.
func (g *Group) Wait() error {
	_ = g.eg.Wait()
	g.cancel()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.errs.ErrorOrNil()
}
