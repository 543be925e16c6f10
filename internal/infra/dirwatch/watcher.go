package dirwatch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/padbreak/internal/telemetry/logger"
)

// DefaultSettle is the default quiet period before a file is reported.
const DefaultSettle = 250 * time.Millisecond

// Watcher watches one directory for new files.
type Watcher struct {
	watcher *fsnotify.Watcher
	dir     string
	match   func(path string) bool
	settle  time.Duration
	logger  logger.Logger

	mu        sync.RWMutex
	callbacks []func(string)

	pmu     sync.Mutex
	pending map[string]*time.Timer
	seen    map[string]struct{}

	ready    chan string
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger for the watcher.
func WithLogger(l logger.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithSettle sets the quiet period. Zero reports files on the first event.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.settle = d
		}
	}
}

// WithFilter restricts reported files to those match accepts.
func WithFilter(match func(path string) bool) Option {
	return func(w *Watcher) {
		if match != nil {
			w.match = match
		}
	}
}

// New creates a watcher for dir.
func New(dir string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		dir:     filepath.Clean(dir),
		match:   func(string) bool { return true },
		settle:  DefaultSettle,
		logger:  logger.Default(),
		pending: make(map[string]*time.Timer),
		seen:    make(map[string]struct{}),
		ready:   make(chan string, 16),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		w.logger.Error("failed to watch directory", "path", w.dir, "error", err)
		return nil, err
	}
	w.logger.Debug("watching directory for batches", "path", w.dir, "settle", w.settle)
	return w, nil
}

// Ignore marks paths as already handled, e.g. files processed before the
// watcher started.
func (w *Watcher) Ignore(paths ...string) {
	w.pmu.Lock()
	defer w.pmu.Unlock()
	for _, p := range paths {
		w.seen[filepath.Clean(p)] = struct{}{}
	}
}

// OnFile registers a callback for new files. Callbacks run sequentially on
// the goroutine that called Run.
func (w *Watcher) OnFile(callback func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Run dispatches file events until ctx is done or Stop is called.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("batch watcher started", "path", w.dir)
	defer w.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("batch watcher error", "error", err)
		case path := <-w.ready:
			w.notify(path)
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		}
	}
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.pmu.Lock()
		for path, t := range w.pending {
			t.Stop()
			delete(w.pending, path)
		}
		w.pmu.Unlock()

		err = w.watcher.Close()
		w.logger.Info("batch watcher stopped", "path", w.dir)
	})
	return err
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	path := filepath.Clean(event.Name)
	if filepath.Dir(path) != w.dir || !w.match(path) {
		return
	}

	w.pmu.Lock()
	defer w.pmu.Unlock()
	if _, ok := w.seen[path]; ok {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.logger.Debug("batch file detected", "file", path, "op", event.Op.String())
	w.pending[path] = time.AfterFunc(w.settle, func() { w.settled(path) })
}

// settled runs on the timer goroutine and hands path to Run.
func (w *Watcher) settled(path string) {
	w.pmu.Lock()
	if _, ok := w.pending[path]; !ok {
		w.pmu.Unlock()
		return
	}
	delete(w.pending, path)
	w.seen[path] = struct{}{}
	w.pmu.Unlock()

	select {
	case w.ready <- path:
	case <-w.done:
	}
}

func (w *Watcher) notify(path string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, cb := range w.callbacks {
		cb(path)
	}
}
