// Package watch re-converts Markdown files when they change on disk.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/mdead/internal/convert"
	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/logfields"
)

// BatchHook observes every completed conversion batch.
type BatchHook func(*convert.Summary, error)

// Watcher converts everything under its roots once and then every Markdown
// file that changes, in debounced batches.
type Watcher struct {
	conv     *convert.Converter
	roots    []string
	debounce time.Duration
	logger   *slog.Logger
	hook     BatchHook

	mu      sync.Mutex
	pending map[string]convert.Source
	removed map[string]convert.Source
}

// Option customizes a Watcher.
type Option func(*Watcher)

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithBatchHook registers fn to run after each batch, the initial one included.
func WithBatchHook(fn BatchHook) Option {
	return func(w *Watcher) { w.hook = fn }
}

// New returns a Watcher over roots. Each root must be a directory.
func New(conv *convert.Converter, roots []string, debounce time.Duration, opts ...Option) (*Watcher, error) {
	if len(roots) == 0 {
		return nil, errors.ValidationError("watch requires at least one directory").Build()
	}
	abs := make([]string, 0, len(roots))
	for _, r := range roots {
		p, err := filepath.Abs(r)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "resolve watch directory").
				WithContext("path", r).Build()
		}
		if st, err := os.Stat(p); err != nil || !st.IsDir() {
			return nil, errors.NewError(errors.CategoryNotFound, "watch directory not found or not a directory").
				WithContext("path", p).Build()
		}
		abs = append(abs, p)
	}
	w := &Watcher{
		conv:     conv,
		roots:    abs,
		debounce: debounce,
		logger:   slog.Default(),
		pending:  map[string]convert.Source{},
		removed:  map[string]convert.Source{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run blocks until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	summary, err := w.conv.ConvertPaths(ctx, w.roots)
	w.report(summary, err)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "fsnotify").Build()
	}
	defer func() { _ = watcher.Close() }()
	for _, root := range w.roots {
		w.addDirsRecursive(watcher, root)
	}

	rebuildReq, trigger := w.setupDebouncer()
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.rebuildWorker(ctx, rebuildReq)
	}()

	w.logger.Info("Watching for changes", slog.Any("roots", w.roots))
	for {
		select {
		case <-ctx.Done():
			<-done
			w.logger.Info("Stopped watching")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(watcher, ev) {
				trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) setupDebouncer() (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	return rebuildReq, trigger
}

// rebuildWorker converts pending sources one batch at a time. Requests
// arriving during a batch coalesce into the next one.
func (w *Watcher) rebuildWorker(ctx context.Context, rebuildReq <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-rebuildReq:
			w.mu.Lock()
			pending, removed := w.pending, w.removed
			w.pending = map[string]convert.Source{}
			w.removed = map[string]convert.Source{}
			w.mu.Unlock()

			for _, src := range removed {
				w.removeOutput(src)
			}
			if len(pending) == 0 {
				continue
			}
			sources := make([]convert.Source, 0, len(pending))
			for _, src := range pending {
				sources = append(sources, src)
			}
			w.logger.Info("Change detected; converting", logfields.Count(len(sources)))
			summary, err := w.conv.ConvertSources(ctx, sources)
			w.report(summary, err)
		}
	}
}

// handleEvent records ev and reports whether a batch should be scheduled.
func (w *Watcher) handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event) bool {
	if shouldIgnoreEvent(ev.Name) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addDirsRecursive(watcher, ev.Name)
			return w.queueDir(ev.Name)
		}
	}
	if !convert.IsMarkdown(ev.Name) {
		return false
	}

	src := convert.Source{Path: ev.Name, Base: w.rootOf(ev.Name)}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), logfields.Event(ev.Op.String()))

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		delete(w.pending, src.Path)
		w.removed[src.Path] = src
	case ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create):
		delete(w.removed, src.Path)
		w.pending[src.Path] = src
	default:
		return false
	}
	return true
}

// queueDir queues Markdown files in a directory that appeared after
// watching started, e.g. one moved into a root.
func (w *Watcher) queueDir(dir string) bool {
	sources, err := convert.Collect([]string{dir})
	if err != nil || len(sources) == 0 {
		return false
	}
	base := w.rootOf(dir)
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, src := range sources {
		src.Base = base
		w.pending[src.Path] = src
	}
	return true
}

func (w *Watcher) removeOutput(src convert.Source) {
	if _, err := os.Stat(src.Path); err == nil {
		// Renamed back or recreated before the batch ran.
		return
	}
	out := w.conv.OutputPath(src)
	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		w.logger.Warn("Failed to remove output", logfields.Output(out), logfields.Error(err))
		return
	}
	w.logger.Info("Removed output of deleted source", logfields.File(src.Path), logfields.Output(out))
}

func (w *Watcher) report(summary *convert.Summary, err error) {
	if summary != nil {
		w.logger.Info("Batch complete", slog.String("summary", summary.String()))
	}
	if err != nil {
		w.logger.Warn("Batch finished with errors", logfields.Error(err))
	}
	if w.hook != nil {
		w.hook(summary, err)
	}
}

func (w *Watcher) rootOf(path string) string {
	best := ""
	for _, r := range w.roots {
		if (path == r || strings.HasPrefix(path, r+string(filepath.Separator))) && len(r) > len(best) {
			best = r
		}
	}
	if best == "" {
		return filepath.Dir(path)
	}
	return best
}

func (w *Watcher) addDirsRecursive(watcher *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for hidden files and editor temporaries.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"))
}
