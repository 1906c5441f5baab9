// Package watch signals when any of a set of input files changes, so watch
// mode can re-render after the scheme or the text bundle is edited.
//
// The parent directories are watched rather than the files themselves:
// editors commonly save by writing a temporary file and renaming it over
// the original, which detaches a watch on the old inode.
package watch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"tools.zach/dev/eqscheme/internal/logger"
)

// defaultPollInterval is the stat interval when fsnotify is unavailable.
const defaultPollInterval = 2 * time.Second

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

// Watcher monitors files for changes using fsnotify with a polling fallback.
type Watcher struct {
	// files holds the cleaned absolute paths being monitored.
	files map[string]bool
	// dirs are the parent directories registered with fsnotify.
	dirs []string
	// events is buffered to 1 so back-to-back writes coalesce.
	events chan struct{}
	// done is closed by [Watcher.Close].
	done chan struct{}
	// fsw is nil when polling.
	fsw  *fsnotify.Watcher
	once sync.Once
	// polling is true after falling back to stat-based polling.
	polling      atomic.Bool
	pollInterval time.Duration
	log          *slog.Logger
}

// New watches the given files. Empty paths are ignored; files that do not
// exist yet are picked up when created.
func New(log *slog.Logger, files ...string) (*Watcher, error) {
	if log == nil {
		log = logger.Discard()
	}
	w := &Watcher{
		files:        map[string]bool{},
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: defaultPollInterval,
		log:          log,
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files[abs] = true
		if dir := filepath.Dir(abs); !slices.Contains(w.dirs, dir) {
			w.dirs = append(w.dirs, dir)
		}
	}
	if len(w.files) == 0 {
		return nil, fmt.Errorf("watch: no files given")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Info("fsnotify unavailable, falling back to polling", "error", err)
		w.startPolling()
		return w, nil
	}
	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			log.Info("cannot watch directory, falling back to polling", "path", dir, "error", err)
			fsw.Close()
			w.startPolling()
			return w, nil
		}
	}
	w.fsw = fsw
	go w.watch()
	return w, nil
}

// Files returns the watched paths in sorted order.
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Polling reports whether the watcher is using polling instead of fsnotify.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Events returns a channel that receives a signal when a watched file changes.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher and releases resources. It is safe to call more
// than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if w.fsw != nil {
			if closeErr := w.fsw.Close(); closeErr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
			}
		}
	})
	return err
}

func (w *Watcher) startPolling() {
	w.polling.Store(true)
	go w.poll()
}

// watch forwards write, create and rename events for watched files. On an
// fsnotify error it switches to polling.
func (w *Watcher) watch() {
	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename
	fsw := w.fsw
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if event.Op&relevant != 0 && w.files[filepath.Clean(event.Name)] {
				logger.Trace(w.log, "input changed", "path", event.Name, "op", event.Op.String())
				w.notify()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.Info("fsnotify error, switching to polling", "error", err)
			fsw.Close()
			w.startPolling()
			return
		}
	}
}

// poll stats the files every pollInterval and signals when the newest
// modification time advances.
func (w *Watcher) poll() {
	lastMod := w.latestMod()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			if mod := w.latestMod(); mod.After(lastMod) {
				lastMod = mod
				w.notify()
			}
		}
	}
}

// latestMod returns the newest modification time among the watched files
// that exist.
func (w *Watcher) latestMod() time.Time {
	var latest time.Time
	for f := range w.files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	return latest
}

// notify sends one signal, dropping it when one is already pending.
func (w *Watcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}
