// Package watch rebuilds the site when one of its inputs changes on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// DefaultDebounce coalesces editor save bursts into one rebuild.
const DefaultDebounce = 500 * time.Millisecond

// RebuildFunc runs one build. Errors are logged and watching continues.
type RebuildFunc func(ctx context.Context) error

// Watcher monitors the build inputs and calls a RebuildFunc after changes
// settle. Rebuilds never overlap.
type Watcher struct {
	files    map[string]struct{}
	trees    []string
	debounce time.Duration
	rebuild  RebuildFunc
	fs       *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a watcher for the given files and directory trees. Files and
// trees that do not exist yet are picked up once they are created inside an
// existing parent directory.
func New(files, trees []string, rebuild RebuildFunc, opts ...Option) (*Watcher, error) {
	if rebuild == nil {
		return nil, fmt.Errorf("rebuild function required")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]struct{}, len(files)),
		debounce: DefaultDebounce,
		rebuild:  rebuild,
		fs:       fw,
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := map[string]struct{}{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		w.files[abs] = struct{}{}
		// Watching the parent directory survives editors that replace files on save.
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for _, t := range trees {
		abs, err := filepath.Abs(t)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", t, err)
		}
		w.trees = append(w.trees, abs)
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}
	for _, t := range w.trees {
		w.addTree(t)
	}
	return w, nil
}

// Run processes events until ctx is canceled. The underlying watcher is
// closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.fs.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	slog.Info("Watching for changes", logfields.Count(len(w.files)+len(w.trees)))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create == fsnotify.Create && w.inTree(event.Name) {
				w.addTree(event.Name)
			}
			slog.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		case <-fire:
			fire = nil
			timer = nil
			if err := w.rebuild(ctx); err != nil {
				slog.Error("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(name string) bool {
	if _, ok := w.files[name]; ok {
		return true
	}
	return w.inTree(name)
}

func (w *Watcher) inTree(name string) bool {
	for _, t := range w.trees {
		if name == t || strings.HasPrefix(name, t+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

// addTree registers root and every directory below it. Files are ignored.
func (w *Watcher) addTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Missing trees are watched through their parent.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			slog.Warn("Failed to watch directory", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}
