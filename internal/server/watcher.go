package server

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcher wraps fsnotify with recursive directory registration and
// debouncing. A burst of events within the debounce window produces one
// notification.
type watcher struct {
	fs      *fsnotify.Watcher
	files   map[string]bool
	Changes chan string
	done    chan struct{}
}

func newWatcher(dirs []string, files []string, debounce time.Duration) (*watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &watcher{
		fs:      fs,
		files:   map[string]bool{},
		Changes: make(chan string, 1),
		done:    make(chan struct{}),
	}

	for _, dir := range dirs {
		if err := w.addRecursive(dir); err != nil {
			fs.Close()
			return nil, err
		}
	}
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			continue
		}
		w.files[abs] = true
		// Watch the parent directory; editors often replace files on save.
		if err := fs.Add(filepath.Dir(abs)); err != nil {
			slog.Warn("Cannot watch file", slog.String("path", abs), slog.String("error", err.Error()))
		}
	}

	go w.loop(debounce)
	return w, nil
}

func (w *watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() && !strings.HasPrefix(d.Name(), ".") {
			if err := w.fs.Add(p); err != nil {
				return fmt.Errorf("failed to watch %s: %w", p, err)
			}
		}
		return nil
	})
}

func (w *watcher) loop(debounce time.Duration) {
	var timer *time.Timer

	// pending is written here and read from the timer goroutine.
	var mu sync.Mutex
	var pending string

	fire := func() {
		mu.Lock()
		p := pending
		mu.Unlock()
		select {
		case w.Changes <- p:
		default:
		}
	}

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			// New directories join the watch set so nested content
			// is picked up without a restart.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}
			mu.Lock()
			pending = event.Name
			mu.Unlock()
			if timer == nil {
				timer = time.AfterFunc(debounce, fire)
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", slog.String("error", err.Error()))
		}
	}
}

// relevant filters events down to content-affecting changes: anything inside
// a watched directory, or one of the explicitly watched files.
func (w *watcher) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if len(w.files) == 0 {
		return true
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return true
	}
	if w.files[abs] {
		return true
	}
	// Events from watched directories (not file parents) always count.
	return !w.fileParentOnly(filepath.Dir(abs))
}

// fileParentOnly reports whether dir is watched solely because an explicit
// file lives there.
func (w *watcher) fileParentOnly(dir string) bool {
	for f := range w.files {
		if filepath.Dir(f) == dir {
			return true
		}
	}
	return false
}

func (w *watcher) Close() {
	close(w.done)
	_ = w.fs.Close()
}
