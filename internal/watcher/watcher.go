// Package watcher re-ingests source files as they change. Events are
// debounced so a burst of writes triggers one callback with the whole
// changed set.
package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quarry-dev/quarry/internal/lang"
)

// Watcher monitors a directory tree for changes to source files.
type Watcher struct {
	fs         *fsnotify.Watcher
	root       string
	extensions map[string]bool
	debounce   time.Duration

	callback func(paths []string)
	cancel   context.CancelFunc
	doneCh   chan struct{}
	stopOnce sync.Once

	mu            sync.Mutex
	accumulated   map[string]bool
	debounceTimer *time.Timer
}

// New creates a watcher over root. extensions limits which files count as
// changes; nil watches every extension with a known language mapping.
func New(root string, extensions []string, debounce time.Duration) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if len(extensions) == 0 {
		extensions = lang.Extensions()
	}
	extMap := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extMap[ext] = true
	}

	w := &Watcher{
		fs:          fs,
		root:        root,
		extensions:  extMap,
		debounce:    debounce,
		accumulated: make(map[string]bool),
		doneCh:      make(chan struct{}),
	}

	if err := w.addRecursively(root); err != nil {
		fs.Close()
		return nil, err
	}
	return w, nil
}

// Start begins watching. callback receives the accumulated changed paths
// after each quiet period.
func (w *Watcher) Start(ctx context.Context, callback func(paths []string)) {
	w.callback = callback
	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)
}

// Stop shuts the watcher down and waits for the event loop to exit.
// Idempotent.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) addRecursively(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			// New directories join the watch set.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursively(event.Name); err != nil {
						log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
					}
					continue
				}
			}
			if !w.relevant(event) {
				continue
			}
			w.mu.Lock()
			w.accumulated[event.Name] = true
			w.mu.Unlock()
			w.resetTimer(fireCh)

		case <-fireCh:
			w.fire()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return w.extensions[strings.ToLower(filepath.Ext(event.Name))]
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if len(w.accumulated) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.accumulated))
	for p := range w.accumulated {
		paths = append(paths, p)
	}
	w.accumulated = make(map[string]bool)
	w.mu.Unlock()

	if w.callback != nil {
		w.callback(paths)
	}
}

func (w *Watcher) resetTimer(fireCh chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		if !w.debounceTimer.Stop() {
			select {
			case <-w.debounceTimer.C:
			default:
			}
		}
	}
	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
}
