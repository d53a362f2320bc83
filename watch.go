package sprite7800

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long a project file must go without changing before it
// is processed
const settleDelay = 100 * time.Millisecond

// Watcher reports project files that have been written under a directory
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewWatcher watches dir and every directory below it that is not hidden
func NewWatcher(dir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if info.Name()[0] == '.' && path != dir {
			return filepath.SkipDir
		}
		return w.Add(path)
	}); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		timers:  make(map[string]*time.Timer),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops watching. Events and Errors are closed.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()

		w.mu.Lock()
		for _, t := range w.timers {
			t.Stop()
		}
		w.timers = nil
		close(w.Events)
		close(w.Errors)
		w.mu.Unlock()
	})
	return err
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Base(event.Name)[0] == '.' {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watcher.Add(event.Name)
					continue
				}
			}
			if !isProjectFile(event.Name) {
				continue
			}
			w.settle(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// settle reports file once it has stopped changing. The report blocks until
// it is received or the watcher is closed.
func (w *Watcher) settle(file string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timers == nil {
		return
	}
	if t, ok := w.timers[file]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(settleDelay, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.timers == nil {
			return
		}
		if w.timers[file] == t {
			delete(w.timers, file)
		}
		select {
		case w.Events <- file:
		case <-w.closeCh:
		}
	})
	w.timers[file] = t
}

// Watch catalogues, and if enabled exports, every project file written
// under dir until ctx is cancelled
func (w *Workspace) Watch(ctx context.Context, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	watcher, err := NewWatcher(abs)
	if err != nil {
		return err
	}
	defer watcher.Close()

	for {
		select {
		case file := <-watcher.Events:
			if err := w.process(file, false); err != nil {
				w.logger.Printf("Error processing \"%s\": %s\n", file, err)
			}
		case err := <-watcher.Errors:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
