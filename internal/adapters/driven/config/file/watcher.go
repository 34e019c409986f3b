package file

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/loreweave/internal/logger"
)

// Watcher reloads a ConfigStore whenever its TOML file changes on disk and
// notifies a callback after each successful reload. The parent directory is
// watched rather than the file because editors often save by rename.
type Watcher struct {
	store    *ConfigStore
	onChange func()
	watcher  *fsnotify.Watcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for store. onChange may be nil.
func NewWatcher(store *ConfigStore, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		store:    store,
		onChange: onChange,
		watcher:  fw,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins watching. It returns once the watch is registered.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.store.Path())
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch config dir %s: %w", dir, err)
	}

	logger.Debug("watching config file %s", w.store.Path())

	w.wg.Add(1)
	go w.eventLoop()
	return nil
}

// Stop ends the event loop and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.cancel()
	_ = w.watcher.Close()
	w.wg.Wait()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	target := filepath.Clean(w.store.Path())
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watch error: %v", err)

		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) reload() {
	if err := w.store.Load(); err != nil {
		// Keep the previous values; a half-written file is retried on the next event.
		logger.Warn("config reload failed: %v", err)
		return
	}
	logger.Info("config reloaded from %s", w.store.Path())
	if w.onChange != nil {
		w.onChange()
	}
}
