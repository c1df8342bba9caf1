package preset

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the store when the preset file changes on disk and calls
// onChange after each successful reload. The directory is watched rather
// than the file itself, since atomic saves replace the file by rename.
// Reloads triggered by the store's own saves are harmless: the re-read is
// idempotent. Stop with Unwatch.
func (s *Store) Watch(onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("preset watch: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("preset watch %s: %w", dir, err)
	}

	s.mu.Lock()
	s.watchStop = make(chan struct{})
	s.watchDone = make(chan struct{})
	stop, done := s.watchStop, s.watchDone
	s.mu.Unlock()

	base := filepath.Base(s.path)
	go func() {
		defer close(done)
		defer watcher.Close()
		for {
			select {
			case <-stop:
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if err := s.Load(); err == nil {
					onChange()
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

func (s *Store) Unwatch() {
	s.mu.Lock()
	stop, done := s.watchStop, s.watchDone
	s.watchStop, s.watchDone = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}
