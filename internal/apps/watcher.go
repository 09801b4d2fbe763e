package apps

import (
	"fmt"
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind says what happened to a launchable candidate on disk.
type ChangeKind int

const (
	// CandidateAdded covers new and rewritten .desktop files.
	CandidateAdded ChangeKind = iota
	// CandidateRemoved covers deleted and renamed-away .desktop files.
	CandidateRemoved
)

// Change is one install/uninstall/update event.
type Change struct {
	Kind      ChangeKind
	Candidate Candidate
}

// Watcher reports .desktop file changes in the application directories,
// so installs and uninstalls reach the collection while running.
type Watcher struct {
	fs      *fsnotify.Watcher
	handler func(Change)
	done    chan struct{}
}

// Watch starts watching dirs and invokes handler from a background
// goroutine for every relevant change. Directories that cannot be
// watched are skipped with a log line.
func Watch(dirs []string, handler func(Change)) (*Watcher, error) {
	if len(dirs) == 0 {
		dirs = DefaultScanDirs()
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	watched := 0
	for _, dir := range dirs {
		if err := fs.Add(dir); err != nil {
			log.Printf("[WATCHER] Cannot watch %s: %v", dir, err)
			continue
		}
		watched++
	}
	if watched == 0 {
		fs.Close()
		return nil, fmt.Errorf("no watchable application directories")
	}

	w := &Watcher{
		fs:      fs,
		handler: handler,
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.dispatch(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("[WATCHER] Error: %v", err)
		}
	}
}

func (w *Watcher) dispatch(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".desktop") {
		return
	}

	candidate := Candidate{
		Identity: IdentityForPath(event.Name),
		RawLabel: IdentityForPath(event.Name),
		Path:     event.Name,
	}

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		log.Printf("[WATCHER] Uninstall detected: %s", candidate.Identity)
		w.handler(Change{Kind: CandidateRemoved, Candidate: candidate})
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		log.Printf("[WATCHER] Install/update detected: %s", candidate.Identity)
		w.handler(Change{Kind: CandidateAdded, Candidate: candidate})
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
