// Package session wires the launcher together: it enumerates candidates,
// runs the bulk metadata load serially or through a worker pool, owns the
// long-lived icon-loading pool, and exposes search and launch operations
// to the front end.
package session

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/vaginessa/HayaiLauncher/internal/apps"
	"github.com/vaginessa/HayaiLauncher/internal/config"
	"github.com/vaginessa/HayaiLauncher/internal/icons"
	"github.com/vaginessa/HayaiLauncher/internal/launchable"
	"github.com/vaginessa/HayaiLauncher/internal/prefs"
	"github.com/vaginessa/HayaiLauncher/internal/query"
	"github.com/vaginessa/HayaiLauncher/internal/worker"
)

// selfIdentityPrefix marks this launcher's own desktop entries, which are
// excluded from the list the way the original excludes its own activities.
const selfIdentityPrefix = "hayai"

// Session owns the launcher state for one run.
type Session struct {
	cfg        *config.Config
	collection *launchable.Collection
	store      *prefs.Store
	engine     *query.Engine

	iconShared *icons.SharedData
	iconPool   *worker.Pool

	watcher *apps.Watcher
}

// New builds a session from the configuration. The notifier receives the
// collection's refresh signals; pass nil for a headless run.
func New(cfg *config.Config, notifier launchable.Notifier) (*Session, error) {
	store, err := prefs.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open preference store: %w", err)
	}

	collection := launchable.New(256)
	collection.SetPreferenceStore(store)
	if notifier != nil {
		collection.SetNotifier(notifier)
	}
	collection.SetSecondaryOrder(launchable.ParseSecondaryOrder(cfg.Order.Preferred))

	engine, err := query.New(collection, cfg.Search.CacheSize, cfg.Search.MaxResults, cfg.Search.FuzzyRanking)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:        cfg,
		collection: collection,
		store:      store,
		engine:     engine,
	}

	if cfg.Icons.Enabled {
		cache, err := icons.NewCache(cfg.Icons.CacheSize, cfg.Icons.SearchPaths, cfg.Icons.FallbackIcon)
		if err != nil {
			return nil, err
		}
		s.iconShared = &icons.SharedData{Cache: cache, SizePixels: cfg.Icons.SizePixels}
		// The icon pool outlives the bulk load and is torn down
		// non-blockingly in Close.
		s.iconPool = worker.New(
			worker.OptimalWorkerCount(cfg.Icons.MaxLoadThreads),
			cfg.Icons.QueueCapacity,
		)
	}

	return s, nil
}

// Collection exposes the entry collection.
func (s *Session) Collection() *launchable.Collection {
	return s.collection
}

// LoadAll enumerates candidates and bulk-loads them: serially on a
// single-core machine, otherwise through a pool sized to cores-1. The
// call returns once every surviving candidate has been inserted and the
// full sort pipeline has run, so the first display is deterministic
// regardless of task completion order.
func (s *Session) LoadAll() error {
	start := time.Now()
	candidates := s.enumerate()

	// Batch the bulk load into a single refresh signal.
	s.collection.SetNotifyOnChange(false)

	if runtime.NumCPU() <= 1 || len(candidates) <= 1 {
		s.loadSerial(candidates)
	} else {
		if err := s.loadParallel(candidates); err != nil {
			log.Printf("[SESSION] Bulk load degraded: %v", err)
		}
	}

	s.collection.SortAll()
	s.collection.NotifyChanged()

	log.Printf("[SESSION] Loaded %d of %d candidates in %v", s.collection.Len(), len(candidates), time.Since(start))
	return nil
}

func (s *Session) enumerate() []apps.Candidate {
	all := apps.Enumerate(s.cfg.Apps.ScanDirs)
	candidates := all[:0]
	for _, c := range all {
		if strings.HasPrefix(c.Identity, selfIdentityPrefix) {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates
}

func (s *Session) loadSerial(candidates []apps.Candidate) {
	for _, c := range candidates {
		entry, err := apps.Resolve(c)
		if err != nil {
			log.Printf("[SESSION] Skipping %s: %v", c.Identity, err)
			continue
		}
		s.collection.Add(entry)
	}
}

func (s *Session) loadParallel(candidates []apps.Candidate) error {
	capacity := len(candidates)
	pool := worker.New(worker.OptimalWorkerCount(s.cfg.Load.MaxThreads), capacity)
	if s.cfg.Load.ShutdownTimeoutSeconds > 0 {
		pool.SetAwaitTimeout(time.Duration(s.cfg.Load.ShutdownTimeoutSeconds) * time.Second)
	}

	shared := &apps.LoadContext{Collection: s.collection}
	for _, c := range candidates {
		if err := pool.Submit(apps.ResolveTask{Candidate: c, Shared: shared}); err != nil {
			// Only possible if the pool was shut down underneath us.
			return err
		}
	}

	// Block until every queued task has run, so sorting starts on a
	// complete collection.
	return pool.Shutdown(true, true)
}

// Search runs a filter query through the search engine.
func (s *Session) Search(pattern string) []*launchable.Entry {
	return s.engine.Search(pattern)
}

// SearchStats returns search cache statistics.
func (s *Session) SearchStats() query.Stats {
	return s.engine.GetStats()
}

// RequestIcon queues background icon loading for an entry. Requests after
// teardown are dropped silently; stale artwork is useless by then.
func (s *Session) RequestIcon(e *launchable.Entry) {
	if s.iconPool == nil || e == nil || e.IconLoaded() {
		return
	}
	if err := s.iconPool.Submit(icons.LoadTask(s.iconShared, e)); err != nil {
		log.Printf("[SESSION] Icon request dropped: %v", err)
	}
}

// Launch starts the entry's command detached from this process, records
// the launch in the preference store, and re-runs the sort pipeline so
// the new recency/usage data takes effect.
func (s *Session) Launch(e *launchable.Entry) error {
	fields := strings.Fields(e.Exec())
	if len(fields) == 0 {
		return fmt.Errorf("entry %s has no executable command", e.Identity())
	}

	cmd := exec.Command(fields[0], fields[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", e.Identity(), err)
	}

	e.SetLaunchTime()
	e.AddUsage()
	s.store.Write(e)
	s.collection.SortAll()
	s.engine.Invalidate()
	return nil
}

// SetPinned pins or unpins an entry and restores the ordering invariant.
func (s *Session) SetPinned(e *launchable.Entry, pinned bool) {
	if pinned {
		e.SetPriority(1)
	} else {
		e.SetPriority(0)
	}
	s.store.Write(e)
	s.collection.SortAll()
	s.engine.Invalidate()
}

// WatchChanges starts the application-directory watcher if enabled.
func (s *Session) WatchChanges() error {
	if !s.cfg.Apps.WatchChanges {
		return nil
	}
	w, err := apps.Watch(s.cfg.Apps.ScanDirs, s.handleChange)
	if err != nil {
		return err
	}
	s.watcher = w
	return nil
}

// handleChange applies one install/uninstall event to the collection.
func (s *Session) handleChange(ch apps.Change) {
	switch ch.Kind {
	case apps.CandidateRemoved:
		if s.collection.RemoveByIdentityPrefix(ch.Candidate.Identity) {
			s.store.Remove(ch.Candidate.Identity)
			s.collection.SortAll()
			s.engine.Invalidate()
		}
	case apps.CandidateAdded:
		if s.collection.Position(ch.Candidate.Identity) != -1 {
			return
		}
		entry, err := apps.Resolve(ch.Candidate)
		if err != nil {
			log.Printf("[SESSION] Skipping %s: %v", ch.Candidate.Identity, err)
			return
		}
		s.collection.Add(entry)
		s.collection.SortAll()
		s.engine.Invalidate()
	}
}

// ReleaseIcons drops every loaded icon artifact and purges the icon
// cache, for memory pressure. Entries stay in place and artwork reloads
// on the next request.
func (s *Session) ReleaseIcons() {
	s.collection.ReleaseIcons()
	if s.iconShared != nil {
		s.iconShared.Cache.Purge()
	}
}

// Close tears the session down. The icon pool is stopped without
// draining or waiting: queued artwork loads are stale once the front end
// is gone, and teardown must not block it.
func (s *Session) Close() {
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			log.Printf("[SESSION] Watcher close: %v", err)
		}
	}
	if s.iconPool != nil {
		if err := s.iconPool.Shutdown(false, false); err != nil {
			log.Printf("[SESSION] Icon pool shutdown: %v", err)
		}
	}
	s.ReleaseIcons()
}
