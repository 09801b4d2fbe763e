// Package prefs persists per-entry ranking attributes: pin priority,
// usage count and last launch time. The store is the authoritative source
// for those three attributes; the collection reads them on insertion and
// launch recording writes them back.
package prefs

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vaginessa/HayaiLauncher/internal/launchable"
)

// Record holds the persisted attributes for one identity.
type Record struct {
	Priority   int       `json:"priority"`
	UsageCount int       `json:"usage_count"`
	LastUsed   time.Time `json:"last_used"`
}

// Store is a JSON-file backed preference store keyed by entry identity.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
	file    string
}

// NewStore opens the store under dataDir, creating the directory as
// needed and loading any existing data.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{
		records: make(map[string]*Record),
		file:    filepath.Join(dataDir, "prefs.json"),
	}
	if err := s.load(); err != nil {
		log.Printf("[PREFS] Failed to load preference data: %v", err)
	}
	return s, nil
}

// Read returns the stored record for identity, or false if none exists.
func (s *Store) Read(identity string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[identity]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Apply populates an entry's ranking attributes from the store. Entries
// without a record keep their zero values. Apply satisfies
// launchable.PreferenceStore.
func (s *Store) Apply(e *launchable.Entry) {
	r, ok := s.Read(e.Identity())
	if !ok {
		return
	}
	e.SetPriority(r.Priority)
	e.SetUsageCount(r.UsageCount)
	e.SetLastUsed(r.LastUsed)
}

// Write persists an entry's current ranking attributes.
func (s *Store) Write(e *launchable.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[e.Identity()] = &Record{
		Priority:   e.Priority(),
		UsageCount: e.UsageCount(),
		LastUsed:   e.LastUsed(),
	}
	if err := s.save(); err != nil {
		log.Printf("[PREFS] Failed to save preference data: %v", err)
	}
}

// Remove deletes the record for identity, e.g. after an uninstall.
func (s *Store) Remove(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, identity)
	if err := s.save(); err != nil {
		log.Printf("[PREFS] Failed to save preference data: %v", err)
	}
}

// Clear drops every record.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*Record)
	if err := s.save(); err != nil {
		log.Printf("[PREFS] Failed to save preference data: %v", err)
	}
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var records map[string]*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to unmarshal preference data: %w", err)
	}
	if records == nil {
		// "null" is valid JSON; a nil map would make the next Write panic.
		records = make(map[string]*Record)
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	log.Printf("[PREFS] Loaded %d preference records", len(records))
	return nil
}

// save writes the records atomically. Callers must hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preference data: %w", err)
	}

	tempFile := s.file + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp preference file: %w", err)
	}
	if err := os.Rename(tempFile, s.file); err != nil {
		return fmt.Errorf("failed to rename temp preference file: %w", err)
	}
	return nil
}
