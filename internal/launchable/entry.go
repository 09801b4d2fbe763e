package launchable

import (
	"sync"
	"time"
)

// Artifact is rendered icon artwork owned by an Entry once attached.
// Release frees whatever the producer allocated for it.
type Artifact interface {
	Release()
}

// Entry is a fully resolved launchable item held in a Collection.
//
// The identity is immutable for the entry's lifetime. Ranking attributes
// (priority, usage count, last-used time) are written by the preference
// store on insertion and by launch recording afterwards; the icon artifact
// is attached asynchronously by an icon-loading task and guarded
// separately so attachment never contends with the collection lock.
type Entry struct {
	identity  string
	label     string
	normLabel string
	exec      string
	iconName  string

	priority   int
	usageCount int
	lastUsed   time.Time

	iconMu     sync.Mutex
	icon       Artifact
	iconLoaded bool
}

// NewEntry creates an entry for identity with the given display label.
func NewEntry(identity, label string) *Entry {
	return &Entry{
		identity:  identity,
		label:     label,
		normLabel: Normalize(label),
	}
}

// Identity returns the stable identity string (package + class name).
func (e *Entry) Identity() string {
	return e.identity
}

// Label returns the display label.
func (e *Entry) Label() string {
	return e.label
}

// NormalizedLabel returns the case-folded, diacritic-stripped label.
func (e *Entry) NormalizedLabel() string {
	return e.normLabel
}

// SetLabel replaces the display label after an external metadata refresh.
func (e *Entry) SetLabel(label string) {
	e.label = label
	e.normLabel = Normalize(label)
}

// Exec returns the launch command line.
func (e *Entry) Exec() string {
	return e.exec
}

// SetExec sets the launch command line.
func (e *Entry) SetExec(exec string) {
	e.exec = exec
}

// IconName returns the icon name the producer resolves artwork for.
func (e *Entry) IconName() string {
	return e.iconName
}

// SetIconName sets the icon name.
func (e *Entry) SetIconName(name string) {
	e.iconName = name
}

// Priority returns the pin priority. Zero means unpinned.
func (e *Entry) Priority() int {
	return e.priority
}

// SetPriority sets the pin priority.
func (e *Entry) SetPriority(priority int) {
	e.priority = priority
}

// Pinned reports whether the entry is pinned.
func (e *Entry) Pinned() bool {
	return e.priority > 0
}

// UsageCount returns how many times the entry has been launched.
func (e *Entry) UsageCount() int {
	return e.usageCount
}

// SetUsageCount sets the usage count, normally from the preference store.
func (e *Entry) SetUsageCount(count int) {
	e.usageCount = count
}

// AddUsage increments the usage count by one.
func (e *Entry) AddUsage() {
	e.usageCount++
}

// LastUsed returns the last launch time. The zero time means never used.
func (e *Entry) LastUsed() time.Time {
	return e.lastUsed
}

// SetLastUsed sets the last launch time, normally from the preference store.
func (e *Entry) SetLastUsed(t time.Time) {
	e.lastUsed = t
}

// SetLaunchTime stamps the entry as launched now.
func (e *Entry) SetLaunchTime() {
	e.lastUsed = time.Now()
}

// IconLoaded reports whether icon artwork has been attached.
func (e *Entry) IconLoaded() bool {
	e.iconMu.Lock()
	defer e.iconMu.Unlock()
	return e.iconLoaded
}

// Icon returns the attached artifact, nil if none.
func (e *Entry) Icon() Artifact {
	e.iconMu.Lock()
	defer e.iconMu.Unlock()
	return e.icon
}

// AttachIcon hands ownership of the artifact to the entry, releasing any
// previously attached one.
func (e *Entry) AttachIcon(icon Artifact) {
	e.iconMu.Lock()
	old := e.icon
	e.icon = icon
	e.iconLoaded = icon != nil
	e.iconMu.Unlock()

	if old != nil {
		old.Release()
	}
}

// ReleaseIcon releases the attached artifact, if any. The entry goes back
// to the iconless state and may be reloaded later.
func (e *Entry) ReleaseIcon() {
	e.iconMu.Lock()
	old := e.icon
	e.icon = nil
	e.iconLoaded = false
	e.iconMu.Unlock()

	if old != nil {
		old.Release()
	}
}

// String returns the display label.
func (e *Entry) String() string {
	return e.label
}
