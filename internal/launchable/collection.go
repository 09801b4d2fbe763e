package launchable

import (
	"log"
	"sort"
	"strings"
	"sync"
)

// Notifier receives the UI refresh signals emitted by a Collection.
// Changed means re-render with the current content and order; Invalidated
// means the current filtered view is empty.
type Notifier interface {
	Changed()
	Invalidated()
}

// PreferenceStore supplies persisted ranking attributes (pin priority,
// usage count, last-used time) for entries as they enter the collection.
type PreferenceStore interface {
	Apply(e *Entry)
}

// Collection is the thread-safe ordered container of launchable entries.
//
// One mutex serializes every structural mutation. Workers resolving
// entries in parallel insert through Add while the UI side reads through
// Len/At; reads are synchronized by the notification signal, not the
// lock, so readers see an eventually-consistent view until Changed fires.
//
// Once Filter has been used, originalValues holds the complete unfiltered
// data and objects holds only the current filtered view; all mutation then
// routes through originalValues so filtering never destroys data.
type Collection struct {
	mu             sync.Mutex
	objects        []*Entry
	originalValues []*Entry

	notifyOnChange bool
	secondary      SecondaryOrder

	prefs    PreferenceStore
	notifier Notifier
}

// New creates an empty collection sized for initialSize entries.
func New(initialSize int) *Collection {
	if initialSize < 0 {
		initialSize = 0
	}
	return &Collection{
		objects:        make([]*Entry, 0, initialSize),
		notifyOnChange: true,
	}
}

// SetPreferenceStore installs the store consulted by Add and Insert.
func (c *Collection) SetPreferenceStore(prefs PreferenceStore) {
	c.prefs = prefs
}

// SetNotifier installs the UI notification sink.
func (c *Collection) SetNotifier(n Notifier) {
	c.notifier = n
}

// SetNotifyOnChange controls whether mutating methods signal Changed
// automatically. The default is on; NotifyChanged re-arms it. Turning it
// off lets a bulk load batch many mutations into one notification.
func (c *Collection) SetNotifyOnChange(notify bool) {
	c.mu.Lock()
	c.notifyOnChange = notify
	c.mu.Unlock()
}

// SetSecondaryOrder selects which middle pass SortAll runs. Setting one
// of recency or usage implicitly disables the other.
func (c *Collection) SetSecondaryOrder(order SecondaryOrder) {
	c.mu.Lock()
	c.secondary = order
	c.mu.Unlock()
}

// authoritativeLocked returns the sequence mutations apply to: the
// original-values buffer once filtering has occurred, else the primary.
// Callers must hold c.mu.
func (c *Collection) authoritativeLocked() *[]*Entry {
	if c.originalValues != nil {
		return &c.originalValues
	}
	return &c.objects
}

// Add appends an entry, populating its ranking attributes from the
// preference store first. This is the single insertion point used by
// metadata-resolution tasks.
func (c *Collection) Add(e *Entry) {
	if e == nil {
		return
	}
	if c.prefs != nil {
		c.prefs.Apply(e)
	}

	c.mu.Lock()
	seq := c.authoritativeLocked()
	*seq = append(*seq, e)
	notify := c.notifyOnChange
	c.mu.Unlock()

	if notify {
		c.NotifyChanged()
	}
}

// Insert places an entry at index in the authoritative sequence. The
// index is clamped to the valid range.
func (c *Collection) Insert(e *Entry, index int) {
	if e == nil {
		return
	}
	if c.prefs != nil {
		c.prefs.Apply(e)
	}

	c.mu.Lock()
	seq := c.authoritativeLocked()
	if index < 0 {
		index = 0
	}
	if index > len(*seq) {
		index = len(*seq)
	}
	*seq = append(*seq, nil)
	copy((*seq)[index+1:], (*seq)[index:])
	(*seq)[index] = e
	notify := c.notifyOnChange
	c.mu.Unlock()

	if notify {
		c.NotifyChanged()
	}
}

// AddAll appends entries in order, e.g. when restoring exported state.
func (c *Collection) AddAll(entries []*Entry) {
	c.mu.Lock()
	seq := c.authoritativeLocked()
	*seq = append(*seq, entries...)
	notify := c.notifyOnChange
	c.mu.Unlock()

	if notify {
		c.NotifyChanged()
	}
}

// Remove removes the entry with the given identity and releases its icon.
// It reports whether the collection was modified.
func (c *Collection) Remove(identity string) bool {
	var removed *Entry

	c.mu.Lock()
	seq := c.authoritativeLocked()
	for i, e := range *seq {
		if e.identity == identity {
			removed = e
			*seq = append((*seq)[:i], (*seq)[i+1:]...)
			break
		}
	}
	notify := c.notifyOnChange
	c.mu.Unlock()

	if removed == nil {
		return false
	}
	removed.ReleaseIcon()
	if notify {
		c.NotifyChanged()
	}
	return true
}

// RemoveByIdentityPrefix removes every entry whose identity starts with
// prefix, e.g. all activities of an uninstalled package. Remaining entries
// keep their relative order. It reports whether anything was removed.
func (c *Collection) RemoveByIdentityPrefix(prefix string) bool {
	var removed []*Entry

	c.mu.Lock()
	seq := c.authoritativeLocked()
	kept := (*seq)[:0]
	for _, e := range *seq {
		if strings.HasPrefix(e.identity, prefix) {
			removed = append(removed, e)
		} else {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(*seq); i++ {
		(*seq)[i] = nil
	}
	*seq = kept
	notify := c.notifyOnChange
	c.mu.Unlock()

	if len(removed) == 0 {
		return false
	}
	for _, e := range removed {
		e.ReleaseIcon()
	}
	log.Printf("[COLLECTION] Removed %d entries with identity prefix %q", len(removed), prefix)
	if notify {
		c.NotifyChanged()
	}
	return true
}

// Clear releases every entry's icon and empties the authoritative
// sequence.
func (c *Collection) Clear() {
	c.mu.Lock()
	seq := c.authoritativeLocked()
	entries := *seq
	*seq = (*seq)[:0]
	notify := c.notifyOnChange
	c.mu.Unlock()

	for _, e := range entries {
		e.ReleaseIcon()
	}
	if notify {
		c.NotifyChanged()
	}
}

// ReleaseIcons releases icon artwork for every entry without removing
// anything, for memory-pressure handling.
func (c *Collection) ReleaseIcons() {
	c.mu.Lock()
	entries := make([]*Entry, 0, len(c.objects)+len(c.originalValues))
	entries = append(entries, c.objects...)
	entries = append(entries, c.originalValues...)
	c.mu.Unlock()

	for _, e := range entries {
		e.ReleaseIcon()
	}
}

// Len returns the number of entries in the current visible view.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.objects)
}

// At returns the entry at position i of the current visible view, nil if
// out of range.
func (c *Collection) At(i int) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.objects) {
		return nil
	}
	return c.objects[i]
}

// Entries returns a copy of the current visible view.
func (c *Collection) Entries() []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Entry, len(c.objects))
	copy(out, c.objects)
	return out
}

// Position returns the index of the entry with the given identity in the
// authoritative sequence, -1 if absent.
func (c *Collection) Position(identity string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	seq := *c.authoritativeLocked()
	for i, e := range seq {
		if e.identity == identity {
			return i
		}
	}
	return -1
}

// Filter retains only entries whose normalized label contains the
// normalized pattern as a substring and publishes the result as the
// visible view. An empty pattern restores the complete unfiltered data.
//
// The first non-trivial call snapshots the primary sequence into the
// original-values buffer; the match itself runs on a lock-protected copy
// with the lock released, so a slow match never blocks mutators.
func (c *Collection) Filter(pattern string) []*Entry {
	c.mu.Lock()

	// A blank pattern before the filter has ever been used leaves the
	// primary sequence untouched.
	if c.originalValues == nil && pattern == "" {
		result := c.objects
		c.mu.Unlock()
		return result
	}

	if c.originalValues == nil {
		c.originalValues = make([]*Entry, len(c.objects))
		copy(c.originalValues, c.objects)
	}
	snapshot := make([]*Entry, len(c.originalValues))
	copy(snapshot, c.originalValues)
	c.mu.Unlock()

	var result []*Entry
	if pattern == "" {
		result = snapshot
	} else {
		needle := Normalize(pattern)
		result = make([]*Entry, 0, len(snapshot))
		for _, e := range snapshot {
			if strings.Contains(e.normLabel, needle) {
				result = append(result, e)
			}
		}
	}

	c.publish(result)
	return result
}

// publish replaces the visible view and signals the notifier: Changed for
// a non-empty result, Invalidated for an empty one.
func (c *Collection) publish(result []*Entry) {
	c.mu.Lock()
	c.objects = result
	c.mu.Unlock()

	if c.notifier == nil {
		return
	}
	if len(result) > 0 {
		c.notifier.Changed()
	} else {
		c.notifier.Invalidated()
	}
}

// Sort runs one stable comparison pass over the visible view and, if
// present, the original-values buffer. Stability is what lets SortAll
// compose passes: a later pass only breaks ties left by an earlier one.
func (c *Collection) Sort(p Policy) {
	c.mu.Lock()
	c.sortLocked(p)
	notify := c.notifyOnChange
	c.mu.Unlock()

	if notify {
		c.NotifyChanged()
	}
}

func (c *Collection) sortLocked(p Policy) {
	sort.SliceStable(c.objects, func(i, j int) bool {
		return p.less(c.objects[i], c.objects[j])
	})
	if c.originalValues != nil {
		sort.SliceStable(c.originalValues, func(i, j int) bool {
			return p.less(c.originalValues[i], c.originalValues[j])
		})
	}
}

// SortAll runs the full ordering pipeline under one lock acquisition:
// alphabetical, then the configured secondary pass, then pin-to-top.
// Pin-to-top runs last so a pin beats every automatic criterion.
// Intermediate notifications are suppressed and flushed once at the end.
func (c *Collection) SortAll() {
	c.mu.Lock()
	notify := c.notifyOnChange
	c.notifyOnChange = false

	c.sortLocked(Alphabetical)
	switch c.secondary {
	case SecondaryRecent:
		c.sortLocked(Recency)
	case SecondaryUsage:
		c.sortLocked(Usage)
	}
	c.sortLocked(PinToTop)

	c.notifyOnChange = notify
	c.mu.Unlock()

	if notify {
		c.NotifyChanged()
	}
}

// NotifyChanged signals the notifier explicitly and re-arms automatic
// notification.
func (c *Collection) NotifyChanged() {
	c.mu.Lock()
	c.notifyOnChange = true
	n := c.notifier
	c.mu.Unlock()

	if n != nil {
		n.Changed()
	}
}
