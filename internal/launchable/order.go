package launchable

// Policy identifies one comparison pass usable with Collection.Sort. Each
// policy orders entries by a single attribute; composite orderings come
// from running several stable passes in sequence, not from a combined
// comparator.
type Policy int

const (
	// Alphabetical orders by normalized label, lexicographically.
	Alphabetical Policy = iota
	// PinToTop orders pinned entries before unpinned ones. Relative order
	// among pinned entries is whatever the prior pass left.
	PinToTop
	// Recency orders more recently launched entries first. Never-used
	// entries carry the zero time and sort last.
	Recency
	// Usage orders higher launch counts first.
	Usage
)

func (p Policy) String() string {
	switch p {
	case Alphabetical:
		return "alphabetical"
	case PinToTop:
		return "pin-to-top"
	case Recency:
		return "recency"
	case Usage:
		return "usage"
	}
	return "unknown"
}

// less reports a strict order on one attribute. Equal entries compare
// false both ways so a stable sort preserves their prior relative order.
func (p Policy) less(a, b *Entry) bool {
	switch p {
	case Alphabetical:
		return a.normLabel < b.normLabel
	case PinToTop:
		return a.Pinned() && !b.Pinned()
	case Recency:
		return a.lastUsed.After(b.lastUsed)
	case Usage:
		return a.usageCount > b.usageCount
	}
	return false
}

// SecondaryOrder selects the optional middle pass of SortAll. Recency and
// usage ordering are mutually exclusive, so they are one choice rather
// than two independent toggles.
type SecondaryOrder int

const (
	// SecondaryNone skips the middle pass.
	SecondaryNone SecondaryOrder = iota
	// SecondaryRecent runs the Recency pass.
	SecondaryRecent
	// SecondaryUsage runs the Usage pass.
	SecondaryUsage
)

// ParseSecondaryOrder maps a configured order name to a SecondaryOrder.
// Unknown names mean no secondary ordering.
func ParseSecondaryOrder(name string) SecondaryOrder {
	switch name {
	case "recent":
		return SecondaryRecent
	case "usage":
		return SecondaryUsage
	}
	return SecondaryNone
}
