package apps

import (
	"fmt"

	"github.com/vaginessa/HayaiLauncher/internal/launchable"
)

// LoadContext is the immutable context shared by every metadata-
// resolution task of one bulk load.
type LoadContext struct {
	Collection *launchable.Collection
}

// ResolveTask resolves one candidate into an entry and inserts it into
// the collection. Tasks are independent: a failure is reported through
// the error return, logged by the pool, and simply omits the candidate.
type ResolveTask struct {
	Candidate Candidate
	Shared    *LoadContext
}

// Run parses the candidate's .desktop file and adds the resulting entry.
// Hidden and non-application files resolve to an error so they stay out
// of the collection.
func (t ResolveTask) Run() error {
	entry, err := Resolve(t.Candidate)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", t.Candidate.Identity, err)
	}
	t.Shared.Collection.Add(entry)
	return nil
}

// Resolve produces a populated entry from a candidate without inserting
// it anywhere. The serial load path and the change watcher use it
// directly.
func Resolve(c Candidate) (*launchable.Entry, error) {
	parsed, err := parseDesktopFile(c.Path)
	if err != nil {
		return nil, err
	}
	if parsed.NoDisplay {
		return nil, fmt.Errorf("not displayable")
	}

	entry := launchable.NewEntry(c.Identity, parsed.Name)
	entry.SetExec(stripFieldCodes(parsed.Exec))
	entry.SetIconName(parsed.Icon)
	return entry, nil
}
