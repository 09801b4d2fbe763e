package icons

import (
	"fmt"

	"github.com/vaginessa/HayaiLauncher/internal/launchable"
	"github.com/vaginessa/HayaiLauncher/internal/worker"
)

// SharedData is the immutable context shared by all icon-loading tasks of
// one session: the cache and the target size.
type SharedData struct {
	Cache      *Cache
	SizePixels int
}

// LoadTask returns a pool task that produces artwork for one entry and
// attaches it. Failure leaves the entry iconless; the renderer falls back
// to a default.
func LoadTask(shared *SharedData, e *launchable.Entry) worker.Task {
	return worker.TaskFunc(func() error {
		if e.IconLoaded() {
			return nil
		}
		cached, err := shared.Cache.Get(e.IconName(), shared.SizePixels)
		if err != nil {
			return fmt.Errorf("icon for %s: %w", e.Identity(), err)
		}
		// The entry owns its artifact and may release it independently of
		// the cache, so it gets its own copy of the descriptor.
		artifact := *cached
		e.AttachIcon(&artifact)
		return nil
	})
}
