// Package icons resolves icon names to artwork files and caches the
// loaded artifacts. Decoding is out of scope: an artifact carries the raw
// file bytes and the renderer decides what to do with them.
package icons

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vaginessa/HayaiLauncher/internal/launchable"
)

// Artifact is one loaded icon file. It satisfies launchable.Artifact.
type Artifact struct {
	Name string
	Path string
	Size int
	data []byte
}

var _ launchable.Artifact = (*Artifact)(nil)

// Data returns the raw file bytes, nil after Release.
func (a *Artifact) Data() []byte {
	return a.data
}

// Release drops the artwork bytes.
func (a *Artifact) Release() {
	a.data = nil
}

var iconExtensions = []string{".png", ".svg", ".xpm"}

// defaultSearchPaths are the usual freedesktop icon locations. Sized
// theme directories are probed with the requested size first.
func defaultSearchPaths() []string {
	home := os.Getenv("HOME")
	return []string{
		filepath.Join(home, ".local", "share", "icons"),
		filepath.Join(home, ".icons"),
		"/usr/share/icons/hicolor",
		"/usr/share/icons",
		"/usr/share/pixmaps",
	}
}

// Cache loads icon artifacts by name and size, keeping recently used ones
// in an LRU. A failed load falls back to the configured fallback icon;
// if that fails too, the entry simply stays iconless.
type Cache struct {
	cache       *lru.Cache[string, *Artifact]
	searchPaths []string
	fallback    string
	mu          sync.Mutex

	hits   int64
	misses int64
}

// NewCache creates an icon cache holding up to maxSize artifacts.
func NewCache(maxSize int, searchPaths []string, fallback string) (*Cache, error) {
	if maxSize <= 0 {
		maxSize = 200
	}
	cache, err := lru.New[string, *Artifact](maxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon cache: %w", err)
	}
	if len(searchPaths) == 0 {
		searchPaths = defaultSearchPaths()
	}

	return &Cache{
		cache:       cache,
		searchPaths: searchPaths,
		fallback:    fallback,
	}, nil
}

// Get returns the artifact for an icon name at the given size, loading
// and caching it on a miss.
func (c *Cache) Get(name string, size int) (*Artifact, error) {
	if name == "" {
		name = c.fallback
	}
	key := fmt.Sprintf("%s@%d", name, size)

	c.mu.Lock()
	defer c.mu.Unlock()

	if a, ok := c.cache.Get(key); ok {
		c.hits++
		return a, nil
	}
	c.misses++

	a, err := c.loadLocked(name, size)
	if err != nil {
		if name != c.fallback && c.fallback != "" {
			log.Printf("[ICON-CACHE] Failed to load %q (%v), trying fallback %q", name, err, c.fallback)
			a, err = c.loadLocked(c.fallback, size)
		}
		if err != nil {
			return nil, err
		}
	}

	c.cache.Add(key, a)
	return a, nil
}

func (c *Cache) loadLocked(name string, size int) (*Artifact, error) {
	path, ok := c.resolve(name, size)
	if !ok {
		return nil, fmt.Errorf("icon %q not found", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read icon file: %w", err)
	}
	return &Artifact{Name: name, Path: path, Size: size, data: data}, nil
}

// resolve finds the artwork file for an icon name. Absolute paths are
// taken as-is; otherwise the sized theme directories and the flat search
// paths are probed in order.
func (c *Cache) resolve(name string, size int) (string, bool) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err == nil {
			return name, true
		}
		return "", false
	}

	sized := fmt.Sprintf("%dx%d", size, size)
	for _, dir := range c.searchPaths {
		probes := []string{
			filepath.Join(dir, sized, "apps"),
			filepath.Join(dir, "apps", sized),
			dir,
		}
		for _, probe := range probes {
			for _, ext := range iconExtensions {
				path := filepath.Join(probe, name+ext)
				if _, err := os.Stat(path); err == nil {
					return path, true
				}
			}
		}
	}
	return "", false
}

// Stats returns hit/miss counts and the current cache size.
func (c *Cache) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.cache.Len()
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}
