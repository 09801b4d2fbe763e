// Package query is the search layer the UI talks to: it drives the
// collection's substring filter, optionally re-ranks the visible set
// with fuzzy match scores, trims to the configured result count, and
// caches displayed results in an LRU.
package query

import (
	"crypto/md5"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sahilm/fuzzy"

	"github.com/vaginessa/HayaiLauncher/internal/launchable"
)

// cacheEntry is one cached display list.
type cacheEntry struct {
	results        []*launchable.Entry
	collectionHash string
	timestamp      time.Time
}

// cacheTTL bounds how long a cached display list stays usable even when
// the collection hash still matches, since ranking attributes change
// without changing the hash.
const cacheTTL = 5 * time.Minute

// Stats holds search cache statistics.
type Stats struct {
	Size    int
	Hits    int64
	Misses  int64
	HitRate float64
}

// Engine wraps a collection with caching and ranking. The collection's
// Filter always runs, keeping the published view authoritative; the
// cache only skips the rank-and-trim step.
type Engine struct {
	collection *launchable.Collection
	cache      *lru.Cache[string, *cacheEntry]
	maxResults int
	fuzzyRank  bool

	mu     sync.Mutex
	hits   int64
	misses int64
}

// New creates a search engine over the collection. cacheSize <= 0 picks a
// default; maxResults <= 0 means unlimited.
func New(collection *launchable.Collection, cacheSize, maxResults int, fuzzyRank bool) (*Engine, error) {
	if cacheSize <= 0 {
		cacheSize = 100
	}
	cache, err := lru.New[string, *cacheEntry](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}

	return &Engine{
		collection: collection,
		cache:      cache,
		maxResults: maxResults,
		fuzzyRank:  fuzzyRank,
	}, nil
}

// Search filters the collection by pattern and returns the display list.
func (e *Engine) Search(pattern string) []*launchable.Entry {
	pattern = strings.TrimSpace(pattern)
	matched := e.collection.Filter(pattern)

	hash := collectionHash(matched)
	key := pattern + ":" + hash

	e.mu.Lock()
	if cached, ok := e.cache.Get(key); ok {
		if cached.collectionHash == hash && time.Since(cached.timestamp) < cacheTTL {
			e.hits++
			e.mu.Unlock()
			return cached.results
		}
		e.cache.Remove(key)
	}
	e.misses++
	e.mu.Unlock()

	results := matched
	if e.fuzzyRank && pattern != "" {
		results = rankFuzzy(pattern, matched)
	}
	if e.maxResults > 0 && len(results) > e.maxResults {
		results = results[:e.maxResults]
	}

	e.mu.Lock()
	e.cache.Add(key, &cacheEntry{
		results:        results,
		collectionHash: hash,
		timestamp:      time.Now(),
	})
	e.mu.Unlock()

	return results
}

// Invalidate drops every cached result, e.g. after a bulk reload.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache.Purge()
	e.hits = 0
	e.misses = 0
}

// GetStats returns current cache statistics.
func (e *Engine) GetStats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := e.hits + e.misses
	rate := float64(0)
	if total > 0 {
		rate = float64(e.hits) / float64(total)
	}
	return Stats{
		Size:    e.cache.Len(),
		Hits:    e.hits,
		Misses:  e.misses,
		HitRate: rate,
	}
}

// rankFuzzy reorders the substring match set by fuzzy score, exact
// prefix matches first, keeping prior order on ties. The set of entries
// never changes, only the order.
func rankFuzzy(pattern string, matched []*launchable.Entry) []*launchable.Entry {
	labels := make([]string, len(matched))
	for i, entry := range matched {
		labels[i] = entry.Label()
	}

	scores := make(map[int]int, len(matched))
	for _, m := range fuzzy.Find(pattern, labels) {
		scores[m.Index] = m.Score
	}

	needle := strings.ToLower(pattern)
	ranked := make([]*launchable.Entry, len(matched))
	copy(ranked, matched)

	index := make(map[*launchable.Entry]int, len(matched))
	for i, entry := range matched {
		index[entry] = i
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		aPrefix := strings.HasPrefix(strings.ToLower(a.Label()), needle)
		bPrefix := strings.HasPrefix(strings.ToLower(b.Label()), needle)
		if aPrefix != bPrefix {
			return aPrefix
		}
		return scores[index[a]] > scores[index[b]]
	})

	return ranked
}

// collectionHash fingerprints a result list for cache invalidation. Every
// label goes into the hash in order, so any reordering or content change
// produces a new key without relying on callers to invalidate.
func collectionHash(entries []*launchable.Entry) string {
	if len(entries) == 0 {
		return ""
	}
	h := md5.New()
	fmt.Fprintf(h, "%d", len(entries))
	for _, e := range entries {
		io.WriteString(h, ":")
		io.WriteString(h, e.Label())
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// LogStats writes the cache statistics to the log.
func (e *Engine) LogStats() {
	s := e.GetStats()
	log.Printf("[SEARCH-CACHE] size=%d hits=%d misses=%d hit_rate=%.2f", s.Size, s.Hits, s.Misses, s.HitRate)
}
