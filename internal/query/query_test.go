package query

import (
	"fmt"
	"testing"

	"github.com/vaginessa/HayaiLauncher/internal/launchable"
)

func newTestCollection(labels ...string) *launchable.Collection {
	c := launchable.New(len(labels))
	for i, label := range labels {
		c.Add(launchable.NewEntry(fmt.Sprintf("app%d", i), label))
	}
	return c
}

func labels(entries []*launchable.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label()
	}
	return out
}

func TestEngine_SearchFiltersCollection(t *testing.T) {
	c := newTestCollection("Firefox", "Files", "Terminal")
	engine, err := New(c, 10, 0, false)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	results := engine.Search("fi")
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	// The collection's published view must match the returned results.
	if c.Len() != 2 {
		t.Errorf("Expected collection view of 2 entries, got %d", c.Len())
	}
}

func TestEngine_CacheHit(t *testing.T) {
	c := newTestCollection("Firefox", "Files", "Terminal")
	engine, err := New(c, 10, 0, false)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	first := engine.Search("fi")
	second := engine.Search("fi")

	stats := engine.GetStats()
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
	if stats.Hits != 1 {
		t.Errorf("Expected 1 hit, got %d", stats.Hits)
	}
	if len(first) != len(second) {
		t.Errorf("Expected identical result sizes, got %d and %d", len(first), len(second))
	}
}

func TestEngine_CacheInvalidatedByCollectionChange(t *testing.T) {
	c := newTestCollection("Firefox", "Terminal")
	engine, err := New(c, 10, 0, false)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if got := len(engine.Search("fi")); got != 1 {
		t.Fatalf("Expected 1 result, got %d", got)
	}

	c.Add(launchable.NewEntry("files", "Files"))

	if got := len(engine.Search("fi")); got != 2 {
		t.Errorf("Expected 2 results after adding an entry, got %d", got)
	}
	stats := engine.GetStats()
	if stats.Misses != 2 {
		t.Errorf("Expected 2 misses after a collection change, got %d", stats.Misses)
	}
}

func TestEngine_MaxResultsTrims(t *testing.T) {
	c := newTestCollection("App One", "App Two", "App Three", "App Four")
	engine, err := New(c, 10, 2, false)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	results := engine.Search("app")
	if len(results) != 2 {
		t.Errorf("Expected results trimmed to 2, got %d", len(results))
	}
}

func TestEngine_FuzzyRankingPreservesSet(t *testing.T) {
	c := newTestCollection("Text Editor", "Terminal", "Tetris")
	engine, err := New(c, 10, 0, true)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	results := engine.Search("te")
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	seen := make(map[string]bool)
	for _, e := range results {
		seen[e.Label()] = true
	}
	for _, want := range []string{"Text Editor", "Terminal", "Tetris"} {
		if !seen[want] {
			t.Errorf("Expected %q in the ranked results: %v", want, labels(results))
		}
	}
}

func TestEngine_FuzzyRankingPrefersPrefixMatches(t *testing.T) {
	c := newTestCollection("Master Chess", "Terminal")
	engine, err := New(c, 10, 0, true)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	results := engine.Search("ter")
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Label() != "Terminal" {
		t.Errorf("Expected the prefix match first, got %v", labels(results))
	}
}

func TestEngine_Invalidate(t *testing.T) {
	c := newTestCollection("Firefox")
	engine, err := New(c, 10, 0, false)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	engine.Search("fire")
	engine.Search("fire")
	engine.Invalidate()

	stats := engine.GetStats()
	if stats.Size != 0 {
		t.Errorf("Expected empty cache after invalidate, got size %d", stats.Size)
	}
	if stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("Expected counters reset, got hits=%d misses=%d", stats.Hits, stats.Misses)
	}
}

func TestCollectionHash_SensitiveToInteriorOrder(t *testing.T) {
	a := launchable.NewEntry("a", "Alpha")
	b := launchable.NewEntry("b", "Beta")
	c := launchable.NewEntry("c", "Gamma")
	d := launchable.NewEntry("d", "Delta")

	// Same length and endpoints, different interior order: the
	// fingerprints must differ or a re-sorted view would serve a stale
	// cached list.
	one := collectionHash([]*launchable.Entry{a, b, c, d})
	two := collectionHash([]*launchable.Entry{a, c, b, d})
	if one == two {
		t.Error("Expected different fingerprints for different interior orders")
	}

	if collectionHash(nil) != "" {
		t.Error("Expected empty fingerprint for an empty view")
	}
}

func TestEngine_CacheMissAfterReorder(t *testing.T) {
	c := newTestCollection("Alpha", "Beta", "Gamma", "Delta")
	engine, err := New(c, 10, 0, false)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	first := engine.Search("")
	if first[0].Label() != "Alpha" {
		t.Fatalf("Expected Alpha first before the reorder, got %q", first[0].Label())
	}

	c.Entries()[1].SetUsageCount(5)
	c.SetSecondaryOrder(launchable.SecondaryUsage)
	c.SortAll()

	second := engine.Search("")
	if second[0].Label() != "Beta" {
		t.Fatalf("Expected the used entry first after the reorder, got %q", second[0].Label())
	}
	stats := engine.GetStats()
	if stats.Hits != 0 {
		t.Errorf("Expected no cache hit after a reorder, got %d", stats.Hits)
	}
}

func TestEngine_EmptyPatternReturnsAll(t *testing.T) {
	c := newTestCollection("Firefox", "Files", "Terminal")
	engine, err := New(c, 10, 0, true)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	// No filter has run yet, so the empty pattern takes the cheap path.
	results := engine.Search("")
	if len(results) != 3 {
		t.Errorf("Expected all 3 entries for the empty pattern, got %d", len(results))
	}
}
