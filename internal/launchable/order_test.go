package launchable

import (
	"testing"
	"time"
)

func TestPolicy_AlphabeticalUsesNormalizedLabels(t *testing.T) {
	a := NewEntry("a", "Éclair")
	b := NewEntry("b", "eclipse")

	if !Alphabetical.less(a, b) {
		t.Error("Expected eclair < eclipse after normalization")
	}
	if Alphabetical.less(b, a) {
		t.Error("Expected eclipse to not sort before eclair")
	}
}

func TestPolicy_PinToTopIgnoresPriorityMagnitude(t *testing.T) {
	low := NewEntry("a", "Low")
	low.SetPriority(1)
	high := NewEntry("b", "High")
	high.SetPriority(9)
	unpinned := NewEntry("c", "None")

	if !PinToTop.less(low, unpinned) {
		t.Error("Expected pinned before unpinned")
	}
	if PinToTop.less(low, high) || PinToTop.less(high, low) {
		t.Error("Expected pinned entries to compare equal regardless of priority value")
	}
}

func TestPolicy_RecencyNeverUsedSortsLast(t *testing.T) {
	used := NewEntry("a", "Used")
	used.SetLastUsed(time.Now())
	never := NewEntry("b", "Never")

	if !Recency.less(used, never) {
		t.Error("Expected used entry before never-used entry")
	}
	if Recency.less(never, used) {
		t.Error("Expected never-used entry to sort last")
	}
}

func TestPolicy_UsageTiesAreEqual(t *testing.T) {
	a := NewEntry("a", "A")
	a.SetUsageCount(3)
	b := NewEntry("b", "B")
	b.SetUsageCount(3)

	if Usage.less(a, b) || Usage.less(b, a) {
		t.Error("Expected equal usage counts to compare equal")
	}

	b.AddUsage()
	if !Usage.less(b, a) {
		t.Error("Expected higher usage count to sort first")
	}
}

func TestParseSecondaryOrder(t *testing.T) {
	cases := map[string]SecondaryOrder{
		"recent":  SecondaryRecent,
		"usage":   SecondaryUsage,
		"none":    SecondaryNone,
		"":        SecondaryNone,
		"garbage": SecondaryNone,
	}
	for name, want := range cases {
		if got := ParseSecondaryOrder(name); got != want {
			t.Errorf("ParseSecondaryOrder(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Äpple":   "apple",
		"Apple":   "apple",
		"ZEBRA":   "zebra",
		"crème":   "creme",
		"naïve":   "naive",
		"plain":   "plain",
		"Ærø":     "ærø", // not diacritics, nothing to strip
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
