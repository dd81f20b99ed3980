package dedup

import "testing"

func TestWindowObserveDetectsDuplicates(t *testing.T) {
	w := NewWindow(10)
	k := Key{Mode: ModePosition, Ref: "chr1", Anchor: 100}
	if !w.Observe(k, 100) {
		t.Error("first observation should be new")
	}
	if w.Observe(k, 101) {
		t.Error("second observation of the same key should be a duplicate")
	}
}

func TestWindowAdvanceEvictsOldGroups(t *testing.T) {
	w := NewWindow(5)
	k1 := Key{Mode: ModePosition, Ref: "chr1", Anchor: 100}
	k2 := Key{Mode: ModePosition, Ref: "chr1", Anchor: 200}
	w.Observe(k1, 100)
	w.Observe(k2, 200)
	if w.Len() != 2 {
		t.Fatalf("got %d open groups, want 2", w.Len())
	}

	w.Advance(103) // within maxSkip of k1, k2 untouched
	if w.Len() != 2 {
		t.Fatalf("got %d open groups after small advance, want 2", w.Len())
	}

	w.Advance(110) // now more than 5 past k1's anchor (100); k1 evicted
	if w.Len() != 1 {
		t.Fatalf("got %d open groups after advance past max_skip, want 1", w.Len())
	}

	// k1 should now be treated as new again since it was evicted.
	if !w.Observe(k1, 110) {
		t.Error("evicted key should be observed as new again")
	}
}

func TestWindowResetClearsState(t *testing.T) {
	w := NewWindow(5)
	k := Key{Mode: ModePosition, Ref: "chr1", Anchor: 10}
	w.Observe(k, 10)
	w.Reset()
	if w.Len() != 0 {
		t.Errorf("got %d open groups after reset, want 0", w.Len())
	}
	if !w.Observe(k, 10) {
		t.Error("key should be new again after reset")
	}
}
