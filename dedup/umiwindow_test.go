package dedup

import "testing"

func TestUMIWindowObserveAccumulatesPerBaseKey(t *testing.T) {
	w := NewUMIWindow(10)
	k := Key{Mode: ModeBulkUMI, Ref: "chr1", Anchor: 100}
	w.Observe(k, 100, "AAAA")
	w.Observe(k, 100, "AAAA")
	w.Observe(k, 101, "AAAT")

	flushed := w.FlushAll()
	if len(flushed) != 1 {
		t.Fatalf("got %d buckets, want 1", len(flushed))
	}
	if flushed[0].UMICounts["AAAA"] != 2 || flushed[0].UMICounts["AAAT"] != 1 {
		t.Errorf("got counts %v, want AAAA:2 AAAT:1", flushed[0].UMICounts)
	}
}

func TestUMIWindowKeepsDifferentBaseKeysSeparate(t *testing.T) {
	w := NewUMIWindow(10)
	k1 := Key{Mode: ModeBulkUMI, Ref: "chr1", Anchor: 100}
	k2 := Key{Mode: ModeBulkUMI, Ref: "chr1", Anchor: 100, Feature: "geneB"}
	w.Observe(k1, 100, "AAAA")
	w.Observe(k2, 100, "AAAA")

	if w.Len() != 2 {
		t.Fatalf("got %d open buckets, want 2", w.Len())
	}
}

func TestUMIWindowFlushEvictsOnlyStaleBuckets(t *testing.T) {
	w := NewUMIWindow(5)
	k1 := Key{Mode: ModeBulkUMI, Ref: "chr1", Anchor: 100}
	k2 := Key{Mode: ModeBulkUMI, Ref: "chr1", Anchor: 200}
	w.Observe(k1, 100, "AAAA")
	w.Observe(k2, 200, "CCCC")

	flushed := w.Flush(103)
	if len(flushed) != 0 {
		t.Fatalf("got %d flushed within max_skip, want 0", len(flushed))
	}

	flushed = w.Flush(110)
	if len(flushed) != 1 || flushed[0].Key != k1 {
		t.Fatalf("got %+v, want exactly k1 flushed", flushed)
	}
	if w.Len() != 1 {
		t.Errorf("got %d open buckets after flush, want 1", w.Len())
	}
}

func TestUMIWindowFlushAllClearsState(t *testing.T) {
	w := NewUMIWindow(5)
	k := Key{Mode: ModeBulkUMI, Ref: "chr1", Anchor: 10}
	w.Observe(k, 10, "AAAA")

	flushed := w.FlushAll()
	if len(flushed) != 1 {
		t.Fatalf("got %d, want 1", len(flushed))
	}
	if w.Len() != 0 {
		t.Errorf("window should be empty after FlushAll")
	}
}
