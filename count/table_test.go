package count

import "testing"

func TestBulkTableAddAccumulates(t *testing.T) {
	tbl := NewBulkTable()
	tbl.Add("geneA", 1)
	tbl.Add("geneA", 2)
	tbl.Add("geneB", 5)

	if got := tbl.Get("geneA"); got != 3 {
		t.Errorf("geneA count = %d, want 3", got)
	}
	if got := tbl.Get("geneB"); got != 5 {
		t.Errorf("geneB count = %d, want 5", got)
	}
	if got := tbl.Get("geneC"); got != 0 {
		t.Errorf("unseen feature count = %d, want 0", got)
	}
}

func TestBulkTableMerge(t *testing.T) {
	a := NewBulkTable()
	a.Add("geneA", 1)
	b := NewBulkTable()
	b.Add("geneA", 4)
	b.Add("geneB", 2)

	a.Merge(b)

	if got := a.Get("geneA"); got != 5 {
		t.Errorf("geneA count after merge = %d, want 5", got)
	}
	if got := a.Get("geneB"); got != 2 {
		t.Errorf("geneB count after merge = %d, want 2", got)
	}
}

func TestSingleCellTableAddAndGet(t *testing.T) {
	tbl := NewSingleCellTable()
	tbl.Add("AAACCCAA", "geneA", 1)
	tbl.Add("AAACCCAA", "geneA", 1)
	tbl.Add("AAACCCAA", "geneB", 3)
	tbl.Add("TTTGGGTT", "geneA", 7)

	if got := tbl.Get("AAACCCAA", "geneA"); got != 2 {
		t.Errorf("AAACCCAA/geneA = %d, want 2", got)
	}
	if got := tbl.Get("AAACCCAA", "geneB"); got != 3 {
		t.Errorf("AAACCCAA/geneB = %d, want 3", got)
	}
	if got := tbl.Get("TTTGGGTT", "geneA"); got != 7 {
		t.Errorf("TTTGGGTT/geneA = %d, want 7", got)
	}
	if got := tbl.Get("CCCCCCCC", "geneA"); got != 0 {
		t.Errorf("unseen barcode = %d, want 0", got)
	}
}

func TestSingleCellTableBarcodes(t *testing.T) {
	tbl := NewSingleCellTable()
	tbl.Add("AAACCCAA", "geneA", 1)
	tbl.Add("TTTGGGTT", "geneB", 1)

	barcodes := tbl.Barcodes()
	if len(barcodes) != 2 {
		t.Fatalf("got %d barcodes, want 2", len(barcodes))
	}
	seen := map[string]bool{}
	for _, b := range barcodes {
		seen[b] = true
	}
	if !seen["AAACCCAA"] || !seen["TTTGGGTT"] {
		t.Errorf("barcodes %v missing an expected entry", barcodes)
	}
}

func TestSingleCellTableMerge(t *testing.T) {
	a := NewSingleCellTable()
	a.Add("AAACCCAA", "geneA", 1)
	b := NewSingleCellTable()
	b.Add("AAACCCAA", "geneA", 2)
	b.Add("AAACCCAA", "geneB", 4)
	b.Add("TTTGGGTT", "geneA", 9)

	a.Merge(b)

	if got := a.Get("AAACCCAA", "geneA"); got != 3 {
		t.Errorf("AAACCCAA/geneA after merge = %d, want 3", got)
	}
	if got := a.Get("AAACCCAA", "geneB"); got != 4 {
		t.Errorf("AAACCCAA/geneB after merge = %d, want 4", got)
	}
	if got := a.Get("TTTGGGTT", "geneA"); got != 9 {
		t.Errorf("TTTGGGTT/geneA after merge = %d, want 9", got)
	}
}
