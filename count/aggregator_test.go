package count

import "testing"

func TestAggregatorBulkAddAndDiagnostics(t *testing.T) {
	agg := NewBulkAggregator()
	agg.AddBulk("geneA", 1)
	agg.AddBulk("geneA", 2)
	agg.Count(CounterUnassigned)
	agg.Count(CounterUnassigned)
	agg.Count(CounterAmbiguous)

	if got := agg.Bulk.Get("geneA"); got != 3 {
		t.Errorf("geneA count = %d, want 3", got)
	}
	if got := agg.Diagnostic(CounterUnassigned); got != 2 {
		t.Errorf("%s = %d, want 2", CounterUnassigned, got)
	}
	if got := agg.Diagnostic(CounterAmbiguous); got != 1 {
		t.Errorf("%s = %d, want 1", CounterAmbiguous, got)
	}
	if got := agg.Diagnostic(CounterFiltered); got != 0 {
		t.Errorf("unset counter = %d, want 0", got)
	}
}

func TestAggregatorSingleCellAdd(t *testing.T) {
	agg := NewSingleCellAggregator()
	agg.AddSingleCell("AAACCCAA", "geneA", 1)
	agg.AddSingleCell("AAACCCAA", "geneA", 1)

	if got := agg.SingleCell.Get("AAACCCAA", "geneA"); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
	if agg.Bulk != nil {
		t.Error("single-cell aggregator should leave Bulk nil")
	}
}

func TestAggregatorMergeCombinesBulkAndDiagnostics(t *testing.T) {
	a := NewBulkAggregator()
	a.AddBulk("geneA", 1)
	a.Count(CounterNoBarcode)

	b := NewBulkAggregator()
	b.AddBulk("geneA", 4)
	b.AddBulk("geneB", 2)
	b.Count(CounterNoBarcode)
	b.Count(CounterNoUMI)

	a.Merge(b)

	if got := a.Bulk.Get("geneA"); got != 5 {
		t.Errorf("geneA after merge = %d, want 5", got)
	}
	if got := a.Bulk.Get("geneB"); got != 2 {
		t.Errorf("geneB after merge = %d, want 2", got)
	}
	if got := a.Diagnostic(CounterNoBarcode); got != 2 {
		t.Errorf("%s after merge = %d, want 2", CounterNoBarcode, got)
	}
	if got := a.Diagnostic(CounterNoUMI); got != 1 {
		t.Errorf("%s after merge = %d, want 1", CounterNoUMI, got)
	}
}

func TestAggregatorMergeCombinesSingleCell(t *testing.T) {
	a := NewSingleCellAggregator()
	a.AddSingleCell("AAACCCAA", "geneA", 1)

	b := NewSingleCellAggregator()
	b.AddSingleCell("AAACCCAA", "geneA", 2)
	b.AddSingleCell("TTTGGGTT", "geneB", 5)

	a.Merge(b)

	if got := a.SingleCell.Get("AAACCCAA", "geneA"); got != 3 {
		t.Errorf("AAACCCAA/geneA after merge = %d, want 3", got)
	}
	if got := a.SingleCell.Get("TTTGGGTT", "geneB"); got != 5 {
		t.Errorf("TTTGGGTT/geneB after merge = %d, want 5", got)
	}
}
