// Package count accumulates per-feature (and, for single-cell runs,
// per-barcode-per-feature) read counts and emits them as bulk or
// Matrix-Market output.
package count

// BulkTable is a dense per-feature count vector for a bulk (no barcode)
// run.
type BulkTable struct {
	counts map[string]int64
}

// NewBulkTable creates an empty BulkTable.
func NewBulkTable() *BulkTable {
	return &BulkTable{counts: make(map[string]int64)}
}

// Add credits weight counts to featureID.
func (t *BulkTable) Add(featureID string, weight int64) {
	t.counts[featureID] += weight
}

// Get returns the current count for featureID (0 if never credited).
func (t *BulkTable) Get(featureID string) int64 {
	return t.counts[featureID]
}

// Merge folds other's counts into t, associatively and commutatively, so
// per-worker partial tables can be combined in any order.
func (t *BulkTable) Merge(other *BulkTable) {
	for id, c := range other.counts {
		t.counts[id] += c
	}
}

// SingleCellTable is a sparse (barcode, featureID) -> count table for a
// single-cell run.
type SingleCellTable struct {
	counts map[string]map[string]int64
}

// NewSingleCellTable creates an empty SingleCellTable.
func NewSingleCellTable() *SingleCellTable {
	return &SingleCellTable{counts: make(map[string]map[string]int64)}
}

// Add credits weight counts to (barcode, featureID).
func (t *SingleCellTable) Add(barcode, featureID string, weight int64) {
	row, ok := t.counts[barcode]
	if !ok {
		row = make(map[string]int64)
		t.counts[barcode] = row
	}
	row[featureID] += weight
}

// Get returns the current count for (barcode, featureID).
func (t *SingleCellTable) Get(barcode, featureID string) int64 {
	row, ok := t.counts[barcode]
	if !ok {
		return 0
	}
	return row[featureID]
}

// Barcodes returns every barcode that Add has been called for, including a
// barcode credited only with zero weight. Order is unspecified; callers
// needing a stable order should sort the result.
func (t *SingleCellTable) Barcodes() []string {
	out := make([]string, 0, len(t.counts))
	for b := range t.counts {
		out = append(out, b)
	}
	return out
}

// Merge folds other's counts into t.
func (t *SingleCellTable) Merge(other *SingleCellTable) {
	for barcode, row := range other.counts {
		for id, c := range row {
			t.Add(barcode, id, c)
		}
	}
}
