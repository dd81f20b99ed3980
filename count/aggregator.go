package count

import "sync"

// Diagnostic counter names, mirroring the dunder-prefixed convention
// featureCounts and STARsolo both use for non-feature "catch-all" rows.
const (
	CounterNoBarcode  = "__no_barcode"
	CounterNoUMI      = "__no_umi"
	CounterUnassigned = "__unassigned"
	CounterAmbiguous  = "__ambiguous"
	CounterFiltered   = "__filtered"
)

// Aggregator is the per-worker (and, after merging, whole-run) accumulation
// of feature counts plus diagnostic counters. One Aggregator backs a bulk
// run; a second, parallel one (with Bulk nil) backs a single-cell run.
type Aggregator struct {
	mu sync.Mutex

	Bulk       *BulkTable
	SingleCell *SingleCellTable

	diagnostics map[string]int64
}

// NewBulkAggregator creates an Aggregator for a bulk (no-barcode) run.
func NewBulkAggregator() *Aggregator {
	return &Aggregator{Bulk: NewBulkTable(), diagnostics: make(map[string]int64)}
}

// NewSingleCellAggregator creates an Aggregator for a single-cell run.
func NewSingleCellAggregator() *Aggregator {
	return &Aggregator{SingleCell: NewSingleCellTable(), diagnostics: make(map[string]int64)}
}

// AddBulk credits weight counts to featureID in the bulk table.
func (a *Aggregator) AddBulk(featureID string, weight int64) {
	a.Bulk.Add(featureID, weight)
}

// AddSingleCell credits weight counts to (barcode, featureID).
func (a *Aggregator) AddSingleCell(barcode, featureID string, weight int64) {
	a.SingleCell.Add(barcode, featureID, weight)
}

// Count increments a named diagnostic counter by one.
func (a *Aggregator) Count(name string) {
	a.diagnostics[name]++
}

// Diagnostic returns the current value of a named diagnostic counter.
func (a *Aggregator) Diagnostic(name string) int64 {
	return a.diagnostics[name]
}

// Merge folds other into a, guarded by a's mutex so worker goroutines can
// each hold their own Aggregator and merge it into a shared accumulator at
// the end of their chunk, the way markduplicates.MetricsCollection.Merge
// combines per-shard metrics under a single lock.
func (a *Aggregator) Merge(other *Aggregator) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if other.Bulk != nil {
		if a.Bulk == nil {
			a.Bulk = NewBulkTable()
		}
		a.Bulk.Merge(other.Bulk)
	}
	if other.SingleCell != nil {
		if a.SingleCell == nil {
			a.SingleCell = NewSingleCellTable()
		}
		a.SingleCell.Merge(other.SingleCell)
	}
	for name, v := range other.diagnostics {
		a.diagnostics[name] += v
	}
}
