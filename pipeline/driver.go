// Package pipeline drives BAM ingestion end to end: it dispatches shards to
// a bounded worker pool, runs each record through the filter chain,
// barcode/UMI extraction, overlap resolution, and deduplication, and merges
// the resulting per-worker count tables into one run-wide total.
package pipeline

import (
	"context"
	"sync"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/rnaquant/bamsource"
	"github.com/grailbio/rnaquant/barcode"
	"github.com/grailbio/rnaquant/count"
	"github.com/grailbio/rnaquant/dedup"
	"github.com/grailbio/rnaquant/overlap"
	"github.com/grailbio/rnaquant/readmodel"
	"github.com/grailbio/rnaquant/region"
	"github.com/grailbio/rnaquant/umi"
)

// Driver holds every immutable, shared-by-reference object a worker needs
// to process one shard: the filter chain, barcode/UMI extractors, the
// overlap resolver, and the dedup policy. None of it is mutated once a run
// starts, matching the "catalogue, filter chain, and thread pool are
// constructed in a scoped object passed explicitly to workers" discipline.
type Driver struct {
	Provider bamsource.Provider

	Filters   []readmodel.Filter
	Direction readmodel.LibraryDirection

	BarcodeExtractor  *barcode.Extractor // nil for a bulk (no-barcode) run.
	Whitelist         *barcode.Whitelist // nil disables barcode correction.
	BarcodeMaxHamming int

	UMIExtractor  *barcode.Extractor // nil disables UMI extraction entirely.
	UMIGrouping   umi.GroupingMethod
	UMIMaxHamming int

	Resolver *overlap.Resolver

	DedupMode  dedup.Mode
	SCPosition bool // for ModeSingleCell: include position in the dedup key.
	MaxSkip    int

	Parallelism int

	// CorrectForClipping adjusts a read's reported blocks for soft-clipping
	// before overlap resolution (input.correct_reads_for_clipping).
	CorrectForClipping bool
}

func (d *Driver) singleCell() bool { return d.BarcodeExtractor != nil }

func (d *Driver) newAggregator() *count.Aggregator {
	if d.singleCell() {
		return count.NewSingleCellAggregator()
	}
	return count.NewBulkAggregator()
}

// Run processes every shard the provider offers, merging per-worker results
// into the returned Aggregator. A fatal error from any worker is recorded
// and returned after every in-flight worker finishes its current shard;
// other workers keep draining the shard channel so startup cost isn't
// wasted, but their results are still merged since only per-read anomalies
// (never silently dropped here) distinguish a fatal condition.
func (d *Driver) Run(ctx context.Context) (*count.Aggregator, error) {
	shards, err := d.Provider.Shards()
	if err != nil {
		return nil, err
	}

	total := d.newAggregator()
	e := errors.Once{}
	var wg sync.WaitGroup

	shardCh := make(chan bamsource.Shard, len(shards))
	for _, s := range shards {
		shardCh <- s
	}
	close(shardCh)

	parallelism := d.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}
	for wi := 0; wi < parallelism; wi++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for shard := range shardCh {
				workerAgg := d.newAggregator()
				if err := d.processShard(shard, workerAgg); err != nil {
					log.Error.Printf("pipeline: worker %d shard %s: %v", worker, shard.RefName, err)
					e.Set(err)
					continue
				}
				total.Merge(workerAgg)
			}
		}(wi)
	}
	wg.Wait()
	return total, e.Err()
}

// processShard reads every record of shard in order, routes it through the
// counting stages, and accumulates results into agg.
func (d *Driver) processShard(shard bamsource.Shard, agg *count.Aggregator) error {
	it := d.Provider.NewIterator(shard)
	defer it.Close()

	window := dedup.NewWindow(d.MaxSkip)
	umiWindow := dedup.NewUMIWindow(d.MaxSkip)

	for it.Scan() {
		r := it.Record()
		if r.Ref == nil {
			agg.Count(count.CounterFiltered)
			continue
		}
		if _, kept := readmodel.Keep(d.Filters, r); !kept {
			agg.Count(count.CounterFiltered)
			continue
		}

		blocks := readmodel.CorrectedBlocks(r, d.CorrectForClipping)
		if len(blocks) == 0 {
			agg.Count(count.CounterFiltered)
			continue
		}
		anchor := readmodel.UnclippedFivePrime(r)
		strand := readmodel.EffectiveStrand(r, d.Direction)
		queryStrand := strand
		if d.Direction == readmodel.DirectionIgnore || d.Direction == readmodel.DirectionUnstranded {
			queryStrand = region.Unstranded
		}

		features, outcome := d.Resolver.Resolve(shard.RefName, blocks, queryStrand)
		switch outcome {
		case overlap.OutcomeNoFeature:
			agg.Count(count.CounterUnassigned)
			continue
		case overlap.OutcomeAmbiguous:
			agg.Count(count.CounterAmbiguous)
			continue
		}

		barcodeStr, ok := d.extractBarcode(r, agg)
		if !ok {
			continue
		}
		umiStr, ok := d.extractUMI(r, agg)
		if !ok {
			continue
		}

		d.credit(agg, window, umiWindow, shard.RefName, r.Name, anchor, strand, barcodeStr, umiStr, features)
		d.flushDue(agg, umiWindow, anchor)
	}
	if err := it.Err(); err != nil {
		return err
	}
	d.flushRemaining(agg, umiWindow)
	return nil
}

// extractBarcode returns (barcode, true) on success, ("", true) if no
// barcode extractor is configured (a bulk run), or ("", false) after
// tallying a diagnostic counter if extraction or correction failed.
func (d *Driver) extractBarcode(r *sam.Record, agg *count.Aggregator) (string, bool) {
	if d.BarcodeExtractor == nil {
		return "", true
	}
	v, err := d.BarcodeExtractor.Extract(r)
	if err != nil {
		agg.Count(count.CounterNoBarcode)
		return "", false
	}
	if d.Whitelist != nil && d.Whitelist.Enabled() {
		corrected, ok := d.Whitelist.Correct(v, d.BarcodeMaxHamming)
		if !ok {
			agg.Count(count.CounterNoBarcode)
			return "", false
		}
		v = corrected
	}
	return v, true
}

func (d *Driver) extractUMI(r *sam.Record, agg *count.Aggregator) (string, bool) {
	if d.UMIExtractor == nil {
		return "", true
	}
	v, err := d.UMIExtractor.Extract(r)
	if err != nil {
		agg.Count(count.CounterNoUMI)
		return "", false
	}
	return v, true
}

// credit routes one annotated read's feature assignments into the right
// counting mechanism for the configured dedup mode.
func (d *Driver) credit(agg *count.Aggregator, window *dedup.Window, umiWindow *dedup.UMIWindow,
	ref, readName string, anchor int, strand region.Strand, barcodeStr, umiStr string, features []*region.Region) {
	switch d.DedupMode {
	case dedup.ModeNone:
		for _, f := range features {
			d.addOne(agg, barcodeStr, f.AggregationID, 1)
		}
	case dedup.ModePosition:
		for _, f := range features {
			key := dedup.NewKey(dedup.ModePosition, readName, ref, anchor, strand, f.AggregationID, barcodeStr, "")
			if window.Observe(key, anchor) {
				d.addOne(agg, barcodeStr, f.AggregationID, 1)
			}
		}
		window.Advance(anchor)
	case dedup.ModeSingleCell, dedup.ModeBulkUMI:
		for _, f := range features {
			baseAnchor, baseStrand := anchor, strand
			if d.DedupMode == dedup.ModeSingleCell && !d.SCPosition {
				baseAnchor, baseStrand = 0, region.Unstranded
			}
			baseKey := dedup.NewKey(d.DedupMode, "", ref, baseAnchor, baseStrand, f.AggregationID, barcodeStr, "")
			umiWindow.Observe(baseKey, anchor, umiStr)
		}
	}
}

func (d *Driver) addOne(agg *count.Aggregator, barcodeStr, featureID string, weight int64) {
	if d.singleCell() {
		agg.AddSingleCell(barcodeStr, featureID, weight)
		return
	}
	agg.AddBulk(featureID, weight)
}

func (d *Driver) flushDue(agg *count.Aggregator, w *dedup.UMIWindow, currentPos int) {
	for _, bucket := range w.Flush(currentPos) {
		d.creditBucket(agg, bucket)
	}
}

func (d *Driver) flushRemaining(agg *count.Aggregator, w *dedup.UMIWindow) {
	for _, bucket := range w.FlushAll() {
		d.creditBucket(agg, bucket)
	}
}

func (d *Driver) creditBucket(agg *count.Aggregator, bucket dedup.FlushedBucket) {
	groups := umi.GroupUMIs(bucket.UMICounts, d.UMIGrouping, d.UMIMaxHamming)
	d.addOne(agg, bucket.Key.Barcode, bucket.Key.Feature, int64(len(groups)))
}
