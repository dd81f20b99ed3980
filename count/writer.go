package count

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

// WriteBulkCounts writes a counts.tsv-style table: one row per feature in
// featureIDs (catalogue order, including features with zero counts),
// followed by one row per non-zero diagnostic counter.
func WriteBulkCounts(ctx context.Context, path string, featureIDs []string, agg *Aggregator) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)

	w := tsv.NewWriter(out.Writer(ctx))
	w.WriteString("feature_id")
	w.WriteString("count")
	if err := w.EndLine(); err != nil {
		return err
	}
	for _, id := range featureIDs {
		w.WriteString(id)
		w.WriteString(strconv.FormatInt(agg.Bulk.Get(id), 10))
		if err := w.EndLine(); err != nil {
			return err
		}
	}
	for _, name := range sortedDiagnosticNames(agg) {
		w.WriteString(name)
		w.WriteString(strconv.FormatInt(agg.Diagnostic(name), 10))
		if err := w.EndLine(); err != nil {
			return err
		}
	}
	return nil
}

// WriteMatrixMarket emits a single-cell count matrix as a Matrix Market
// triplet (matrix.mtx, features.tsv, barcodes.tsv) under dir, in the layout
// Cell Ranger and STARsolo both use: features are rows, barcodes are
// columns, and both id lists are written in the same order used to index
// the matrix. featureIDs and barcodes should both already be in their
// final, caller-chosen output order (catalogue order for features; sorted
// or first-seen order for barcodes).
func WriteMatrixMarket(ctx context.Context, dir string, featureIDs, barcodes []string, table *SingleCellTable) (err error) {
	featureIndex := make(map[string]int, len(featureIDs))
	for i, id := range featureIDs {
		featureIndex[id] = i + 1 // 1-based, per the Matrix Market format.
	}
	barcodeIndex := make(map[string]int, len(barcodes))
	for i, b := range barcodes {
		barcodeIndex[b] = i + 1
	}

	if err := writeLines(ctx, dir+"/features.tsv", featureIDs); err != nil {
		return err
	}
	if err := writeLines(ctx, dir+"/barcodes.tsv", barcodes); err != nil {
		return err
	}

	type triplet struct{ row, col int; count int64 }
	var triplets []triplet
	for barcode, row := range table.counts {
		bi, ok := barcodeIndex[barcode]
		if !ok {
			continue
		}
		for featureID, c := range row {
			if c == 0 {
				continue
			}
			fi, ok := featureIndex[featureID]
			if !ok {
				continue
			}
			triplets = append(triplets, triplet{fi, bi, c})
		}
	}
	sort.Slice(triplets, func(i, j int) bool {
		if triplets[i].row != triplets[j].row {
			return triplets[i].row < triplets[j].row
		}
		return triplets[i].col < triplets[j].col
	})

	out, err := file.Create(ctx, dir+"/matrix.mtx")
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)

	w := bufio.NewWriter(out.Writer(ctx))
	fmt.Fprintln(w, "%%MatrixMarket matrix coordinate integer general")
	fmt.Fprintf(w, "%d %d %d\n", len(featureIDs), len(barcodes), len(triplets))
	for _, t := range triplets {
		fmt.Fprintf(w, "%d %d %d\n", t.row, t.col, t.count)
	}
	return w.Flush()
}

func writeLines(ctx context.Context, path string, lines []string) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)

	w := bufio.NewWriter(out.Writer(ctx))
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return w.Flush()
}

func sortedDiagnosticNames(agg *Aggregator) []string {
	names := make([]string, 0, len(agg.diagnostics))
	for name := range agg.diagnostics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
