package main

/*
  rnaquant quantifies aligned sequencing reads in a BAM file against a set
  of genomic regions, producing either a bulk counts.tsv or a single-cell
  Matrix Market count matrix. See github.com/grailbio/rnaquant/doc.go for
  an overview of the pipeline stages.
*/

import (
	"flag"
	"sort"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/rnaquant/config"
	"github.com/grailbio/rnaquant/count"
	"github.com/grailbio/rnaquant/pipeline"
)

var configPath = flag.String("config", "", "Path to the TOML run configuration")

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if *configPath == "" {
		log.Fatalf("-config is required")
	}
	if flag.NArg() > 0 {
		log.Fatalf("unparsed flags: %v", flag.Args())
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	ctx := vcontext.Background()
	driver, cat, err := pipeline.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("building pipeline: %v", err)
	}

	log.Printf("rnaquant: %d regions loaded, running against %s", cat.Len(), cfg.Input.BAM)
	agg, err := driver.Run(ctx)
	if err != nil {
		log.Fatalf("running pipeline: %v", err)
	}
	logDiagnostics(agg)

	if cfg.CellBarcodes.Enabled {
		barcodes := agg.SingleCell.Barcodes()
		sort.Strings(barcodes)
		if err := count.WriteMatrixMarket(ctx, cfg.Output.MatrixDir, cat.AggregationIDs(), barcodes, agg.SingleCell); err != nil {
			log.Fatalf("writing matrix: %v", err)
		}
		log.Printf("rnaquant: wrote matrix for %d barcodes to %s", len(barcodes), cfg.Output.MatrixDir)
		return
	}

	if err := count.WriteBulkCounts(ctx, cfg.Output.CountsPath, cat.AggregationIDs(), agg); err != nil {
		log.Fatalf("writing counts: %v", err)
	}
	log.Printf("rnaquant: wrote counts to %s", cfg.Output.CountsPath)
}

func logDiagnostics(agg *count.Aggregator) {
	for _, name := range []string{count.CounterFiltered, count.CounterUnassigned, count.CounterAmbiguous,
		count.CounterNoBarcode, count.CounterNoUMI} {
		if v := agg.Diagnostic(name); v > 0 {
			log.Printf("rnaquant: %s = %d", name, v)
		}
	}
}
