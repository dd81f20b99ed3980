/*Package rnaquant quantifies aligned sequencing reads against a catalogue
  of genomic regions, producing either a bulk feature-by-count table or a
  single-cell feature-by-barcode count matrix.

  Pipeline stages:

  The region catalogue (package region) is built once at startup from a
  GTF/GFF annotation or an explicit BED-like interval file, grouping
  per-exon rows into gene- (or other feature-) level regions and indexing
  them by reference and strand for overlap queries.

  A bamsource.Provider opens the input BAM and splits it into one shard
  per reference plus a trailing unmapped shard, using the BAM index to
  seek directly to each reference's reads rather than scanning the whole
  file. The pipeline package dispatches these shards across a bounded
  worker pool, mirroring the shard-channel-plus-waitgroup pattern used
  elsewhere in this module's ancestry for parallel BAM processing.

  Each worker runs every record through, in order:

    1. The configured filter chain (package readmodel): drop unmapped,
       secondary, supplementary, or low-mapping-quality reads, or those
       outside a configured reference, before spending any more work on
       them.
    2. Cigar-aware block extraction and unclipped 5' anchor computation,
       and resolution of the read's effective strand against the
       library's direction policy (forward, reverse, unstranded, or
       ignore).
    3. Overlap resolution (package overlap) against the region catalogue,
       using one of several HTSeq/featureCounts-compatible strategies
       (union, intersection-strict, intersection-nonempty, or either of
       the featureCounts variants), plus a multi-region disposition for
       reads assigned to more than one feature.
    4. Barcode and UMI extraction (package barcode), with optional
       whitelist-based barcode correction, for single-cell runs.
    5. Deduplication (package dedup): a position-only duplicate window
       for bulk runs without UMIs, or a count-accumulating window that
       buckets UMI observations per (reference, anchor, strand, feature,
       barcode) and groups them at eviction time (package umi) for runs
       with UMI-aware dedup.

  Counts accumulate into a per-worker count.Aggregator; aggregators merge
  into one run-wide total once every shard completes. The result is
  emitted as a bulk counts.tsv or a Matrix Market triplet matrix
  (matrix.mtx, features.tsv, barcodes.tsv), depending on whether cell
  barcodes are configured.

  Configuration (package config) is a single TOML document covering
  input sources, the filter chain, barcode/UMI extraction, overlap and
  direction strategy, dedup policy, and output paths; see cmd/rnaquant
  for the command-line entry point.
*/
package rnaquant
