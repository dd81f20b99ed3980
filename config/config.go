// Package config parses and validates the TOML run configuration that
// drives every other rnaquant package: region source, barcode/UMI
// extraction, filter chain, overlap strategy, dedup policy, and output
// paths.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/grailbio/rnaquant/rnaerrors"
)

// Input describes where alignments and region annotations come from.
type Input struct {
	BAM                     string `toml:"bam"`
	Index                   string `toml:"index"`
	RegionSource            Source `toml:"source"`
	FeatureType             string `toml:"feature_type"`
	IDAttribute             string `toml:"id_attribute"`
	AggregationIDAttribute  string `toml:"aggregation_id_attribute"`
	DuplicateMode           string `toml:"duplicate_handling"`
	CorrectReadsForClipping bool   `toml:"correct_reads_for_clipping"`
}

// Source is the nested [input.source] table naming the GTF/GFF path.
type Source struct {
	Path string `toml:"path"`
}

// CellBarcodes is the [cell_barcodes] table: how (and whether) a cell
// barcode is extracted per read, plus optional whitelist correction.
type CellBarcodes struct {
	Enabled        bool   `toml:"enabled"`
	SourceKind     string `toml:"source"`
	Tag            string `toml:"tag"`
	NameRegexp     string `toml:"read_name_regexp"`
	SeqStart       int    `toml:"seq_start"`
	SeqEnd         int    `toml:"seq_end"`
	WhitelistPath  string `toml:"whitelist"`
	MaxHammingDist int    `toml:"max_hamming_distance"`
}

// UMI is the [umi] table: how the UMI segment is extracted and grouped.
type UMI struct {
	Enabled    bool   `toml:"enabled"`
	SourceKind string `toml:"source"`
	Tag        string `toml:"tag"`
	NameRegexp string `toml:"read_name_regexp"`
	SeqStart   int    `toml:"seq_start"`
	SeqEnd     int    `toml:"seq_end"`
	Grouping   string `toml:"grouping"`
	MaxHamming int    `toml:"max_hamming_distance"`
}

// Filter is one [[filter]] table entry in the ordered filter chain.
type Filter struct {
	Kind          string `toml:"kind"`
	Action        string `toml:"action"`
	MapQThreshold int    `toml:"mapq_threshold"`
	Reference     string `toml:"reference"`
}

// Strategy is the [strategy] table: direction policy, overlap mode, and
// multi-region disposition.
type Strategy struct {
	Direction   string `toml:"direction"`
	Overlap     string `toml:"overlap"`
	MultiRegion string `toml:"multi_region"`
}

// Dedup is the [dedup] table.
type Dedup struct {
	Mode       string `toml:"mode"`
	SCPosition bool   `toml:"sc_position"`
	MaxSkip    int    `toml:"max_skip"`
}

// Output is the [output] table.
type Output struct {
	CountsPath   string `toml:"counts_path"`
	MatrixDir    string `toml:"matrix_dir"`
	AnnotatedBAM string `toml:"annotated_bam"`
	Parallelism  int    `toml:"parallelism"`
}

// Config is the top-level run configuration, decoded directly from a TOML
// document.
type Config struct {
	Input        Input        `toml:"input"`
	CellBarcodes CellBarcodes `toml:"cell_barcodes"`
	UMI          UMI          `toml:"umi"`
	Filters      []Filter     `toml:"filter"`
	Strategy     Strategy     `toml:"strategy"`
	Dedup        Dedup        `toml:"dedup"`
	Output       Output       `toml:"output"`
}

// Load reads and parses the TOML configuration at path, then validates it.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, rnaerrors.E(rnaerrors.Configuration, "parsing "+path, err)
	}
	if err := cfg.applyDefaults().Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() *Config {
	if c.Dedup.Mode == "" {
		c.Dedup.Mode = "none"
	}
	if c.Dedup.MaxSkip == 0 {
		c.Dedup.MaxSkip = 500
	}
	if c.Strategy.Direction == "" {
		c.Strategy.Direction = "unstranded"
	}
	if c.Strategy.Overlap == "" {
		c.Strategy.Overlap = "union"
	}
	if c.Strategy.MultiRegion == "" {
		c.Strategy.MultiRegion = "count_both"
	}
	if c.Output.Parallelism == 0 {
		c.Output.Parallelism = 1
	}
	if c.Input.IDAttribute == "" {
		c.Input.IDAttribute = "gene_id"
	}
	if c.Input.AggregationIDAttribute == "" {
		c.Input.AggregationIDAttribute = c.Input.IDAttribute
	}
	if c.Input.DuplicateMode == "" {
		c.Input.DuplicateMode = "collapse"
	}
	return c
}

// Validate rejects conflicting or nonsensical option combinations that
// would otherwise surface as confusing errors deep in the pipeline.
func (c *Config) Validate() error {
	if c.Input.BAM == "" {
		return rnaerrors.E(rnaerrors.Configuration, "input.bam is required")
	}
	if c.Input.RegionSource.Path == "" {
		return rnaerrors.E(rnaerrors.Configuration, "input.source.path is required")
	}
	if c.Input.FeatureType == "" {
		return rnaerrors.E(rnaerrors.Configuration, "input.feature_type is required")
	}

	switch c.Dedup.Mode {
	case "none", "position", "sc", "bulk_umi":
	default:
		return rnaerrors.E(rnaerrors.Configuration, "unknown dedup.mode "+c.Dedup.Mode)
	}
	if c.Dedup.Mode == "sc" && !c.CellBarcodes.Enabled {
		return rnaerrors.E(rnaerrors.Configuration, "dedup.mode=sc requires cell_barcodes.enabled=true")
	}
	if (c.Dedup.Mode == "sc" || c.Dedup.Mode == "bulk_umi") && !c.UMI.Enabled {
		return rnaerrors.E(rnaerrors.Configuration, "dedup.mode="+c.Dedup.Mode+" requires umi.enabled=true")
	}

	switch c.Strategy.Direction {
	case "forward", "reverse", "ignore", "unstranded":
	default:
		return rnaerrors.E(rnaerrors.Configuration, "unknown strategy.direction "+c.Strategy.Direction)
	}
	switch c.Strategy.Overlap {
	case "union", "intersection_strict", "intersection_non_empty", "unstranded_featurecounts", "stranded_featurecounts":
	default:
		return rnaerrors.E(rnaerrors.Configuration, "unknown strategy.overlap "+c.Strategy.Overlap)
	}
	switch c.Strategy.MultiRegion {
	case "count_both", "count_none", "count_first":
	default:
		return rnaerrors.E(rnaerrors.Configuration, "unknown strategy.multi_region "+c.Strategy.MultiRegion)
	}

	if c.CellBarcodes.Enabled && c.Output.MatrixDir == "" {
		return rnaerrors.E(rnaerrors.Configuration, "cell_barcodes.enabled=true requires output.matrix_dir")
	}
	if !c.CellBarcodes.Enabled && c.Output.CountsPath == "" {
		return rnaerrors.E(rnaerrors.Configuration, "output.counts_path is required for a bulk run")
	}
	return nil
}
