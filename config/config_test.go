package config

import "testing"

func validBulkConfig() *Config {
	cfg := &Config{
		Input: Input{
			BAM:         "in.bam",
			FeatureType: "exon",
			RegionSource: Source{Path: "annotation.gtf"},
		},
		Output: Output{CountsPath: "counts.tsv"},
	}
	return cfg.applyDefaults()
}

func TestValidateAcceptsMinimalBulkConfig(t *testing.T) {
	cfg := validBulkConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsMissingBAM(t *testing.T) {
	cfg := validBulkConfig()
	cfg.Input.BAM = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for missing input.bam")
	}
}

func TestValidateRejectsUnknownDedupMode(t *testing.T) {
	cfg := validBulkConfig()
	cfg.Dedup.Mode = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an unknown dedup.mode")
	}
}

func TestValidateRejectsSCDedupWithoutBarcodes(t *testing.T) {
	cfg := validBulkConfig()
	cfg.Dedup.Mode = "sc"
	cfg.UMI.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for dedup.mode=sc without cell_barcodes.enabled")
	}
}

func TestValidateRejectsSCDedupWithoutUMI(t *testing.T) {
	cfg := validBulkConfig()
	cfg.Dedup.Mode = "sc"
	cfg.CellBarcodes.Enabled = true
	cfg.Output.MatrixDir = "matrix"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for dedup.mode=sc without umi.enabled")
	}
}

func TestValidateAcceptsSingleCellConfig(t *testing.T) {
	cfg := validBulkConfig()
	cfg.Dedup.Mode = "sc"
	cfg.CellBarcodes.Enabled = true
	cfg.UMI.Enabled = true
	cfg.Output.MatrixDir = "matrix"
	cfg.Output.CountsPath = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnknownOverlapMode(t *testing.T) {
	cfg := validBulkConfig()
	cfg.Strategy.Overlap = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an unknown strategy.overlap")
	}
}

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	cfg := (&Config{}).applyDefaults()
	if cfg.Dedup.Mode != "none" {
		t.Errorf("Dedup.Mode default = %q, want none", cfg.Dedup.Mode)
	}
	if cfg.Dedup.MaxSkip != 500 {
		t.Errorf("Dedup.MaxSkip default = %d, want 500", cfg.Dedup.MaxSkip)
	}
	if cfg.Strategy.Overlap != "union" {
		t.Errorf("Strategy.Overlap default = %q, want union", cfg.Strategy.Overlap)
	}
	if cfg.Output.Parallelism != 1 {
		t.Errorf("Output.Parallelism default = %d, want 1", cfg.Output.Parallelism)
	}
	if cfg.Input.IDAttribute != "gene_id" {
		t.Errorf("Input.IDAttribute default = %q, want gene_id", cfg.Input.IDAttribute)
	}
	if cfg.Input.AggregationIDAttribute != cfg.Input.IDAttribute {
		t.Errorf("Input.AggregationIDAttribute default = %q, want to fall back to IDAttribute %q",
			cfg.Input.AggregationIDAttribute, cfg.Input.IDAttribute)
	}
}

func TestApplyDefaultsKeepsExplicitAggregationIDAttribute(t *testing.T) {
	cfg := (&Config{Input: Input{IDAttribute: "exon_id", AggregationIDAttribute: "gene_id"}}).applyDefaults()
	if cfg.Input.AggregationIDAttribute != "gene_id" {
		t.Errorf("Input.AggregationIDAttribute = %q, want gene_id (explicit value preserved)", cfg.Input.AggregationIDAttribute)
	}
}
