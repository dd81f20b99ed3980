package region

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeAnnotation(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "annotation.gtf")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseAttributesGTFStyle(t *testing.T) {
	attrs := map[string]string{}
	parseAttributes(attrs, `gene_id "ENSG1"; gene_name "FOO";`)
	if attrs["gene_id"] != "ENSG1" || attrs["gene_name"] != "FOO" {
		t.Errorf("got %v", attrs)
	}
}

func TestParseAttributesGFF3Style(t *testing.T) {
	attrs := map[string]string{}
	parseAttributes(attrs, "ID=exon1;Parent=gene1")
	if attrs["ID"] != "exon1" || attrs["Parent"] != "gene1" {
		t.Errorf("got %v", attrs)
	}
}

func TestBuildCatalogueFromAnnotationCollapsesExons(t *testing.T) {
	path := writeAnnotation(t, `chr1	test	exon	100	200	.	+	.	gene_id "G1";
chr1	test	exon	300	400	.	+	.	gene_id "G1";
chr1	test	CDS	100	200	.	+	.	gene_id "G1";
`)
	cat, err := BuildCatalogueFromAnnotation(context.Background(), path, "exon", "gene_id", "gene_id", DuplicateCollapse)
	if err != nil {
		t.Fatal(err)
	}
	r, ok := cat.Get("G1")
	if !ok {
		t.Fatal("G1 not found")
	}
	if len(r.Intervals) != 2 {
		t.Errorf("got %d intervals, want 2 (CDS row should have been skipped)", len(r.Intervals))
	}
}

func TestBuildCatalogueFromAnnotationMissingAttributeErrors(t *testing.T) {
	path := writeAnnotation(t, "chr1\ttest\texon\t100\t200\t.\t+\t.\tgene_name \"FOO\";\n")
	if _, err := BuildCatalogueFromAnnotation(context.Background(), path, "exon", "gene_id", "gene_id", DuplicateCollapse); err == nil {
		t.Error("expected an error for a record missing gene_id")
	}
}

func TestBuildCatalogueFromAnnotationMissingAggregationAttributeErrors(t *testing.T) {
	path := writeAnnotation(t, "chr1\ttest\texon\t100\t200\t.\t+\t.\texon_id \"E1\";\n")
	if _, err := BuildCatalogueFromAnnotation(context.Background(), path, "exon", "exon_id", "gene_id", DuplicateCollapse); err == nil {
		t.Error("expected an error for a record missing the aggregation id attribute")
	}
}

func TestBuildCatalogueFromAnnotationSeparateAggregationAttributeRollsUpExons(t *testing.T) {
	path := writeAnnotation(t, `chr1	test	exon	100	200	.	+	.	exon_id "E1"; gene_id "G1";
chr1	test	exon	300	400	.	+	.	exon_id "E2"; gene_id "G1";
`)
	cat, err := BuildCatalogueFromAnnotation(context.Background(), path, "exon", "exon_id", "gene_id", DuplicateCollapse)
	if err != nil {
		t.Fatal(err)
	}
	if cat.Len() != 2 {
		t.Fatalf("got %d regions, want 2 distinct exon ids", cat.Len())
	}
	want := []string{"G1"}
	if got := cat.AggregationIDs(); len(got) != 1 || got[0] != want[0] {
		t.Errorf("AggregationIDs() = %v, want %v", got, want)
	}
}
