package region

import (
	"testing"
)

func buildCatalogue(t *testing.T, entries ...struct {
	id     string
	ref    string
	strand Strand
	start  int
	end    int
}) *Catalogue {
	t.Helper()
	b := NewBuilder(DuplicateCollapse)
	for _, e := range entries {
		if err := b.Add(e.id, e.id, e.ref, e.strand, e.start, e.end); err != nil {
			t.Fatal(err)
		}
	}
	cat, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func TestIndexOverlapsBasic(t *testing.T) {
	type e = struct {
		id     string
		ref    string
		strand Strand
		start  int
		end    int
	}
	cat := buildCatalogue(t,
		e{"geneA", "chr1", Forward, 100, 200},
		e{"geneB", "chr1", Forward, 300, 400},
		e{"geneC", "chr1", Reverse, 150, 250},
		e{"geneD", "chr2", Forward, 100, 200},
	)
	idx := NewIndex(cat)

	got := namesOf(idx.Overlaps("chr1", []Strand{Forward}, 120, 130))
	assertNames(t, got, "geneA")

	got = namesOf(idx.Overlaps("chr1", []Strand{Forward}, 190, 310))
	assertNames(t, got, "geneA", "geneB")

	got = namesOf(idx.Overlaps("chr1", []Strand{Reverse}, 120, 130))
	assertNames(t, got, "geneC")

	got = namesOf(idx.Overlaps("chr1", []Strand{Forward}, 500, 600))
	assertNames(t, got)

	got = namesOf(idx.Overlaps("chr2", []Strand{Forward}, 120, 130))
	assertNames(t, got, "geneD")
}

func TestIndexOverlapsMultipleStrandsQueried(t *testing.T) {
	type e = struct {
		id     string
		ref    string
		strand Strand
		start  int
		end    int
	}
	cat := buildCatalogue(t,
		e{"fwd", "chr1", Forward, 100, 200},
		e{"rev", "chr1", Reverse, 100, 200},
	)
	idx := NewIndex(cat)
	got := namesOf(idx.Overlaps("chr1", []Strand{Forward, Reverse}, 120, 130))
	assertNames(t, got, "fwd", "rev")
}

func TestIndexOverlapsAdjacentIntervalsDoNotOverlap(t *testing.T) {
	type e = struct {
		id     string
		ref    string
		strand Strand
		start  int
		end    int
	}
	cat := buildCatalogue(t, e{"geneA", "chr1", Forward, 100, 200})
	idx := NewIndex(cat)
	got := namesOf(idx.Overlaps("chr1", []Strand{Forward}, 200, 300))
	assertNames(t, got)
}

func namesOf(rs []*Region) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func assertNames(t *testing.T, got []string, want ...string) {
	t.Helper()
	gotSet := map[string]bool{}
	for _, g := range got {
		gotSet[g] = true
	}
	wantSet := map[string]bool{}
	for _, w := range want {
		wantSet[w] = true
	}
	if len(gotSet) != len(wantSet) {
		t.Errorf("got %v, want %v", got, want)
		return
	}
	for w := range wantSet {
		if !gotSet[w] {
			t.Errorf("got %v, want %v", got, want)
			return
		}
	}
}
