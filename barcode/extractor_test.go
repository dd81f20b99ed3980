package barcode

import (
	"regexp"
	"testing"

	"github.com/biogo/hts/sam"
)

func mustAux(t *testing.T, name string, val interface{}) sam.Aux {
	t.Helper()
	aux, err := sam.NewAux(sam.NewTag(name), val)
	if err != nil {
		t.Fatal(err)
	}
	return aux
}

func TestExtractorSourceNone(t *testing.T) {
	e := &Extractor{Segments: []Segment{{Kind: SourceNone}}}
	got, err := e.Extract(&sam.Record{Name: "r1"})
	if err != nil || got != "" {
		t.Errorf("got (%q, %v), want (\"\", nil)", got, err)
	}
}

func TestExtractorSourceTag(t *testing.T) {
	aux := mustAux(t, "CB", "ACGTACGT-1")
	r := &sam.Record{Name: "r1", AuxFields: sam.AuxFields{aux}}
	e := &Extractor{Segments: []Segment{{Kind: SourceTag, Tag: sam.NewTag("CB")}}}
	got, err := e.Extract(r)
	if err != nil || got != "ACGTACGT-1" {
		t.Errorf("got (%q, %v), want (%q, nil)", got, err, "ACGTACGT-1")
	}
}

func TestExtractorSourceTagMissing(t *testing.T) {
	r := &sam.Record{Name: "r1"}
	e := &Extractor{Segments: []Segment{{Kind: SourceTag, Tag: sam.NewTag("CB")}}}
	if _, err := e.Extract(r); err == nil {
		t.Error("expected error for missing tag")
	}
}

func TestExtractorSourceReadName(t *testing.T) {
	r := &sam.Record{Name: "A01:1:HJ:1:1101:1000:2000_CELLBC123_UMI456"}
	e := &Extractor{Segments: []Segment{{
		Kind:       SourceReadName,
		NameRegexp: regexp.MustCompile(`_([A-Z0-9]+)_[A-Z0-9]+$`),
	}}}
	got, err := e.Extract(r)
	if err != nil || got != "CELLBC123" {
		t.Errorf("got (%q, %v), want (%q, nil)", got, err, "CELLBC123")
	}
}

func TestExtractorSourceReadSequence(t *testing.T) {
	r := &sam.Record{Name: "r1", Seq: sam.NewSeq([]byte("ACGTACGTAAAA"))}
	e := &Extractor{Segments: []Segment{{Kind: SourceReadSequence, SeqStart: 0, SeqEnd: 8}}}
	got, err := e.Extract(r)
	if err != nil || got != "ACGTACGT" {
		t.Errorf("got (%q, %v), want (%q, nil)", got, err, "ACGTACGT")
	}
}

func TestExtractorCompositeBarcode(t *testing.T) {
	r := &sam.Record{Name: "r1", Seq: sam.NewSeq([]byte("ACGTACGTTTTTGGGG"))}
	e := &Extractor{
		Separator: "-",
		Segments: []Segment{
			{Kind: SourceReadSequence, SeqStart: 0, SeqEnd: 8},
			{Kind: SourceReadSequence, SeqStart: 8, SeqEnd: 12},
		},
	}
	got, err := e.Extract(r)
	if err != nil || got != "ACGTACGT-TTTT" {
		t.Errorf("got (%q, %v), want (%q, nil)", got, err, "ACGTACGT-TTTT")
	}
}

func TestExtractorSourceReadSequenceTooShort(t *testing.T) {
	r := &sam.Record{Name: "r1", Seq: sam.NewSeq([]byte("ACGT"))}
	e := &Extractor{Segments: []Segment{{Kind: SourceReadSequence, SeqStart: 0, SeqEnd: 8}}}
	if _, err := e.Extract(r); err == nil {
		t.Error("expected error for too-short sequence")
	}
}
