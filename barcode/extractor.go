package barcode

import (
	"fmt"
	"regexp"

	"github.com/biogo/hts/sam"
)

// SourceKind names where a barcode or UMI is read from, per the
// cell_barcodes / umi configuration tables.
type SourceKind string

const (
	// SourceTag reads a string-valued aux tag (e.g. "CB", "UB").
	SourceTag SourceKind = "tag"
	// SourceReadName extracts a capture group from a regex applied to the
	// read name.
	SourceReadName SourceKind = "read_name"
	// SourceReadSequence slices a fixed range out of the read's sequence.
	SourceReadSequence SourceKind = "read_sequence"
	// SourceNone means no barcode/UMI is present; every read shares one
	// implicit value.
	SourceNone SourceKind = "none"
)

// Segment is one piece of a (possibly composite) barcode or UMI: its
// extraction source and, depending on Kind, the tag/regex/range needed to
// pull it out of a read.
type Segment struct {
	Kind SourceKind

	Tag sam.Tag // SourceTag

	NameRegexp *regexp.Regexp // SourceReadName; must have exactly one capture group.

	SeqStart, SeqEnd int // SourceReadSequence, half-open.
}

// Extractor pulls a composite barcode (or UMI) string out of a read by
// concatenating one or more Segments with Separator between them.
type Extractor struct {
	Segments  []Segment
	Separator string
}

// Extract returns the composite string built from r, or an error if any
// segment's source is absent (missing tag, non-matching regex, or a read
// shorter than the configured sequence range).
func (e *Extractor) Extract(r *sam.Record) (string, error) {
	if len(e.Segments) == 1 && e.Segments[0].Kind == SourceNone {
		return "", nil
	}
	parts := make([]string, len(e.Segments))
	for i, seg := range e.Segments {
		v, err := seg.extract(r)
		if err != nil {
			return "", err
		}
		parts[i] = v
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += e.Separator + p
	}
	return out, nil
}

func (s Segment) extract(r *sam.Record) (string, error) {
	switch s.Kind {
	case SourceTag:
		aux := r.AuxFields.Get(s.Tag)
		if aux == nil {
			return "", fmt.Errorf("barcode: read %q missing tag %s", r.Name, s.Tag)
		}
		v, ok := aux.Value().(string)
		if !ok {
			return "", fmt.Errorf("barcode: read %q tag %s is not a string", r.Name, s.Tag)
		}
		return v, nil
	case SourceReadName:
		m := s.NameRegexp.FindStringSubmatch(r.Name)
		if len(m) < 2 {
			return "", fmt.Errorf("barcode: read name %q does not match %s", r.Name, s.NameRegexp)
		}
		return m[1], nil
	case SourceReadSequence:
		seq := r.Seq.Expand()
		if s.SeqEnd > len(seq) {
			return "", fmt.Errorf("barcode: read %q sequence too short for range [%d, %d)", r.Name, s.SeqStart, s.SeqEnd)
		}
		return string(seq[s.SeqStart:s.SeqEnd]), nil
	case SourceNone:
		return "", nil
	default:
		return "", fmt.Errorf("barcode: unknown source kind %q", s.Kind)
	}
}
