package region

import (
	"fmt"
	"sort"

	"github.com/grailbio/rnaquant/rnaerrors"
)

// Strand is the strand a region lives on, or Unstranded for features that
// should be matched regardless of read orientation.
type Strand int8

const (
	Unstranded Strand = iota
	Forward
	Reverse
)

// ParseStrand interprets the single-character strand column found in
// GTF/GFF/BED sources ('+', '-', or '.').
func ParseStrand(s string) Strand {
	switch s {
	case "+":
		return Forward
	case "-":
		return Reverse
	default:
		return Unstranded
	}
}

func (s Strand) String() string {
	switch s {
	case Forward:
		return "+"
	case Reverse:
		return "-"
	default:
		return "."
	}
}

// Interval is a single exon-like genomic span belonging to a Region.
type Interval struct {
	Start, End int // 0-based, half-open, like BAM reference coordinates.
}

// Region is one entry of the count matrix: a named feature, potentially
// assembled from several disjoint genomic intervals (e.g. a gene's exons),
// all on the same reference and strand.
//
// ID is the region's catalogue identity: it is unique within a Catalogue
// (after duplicate_handling resolves any collisions) and is what the index
// and Get key on. AggregationID is the identifier reads are credited under;
// it is usually equal to ID, but a source can configure a coarser
// aggregation id (e.g. a gene id) so that several distinct per-exon ID
// regions roll their counts up into one output row.
type Region struct {
	ID            string
	AggregationID string
	Ref           string
	Strand        Strand
	Intervals     []Interval // kept sorted and merged; no two intervals overlap or abut.

	// notIndexed marks a duplicate_handling=rename occurrence other than the
	// first: it is a real catalogue row (so it appears in output with a zero
	// count) but NewIndex omits it, so overlapping reads can only ever be
	// credited to the first occurrence.
	notIndexed bool
}

// DuplicateHandling controls what happens when the same feature id is
// encountered a second time while building a Catalogue.
type DuplicateHandling int

const (
	// DuplicateCollapse merges the new intervals into the existing region
	// (gene-level quantification from per-exon GTF rows uses this).
	DuplicateCollapse DuplicateHandling = iota
	// DuplicateRename keeps every occurrence, suffixing each id with its
	// ordinal ("-1", "-2", ...); only the first occurrence is indexed, so
	// the later ones keep a zero count.
	DuplicateRename
	// DuplicateDrop silently discards all but the first occurrence.
	DuplicateDrop
	// DuplicateError fails catalogue construction on any repeat.
	DuplicateError
)

// ParseDuplicateHandling interprets the input.duplicate_handling
// configuration string; an unrecognized value defaults to
// DuplicateCollapse, the most permissive policy.
func ParseDuplicateHandling(s string) DuplicateHandling {
	switch s {
	case "rename":
		return DuplicateRename
	case "drop":
		return DuplicateDrop
	case "error":
		return DuplicateError
	default:
		return DuplicateCollapse
	}
}

// Catalogue is the immutable set of regions reads are quantified against.
// The per-(ref,strand) index used to answer overlap queries is built from it
// separately by NewIndex.
type Catalogue struct {
	byID  map[string]*Region
	order []string // insertion order, becomes column/row order in output.
}

// Builder accumulates regions from one or more sources (GTF/GFF and/or
// explicit-interval files) before Build() merges intervals and resolves
// duplicate ids.
type Builder struct {
	duplicates DuplicateHandling
	regions    map[string][]*Region // id -> occurrences in the order seen.
	order      []string             // first-seen order of each id.
}

// NewBuilder creates a Builder that applies the given duplicate-id policy.
func NewBuilder(duplicates DuplicateHandling) *Builder {
	return &Builder{
		duplicates: duplicates,
		regions:    map[string][]*Region{},
	}
}

// Add records one occurrence of a feature: a single interval on a single
// reference and strand, tagged with its feature id and the aggregation id
// it rolls counts up under (equal to id for sources with no separate
// aggregation column). GTF callers call this once per exon row;
// explicit-interval callers call it once per input line.
func (b *Builder) Add(id, aggregationID, ref string, strand Strand, start, end int) error {
	if start >= end {
		return rnaerrors.E(rnaerrors.Catalogue, fmt.Sprintf("region %q: empty or inverted interval [%d, %d)", id, start, end))
	}
	occs, seen := b.regions[id]
	if !seen {
		b.order = append(b.order, id)
	} else if occs[0].Ref != ref {
		return rnaerrors.NewCatalogueError(rnaerrors.MultiReferenceFeature,
			fmt.Sprintf("%q spans %q and %q", id, occs[0].Ref, ref))
	}
	b.regions[id] = append(occs, &Region{
		ID:            id,
		AggregationID: aggregationID,
		Ref:           ref,
		Strand:        strand,
		Intervals:     []Interval{{Start: start, End: end}},
	})
	return nil
}

// Build resolves duplicates per the configured policy, merges each region's
// intervals, and returns the finished Catalogue.
func (b *Builder) Build() (*Catalogue, error) {
	cat := &Catalogue{byID: map[string]*Region{}}
	for _, id := range b.order {
		occs := b.regions[id]
		switch {
		case len(occs) == 1 || b.duplicates == DuplicateCollapse:
			merged := mergeOccurrences(id, occs)
			cat.byID[id] = merged
			cat.order = append(cat.order, id)
		case b.duplicates == DuplicateDrop:
			cat.byID[id] = mergeOccurrences(id, occs[:1])
			cat.order = append(cat.order, id)
		case b.duplicates == DuplicateRename:
			for i, occ := range occs {
				renamedID := fmt.Sprintf("%s-%d", id, i+1)
				r := mergeOccurrences(renamedID, []*Region{occ})
				if r.AggregationID == id {
					// Each renamed occurrence gets its own output row.
					r.AggregationID = renamedID
				}
				if i > 0 {
					// featureCounts compatibility: later occurrences are real
					// catalogue rows (they appear in output with a zero count)
					// but the index only ever surfaces the first occurrence, so
					// an overlapping read can only ever be credited to it.
					r.notIndexed = true
				}
				cat.byID[renamedID] = r
				cat.order = append(cat.order, renamedID)
			}
		case b.duplicates == DuplicateError:
			return nil, rnaerrors.NewCatalogueError(rnaerrors.DuplicateID, id)
		default:
			return nil, rnaerrors.E(rnaerrors.Configuration, fmt.Sprintf("unknown duplicate_handling value %d", b.duplicates))
		}
	}
	return cat, nil
}

// mergeOccurrences flattens occs' intervals into one sorted, non-overlapping
// Region. Add enforces that all occurrences share ref; strand is not
// checked, and the first occurrence's strand wins. The aggregation id
// likewise comes from the first occurrence.
func mergeOccurrences(id string, occs []*Region) *Region {
	r := &Region{ID: id, AggregationID: occs[0].AggregationID, Ref: occs[0].Ref, Strand: occs[0].Strand}
	for _, occ := range occs {
		r.Intervals = append(r.Intervals, occ.Intervals...)
	}
	sort.Slice(r.Intervals, func(i, j int) bool { return r.Intervals[i].Start < r.Intervals[j].Start })
	merged := r.Intervals[:0]
	for _, iv := range r.Intervals {
		if n := len(merged); n > 0 && iv.Start <= merged[n-1].End {
			if iv.End > merged[n-1].End {
				merged[n-1].End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	r.Intervals = merged
	return r
}

// Get returns the region with the given id, if any.
func (c *Catalogue) Get(id string) (*Region, bool) {
	r, ok := c.byID[id]
	return r, ok
}

// Len returns the number of regions in the catalogue.
func (c *Catalogue) Len() int { return len(c.order) }

// IDs returns region ids in catalogue order (first-seen, after duplicate
// resolution).
func (c *Catalogue) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// AggregationIDs returns the distinct aggregation ids of every region, in
// first-seen order, deduplicated. This is the row/column order of emitted
// count matrices: several regions sharing one aggregation id (e.g. several
// per-exon feature ids rolling up under one gene id) contribute a single
// output row.
func (c *Catalogue) AggregationIDs() []string {
	seen := make(map[string]bool, len(c.order))
	out := make([]string, 0, len(c.order))
	for _, id := range c.order {
		agg := c.byID[id].AggregationID
		if seen[agg] {
			continue
		}
		seen[agg] = true
		out = append(out, agg)
	}
	return out
}

// Each calls fn once per region, in catalogue order.
func (c *Catalogue) Each(fn func(*Region)) {
	for _, id := range c.order {
		fn(c.byID[id])
	}
}
