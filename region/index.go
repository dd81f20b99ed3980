package region

import (
	"sort"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/rnaquant/interval"
)

// bucketKey identifies one (reference, strand) overlap-search bucket.
type bucketKey struct {
	ref    string
	strand Strand
}

// Compare implements llrb.Comparable.
func (k bucketKey) Compare(c llrb.Comparable) int {
	o := c.(bucketKey)
	if k.ref != o.ref {
		if k.ref < o.ref {
			return -1
		}
		return 1
	}
	return int(k.strand) - int(o.strand)
}

// regionInterval is one of a Region's intervals, flattened into a bucket for
// searching.
type regionInterval struct {
	start, end interval.PosType
	region     *Region
}

// bucket holds every regionInterval for one (reference, strand) pair, sorted
// by start and augmented with a running max-end so Overlaps can prune its
// backward scan once no earlier interval could possibly reach the query.
type bucket struct {
	key       bucketKey
	intervals []regionInterval
	maxEnd    []interval.PosType
}

func (b bucket) Compare(c llrb.Comparable) int {
	return b.key.Compare(c.(bucket).key)
}

// Index answers "which regions overlap this (reference, strand, [start,
// end)) block" queries, built once from a Catalogue and reused across every
// read in the run.
type Index struct {
	buckets llrb.Tree
}

// NewIndex builds an Index over every interval of every region in cat.
func NewIndex(cat *Catalogue) *Index {
	byKey := map[bucketKey][]regionInterval{}
	cat.Each(func(r *Region) {
		if r.notIndexed {
			return
		}
		key := bucketKey{ref: r.Ref, strand: r.Strand}
		for _, iv := range r.Intervals {
			byKey[key] = append(byKey[key], regionInterval{
				start:  interval.PosType(iv.Start),
				end:    interval.PosType(iv.End),
				region: r,
			})
		}
	})

	idx := &Index{}
	for key, ivs := range byKey {
		sort.Slice(ivs, func(i, j int) bool { return ivs[i].start < ivs[j].start })
		maxEnd := make([]interval.PosType, len(ivs))
		running := interval.PosType(0)
		for i, iv := range ivs {
			if iv.end > running {
				running = iv.end
			}
			maxEnd[i] = running
		}
		idx.buckets.Insert(bucket{key: key, intervals: ivs, maxEnd: maxEnd})
	}
	return idx
}

// Overlaps returns every region on ref whose strand is in strands and which
// overlaps the half-open block [start, end). Results may repeat a region
// that has more than one overlapping interval; callers that need a region
// counted once per read should dedup (overlap.Resolver does this).
func (idx *Index) Overlaps(ref string, strands []Strand, start, end int) []*Region {
	var out []*Region
	qStart, qEnd := interval.PosType(start), interval.PosType(end)
	for _, strand := range strands {
		c := idx.buckets.Get(bucket{key: bucketKey{ref: ref, strand: strand}})
		if c == nil {
			continue
		}
		b := c.(bucket)
		out = append(out, b.overlapping(qStart, qEnd)...)
	}
	return out
}

// overlapping performs the augmented binary search: find the rightmost
// interval whose start is before qEnd, then scan backward while maxEnd says
// an overlap is still possible.
func (b bucket) overlapping(qStart, qEnd interval.PosType) []*Region {
	// First index with start >= qEnd; everything before it has start < qEnd.
	hi := sort.Search(len(b.intervals), func(i int) bool { return b.intervals[i].start >= qEnd })
	var out []*Region
	for i := hi - 1; i >= 0; i-- {
		if b.maxEnd[i] <= qStart {
			break
		}
		if b.intervals[i].end > qStart {
			out = append(out, b.intervals[i].region)
		}
	}
	return out
}
