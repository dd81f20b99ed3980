// Package overlap resolves a read's reference blocks against a region
// catalogue, producing the set of features (if any) it should be counted
// against.
package overlap

import (
	"sort"

	"github.com/grailbio/rnaquant/readmodel"
	"github.com/grailbio/rnaquant/region"
)

// Mode selects how a read's (possibly several, for a spliced read)
// reference blocks are combined into a feature assignment.
type Mode string

const (
	// Union assigns every feature touched by any block (HTSeq "union").
	Union Mode = "union"
	// IntersectionStrict requires every block to fall entirely within the
	// feature set common to all blocks (HTSeq "intersection-strict"); a
	// block touching no feature at all disqualifies the whole read.
	IntersectionStrict Mode = "intersection_strict"
	// IntersectionNonEmpty is IntersectionStrict but blocks that touch no
	// feature are skipped rather than disqualifying the read (HTSeq
	// "intersection-nonempty").
	IntersectionNonEmpty Mode = "intersection_non_empty"
	// UnstrandedFeatureCounts unions overlapping features across blocks
	// while ignoring strand entirely, regardless of the library's
	// configured direction policy (featureCounts "-s 0").
	UnstrandedFeatureCounts Mode = "unstranded_featurecounts"
	// StrandedFeatureCounts unions overlapping features across blocks,
	// restricted to features sharing the read's effective strand
	// (featureCounts "-s 1"/"-s 2", depending on direction policy).
	StrandedFeatureCounts Mode = "stranded_featurecounts"
)

// MultiRegionDisposition controls what happens when a read is assigned to
// more than one feature after overlap resolution.
type MultiRegionDisposition string

const (
	// CountBoth credits every assigned feature.
	CountBoth MultiRegionDisposition = "count_both"
	// CountNone discards the read entirely (tallied as ambiguous).
	CountNone MultiRegionDisposition = "count_none"
	// CountFirst credits only the lexicographically first feature id, for
	// a deterministic single assignment.
	CountFirst MultiRegionDisposition = "count_first"
)

// Outcome classifies why a read did or didn't get assigned, for the
// diagnostic counters count.Aggregator tracks.
type Outcome string

const (
	OutcomeAssigned  Outcome = "assigned"
	OutcomeNoFeature Outcome = "no_feature"
	OutcomeAmbiguous Outcome = "ambiguous"
)

// Resolver maps reference blocks to regions using a fixed Index, Mode, and
// MultiRegionDisposition.
type Resolver struct {
	Index       *region.Index
	Mode        Mode
	MultiRegion MultiRegionDisposition
}

// Resolve returns the features ref's blocks should be counted against,
// given the read's effective strand (Unstranded if the library or the
// direction policy carries no strand information).
func (res *Resolver) Resolve(ref string, blocks []readmodel.Block, strand region.Strand) ([]*region.Region, Outcome) {
	assigned := dedupByAggregationID(res.overlappingFeatures(ref, blocks, strand))
	switch len(assigned) {
	case 0:
		return nil, OutcomeNoFeature
	case 1:
		return assigned, OutcomeAssigned
	default:
		switch res.MultiRegion {
		case CountBoth:
			return assigned, OutcomeAssigned
		case CountFirst:
			return []*region.Region{firstByID(assigned)}, OutcomeAssigned
		case CountNone:
			return nil, OutcomeAmbiguous
		default:
			return nil, OutcomeAmbiguous
		}
	}
}

func (res *Resolver) overlappingFeatures(ref string, blocks []readmodel.Block, strand region.Strand) []*region.Region {
	switch res.Mode {
	case UnstrandedFeatureCounts:
		return unionAcrossBlocks(res.Index, ref, blocks, []region.Strand{region.Forward, region.Reverse, region.Unstranded})
	case StrandedFeatureCounts:
		return unionAcrossBlocks(res.Index, ref, blocks, strandsToQuery(strand))
	case Union:
		return unionAcrossBlocks(res.Index, ref, blocks, strandsToQuery(strand))
	case IntersectionStrict:
		return intersectionAcrossBlocks(res.Index, ref, blocks, strandsToQuery(strand), false)
	case IntersectionNonEmpty:
		return intersectionAcrossBlocks(res.Index, ref, blocks, strandsToQuery(strand), true)
	default:
		return nil
	}
}

// strandsToQuery returns which region strands a query should search:
// features explicitly on the read's effective strand, plus unstranded
// features (which always match regardless of orientation). When the read's
// effective strand is itself Unstranded (an unstranded library, or
// strategy.direction=unstranded), both explicit strands are searched too.
func strandsToQuery(strand region.Strand) []region.Strand {
	if strand == region.Unstranded {
		return []region.Strand{region.Forward, region.Reverse, region.Unstranded}
	}
	return []region.Strand{strand, region.Unstranded}
}

func unionAcrossBlocks(idx *region.Index, ref string, blocks []readmodel.Block, strands []region.Strand) []*region.Region {
	seen := map[string]*region.Region{}
	for _, b := range blocks {
		for _, r := range idx.Overlaps(ref, strands, b.Start, b.End) {
			seen[r.ID] = r
		}
	}
	return valuesSortedByID(seen)
}

// intersectionAcrossBlocks combines per-block feature sets by intersection.
// If skipEmpty is false (intersection_strict), a block counts only the
// features that contain it entirely, and any block with no such feature
// makes the whole read unassigned. If skipEmpty is
// true (intersection_non_empty), such blocks are simply excluded from the
// intersection.
func intersectionAcrossBlocks(idx *region.Index, ref string, blocks []readmodel.Block, strands []region.Strand, skipEmpty bool) []*region.Region {
	var acc map[string]*region.Region
	started := false
	for _, b := range blocks {
		blockSet := map[string]*region.Region{}
		for _, r := range idx.Overlaps(ref, strands, b.Start, b.End) {
			if !skipEmpty {
				// intersection_strict: the block must lie entirely inside
				// one of the region's (merged) intervals.
				covered := false
				for _, iv := range r.Intervals {
					if iv.Start <= b.Start && b.End <= iv.End {
						covered = true
						break
					}
				}
				if !covered {
					continue
				}
			}
			blockSet[r.ID] = r
		}
		if len(blockSet) == 0 {
			if skipEmpty {
				continue
			}
			return nil
		}
		if !started {
			acc = blockSet
			started = true
			continue
		}
		for id := range acc {
			if _, ok := blockSet[id]; !ok {
				delete(acc, id)
			}
		}
	}
	if !started {
		return nil
	}
	return valuesSortedByID(acc)
}

func valuesSortedByID(m map[string]*region.Region) []*region.Region {
	out := make([]*region.Region, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func firstByID(rs []*region.Region) *region.Region {
	best := rs[0]
	for _, r := range rs[1:] {
		if r.ID < best.ID {
			best = r
		}
	}
	return best
}

// dedupByAggregationID collapses rs (already sorted by ID) to one region per
// distinct aggregation id, keeping the lowest-ID region of each group. Most
// configurations have aggregation id equal to id, making this a no-op; it
// matters when several catalogue feature ids (e.g. per-exon ids) share one
// aggregation id (e.g. a gene id), so a spliced read touching more than one
// of them is credited once under the shared id instead of being counted
// twice or flagged ambiguous.
func dedupByAggregationID(rs []*region.Region) []*region.Region {
	seen := make(map[string]bool, len(rs))
	out := make([]*region.Region, 0, len(rs))
	for _, r := range rs {
		if seen[r.AggregationID] {
			continue
		}
		seen[r.AggregationID] = true
		out = append(out, r)
	}
	return out
}
