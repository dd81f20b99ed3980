package readmodel

import (
	"github.com/biogo/hts/sam"
	"github.com/grailbio/rnaquant/region"
)

// LibraryDirection is the configured strandedness of the sequencing library
// (the strategy.direction option), which says how a read's mapped strand
// relates to the strand of the feature it was transcribed from.
type LibraryDirection int8

const (
	// DirectionForward: read1 (or an unpaired read) maps to the same strand
	// the transcript is on.
	DirectionForward LibraryDirection = iota
	// DirectionReverse: read1 maps to the opposite strand.
	DirectionReverse
	// DirectionIgnore: compute an effective strand, but don't use it to
	// restrict overlap; kept distinct from Unstranded so diagnostics can
	// still report it.
	DirectionIgnore
	// DirectionUnstranded: the library carries no strand information at all.
	DirectionUnstranded
)

// EffectiveStrand derives the strand of the originating transcript for r,
// given the library's direction policy. DirectionUnstranded always yields
// region.Unstranded, matching features on either strand.
//
// For read2 of a pair the mate's strand-relative role is flipped relative
// to read1, mirroring how markduplicates.r1Strand treats Read1 as the
// canonical orientation and negates for Read2.
func EffectiveStrand(r *sam.Record, policy LibraryDirection) region.Strand {
	if policy == DirectionUnstranded {
		return region.Unstranded
	}
	reverse := r.Flags&sam.Reverse != 0
	if r.Flags&sam.Paired != 0 && r.Flags&sam.Read2 != 0 {
		reverse = !reverse
	}
	switch policy {
	case DirectionForward:
		if reverse {
			return region.Reverse
		}
		return region.Forward
	case DirectionReverse:
		if reverse {
			return region.Forward
		}
		return region.Reverse
	case DirectionIgnore:
		if reverse {
			return region.Reverse
		}
		return region.Forward
	default:
		return region.Unstranded
	}
}
