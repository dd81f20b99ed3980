// Package readmodel turns a biogo/hts/sam.Record into the reference-space
// view the rest of rnaquant operates on: the blocks of reference bases it
// actually covers, its clip-corrected anchor position, and whether it
// survives the configured filter chain.
package readmodel

import "github.com/biogo/hts/sam"

// Block is a single contiguous, half-open span of reference bases covered
// by a read. A spliced read yields one Block per exon segment; 'N' CIGAR
// operations end one block and start the next without producing a block of
// their own (the intron between exons is not "covered").
type Block struct {
	Start, End int
}

// ReferenceBlocks walks cigar starting at pos (0-based, the record's Pos)
// and returns the reference blocks it covers. M/=/X/D extend the current
// block; N closes it and begins a new one after the skip; S/H/I/P consume
// no reference and are ignored.
func ReferenceBlocks(cigar sam.Cigar, pos int) []Block {
	var blocks []Block
	blockStart := pos
	cur := pos
	for _, op := range cigar {
		switch op.Type() {
		case sam.CigarMatch, sam.CigarDeletion, sam.CigarEqual, sam.CigarMismatch:
			cur += op.Len()
		case sam.CigarSkipped:
			if cur > blockStart {
				blocks = append(blocks, Block{blockStart, cur})
			}
			cur += op.Len()
			blockStart = cur
		case sam.CigarSoftClipped, sam.CigarHardClipped, sam.CigarInsertion, sam.CigarPadded:
			// No reference consumption.
		}
	}
	if cur > blockStart {
		blocks = append(blocks, Block{blockStart, cur})
	}
	return blocks
}

// leadingClip and trailingClip return the number of soft- or hard-clipped
// query bases at the start and end of cigar respectively. Per the SAM spec,
// clipping operations only ever appear at the ends of a CIGAR string.
func leadingClip(cigar sam.Cigar) int {
	n := 0
	for _, op := range cigar {
		t := op.Type()
		if t != sam.CigarSoftClipped && t != sam.CigarHardClipped {
			break
		}
		n += op.Len()
	}
	return n
}

func trailingClip(cigar sam.Cigar) int {
	n := 0
	for i := len(cigar) - 1; i >= 0; i-- {
		t := cigar[i].Type()
		if t != sam.CigarSoftClipped && t != sam.CigarHardClipped {
			break
		}
		n += cigar[i].Len()
	}
	return n
}

// UnclippedFivePrime returns the reference position of the read's 5' end,
// extended back through any clipped bases. For a forward-strand read this
// is Pos minus the leading clip; for a reverse-strand read it's End plus
// the trailing clip, since the read's 5' end is on the right in reference
// coordinates.
//
// TODO: a read clipped on both ends (e.g. adapter-trimmed at both the 5'
// and 3' end) still only corrects using the clip at the 5'-relevant end;
// revisit if a future caller needs the 3' anchor too.
func UnclippedFivePrime(r *sam.Record) int {
	if r.Flags&sam.Reverse != 0 {
		return r.End() + trailingClip(r.Cigar)
	}
	return r.Pos - leadingClip(r.Cigar)
}

// CorrectedBlocks returns ReferenceBlocks(r.Cigar, r.Pos), with the first or
// last block's boundary shifted outward to absorb soft clipping, when
// correctForClipping is set (the correct_reads_for_clipping option). This
// widens the read's apparent footprint to where the full read would have
// aligned had the clipped bases matched the reference, which is the
// behavior overlap resolution expects when that option is enabled.
func CorrectedBlocks(r *sam.Record, correctForClipping bool) []Block {
	blocks := ReferenceBlocks(r.Cigar, r.Pos)
	if !correctForClipping || len(blocks) == 0 {
		return blocks
	}
	if lead := leadingClip(r.Cigar); lead > 0 {
		blocks[0].Start -= lead
	}
	if trail := trailingClip(r.Cigar); trail > 0 {
		blocks[len(blocks)-1].End += trail
	}
	return blocks
}
