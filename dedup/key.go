// Package dedup collapses reads (or read groups sharing a UMI) that
// represent PCR or optical duplicates of the same original molecule.
package dedup

import (
	"fmt"

	"github.com/grailbio/rnaquant/region"
)

// Mode selects what a duplicate group is keyed on.
type Mode string

const (
	// ModeNone disables deduplication: every read is its own group.
	ModeNone Mode = "none"
	// ModePosition collapses reads sharing a reference, anchor position,
	// and strand, ignoring barcode and UMI (classic PCR-duplicate marking).
	ModePosition Mode = "position"
	// ModeSingleCell additionally requires the same cell barcode, feature
	// assignment, and UMI group: the single-cell duplicate definition.
	ModeSingleCell Mode = "sc"
	// ModeBulkUMI requires the same reference, anchor, strand, feature
	// assignment, and UMI group, but no barcode (bulk RNA-seq with UMIs,
	// one sample per run).
	ModeBulkUMI Mode = "bulk_umi"
)

// Key identifies one duplicate group. Fields irrelevant to Mode are left
// zero, so two Keys from different modes are never confused as long as
// callers consistently use one Mode per run (which the pipeline does).
type Key struct {
	Mode     Mode
	Ref      string
	Anchor   int
	Strand   region.Strand
	Feature  string // ModeSingleCell, ModeBulkUMI.
	Barcode  string // ModeSingleCell only.
	UMIGroup string // ModeSingleCell, ModeBulkUMI.
	ReadName string // ModeNone only: guarantees every read is distinct.
}

// String renders k for logging and as a map key fallback; Key is already
// comparable so most callers can use it directly as a map key.
func (k Key) String() string {
	switch k.Mode {
	case ModeNone:
		return fmt.Sprintf("none:%s", k.ReadName)
	case ModePosition:
		return fmt.Sprintf("position:%s:%d:%d", k.Ref, k.Anchor, k.Strand)
	case ModeSingleCell:
		return fmt.Sprintf("sc:%s:%d:%d:%s:%s:%s", k.Ref, k.Anchor, k.Strand, k.Feature, k.Barcode, k.UMIGroup)
	case ModeBulkUMI:
		return fmt.Sprintf("bulk_umi:%s:%d:%d:%s:%s", k.Ref, k.Anchor, k.Strand, k.Feature, k.UMIGroup)
	default:
		return fmt.Sprintf("unknown:%+v", k)
	}
}

// NewKey builds the Key appropriate for mode from a read's already-computed
// coordinates. feature, barcode, and umiGroup are ignored by modes that
// don't use them.
func NewKey(mode Mode, readName, ref string, anchor int, strand region.Strand, feature, barcode, umiGroup string) Key {
	switch mode {
	case ModeNone:
		return Key{Mode: mode, ReadName: readName}
	case ModePosition:
		return Key{Mode: mode, Ref: ref, Anchor: anchor, Strand: strand}
	case ModeSingleCell:
		return Key{Mode: mode, Ref: ref, Anchor: anchor, Strand: strand, Feature: feature, Barcode: barcode, UMIGroup: umiGroup}
	case ModeBulkUMI:
		return Key{Mode: mode, Ref: ref, Anchor: anchor, Strand: strand, Feature: feature, UMIGroup: umiGroup}
	default:
		panic(fmt.Sprintf("dedup: unknown mode %q", mode))
	}
}
