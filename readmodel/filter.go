package readmodel

import "github.com/biogo/hts/sam"

var nhTag = sam.NewTag("NH")

// FilterKind names one of the predicates that can appear in a filter chain
// (the filter[] entries of the configuration).
type FilterKind string

const (
	FilterMultimapper  FilterKind = "multimapper"
	FilterSpliced      FilterKind = "spliced"
	FilterUnmapped     FilterKind = "unmapped"
	FilterSecondary    FilterKind = "secondary"
	FilterSupplementary FilterKind = "supplementary"
	FilterDuplicate    FilterKind = "duplicate"
	FilterMapQBelow    FilterKind = "mapq_below"
	FilterReference    FilterKind = "reference"
)

// Action says what a matching Filter does to a read: drop it, or restrict
// the count to only reads that match.
type Action int

const (
	// Remove drops any read the predicate matches.
	Remove Action = iota
	// KeepOnly drops any read the predicate does NOT match.
	KeepOnly
)

// Filter is one entry of the filter chain: a predicate plus the action to
// take when it fires, evaluated in chain order with short-circuiting (the
// first filter that removes a read stops the chain for that read).
type Filter struct {
	Kind   FilterKind
	Action Action
	// MapQThreshold is used by FilterMapQBelow.
	MapQThreshold byte
	// ReferenceName is used by FilterReference.
	ReferenceName string
}

// matches reports whether r satisfies the filter's underlying predicate,
// independent of Action.
func (f Filter) matches(r *sam.Record) bool {
	switch f.Kind {
	case FilterMultimapper:
		return isMultimapper(r)
	case FilterSpliced:
		return isSpliced(r)
	case FilterUnmapped:
		return r.Flags&sam.Unmapped != 0
	case FilterSecondary:
		return r.Flags&sam.Secondary != 0
	case FilterSupplementary:
		return r.Flags&sam.Supplementary != 0
	case FilterDuplicate:
		return r.Flags&sam.Duplicate != 0
	case FilterMapQBelow:
		return r.MapQ < f.MapQThreshold
	case FilterReference:
		return r.Ref == nil || r.Ref.Name() != f.ReferenceName
	default:
		return false
	}
}

// isMultimapper reports whether r has an NH aux tag greater than one, the
// standard convention (used by STAR, HISAT2, and most other aligners) for
// flagging a read that maps to more than one location.
func isMultimapper(r *sam.Record) bool {
	aux := r.AuxFields.Get(nhTag)
	if aux == nil {
		return false
	}
	switch v := aux.Value().(type) {
	case int:
		return v > 1
	case int8:
		return v > 1
	case int16:
		return v > 1
	case int32:
		return v > 1
	case int64:
		return v > 1
	case uint8:
		return v > 1
	case uint16:
		return v > 1
	case uint32:
		return v > 1
	default:
		return false
	}
}

// isSpliced reports whether r's CIGAR contains a skipped-region ('N')
// operation, i.e. the read crosses a splice junction.
func isSpliced(r *sam.Record) bool {
	for _, op := range r.Cigar {
		if op.Type() == sam.CigarSkipped {
			return true
		}
	}
	return false
}

// Keep applies the filter chain to r in order, stopping as soon as a filter
// removes it. It returns the FilterKind that removed r, or "" if r survived
// every filter.
func Keep(filters []Filter, r *sam.Record) (removedBy FilterKind, kept bool) {
	for _, f := range filters {
		matched := f.matches(r)
		removed := matched
		if f.Action == KeepOnly {
			removed = !matched
		}
		if removed {
			return f.Kind, false
		}
	}
	return "", true
}
