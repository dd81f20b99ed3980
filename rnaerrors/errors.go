// Package rnaerrors defines the error taxonomy used across rnaquant:
// configuration errors, catalogue-construction errors, and input errors are
// all fatal; per-read anomalies are not modeled here; they are tallied into
// diagnostic counters by the count package instead (spec.md section 7).
package rnaerrors

import "fmt"

// Kind classifies a fatal rnaquant error.
type Kind int

const (
	// Other is a catch-all for errors that don't fit a more specific kind.
	Other Kind = iota
	// Configuration marks an unknown option or a conflicting mode combination,
	// detected at startup.
	Configuration
	// Catalogue marks a region-catalogue construction failure.
	Catalogue
	// Input marks an unreadable BAM, missing index, or missing required tag.
	Input
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Catalogue:
		return "catalogue"
	case Input:
		return "input"
	default:
		return "error"
	}
}

// Error is a Kind-tagged error, in the style of grailbio/base/errors.Error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// E constructs an *Error of the given kind. Pass a wrapped error as the last
// argument to chain it; remaining arguments are joined with ": " to form the
// message, mirroring grailbio/base/errors.E's variadic style.
func E(kind Kind, args ...interface{}) error {
	e := &Error{Kind: kind}
	var parts []string
	for _, a := range args {
		if err, ok := a.(error); ok {
			e.Err = err
			continue
		}
		parts = append(parts, fmt.Sprint(a))
	}
	e.Message = joinNonEmpty(parts)
	return e
}

func joinNonEmpty(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ": "
		}
		out += p
	}
	return out
}

// CatalogueError is the specific taxonomy named in spec.md section 4.1.
type CatalogueError string

const (
	// MultiReferenceFeature: a feature's intervals span more than one reference.
	MultiReferenceFeature CatalogueError = "MultiReferenceFeature"
	// DuplicateID: an id was seen twice under duplicate_handling=error.
	DuplicateID CatalogueError = "DuplicateId"
	// MissingAttribute: a required GTF/GFF attribute was absent.
	MissingAttribute CatalogueError = "MissingAttribute"
)

// NewCatalogueError builds a Catalogue-kind *Error whose Message starts with
// the named failure mode, followed by detail. The reason is recorded only as
// message text; no CatalogueError value is wrapped in the returned error.
func NewCatalogueError(reason CatalogueError, detail string) error {
	return E(Catalogue, string(reason), detail)
}
