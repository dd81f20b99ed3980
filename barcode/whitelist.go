// Package barcode extracts cell-barcode and UMI strings from reads and
// corrects them against a known whitelist.
package barcode

import (
	"bufio"
	"context"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

var bases = []byte{'A', 'C', 'G', 'T', 'N'}

// Whitelist is the set of known-good cell barcodes read from the
// cell_barcodes configuration. An empty Whitelist disables correction
// entirely: every barcode is accepted verbatim.
type Whitelist struct {
	set map[string]bool
}

// NewWhitelist builds a Whitelist from a slice of barcode strings. Passing
// nil or an empty slice yields a Whitelist that accepts any barcode
// unmodified (the "no whitelist configured" case).
func NewWhitelist(barcodes []string) *Whitelist {
	w := &Whitelist{set: make(map[string]bool, len(barcodes))}
	for _, b := range barcodes {
		w.set[strings.ToUpper(b)] = true
	}
	return w
}

// ReadWhitelist loads one barcode per line from path (local or remote,
// blank lines and '#' comments skipped).
func ReadWhitelist(ctx context.Context, path string) (*Whitelist, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck

	var barcodes []string
	scanner := bufio.NewScanner(in.Reader(ctx))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		barcodes = append(barcodes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	log.Debug.Printf("barcode: read %d whitelist entries from %s", len(barcodes), path)
	return NewWhitelist(barcodes), nil
}

// Enabled reports whether correction is active (a non-empty whitelist was
// configured).
func (w *Whitelist) Enabled() bool { return len(w.set) > 0 }

// Correct checks barcode against the whitelist, allowing up to maxHamming
// substitutions. It tries increasing distances starting at 0 (an exact
// match); at the first distance with any whitelist hits, it accepts the
// correction only if that distance has exactly one hit ("unique closest
// known value"). If the whitelist is empty, barcode is returned unmodified
// and ok is true.
func (w *Whitelist) Correct(barcode string, maxHamming int) (corrected string, ok bool) {
	if !w.Enabled() {
		return barcode, true
	}
	barcode = strings.ToUpper(barcode)
	if w.set[barcode] {
		return barcode, true
	}
	for dist := 1; dist <= maxHamming; dist++ {
		hits := w.hitsAtDistance(barcode, dist)
		if len(hits) == 1 {
			return hits[0], true
		}
		if len(hits) > 1 {
			return barcode, false
		}
	}
	return barcode, false
}

// hitsAtDistance returns every whitelist entry exactly dist substitutions
// away from barcode, stopping early once a second hit is found since
// Correct only needs to distinguish "zero", "one", or "more than one".
func (w *Whitelist) hitsAtDistance(barcode string, dist int) []string {
	var hits []string
	var rec func(pos, remaining int, cur []byte)
	rec = func(pos, remaining int, cur []byte) {
		if len(hits) > 1 {
			return
		}
		if remaining == 0 {
			if w.set[string(cur)] {
				hits = append(hits, string(cur))
			}
			return
		}
		if pos >= len(cur) {
			return
		}
		// Positions left to place `remaining` substitutions in.
		if len(cur)-pos < remaining {
			return
		}
		// Skip this position without a substitution.
		rec(pos+1, remaining, cur)
		orig := cur[pos]
		for _, b := range bases {
			if b == orig {
				continue
			}
			cur[pos] = b
			rec(pos+1, remaining-1, cur)
			cur[pos] = orig
			if len(hits) > 1 {
				return
			}
		}
	}
	rec(0, dist, []byte(barcode))
	return hits
}
