package region

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

// ExplicitInterval is one row of an explicit-interval region source: a
// BED-like file (chrom, start, end, name[, score, strand]) used instead of a
// GTF/GFF annotation when the caller already has feature coordinates.
type ExplicitInterval struct {
	Ref    string
	Start  int
	End    int
	Name   string
	Strand string
}

// ReadExplicitIntervals scans a whitespace-delimited BED-like file, calling
// fn for each row. Lines beginning with '#' or "track" are skipped. The name
// column (4th) is the feature id; a missing strand column (6th) defaults to
// unstranded ('.').
func ReadExplicitIntervals(ctx context.Context, path string, fn func(ExplicitInterval) error) error {
	in, err := file.Open(ctx, path)
	if err != nil {
		return err
	}
	defer in.Close(ctx) // nolint: errcheck

	scanner := bufio.NewScanner(in.Reader(ctx))
	n := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "track") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return fmt.Errorf("region: malformed explicit-interval line (need >=4 columns): %q", line)
		}
		start, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("region: bad start in %q: %v", line, err)
		}
		end, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("region: bad end in %q: %v", line, err)
		}
		iv := ExplicitInterval{Ref: fields[0], Start: start, End: end, Name: fields[3], Strand: "."}
		if len(fields) >= 6 {
			iv.Strand = fields[5]
		}
		if err := fn(iv); err != nil {
			return err
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	log.Debug.Printf("region: read %d explicit intervals from %s", n, path)
	return nil
}

// BuildCatalogueFromExplicitIntervals reads a BED-like file at path and
// folds every row into a Catalogue. The name column has no separate
// aggregation column, so it names both the feature id and the aggregation id.
func BuildCatalogueFromExplicitIntervals(ctx context.Context, path string, duplicates DuplicateHandling) (*Catalogue, error) {
	b := NewBuilder(duplicates)
	err := ReadExplicitIntervals(ctx, path, func(iv ExplicitInterval) error {
		return b.Add(iv.Name, iv.Name, iv.Ref, ParseStrand(iv.Strand), iv.Start, iv.End)
	})
	if err != nil {
		return nil, err
	}
	return b.Build()
}
