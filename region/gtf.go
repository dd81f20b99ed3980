package region

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/rnaquant/rnaerrors"
	"github.com/klauspost/compress/gzip"
)

// annotationRecord holds one line of a GTF/GFF file, before attribute
// parsing. Mirrors the column layout of both formats.
type annotationRecord struct {
	Ref     string
	Source  string
	Feature string
	Start   int
	End     int
	Score   string
	Strand  string
	Frame   string
	Attrs   string
}

// openAnnotation opens path (local or remote, transparently gzipped) and
// returns a tsv.Reader positioned at the first data row, skipping '#'
// comment lines.
func openAnnotation(ctx context.Context, path string) (*tsv.Reader, func() error, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	var r io.Reader = in.Reader(ctx)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			in.Close(ctx) // nolint: errcheck
			return nil, nil, err
		}
		r = gz
	}
	scanner := tsv.NewReader(bufio.NewReaderSize(r, 64<<10))
	scanner.Comment = '#'
	scanner.LazyQuotes = true
	return scanner, func() error { return in.Close(ctx) }, nil
}

// ReadAnnotation streams annotationRecords from a GTF or GFF3 file whose
// Feature column equals featureType (e.g. "exon"), invoking fn for each
// matching record in file order. Each attribute field is parsed on its own
// as either GFF3 style ("key=value", joined with ';') or GTF style
// ('key "value"', joined with "; "); see parseAttributes.
func ReadAnnotation(ctx context.Context, path, featureType string, fn func(annotationRecord, map[string]string) error) error {
	scanner, closeFn, err := openAnnotation(ctx, path)
	if err != nil {
		return err
	}
	defer closeFn() // nolint: errcheck

	var line annotationRecord
	attrs := map[string]string{}
	n := 0
	for {
		if err := scanner.Read(&line); err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		if line.Feature != featureType {
			continue
		}
		parseAttributes(attrs, line.Attrs)
		if err := fn(line, attrs); err != nil {
			return err
		}
		n++
	}
	log.Debug.Printf("region: read %d %q records from %s", n, featureType, path)
	return nil
}

// BuildCatalogueFromAnnotation reads every featureType record from a GTF/GFF
// file at path and folds it into a Catalogue, using idAttribute (e.g.
// "exon_id") to name each feature and aggregationIDAttribute (e.g.
// "gene_id") to name the output row its counts roll up under.
func BuildCatalogueFromAnnotation(ctx context.Context, path, featureType, idAttribute, aggregationIDAttribute string, duplicates DuplicateHandling) (*Catalogue, error) {
	b := NewBuilder(duplicates)
	err := ReadAnnotation(ctx, path, featureType, func(rec annotationRecord, attrs map[string]string) error {
		id, ok := attrs[idAttribute]
		if !ok {
			return rnaerrors.NewCatalogueError(rnaerrors.MissingAttribute,
				idAttribute+" missing on "+rec.Ref+":"+rec.Feature)
		}
		aggregationID, ok := attrs[aggregationIDAttribute]
		if !ok {
			return rnaerrors.NewCatalogueError(rnaerrors.MissingAttribute,
				aggregationIDAttribute+" missing on "+rec.Ref+":"+rec.Feature)
		}
		// GTF/GFF rows are 1-based and closed; Interval is 0-based half-open.
		return b.Add(id, aggregationID, rec.Ref, ParseStrand(rec.Strand), rec.Start-1, rec.End)
	})
	if err != nil {
		return nil, err
	}
	return b.Build()
}

// parseAttributes fills attrs (cleared first) from the attribute column of a
// GTF ('key "value"; ...') or GFF3 ('key=value;...') record.
func parseAttributes(attrs map[string]string, raw string) {
	for k := range attrs {
		delete(attrs, k)
	}
	for _, field := range strings.Split(strings.TrimSpace(raw), ";") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if eq := strings.IndexByte(field, '='); eq >= 0 && !strings.Contains(field, " \"") {
			attrs[field[:eq]] = field[eq+1:]
			continue
		}
		pair := strings.SplitN(field, " ", 2)
		if len(pair) != 2 {
			continue
		}
		attrs[pair[0]] = strings.Trim(pair[1], "\"")
	}
}
