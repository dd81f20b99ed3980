// Package bamsource provides sharded, concurrent-safe iteration over the
// alignment records of a BAM file, for consumption by the counting
// pipeline's worker pool.
package bamsource

import (
	"context"
	"io"
	"sync"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf/index"
	"github.com/biogo/hts/sam"
	"github.com/grailbio/base/file"
)

// Shard is one reference's worth of alignment records (or, for RefID < 0,
// the run of unmapped records at the end of the file). Shards are the unit
// of work handed to the pipeline's worker pool; each is read by exactly one
// iterator.
type Shard struct {
	RefID   int // index into the header's reference list, or -1 for unmapped.
	RefName string
}

// Iterator yields successive records of one Shard, in the style of
// bufio.Scanner: call Scan until it returns false, then check Err.
type Iterator interface {
	Scan() bool
	Record() *sam.Record
	Err() error
	Close() error
}

// Provider opens a BAM file and hands out per-reference iterators, so a
// worker pool can process references concurrently without each worker
// managing its own file handle and index lookups.
type Provider interface {
	GetHeader() (*sam.Header, error)
	Shards() ([]Shard, error)
	NewIterator(shard Shard) Iterator
	Close() error
}

// BAMProvider implements Provider for a BAM file on local disk or any
// backend github.com/grailbio/base/file understands. If an index is
// present at Path+".bai" (or the path given in Index), shards are read
// directly via indexed seeks; otherwise each shard's iterator scans the
// whole file sequentially and keeps only that shard's records.
type BAMProvider struct {
	Path  string
	Index string // defaults to Path + ".bai" when empty.

	mu     sync.Mutex
	header *sam.Header
}

func (p *BAMProvider) indexPath() string {
	if p.Index != "" {
		return p.Index
	}
	return p.Path + ".bai"
}

// GetHeader returns the BAM file's header, reading it once and caching it.
func (p *BAMProvider) GetHeader() (*sam.Header, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.header != nil {
		return p.header, nil
	}

	ctx := context.Background()
	in, err := file.Open(ctx, p.Path)
	if err != nil {
		return nil, err
	}
	defer in.Close(ctx)

	r, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	p.header = r.Header()
	return p.header, nil
}

// Shards returns one shard per reference present in the header, plus a
// trailing unmapped shard (RefID -1) for records with no reference.
func (p *BAMProvider) Shards() ([]Shard, error) {
	header, err := p.GetHeader()
	if err != nil {
		return nil, err
	}
	shards := make([]Shard, 0, len(header.Refs())+1)
	for _, ref := range header.Refs() {
		shards = append(shards, Shard{RefID: ref.ID(), RefName: ref.Name()})
	}
	shards = append(shards, Shard{RefID: -1, RefName: ""})
	return shards, nil
}

// NewIterator returns an Iterator over shard's records. If an index is
// available it seeks directly to the shard's chunk; otherwise it opens a
// fresh sequential reader and filters to the requested reference, which
// costs an extra file pass per shard but still produces correct results.
func (p *BAMProvider) NewIterator(shard Shard) Iterator {
	ctx := context.Background()
	in, err := file.Open(ctx, p.Path)
	if err != nil {
		return &errIterator{err: err}
	}
	r, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		in.Close(ctx)
		return &errIterator{err: err}
	}

	indexIn, idxErr := file.Open(ctx, p.indexPath())
	if idxErr != nil {
		// No usable index: fall back to a sequential scan filtered to shard.
		return &sequentialIterator{in: in, reader: r, shard: shard}
	}
	defer indexIn.Close(ctx)
	idx, err := bam.ReadIndex(indexIn.Reader(ctx))
	if err != nil {
		return &sequentialIterator{in: in, reader: r, shard: shard}
	}

	header := r.Header()
	if shard.RefID < 0 {
		offset, err := unmappedOffset(header, idx)
		if err != nil {
			r.Close()
			in.Close(ctx)
			return &errIterator{err: err}
		}
		if err := r.Seek(offset); err != nil && err != io.EOF {
			r.Close()
			in.Close(ctx)
			return &errIterator{err: err}
		}
		return &indexedIterator{in: in, reader: r, shard: shard}
	}

	ref := header.Refs()[shard.RefID]
	chunks, err := idx.Chunks(ref, 0, ref.Len())
	if err == index.ErrInvalid || len(chunks) == 0 {
		r.Close()
		in.Close(ctx)
		return &emptyIterator{}
	}
	if err != nil {
		r.Close()
		in.Close(ctx)
		return &errIterator{err: err}
	}
	if err := r.Seek(chunks[0].Begin); err != nil {
		r.Close()
		in.Close(ctx)
		return &errIterator{err: err}
	}
	return &indexedIterator{in: in, reader: r, shard: shard}
}

// Close implements the Provider interface.
func (p *BAMProvider) Close() error { return nil }

func unmappedOffset(header *sam.Header, idx *bam.Index) (index.Chunk, error) {
	var last index.Chunk
	for _, ref := range header.Refs() {
		chunks, err := idx.Chunks(ref, 0, ref.Len())
		if err == index.ErrInvalid || len(chunks) == 0 {
			continue
		}
		if err != nil {
			return last, err
		}
		c := chunks[len(chunks)-1]
		if c.End.File > last.End.File || (c.End.File == last.End.File && c.End.Block > last.End.Block) {
			last = c
		}
	}
	return last, nil
}

// indexedIterator reads sequentially from an already-seeked *bam.Reader
// and stops as soon as a record belongs to a different reference than the
// shard, relying on the index seek to have placed it at the shard's first
// record (a record of another reference ends a mapped shard at once).
type indexedIterator struct {
	in     file.File
	reader *bam.Reader
	shard  Shard

	rec *sam.Record
	err error
}

func (it *indexedIterator) Scan() bool {
	if it.err != nil {
		return false
	}
	for {
		rec, err := it.reader.Read()
		if err != nil {
			if err != io.EOF {
				it.err = err
			}
			return false
		}
		refID := -1
		if rec.Ref != nil {
			refID = rec.Ref.ID()
		}
		if refID != it.shard.RefID {
			if it.shard.RefID >= 0 {
				// References in a coordinate-sorted BAM are contiguous, so
				// seeing a different reference means this shard is done.
				return false
			}
			continue
		}
		it.rec = rec
		return true
	}
}

func (it *indexedIterator) Record() *sam.Record { return it.rec }
func (it *indexedIterator) Err() error          { return it.err }
func (it *indexedIterator) Close() error {
	it.reader.Close()
	return it.in.Close(context.Background())
}

// sequentialIterator is the unindexed fallback: it scans the whole file
// and keeps only records matching the shard's reference.
type sequentialIterator struct {
	in     file.File
	reader *bam.Reader
	shard  Shard

	rec *sam.Record
	err error
}

func (it *sequentialIterator) Scan() bool {
	if it.err != nil {
		return false
	}
	for {
		rec, err := it.reader.Read()
		if err != nil {
			if err != io.EOF {
				it.err = err
			}
			return false
		}
		refID := -1
		if rec.Ref != nil {
			refID = rec.Ref.ID()
		}
		if refID != it.shard.RefID {
			continue
		}
		it.rec = rec
		return true
	}
}

func (it *sequentialIterator) Record() *sam.Record { return it.rec }
func (it *sequentialIterator) Err() error          { return it.err }
func (it *sequentialIterator) Close() error {
	it.reader.Close()
	return it.in.Close(context.Background())
}

// emptyIterator yields nothing, for shards the index proves have no records.
type emptyIterator struct{}

func (emptyIterator) Scan() bool         { return false }
func (emptyIterator) Record() *sam.Record { return nil }
func (emptyIterator) Err() error         { return nil }
func (emptyIterator) Close() error       { return nil }

// errIterator reports a setup error on the first Scan call.
type errIterator struct{ err error }

func (it *errIterator) Scan() bool         { return false }
func (it *errIterator) Record() *sam.Record { return nil }
func (it *errIterator) Err() error          { return it.err }
func (it *errIterator) Close() error        { return it.err }
