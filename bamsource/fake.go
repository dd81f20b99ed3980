package bamsource

import "github.com/biogo/hts/sam"

// FakeProvider is an in-memory Provider for tests: it hands back the given
// header and filters recs by reference to build each shard's iterator.
type FakeProvider struct {
	header *sam.Header
	recs   []*sam.Record
}

// NewFakeProvider creates a Provider that serves recs without touching
// disk.
func NewFakeProvider(header *sam.Header, recs []*sam.Record) *FakeProvider {
	return &FakeProvider{header: header, recs: recs}
}

// GetHeader implements Provider.
func (p *FakeProvider) GetHeader() (*sam.Header, error) { return p.header, nil }

// Close implements Provider.
func (p *FakeProvider) Close() error { return nil }

// Shards implements Provider, mirroring BAMProvider.Shards: one shard per
// reference plus a trailing unmapped shard.
func (p *FakeProvider) Shards() ([]Shard, error) {
	shards := make([]Shard, 0, len(p.header.Refs())+1)
	for _, ref := range p.header.Refs() {
		shards = append(shards, Shard{RefID: ref.ID(), RefName: ref.Name()})
	}
	shards = append(shards, Shard{RefID: -1, RefName: ""})
	return shards, nil
}

// NewIterator implements Provider.
func (p *FakeProvider) NewIterator(shard Shard) Iterator {
	var matching []*sam.Record
	for _, r := range p.recs {
		refID := -1
		if r.Ref != nil {
			refID = r.Ref.ID()
		}
		if refID == shard.RefID {
			matching = append(matching, r)
		}
	}
	return &fakeIterator{recs: matching}
}

type fakeIterator struct {
	recs []*sam.Record
	rec  *sam.Record
}

func (it *fakeIterator) Scan() bool {
	if len(it.recs) == 0 {
		return false
	}
	it.rec = it.recs[0]
	it.recs = it.recs[1:]
	return true
}

func (it *fakeIterator) Record() *sam.Record { return it.rec }
func (it *fakeIterator) Err() error          { return nil }
func (it *fakeIterator) Close() error        { return nil }
