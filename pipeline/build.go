package pipeline

import (
	"context"
	"regexp"

	"github.com/biogo/hts/sam"
	"github.com/grailbio/rnaquant/bamsource"
	"github.com/grailbio/rnaquant/barcode"
	"github.com/grailbio/rnaquant/config"
	"github.com/grailbio/rnaquant/dedup"
	"github.com/grailbio/rnaquant/overlap"
	"github.com/grailbio/rnaquant/readmodel"
	"github.com/grailbio/rnaquant/region"
	"github.com/grailbio/rnaquant/rnaerrors"
	"github.com/grailbio/rnaquant/umi"
)

// Build constructs a Driver and the region Catalogue it counts against from
// a validated Config: it reads the region source, builds the catalogue
// index, and translates every config table into the corresponding domain
// objects the Driver operates on.
func Build(ctx context.Context, cfg *config.Config) (*Driver, *region.Catalogue, error) {
	cat, err := region.BuildCatalogueFromAnnotation(ctx, cfg.Input.RegionSource.Path, cfg.Input.FeatureType,
		cfg.Input.IDAttribute, cfg.Input.AggregationIDAttribute, region.ParseDuplicateHandling(cfg.Input.DuplicateMode))
	if err != nil {
		return nil, nil, err
	}
	idx := region.NewIndex(cat)

	filters, err := buildFilters(cfg.Filters)
	if err != nil {
		return nil, nil, err
	}

	var barcodeExtractor *barcode.Extractor
	var whitelist *barcode.Whitelist
	if cfg.CellBarcodes.Enabled {
		barcodeExtractor, err = buildExtractor(cfg.CellBarcodes.SourceKind, cfg.CellBarcodes.Tag,
			cfg.CellBarcodes.NameRegexp, cfg.CellBarcodes.SeqStart, cfg.CellBarcodes.SeqEnd)
		if err != nil {
			return nil, nil, err
		}
		if cfg.CellBarcodes.WhitelistPath != "" {
			whitelist, err = barcode.ReadWhitelist(ctx, cfg.CellBarcodes.WhitelistPath)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	var umiExtractor *barcode.Extractor
	if cfg.UMI.Enabled {
		umiExtractor, err = buildExtractor(cfg.UMI.SourceKind, cfg.UMI.Tag, cfg.UMI.NameRegexp, cfg.UMI.SeqStart, cfg.UMI.SeqEnd)
		if err != nil {
			return nil, nil, err
		}
	}

	d := &Driver{
		Provider:           &bamsource.BAMProvider{Path: cfg.Input.BAM, Index: cfg.Input.Index},
		Filters:            filters,
		Direction:          parseDirection(cfg.Strategy.Direction),
		BarcodeExtractor:   barcodeExtractor,
		Whitelist:          whitelist,
		BarcodeMaxHamming:  cfg.CellBarcodes.MaxHammingDist,
		UMIExtractor:       umiExtractor,
		UMIGrouping:        parseGrouping(cfg.UMI.Grouping),
		UMIMaxHamming:      cfg.UMI.MaxHamming,
		Resolver:           &overlap.Resolver{Index: idx, Mode: overlap.Mode(cfg.Strategy.Overlap), MultiRegion: overlap.MultiRegionDisposition(cfg.Strategy.MultiRegion)},
		DedupMode:          dedup.Mode(cfg.Dedup.Mode),
		SCPosition:         cfg.Dedup.SCPosition,
		MaxSkip:            cfg.Dedup.MaxSkip,
		Parallelism:        cfg.Output.Parallelism,
		CorrectForClipping: cfg.Input.CorrectReadsForClipping,
	}
	return d, cat, nil
}

func buildFilters(in []config.Filter) ([]readmodel.Filter, error) {
	out := make([]readmodel.Filter, 0, len(in))
	for _, f := range in {
		kind := readmodel.FilterKind(f.Kind)
		switch kind {
		case readmodel.FilterMultimapper, readmodel.FilterSpliced, readmodel.FilterUnmapped,
			readmodel.FilterSecondary, readmodel.FilterSupplementary, readmodel.FilterDuplicate,
			readmodel.FilterMapQBelow, readmodel.FilterReference:
		default:
			return nil, rnaerrors.E(rnaerrors.Configuration, "unknown filter.kind "+f.Kind)
		}
		action := readmodel.Remove
		if f.Action == "keep_only" {
			action = readmodel.KeepOnly
		}
		out = append(out, readmodel.Filter{
			Kind:          kind,
			Action:        action,
			MapQThreshold: byte(f.MapQThreshold),
			ReferenceName: f.Reference,
		})
	}
	return out, nil
}

func buildExtractor(sourceKind, tag, nameRegexp string, seqStart, seqEnd int) (*barcode.Extractor, error) {
	seg := barcode.Segment{Kind: barcode.SourceKind(sourceKind)}
	switch seg.Kind {
	case barcode.SourceTag:
		seg.Tag = sam.NewTag(tag)
	case barcode.SourceReadName:
		re, err := regexp.Compile(nameRegexp)
		if err != nil {
			return nil, rnaerrors.E(rnaerrors.Configuration, "invalid read_name_regexp", err)
		}
		seg.NameRegexp = re
	case barcode.SourceReadSequence:
		seg.SeqStart, seg.SeqEnd = seqStart, seqEnd
	case barcode.SourceNone:
	default:
		return nil, rnaerrors.E(rnaerrors.Configuration, "unknown source kind "+sourceKind)
	}
	return &barcode.Extractor{Segments: []barcode.Segment{seg}}, nil
}

func parseDirection(s string) readmodel.LibraryDirection {
	switch s {
	case "forward":
		return readmodel.DirectionForward
	case "reverse":
		return readmodel.DirectionReverse
	case "ignore":
		return readmodel.DirectionIgnore
	default:
		return readmodel.DirectionUnstranded
	}
}

func parseGrouping(s string) umi.GroupingMethod {
	switch s {
	case "cluster":
		return umi.GroupCluster
	case "adjacency":
		return umi.GroupAdjacency
	case "directional":
		return umi.GroupDirectional
	default:
		return umi.GroupUnique
	}
}
