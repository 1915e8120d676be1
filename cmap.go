// Package cmap resolves the OpenType/TrueType "cmap" table: given a set of
// Unicode codepoint ranges, it returns the corresponding glyph-id ranges.
// Only subtable Format 4 (segment mapping to delta values) and Format 12
// (segmented coverage) are supported; directory parsing, rasterization, and
// the FFI boundary to a path partitioner are handled elsewhere.
package cmap

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Resolve. Malformed bytes are failures;
// unmapped codepoints are not — those come back as ordinary
// MappedGlyphRange entries with glyph id 0.
var (
	ErrUnexpectedEndOfData     = errors.New("cmap: unexpected end of data")
	ErrUnsupportedCmapVersion  = errors.New("cmap: unsupported version")
	ErrUnsupportedCmapEncoding = errors.New("cmap: unsupported encoding")
	ErrUnsupportedCmapFormat   = errors.New("cmap: unsupported subtable format")
)

// MaxCmapSegments bounds the number of Format 4 segments or Format 12 groups
// this resolver will accept, guarding against hostile or corrupt subtables
// that claim an implausible segment count. A larger count is rejected with
// ErrUnexpectedEndOfData before any segment is read.
const MaxCmapSegments = 20000

// Accepted (platformID, encodingID) pairs. (0, *) is handled separately
// since it accepts any encodingID. Resolve uses the first acceptable record
// in file order; no pair takes priority over another.
const (
	platformUnicode       = 0
	platformMicrosoft     = 3
	msEncodingUnicodeBMP  = 1
	msEncodingUnicodeUCS4 = 10
)

// CodepointRange is an inclusive Unicode scalar value range.
type CodepointRange struct {
	Start, End uint32
}

// GlyphRange is an inclusive glyph-id range. The value 0 is the missing
// glyph sentinel.
type GlyphRange struct {
	Start, End uint16
}

// MappedGlyphRange pairs a starting codepoint with the glyph range it maps
// to. Glyphs.End-Glyphs.Start+1 codepoints starting at CodepointStart map
// onto the glyph range; a missing-glyph entry covers one codepoint.
type MappedGlyphRange struct {
	CodepointStart uint32
	Glyphs         GlyphRange
}

// GlyphMapping is an ordered sequence of MappedGlyphRange, in the order
// codepoints were consumed from the input ranges.
type GlyphMapping []MappedGlyphRange

// wrapAt annotates a sentinel error with the byte offset at which it was
// encountered, matching the "cmap: bad subtable %d" positional-context
// style sfnt_cmap.go's parseCmap uses for its own errors. err stays
// reachable via errors.Is for callers that need to distinguish sentinels.
func wrapAt(err error, offset uint32) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("cmap: %w at offset %d", err, offset)
}

// Resolve reads the cmap table in cmapBytes and returns the glyph ranges
// that the given codepoint ranges map to. cmapBytes is a complete "cmap"
// table exactly as laid out on disk, big-endian throughout; it is only
// read, never retained past return. The first error aborts the whole
// query; no partial GlyphMapping is returned.
func Resolve(cmapBytes []byte, codepointRanges []CodepointRange) (GlyphMapping, error) {
	header := newCursor(cmapBytes)
	version, err := header.readU16()
	if err != nil {
		return nil, wrapAt(err, header.pos)
	}
	if version != 0 {
		return nil, wrapAt(ErrUnsupportedCmapVersion, header.pos)
	}
	numTables, err := header.readU16()
	if err != nil {
		return nil, wrapAt(err, header.pos)
	}

	for i := 0; i < int(numTables); i++ {
		recordOffset := header.pos
		platformID, err := header.readU16()
		if err != nil {
			return nil, wrapAt(err, recordOffset)
		}
		encodingID, err := header.readU16()
		if err != nil {
			return nil, wrapAt(err, recordOffset)
		}
		offset, err := header.readU32()
		if err != nil {
			return nil, wrapAt(err, recordOffset)
		}
		if !acceptableEncoding(platformID, encodingID) {
			continue
		}

		sub := newCursor(cmapBytes)
		if err := sub.jump(offset); err != nil {
			return nil, wrapAt(err, offset)
		}
		format, err := sub.readU16()
		if err != nil {
			return nil, wrapAt(err, offset)
		}
		switch format {
		case 4:
			return resolveFormat4(sub, codepointRanges)
		case 12:
			return resolveFormat12(sub, codepointRanges)
		default:
			return nil, wrapAt(fmt.Errorf("%w: format %d", ErrUnsupportedCmapFormat, format), offset)
		}
	}
	return nil, wrapAt(ErrUnsupportedCmapEncoding, header.pos)
}

func acceptableEncoding(platformID, encodingID uint16) bool {
	if platformID == platformUnicode {
		return true
	}
	return platformID == platformMicrosoft &&
		(encodingID == msEncodingUnicodeBMP || encodingID == msEncodingUnicodeUCS4)
}
