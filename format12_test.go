package cmap

import (
	"errors"
	"testing"

	"github.com/tdewolff/test"
)

func TestFormat12SpanningSegment(t *testing.T) {
	b := buildFormat12Cmap([]group12{
		{startCharCode: 0x1F600, endCharCode: 0x1F64F, startGlyphID: 1000},
	})

	mapping, err := Resolve(b, []CodepointRange{{Start: 0x1F610, End: 0x1F620}})
	test.Error(t, err)
	test.T(t, len(mapping), 1)
	test.T(t, mapping[0], MappedGlyphRange{
		CodepointStart: 0x1F610,
		Glyphs:         GlyphRange{Start: 1016, End: 1032},
	})
}

func TestFormat12StraddlingGap(t *testing.T) {
	groups := []group12{
		{startCharCode: 0x20, endCharCode: 0x7E, startGlyphID: 100},
		{startCharCode: 0xA0, endCharCode: 0xFF, startGlyphID: 200},
	}
	b := buildFormat12Cmap(groups)

	mapping, err := Resolve(b, []CodepointRange{{Start: 0x7E, End: 0xA0}})
	test.Error(t, err)
	test.T(t, len(mapping), 35) // one boundary hit + 33 gap singles + one boundary hit

	glyphFor7E := uint16(groups[0].startGlyphID + (0x7E - groups[0].startCharCode))
	test.T(t, mapping[0], MappedGlyphRange{
		CodepointStart: 0x7E,
		Glyphs:         GlyphRange{Start: glyphFor7E, End: glyphFor7E},
	})
	for i, cp := 1, uint32(0x7F); cp <= 0x9F; i, cp = i+1, cp+1 {
		test.T(t, mapping[i], MappedGlyphRange{CodepointStart: cp, Glyphs: GlyphRange{}})
	}
	test.T(t, mapping[34], MappedGlyphRange{
		CodepointStart: 0xA0,
		Glyphs:         GlyphRange{Start: 200, End: 200},
	})
}

func TestFormat12UnmappedCodepoint(t *testing.T) {
	b := buildFormat12Cmap([]group12{
		{startCharCode: 0x1F600, endCharCode: 0x1F64F, startGlyphID: 1000},
	})

	mapping, err := Resolve(b, []CodepointRange{{Start: 0x41, End: 0x41}})
	test.Error(t, err)
	test.T(t, len(mapping), 1)
	test.T(t, mapping[0], MappedGlyphRange{CodepointStart: 0x41, Glyphs: GlyphRange{}})
}

func TestFormat12TooManyGroups(t *testing.T) {
	groups := make([]group12, MaxCmapSegments+1)
	for i := range groups {
		groups[i] = group12{startCharCode: uint32(i * 2), endCharCode: uint32(i*2 + 1), startGlyphID: uint32(i)}
	}
	b := buildFormat12Cmap(groups)

	_, err := Resolve(b, []CodepointRange{{Start: 0, End: 1}})
	test.T(t, errors.Is(err, ErrUnexpectedEndOfData), true)
}
