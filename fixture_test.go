package cmap

import (
	"github.com/tdewolff/parse/v2"
)

// segment4 describes one Format 4 segment for test fixtures.
type segment4 struct {
	start, end    uint16
	idDelta       int16
	idRangeOffset uint16
}

// buildFormat4Cmap writes a complete "cmap" table (header, one Microsoft
// Unicode BMP encoding record, and a Format 4 subtable) the way
// cmapWriteFormat4 in the teacher repo builds its subtable, but with
// caller-controlled segments rather than a derived-from-runes encoder.
func buildFormat4Cmap(segs []segment4, glyphIDArray []uint16) []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(0)  // version
	w.WriteUint16(1)  // numTables
	w.WriteUint16(3)  // platformID: Microsoft
	w.WriteUint16(1)  // encodingID: Unicode BMP
	w.WriteUint32(12) // subtableOffset
	writeFormat4Body(w, segs, glyphIDArray)
	return w.Bytes()
}

// group12 describes one Format 12 group for test fixtures.
type group12 struct {
	startCharCode, endCharCode, startGlyphID uint32
}

// buildFormat12Cmap writes a complete "cmap" table (header, one Unicode
// platform encoding record, and a Format 12 subtable), mirroring
// cmapWriteFormat12 in the teacher repo.
func buildFormat12Cmap(groups []group12) []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(0)  // version
	w.WriteUint16(1)  // numTables
	w.WriteUint16(0)  // platformID: Unicode
	w.WriteUint16(4)  // encodingID: Unicode UCS-4
	w.WriteUint32(12) // subtableOffset

	w.WriteUint16(12) // format
	w.WriteUint16(0)  // reserved
	w.WriteUint32(0)  // length, unused by the resolver
	w.WriteUint32(0)  // language
	w.WriteUint32(uint32(len(groups)))

	for _, g := range groups {
		w.WriteUint32(g.startCharCode)
		w.WriteUint32(g.endCharCode)
		w.WriteUint32(g.startGlyphID)
	}
	return w.Bytes()
}
