package cmap

// resolveFormat4 decodes a Format 4 "segment mapping to delta values"
// subtable and answers codepointRanges against it. sub must already be
// positioned just after the format word.
func resolveFormat4(sub cursor, codepointRanges []CodepointRange) (GlyphMapping, error) {
	if _, err := sub.readU16(); err != nil { // length
		return nil, wrapAt(err, sub.pos)
	}
	if _, err := sub.readU16(); err != nil { // language
		return nil, wrapAt(err, sub.pos)
	}
	segCountPos := sub.pos
	segCountX2, err := sub.readU16()
	if err != nil {
		return nil, wrapAt(err, segCountPos)
	}
	segCount := segCountX2 / 2
	if MaxCmapSegments < segCount {
		return nil, wrapAt(ErrUnexpectedEndOfData, segCountPos)
	}
	if _, err := sub.readU16(); err != nil { // searchRange, unused: we binary search ourselves
		return nil, wrapAt(err, sub.pos)
	}
	if _, err := sub.readU16(); err != nil { // entrySelector
		return nil, wrapAt(err, sub.pos)
	}
	if _, err := sub.readU16(); err != nil { // rangeShift
		return nil, wrapAt(err, sub.pos)
	}

	// Four parallel array pointers, plus a fifth into glyphIdArray, set up
	// by successive jumps sized in seg_count*2 bytes (an extra pad word
	// after endCode). The final jump only bounds-checks that glyphIdArray's
	// base offset is in range; the array itself is addressed later,
	// relative to idRangeOffsets, by the indirect lookup in next().
	endCodes := sub
	startCodes := sub
	if err := startCodes.jump(sub.pos + uint32(segCount)*2 + 2); err != nil {
		return nil, wrapAt(err, startCodes.pos)
	}
	idDeltas := startCodes
	if err := idDeltas.jump(startCodes.pos + uint32(segCount)*2); err != nil {
		return nil, wrapAt(err, idDeltas.pos)
	}
	idRangeOffsets := idDeltas
	if err := idRangeOffsets.jump(idDeltas.pos + uint32(segCount)*2); err != nil {
		return nil, wrapAt(err, idRangeOffsets.pos)
	}
	glyphIDArrayBase := idRangeOffsets
	if err := glyphIDArrayBase.jump(idRangeOffsets.pos + uint32(segCount)*2); err != nil {
		return nil, wrapAt(err, glyphIDArrayBase.pos)
	}

	f4 := &format4Table{
		endCodes:       endCodes,
		startCodes:     startCodes,
		idDeltas:       idDeltas,
		idRangeOffsets: idRangeOffsets,
		segCount:       uint32(segCount),
	}

	var out GlyphMapping
	for _, r := range codepointRanges {
		cr := r
		for cr.Start <= cr.End {
			entry, advanceTo, err := f4.next(cr)
			if err != nil {
				return nil, err
			}
			out = append(out, entry)
			cr.Start = advanceTo
		}
	}
	return out, nil
}

type format4Table struct {
	endCodes, startCodes, idDeltas, idRangeOffsets cursor
	segCount uint32
}

// next produces the single next MappedGlyphRange for cr and the codepoint
// immediately following the range it covers.
func (f4 *format4Table) next(cr CodepointRange) (MappedGlyphRange, uint32, error) {
	if cr.Start > 0xFFFF {
		// Format 4 cannot represent codepoints above the BMP.
		return MappedGlyphRange{CodepointStart: cr.Start, Glyphs: GlyphRange{}}, cr.Start + 1, nil
	}

	cpStart := uint16(cr.Start)
	cpEnd := uint16(0xFFFF)
	if cr.End < 0xFFFF {
		cpEnd = uint16(cr.End)
	}

	low, high := uint32(0), f4.segCount
	segment := -1
	endBase, startBase := f4.endCodes.pos, f4.startCodes.pos
	for low < high {
		mid := (low + high) / 2
		endCode, err := f4.endCodes.peekU16At(endBase + mid*2)
		if err != nil {
			return MappedGlyphRange{}, 0, wrapAt(err, endBase+mid*2)
		}
		if cpStart > endCode {
			low = mid + 1
			continue
		}
		startCode, err := f4.startCodes.peekU16At(startBase + mid*2)
		if err != nil {
			return MappedGlyphRange{}, 0, wrapAt(err, startBase+mid*2)
		}
		if cpStart < startCode {
			high = mid
			continue
		}
		segment = int(mid)
		break
	}

	if segment < 0 {
		return MappedGlyphRange{CodepointStart: cr.Start, Glyphs: GlyphRange{}}, cr.Start + 1, nil
	}

	i := uint32(segment)
	startCode, err := f4.startCodes.peekU16At(startBase + i*2)
	if err != nil {
		return MappedGlyphRange{}, 0, wrapAt(err, startBase+i*2)
	}
	endCode, err := f4.endCodes.peekU16At(endBase + i*2)
	if err != nil {
		return MappedGlyphRange{}, 0, wrapAt(err, endBase+i*2)
	}
	idDeltaPos := f4.idDeltas.pos + i*2
	idDelta, err := f4.idDeltas.peekI16At(idDeltaPos)
	if err != nil {
		return MappedGlyphRange{}, 0, wrapAt(err, idDeltaPos)
	}
	idRangeOffsetPos := f4.idRangeOffsets.pos + i*2
	idRangeOffset, err := f4.idRangeOffsets.peekU16At(idRangeOffsetPos)
	if err != nil {
		return MappedGlyphRange{}, 0, wrapAt(err, idRangeOffsetPos)
	}

	cpEndClipped := cpEnd
	if endCode < cpEndClipped {
		cpEndClipped = endCode
	}
	advanceTo := uint32(cpEndClipped) + 1

	if idRangeOffset == 0 {
		// Microsoft's documentation is contradictory about whether the
		// code offset or the actual code is added to idDelta here; the
		// actual code is correct (see DESIGN.md / original_source).
		glyphStart := uint16(int16(cpStart) + idDelta)
		glyphEnd := uint16(int16(cpEndClipped) + idDelta)
		return MappedGlyphRange{
			CodepointStart: uint32(cpStart),
			Glyphs:         GlyphRange{Start: glyphStart, End: glyphEnd},
		}, advanceTo, nil
	}

	// Indirect case: only the first codepoint of the covered sub-range is
	// resolved here; the outer loop calls next() again for the rest, so
	// each codepoint gets its own single-entry MappedGlyphRange.
	codeOffset := uint32(cpStart) - uint32(startCode)
	// idRangeOffset is in bytes from its own slot; base(id_range_offset) +
	// i*2 + codeOffset*2 + idRangeOffset.
	glyphOffset := f4.idRangeOffsets.pos + i*2 + codeOffset*2 + uint32(idRangeOffset)
	rawGlyph, err := f4.idRangeOffsets.peekU16At(glyphOffset)
	if err != nil {
		return MappedGlyphRange{}, 0, wrapAt(err, glyphOffset)
	}

	codepoint := uint32(startCode) + codeOffset
	if rawGlyph == 0 {
		return MappedGlyphRange{CodepointStart: codepoint, Glyphs: GlyphRange{}}, codepoint + 1, nil
	}
	glyph := uint16(int16(rawGlyph) + idDelta)
	return MappedGlyphRange{
		CodepointStart: codepoint,
		Glyphs:         GlyphRange{Start: glyph, End: glyph},
	}, codepoint + 1, nil
}
