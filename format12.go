package cmap

// segment is one group of the Format 12 segmented-coverage subtable.
type segment struct {
	startCharCode, endCharCode, startGlyphID uint32
}

// resolveFormat12 decodes a Format 12 "segmented coverage" subtable and
// answers codepointRanges against it. sub must already be positioned just
// after the format word.
func resolveFormat12(sub cursor, codepointRanges []CodepointRange) (GlyphMapping, error) {
	if _, err := sub.readU16(); err != nil { // reserved
		return nil, wrapAt(err, sub.pos)
	}
	if _, err := sub.readU32(); err != nil { // length
		return nil, wrapAt(err, sub.pos)
	}
	if _, err := sub.readU32(); err != nil { // language
		return nil, wrapAt(err, sub.pos)
	}
	numGroupsPos := sub.pos
	numGroups, err := sub.readU32()
	if err != nil {
		return nil, wrapAt(err, numGroupsPos)
	}
	if MaxCmapSegments < numGroups {
		return nil, wrapAt(ErrUnexpectedEndOfData, numGroupsPos)
	}

	groups := sub
	groupsBase := groups.pos

	readGroup := func(i uint32) (segment, error) {
		groupOffset := groupsBase + i*12
		startCharCode, err := groups.peekU32At(groupOffset)
		if err != nil {
			return segment{}, wrapAt(err, groupOffset)
		}
		endCharCode, err := groups.peekU32At(groupOffset + 4)
		if err != nil {
			return segment{}, wrapAt(err, groupOffset+4)
		}
		startGlyphID, err := groups.peekU32At(groupOffset + 8)
		if err != nil {
			return segment{}, wrapAt(err, groupOffset+8)
		}
		return segment{startCharCode, endCharCode, startGlyphID}, nil
	}

	var out GlyphMapping
	for _, r := range codepointRanges {
		cr := r
		for cr.Start <= cr.End {
			low, high := uint32(0), numGroups
			found := -1
			var seg segment
			for low < high {
				mid := (low + high) / 2
				s, err := readGroup(mid)
				if err != nil {
					return nil, err
				}
				if cr.Start < s.startCharCode {
					high = mid
				} else if cr.Start > s.endCharCode {
					low = mid + 1
				} else {
					found = int(mid)
					seg = s
					break
				}
			}

			if found < 0 {
				out = append(out, MappedGlyphRange{CodepointStart: cr.Start, Glyphs: GlyphRange{}})
				cr.Start++
				continue
			}

			end := cr.End
			if seg.endCharCode < end {
				end = seg.endCharCode
			}
			out = append(out, MappedGlyphRange{
				CodepointStart: cr.Start,
				Glyphs: GlyphRange{
					Start: uint16(seg.startGlyphID + cr.Start - seg.startCharCode),
					End:   uint16(seg.startGlyphID + end - seg.startCharCode),
				},
			})
			cr.Start = end + 1
		}
	}
	return out, nil
}
