package cmap

import "encoding/binary"

// cursor is a bounds-checked, advancing view over a borrowed byte slice. It
// never mutates the underlying buffer and never allocates; copying a cursor
// is cheap and yields an independent pointer into the same bytes, which is
// how the Format 4 resolver keeps its parallel array pointers.
type cursor struct {
	data []byte
	pos  uint32
}

func newCursor(data []byte) cursor {
	return cursor{data: data}
}

// jump sets the position to an absolute offset from the start of the slice.
// offset equal to len(data) is legal (reads zero bytes); offset beyond that
// fails.
func (c *cursor) jump(offset uint32) error {
	if uint32(len(c.data)) < offset {
		return ErrUnexpectedEndOfData
	}
	c.pos = offset
	return nil
}

func (c *cursor) readU16() (uint16, error) {
	if uint32(len(c.data))-c.pos < 2 {
		return 0, ErrUnexpectedEndOfData
	}
	v := binary.BigEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *cursor) readI16() (int16, error) {
	v, err := c.readU16()
	return int16(v), err
}

func (c *cursor) readU32() (uint32, error) {
	if uint32(len(c.data))-c.pos < 4 {
		return 0, ErrUnexpectedEndOfData
	}
	v := binary.BigEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// peekU16At reads a u16 at an absolute offset without disturbing c's own
// position; used by the binary searches, which probe a temporary offset
// without advancing the cursor they're searching with.
func (c cursor) peekU16At(offset uint32) (uint16, error) {
	if err := c.jump(offset); err != nil {
		return 0, err
	}
	return c.readU16()
}

func (c cursor) peekU32At(offset uint32) (uint32, error) {
	if err := c.jump(offset); err != nil {
		return 0, err
	}
	return c.readU32()
}

func (c cursor) peekI16At(offset uint32) (int16, error) {
	if err := c.jump(offset); err != nil {
		return 0, err
	}
	return c.readI16()
}
