// Package wire provides an endian-aware cursor over in-memory binary buffers.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Cursor reads fixed-width integers, doubles, text lines and raw byte runs
// from an in-memory buffer. The byte order is switchable at any point, which
// the file header loader uses after its endianness probe.
type Cursor struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
}

// NewCursor returns a cursor over buf reading little-endian values.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf, order: binary.LittleEndian}
}

// SetOrder switches the byte order for all subsequent reads.
func (c *Cursor) SetOrder(order binary.ByteOrder) {
	c.order = order
}

// Order returns the current byte order.
func (c *Cursor) Order() binary.ByteOrder {
	return c.order
}

// Len returns the total buffer length in bytes.
func (c *Cursor) Len() int {
	return len(c.buf)
}

// Tell returns the current read offset.
func (c *Cursor) Tell() int {
	return c.pos
}

// Seek moves the read offset to an absolute position.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.buf) {
		return fmt.Errorf("wire: seek to %d outside buffer of %d bytes", pos, len(c.buf))
	}
	c.pos = pos
	return nil
}

// Skip advances the read offset by n bytes.
func (c *Cursor) Skip(n int) error {
	return c.Seek(c.pos + n)
}

func (c *Cursor) take(n int) ([]byte, error) {
	if c.pos+n > len(c.buf) {
		return nil, fmt.Errorf("wire: short read of %d bytes at offset %d (buffer is %d bytes)", n, c.pos, len(c.buf))
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Bytes reads a raw run of n bytes.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Uint8 reads one byte.
func (c *Cursor) Uint8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads a 2-byte unsigned integer in the current byte order.
func (c *Cursor) Uint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return c.order.Uint16(b), nil
}

// Uint32 reads a 4-byte unsigned integer in the current byte order.
func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return c.order.Uint32(b), nil
}

// Int32 reads a 4-byte signed integer in the current byte order.
func (c *Cursor) Int32() (int32, error) {
	v, err := c.Uint32()
	return int32(v), err
}

// Uint24 reads a 3-byte unsigned integer in the current byte order.
// Segment index tables store absolute file offsets at this width.
func (c *Cursor) Uint24() (uint32, error) {
	b, err := c.take(3)
	if err != nil {
		return 0, err
	}
	if c.order == binary.LittleEndian {
		return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
	}
	return uint32(b[2]) | uint32(b[1])<<8 | uint32(b[0])<<16, nil
}

// Float64 reads an 8-byte IEEE 754 double in the current byte order.
func (c *Cursor) Float64() (float64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(c.order.Uint64(b)), nil
}

// Float64s reads n consecutive doubles.
func (c *Cursor) Float64s(n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		v, err := c.Float64()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Line reads up to and including the next '\n' and returns the text without
// the trailing newline or carriage return. Header preambles are stored as
// newline-terminated text lines.
func (c *Cursor) Line() (string, error) {
	rest := c.buf[c.pos:]
	i := bytes.IndexByte(rest, '\n')
	if i < 0 {
		return "", fmt.Errorf("wire: unterminated text line at offset %d", c.pos)
	}
	line := rest[:i]
	c.pos += i + 1
	return string(bytes.TrimRight(line, "\r")), nil
}
