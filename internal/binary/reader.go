// Package binary provides bounds-checked binary reading primitives used by
// the container extractors.
package binary

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Unsigned is the set of fixed-width integers the readers decode.
type Unsigned interface {
	uint8 | uint16 | uint32 | uint64
}

// width returns the encoded size of T in bytes.
func width[T Unsigned]() int {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	default:
		return 8
	}
}

// decode converts buf into T using the given byte order.
func decode[T Unsigned](buf []byte, order binary.ByteOrder) T {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return T(buf[0])
	case uint16:
		return T(order.Uint16(buf))
	case uint32:
		return T(order.Uint32(buf))
	default:
		return T(order.Uint64(buf))
	}
}

// OutOfBoundsError is returned when a structure claims to extend past the
// end of the file.
type OutOfBoundsError struct {
	Path   string
	What   string
	Offset int64
	Length int
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	if e.Offset < 0 || e.Offset >= e.Size {
		return fmt.Sprintf("%s: offset %d out of bounds (file size: %d) while reading %s",
			e.Path, e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("%s: read of %d bytes at offset %d would exceed file size %d while reading %s",
		e.Path, e.Length, e.Offset, e.Size, e.What)
}

// SafeReader wraps io.ReaderAt with bounds checking and helpful error messages.
type SafeReader struct {
	r    io.ReaderAt
	path string
	size int64
}

// NewSafeReader creates a new SafeReader.
func NewSafeReader(r io.ReaderAt, size int64, path string) *SafeReader {
	return &SafeReader{
		r:    r,
		size: size,
		path: path,
	}
}

// Path returns the file path associated with this reader.
func (sr *SafeReader) Path() string {
	return sr.path
}

// Size returns the readable size.
func (sr *SafeReader) Size() int64 {
	return sr.size
}

// ReadAt reads bytes at the given offset. what names the structure being read
// and only appears in error messages.
func (sr *SafeReader) ReadAt(b []byte, off int64, what string) error {
	if off < 0 || off >= sr.size || off+int64(len(b)) > sr.size {
		return &OutOfBoundsError{Path: sr.path, What: what, Offset: off, Length: len(b), Size: sr.size}
	}

	n, err := sr.r.ReadAt(b, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%s: failed to read %s at offset %d: %w", sr.path, what, off, err)
	}

	if n < len(b) {
		return fmt.Errorf("%s: short read for %s at offset %d: got %d bytes, expected %d",
			sr.path, what, off, n, len(b))
	}

	return nil
}

// Bytes reads n bytes at off into a fresh slice.
func (sr *SafeReader) Bytes(off int64, n int64, what string) ([]byte, error) {
	if n < 0 || n > sr.size {
		return nil, fmt.Errorf("%s: invalid length %d while reading %s", sr.path, n, what)
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if err := sr.ReadAt(buf, off, what); err != nil {
		return nil, err
	}
	return buf, nil
}

// Read reads a big-endian value of type T from the given offset.
func Read[T Unsigned](sr *SafeReader, off int64, what string) (T, error) {
	return ReadEndian[T](sr, off, what, BigEndian)
}

// Cursor walks an in-memory buffer. Reads past the end set a sticky error
// and return zero values, so a run of reads can be checked once.
type Cursor struct {
	buf  []byte
	pos  int
	what string
	err  error
}

// NewCursor creates a cursor over buf. what names the structure for errors.
func NewCursor(buf []byte, what string) *Cursor {
	return &Cursor{buf: buf, what: what}
}

// Err returns the first read error, if any.
func (c *Cursor) Err() error {
	return c.err
}

// Pos returns the current position.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	if c.err != nil {
		return 0
	}
	return len(c.buf) - c.pos
}

// Next returns the next n bytes without copying.
func (c *Cursor) Next(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.pos+n > len(c.buf) {
		c.err = fmt.Errorf("%s: need %d bytes at position %d, have %d", c.what, n, c.pos, len(c.buf)-c.pos)
		return nil
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b
}

// Skip advances n bytes.
func (c *Cursor) Skip(n int) {
	c.Next(n)
}

// Rest returns every unread byte.
func (c *Cursor) Rest() []byte {
	return c.Next(c.Remaining())
}

// CursorLE reads a little-endian T and advances.
func CursorLE[T Unsigned](c *Cursor) T {
	b := c.Next(width[T]())
	if b == nil {
		var zero T
		return zero
	}
	return decode[T](b, binary.LittleEndian)
}

// CursorBE reads a big-endian T and advances.
func CursorBE[T Unsigned](c *Cursor) T {
	b := c.Next(width[T]())
	if b == nil {
		var zero T
		return zero
	}
	return decode[T](b, binary.BigEndian)
}
