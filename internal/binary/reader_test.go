package binary

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSafeReader_ReadAt_Success(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.flac")

	buf := make([]byte, 2)
	if err := sr.ReadAt(buf, 1, "test read"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf[0] != 0x02 || buf[1] != 0x03 {
		t.Errorf("expected [0x02, 0x03], got [0x%02x, 0x%02x]", buf[0], buf[1])
	}
}

func TestSafeReader_ReadAt_OutOfBounds(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.flac")

	tests := []struct {
		name string
		off  int64
		n    int
	}{
		{"offset past end", 10, 2},
		{"negative offset", -1, 1},
		{"read spans end", 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sr.ReadAt(make([]byte, tt.n), tt.off, "block header")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "test.flac") {
				t.Errorf("error should contain filename: %v", err)
			}
			if !strings.Contains(err.Error(), "block header") {
				t.Errorf("error should contain context: %v", err)
			}
			var oob *OutOfBoundsError
			if !errors.As(err, &oob) {
				t.Fatalf("expected *OutOfBoundsError, got %T", err)
			}
			if oob.Offset != tt.off || oob.Length != tt.n {
				t.Errorf("OutOfBoundsError = %+v", oob)
			}
		})
	}
}

func TestReadEndian(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "x")

	if v, err := ReadBE[uint16](sr, 0, "u16"); err != nil || v != 0x0102 {
		t.Errorf("ReadBE[uint16] = %#x, %v", v, err)
	}
	if v, err := ReadLE[uint16](sr, 0, "u16"); err != nil || v != 0x0201 {
		t.Errorf("ReadLE[uint16] = %#x, %v", v, err)
	}
	if v, err := Read[uint32](sr, 4, "u32"); err != nil || v != 0x05060708 {
		t.Errorf("Read[uint32] = %#x, %v", v, err)
	}
	if v, err := ReadLE[uint64](sr, 0, "u64"); err != nil || v != 0x0807060504030201 {
		t.Errorf("ReadLE[uint64] = %#x, %v", v, err)
	}
	if _, err := ReadBE[uint64](sr, 1, "u64"); err == nil {
		t.Error("expected error reading past end")
	}
}

func TestSafeReader_Bytes(t *testing.T) {
	data := []byte("fLaCdata")
	sr := NewSafeReader(bytes.NewReader(data), int64(len(data)), "x")

	b, err := sr.Bytes(4, 4, "payload")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "data" {
		t.Errorf("Bytes = %q, want %q", b, "data")
	}
	if b, err := sr.Bytes(0, 0, "empty"); err != nil || len(b) != 0 {
		t.Errorf("zero length read = %v, %v", b, err)
	}
	if _, err := sr.Bytes(0, 100, "huge"); err == nil {
		t.Error("expected error for length beyond size")
	}
}

func TestCursor(t *testing.T) {
	c := NewCursor([]byte{0x03, 0x00, 0x00, 0x00, 'a', 'b', 'c', 0x00, 0x10}, "packet")

	n := CursorLE[uint32](c)
	if n != 3 {
		t.Fatalf("length = %d, want 3", n)
	}
	if s := string(c.Next(int(n))); s != "abc" {
		t.Errorf("Next = %q", s)
	}
	if v := CursorBE[uint16](c); v != 0x0010 {
		t.Errorf("CursorBE = %#x", v)
	}
	if c.Err() != nil {
		t.Fatalf("unexpected error: %v", c.Err())
	}

	// Sticky error after overrun.
	if v := CursorLE[uint32](c); v != 0 {
		t.Errorf("overrun read = %d, want 0", v)
	}
	if c.Err() == nil {
		t.Fatal("expected error after overrun")
	}
	if c.Next(0) != nil {
		t.Error("reads after an error should return nil")
	}
	if c.Remaining() != 0 {
		t.Error("Remaining should be 0 after an error")
	}
}

func TestUint24BE(t *testing.T) {
	if v := Uint24BE([]byte{0x00, 0x00, 0x22}); v != 34 {
		t.Errorf("Uint24BE = %d, want 34", v)
	}
	if v := Uint24BE([]byte{0x01, 0x02, 0x03}); v != 0x010203 {
		t.Errorf("Uint24BE = %#x", v)
	}
}
