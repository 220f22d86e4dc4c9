package id3v2

import (
	"bytes"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// Text encodings as stored in the first byte of a text frame.
const (
	encISO88591 = 0
	encUTF16    = 1
	encUTF16BE  = 2
	encUTF8     = 3
)

// decodeStrings splits data on the encoding's terminator and decodes every
// piece. Empty pieces are dropped.
func decodeStrings(data []byte, encoding byte) []string {
	var out []string
	bigEndian := true
	for len(data) > 0 {
		idx := findNullTerminator(data, encoding)
		piece := data
		if idx >= 0 {
			piece = data[:idx]
			data = data[idx+terminatorSize(encoding):]
		} else {
			data = nil
		}

		var s string
		switch encoding {
		case encUTF16:
			// Every value may carry its own BOM; values without one reuse the
			// byte order of the previous value.
			if len(piece) >= 2 {
				switch {
				case piece[0] == 0xFF && piece[1] == 0xFE:
					bigEndian = false
					piece = piece[2:]
				case piece[0] == 0xFE && piece[1] == 0xFF:
					bigEndian = true
					piece = piece[2:]
				}
			}
			s = decodeUTF16(piece, bigEndian)
		default:
			s = decodeText(piece, encoding)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// decodeText decodes a single string in the given encoding.
func decodeText(data []byte, encoding byte) string {
	if len(data) == 0 {
		return ""
	}

	switch encoding {
	case encUTF16:
		if len(data) >= 2 {
			if data[0] == 0xFF && data[1] == 0xFE {
				return decodeUTF16(data[2:], false)
			}
			if data[0] == 0xFE && data[1] == 0xFF {
				return decodeUTF16(data[2:], true)
			}
		}
		return decodeUTF16(data, true)
	case encUTF16BE:
		return decodeUTF16(data, true)
	case encUTF8:
		return string(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	default:
		return decodeLatin1(data)
	}
}

// decodeLatin1 decodes ISO-8859-1 into UTF-8.
func decodeLatin1(data []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

func decodeUTF16(data []byte, bigEndian bool) string {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}

	u16 := make([]uint16, len(data)/2)
	for i := range u16 {
		if bigEndian {
			u16[i] = uint16(data[i*2])<<8 | uint16(data[i*2+1])
		} else {
			u16[i] = uint16(data[i*2]) | uint16(data[i*2+1])<<8
		}
	}

	return string(utf16.Decode(u16))
}

// findNullTerminator finds the terminator for the encoding. UTF-16
// terminators are two aligned zero bytes.
func findNullTerminator(data []byte, encoding byte) int {
	switch encoding {
	case encUTF16, encUTF16BE:
		for i := 0; i+1 < len(data); i += 2 {
			if data[i] == 0 && data[i+1] == 0 {
				return i
			}
		}
		return -1
	default:
		return bytes.IndexByte(data, 0)
	}
}

func terminatorSize(encoding byte) int {
	if encoding == encUTF16 || encoding == encUTF16BE {
		return 2
	}
	return 1
}
