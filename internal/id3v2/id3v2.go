// Package id3v2 reads ID3v2.2, ID3v2.3 and ID3v2.4 tags into raw metadata.
//
// Text frames are keyed by their four-character frame ID, user-defined
// TXXX frames by "TXXX:" plus the upper-cased description. ID3v2.2 frame IDs
// are upgraded to their ID3v2.3 equivalents so callers only deal with one
// vocabulary. Multi-value frames (NUL separated) produce multiple values.
package id3v2

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	binutil "github.com/simonhull/musikr/internal/binary"
	"github.com/simonhull/musikr/internal/types"
)

// HeaderSize is the size of the fixed ID3v2 header.
const HeaderSize = 10

// Header flags.
const (
	flagUnsync   = 0x80
	flagExtended = 0x40
	flagFooter   = 0x10
)

// Header represents an ID3v2 tag header.
type Header struct {
	Version  byte // Major version (2, 3 or 4)
	Revision byte
	Flags    byte
	Size     uint32 // Tag size excluding header and footer
}

// TotalSize returns the size of the whole tag including header and footer.
func (h Header) TotalSize() int64 {
	n := int64(HeaderSize) + int64(h.Size)
	if h.Version == 4 && h.Flags&flagFooter != 0 {
		n += HeaderSize
	}
	return n
}

// ReadHeader reads and validates the tag header at off.
func ReadHeader(sr *binutil.SafeReader, off int64) (Header, error) {
	buf := make([]byte, HeaderSize)
	if err := sr.ReadAt(buf, off, "ID3v2 header"); err != nil {
		return Header{}, err
	}
	return parseHeader(buf, sr.Path())
}

func parseHeader(buf []byte, path string) (Header, error) {
	if string(buf[0:3]) != "ID3" {
		return Header{}, &types.UnsupportedFormatError{
			Path:   path,
			Reason: "not an ID3v2 tag (missing ID3 header)",
		}
	}
	h := Header{
		Version:  buf[3],
		Revision: buf[4],
		Flags:    buf[5],
		Size:     decodeSynchsafe(buf[6:10]),
	}
	if h.Version < 2 || h.Version > 4 {
		return Header{}, &types.UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("unsupported ID3v2 version: 2.%d", h.Version),
		}
	}
	return h, nil
}

// ReadTag parses the ID3v2 tag located at off into md. It returns the total
// size of the tag so callers can locate the audio data behind it.
func ReadTag(sr *binutil.SafeReader, off int64, md *types.Metadata) (int64, error) {
	h, err := ReadHeader(sr, off)
	if err != nil {
		return 0, err
	}

	body, err := sr.Bytes(off+HeaderSize, int64(h.Size), "ID3v2 tag body")
	if err != nil {
		return 0, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: off,
			Reason: fmt.Sprintf("ID3v2 tag size %d exceeds file: %v", h.Size, err),
		}
	}
	ParseBody(h, body, md)
	return h.TotalSize(), nil
}

// ParseBody parses the frames of an already-read tag body. It is used for
// tags embedded in other containers (WAV and AIFF chunks).
func ParseBody(h Header, body []byte, md *types.Metadata) {
	if h.Version < 4 && h.Flags&flagUnsync != 0 {
		body = resync(body)
	}
	if h.Flags&flagExtended != 0 {
		body = skipExtendedHeader(h, body)
	}
	parseFrames(h, body, md)
}

// ParseTag parses a complete in-memory tag, header included.
func ParseTag(data []byte, md *types.Metadata) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("ID3v2 tag too short: %d bytes", len(data))
	}
	h, err := parseHeader(data[:HeaderSize], md.Path)
	if err != nil {
		return err
	}
	body := data[HeaderSize:]
	if int(h.Size) < len(body) {
		body = body[:h.Size]
	}
	ParseBody(h, body, md)
	return nil
}

func skipExtendedHeader(h Header, body []byte) []byte {
	if len(body) < 4 {
		return nil
	}
	var skip int
	switch h.Version {
	case 3:
		// Size excludes the size field itself.
		skip = int(binary.BigEndian.Uint32(body[0:4])) + 4
	case 4:
		skip = int(decodeSynchsafe(body[0:4]))
	}
	if skip < 0 || skip > len(body) {
		return nil
	}
	return body[skip:]
}

//nolint:gocyclo // frame header layout differs across the three versions
func parseFrames(h Header, body []byte, md *types.Metadata) {
	idLen, headerLen := 4, 10
	if h.Version == 2 {
		idLen, headerLen = 3, 6
	}

	pos := 0
	for pos+headerLen <= len(body) {
		if body[pos] == 0 {
			// Padding
			break
		}
		id := string(body[pos : pos+idLen])
		if !validFrameID(id) {
			md.Warn("metadata", int64(pos), "invalid ID3v2 frame id %q", id)
			break
		}

		var size int
		var flags uint16
		switch h.Version {
		case 2:
			size = int(binutil.Uint24BE(body[pos+3 : pos+6]))
		case 3:
			size = int(binary.BigEndian.Uint32(body[pos+4 : pos+8]))
			flags = binary.BigEndian.Uint16(body[pos+8 : pos+10])
		default:
			size = int(decodeSynchsafe(body[pos+4 : pos+8]))
			flags = binary.BigEndian.Uint16(body[pos+8 : pos+10])
		}
		pos += headerLen

		if size <= 0 || pos+size > len(body) {
			md.Warn("metadata", int64(pos), "frame %s size %d exceeds tag", id, size)
			break
		}
		data := body[pos : pos+size]
		pos += size

		if h.Version == 2 {
			id = upgradeFrameID(id)
			if id == "" {
				continue
			}
		}

		data, err := frameData(h.Version, flags, data)
		if err != nil {
			md.Warn("metadata", int64(pos), "frame %s: %v", id, err)
			continue
		}
		handleFrame(h.Version, id, data, md)
	}
}

func validFrameID(id string) bool {
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// frameData undoes per-frame encodings signalled by the frame flags.
func frameData(version byte, flags uint16, data []byte) ([]byte, error) {
	switch version {
	case 3:
		if flags&0x0040 != 0 {
			return nil, fmt.Errorf("encrypted frame")
		}
		if flags&0x0080 != 0 {
			if len(data) < 4 {
				return nil, fmt.Errorf("compressed frame too short")
			}
			return inflate(data[4:])
		}
		if flags&0x0020 != 0 && len(data) > 0 {
			data = data[1:]
		}
	case 4:
		if flags&0x0004 != 0 {
			return nil, fmt.Errorf("encrypted frame")
		}
		if flags&0x0040 != 0 && len(data) > 0 {
			data = data[1:]
		}
		if flags&0x0001 != 0 {
			if len(data) < 4 {
				return nil, fmt.Errorf("data length indicator missing")
			}
			data = data[4:]
		}
		if flags&0x0002 != 0 {
			data = resync(data)
		}
		if flags&0x0008 != 0 {
			return inflate(data)
		}
	}
	return data, nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompress frame: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress frame: %w", err)
	}
	return out, nil
}

// resync removes unsynchronisation: every 0xFF 0x00 pair becomes 0xFF.
func resync(data []byte) []byte {
	if bytes.IndexByte(data, 0xFF) < 0 {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		out = append(out, data[i])
		if data[i] == 0xFF && i+1 < len(data) && data[i+1] == 0x00 {
			i++
		}
	}
	return out
}

// decodeSynchsafe decodes a synchsafe integer (7 bits per byte).
func decodeSynchsafe(b []byte) uint32 {
	if len(b) != 4 {
		return 0
	}
	return uint32(b[0]&0x7F)<<21 |
		uint32(b[1]&0x7F)<<14 |
		uint32(b[2]&0x7F)<<7 |
		uint32(b[3]&0x7F)
}

func handleFrame(version byte, id string, data []byte, md *types.Metadata) {
	if len(data) < 1 {
		return
	}
	switch {
	case id == "TXXX":
		parseUserText(data, md)
	case id == "APIC":
		if version == 2 {
			parsePIC(data, md)
		} else {
			parseAPIC(data, md)
		}
	case strings.HasPrefix(id, "T"), id == "GRP1", id == "MVNM", id == "MVIN":
		md.AddID3v2(id, decodeStrings(data[1:], data[0])...)
	}
}

// parseUserText parses TXXX frames: [encoding][description\0][value...]
func parseUserText(data []byte, md *types.Metadata) {
	encoding := data[0]
	rest := data[1:]
	idx := findNullTerminator(rest, encoding)
	if idx < 0 {
		return
	}
	desc := decodeText(rest[:idx], encoding)
	values := decodeStrings(rest[idx+terminatorSize(encoding):], encoding)
	if desc == "" || len(values) == 0 {
		return
	}
	md.AddID3v2("TXXX:"+strings.ToUpper(desc), values...)
}

// parseAPIC parses APIC frames:
// [encoding][MIME\0][picture type][description\0][data]
func parseAPIC(data []byte, md *types.Metadata) {
	encoding := data[0]
	rest := data[1:]
	mimeEnd := bytes.IndexByte(rest, 0)
	if mimeEnd < 0 || mimeEnd+2 > len(rest) {
		md.Warn("cover", 0, "APIC frame truncated")
		return
	}
	mime := string(rest[:mimeEnd])
	picType := rest[mimeEnd+1]
	rest = rest[mimeEnd+2:]
	descEnd := findNullTerminator(rest, encoding)
	if descEnd < 0 {
		md.Warn("cover", 0, "APIC description not terminated")
		return
	}
	img := rest[descEnd+terminatorSize(encoding):]
	md.OfferCover(types.Picture{
		Type:     types.PictureType(picType),
		MIMEType: normalizeMIME(mime),
		Data:     img,
	})
}

// parsePIC parses ID3v2.2 PIC frames:
// [encoding][format(3)][picture type][description\0][data]
func parsePIC(data []byte, md *types.Metadata) {
	if len(data) < 6 {
		return
	}
	encoding := data[0]
	format := strings.ToUpper(string(data[1:4]))
	picType := data[4]
	rest := data[5:]
	descEnd := findNullTerminator(rest, encoding)
	if descEnd < 0 {
		return
	}
	mime := "image/jpeg"
	if format == "PNG" {
		mime = "image/png"
	}
	md.OfferCover(types.Picture{
		Type:     types.PictureType(picType),
		MIMEType: mime,
		Data:     rest[descEnd+terminatorSize(encoding):],
	})
}

func normalizeMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch mime {
	case "jpg", "jpeg", "image/jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "":
		return "image/jpeg"
	}
	return mime
}

var v22FrameIDs = map[string]string{
	"TT1": "TIT1", "TT2": "TIT2", "TT3": "TIT3",
	"TP1": "TPE1", "TP2": "TPE2", "TP3": "TPE3", "TP4": "TPE4",
	"TAL": "TALB", "TRK": "TRCK", "TPA": "TPOS",
	"TYE": "TYER", "TDA": "TDAT", "TIM": "TIME", "TOR": "TORY",
	"TCO": "TCON", "TCM": "TCOM", "TCP": "TCMP",
	"TST": "TSOT", "TSA": "TSOA", "TSP": "TSOP", "TS2": "TSO2",
	"TXX": "TXXX", "PIC": "APIC",
}

// upgradeFrameID maps a three-character ID3v2.2 frame ID to its ID3v2.3
// equivalent, or "" for frames that carry nothing of interest.
func upgradeFrameID(id string) string {
	return v22FrameIDs[id]
}
