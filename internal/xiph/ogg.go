package xiph

import (
	"encoding/binary"
	"fmt"
	"io"

	binutil "github.com/simonhull/musikr/internal/binary"
	"github.com/simonhull/musikr/internal/registry"
	"github.com/simonhull/musikr/internal/types"
)

// maxHeaderPages bounds how far we read looking for the comment packet.
// Comment packets with embedded pictures can span hundreds of pages.
const maxHeaderPages = 4096

// page represents an Ogg page.
type page struct {
	headerType byte // 0x01=continued, 0x02=BOS, 0x04=EOS
	granule    int64
	serial     uint32
	segments   []byte // lacing values
	data       []byte
}

// readPage reads an Ogg page at the given offset and returns it with the
// offset of the next page.
func readPage(sr *binutil.SafeReader, offset int64) (*page, int64, error) {
	header, err := sr.Bytes(offset, 27, "Ogg page header")
	if err != nil {
		return nil, 0, err
	}
	if string(header[0:4]) != "OggS" {
		return nil, 0, fmt.Errorf("invalid Ogg page at offset %d", offset)
	}
	if header[4] != 0 {
		return nil, 0, fmt.Errorf("unsupported Ogg version: %d", header[4])
	}

	segCount := int64(header[26])
	segments, err := sr.Bytes(offset+27, segCount, "segment table")
	if err != nil {
		return nil, 0, err
	}
	dataSize := int64(0)
	for _, seg := range segments {
		dataSize += int64(seg)
	}
	dataOffset := offset + 27 + segCount
	data, err := sr.Bytes(dataOffset, dataSize, "page data")
	if err != nil {
		return nil, 0, err
	}

	return &page{
		headerType: header[5],
		granule:    int64(binary.LittleEndian.Uint64(header[6:14])),
		serial:     binary.LittleEndian.Uint32(header[14:18]),
		segments:   segments,
		data:       data,
	}, dataOffset + dataSize, nil
}

// packetReader reassembles packets of the first logical stream from pages.
// A packet ends at the first lacing value below 255 and may span pages.
type packetReader struct {
	sr      *binutil.SafeReader
	offset  int64
	serial  uint32
	started bool
	pages   int
	pending [][]byte
	partial []byte
}

func (pr *packetReader) next() ([]byte, error) {
	for len(pr.pending) == 0 {
		if pr.pages >= maxHeaderPages {
			return nil, fmt.Errorf("no complete packet within %d pages", maxHeaderPages)
		}
		p, next, err := readPage(pr.sr, pr.offset)
		if err != nil {
			return nil, err
		}
		pr.offset = next
		pr.pages++
		if !pr.started {
			pr.serial = p.serial
			pr.started = true
		} else if p.serial != pr.serial {
			continue
		}

		pos := 0
		for _, lace := range p.segments {
			pr.partial = append(pr.partial, p.data[pos:pos+int(lace)]...)
			pos += int(lace)
			if lace < 255 {
				pr.pending = append(pr.pending, pr.partial)
				pr.partial = nil
			}
		}
	}
	pkt := pr.pending[0]
	pr.pending = pr.pending[1:]
	return pkt, nil
}

type oggExtractor struct{}

// Extract reads the identification and comment headers of an Ogg Vorbis or
// Opus stream, and the final granule position for duration.
func (oggExtractor) Extract(r io.ReaderAt, size int64, path string) (*types.Metadata, error) {
	sr := binutil.NewSafeReader(r, size, path)
	pr := &packetReader{sr: sr}

	ident, err := pr.next()
	if err != nil {
		return nil, &types.CorruptedFileError{Path: path, Reason: fmt.Sprintf("first Ogg packet: %v", err)}
	}

	var md *types.Metadata
	var sampleRate int64
	var preSkip int64
	var commentPrefix string

	switch {
	case len(ident) >= 19 && string(ident[0:8]) == "OpusHead":
		md = types.NewMetadata(path, types.FormatOpus, size)
		preSkip = int64(binary.LittleEndian.Uint16(ident[10:12]))
		// Opus always decodes at 48 kHz; the header carries the input rate.
		sampleRate = 48000
		md.Properties.SampleRateHz = int(binary.LittleEndian.Uint32(ident[12:16]))
		commentPrefix = "OpusTags"
	case len(ident) >= 28 && ident[0] == 0x01 && string(ident[1:7]) == "vorbis":
		md = types.NewMetadata(path, types.FormatOgg, size)
		sampleRate = int64(binary.LittleEndian.Uint32(ident[12:16]))
		md.Properties.SampleRateHz = int(sampleRate)
		md.Properties.BitrateKbps = int(binary.LittleEndian.Uint32(ident[20:24]) / 1000)
		commentPrefix = "\x03vorbis"
	default:
		return nil, &types.UnsupportedFormatError{Path: path, Reason: "unknown Ogg codec"}
	}

	comments, err := pr.next()
	switch {
	case err != nil:
		md.Warn("metadata", pr.offset, "comment packet: %v", err)
	case len(comments) < len(commentPrefix) || string(comments[:len(commentPrefix)]) != commentPrefix:
		md.Warn("metadata", pr.offset, "second packet is not a comment header")
	default:
		if err := ParseComments(comments[len(commentPrefix):], md); err != nil {
			md.Warn("metadata", pr.offset, "comment header: %v", err)
		}
	}

	if granule, err := findLastGranule(sr, size); err != nil {
		md.Warn("properties", 0, "duration: %v", err)
	} else if sampleRate > 0 && granule > preSkip {
		md.Properties.DurationMs = (granule - preSkip) * 1000 / sampleRate
	}
	if md.Properties.BitrateKbps == 0 && md.Properties.DurationMs > 0 {
		md.Properties.BitrateKbps = int(size * 8 / md.Properties.DurationMs)
	}
	return md, nil
}

// findLastGranule scans backwards from the end of the file for the last
// page header and returns its granule position.
func findLastGranule(sr *binutil.SafeReader, size int64) (int64, error) {
	start := max(size-65536, 0)
	buf, err := sr.Bytes(start, size-start, "trailing pages")
	if err != nil {
		return 0, err
	}
	for i := len(buf) - 27; i >= 0; i-- {
		if buf[i] == 'O' && buf[i+1] == 'g' && buf[i+2] == 'g' && buf[i+3] == 'S' {
			granule := int64(binary.LittleEndian.Uint64(buf[i+6 : i+14]))
			if granule < 0 {
				continue
			}
			return granule, nil
		}
	}
	return 0, fmt.Errorf("no Ogg page with a granule position")
}

func init() {
	e := oggExtractor{}
	registry.Register(types.FormatOgg, e)
	registry.Register(types.FormatOpus, e)
}
