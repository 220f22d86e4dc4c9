package mp4

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"

	binutil "github.com/simonhull/musikr/internal/binary"
	"github.com/simonhull/musikr/internal/registry"
	"github.com/simonhull/musikr/internal/types"
)

// Well-known data atom type indicators.
const (
	dataImplicit = 0
	dataUTF8     = 1
	dataUTF16    = 2
	dataJPEG     = 13
	dataPNG      = 14
	dataSigned   = 21
	dataUnsigned = 22
	dataBMP      = 27
)

type extractor struct{}

// Extract reads the ilst item list and the movie/media headers.
func (extractor) Extract(r io.ReaderAt, size int64, path string) (*types.Metadata, error) {
	sr := binutil.NewSafeReader(r, size, path)
	md := types.NewMetadata(path, types.FormatMP4, size)

	moov, err := findAtom(sr, 0, size, "moov")
	if err != nil {
		return nil, &types.CorruptedFileError{Path: path, Reason: fmt.Sprintf("no movie atom: %v", err)}
	}

	if err := readProperties(sr, moov, md); err != nil {
		md.Warn("properties", moov.Offset, "%v", err)
	}

	ilst, err := findPath(sr, moov.DataOffset(), moov.End(), "udta", "meta", "ilst")
	if err != nil {
		// iTunes occasionally writes meta directly under moov.
		ilst, err = findPath(sr, moov.DataOffset(), moov.End(), "meta", "ilst")
	}
	if err != nil {
		md.Warn("metadata", moov.Offset, "no item list: %v", err)
		return md, nil
	}

	items, err := children(sr, ilst.DataOffset(), ilst.End())
	if err != nil {
		md.Warn("metadata", ilst.Offset, "item list: %v", err)
	}
	for _, item := range items {
		if err := readItem(sr, item, md); err != nil {
			md.Warn("metadata", item.Offset, "item %q: %v", item.Type, err)
		}
	}
	return md, nil
}

type dataValue struct {
	kind    uint32
	payload []byte
}

//nolint:gocyclo // one branch per item family
func readItem(sr *binutil.SafeReader, item *Atom, md *types.Metadata) error {
	kids, err := children(sr, item.DataOffset(), item.End())
	if err != nil {
		return err
	}

	key := itemKey(item.Type)
	var values []dataValue
	var mean, name string
	for _, kid := range kids {
		payload, err := sr.Bytes(kid.DataOffset(), kid.DataSize(), kid.Type+" atom")
		if err != nil {
			return err
		}
		switch kid.Type {
		case "mean", "name":
			if len(payload) < 4 {
				continue
			}
			if kid.Type == "mean" {
				mean = string(payload[4:])
			} else {
				name = string(payload[4:])
			}
		case "data":
			// [version(1)][type(3)][locale(4)][value]
			if len(payload) < 8 {
				continue
			}
			values = append(values, dataValue{
				kind:    binary.BigEndian.Uint32(payload[0:4]) & 0x00FFFFFF,
				payload: payload[8:],
			})
		}
	}

	if key == "----" {
		if name == "" {
			return fmt.Errorf("freeform item without a name")
		}
		key = "----:" + strings.ToUpper(mean) + ":" + strings.ToUpper(name)
	}

	for _, v := range values {
		switch key {
		case "covr":
			mime := "image/jpeg"
			switch v.kind {
			case dataPNG:
				mime = "image/png"
			case dataBMP:
				mime = "image/bmp"
			}
			md.OfferCover(types.Picture{Type: types.PictureFrontCover, MIMEType: mime, Data: v.payload})
		case "trkn", "disk":
			// [reserved(2)][number(2)][total(2)]...
			if len(v.payload) < 6 {
				continue
			}
			num := binary.BigEndian.Uint16(v.payload[2:4])
			total := binary.BigEndian.Uint16(v.payload[4:6])
			md.AddMP4(key, fmt.Sprintf("%d/%d", num, total))
		case "gnre":
			// ID3v1 genre index plus one.
			if len(v.payload) >= 2 {
				if idx := int(binary.BigEndian.Uint16(v.payload[0:2])); idx > 0 {
					md.AddMP4(key, strconv.Itoa(idx-1))
				}
			}
		default:
			if s, ok := decodeValue(v); ok {
				md.AddMP4(key, s)
			}
		}
	}
	return nil
}

// itemKey converts an atom type to UTF-8. Type codes are Latin-1, so the
// 0xA9 prefix of "©nam" would otherwise be an invalid byte.
func itemKey(typ string) string {
	runes := make([]rune, len(typ))
	for i := 0; i < len(typ); i++ {
		runes[i] = rune(typ[i])
	}
	return string(runes)
}

// decodeValue renders text and integer data as a string.
func decodeValue(v dataValue) (string, bool) {
	switch v.kind {
	case dataUTF8:
		return strings.TrimRight(string(v.payload), "\x00"), true
	case dataUTF16:
		u16 := make([]uint16, len(v.payload)/2)
		for i := range u16 {
			u16[i] = binary.BigEndian.Uint16(v.payload[i*2:])
		}
		return string(utf16.Decode(u16)), true
	case dataSigned, dataUnsigned, dataImplicit:
		if len(v.payload) == 0 || len(v.payload) > 8 {
			return "", false
		}
		var n uint64
		for _, b := range v.payload {
			n = n<<8 | uint64(b)
		}
		if v.kind == dataSigned {
			shift := 64 - 8*len(v.payload)
			return strconv.FormatInt(int64(n<<shift)>>shift, 10), true
		}
		return strconv.FormatUint(n, 10), true
	}
	return "", false
}

// readProperties reads duration from mvhd and sample rate from the first
// audio track's mdhd.
func readProperties(sr *binutil.SafeReader, moov *Atom, md *types.Metadata) error {
	mvhd, err := findAtom(sr, moov.DataOffset(), moov.End(), "mvhd")
	if err != nil {
		return err
	}
	timescale, duration, err := readTimeHeader(sr, mvhd)
	if err != nil {
		return fmt.Errorf("mvhd: %w", err)
	}
	if timescale > 0 {
		md.Properties.DurationMs = int64(duration * 1000 / timescale)
	}
	if md.Properties.DurationMs > 0 {
		md.Properties.BitrateKbps = int(md.Size * 8 / md.Properties.DurationMs)
	}

	if mdhd, err := findPath(sr, moov.DataOffset(), moov.End(), "trak", "mdia", "mdhd"); err == nil {
		if rate, _, err := readTimeHeader(sr, mdhd); err == nil {
			md.Properties.SampleRateHz = int(rate)
		}
	}
	return nil
}

// readTimeHeader reads the timescale and duration shared by mvhd and mdhd.
func readTimeHeader(sr *binutil.SafeReader, atom *Atom) (timescale, duration uint64, err error) {
	version, err := binutil.Read[uint8](sr, atom.DataOffset(), "header version")
	if err != nil {
		return 0, 0, err
	}
	if version == 1 {
		// [ver/flags(4)][created(8)][modified(8)][timescale(4)][duration(8)]
		ts, err := binutil.Read[uint32](sr, atom.DataOffset()+20, "timescale")
		if err != nil {
			return 0, 0, err
		}
		d, err := binutil.Read[uint64](sr, atom.DataOffset()+24, "duration")
		return uint64(ts), d, err
	}
	// [ver/flags(4)][created(4)][modified(4)][timescale(4)][duration(4)]
	ts, err := binutil.Read[uint32](sr, atom.DataOffset()+12, "timescale")
	if err != nil {
		return 0, 0, err
	}
	d, err := binutil.Read[uint32](sr, atom.DataOffset()+16, "duration")
	return uint64(ts), uint64(d), err
}

func init() {
	registry.Register(types.FormatMP4, extractor{})
}
