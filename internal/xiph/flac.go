package xiph

import (
	"fmt"
	"io"

	"github.com/simonhull/musikr/internal/binary"
	"github.com/simonhull/musikr/internal/id3v2"
	"github.com/simonhull/musikr/internal/registry"
	"github.com/simonhull/musikr/internal/types"
)

// Metadata block types
const (
	blockTypeStreamInfo    = 0
	blockTypeVorbisComment = 4
	blockTypePicture       = 6
)

type flacExtractor struct{}

// Extract walks the FLAC metadata blocks. A leading ID3v2 tag, which some
// taggers add, is parsed as well.
func (flacExtractor) Extract(r io.ReaderAt, size int64, path string) (*types.Metadata, error) {
	sr := binary.NewSafeReader(r, size, path)
	md := types.NewMetadata(path, types.FormatFLAC, size)

	start := int64(0)
	if magic, err := sr.Bytes(0, 3, "ID3 magic"); err == nil && string(magic) == "ID3" {
		n, err := id3v2.ReadTag(sr, 0, md)
		if err != nil {
			md.Warn("metadata", 0, "leading ID3v2 tag: %v", err)
		}
		start = n
	}

	magic, err := sr.Bytes(start, 4, "FLAC magic bytes")
	if err != nil {
		return nil, fmt.Errorf("read FLAC magic: %w", err)
	}
	if string(magic) != "fLaC" {
		return nil, &types.CorruptedFileError{
			Path:   path,
			Offset: start,
			Reason: "invalid FLAC magic bytes",
		}
	}

	offset := start + 4
	for offset < size {
		header, err := binary.Read[uint32](sr, offset, "metadata block header")
		if err != nil {
			md.Warn("metadata", offset, "metadata block header: %v", err)
			break
		}
		isLast := header>>31 == 1
		blockType := uint8((header >> 24) & 0x7F)
		blockLength := int64(header & 0x00FFFFFF)
		offset += 4

		switch blockType {
		case blockTypeStreamInfo:
			if err := parseStreamInfo(sr, offset, blockLength, md); err != nil {
				md.Warn("properties", offset, "STREAMINFO: %v", err)
			}
		case blockTypeVorbisComment:
			data, err := sr.Bytes(offset, blockLength, "VORBIS_COMMENT block")
			if err == nil {
				err = ParseComments(data, md)
			}
			if err != nil {
				md.Warn("metadata", offset, "Vorbis comments: %v", err)
			}
		case blockTypePicture:
			data, err := sr.Bytes(offset, blockLength, "PICTURE block")
			if err == nil {
				var pic types.Picture
				if pic, err = ParsePicture(data); err == nil {
					md.OfferCover(pic)
				}
			}
			if err != nil {
				md.Warn("cover", offset, "PICTURE: %v", err)
			}
		}

		offset += blockLength
		if isLast {
			break
		}
	}

	return md, nil
}

// parseStreamInfo extracts audio properties from the 34 byte STREAMINFO block.
func parseStreamInfo(sr *binary.SafeReader, offset, blockLength int64, md *types.Metadata) error {
	if blockLength != 34 {
		return fmt.Errorf("invalid STREAMINFO size: %d (expected 34)", blockLength)
	}
	data, err := sr.Bytes(offset, 34, "STREAMINFO block")
	if err != nil {
		return err
	}

	// Bytes 10-17: sample rate (20 bits), channels-1 (3), bits per sample-1 (5),
	// total samples (36).
	packed := uint64(data[10])<<56 | uint64(data[11])<<48 | uint64(data[12])<<40 | uint64(data[13])<<32 |
		uint64(data[14])<<24 | uint64(data[15])<<16 | uint64(data[16])<<8 | uint64(data[17])

	sampleRate := int64((packed >> 44) & 0xFFFFF)
	totalSamples := int64(packed & 0xFFFFFFFFF)

	md.Properties.SampleRateHz = int(sampleRate)
	if sampleRate > 0 {
		md.Properties.DurationMs = totalSamples * 1000 / sampleRate
	}
	if md.Properties.DurationMs > 0 {
		md.Properties.BitrateKbps = int(md.Size * 8 / md.Properties.DurationMs)
	}
	return nil
}

func init() {
	registry.Register(types.FormatFLAC, flacExtractor{})
}
