// Package xiph reads Xiph-family containers: native FLAC and Ogg streams
// carrying Vorbis or Opus. Both store tags as Vorbis comments.
package xiph

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/simonhull/musikr/internal/binary"
	"github.com/simonhull/musikr/internal/types"
)

// maxComments bounds the comment count of a single block.
const maxComments = 1 << 16

// ParseComments parses a Vorbis comment structure (without any packet
// framing) into md.
//
// Structure, all lengths little-endian:
//   - vendor string length + vendor string
//   - comment count
//   - per comment: length + "KEY=VALUE" (UTF-8)
func ParseComments(data []byte, md *types.Metadata) error {
	c := binary.NewCursor(data, "vorbis comments")
	vendorLen := binary.CursorLE[uint32](c)
	c.Skip(int(vendorLen))
	count := binary.CursorLE[uint32](c)
	if err := c.Err(); err != nil {
		return err
	}
	if count > maxComments {
		return fmt.Errorf("implausible comment count %d", count)
	}

	for i := uint32(0); i < count; i++ {
		n := binary.CursorLE[uint32](c)
		raw := c.Next(int(n))
		if err := c.Err(); err != nil {
			return fmt.Errorf("comment %d: %w", i, err)
		}
		if err := parseComment(string(raw), md); err != nil {
			md.Warn("metadata", 0, "invalid Vorbis comment: %v", err)
		}
	}
	return nil
}

// parseComment parses a single "KEY=VALUE" comment.
func parseComment(comment string, md *types.Metadata) error {
	key, value, ok := strings.Cut(comment, "=")
	if !ok {
		return fmt.Errorf("missing '=' in comment %q", truncate(comment, 32))
	}
	key = strings.ToUpper(key)

	switch key {
	case "METADATA_BLOCK_PICTURE":
		raw, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return fmt.Errorf("METADATA_BLOCK_PICTURE: %w", err)
		}
		pic, err := ParsePicture(raw)
		if err != nil {
			return fmt.Errorf("METADATA_BLOCK_PICTURE: %w", err)
		}
		md.OfferCover(pic)
	case "COVERART":
		raw, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return fmt.Errorf("COVERART: %w", err)
		}
		md.OfferCover(types.Picture{Type: types.PictureOther, MIMEType: "image/jpeg", Data: raw})
	default:
		md.AddXiph(key, value)
	}
	return nil
}

// ParsePicture parses a FLAC PICTURE block body. The same layout is used by
// base64 METADATA_BLOCK_PICTURE comments in Ogg streams.
func ParsePicture(data []byte) (types.Picture, error) {
	c := binary.NewCursor(data, "picture block")
	picType := binary.CursorBE[uint32](c)
	mime := string(c.Next(int(binary.CursorBE[uint32](c))))
	c.Skip(int(binary.CursorBE[uint32](c))) // description
	c.Skip(16)                               // width, height, depth, colors
	img := c.Next(int(binary.CursorBE[uint32](c)))
	if err := c.Err(); err != nil {
		return types.Picture{}, err
	}
	return types.Picture{
		Type:     types.PictureType(picType),
		MIMEType: mime,
		Data:     img,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
