package covers

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // decoder registration
)

// Transcoding converts embedded image data before it is stored.
type Transcoding interface {
	// Tag is appended to the content hash to form the file name. It must not
	// collide with the tag of any other transcoding.
	Tag() string
	// Transcode writes data, converted, to w.
	Transcode(data []byte, w io.Writer) error
}

// NoTranscoding stores image data as-is.
var NoTranscoding Transcoding = noTranscoding{}

type noTranscoding struct{}

func (noTranscoding) Tag() string { return ".img" }

func (noTranscoding) Transcode(data []byte, w io.Writer) error {
	_, err := w.Write(data)
	return err
}

// ImageFormat is an output format for Compress.
type ImageFormat int

const (
	JPEG ImageFormat = iota
	PNG
)

func (f ImageFormat) ext() string {
	if f == PNG {
		return "png"
	}
	return "jpg"
}

// Compress returns a transcoding that downsamples images larger than
// resolution on either side and re-encodes them in format. quality applies
// to JPEG only.
func Compress(format ImageFormat, resolution, quality int) Transcoding {
	return compress{format: format, resolution: resolution, quality: quality}
}

type compress struct {
	format     ImageFormat
	resolution int
	quality    int
}

func (c compress) Tag() string {
	return fmt.Sprintf("_%dx%d.%s", c.resolution, c.quality, c.format.ext())
}

func (c compress) Transcode(data []byte, w io.Writer) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	if n := sampleSize(width, height, c.resolution); n > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, max(width/n, 1), max(height/n, 1)))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = dst
	}
	switch c.format {
	case PNG:
		return png.Encode(w, img)
	default:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: c.quality})
	}
}

// sampleSize returns the largest power of two that keeps both halved
// dimensions at or above size.
func sampleSize(width, height, size int) int {
	n := 1
	if height > size || width > size {
		halfHeight, halfWidth := height/2, width/2
		for halfHeight/n >= size && halfWidth/n >= size {
			n *= 2
		}
	}
	return n
}
