// Package imaging prepares uploaded gift type artwork for storage.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// ArtworkDimension is the largest width or height stored for gift artwork.
const ArtworkDimension = 512

// JPEGQuality is the compression quality for JPEG output.
const JPEGQuality = 85

// MaxUploadSize bounds the raw upload accepted for processing.
const MaxUploadSize = 5 << 20

// ErrUnsupportedFormat is returned for data that is not a JPEG, PNG or WebP image.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Artwork is a processed image ready to store.
type Artwork struct {
	Data []byte
	MIME string
}

// Process reads an image, checks its format by sniffing the bytes, and
// downscales it so neither side exceeds maxDim. Photos come out as JPEG.
// PNG and WebP input is re-encoded as PNG to keep transparency.
func Process(r io.Reader, maxDim int) (*Artwork, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("image larger than %d bytes: %w", MaxUploadSize, ErrUnsupportedFormat)
	}

	var img image.Image
	detected := http.DetectContentType(data)
	switch detected {
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
	case "image/webp":
		img, err = webp.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, detected)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, maxDim)

	var buf bytes.Buffer
	if detected == "image/jpeg" {
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("encoding JPEG: %w", err)
		}
		return &Artwork{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
	}

	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return &Artwork{Data: buf.Bytes(), MIME: "image/png"}, nil
}

// downscale resizes img so neither side exceeds maxDim, keeping the aspect
// ratio. Images already within bounds are returned as is.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	newW, newH := maxDim, maxDim
	if w > h {
		newH = max(1, h*maxDim/w)
	} else {
		newW = max(1, w*maxDim/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
