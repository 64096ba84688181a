// Package media turns uploaded images into resized JPEGs and stores them.
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/nfnt/resize"

	"storefront-api/internal/domain"
)

var acceptedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Processor re-encodes images as JPEG, shrinking anything wider than MaxWidth.
type Processor struct {
	MaxWidth int
	Quality  int
}

// Image is an encoded JPEG and its final dimensions.
type Image struct {
	Data   []byte
	Width  int
	Height int
}

// Process sniffs data, decodes it, resizes it and returns JPEG bytes.
func (p Processor) Process(data []byte) (*Image, error) {
	if ct := http.DetectContentType(data); !acceptedTypes[ct] {
		return nil, domain.Invalid("only JPEG, PNG and GIF images are accepted", "file")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.Invalid("image could not be decoded", "file")
	}

	if p.MaxWidth > 0 && img.Bounds().Dx() > p.MaxWidth {
		img = resize.Resize(uint(p.MaxWidth), 0, img, resize.Lanczos3)
	}

	quality := p.Quality
	if quality < 1 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	b := img.Bounds()
	return &Image{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}
