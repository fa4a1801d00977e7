package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	_ "github.com/adrium/goheif"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ImageProcessor handles image conversion operations
type ImageProcessor struct {
	Quality int // WebP quality (0-100)
}

// NewImageProcessor creates a new image processor
func NewImageProcessor(quality int) *ImageProcessor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	return &ImageProcessor{Quality: quality}
}

// ConvertToWebP re-encodes image bytes as WebP. Files that are not images,
// or are already WebP, come back unchanged with converted=false.
func (ip *ImageProcessor) ConvertToWebP(data []byte, filename string) (out []byte, name string, converted bool, err error) {
	if !ShouldConvert(filename) {
		return data, filename, false, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to decode image: %w", err)
	}

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(ip.Quality))
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to create encoder options: %w", err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, options); err != nil {
		return nil, "", false, fmt.Errorf("failed to encode to webp: %w", err)
	}

	ext := filepath.Ext(filename)
	return buf.Bytes(), strings.TrimSuffix(filename, ext) + ".webp", true, nil
}
