package storage

import (
	"fmt"
	"math"
	"mime"
	"path/filepath"
	"strings"
)

// MediaType represents the type of media file
type MediaType string

const (
	MediaTypeImage    MediaType = "image"
	MediaTypeDocument MediaType = "document"
	MediaTypeOther    MediaType = "other"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".bmp": true, ".tiff": true, ".tif": true, ".heic": true,
}

var documentExts = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".txt": true, ".csv": true,
}

// mimeExtensions maps upload content types to the extension used in keys
var mimeExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
	"image/heic": "heic",
}

// DetectMediaType detects the media type from filename extension
func DetectMediaType(filename string) MediaType {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case imageExts[ext]:
		return MediaTypeImage
	case documentExts[ext]:
		return MediaTypeDocument
	default:
		return MediaTypeOther
	}
}

// ExtensionFor picks a file extension without the dot. The filename wins,
// then the content type, then "jpg".
func ExtensionFor(filename, contentType string) string {
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."); ext != "" {
		return ext
	}
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ext, ok := mimeExtensions[ct]; ok {
		return ext
	}
	return "jpg"
}

// ContentTypeFor guesses a content type from the key extension
func ContentTypeFor(key string) string {
	ext := strings.ToLower(filepath.Ext(key))
	switch ext {
	case ".heic":
		return "image/heic"
	case ".webp":
		return "image/webp"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// ShouldConvert reports whether an image is worth re-encoding to WebP
func ShouldConvert(filename string) bool {
	if DetectMediaType(filename) != MediaTypeImage {
		return false
	}
	return strings.ToLower(filepath.Ext(filename)) != ".webp"
}

// ImageTooLargeMessage is the client-facing rejection for oversized images,
// with size rounded to whole megabytes
func ImageTooLargeMessage(size int64) string {
	mb := math.Round(float64(size) / 1024 / 1024)
	return fmt.Sprintf("Image too large (%.0fMB). Max ~4.5MB.", mb)
}
