package uploads

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"strconv"
	"time"

	"realtor/core/emitter"
	"realtor/core/logger"
	"realtor/core/storage"
)

const UploadedEvent = "uploads.create"

// DefaultMaxBytes is the ceiling when none is configured
const DefaultMaxBytes int64 = 4_500_000

// UploadResponse is the public URL of a stored file
type UploadResponse struct {
	URL string `json:"url"`
}

type UploadService struct {
	Storage  *storage.ActiveStorage
	Emitter  *emitter.Emitter
	Logger   logger.Logger
	MaxBytes int64
	now      func() time.Time
}

func NewUploadService(storage *storage.ActiveStorage, emitter *emitter.Emitter, logger logger.Logger, maxBytes int64) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &UploadService{
		Storage:  storage,
		Emitter:  emitter,
		Logger:   logger,
		MaxBytes: maxBytes,
		now:      time.Now,
	}
}

// Upload stores a listing photo under listings/<unix-ms>-<random>.<ext>.
// The size ceiling is checked before storage is touched.
func (s *UploadService) Upload(ctx context.Context, file *multipart.FileHeader) (*UploadResponse, error) {
	if file.Size > s.MaxBytes {
		return nil, &storage.FileTooLargeError{Size: file.Size, Limit: s.MaxBytes}
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	contentType := file.Header.Get("Content-Type")
	key := s.objectKey(storage.ExtensionFor(file.Filename, contentType))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = storage.ContentTypeFor(key)
	}

	result, err := s.Storage.Store(ctx, key, data, contentType)
	if err != nil {
		s.Logger.Error("failed to store upload", logger.Err(err), logger.String("key", key))
		return nil, err
	}

	s.Logger.Info("Stored upload", logger.String("key", key), logger.Int("size", len(data)))
	s.Emitter.Emit(UploadedEvent, result)
	return &UploadResponse{URL: result.URL}, nil
}

func (s *UploadService) objectKey(ext string) string {
	random := strconv.FormatUint(rand.Uint64(), 36)
	if len(random) > 8 {
		random = random[:8]
	}
	return fmt.Sprintf("listings/%d-%s.%s", s.now().UnixMilli(), random, ext)
}
