package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// ActiveStorage ties stored files to model fields
type ActiveStorage struct {
	db             *gorm.DB
	provider       Provider
	imageProcessor *ImageProcessor
	convertImages  bool

	mu      sync.RWMutex
	configs map[string]map[string]AttachmentConfig
}

// NewActiveStorage builds the configured provider and migrates the
// attachments table.
func NewActiveStorage(db *gorm.DB, config Config) (*ActiveStorage, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return NewActiveStorageWithProvider(db, provider, config.ConvertImages)
}

// NewProvider picks a provider by name. Relative local paths are
// resolved against the working directory.
func NewProvider(config Config) (Provider, error) {
	var (
		provider Provider
		err      error
	)

	switch strings.ToLower(config.Provider) {
	case "local", "":
		storagePath := config.Path
		if !filepath.IsAbs(storagePath) {
			cwd, cwdErr := os.Getwd()
			if cwdErr != nil {
				return nil, fmt.Errorf("failed to get working directory: %w", cwdErr)
			}
			storagePath = filepath.Join(cwd, storagePath)
		}
		provider, err = NewLocalProvider(LocalConfig{
			BasePath: storagePath,
			BaseURL:  config.BaseURL,
		})
	case "s3":
		provider, err = NewS3Provider(S3Config{
			AccessKeyID:     config.APIKey,
			AccessKeySecret: config.APISecret,
			Endpoint:        config.Endpoint,
			Bucket:          config.Bucket,
			BaseURL:         config.BaseURL,
			Region:          config.Region,
		})
	case "r2":
		provider, err = NewR2Provider(R2Config{
			AccessKeyID:     config.APIKey,
			AccessKeySecret: config.APISecret,
			AccountID:       config.AccountID,
			Bucket:          config.Bucket,
			BaseURL:         config.BaseURL,
			CDN:             config.CDN,
		})
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", config.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage provider: %w", err)
	}
	return provider, nil
}

func NewActiveStorageWithProvider(db *gorm.DB, provider Provider, convertImages bool) (*ActiveStorage, error) {
	if err := db.AutoMigrate(&Attachment{}); err != nil {
		return nil, fmt.Errorf("failed to migrate attachments table: %w", err)
	}
	return &ActiveStorage{
		db:             db,
		provider:       provider,
		imageProcessor: NewImageProcessor(85),
		convertImages:  convertImages,
		configs:        make(map[string]map[string]AttachmentConfig),
	}, nil
}

func (as *ActiveStorage) RegisterAttachment(modelName string, config AttachmentConfig) {
	as.mu.Lock()
	defer as.mu.Unlock()
	if as.configs[modelName] == nil {
		as.configs[modelName] = make(map[string]AttachmentConfig)
	}
	as.configs[modelName][config.Field] = config
}

// LinkFunc runs inside the attach transaction once the new attachment row
// exists, so the owning record can point at it atomically.
type LinkFunc func(tx *gorm.DB, attachment *Attachment) error

// Attach stores an uploaded file against model.field
func (as *ActiveStorage) Attach(ctx context.Context, model Attachable, field string, file *multipart.FileHeader) (*Attachment, error) {
	return as.AttachWith(ctx, model, field, file, nil)
}

// AttachWith is Attach with a link step run in the same transaction
func (as *ActiveStorage) AttachWith(ctx context.Context, model Attachable, field string, file *multipart.FileHeader, link LinkFunc) (*Attachment, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return as.AttachBytesWith(ctx, model, field, file.Filename, data, link)
}

// AttachBytes validates, optionally converts to WebP, stores and records
// the file. Single-file fields drop their previous attachment.
func (as *ActiveStorage) AttachBytes(ctx context.Context, model Attachable, field, filename string, data []byte) (*Attachment, error) {
	return as.AttachBytesWith(ctx, model, field, filename, data, nil)
}

// AttachBytesWith records the new attachment, runs link and removes the
// previous rows of a single-file field in one transaction. If any step
// fails the new file is deleted and earlier attachments are untouched.
// Old files are removed from the provider after commit; failures there are
// reported as a *CleanupError alongside the new attachment.
func (as *ActiveStorage) AttachBytesWith(ctx context.Context, model Attachable, field, filename string, data []byte, link LinkFunc) (*Attachment, error) {
	config, err := as.getConfig(model.GetModelName(), field)
	if err != nil {
		return nil, err
	}
	if err := validateFile(filename, int64(len(data)), config); err != nil {
		return nil, err
	}

	if as.convertImages {
		converted, name, ok, convErr := as.imageProcessor.ConvertToWebP(data, filename)
		if convErr != nil {
			return nil, fmt.Errorf("failed to convert image to webp: %w", convErr)
		}
		if ok {
			data, filename = converted, name
		}
	}

	key := buildKey(config.Path, model.GetModelName(), field, filename)
	result, err := as.provider.Put(ctx, key, bytes.NewReader(data), int64(len(data)), ContentTypeFor(key))
	if err != nil {
		return nil, err
	}

	attachment := &Attachment{
		ModelType: model.GetModelName(),
		ModelId:   model.GetId(),
		Field:     field,
		Filename:  result.Filename,
		Path:      result.Path,
		Size:      result.Size,
		URL:       result.URL,
	}

	var previous []Attachment
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attachment).Error; err != nil {
			return err
		}
		if link != nil {
			if err := link(tx, attachment); err != nil {
				return err
			}
		}
		if config.Multiple {
			return nil
		}
		if err := tx.
			Where("model_type = ? AND model_id = ? AND field = ? AND id <> ?", attachment.ModelType, attachment.ModelId, field, attachment.Id).
			Find(&previous).Error; err != nil {
			return err
		}
		if len(previous) == 0 {
			return nil
		}
		return tx.Delete(&previous).Error
	})
	if err != nil {
		if delErr := as.provider.Delete(ctx, result.Path); delErr != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to remove %s: %w", result.Path, delErr))
		}
		return nil, err
	}

	var cleanup []error
	for _, old := range previous {
		if err := as.provider.Delete(ctx, old.Path); err != nil {
			cleanup = append(cleanup, fmt.Errorf("failed to remove %s: %w", old.Path, err))
		}
	}
	if len(cleanup) > 0 {
		return attachment, &CleanupError{Err: errors.Join(cleanup...)}
	}
	return attachment, nil
}

// Store writes raw bytes under an exact key
func (as *ActiveStorage) Store(ctx context.Context, key string, data []byte, contentType string) (*UploadResult, error) {
	if contentType == "" {
		contentType = ContentTypeFor(key)
	}
	return as.provider.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType)
}

func (as *ActiveStorage) LoadAttachment(model Attachable, field string) (*Attachment, error) {
	var attachment Attachment
	err := as.db.Where("model_type = ? AND model_id = ? AND field = ?",
		model.GetModelName(), model.GetId(), field).
		Order("id DESC").
		First(&attachment).Error
	if err != nil {
		return nil, err
	}

	attachment.URL = as.provider.GetURL(attachment.Path)
	return &attachment, nil
}

func (as *ActiveStorage) getConfig(modelName, field string) (AttachmentConfig, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	modelConfigs, ok := as.configs[modelName]
	if !ok {
		return AttachmentConfig{}, fmt.Errorf("no attachment config found for model %s", modelName)
	}
	config, ok := modelConfigs[field]
	if !ok {
		return AttachmentConfig{}, fmt.Errorf("no attachment config found for field %s in model %s", field, modelName)
	}
	return config, nil
}

func validateFile(filename string, size int64, config AttachmentConfig) error {
	if config.MaxFileSize > 0 && size > config.MaxFileSize {
		return &FileTooLargeError{Size: size, Limit: config.MaxFileSize}
	}
	if len(config.AllowedExtensions) == 0 {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range config.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrExtensionNotAllowed, ext)
}

func buildKey(base, modelName, field, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := slug.Make(strings.TrimSuffix(filename, filepath.Ext(filename)))
	if name == "" {
		name = "file"
	}
	return path.Join(base, modelName, field, fmt.Sprintf("%s-%d%s", name, time.Now().UnixNano(), ext))
}

// IsNotFound reports a missing attachment record
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
