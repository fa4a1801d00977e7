package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"
)

// Config selects and configures the storage provider
type Config struct {
	Provider      string
	Path          string
	BaseURL       string
	APIKey        string
	APISecret     string
	AccountID     string
	Endpoint      string
	Bucket        string
	Region        string
	CDN           string
	ConvertImages bool
}

// Provider writes objects to a backing store
type Provider interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetURL(key string) string
}

// UploadResult describes a stored object
type UploadResult struct {
	Filename string
	Path     string
	Size     int64
	URL      string
}

// Attachment links a stored file to a model field
type Attachment struct {
	Id        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	ModelType string         `json:"model_type" gorm:"index:idx_attachment_owner"`
	ModelId   uint           `json:"model_id" gorm:"index:idx_attachment_owner"`
	Field     string         `json:"field" gorm:"index:idx_attachment_owner"`
	Filename  string         `json:"filename"`
	Path      string         `json:"path"`
	Size      int64          `json:"size"`
	URL       string         `json:"url"`
}

func (Attachment) TableName() string {
	return "attachments"
}

// AttachmentConfig declares how a model field accepts files
type AttachmentConfig struct {
	Field             string
	Path              string
	AllowedExtensions []string
	MaxFileSize       int64
	Multiple          bool
}

// Attachable is implemented by models that own attachments
type Attachable interface {
	GetId() uint
	GetModelName() string
}

var (
	// ErrFileTooLarge is matched by every FileTooLargeError
	ErrFileTooLarge = errors.New("file too large")
	// ErrExtensionNotAllowed is returned for rejected file types
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
)

// CleanupError means the attachment was saved but files it replaced could
// not be removed from the provider
type CleanupError struct {
	Err error
}

func (e *CleanupError) Error() string {
	return "attachment saved, old files left behind: " + e.Err.Error()
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}

// FileTooLargeError reports a file over the configured ceiling
type FileTooLargeError struct {
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file size exceeds maximum allowed size of %d bytes", e.Limit)
}

func (e *FileTooLargeError) Is(target error) bool {
	return target == ErrFileTooLarge
}
