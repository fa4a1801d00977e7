package properties

import (
	"context"
	"errors"
	"mime/multipart"

	"realtor/app/listview"
	"realtor/app/matching"
	"realtor/app/models"
	"realtor/core/emitter"
	"realtor/core/logger"
	"realtor/core/storage"

	"gorm.io/gorm"
)

const (
	CreatePropertyEvent  = "properties.create"
	UpdatePropertyEvent  = "properties.update"
	ArchivePropertyEvent = "properties.archive"

	imageField = "image"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic", ".heif", ".bmp", ".tif", ".tiff"}

type PropertyService struct {
	DB            *gorm.DB
	Emitter       *emitter.Emitter
	Storage       *storage.ActiveStorage
	Logger        logger.Logger
	ImageMaxBytes int64
}

func NewPropertyService(db *gorm.DB, emitter *emitter.Emitter, storage *storage.ActiveStorage, logger logger.Logger, imageMaxBytes int64) *PropertyService {
	if storage != nil {
		storage.RegisterAttachment(new(models.Property).GetModelName(), storageConfig(imageMaxBytes))
	}
	return &PropertyService{
		DB:            db,
		Emitter:       emitter,
		Storage:       storage,
		Logger:        logger,
		ImageMaxBytes: imageMaxBytes,
	}
}

func storageConfig(maxBytes int64) storage.AttachmentConfig {
	return storage.AttachmentConfig{
		Field:             imageField,
		Path:              "listings",
		AllowedExtensions: imageExtensions,
		MaxFileSize:       maxBytes,
	}
}

// List returns non-archived properties matching q, ordered by address line 1
func (s *PropertyService) List(ctx context.Context, q string) ([]models.Property, error) {
	tokens := matching.Tokenize(q)

	var items []models.Property
	if err := s.DB.WithContext(ctx).
		Scopes(matching.StoreScope(tokens, models.PropertySearchColumns())).
		Find(&items).Error; err != nil {
		s.Logger.Error("failed to list properties", logger.Err(err), logger.String("q", q))
		return nil, err
	}

	items = matching.Filter(items, tokens)
	models.SortProperties(items)
	return items, nil
}

func (s *PropertyService) GetById(ctx context.Context, id uint) (*models.Property, error) {
	return findProperty(s.DB.WithContext(ctx), id)
}

func (s *PropertyService) Create(ctx context.Context, req *models.PropertyRequest) (*models.Property, error) {
	item := &models.Property{}
	if err := req.Apply(item); err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Create(item).Error; err != nil {
		s.Logger.Error("failed to create property", logger.Err(err))
		return nil, err
	}

	s.Emitter.Emit(CreatePropertyEvent, item)
	return item, nil
}

// Update replaces every field of the property
func (s *PropertyService) Update(ctx context.Context, id uint, req *models.PropertyRequest) (*models.Property, error) {
	var item *models.Property
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := findProperty(tx, id)
		if err != nil {
			return err
		}
		draft := listview.Open(*found)
		if err := draft.Edit(req.Apply); err != nil {
			return err
		}
		saved, err := draft.Save(func(p models.Property) (models.Property, error) {
			err := tx.Save(&p).Error
			return p, err
		})
		if err != nil {
			return err
		}
		item = &saved
		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) && !errors.Is(err, models.ErrValidation) {
			s.Logger.Error("failed to update property", logger.Err(err), logger.Uint("id", id))
		}
		return nil, err
	}

	s.Emitter.Emit(UpdatePropertyEvent, item)
	return item, nil
}

func (s *PropertyService) Archive(ctx context.Context, id uint) error {
	db := s.DB.WithContext(ctx)
	item, err := findProperty(db, id)
	if err != nil {
		return err
	}
	if err := db.Delete(item).Error; err != nil {
		s.Logger.Error("failed to archive property", logger.Err(err), logger.Uint("id", id))
		return err
	}

	s.Emitter.Emit(ArchivePropertyEvent, item)
	return nil
}

// AttachImage stores the upload as the property's image and points
// image_url at it. The previous image is removed.
func (s *PropertyService) AttachImage(ctx context.Context, id uint, file *multipart.FileHeader) (*models.Property, error) {
	if s.Storage == nil {
		return nil, errors.New("storage is not configured")
	}
	if s.ImageMaxBytes > 0 && file.Size > s.ImageMaxBytes {
		return nil, &storage.FileTooLargeError{Size: file.Size, Limit: s.ImageMaxBytes}
	}

	db := s.DB.WithContext(ctx)
	item, err := findProperty(db, id)
	if err != nil {
		return nil, err
	}

	attachment, err := s.Storage.AttachWith(ctx, item, imageField, file, func(tx *gorm.DB, a *storage.Attachment) error {
		return tx.Model(item).Update("image_url", a.URL).Error
	})
	var cleanup *storage.CleanupError
	switch {
	case errors.As(err, &cleanup):
		s.Logger.Warn("replaced property image left old files behind", logger.Err(err), logger.Uint("id", id))
	case err != nil:
		if !errors.Is(err, storage.ErrFileTooLarge) && !errors.Is(err, storage.ErrExtensionNotAllowed) {
			s.Logger.Error("failed to store property image", logger.Err(err), logger.Uint("id", id))
		}
		return nil, err
	}

	url := attachment.URL
	item.ImageURL = &url

	s.Emitter.Emit(UpdatePropertyEvent, item)
	return item, nil
}

func findProperty(db *gorm.DB, id uint) (*models.Property, error) {
	item := &models.Property{}
	if err := db.First(item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}
