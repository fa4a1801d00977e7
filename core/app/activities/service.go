package activities

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"realtor/core/emitter"
	"realtor/core/logger"
	"realtor/core/storage"

	"github.com/gertd/go-pluralize"
	"gorm.io/gorm"
)

const MaxRecent = 100

type ActivityService struct {
	DB     *gorm.DB
	Logger logger.Logger
	words  *pluralize.Client
}

func NewActivityService(db *gorm.DB, logger logger.Logger) *ActivityService {
	return &ActivityService{
		DB:     db,
		Logger: logger,
		words:  pluralize.NewClient(),
	}
}

type entity interface {
	GetId() uint
	GetModelName() string
}

type fullNamer interface{ FullName() string }

type addresser interface{ Address() string }

// Subscribe records every event emitted on em
func (s *ActivityService) Subscribe(em *emitter.Emitter) {
	if em == nil {
		return
	}
	em.OnAll(func(event string, payload any) {
		if _, err := s.Record(context.Background(), event, payload); err != nil {
			s.Logger.Error("Failed to record activity", logger.String("event", event), logger.Err(err))
		}
	})
}

// Record turns an event like "clients.create" into an audit entry
func (s *ActivityService) Record(ctx context.Context, event string, payload any) (*Activity, error) {
	item := &Activity{Event: event}
	item.EntityType, item.Action = splitEvent(event)

	switch p := payload.(type) {
	case entity:
		item.EntityType = p.GetModelName()
		item.EntityId = p.GetId()
	case *storage.UploadResult:
		item.EntityType = "uploads"
	}
	item.Description = s.describe(item, payload)

	if payload != nil {
		metadata, err := json.Marshal(payload)
		if err != nil {
			s.Logger.Warn("Activity payload is not JSON", logger.String("event", event), logger.Err(err))
		} else {
			item.Metadata = metadata
		}
	}

	if err := s.DB.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ActivityService) describe(item *Activity, payload any) string {
	noun := s.words.Singular(item.EntityType)

	var name string
	switch p := payload.(type) {
	case fullNamer:
		name = p.FullName()
	case addresser:
		name = p.Address()
	case *storage.UploadResult:
		return "Uploaded " + p.Path
	case int64:
		return fmt.Sprintf("Expired %d intake %s", p, s.words.Pluralize("token", int(p), false))
	}

	var verb string
	switch item.Action {
	case "create":
		verb = "Created " + noun
	case "update":
		verb = "Updated " + noun
	case "archive":
		verb = "Archived " + noun
	case "intake_token":
		verb = "Issued intake link to " + noun
	case "submit":
		verb = "Intake form submitted for " + noun
	case "token_submit":
		verb = "Intake form completed by " + noun
	default:
		verb = item.Event
	}

	description := verb
	if item.EntityId != 0 {
		description += fmt.Sprintf(" #%d", item.EntityId)
	}
	if name != "" {
		description += " (" + name + ")"
	}
	return description
}

func splitEvent(event string) (string, string) {
	i := strings.LastIndex(event, ".")
	if i < 0 {
		return event, event
	}
	return event[:i], event[i+1:]
}

// Recent returns the newest entries first
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > MaxRecent {
		limit = MaxRecent
	}

	var items []Activity
	if err := s.DB.WithContext(ctx).Order("id desc").Limit(limit).Find(&items).Error; err != nil {
		s.Logger.Error("Failed to load recent activities", logger.Err(err))
		return nil, err
	}
	return items, nil
}

// ForEntity returns the history of one record, newest first
func (s *ActivityService) ForEntity(ctx context.Context, entityType string, entityId uint) ([]Activity, error) {
	var items []Activity
	query := s.DB.WithContext(ctx).Where("entity_type = ?", entityType)
	if entityId != 0 {
		query = query.Where("entity_id = ?", entityId)
	}
	if err := query.Order("id desc").Find(&items).Error; err != nil {
		s.Logger.Error("Failed to load activities",
			logger.String("entity_type", entityType),
			logger.Uint("entity_id", entityId),
			logger.Err(err))
		return nil, err
	}
	return items, nil
}
