package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"realtor/core/email"
	"realtor/core/emitter"
	"realtor/core/logger"

	"gorm.io/gorm"
)

const (
	CreateNotificationEvent = "notifications.create"

	TypeIntake = "intake"
)

var ErrNotFound = errors.New("notification not found")

type NotificationService struct {
	DB         *gorm.DB
	Emitter    *emitter.Emitter
	Logger     logger.Logger
	Email      email.Sender
	AdminEmail string
	now        func() time.Time
}

func NewNotificationService(db *gorm.DB, emitter *emitter.Emitter, sender email.Sender, logger logger.Logger, adminEmail string) *NotificationService {
	return &NotificationService{
		DB:         db,
		Emitter:    emitter,
		Logger:     logger,
		Email:      sender,
		AdminEmail: adminEmail,
		now:        time.Now,
	}
}

type contact interface {
	GetId() uint
	FullName() string
}

// Subscribe turns intake submissions into inbox entries
func (s *NotificationService) Subscribe(em *emitter.Emitter) {
	if em == nil {
		return
	}
	em.On("intake.submit", func(payload any) {
		s.fromIntake(payload, "New intake", "submitted the intake form")
	})
	em.On("intake.token_submit", func(payload any) {
		s.fromIntake(payload, "Intake form completed", "updated their details with an intake link")
	})
}

func (s *NotificationService) fromIntake(payload any, title, action string) {
	c, ok := payload.(contact)
	if !ok {
		return
	}
	n := &Notification{
		Title:     title + ": " + c.FullName(),
		Body:      c.FullName() + " " + action + ".",
		Type:      TypeIntake,
		ActionUrl: fmt.Sprintf("/clients/%d", c.GetId()),
	}
	if err := s.Notify(context.Background(), n); err != nil {
		s.Logger.Error("Failed to create intake notification", logger.Uint("client_id", c.GetId()), logger.Err(err))
	}
}

// Notify stores n and mails it to the admin when an address is configured.
// A failed email does not fail the notification.
func (s *NotificationService) Notify(ctx context.Context, n *Notification) error {
	if err := s.DB.WithContext(ctx).Create(n).Error; err != nil {
		return err
	}
	s.Emitter.Emit(CreateNotificationEvent, n)

	if s.Email != nil && s.AdminEmail != "" {
		err := s.Email.Send(email.Message{
			To:      []string{s.AdminEmail},
			Subject: n.Title,
			Body:    n.Body,
			Tag:     "notification",
		})
		if err != nil {
			s.Logger.Warn("Failed to email notification", logger.Uint("id", n.Id), logger.Err(err))
		}
	}
	return nil
}

// List returns the newest notifications first
func (s *NotificationService) List(ctx context.Context, unreadOnly bool) ([]Notification, error) {
	var items []Notification
	query := s.DB.WithContext(ctx).Order("id desc")
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if err := query.Find(&items).Error; err != nil {
		s.Logger.Error("Failed to list notifications", logger.Err(err))
		return nil, err
	}
	return items, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&Notification{}).Where("is_read = ?", false).Count(&count).Error
	return count, err
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint) (*Notification, error) {
	var item Notification
	if err := s.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if item.Read {
		return &item, nil
	}

	now := s.now().UTC()
	item.Read = true
	item.ReadAt = &now
	if err := s.DB.WithContext(ctx).Save(&item).Error; err != nil {
		s.Logger.Error("Failed to mark notification read", logger.Uint("id", id), logger.Err(err))
		return nil, err
	}
	return &item, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&Notification{}).
		Where("is_read = ?", false).
		Updates(map[string]any{"is_read": true, "read_at": s.now().UTC()})
	if res.Error != nil {
		s.Logger.Error("Failed to mark notifications read", logger.Err(res.Error))
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
