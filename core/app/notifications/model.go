package notifications

import (
	"time"
)

// Notification is an admin inbox entry
type Notification struct {
	Id        uint       `json:"id" gorm:"primarykey"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Title     string     `json:"title" gorm:"not null"`
	Body      string     `json:"body"`
	Type      string     `json:"type" gorm:"size:32;index"`
	Read      bool       `json:"read" gorm:"column:is_read;index"`
	ReadAt    *time.Time `json:"read_at"`
	ActionUrl string     `json:"action_url"`
}

func (m *Notification) TableName() string {
	return "notifications"
}

func (m *Notification) GetId() uint {
	return m.Id
}

func (m *Notification) GetModelName() string {
	return "notifications"
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
