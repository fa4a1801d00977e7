package activities

import (
	"encoding/json"
	"time"
)

// Activity is one audit trail entry, written for every emitted record event
type Activity struct {
	Id          uint            `json:"id" gorm:"primarykey"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
	Event       string          `json:"event" gorm:"size:64;index"`
	EntityType  string          `json:"entity_type" gorm:"size:32;index:idx_activity_entity"`
	EntityId    uint            `json:"entity_id" gorm:"index:idx_activity_entity"`
	Action      string          `json:"action" gorm:"size:32"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata,omitempty" gorm:"type:json"`
}

func (m *Activity) TableName() string {
	return "activities"
}

func (m *Activity) GetId() uint {
	return m.Id
}

func (m *Activity) GetModelName() string {
	return "activities"
}

// ActivityListResponse leaves the metadata out
type ActivityListResponse struct {
	Id          uint      `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Event       string    `json:"event"`
	EntityType  string    `json:"entity_type"`
	EntityId    uint      `json:"entity_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
}

func (m *Activity) ToListResponse() *ActivityListResponse {
	if m == nil {
		return nil
	}
	return &ActivityListResponse{
		Id:          m.Id,
		CreatedAt:   m.CreatedAt,
		Event:       m.Event,
		EntityType:  m.EntityType,
		EntityId:    m.EntityId,
		Action:      m.Action,
		Description: m.Description,
	}
}
