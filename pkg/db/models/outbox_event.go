package models

import (
	"encoding/json"
	"time"

	"github.com/roadcasehq/merchtable-backend/pkg/enums"
)

// OutboxEvent is a pending domain event written in the same transaction as
// the state change it describes. The publisher drains unpublished rows.
type OutboxEvent struct {
	ID            string                    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EventType     enums.OutboxEventType     `gorm:"not null;index" json:"event_type"`
	AggregateType enums.OutboxAggregateType `gorm:"not null" json:"aggregate_type"`
	AggregateID   string                    `gorm:"type:uuid;not null;index" json:"aggregate_id"`
	Payload       json.RawMessage           `gorm:"type:jsonb;not null" json:"payload"`
	AttemptCount  int                       `gorm:"not null;default:0" json:"attempt_count"`
	LastError     *string                   `json:"last_error,omitempty"`
	PublishedAt   *time.Time                `gorm:"index" json:"published_at,omitempty"`
	CreatedAt     time.Time                 `gorm:"autoCreateTime" json:"created_at"`
}

// TableName overrides the default gorm table name.
func (OutboxEvent) TableName() string {
	return "outbox_events"
}
