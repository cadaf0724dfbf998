package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/bookride/backend/pkg/db/types"
	"github.com/bookride/backend/pkg/enums"
)

// StripeEvent records each processed webhook event. The unique index on
// EventID is the durable dedupe: a second delivery of the same event id
// fails the insert and is acknowledged as a duplicate.
type StripeEvent struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID     string            `gorm:"column:event_id;uniqueIndex:idx_stripe_events_event_id;not null"`
	EventType   string            `gorm:"column:event_type;not null"`
	Payload     dbtypes.JSONMap   `gorm:"column:payload;type:jsonb"`
	Status      enums.EventStatus `gorm:"column:status;type:stripe_event_status;not null;default:'processing'"`
	Result      dbtypes.JSONMap   `gorm:"column:result;type:jsonb"`
	ProcessedAt time.Time         `gorm:"column:processed_at;autoCreateTime"`
	CompletedAt *time.Time        `gorm:"column:completed_at"`
}
