package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/bookride/backend/pkg/db/types"
)

// AdminLog is an append-only audit entry for events that need a human look.
type AdminLog struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Action     string          `gorm:"column:action;not null"`
	TargetType string          `gorm:"column:target_type;not null"`
	TargetID   uuid.UUID       `gorm:"column:target_id;type:uuid"`
	Details    dbtypes.JSONMap `gorm:"column:details;type:jsonb"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
