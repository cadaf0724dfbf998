package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/bookride/backend/pkg/db/types"
	"github.com/bookride/backend/pkg/enums"
)

// Booking is created by the booking flow and only mutated here when Stripe
// reports a terminal payment outcome.
type Booking struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Status          enums.BookingStatus `gorm:"column:status;type:booking_status;not null;default:'pending'"`
	PaymentIntentID string              `gorm:"column:payment_intent_id;index"`
	Payment         dbtypes.JSONMap     `gorm:"column:payment;type:jsonb"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
