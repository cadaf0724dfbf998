package stripewebhook

import (
	"context"
	"time"

	"github.com/bookride/backend/internal/repo"
	"github.com/bookride/backend/pkg/db/models"
	dbtypes "github.com/bookride/backend/pkg/db/types"
	"github.com/bookride/backend/pkg/enums"
	"gorm.io/gorm"
)

// EventRepository persists processed-event records. The unique index on
// event_id makes the insert the durable dedupe point.
type EventRepository interface {
	FindByEventID(ctx context.Context, eventID string) (*models.StripeEvent, error)
	Insert(ctx context.Context, event *models.StripeEvent) error
	Complete(ctx context.Context, eventID string, status enums.EventStatus, result dbtypes.JSONMap) error
}

type eventRepository struct {
	repo.Base
}

// NewEventRepository returns an event repository bound to the provided database.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{Base: repo.NewBase(db)}
}

func (r *eventRepository) FindByEventID(ctx context.Context, eventID string) (*models.StripeEvent, error) {
	var event models.StripeEvent
	if err := r.DB(ctx).
		Where("event_id = ?", eventID).
		First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Insert(ctx context.Context, event *models.StripeEvent) error {
	return r.DB(ctx).Create(event).Error
}

// Complete attaches the terminal result to the processed-event record.
func (r *eventRepository) Complete(ctx context.Context, eventID string, status enums.EventStatus, result dbtypes.JSONMap) error {
	now := time.Now().UTC()
	return r.DB(ctx).
		Model(&models.StripeEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]any{
			"status":       status,
			"result":       result,
			"completed_at": &now,
		}).Error
}
