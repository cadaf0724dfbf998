package bookings

import (
	"context"

	"github.com/bookride/backend/internal/repo"
	"github.com/bookride/backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles booking persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
}

type repository struct {
	repo.Base
}

// NewRepository returns a booking repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// FindByPaymentIntentID returns the booking correlated to a Stripe payment
// intent, or gorm.ErrRecordNotFound when none matches.
func (r *repository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.DB(ctx).
		Where("payment_intent_id = ?", paymentIntentID).
		First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) Update(ctx context.Context, booking *models.Booking) error {
	return r.DB(ctx).Save(booking).Error
}
