package bookings

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bookride/backend/pkg/db/models"
	dbtypes "github.com/bookride/backend/pkg/db/types"
	"github.com/bookride/backend/pkg/enums"
)

func setupBookingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS bookings (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_intent_id TEXT,
  payment TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func TestFindByPaymentIntentID(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	booking := &models.Booking{
		ID:              uuid.New(),
		Status:          enums.BookingStatusPending,
		PaymentIntentID: "pi_" + uuid.NewString(),
		Payment:         dbtypes.JSONMap{},
	}
	require.NoError(t, db.Create(booking).Error)

	found, err := repo.FindByPaymentIntentID(ctx, booking.PaymentIntentID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, found.ID)
	assert.Equal(t, enums.BookingStatusPending, found.Status)
}

func TestFindByPaymentIntentIDNotFound(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByPaymentIntentID(context.Background(), "pi_missing_"+uuid.NewString())
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestUpdatePersistsStatusAndPayment(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	booking := &models.Booking{
		ID:              uuid.New(),
		Status:          enums.BookingStatusPending,
		PaymentIntentID: "pi_" + uuid.NewString(),
		Payment:         dbtypes.JSONMap{},
	}
	require.NoError(t, db.Create(booking).Error)

	booking.Status = enums.BookingStatusConfirmed
	booking.Payment = dbtypes.JSONMap{
		"status":         "paid",
		"transaction_id": booking.PaymentIntentID,
	}
	require.NoError(t, repo.Update(ctx, booking))

	found, err := repo.FindByPaymentIntentID(ctx, booking.PaymentIntentID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusConfirmed, found.Status)
	assert.Equal(t, "paid", found.Payment["status"])
	assert.Equal(t, booking.PaymentIntentID, found.Payment["transaction_id"])
}

func TestWithTxUsesTransactionConnection(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	booking := &models.Booking{
		ID:              uuid.New(),
		Status:          enums.BookingStatusPending,
		PaymentIntentID: "pi_" + uuid.NewString(),
		Payment:         dbtypes.JSONMap{},
	}
	require.NoError(t, db.Create(booking).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		booking.Status = enums.BookingStatusCancelled
		return repo.WithTx(tx).Update(ctx, booking)
	})
	require.NoError(t, err)

	found, err := repo.FindByPaymentIntentID(ctx, booking.PaymentIntentID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusCancelled, found.Status)
}
