package adminlog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bookride/backend/pkg/db/models"
	dbtypes "github.com/bookride/backend/pkg/db/types"
)

func setupAdminLogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS admin_logs (
  id TEXT PRIMARY KEY,
  action TEXT NOT NULL,
  target_type TEXT NOT NULL,
  target_id TEXT,
  details TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func TestAppendStoresEntry(t *testing.T) {
	db := setupAdminLogTestDB(t)
	repo := NewRepository(db)

	entry := &models.AdminLog{
		ID:         uuid.New(),
		Action:     "dispute_created",
		TargetType: "booking",
		TargetID:   uuid.New(),
		Details:    dbtypes.JSONMap{"dispute_id": "dp_1", "reason": "fraudulent"},
	}
	require.NoError(t, repo.Append(context.Background(), entry))

	var found models.AdminLog
	require.NoError(t, db.Where("id = ?", entry.ID).First(&found).Error)
	assert.Equal(t, "dispute_created", found.Action)
	assert.Equal(t, entry.TargetID, found.TargetID)
	assert.Equal(t, "dp_1", found.Details["dispute_id"])
}
