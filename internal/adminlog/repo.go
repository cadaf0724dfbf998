package adminlog

import (
	"context"

	"github.com/bookride/backend/internal/repo"
	"github.com/bookride/backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository appends audit entries. Entries are never updated or deleted.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, entry *models.AdminLog) error
}

type repository struct {
	repo.Base
}

// NewRepository returns an admin log repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Append(ctx context.Context, entry *models.AdminLog) error {
	return r.DB(ctx).Create(entry).Error
}
