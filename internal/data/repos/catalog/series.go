package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/Brooks-Cole/brooks-books/internal/domain"
	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
)

type SeriesRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, series *domain.Series) error
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*domain.Series, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.Series, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) error
}

type seriesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSeriesRepo(db *gorm.DB, baseLog *logger.Logger) SeriesRepo {
	return &seriesRepo{db: db, log: baseLog.With("repo", "SeriesRepo")}
}

func (r *seriesRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Upsert merges on the series name so repeated catalog scans converge
// on one row per series.
func (r *seriesRepo) Upsert(ctx context.Context, tx *gorm.DB, series *domain.Series) error {
	t := r.conn(tx).WithContext(ctx)
	existing, err := r.GetByName(ctx, tx, series.Name)
	if err != nil {
		return err
	}
	if existing == nil {
		return t.Create(series).Error
	}
	series.ID = existing.ID
	series.CreatedAt = existing.CreatedAt
	return t.Save(series).Error
}

func (r *seriesRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*domain.Series, error) {
	var out []*domain.Series
	err := r.conn(tx).WithContext(ctx).Where("name = ?", name).Limit(1).Find(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *seriesRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.Series, error) {
	var out []*domain.Series
	err := r.conn(tx).WithContext(ctx).Order("name ASC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *seriesRepo) DeleteAll(ctx context.Context, tx *gorm.DB) error {
	return r.conn(tx).WithContext(ctx).Where("1 = 1").Delete(&domain.Series{}).Error
}
