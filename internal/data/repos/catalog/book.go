package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Brooks-Cole/brooks-books/internal/domain"
	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
)

type BookRepo interface {
	Create(ctx context.Context, tx *gorm.DB, book *domain.Book) error
	Update(ctx context.Context, tx *gorm.DB, book *domain.Book) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Book, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.Book, error)
	ListReadByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.Book, error)
	ListUnreadByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.Book, error)
	UpdateTags(ctx context.Context, tx *gorm.DB, id uuid.UUID, tags []string) error
	SetRating(ctx context.Context, tx *gorm.DB, bookID, userID uuid.UUID, rating int, review string) error
	SetReadStatus(ctx context.Context, tx *gorm.DB, bookID, userID uuid.UUID, status string) error
}

type bookRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBookRepo(db *gorm.DB, baseLog *logger.Logger) BookRepo {
	return &bookRepo{db: db, log: baseLog.With("repo", "BookRepo")}
}

func (r *bookRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *bookRepo) Create(ctx context.Context, tx *gorm.DB, book *domain.Book) error {
	return r.conn(tx).WithContext(ctx).Create(book).Error
}

func (r *bookRepo) Update(ctx context.Context, tx *gorm.DB, book *domain.Book) error {
	return r.conn(tx).WithContext(ctx).Save(book).Error
}

func (r *bookRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Book, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*domain.Book
	err := r.conn(tx).WithContext(ctx).
		Preload("Ratings").Preload("ReadStatuses").Preload("Drawings").Preload("Connections").
		Where("id = ?", id).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *bookRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.Book, error) {
	var out []*domain.Book
	err := r.conn(tx).WithContext(ctx).
		Preload("Ratings").Preload("ReadStatuses").
		Order("title ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *bookRepo) ListReadByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.Book, error) {
	var out []*domain.Book
	if userID == uuid.Nil {
		return out, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Preload("Ratings").
		Joins("JOIN book_read_status brs ON brs.book_id = book.id").
		Where("brs.user_id = ? AND brs.status = ?", userID, domain.ReadStatusRead).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *bookRepo) ListUnreadByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.Book, error) {
	var out []*domain.Book
	if userID == uuid.Nil {
		return out, nil
	}
	read := r.conn(tx).Model(&domain.BookReadStatus{}).
		Select("book_id").
		Where("user_id = ? AND status = ?", userID, domain.ReadStatusRead)
	err := r.conn(tx).WithContext(ctx).
		Where("id NOT IN (?)", read).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *bookRepo) UpdateTags(ctx context.Context, tx *gorm.DB, id uuid.UUID, tags []string) error {
	return r.conn(tx).WithContext(ctx).
		Model(&domain.Book{}).
		Where("id = ?", id).
		Update("tags", datatypes.NewJSONSlice(tags)).Error
}

func (r *bookRepo) SetRating(ctx context.Context, tx *gorm.DB, bookID, userID uuid.UUID, rating int, review string) error {
	t := r.conn(tx).WithContext(ctx)
	var existing []domain.BookRating
	if err := t.Where("book_id = ? AND user_id = ?", bookID, userID).Limit(1).Find(&existing).Error; err != nil {
		return err
	}
	if len(existing) > 0 {
		return t.Model(&existing[0]).Updates(map[string]interface{}{
			"rating": rating,
			"review": review,
		}).Error
	}
	return t.Create(&domain.BookRating{
		BookID: bookID,
		UserID: userID,
		Rating: rating,
		Review: review,
	}).Error
}

func (r *bookRepo) SetReadStatus(ctx context.Context, tx *gorm.DB, bookID, userID uuid.UUID, status string) error {
	t := r.conn(tx).WithContext(ctx)
	var existing []domain.BookReadStatus
	if err := t.Where("book_id = ? AND user_id = ?", bookID, userID).Limit(1).Find(&existing).Error; err != nil {
		return err
	}
	if len(existing) > 0 {
		return t.Model(&existing[0]).Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
	}
	return t.Create(&domain.BookReadStatus{
		BookID:    bookID,
		UserID:    userID,
		Status:    status,
		UpdatedAt: time.Now().UTC(),
	}).Error
}
