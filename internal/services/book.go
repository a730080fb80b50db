package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Brooks-Cole/brooks-books/internal/data/repos/catalog"
	"github.com/Brooks-Cole/brooks-books/internal/domain"
	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
)

// BookService owns catalog writes. The catalog is the source of truth;
// graph mirroring is best effort and never fails a catalog write. A
// missed mirror heals on the next full rebuild.
type BookService interface {
	Create(ctx context.Context, book *domain.Book) (*domain.Book, error)
	Update(ctx context.Context, book *domain.Book) (*domain.Book, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	List(ctx context.Context) ([]*domain.Book, error)
	UpdateTags(ctx context.Context, id uuid.UUID, tags []string) (*domain.Book, error)
	Rate(ctx context.Context, bookID, userID uuid.UUID, rating int, review string) error
	SetReadStatus(ctx context.Context, bookID, userID uuid.UUID, status string) error
}

type bookService struct {
	books catalog.BookRepo
	sync  GraphSyncService
	log   *logger.Logger
}

func NewBookService(books catalog.BookRepo, sync GraphSyncService, baseLog *logger.Logger) BookService {
	return &bookService{
		books: books,
		sync:  sync,
		log:   baseLog.With("service", "BookService"),
	}
}

func (s *bookService) Create(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if err := book.Validate(); err != nil {
		return nil, err
	}
	if err := s.books.Create(ctx, nil, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	s.mirror(ctx, book)
	return book, nil
}

func (s *bookService) Update(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if err := book.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.books.GetByID(ctx, nil, book.ID)
	if err != nil {
		return nil, fmt.Errorf("load book: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("book %s not found", book.ID)
	}
	if err := s.books.Update(ctx, nil, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	s.mirror(ctx, book)
	return book, nil
}

func (s *bookService) Get(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load book: %w", err)
	}
	if book == nil {
		return nil, fmt.Errorf("book %s not found", id)
	}
	return book, nil
}

func (s *bookService) List(ctx context.Context) ([]*domain.Book, error) {
	return s.books.ListAll(ctx, nil)
}

func (s *bookService) UpdateTags(ctx context.Context, id uuid.UUID, tags []string) (*domain.Book, error) {
	book, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.books.UpdateTags(ctx, nil, id, tags); err != nil {
		return nil, fmt.Errorf("update tags: %w", err)
	}
	book.Tags = tags
	s.mirror(ctx, book)
	return book, nil
}

func (s *bookService) Rate(ctx context.Context, bookID, userID uuid.UUID, rating int, review string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	if _, err := s.Get(ctx, bookID); err != nil {
		return err
	}
	return s.books.SetRating(ctx, nil, bookID, userID, rating, review)
}

func (s *bookService) SetReadStatus(ctx context.Context, bookID, userID uuid.UUID, status string) error {
	if !domain.ValidReadStatus(status) {
		return fmt.Errorf("invalid read status %q", status)
	}
	if _, err := s.Get(ctx, bookID); err != nil {
		return err
	}
	return s.books.SetReadStatus(ctx, nil, bookID, userID, status)
}

func (s *bookService) mirror(ctx context.Context, book *domain.Book) {
	if err := s.sync.SyncOne(ctx, book); err != nil {
		s.log.Warn("graph mirror failed", "bookId", book.ID, "error", err)
	}
}
