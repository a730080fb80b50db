package services

import (
	"context"
	"fmt"

	"github.com/Brooks-Cole/brooks-books/internal/data/graph"
	"github.com/Brooks-Cole/brooks-books/internal/data/repos/catalog"
	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
)

// RelinkReport summarizes a tag relink pass over the catalog.
type RelinkReport struct {
	BooksProcessed int         `json:"booksProcessed"`
	ErrorCount     int         `json:"errorCount"`
	Errors         []SyncError `json:"errors,omitempty"`
}

type MaintenanceService interface {
	// Stats reports node and relationship counts for the whole graph.
	Stats(ctx context.Context) (graph.Counts, error)
	// CleanupOrphanedTags drops Tag nodes no relationship touches.
	CleanupOrphanedTags(ctx context.Context) (int64, error)
	// RelinkTags rebuilds every book's HAS_TAG edges from catalog state.
	RelinkTags(ctx context.Context) (*RelinkReport, error)
}

type maintenanceService struct {
	books catalog.BookRepo
	store graph.Store
	log   *logger.Logger
}

func NewMaintenanceService(books catalog.BookRepo, store graph.Store, baseLog *logger.Logger) MaintenanceService {
	return &maintenanceService{
		books: books,
		store: store,
		log:   baseLog.With("service", "MaintenanceService"),
	}
}

func (s *maintenanceService) Stats(ctx context.Context) (graph.Counts, error) {
	return s.store.Counts(ctx)
}

func (s *maintenanceService) CleanupOrphanedTags(ctx context.Context) (int64, error) {
	removed, err := s.store.CleanupOrphanedTags(ctx)
	if err != nil {
		return 0, fmt.Errorf("cleanup orphaned tags: %w", err)
	}
	s.log.Info("removed orphaned tags", "count", removed)
	return removed, nil
}

func (s *maintenanceService) RelinkTags(ctx context.Context) (*RelinkReport, error) {
	books, err := s.books.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	report := &RelinkReport{}
	for _, book := range books {
		if err := s.store.RelinkTags(ctx, book.ID.String(), book.Tags); err != nil {
			s.log.Warn("relink failed", "bookId", book.ID, "error", err)
			report.ErrorCount++
			report.Errors = append(report.Errors, SyncError{
				BookID: book.ID.String(),
				Title:  book.Title,
				Error:  err.Error(),
			})
			continue
		}
		report.BooksProcessed++
	}
	return report, nil
}
