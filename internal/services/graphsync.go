package services

import (
	"context"
	"fmt"

	"github.com/Brooks-Cole/brooks-books/internal/data/graph"
	"github.com/Brooks-Cole/brooks-books/internal/data/repos/catalog"
	"github.com/Brooks-Cole/brooks-books/internal/domain"
	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
	"github.com/Brooks-Cole/brooks-books/internal/services/seriesdetect"
)

// SyncError records one book the graph rebuild could not mirror.
type SyncError struct {
	BookID string `json:"bookId"`
	Title  string `json:"title"`
	Error  string `json:"error"`
}

// SyncSummary reports the outcome of a full graph rebuild. A rebuild
// with errors is a partial success, not a failure: every book that
// could be mirrored was.
type SyncSummary struct {
	Total        int         `json:"total"`
	SuccessCount int         `json:"successCount"`
	ErrorCount   int         `json:"errorCount"`
	Errors       []SyncError `json:"errors,omitempty"`
}

type GraphSyncService interface {
	EnsureSchema(ctx context.Context) error
	SyncAll(ctx context.Context) (*SyncSummary, error)
	SyncOne(ctx context.Context, book *domain.Book) error
	RemoveBook(ctx context.Context, bookID string) error
}

type graphSyncService struct {
	books  catalog.BookRepo
	store  graph.Store
	detect *seriesdetect.Detector
	log    *logger.Logger
}

func NewGraphSyncService(books catalog.BookRepo, store graph.Store, detect *seriesdetect.Detector, baseLog *logger.Logger) GraphSyncService {
	return &graphSyncService{
		books:  books,
		store:  store,
		detect: detect,
		log:    baseLog.With("service", "GraphSyncService"),
	}
}

func (s *graphSyncService) EnsureSchema(ctx context.Context) error {
	return s.store.EnsureSchema(ctx)
}

// SyncAll rebuilds the entire graph mirror from the catalog: drop every
// Book node, then re-derive the graph one book at a time. Books are
// processed sequentially so one bad record cannot wedge the rest.
func (s *graphSyncService) SyncAll(ctx context.Context) (*SyncSummary, error) {
	deleted, err := s.store.DeleteAllBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("clear graph: %w", err)
	}
	s.log.Info("cleared graph for rebuild", "deletedBooks", deleted)

	books, err := s.books.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	summary := &SyncSummary{Total: len(books)}
	for _, book := range books {
		if err := s.SyncOne(ctx, book); err != nil {
			s.log.Warn("book sync failed", "bookId", book.ID, "title", book.Title, "error", err)
			summary.ErrorCount++
			summary.Errors = append(summary.Errors, SyncError{
				BookID: book.ID.String(),
				Title:  book.Title,
				Error:  err.Error(),
			})
			continue
		}
		summary.SuccessCount++
	}
	s.log.Info("graph rebuild complete",
		"total", summary.Total,
		"success", summary.SuccessCount,
		"errors", summary.ErrorCount)
	return summary, nil
}

// SyncOne mirrors a single catalog book into the graph. The upsert is
// idempotent: authors, genres, tags and series merge on their names.
func (s *graphSyncService) SyncOne(ctx context.Context, book *domain.Book) error {
	if book == nil {
		return fmt.Errorf("nil book")
	}
	return s.store.UpsertBook(ctx, s.upsertFrom(book))
}

func (s *graphSyncService) RemoveBook(ctx context.Context, bookID string) error {
	return s.store.DeleteBook(ctx, bookID)
}

func (s *graphSyncService) upsertFrom(book *domain.Book) graph.BookUpsert {
	series := book.SeriesName
	if series == "" {
		series = s.detect.Detect(book.Title)
	}
	return graph.BookUpsert{
		ID:          book.ID.String(),
		Title:       book.Title,
		Description: book.Description,
		Author:      book.Author,
		AgeMin:      book.AgeMin,
		AgeMax:      book.AgeMax,
		AddedAt:     book.AddedAt,
		Genres:      []string(book.Genres),
		Tags:        []string(book.Tags),
		Series:      series,
	}
}
