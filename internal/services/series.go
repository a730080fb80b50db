package services

import (
	"context"
	"fmt"

	"github.com/Brooks-Cole/brooks-books/internal/data/graph"
	"github.com/Brooks-Cole/brooks-books/internal/data/repos/catalog"
	"github.com/Brooks-Cole/brooks-books/internal/domain"
	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
)

type SeriesService interface {
	Upsert(ctx context.Context, series *domain.Series) (*domain.Series, error)
	Get(ctx context.Context, name string) (*domain.Series, error)
	List(ctx context.Context) ([]*domain.Series, error)
}

type seriesService struct {
	series catalog.SeriesRepo
	store  graph.Store
	log    *logger.Logger
}

func NewSeriesService(series catalog.SeriesRepo, store graph.Store, baseLog *logger.Logger) SeriesService {
	return &seriesService{
		series: series,
		store:  store,
		log:    baseLog.With("service", "SeriesService"),
	}
}

// Upsert writes the series to the catalog then mirrors it into the
// graph, attaching PART_OF edges for every listed book that already has
// a Book node.
func (s *seriesService) Upsert(ctx context.Context, series *domain.Series) (*domain.Series, error) {
	if series.Name == "" {
		return nil, fmt.Errorf("series name required")
	}
	if err := s.series.Upsert(ctx, nil, series); err != nil {
		return nil, fmt.Errorf("upsert series: %w", err)
	}

	up := graph.SeriesUpsert{
		Name:        series.Name,
		Description: series.Description,
		Genres:      series.Genres,
	}
	for _, ref := range series.Books {
		up.Books = append(up.Books, graph.BookRef{ID: ref.ID, Title: ref.Title})
	}
	if err := s.store.UpsertSeries(ctx, up); err != nil {
		s.log.Warn("series graph mirror failed", "series", series.Name, "error", err)
	}
	return series, nil
}

func (s *seriesService) Get(ctx context.Context, name string) (*domain.Series, error) {
	series, err := s.series.GetByName(ctx, nil, name)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}
	if series == nil {
		return nil, fmt.Errorf("series %q not found", name)
	}
	return series, nil
}

func (s *seriesService) List(ctx context.Context) ([]*domain.Series, error) {
	return s.series.ListAll(ctx, nil)
}
