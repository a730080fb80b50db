package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/Brooks-Cole/brooks-books/internal/data/graph"
	"github.com/Brooks-Cole/brooks-books/internal/data/repos/catalog"
	"github.com/Brooks-Cole/brooks-books/internal/domain"
	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
	"github.com/Brooks-Cole/brooks-books/internal/platform/redisdb"
)

// neutralRating stands in for books a reader finished without rating.
const neutralRating = 3

const maxRecommendations = 10

const maxMatchFactors = 3

// Recommendation pairs a catalog book with its preference score and the
// reasons it surfaced.
type Recommendation struct {
	Book         *domain.Book `json:"book"`
	MatchScore   float64      `json:"matchScore"`
	MatchFactors []string     `json:"matchFactors"`
}

type RecommendationService interface {
	// ForUser ranks unread books against the user's reading history.
	ForUser(ctx context.Context, userID uuid.UUID) ([]Recommendation, error)
	// SimilarBooks ranks graph neighbors of a book by shared genres and author.
	SimilarBooks(ctx context.Context, bookID string) ([]graph.SimilarBook, error)
	BooksByTag(ctx context.Context, tag string) ([]graph.BookRef, error)
	SeriesBooks(ctx context.Context, name string) ([]graph.BookRef, error)
	FullGraph(ctx context.Context, filter graph.Filter) (*graph.View, error)
	UpsertSeries(ctx context.Context, up graph.SeriesUpsert) error
}

type recommendationService struct {
	books catalog.BookRepo
	store graph.Store
	cache *redisdb.Cache
	log   *logger.Logger
}

func NewRecommendationService(books catalog.BookRepo, store graph.Store, cache *redisdb.Cache, baseLog *logger.Logger) RecommendationService {
	return &recommendationService{
		books: books,
		store: store,
		cache: cache,
		log:   baseLog.With("service", "RecommendationService"),
	}
}

// scoreAccum tracks the running average rating per genre or tag.
type scoreAccum struct {
	sum   int
	count int
}

func (a scoreAccum) avg() float64 {
	return float64(a.sum) / float64(a.count)
}

func (s *recommendationService) ForUser(ctx context.Context, userID uuid.UUID) ([]Recommendation, error) {
	read, err := s.books.ListReadByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load read books: %w", err)
	}

	genreScores := map[string]*scoreAccum{}
	tagScores := map[string]*scoreAccum{}
	for _, book := range read {
		rating, ok := book.RatingBy(userID)
		if !ok {
			rating = neutralRating
		}
		for _, genre := range book.Genres {
			acc := genreScores[genre]
			if acc == nil {
				acc = &scoreAccum{}
				genreScores[genre] = acc
			}
			acc.sum += rating
			acc.count++
		}
		for _, tag := range book.Tags {
			acc := tagScores[tag]
			if acc == nil {
				acc = &scoreAccum{}
				tagScores[tag] = acc
			}
			acc.sum += rating
			acc.count++
		}
	}

	unread, err := s.books.ListUnreadByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load unread books: %w", err)
	}

	recs := make([]Recommendation, 0, len(unread))
	for _, book := range unread {
		denom := len(book.Genres) + len(book.Tags)
		if denom == 0 {
			continue
		}
		var score float64
		var factors []string
		for _, genre := range book.Genres {
			acc := genreScores[genre]
			if acc == nil {
				continue
			}
			avg := acc.avg()
			score += avg * 2
			if avg > neutralRating {
				factors = append(factors, fmt.Sprintf("Enjoyed %s books", genre))
			}
		}
		for _, tag := range book.Tags {
			acc := tagScores[tag]
			if acc == nil {
				continue
			}
			avg := acc.avg()
			score += avg
			if avg > neutralRating {
				factors = append(factors, fmt.Sprintf("Liked books with %s", tag))
			}
		}
		recs = append(recs, Recommendation{
			Book:         book,
			MatchScore:   math.Round(score/float64(denom)*100) / 100,
			MatchFactors: dedupeFactors(factors),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].MatchScore > recs[j].MatchScore })
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs, nil
}

func (s *recommendationService) SimilarBooks(ctx context.Context, bookID string) ([]graph.SimilarBook, error) {
	if bookID == "" {
		return nil, fmt.Errorf("book id required")
	}
	return s.store.SimilarBooks(ctx, bookID)
}

func (s *recommendationService) BooksByTag(ctx context.Context, tag string) ([]graph.BookRef, error) {
	if tag == "" {
		return nil, fmt.Errorf("tag required")
	}
	return s.store.BooksByTag(ctx, tag)
}

func (s *recommendationService) SeriesBooks(ctx context.Context, name string) ([]graph.BookRef, error) {
	if name == "" {
		return nil, fmt.Errorf("series name required")
	}
	return s.store.SeriesBooks(ctx, name)
}

func (s *recommendationService) FullGraph(ctx context.Context, filter graph.Filter) (*graph.View, error) {
	key := graphCacheKey(filter)
	var cached graph.View
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}
	view, err := s.store.FullGraph(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, view, 0)
	return view, nil
}

func (s *recommendationService) UpsertSeries(ctx context.Context, up graph.SeriesUpsert) error {
	if up.Name == "" {
		return fmt.Errorf("series name required")
	}
	return s.store.UpsertSeries(ctx, up)
}

func graphCacheKey(filter graph.Filter) string {
	if filter.Kind == "" {
		return "graph:full"
	}
	return fmt.Sprintf("graph:%s:%s", filter.Kind, filter.Value)
}

// dedupeFactors keeps first occurrences in order, capped at
// maxMatchFactors.
func dedupeFactors(factors []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, maxMatchFactors)
	for _, f := range factors {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
		if len(out) == maxMatchFactors {
			break
		}
	}
	return out
}
