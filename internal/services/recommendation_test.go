package services_test

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/Brooks-Cole/brooks-books/internal/data/graph"
	"github.com/Brooks-Cole/brooks-books/internal/data/graph/graphtest"
	"github.com/Brooks-Cole/brooks-books/internal/data/repos/catalog"
	"github.com/Brooks-Cole/brooks-books/internal/data/repos/testutil"
	"github.com/Brooks-Cole/brooks-books/internal/domain"
	"github.com/Brooks-Cole/brooks-books/internal/services"
)

type recFixture struct {
	recs  services.RecommendationService
	books catalog.BookRepo
	store *graphtest.FakeStore
	user  *domain.User
}

func newRecFixture(t *testing.T) *recFixture {
	t.Helper()
	log := testutil.NewLogger(t)
	db := testutil.NewDB(t)
	books := catalog.NewBookRepo(db, log)
	store := graphtest.NewFakeStore()
	user := testutil.SeedUser(t, db, "reader@example.com", "reader")
	return &recFixture{
		recs:  services.NewRecommendationService(books, store, nil, log),
		books: books,
		store: store,
		user:  user,
	}
}

func (f *recFixture) addBook(t *testing.T, title string, genres, tags []string) *domain.Book {
	t.Helper()
	b := &domain.Book{
		Title:  title,
		Author: "Author of " + title,
		Genres: datatypes.NewJSONSlice(genres),
		Tags:   datatypes.NewJSONSlice(tags),
	}
	if err := f.books.Create(context.Background(), nil, b); err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return b
}

func (f *recFixture) markRead(t *testing.T, b *domain.Book, rating int) {
	t.Helper()
	ctx := context.Background()
	if err := f.books.SetReadStatus(ctx, nil, b.ID, f.user.ID, domain.ReadStatusRead); err != nil {
		t.Fatalf("read status: %v", err)
	}
	if rating > 0 {
		if err := f.books.SetRating(ctx, nil, b.ID, f.user.ID, rating, ""); err != nil {
			t.Fatalf("rating: %v", err)
		}
	}
}

func TestForUserRanksLovedGenresFirst(t *testing.T) {
	ctx := context.Background()
	f := newRecFixture(t)

	loved := f.addBook(t, "Redwall", []string{"Fantasy"}, nil)
	disliked := f.addBook(t, "Dull Days", []string{"Historical"}, nil)
	f.markRead(t, loved, 5)
	f.markRead(t, disliked, 1)

	fantasy := f.addBook(t, "Mossflower", []string{"Fantasy"}, nil)
	historical := f.addBook(t, "More Dull Days", []string{"Historical"}, nil)

	recs, err := f.recs.ForUser(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
	if recs[0].Book.ID != fantasy.ID {
		t.Fatalf("top pick = %q, want %q", recs[0].Book.Title, fantasy.Title)
	}
	if recs[1].Book.ID != historical.ID {
		t.Fatalf("second pick = %q, want %q", recs[1].Book.Title, historical.Title)
	}
	if recs[0].MatchScore <= recs[1].MatchScore {
		t.Fatalf("scores not ordered: %v vs %v", recs[0].MatchScore, recs[1].MatchScore)
	}
}

func TestForUserUnratedReadsCountNeutral(t *testing.T) {
	ctx := context.Background()
	f := newRecFixture(t)

	read := f.addBook(t, "Holes", []string{"Adventure"}, nil)
	f.markRead(t, read, 0)
	f.addBook(t, "Hatchet", []string{"Adventure"}, nil)

	recs, err := f.recs.ForUser(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	// avg 3 doubled for the genre weight, over one factor.
	if recs[0].MatchScore != 6 {
		t.Fatalf("score = %v, want 6", recs[0].MatchScore)
	}
	if len(recs[0].MatchFactors) != 0 {
		t.Fatalf("neutral rating should not produce match factors: %v", recs[0].MatchFactors)
	}
}

func TestForUserSkipsBooksWithoutGenresOrTags(t *testing.T) {
	ctx := context.Background()
	f := newRecFixture(t)

	read := f.addBook(t, "Redwall", []string{"Fantasy"}, nil)
	f.markRead(t, read, 5)
	f.addBook(t, "Bare Book", nil, nil)

	recs, err := f.recs.ForUser(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	for _, r := range recs {
		if r.Book.Title == "Bare Book" {
			t.Fatalf("book with no genres or tags must not be scored")
		}
	}
}

func TestForUserMatchFactorsCappedAndDeduped(t *testing.T) {
	ctx := context.Background()
	f := newRecFixture(t)

	read := f.addBook(t, "Favorites",
		[]string{"Fantasy", "Adventure"},
		[]string{"dragons", "quests", "magic", "friendship"})
	f.markRead(t, read, 5)

	f.addBook(t, "Candidate",
		[]string{"Fantasy", "Adventure"},
		[]string{"dragons", "quests", "magic", "friendship"})

	recs, err := f.recs.ForUser(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	factors := recs[0].MatchFactors
	if len(factors) != 3 {
		t.Fatalf("factors = %v, want exactly 3", factors)
	}
	seen := map[string]bool{}
	for _, fac := range factors {
		if seen[fac] {
			t.Fatalf("duplicate factor %q", fac)
		}
		seen[fac] = true
	}
}

func TestForUserNoHistory(t *testing.T) {
	ctx := context.Background()
	f := newRecFixture(t)
	f.addBook(t, "Holes", []string{"Adventure"}, nil)

	recs, err := f.recs.ForUser(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	// Candidates with no overlapping preferences score zero but still
	// appear, matching the catalog-wide candidate pass.
	if len(recs) != 1 || recs[0].MatchScore != 0 {
		t.Fatalf("recs = %+v", recs)
	}
}

func TestSimilarBooksRequiresID(t *testing.T) {
	f := newRecFixture(t)
	if _, err := f.recs.SimilarBooks(context.Background(), ""); err == nil {
		t.Fatalf("empty book id must fail fast")
	}
}

func TestSimilarBooksRanking(t *testing.T) {
	ctx := context.Background()
	f := newRecFixture(t)

	upserts := []graph.BookUpsert{
		{ID: "a", Title: "A", Author: "X", Genres: []string{"Fantasy", "Adventure"}},
		{ID: "b", Title: "B", Author: "X", Genres: []string{"Fantasy", "Adventure"}},
		{ID: "c", Title: "C", Author: "Y", Genres: []string{"Fantasy"}},
		{ID: "d", Title: "D", Author: "Z", Genres: []string{"Mystery"}},
	}
	for _, u := range upserts {
		if err := f.store.UpsertBook(ctx, u); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	similar, err := f.recs.SimilarBooks(ctx, "a")
	if err != nil {
		t.Fatalf("SimilarBooks: %v", err)
	}
	if len(similar) != 2 {
		t.Fatalf("got %d similar books, want 2: %+v", len(similar), similar)
	}
	if similar[0].ID != "b" {
		t.Fatalf("top match = %s, want b (shared author and genres)", similar[0].ID)
	}
	if similar[0].Score <= similar[1].Score {
		t.Fatalf("scores not descending: %+v", similar)
	}
	for _, s := range similar {
		if s.ID == "d" {
			t.Fatalf("unrelated book must not appear")
		}
	}
}

func TestFullGraphFilter(t *testing.T) {
	ctx := context.Background()
	f := newRecFixture(t)

	err := f.store.UpsertBook(ctx, graph.BookUpsert{
		ID: "a", Title: "A", Author: "X",
		Genres: []string{"Fantasy"}, Tags: []string{"dragons"},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	full, err := f.recs.FullGraph(ctx, graph.Filter{})
	if err != nil {
		t.Fatalf("FullGraph: %v", err)
	}
	if len(full.Nodes) != 4 {
		t.Fatalf("nodes = %d, want book+author+genre+tag", len(full.Nodes))
	}

	filtered, err := f.recs.FullGraph(ctx, graph.Filter{Kind: graph.NodeGenre, Value: "Fantasy"})
	if err != nil {
		t.Fatalf("FullGraph filtered: %v", err)
	}
	for _, n := range filtered.Nodes {
		if n.Kind == graph.NodeTag {
			t.Fatalf("genre filter should not return tag nodes")
		}
	}
}

func TestBooksByTagEmptyResult(t *testing.T) {
	f := newRecFixture(t)
	books, err := f.recs.BooksByTag(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("BooksByTag: %v", err)
	}
	if len(books) != 0 {
		t.Fatalf("expected empty result, got %+v", books)
	}
}
