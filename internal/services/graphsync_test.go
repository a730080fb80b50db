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
	"github.com/Brooks-Cole/brooks-books/internal/services/seriesdetect"
)

func newSyncService(t *testing.T) (services.GraphSyncService, catalog.BookRepo, *graphtest.FakeStore) {
	t.Helper()
	log := testutil.NewLogger(t)
	db := testutil.NewDB(t)
	books := catalog.NewBookRepo(db, log)
	store := graphtest.NewFakeStore()
	sync := services.NewGraphSyncService(books, store, seriesdetect.New(), log)
	return sync, books, store
}

func TestSyncAllIdempotent(t *testing.T) {
	ctx := context.Background()
	sync, books, store := newSyncService(t)

	seed := []*domain.Book{
		{Title: "The Tower Treasure", Author: "Franklin W. Dixon", Genres: datatypes.NewJSONSlice([]string{"Mystery"})},
		{Title: "The House on the Cliff", Author: "Franklin W. Dixon", Genres: datatypes.NewJSONSlice([]string{"Mystery", "Adventure"})},
	}
	for _, b := range seed {
		if err := books.Create(ctx, nil, b); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	first, err := sync.SyncAll(ctx)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if first.Total != 2 || first.SuccessCount != 2 || first.ErrorCount != 0 {
		t.Fatalf("first summary = %+v", first)
	}
	countsA, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}

	second, err := sync.SyncAll(ctx)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if second.SuccessCount != 2 {
		t.Fatalf("second summary = %+v", second)
	}
	countsB, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}

	if countsA.Books != countsB.Books ||
		countsA.Authors != countsB.Authors ||
		countsA.Genres != countsB.Genres ||
		countsA.Tags != countsB.Tags ||
		countsA.Series != countsB.Series ||
		countsA.Relationships != countsB.Relationships {
		t.Fatalf("sync not idempotent: %+v vs %+v", countsA, countsB)
	}
	if countsB.Books != 2 {
		t.Fatalf("books = %d, want 2", countsB.Books)
	}
	if countsB.Authors != 1 {
		t.Fatalf("same author should merge to one node, got %d", countsB.Authors)
	}
	if countsB.Genres != 2 {
		t.Fatalf("genres = %d, want 2", countsB.Genres)
	}
}

func TestSyncAllPartialFailure(t *testing.T) {
	ctx := context.Background()
	sync, books, store := newSyncService(t)

	var bad *domain.Book
	for i, title := range []string{"Holes", "Hatchet", "Charlotte's Web"} {
		b := &domain.Book{Title: title, Author: "Author " + title}
		if err := books.Create(ctx, nil, b); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if i == 1 {
			bad = b
		}
	}
	store.FailBookIDs[bad.ID.String()] = true

	summary, err := sync.SyncAll(ctx)
	if err != nil {
		t.Fatalf("sync should not fail the batch: %v", err)
	}
	if summary.Total != 3 || summary.SuccessCount != 2 || summary.ErrorCount != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(summary.Errors) != 1 || summary.Errors[0].BookID != bad.ID.String() {
		t.Fatalf("errors = %+v, want one entry for %s", summary.Errors, bad.ID)
	}
	if _, ok := store.Book(bad.ID.String()); ok {
		t.Fatalf("failed book should not be mirrored")
	}
}

func TestSyncOneSeriesFromTitle(t *testing.T) {
	ctx := context.Background()
	sync, books, store := newSyncService(t)

	b := &domain.Book{Title: "Warriors Book 3", Author: "Erin Hunter"}
	if err := books.Create(ctx, nil, b); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := sync.SyncOne(ctx, b); err != nil {
		t.Fatalf("sync one: %v", err)
	}
	mirrored, ok := store.Book(b.ID.String())
	if !ok {
		t.Fatalf("book not mirrored")
	}
	if mirrored.Series != "Warriors" {
		t.Fatalf("series = %q, want Warriors", mirrored.Series)
	}
}

func TestSyncOneExplicitSeriesWins(t *testing.T) {
	ctx := context.Background()
	sync, books, store := newSyncService(t)

	b := &domain.Book{Title: "Redwall", Author: "Brian Jacques", SeriesName: "Handpicked"}
	if err := books.Create(ctx, nil, b); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := sync.SyncOne(ctx, b); err != nil {
		t.Fatalf("sync one: %v", err)
	}
	mirrored, _ := store.Book(b.ID.String())
	if mirrored.Series != "Handpicked" {
		t.Fatalf("series = %q, explicit name should win", mirrored.Series)
	}
}

func TestSyncAllClearsStaleBooks(t *testing.T) {
	ctx := context.Background()
	sync, books, store := newSyncService(t)

	stale := graph.BookUpsert{ID: "stale", Title: "Removed Long Ago"}
	if err := store.UpsertBook(ctx, stale); err != nil {
		t.Fatalf("seed stale: %v", err)
	}
	b := &domain.Book{Title: "Holes", Author: "Louis Sachar"}
	if err := books.Create(ctx, nil, b); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := sync.SyncAll(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if _, ok := store.Book("stale"); ok {
		t.Fatalf("full rebuild should drop books no longer in the catalog")
	}
	if _, ok := store.Book(b.ID.String()); !ok {
		t.Fatalf("catalog book missing after rebuild")
	}
}
