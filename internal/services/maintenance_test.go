package services_test

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/Brooks-Cole/brooks-books/internal/data/graph/graphtest"
	"github.com/Brooks-Cole/brooks-books/internal/data/repos/catalog"
	"github.com/Brooks-Cole/brooks-books/internal/data/repos/testutil"
	"github.com/Brooks-Cole/brooks-books/internal/domain"
	"github.com/Brooks-Cole/brooks-books/internal/services"
	"github.com/Brooks-Cole/brooks-books/internal/services/seriesdetect"
)

func newMaintFixture(t *testing.T) (services.MaintenanceService, services.GraphSyncService, catalog.BookRepo, *graphtest.FakeStore) {
	t.Helper()
	log := testutil.NewLogger(t)
	db := testutil.NewDB(t)
	books := catalog.NewBookRepo(db, log)
	store := graphtest.NewFakeStore()
	sync := services.NewGraphSyncService(books, store, seriesdetect.New(), log)
	return services.NewMaintenanceService(books, store, log), sync, books, store
}

func TestStatsCountsMirror(t *testing.T) {
	ctx := context.Background()
	maint, sync, books, _ := newMaintFixture(t)

	b := &domain.Book{
		Title:  "Redwall",
		Author: "Brian Jacques",
		Genres: datatypes.NewJSONSlice([]string{"Fantasy"}),
		Tags:   datatypes.NewJSONSlice([]string{"mice"}),
	}
	if err := books.Create(ctx, nil, b); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := sync.SyncAll(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	counts, err := maint.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if counts.Books != 1 || counts.Authors != 1 || counts.Genres != 1 || counts.Tags != 1 {
		t.Fatalf("counts = %+v", counts)
	}
	if counts.Series != 1 {
		t.Fatalf("Redwall title should have produced a series node, counts = %+v", counts)
	}
	if counts.Relationships == 0 {
		t.Fatalf("expected relationships, counts = %+v", counts)
	}
}

func TestRelinkTags(t *testing.T) {
	ctx := context.Background()
	maint, sync, books, store := newMaintFixture(t)

	b := &domain.Book{
		Title:  "Holes",
		Author: "Louis Sachar",
		Tags:   datatypes.NewJSONSlice([]string{"old-tag"}),
	}
	if err := books.Create(ctx, nil, b); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := sync.SyncAll(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	// Catalog tags change behind the mirror's back.
	if err := books.UpdateTags(ctx, nil, b.ID, []string{"new-tag"}); err != nil {
		t.Fatalf("update tags: %v", err)
	}

	report, err := maint.RelinkTags(ctx)
	if err != nil {
		t.Fatalf("relink: %v", err)
	}
	if report.BooksProcessed != 1 || report.ErrorCount != 0 {
		t.Fatalf("report = %+v", report)
	}
	mirrored, _ := store.Book(b.ID.String())
	if len(mirrored.Tags) != 1 || mirrored.Tags[0] != "new-tag" {
		t.Fatalf("mirror tags = %v, want [new-tag]", mirrored.Tags)
	}
}

func TestCleanupOrphanedTags(t *testing.T) {
	ctx := context.Background()
	maint, sync, books, store := newMaintFixture(t)

	b := &domain.Book{
		Title:  "Holes",
		Author: "Louis Sachar",
		Tags:   datatypes.NewJSONSlice([]string{"digging"}),
	}
	if err := books.Create(ctx, nil, b); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := sync.SyncAll(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}

	if err := store.RelinkTags(ctx, b.ID.String(), nil); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	removed, err := maint.CleanupOrphanedTags(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
}
