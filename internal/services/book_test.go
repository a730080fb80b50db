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

func newBookService(t *testing.T) (services.BookService, catalog.BookRepo, *graphtest.FakeStore, *domain.User) {
	t.Helper()
	log := testutil.NewLogger(t)
	db := testutil.NewDB(t)
	books := catalog.NewBookRepo(db, log)
	store := graphtest.NewFakeStore()
	sync := services.NewGraphSyncService(books, store, seriesdetect.New(), log)
	user := testutil.SeedUser(t, db, "reader@example.com", "reader")
	return services.NewBookService(books, sync, log), books, store, user
}

func TestCreateBookMirrorsToGraph(t *testing.T) {
	ctx := context.Background()
	svc, _, store, _ := newBookService(t)

	book, err := svc.Create(ctx, &domain.Book{
		Title:  "Hatchet",
		Author: "Gary Paulsen",
		Genres: datatypes.NewJSONSlice([]string{"Adventure"}),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := store.Book(book.ID.String()); !ok {
		t.Fatalf("created book should be mirrored")
	}
}

func TestCreateBookSurvivesGraphFailure(t *testing.T) {
	ctx := context.Background()
	svc, repo, store, _ := newBookService(t)

	book, err := svc.Create(ctx, &domain.Book{Title: "Holes", Author: "Louis Sachar"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store.FailBookIDs[book.ID.String()] = true

	book.Description = "Stanley digs holes."
	if _, err := svc.Update(ctx, book); err != nil {
		t.Fatalf("catalog update must succeed despite graph failure: %v", err)
	}
	stored, err := repo.GetByID(ctx, nil, book.ID)
	if err != nil || stored == nil {
		t.Fatalf("load updated book: %v", err)
	}
	if stored.Description != "Stanley digs holes." {
		t.Fatalf("catalog write lost: %q", stored.Description)
	}
}

func TestCreateBookRejectsInvalidGenre(t *testing.T) {
	svc, _, _, _ := newBookService(t)
	_, err := svc.Create(context.Background(), &domain.Book{
		Title:  "Odd One",
		Author: "Nobody",
		Genres: datatypes.NewJSONSlice([]string{"Cooking"}),
	})
	if err == nil {
		t.Fatalf("unknown genre must be rejected")
	}
}

func TestRateValidatesBounds(t *testing.T) {
	ctx := context.Background()
	svc, _, _, user := newBookService(t)
	book, err := svc.Create(ctx, &domain.Book{Title: "Holes", Author: "Louis Sachar"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Rate(ctx, book.ID, user.ID, 6, ""); err == nil {
		t.Fatalf("rating above 5 must be rejected")
	}
	if err := svc.Rate(ctx, book.ID, user.ID, 0, ""); err == nil {
		t.Fatalf("rating below 1 must be rejected")
	}
	if err := svc.Rate(ctx, book.ID, user.ID, 4, "great"); err != nil {
		t.Fatalf("valid rating: %v", err)
	}
}

func TestSetReadStatusValidates(t *testing.T) {
	ctx := context.Background()
	svc, _, _, user := newBookService(t)
	book, err := svc.Create(ctx, &domain.Book{Title: "Holes", Author: "Louis Sachar"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.SetReadStatus(ctx, book.ID, user.ID, "SKIMMED"); err == nil {
		t.Fatalf("unknown read status must be rejected")
	}
	if err := svc.SetReadStatus(ctx, book.ID, user.ID, domain.ReadStatusRead); err != nil {
		t.Fatalf("valid status: %v", err)
	}
}

func TestUpdateTagsRefreshesMirror(t *testing.T) {
	ctx := context.Background()
	svc, _, store, _ := newBookService(t)
	book, err := svc.Create(ctx, &domain.Book{Title: "Holes", Author: "Louis Sachar"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateTags(ctx, book.ID, []string{"digging", "desert"}); err != nil {
		t.Fatalf("update tags: %v", err)
	}
	mirrored, ok := store.Book(book.ID.String())
	if !ok {
		t.Fatalf("book missing from mirror")
	}
	if len(mirrored.Tags) != 2 {
		t.Fatalf("mirror tags = %v", mirrored.Tags)
	}
}
