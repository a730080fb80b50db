// Package testutil wires an in-memory sqlite database with the full
// catalog schema so repo and service tests run without Postgres.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Brooks-Cole/brooks-books/internal/domain"
	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
)

func NewLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named in-memory database keeps all pooled connections on the
	// same store while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Book{},
		&domain.BookRating{},
		&domain.BookReadStatus{},
		&domain.BookDrawing{},
		&domain.BookConnection{},
		&domain.Series{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedBook persists a minimal valid book, applying any mutators first.
func SeedBook(t *testing.T, db *gorm.DB, title, author string, mutate ...func(*domain.Book)) *domain.Book {
	t.Helper()
	book := &domain.Book{
		Title:  title,
		Author: author,
	}
	for _, fn := range mutate {
		fn(book)
	}
	if err := db.Create(book).Error; err != nil {
		t.Fatalf("seed book %q: %v", title, err)
	}
	return book
}

func SeedUser(t *testing.T, db *gorm.DB, email, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:    email,
		Username: username,
		Password: "x",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %q: %v", email, err)
	}
	return user
}
