// Package postgres opens the catalog database and keeps its schema
// current.
package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Brooks-Cole/brooks-books/internal/domain"
	"github.com/Brooks-Cole/brooks-books/internal/platform/envutil"
	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(baseLog *logger.Logger) (*Service, error) {
	log := baseLog.With("platform", "postgres")
	dsn := envutil.String("DATABASE_URL", "")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			envutil.String("POSTGRES_HOST", "localhost"),
			envutil.Int("POSTGRES_PORT", 5432),
			envutil.String("POSTGRES_USER", "postgres"),
			envutil.String("POSTGRES_PASSWORD", "postgres"),
			envutil.String("POSTGRES_DB", "brooksbooks"),
			envutil.String("POSTGRES_SSLMODE", "disable"))
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	log.Info("connected to postgres")
	return &Service{db: db, log: log}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) AutoMigrateAll() error {
	return s.db.AutoMigrate(
		&domain.User{},
		&domain.Book{},
		&domain.BookRating{},
		&domain.BookReadStatus{},
		&domain.BookDrawing{},
		&domain.BookConnection{},
		&domain.Series{},
	)
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
