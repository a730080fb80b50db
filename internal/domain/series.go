package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeriesBookRef is the embedded book listing of a series definition.
// The catalog book row stays authoritative; this is display metadata.
type SeriesBookRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order,omitempty"`
}

type Series struct {
	ID          uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string                             `gorm:"uniqueIndex;not null" json:"name"`
	Description string                             `gorm:"type:text" json:"description,omitempty"`
	Author      string                             `json:"author,omitempty"`
	Genres      datatypes.JSONSlice[string]        `json:"genres"`
	Books       datatypes.JSONSlice[SeriesBookRef] `json:"books"`
	CreatedAt   time.Time                          `gorm:"not null" json:"createdAt"`
}

func (Series) TableName() string { return "series" }

func (s *Series) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return nil
}
