package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Genres is the closed genre set. Book writes reject anything outside it.
var Genres = []string{
	"Adventure", "Fantasy", "Mystery", "Science",
	"Historical", "Educational", "Fiction", "Non-Fiction",
}

const (
	ReadStatusWantToRead = "WANT_TO_READ"
	ReadStatusReading    = "READING"
	ReadStatusRead       = "READ"
	ReadStatusDNF        = "DNF"
)

const (
	ConnectionSimilarTheme    = "SIMILAR_THEME"
	ConnectionSameSeries      = "SAME_SERIES"
	ConnectionSimilarStyle    = "SIMILAR_STYLE"
	ConnectionRecommendedNext = "RECOMMENDED_NEXT"
)

const (
	DefaultAgeMin = 8
	DefaultAgeMax = 15
)

type Book struct {
	ID          uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string                       `gorm:"not null;index" json:"title"`
	Author      string                       `gorm:"not null;index" json:"author"`
	CoverImage  string                       `json:"coverImage,omitempty"`
	Description string                       `gorm:"type:text" json:"description,omitempty"`
	SeriesName  string                       `gorm:"index" json:"seriesName,omitempty"`
	SeriesOrder int                          `json:"seriesOrder,omitempty"`
	Genres      datatypes.JSONSlice[string]  `json:"genres"`
	Tags        datatypes.JSONSlice[string]  `json:"tags"`
	Themes      datatypes.JSONSlice[string]  `json:"themes"`
	AgeMin      int                          `gorm:"not null;default:8" json:"ageMin"`
	AgeMax      int                          `gorm:"not null;default:15" json:"ageMax"`
	Metadata    datatypes.JSON               `json:"metadata,omitempty"`
	AddedAt     time.Time                    `gorm:"not null" json:"addedAt"`

	Ratings      []BookRating     `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"ratings,omitempty"`
	ReadStatuses []BookReadStatus `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"readStatuses,omitempty"`
	Drawings     []BookDrawing    `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"drawings,omitempty"`
	Connections  []BookConnection `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"connections,omitempty"`
}

func (Book) TableName() string { return "book" }

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.AgeMin == 0 {
		b.AgeMin = DefaultAgeMin
	}
	if b.AgeMax == 0 {
		b.AgeMax = DefaultAgeMax
	}
	if b.AddedAt.IsZero() {
		b.AddedAt = time.Now().UTC()
	}
	return nil
}

// Validate enforces the catalog invariants: genres from the closed set,
// age range min <= max.
func (b *Book) Validate() error {
	if b.Title == "" {
		return fmt.Errorf("book: title required")
	}
	if b.Author == "" {
		return fmt.Errorf("book: author required")
	}
	for _, g := range b.Genres {
		if !ValidGenre(g) {
			return fmt.Errorf("book: unknown genre %q", g)
		}
	}
	ageMin, ageMax := b.AgeMin, b.AgeMax
	if ageMin == 0 {
		ageMin = DefaultAgeMin
	}
	if ageMax == 0 {
		ageMax = DefaultAgeMax
	}
	if ageMin > ageMax {
		return fmt.Errorf("book: ageMin %d exceeds ageMax %d", ageMin, ageMax)
	}
	return nil
}

func ValidGenre(g string) bool {
	for _, known := range Genres {
		if g == known {
			return true
		}
	}
	return false
}

// RatingBy returns the user's rating if present.
func (b *Book) RatingBy(userID uuid.UUID) (int, bool) {
	for _, r := range b.Ratings {
		if r.UserID == userID {
			return r.Rating, true
		}
	}
	return 0, false
}

// ReadBy reports whether the user has marked the book READ.
func (b *Book) ReadBy(userID uuid.UUID) bool {
	for _, s := range b.ReadStatuses {
		if s.UserID == userID && s.Status == ReadStatusRead {
			return true
		}
	}
	return false
}

type BookRating struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookID    uuid.UUID `gorm:"type:uuid;not null;index:idx_book_rating_book_user" json:"bookId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_book_rating_book_user" json:"userId"`
	Rating    int       `gorm:"not null" json:"rating"`
	Review    string    `gorm:"type:text" json:"review,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (BookRating) TableName() string { return "book_rating" }

func (r *BookRating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

type BookReadStatus struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookID    uuid.UUID `gorm:"type:uuid;not null;index:idx_book_read_status_book_user" json:"bookId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_book_read_status_book_user" json:"userId"`
	Status    string    `gorm:"not null;default:'WANT_TO_READ'" json:"status"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (BookReadStatus) TableName() string { return "book_read_status" }

func (s *BookReadStatus) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func ValidReadStatus(s string) bool {
	switch s {
	case ReadStatusWantToRead, ReadStatusReading, ReadStatusRead, ReadStatusDNF:
		return true
	}
	return false
}

type BookDrawing struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookID    uuid.UUID `gorm:"type:uuid;not null;index" json:"bookId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"userId"`
	ImageURL  string    `gorm:"not null" json:"imageUrl"`
	LikeCount int       `gorm:"not null;default:0" json:"likeCount"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (BookDrawing) TableName() string { return "book_drawing" }

func (d *BookDrawing) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

type BookConnection struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookID           uuid.UUID `gorm:"type:uuid;not null;index" json:"bookId"`
	TargetBookID     uuid.UUID `gorm:"type:uuid;not null" json:"targetBookId"`
	RelationshipType string    `gorm:"not null" json:"relationshipType"`
}

func (BookConnection) TableName() string { return "book_connection" }

func (c *BookConnection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func ValidConnectionType(t string) bool {
	switch t {
	case ConnectionSimilarTheme, ConnectionSameSeries, ConnectionSimilarStyle, ConnectionRecommendedNext:
		return true
	}
	return false
}
