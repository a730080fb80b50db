package domain

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func TestBookValidate(t *testing.T) {
	valid := Book{
		Title:  "Hatchet",
		Author: "Gary Paulsen",
		Genres: datatypes.NewJSONSlice([]string{"Adventure", "Fiction"}),
		AgeMin: 9,
		AgeMax: 13,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid book rejected: %v", err)
	}

	defaulted := valid
	defaulted.AgeMin, defaulted.AgeMax = 0, 0
	if err := defaulted.Validate(); err != nil {
		t.Fatalf("omitted age bounds rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Book)
	}{
		{"missing title", func(b *Book) { b.Title = "" }},
		{"missing author", func(b *Book) { b.Author = "" }},
		{"unknown genre", func(b *Book) { b.Genres = datatypes.NewJSONSlice([]string{"Cooking"}) }},
		{"inverted age range", func(b *Book) { b.AgeMin = 14; b.AgeMax = 10 }},
		{"min above default max", func(b *Book) { b.AgeMin = 20; b.AgeMax = 0 }},
		{"max below default min", func(b *Book) { b.AgeMin = 0; b.AgeMax = 5 }},
	}
	for _, tc := range cases {
		b := valid
		tc.mutate(&b)
		if err := b.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestValidGenre(t *testing.T) {
	for _, g := range Genres {
		if !ValidGenre(g) {
			t.Fatalf("%q should be valid", g)
		}
	}
	if ValidGenre("Cooking") {
		t.Fatalf("unknown genre accepted")
	}
}

func TestRatingBy(t *testing.T) {
	userID := uuid.New()
	other := uuid.New()
	b := Book{Ratings: []BookRating{
		{UserID: other, Rating: 2},
		{UserID: userID, Rating: 5},
	}}
	if got, ok := b.RatingBy(userID); !ok || got != 5 {
		t.Fatalf("RatingBy = %d/%v, want 5", got, ok)
	}
	if _, ok := b.RatingBy(uuid.New()); ok {
		t.Fatalf("unknown user should have no rating")
	}
}

func TestReadBy(t *testing.T) {
	userID := uuid.New()
	b := Book{ReadStatuses: []BookReadStatus{
		{UserID: userID, Status: ReadStatusWantToRead},
	}}
	if b.ReadBy(userID) {
		t.Fatalf("WANT_TO_READ must not count as read")
	}
	b.ReadStatuses[0].Status = ReadStatusRead
	if !b.ReadBy(userID) {
		t.Fatalf("READ status should count as read")
	}
}
