package seriesdetect

import (
	"strings"
	"testing"
)

func TestDetectNamedPatterns(t *testing.T) {
	d := New()
	cases := []struct {
		title string
		want  string
	}{
		{"The Hardy Boys: The Tower Treasure", "The Hardy Boys Series"},
		{"hardy boys and the secret cave", "The Hardy Boys Series"},
		{"Redwall", "Redwall Series"},
		{"Martin of Redwall", "Redwall Series"},
	}
	for _, tc := range cases {
		if got := d.Detect(tc.title); got != tc.want {
			t.Fatalf("Detect(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestDetectNumberMarker(t *testing.T) {
	d := New()
	cases := []struct {
		title string
		want  string
	}{
		{"Warriors Book 3", "Warriors"},
		{"Wings of Fire: Book 5", "Wings of Fire"},
		{"Dragon Keepers Volume 2: The Hoard", "Dragon Keepers"},
	}
	for _, tc := range cases {
		if got := d.Detect(tc.title); got != tc.want {
			t.Fatalf("Detect(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestDetectColonFallback(t *testing.T) {
	d := New()
	if got := d.Detect("Percy Jackson: The Lightning Thief"); got != "Percy Jackson" {
		t.Fatalf("Detect colon = %q, want %q", got, "Percy Jackson")
	}
	// Subtitled standalone titles still match; callers accept the noise.
	if got := d.Detect("My Summer: A Memoir"); got != "My Summer" {
		t.Fatalf("Detect subtitle = %q, want %q", got, "My Summer")
	}
}

func TestDetectNone(t *testing.T) {
	d := New()
	for _, title := range []string{"Charlotte's Web", "Holes", ""} {
		if got := d.Detect(title); got != "" {
			t.Fatalf("Detect(%q) = %q, want none", title, got)
		}
	}
}

func TestNamedPatternBeatsMarker(t *testing.T) {
	d := New()
	if got := d.Detect("Hardy Boys Book 12"); got != "The Hardy Boys Series" {
		t.Fatalf("named pattern should win, got %q", got)
	}
}

func TestOrder(t *testing.T) {
	d := New()
	cases := []struct {
		title string
		want  int
	}{
		{"Warriors Book 3", 3},
		{"Dragon Keepers Volume 12: The Hoard", 12},
		{"Percy Jackson: The Lightning Thief", 0},
		{"Charlotte's Web", 0},
	}
	for _, tc := range cases {
		if got := d.Order(tc.title); got != tc.want {
			t.Fatalf("Order(%q) = %d, want %d", tc.title, got, tc.want)
		}
	}
}

func TestLoadPatterns(t *testing.T) {
	d := New()
	doc := `
patterns:
  - match: "Narnia"
    series: "The Chronicles of Narnia"
  - match: "Darth Bane"
    series: "Star Wars: Darth Bane Trilogy"
`
	if err := d.LoadPatterns(strings.NewReader(doc)); err != nil {
		t.Fatalf("LoadPatterns: %v", err)
	}
	if got := d.Detect("The Voyage to narnia"); got != "The Chronicles of Narnia" {
		t.Fatalf("loaded pattern not applied, got %q", got)
	}
	if got := d.Detect("Darth Bane: Path of Destruction"); got != "Star Wars: Darth Bane Trilogy" {
		t.Fatalf("loaded pattern should beat colon rule, got %q", got)
	}
}

func TestLoadPatternsRejectsBadInput(t *testing.T) {
	d := New()
	if err := d.LoadPatterns(strings.NewReader("patterns:\n  - match: \"(\"\n    series: \"X\"\n")); err == nil {
		t.Fatalf("expected error for invalid regexp")
	}
	if err := d.LoadPatterns(strings.NewReader("patterns:\n  - match: \"x\"\n")); err == nil {
		t.Fatalf("expected error for missing series name")
	}
	if err := d.LoadPatterns(strings.NewReader("")); err != nil {
		t.Fatalf("empty document should be accepted: %v", err)
	}
}
