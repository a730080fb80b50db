// Package seriesdetect infers series membership from book titles.
//
// Detection runs an ordered rule list: named patterns first (built-in
// plus any loaded from a YAML file), then "Book N" / "Volume N" markers,
// then a colon-prefix fallback. The first matching rule wins.
package seriesdetect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type namedPattern struct {
	re   *regexp.Regexp
	name string
}

type Detector struct {
	named []namedPattern
}

var markerRe = regexp.MustCompile(`(?i)\b(Book|Volume)\s+(\d+)\b`)

func New() *Detector {
	return &Detector{
		named: []namedPattern{
			{regexp.MustCompile(`(?i)Hardy Boys`), "The Hardy Boys Series"},
			{regexp.MustCompile(`(?i)Redwall`), "Redwall Series"},
		},
	}
}

type patternFile struct {
	Patterns []struct {
		Match  string `yaml:"match"`
		Series string `yaml:"series"`
	} `yaml:"patterns"`
}

// LoadPatterns appends named patterns from a YAML document. Each entry
// carries a case-insensitive regular expression and the series name it
// maps to. Loaded patterns rank after the built-in ones but before the
// marker and colon rules.
func (d *Detector) LoadPatterns(r io.Reader) error {
	var pf patternFile
	if err := yaml.NewDecoder(r).Decode(&pf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode series patterns: %w", err)
	}
	for _, p := range pf.Patterns {
		if p.Match == "" || p.Series == "" {
			return fmt.Errorf("series pattern needs both match and series, got match=%q series=%q", p.Match, p.Series)
		}
		re, err := regexp.Compile("(?i)" + p.Match)
		if err != nil {
			return fmt.Errorf("compile series pattern %q: %w", p.Match, err)
		}
		d.named = append(d.named, namedPattern{re, p.Series})
	}
	return nil
}

func (d *Detector) LoadPatternsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open series patterns: %w", err)
	}
	defer f.Close()
	return d.LoadPatterns(f)
}

// Detect returns the series a title belongs to, or "" when no rule
// matches. A "Book N" or "Volume N" marker names the series after the
// text before the marker; a bare colon falls back to the text before
// the colon.
func (d *Detector) Detect(title string) string {
	for _, p := range d.named {
		if p.re.MatchString(title) {
			return p.name
		}
	}
	if loc := markerRe.FindStringIndex(title); loc != nil {
		prefix := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(title[:loc[0]]), ":,-"))
		if prefix != "" {
			return prefix
		}
	}
	if idx := strings.Index(title, ":"); idx >= 0 {
		if prefix := strings.TrimSpace(title[:idx]); prefix != "" {
			return prefix
		}
	}
	return ""
}

// Order returns the position encoded by a "Book N" or "Volume N"
// marker, or 0 when the title carries none.
func (d *Detector) Order(title string) int {
	m := markerRe.FindStringSubmatch(title)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0
	}
	return n
}
