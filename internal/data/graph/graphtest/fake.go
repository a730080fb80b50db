package graphtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Brooks-Cole/brooks-books/internal/data/graph"
)

var _ graph.Store = (*FakeStore)(nil)

type bookRecord struct {
	up graph.BookUpsert
}

// FakeStore is an in-memory graph.Store with the same merge-on-natural-
// key semantics as the Neo4j implementation. FailBookIDs injects
// per-record upsert failures for partial-failure tests.
type FakeStore struct {
	mu sync.Mutex

	books  map[string]bookRecord // book id -> payload
	series map[string]graph.SeriesUpsert

	// tagNodes outlives book references: merged Tag nodes stay behind
	// when their last HAS_TAG edge goes away, same as the Neo4j store.
	tagNodes map[string]bool

	FailBookIDs map[string]bool
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		books:       map[string]bookRecord{},
		series:      map[string]graph.SeriesUpsert{},
		tagNodes:    map[string]bool{},
		FailBookIDs: map[string]bool{},
	}
}

func (f *FakeStore) EnsureSchema(ctx context.Context) error { return nil }

func (f *FakeStore) UpsertBook(ctx context.Context, b graph.BookUpsert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("fake graph: missing book id")
	}
	if f.FailBookIDs[b.ID] {
		return fmt.Errorf("fake graph: injected failure for book %s", b.ID)
	}
	f.books[b.ID] = bookRecord{up: b}
	for _, t := range b.Tags {
		f.tagNodes[t] = true
	}
	return nil
}

func (f *FakeStore) DeleteBook(ctx context.Context, bookID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.books, bookID)
	return nil
}

func (f *FakeStore) DeleteAllBooks(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.books))
	f.books = map[string]bookRecord{}
	return n, nil
}

func (f *FakeStore) UpsertSeries(ctx context.Context, s graph.SeriesUpsert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("fake graph: missing series name")
	}
	f.series[s.Name] = s
	return nil
}

func (f *FakeStore) SimilarBooks(ctx context.Context, bookID string) ([]graph.SimilarBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.TrimSpace(bookID) == "" {
		return nil, fmt.Errorf("fake graph: missing book id")
	}
	base, ok := f.books[bookID]
	if !ok {
		return []graph.SimilarBook{}, nil
	}

	baseGenres := map[string]bool{}
	for _, g := range base.up.Genres {
		baseGenres[g] = true
	}

	out := []graph.SimilarBook{}
	for id, rec := range f.books {
		if id == bookID {
			continue
		}
		var score int64
		for _, g := range rec.up.Genres {
			if baseGenres[g] {
				score++
			}
		}
		if rec.up.Author != "" && rec.up.Author == base.up.Author {
			score++
		}
		if score > 0 {
			out = append(out, graph.SimilarBook{ID: id, Title: rec.up.Title, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (f *FakeStore) BooksByTag(ctx context.Context, tag string) ([]graph.BookRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []graph.BookRef{}
	for id, rec := range f.books {
		for _, t := range rec.up.Tags {
			if t == tag {
				out = append(out, graph.BookRef{ID: id, Title: rec.up.Title})
				break
			}
		}
	}
	return out, nil
}

func (f *FakeStore) SeriesBooks(ctx context.Context, name string) ([]graph.BookRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []graph.BookRef{}
	for id, rec := range f.books {
		if rec.up.Series == name {
			out = append(out, graph.BookRef{ID: id, Title: rec.up.Title})
		}
	}
	if s, ok := f.series[name]; ok {
		for _, b := range s.Books {
			if _, inMirror := f.books[b.ID]; inMirror && !containsRef(out, b.ID) {
				out = append(out, graph.BookRef{ID: b.ID, Title: b.Title})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *FakeStore) FullGraph(ctx context.Context, filter graph.Filter) (*graph.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	view := &graph.View{}
	authors := map[string]bool{}
	genres := map[string]bool{}
	tags := map[string]bool{}
	seriesNames := map[string]bool{}

	include := func(kind graph.NodeKind, name string) bool {
		if filter.Kind == "" || filter.Kind == graph.NodeBook {
			return true
		}
		if kind != filter.Kind {
			return false
		}
		return filter.Value == "" || filter.Value == name
	}

	for id, rec := range f.books {
		linked := false
		if rec.up.Author != "" && include(graph.NodeAuthor, rec.up.Author) {
			authors[rec.up.Author] = true
			view.Links = append(view.Links, graph.Link{Source: id, Target: "author:" + rec.up.Author, Kind: graph.EdgeWrittenBy})
			linked = true
		}
		for _, g := range rec.up.Genres {
			if include(graph.NodeGenre, g) {
				genres[g] = true
				view.Links = append(view.Links, graph.Link{Source: id, Target: "genre:" + g, Kind: graph.EdgeInGenre})
				linked = true
			}
		}
		for _, t := range rec.up.Tags {
			if include(graph.NodeTag, t) {
				tags[t] = true
				view.Links = append(view.Links, graph.Link{Source: id, Target: "tag:" + t, Kind: graph.EdgeHasTag})
				linked = true
			}
		}
		if rec.up.Series != "" && include(graph.NodeSeries, rec.up.Series) {
			seriesNames[rec.up.Series] = true
			view.Links = append(view.Links, graph.Link{Source: id, Target: "series:" + rec.up.Series, Kind: graph.EdgePartOf})
			linked = true
		}

		if filter.Kind == "" || filter.Kind == graph.NodeBook || linked {
			view.Nodes = append(view.Nodes, graph.Node{Kind: graph.NodeBook, Book: &graph.BookNode{
				ID:          id,
				Title:       rec.up.Title,
				Description: rec.up.Description,
				AgeMin:      rec.up.AgeMin,
				AgeMax:      rec.up.AgeMax,
			}})
		}
	}

	for name := range f.tagNodes {
		if include(graph.NodeTag, name) {
			tags[name] = true
		}
	}

	for name := range authors {
		view.Nodes = append(view.Nodes, graph.Node{Kind: graph.NodeAuthor, Author: &graph.AuthorNode{Name: name}})
	}
	for name := range genres {
		view.Nodes = append(view.Nodes, graph.Node{Kind: graph.NodeGenre, Genre: &graph.GenreNode{Name: name}})
	}
	for name := range tags {
		view.Nodes = append(view.Nodes, graph.Node{Kind: graph.NodeTag, Tag: &graph.TagNode{Name: name}})
	}
	for name := range seriesNames {
		view.Nodes = append(view.Nodes, graph.Node{Kind: graph.NodeSeries, Series: &graph.SeriesNode{Name: name}})
	}
	return view, nil
}

func (f *FakeStore) Counts(ctx context.Context) (graph.Counts, error) {
	view, err := f.FullGraph(ctx, graph.Filter{})
	if err != nil {
		return graph.Counts{}, err
	}
	var c graph.Counts
	for _, n := range view.Nodes {
		switch n.Kind {
		case graph.NodeBook:
			c.Books++
		case graph.NodeAuthor:
			c.Authors++
		case graph.NodeGenre:
			c.Genres++
		case graph.NodeTag:
			c.Tags++
		case graph.NodeSeries:
			c.Series++
		}
	}
	c.Relationships = int64(len(view.Links))
	kinds := map[string]bool{}
	for _, l := range view.Links {
		kinds[string(l.Kind)] = true
	}
	for k := range kinds {
		c.RelationshipKinds = append(c.RelationshipKinds, k)
	}
	sort.Strings(c.RelationshipKinds)
	return c, nil
}

func (f *FakeStore) CleanupOrphanedTags(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	referenced := map[string]bool{}
	for _, rec := range f.books {
		for _, t := range rec.up.Tags {
			referenced[t] = true
		}
	}
	var removed int64
	for t := range f.tagNodes {
		if !referenced[t] {
			delete(f.tagNodes, t)
			removed++
		}
	}
	return removed, nil
}

func (f *FakeStore) RelinkTags(ctx context.Context, bookID string, tags []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.books[bookID]
	if !ok {
		return nil
	}
	rec.up.Tags = append([]string(nil), tags...)
	f.books[bookID] = rec
	for _, t := range tags {
		f.tagNodes[t] = true
	}
	return nil
}

// Book returns the stored upsert payload for assertions.
func (f *FakeStore) Book(id string) (graph.BookUpsert, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.books[id]
	return rec.up, ok
}

func containsRef(refs []graph.BookRef, id string) bool {
	for _, r := range refs {
		if r.ID == id {
			return true
		}
	}
	return false
}
