package graph

import (
	"context"
	"time"
)

// NodeKind is the closed set of mirror node labels.
type NodeKind string

const (
	NodeBook   NodeKind = "Book"
	NodeAuthor NodeKind = "Author"
	NodeGenre  NodeKind = "Genre"
	NodeTag    NodeKind = "Tag"
	NodeSeries NodeKind = "Series"
)

func ParseNodeKind(s string) (NodeKind, bool) {
	switch NodeKind(s) {
	case NodeBook, NodeAuthor, NodeGenre, NodeTag, NodeSeries:
		return NodeKind(s), true
	}
	return "", false
}

// EdgeKind is the closed set of mirror relationship types.
type EdgeKind string

const (
	EdgeWrittenBy EdgeKind = "WRITTEN_BY"
	EdgeInGenre   EdgeKind = "IN_GENRE"
	EdgeHasTag    EdgeKind = "HAS_TAG"
	EdgePartOf    EdgeKind = "PART_OF"
)

type BookNode struct {
	ID          string
	Title       string
	Description string
	AgeMin      int
	AgeMax      int
	AddedAt     string
}

type AuthorNode struct {
	Name string
}

type GenreNode struct {
	Name string
}

type TagNode struct {
	Name string
}

type SeriesNode struct {
	Name        string
	Description string
	BookCount   int
}

// Node is a tagged variant: exactly one field matching Kind is set.
type Node struct {
	Kind   NodeKind
	Book   *BookNode
	Author *AuthorNode
	Genre  *GenreNode
	Tag    *TagNode
	Series *SeriesNode
}

// ID returns the node's natural identifier: the catalog id for books,
// a kind-prefixed name for everything else.
func (n Node) ID() string {
	switch n.Kind {
	case NodeBook:
		if n.Book != nil {
			return n.Book.ID
		}
	case NodeAuthor:
		if n.Author != nil {
			return "author:" + n.Author.Name
		}
	case NodeGenre:
		if n.Genre != nil {
			return "genre:" + n.Genre.Name
		}
	case NodeTag:
		if n.Tag != nil {
			return "tag:" + n.Tag.Name
		}
	case NodeSeries:
		if n.Series != nil {
			return "series:" + n.Series.Name
		}
	}
	return ""
}

// Name returns the display label: title for books, name otherwise.
func (n Node) Name() string {
	switch n.Kind {
	case NodeBook:
		if n.Book != nil {
			return n.Book.Title
		}
	case NodeAuthor:
		if n.Author != nil {
			return n.Author.Name
		}
	case NodeGenre:
		if n.Genre != nil {
			return n.Genre.Name
		}
	case NodeTag:
		if n.Tag != nil {
			return n.Tag.Name
		}
	case NodeSeries:
		if n.Series != nil {
			return n.Series.Name
		}
	}
	return ""
}

type Link struct {
	Source string
	Target string
	Kind   EdgeKind
}

type View struct {
	Nodes []Node
	Links []Link
}

// Filter restricts FullGraph to one node kind, optionally one node.
// Zero value means no filtering.
type Filter struct {
	Kind  NodeKind
	Value string
}

type BookRef struct {
	ID    string
	Title string
}

type SimilarBook struct {
	ID    string
	Title string
	Score int64
}

type Counts struct {
	Books             int64
	Authors           int64
	Genres            int64
	Tags              int64
	Series            int64
	Relationships     int64
	RelationshipKinds []string
}

// BookUpsert is the denormalized payload the sync engine writes for one
// catalog book. Series carries the explicit or heuristically detected
// series name; empty means no PART_OF edge.
type BookUpsert struct {
	ID          string
	Title       string
	Description string
	Author      string
	AgeMin      int
	AgeMax      int
	AddedAt     time.Time
	Genres      []string
	Tags        []string
	Series      string
}

type SeriesUpsert struct {
	Name        string
	Description string
	Books       []BookRef
	Genres      []string
}

// Store is the graph-mirror contract. The Neo4j implementation is the
// production path; tests substitute an in-memory fake. All writes use
// merge-on-natural-key semantics so re-running with the same input is
// idempotent.
type Store interface {
	EnsureSchema(ctx context.Context) error

	UpsertBook(ctx context.Context, b BookUpsert) error
	DeleteBook(ctx context.Context, bookID string) error
	DeleteAllBooks(ctx context.Context) (int64, error)
	UpsertSeries(ctx context.Context, s SeriesUpsert) error

	SimilarBooks(ctx context.Context, bookID string) ([]SimilarBook, error)
	BooksByTag(ctx context.Context, tag string) ([]BookRef, error)
	SeriesBooks(ctx context.Context, name string) ([]BookRef, error)
	FullGraph(ctx context.Context, f Filter) (*View, error)
	Counts(ctx context.Context) (Counts, error)

	CleanupOrphanedTags(ctx context.Context) (int64, error)
	RelinkTags(ctx context.Context, bookID string, tags []string) error
}
