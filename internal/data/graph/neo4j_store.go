package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Brooks-Cole/brooks-books/internal/platform/logger"
	"github.com/Brooks-Cole/brooks-books/internal/platform/neo4jdb"
)

// Neo4jStore implements Store against the shared Neo4j driver. Every
// operation opens its own session and runs inside a single managed
// transaction; the session closes on all exit paths.
type Neo4jStore struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

var _ Store = (*Neo4jStore)(nil)

func NewNeo4jStore(client *neo4jdb.Client, baseLog *logger.Logger) *Neo4jStore {
	return &Neo4jStore{
		client: client,
		log:    baseLog.With("store", "Neo4jGraphStore"),
	}
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.client.Database,
	})
}

// EnsureSchema creates uniqueness constraints for the natural keys.
// Best-effort: restricted users may not be allowed to manage schema.
func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	stmts := []string{
		`CREATE CONSTRAINT book_id_unique IF NOT EXISTS FOR (b:Book) REQUIRE b.id IS UNIQUE`,
		`CREATE CONSTRAINT author_name_unique IF NOT EXISTS FOR (a:Author) REQUIRE a.name IS UNIQUE`,
		`CREATE CONSTRAINT genre_name_unique IF NOT EXISTS FOR (g:Genre) REQUIRE g.name IS UNIQUE`,
		`CREATE CONSTRAINT tag_name_unique IF NOT EXISTS FOR (t:Tag) REQUIRE t.name IS UNIQUE`,
		`CREATE CONSTRAINT series_name_unique IF NOT EXISTS FOR (sr:Series) REQUIRE sr.name IS UNIQUE`,
	}
	for _, stmt := range stmts {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			s.log.Warn("neo4j schema init failed (continuing)", "error", err)
			continue
		}
		_, _ = res.Consume(ctx)
	}
	return nil
}

// UpsertBook rewrites the book's subtree: the Book node is merged on
// id, its existing relationships dropped, then relationship targets
// merged on their natural keys so shared authors/genres/tags/series
// collapse into single nodes.
func (s *Neo4jStore) UpsertBook(ctx context.Context, b BookUpsert) error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("graph: upsert book: missing id")
	}

	genres := cleanNames(b.Genres)
	tags := cleanNames(b.Tags)

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := run(ctx, tx, `
MERGE (b:Book {id: $id})
SET b.title = $title,
    b.description = $description,
    b.minAge = $minAge,
    b.maxAge = $maxAge,
    b.addedAt = $addedAt
WITH b
OPTIONAL MATCH (b)-[r]-()
DELETE r
`, map[string]any{
			"id":          b.ID,
			"title":       b.Title,
			"description": b.Description,
			"minAge":      int64(b.AgeMin),
			"maxAge":      int64(b.AgeMax),
			"addedAt":     b.AddedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return nil, err
		}

		if strings.TrimSpace(b.Author) != "" {
			if err := run(ctx, tx, `
MATCH (b:Book {id: $id})
MERGE (a:Author {name: $author})
MERGE (b)-[:WRITTEN_BY]->(a)
`, map[string]any{"id": b.ID, "author": strings.TrimSpace(b.Author)}); err != nil {
				return nil, err
			}
		}

		if len(genres) > 0 {
			if err := run(ctx, tx, `
MATCH (b:Book {id: $id})
UNWIND $genres AS genreName
MERGE (g:Genre {name: genreName})
MERGE (b)-[:IN_GENRE]->(g)
`, map[string]any{"id": b.ID, "genres": genres}); err != nil {
				return nil, err
			}
		}

		if len(tags) > 0 {
			if err := run(ctx, tx, `
MATCH (b:Book {id: $id})
UNWIND $tags AS tagName
MERGE (t:Tag {name: tagName})
MERGE (b)-[:HAS_TAG]->(t)
`, map[string]any{"id": b.ID, "tags": tags}); err != nil {
				return nil, err
			}
		}

		if strings.TrimSpace(b.Series) != "" {
			if err := run(ctx, tx, `
MATCH (b:Book {id: $id})
MERGE (sr:Series {name: $series})
MERGE (b)-[:PART_OF]->(sr)
`, map[string]any{"id": b.ID, "series": strings.TrimSpace(b.Series)}); err != nil {
				return nil, err
			}
		}

		return nil, nil
	})
	return err
}

func (s *Neo4jStore) DeleteBook(ctx context.Context, bookID string) error {
	if strings.TrimSpace(bookID) == "" {
		return fmt.Errorf("graph: delete book: missing id")
	}
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, run(ctx, tx, `
MATCH (b:Book {id: $id})
DETACH DELETE b
`, map[string]any{"id": bookID})
	})
	return err
}

// DeleteAllBooks clears every Book node and its relationships. Orphaned
// Author/Genre/Tag/Series nodes are left behind; CleanupOrphanedTags
// sweeps tags only.
func (s *Neo4jStore) DeleteAllBooks(ctx context.Context) (int64, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	deleted, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (b:Book)
WITH collect(b) AS books, count(b) AS total
FOREACH (b IN books | DETACH DELETE b)
RETURN total
`, nil)
		if err != nil {
			return int64(0), err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return int64(0), err
		}
		v, _ := rec.Get("total")
		return asInt64(v), nil
	})
	if err != nil {
		return 0, err
	}
	return deleted.(int64), nil
}

func (s *Neo4jStore) UpsertSeries(ctx context.Context, up SeriesUpsert) error {
	name := strings.TrimSpace(up.Name)
	if name == "" {
		return fmt.Errorf("graph: upsert series: missing name")
	}

	bookIDs := make([]string, 0, len(up.Books))
	for _, b := range up.Books {
		if strings.TrimSpace(b.ID) != "" {
			bookIDs = append(bookIDs, b.ID)
		}
	}
	genres := cleanNames(up.Genres)

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := run(ctx, tx, `
MERGE (sr:Series {name: $name})
SET sr.description = $description,
    sr.bookCount = $bookCount
`, map[string]any{
			"name":        name,
			"description": up.Description,
			"bookCount":   int64(len(up.Books)),
		}); err != nil {
			return nil, err
		}

		if len(bookIDs) > 0 {
			if err := run(ctx, tx, `
MATCH (sr:Series {name: $name})
UNWIND $bookIds AS bookId
MATCH (b:Book {id: bookId})
MERGE (b)-[:PART_OF]->(sr)
`, map[string]any{"name": name, "bookIds": bookIDs}); err != nil {
				return nil, err
			}
		}

		if len(genres) > 0 {
			if err := run(ctx, tx, `
MATCH (sr:Series {name: $name})
UNWIND $genres AS genreName
MERGE (g:Genre {name: genreName})
MERGE (sr)-[:IN_GENRE]->(g)
`, map[string]any{"name": name, "genres": genres}); err != nil {
				return nil, err
			}
		}

		return nil, nil
	})
	return err
}

// SimilarBooks scores candidates by counting shared-genre and
// shared-author paths: one point per matched relationship. The read
// never mutates candidate nodes.
func (s *Neo4jStore) SimilarBooks(ctx context.Context, bookID string) ([]SimilarBook, error) {
	if strings.TrimSpace(bookID) == "" {
		return nil, fmt.Errorf("graph: similar books: missing book id")
	}

	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (b:Book {id: $id})
OPTIONAL MATCH (b)-[:IN_GENRE]->(:Genre)<-[:IN_GENRE]-(byGenre:Book)
WHERE byGenre.id <> b.id
WITH b, collect(byGenre) AS genreMatches
OPTIONAL MATCH (b)-[:WRITTEN_BY]->(:Author)<-[:WRITTEN_BY]-(byAuthor:Book)
WHERE byAuthor.id <> b.id
WITH genreMatches + collect(byAuthor) AS candidates
UNWIND candidates AS c
WITH c, count(*) AS score
RETURN c.id AS id, c.title AS title, score
ORDER BY score DESC
`, map[string]any{"id": bookID})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		books := make([]SimilarBook, 0, len(records))
		for _, rec := range records {
			id, _ := rec.Get("id")
			title, _ := rec.Get("title")
			score, _ := rec.Get("score")
			books = append(books, SimilarBook{
				ID:    asString(id),
				Title: asString(title),
				Score: asInt64(score),
			})
		}
		return books, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]SimilarBook), nil
}

func (s *Neo4jStore) BooksByTag(ctx context.Context, tag string) ([]BookRef, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (b:Book)-[:HAS_TAG]->(:Tag {name: $tag})
RETURN b.id AS id, b.title AS title
`, map[string]any{"tag": strings.TrimSpace(tag)})
		if err != nil {
			return nil, err
		}
		return collectRefs(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return out.([]BookRef), nil
}

func (s *Neo4jStore) SeriesBooks(ctx context.Context, name string) ([]BookRef, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (:Series {name: $name})<-[:PART_OF]-(b:Book)
RETURN b.id AS id, b.title AS title
ORDER BY b.title
`, map[string]any{"name": strings.TrimSpace(name)})
		if err != nil {
			return nil, err
		}
		return collectRefs(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return out.([]BookRef), nil
}

// FullGraph returns every mirror node plus the book-centric links.
// Isolated Book nodes are included: a book with no relationships is
// valid output, not an error.
func (s *Neo4jStore) FullGraph(ctx context.Context, f Filter) (*View, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if f.Kind != "" && f.Kind != NodeBook {
			return s.filteredGraph(ctx, tx, f)
		}

		view := &View{}

		res, err := tx.Run(ctx, `
MATCH (n)
WHERE n:Book OR n:Author OR n:Genre OR n:Tag OR n:Series
RETURN labels(n)[0] AS kind,
       coalesce(n.id, '') AS id,
       coalesce(n.title, '') AS title,
       coalesce(n.name, '') AS name,
       coalesce(n.description, '') AS description,
       coalesce(n.minAge, 0) AS minAge,
       coalesce(n.maxAge, 0) AS maxAge,
       coalesce(n.addedAt, '') AS addedAt,
       coalesce(n.bookCount, 0) AS bookCount
`, nil)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if node, ok := nodeFromRecord(rec); ok {
				view.Nodes = append(view.Nodes, node)
			}
		}

		res, err = tx.Run(ctx, `
MATCH (b:Book)-[r]->(m)
WHERE m:Author OR m:Genre OR m:Tag OR m:Series
RETURN b.id AS source, type(r) AS kind, labels(m)[0] AS targetKind, coalesce(m.name, '') AS targetName
`, nil)
		if err != nil {
			return nil, err
		}
		records, err = res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if link, ok := linkFromRecord(rec); ok {
				view.Links = append(view.Links, link)
			}
		}

		return view, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*View), nil
}

// filteredGraph restricts the view to one non-Book node kind (and
// optionally one named node) plus the books linked to it. Kind is a
// closed enum, so interpolating the label is safe.
func (s *Neo4jStore) filteredGraph(ctx context.Context, tx neo4j.ManagedTransaction, f Filter) (*View, error) {
	match := fmt.Sprintf(`MATCH (b:Book)-[r]->(m:%s)`, string(f.Kind))
	params := map[string]any{}
	where := ""
	if strings.TrimSpace(f.Value) != "" {
		where = ` WHERE m.name = $value`
		params["value"] = strings.TrimSpace(f.Value)
	}

	res, err := tx.Run(ctx, match+where+`
RETURN b.id AS source, type(r) AS kind, labels(m)[0] AS targetKind, coalesce(m.name, '') AS targetName,
       b.title AS sourceTitle, coalesce(b.description, '') AS sourceDescription,
       coalesce(b.minAge, 0) AS sourceMinAge, coalesce(b.maxAge, 0) AS sourceMaxAge
`, params)
	if err != nil {
		return nil, err
	}
	records, err := res.Collect(ctx)
	if err != nil {
		return nil, err
	}

	view := &View{}
	seen := map[string]bool{}
	for _, rec := range records {
		link, ok := linkFromRecord(rec)
		if !ok {
			continue
		}
		view.Links = append(view.Links, link)

		if !seen[link.Source] {
			seen[link.Source] = true
			title, _ := rec.Get("sourceTitle")
			desc, _ := rec.Get("sourceDescription")
			minAge, _ := rec.Get("sourceMinAge")
			maxAge, _ := rec.Get("sourceMaxAge")
			view.Nodes = append(view.Nodes, Node{Kind: NodeBook, Book: &BookNode{
				ID:          link.Source,
				Title:       asString(title),
				Description: asString(desc),
				AgeMin:      int(asInt64(minAge)),
				AgeMax:      int(asInt64(maxAge)),
			}})
		}
		if !seen[link.Target] {
			seen[link.Target] = true
			targetName, _ := rec.Get("targetName")
			if node, ok := namedNode(f.Kind, asString(targetName)); ok {
				view.Nodes = append(view.Nodes, node)
			}
		}
	}
	return view, nil
}

func (s *Neo4jStore) Counts(ctx context.Context) (Counts, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		var c Counts
		for label, dest := range map[string]*int64{
			"Book":   &c.Books,
			"Author": &c.Authors,
			"Genre":  &c.Genres,
			"Tag":    &c.Tags,
			"Series": &c.Series,
		} {
			res, err := tx.Run(ctx, fmt.Sprintf(`MATCH (n:%s) RETURN count(n) AS total`, label), nil)
			if err != nil {
				return Counts{}, err
			}
			rec, err := res.Single(ctx)
			if err != nil {
				return Counts{}, err
			}
			v, _ := rec.Get("total")
			*dest = asInt64(v)
		}

		res, err := tx.Run(ctx, `
OPTIONAL MATCH ()-[r]->()
RETURN count(r) AS total, collect(DISTINCT type(r)) AS kinds
`, nil)
		if err != nil {
			return Counts{}, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return Counts{}, err
		}
		total, _ := rec.Get("total")
		kinds, _ := rec.Get("kinds")
		c.Relationships = asInt64(total)
		if raw, ok := kinds.([]any); ok {
			for _, k := range raw {
				if name := asString(k); name != "" {
					c.RelationshipKinds = append(c.RelationshipKinds, name)
				}
			}
		}
		return c, nil
	})
	if err != nil {
		return Counts{}, err
	}
	return out.(Counts), nil
}

// CleanupOrphanedTags deletes Tag nodes with no relationships. Authors
// and genres are intentionally not swept here.
func (s *Neo4jStore) CleanupOrphanedTags(ctx context.Context) (int64, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (t:Tag)
WHERE NOT (t)--()
WITH collect(t) AS tags, count(t) AS total
FOREACH (t IN tags | DELETE t)
RETURN total
`, nil)
		if err != nil {
			return int64(0), err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return int64(0), err
		}
		v, _ := rec.Get("total")
		return asInt64(v), nil
	})
	if err != nil {
		return 0, err
	}
	return out.(int64), nil
}

// RelinkTags replaces a book's HAS_TAG edges wholesale.
func (s *Neo4jStore) RelinkTags(ctx context.Context, bookID string, tags []string) error {
	if strings.TrimSpace(bookID) == "" {
		return fmt.Errorf("graph: relink tags: missing book id")
	}
	cleaned := cleanNames(tags)

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := run(ctx, tx, `
MATCH (b:Book {id: $id})
OPTIONAL MATCH (b)-[r:HAS_TAG]->()
DELETE r
`, map[string]any{"id": bookID}); err != nil {
			return nil, err
		}
		if len(cleaned) > 0 {
			if err := run(ctx, tx, `
MATCH (b:Book {id: $id})
UNWIND $tags AS tagName
MERGE (t:Tag {name: tagName})
MERGE (b)-[:HAS_TAG]->(t)
`, map[string]any{"id": bookID, "tags": cleaned}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

func run(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) error {
	res, err := tx.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func collectRefs(ctx context.Context, res neo4j.ResultWithContext) ([]BookRef, error) {
	records, err := res.Collect(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]BookRef, 0, len(records))
	for _, rec := range records {
		id, _ := rec.Get("id")
		title, _ := rec.Get("title")
		refs = append(refs, BookRef{ID: asString(id), Title: asString(title)})
	}
	return refs, nil
}

func nodeFromRecord(rec *neo4j.Record) (Node, bool) {
	kindRaw, _ := rec.Get("kind")
	kind, ok := ParseNodeKind(asString(kindRaw))
	if !ok {
		return Node{}, false
	}
	name, _ := rec.Get("name")
	switch kind {
	case NodeBook:
		id, _ := rec.Get("id")
		title, _ := rec.Get("title")
		desc, _ := rec.Get("description")
		minAge, _ := rec.Get("minAge")
		maxAge, _ := rec.Get("maxAge")
		addedAt, _ := rec.Get("addedAt")
		return Node{Kind: NodeBook, Book: &BookNode{
			ID:          asString(id),
			Title:       asString(title),
			Description: asString(desc),
			AgeMin:      int(asInt64(minAge)),
			AgeMax:      int(asInt64(maxAge)),
			AddedAt:     asString(addedAt),
		}}, true
	case NodeSeries:
		desc, _ := rec.Get("description")
		bookCount, _ := rec.Get("bookCount")
		return Node{Kind: NodeSeries, Series: &SeriesNode{
			Name:        asString(name),
			Description: asString(desc),
			BookCount:   int(asInt64(bookCount)),
		}}, true
	default:
		return namedNode(kind, asString(name))
	}
}

func namedNode(kind NodeKind, name string) (Node, bool) {
	if name == "" {
		return Node{}, false
	}
	switch kind {
	case NodeAuthor:
		return Node{Kind: NodeAuthor, Author: &AuthorNode{Name: name}}, true
	case NodeGenre:
		return Node{Kind: NodeGenre, Genre: &GenreNode{Name: name}}, true
	case NodeTag:
		return Node{Kind: NodeTag, Tag: &TagNode{Name: name}}, true
	case NodeSeries:
		return Node{Kind: NodeSeries, Series: &SeriesNode{Name: name}}, true
	}
	return Node{}, false
}

func linkFromRecord(rec *neo4j.Record) (Link, bool) {
	source, _ := rec.Get("source")
	kindRaw, _ := rec.Get("kind")
	targetKindRaw, _ := rec.Get("targetKind")
	targetName, _ := rec.Get("targetName")

	targetKind, ok := ParseNodeKind(asString(targetKindRaw))
	if !ok || asString(source) == "" {
		return Link{}, false
	}
	target, ok := namedNode(targetKind, asString(targetName))
	if !ok {
		return Link{}, false
	}
	return Link{
		Source: asString(source),
		Target: target.ID(),
		Kind:   EdgeKind(asString(kindRaw)),
	}, true
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := map[string]bool{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
