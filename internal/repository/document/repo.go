package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/specdex/internal/db"
	"github.com/kailas-cloud/specdex/internal/domain"
	domdoc "github.com/kailas-cloud/specdex/internal/domain/document"
)

// pageSize is the number of rows per cursor read when draining a doctype.
const pageSize = 1000

// searchWindow is the server's default MAXSEARCHRESULTS: FT.SEARCH rejects
// an offset plus limit beyond it.
const searchWindow = 10000

// store is the consumer interface for documents (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	Search(ctx context.Context, q *db.Query) (*db.SearchResult, error)
	SearchAll(ctx context.Context, q *db.Query) ([]db.SearchEntry, error)
	Count(ctx context.Context, q *db.Query) (int, error)
}

// Repo stores documents as JSON under {prefix}doc:{doctype}:{name}.
type Repo struct {
	store  store
	prefix string
}

// New creates a document repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// EnsureIndex creates the document index when missing.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := db.NewIndex(r.indexName()).
		OnJSON().
		Prefix(r.prefix+"doc:").
		TagAs("$.doctype", "doctype").
		TagAs("$.name", "name").Sortable().
		Build()
	if err != nil {
		return fmt.Errorf("build document index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create document index: %w", err)
	}
	return nil
}

// Upsert creates or replaces a document. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, doc domdoc.Document) (bool, error) {
	key := r.key(doc.Doctype(), doc.Name())
	data, err := json.Marshal(toJSON(doc))
	if err != nil {
		return false, fmt.Errorf("marshal document: %w", err)
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}

	return !exists, nil
}

// Get returns a document by type and name.
func (r *Repo) Get(ctx context.Context, doctype, name string) (domdoc.Document, error) {
	key := r.key(doctype, name)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseDocument(string(raw))
}

// List returns one page of documents of a type with offset cursors.
func (r *Repo) List(ctx context.Context, doctype, cursor string, limit int) ([]domdoc.Document, string, error) {
	if limit <= 0 {
		limit = 20
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return nil, "", fmt.Errorf("invalid cursor %q: %w", cursor, domain.ErrInvalidSchema)
		}
		offset = parsed
	}
	if offset+limit+1 > searchWindow {
		return nil, "", fmt.Errorf("cursor %d is past the %d document listing window: %w",
			offset, searchWindow, domain.ErrInvalidSchema)
	}

	docs, _, err := r.page(ctx, doctype, offset, limit+1)
	if err != nil {
		return nil, "", err
	}

	var nextCursor string
	if len(docs) > limit {
		docs = docs[:limit]
		nextCursor = strconv.Itoa(offset + limit)
	}
	return docs, nextCursor, nil
}

// All returns every document of a type ordered by name.
func (r *Repo) All(ctx context.Context, doctype string) ([]domdoc.Document, error) {
	entries, err := r.store.SearchAll(ctx, &db.Query{
		Index:        r.indexName(),
		Clauses:      []db.Clause{db.TagClause("doctype", doctype)},
		Limit:        pageSize,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		return nil, fmt.Errorf("search documents %s: %w", doctype, err)
	}
	docs, err := parseEntries(entries)
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name() < docs[j].Name() })
	return docs, nil
}

// Count returns the number of documents of a type.
func (r *Repo) Count(ctx context.Context, doctype string) (int, error) {
	n, err := r.store.Count(ctx, &db.Query{
		Index:   r.indexName(),
		Clauses: []db.Clause{db.TagClause("doctype", doctype)},
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", doctype, err)
	}
	return n, nil
}

// Delete removes a document.
func (r *Repo) Delete(ctx context.Context, doctype, name string) error {
	key := r.key(doctype, name)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func (r *Repo) page(ctx context.Context, doctype string, offset, limit int) ([]domdoc.Document, int, error) {
	res, err := r.store.Search(ctx, &db.Query{
		Index:        r.indexName(),
		Clauses:      []db.Clause{db.TagClause("doctype", doctype)},
		Offset:       offset,
		Limit:        limit,
		ReturnFields: []string{"$"},
		SortBy:       "name",
	})
	if err != nil {
		return nil, 0, fmt.Errorf("search documents %s: %w", doctype, err)
	}

	docs, err := parseEntries(res.Entries)
	if err != nil {
		return nil, 0, err
	}
	return docs, res.Total, nil
}

func parseEntries(entries []db.SearchEntry) ([]domdoc.Document, error) {
	docs := make([]domdoc.Document, 0, len(entries))
	for _, e := range entries {
		doc, err := parseDocument(e.Fields["$"])
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Key, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *Repo) key(doctype, name string) string {
	return fmt.Sprintf("%sdoc:%s:%s", r.prefix, doctype, name)
}

func (r *Repo) indexName() string {
	return r.prefix + "doc:idx"
}
