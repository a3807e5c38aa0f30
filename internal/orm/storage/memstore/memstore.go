// Package memstore is an in-process document store. Documents are schema-less
// maps grouped by collection name; it reports itself as a document database so
// models skip schema synchronisation.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/prodigyview/helium/internal/collection"
	"github.com/prodigyview/helium/internal/orm/condition"
	"github.com/prodigyview/helium/internal/orm/schema"
	"github.com/prodigyview/helium/internal/orm/storage"
)

// DefaultConnection is the connection every Store starts with
const DefaultConnection = "default"

type database map[string][]map[string]any

// Store keeps documents in memory, one database per connection name
type Store struct {
	mu     sync.RWMutex
	dbs    map[string]database
	active string
}

var _ storage.Storage = (*Store)(nil)

// New creates a store with the default connection active. Extra connection
// names may be given.
func New(connections ...string) *Store {
	s := &Store{
		dbs:    map[string]database{DefaultConnection: {}},
		active: DefaultConnection,
	}
	for _, name := range connections {
		s.dbs[name] = database{}
	}
	return s
}

func (s *Store) DatabaseType() storage.DatabaseType  { return storage.Mongo }
func (s *Store) FormatTableName(name string) string { return name }

// Connection implements storage.Storage
func (s *Store) Connection() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// UseConnection implements storage.Storage
func (s *Store) UseConnection(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dbs[name]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrUnknownConnection, name)
	}
	s.active = name
	return nil
}

// TableExists reports whether the collection holds or held documents
func (s *Store) TableExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.dbs[s.active][name]
	return ok, nil
}

// CreateTable creates an empty collection; fields are ignored
func (s *Store) CreateTable(_ context.Context, name string, _ []schema.Field, _ storage.CreateTableOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	db := s.dbs[s.active]
	if _, ok := db[name]; !ok {
		db[name] = nil
	}
	return nil
}

// ColumnExists is always true; documents have no fixed columns
func (s *Store) ColumnExists(context.Context, string, string) (bool, error) { return true, nil }

// AddColumn is a no-op
func (s *Store) AddColumn(context.Context, string, schema.Field) error { return nil }

// Insert implements storage.Storage
func (s *Store) Insert(ctx context.Context, table string, data *collection.Collection) error {
	_, err := s.InsertReturning(ctx, table, "_id", data)
	return err
}

// InsertReturning stores a copy of data. A missing idField is filled with a new UUID.
func (s *Store) InsertReturning(_ context.Context, table, idField string, data *collection.Collection) (any, error) {
	doc := map[string]any{}
	if data != nil {
		doc = data.Map()
	}
	if v, ok := doc[idField]; !ok || schema.IsEmpty(v) {
		doc[idField] = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	db := s.dbs[s.active]
	db[table] = append(db[table], doc)
	return doc[idField], nil
}

// Update implements storage.Storage
func (s *Store) Update(_ context.Context, table string, data *collection.Collection, where map[string]any) (int64, error) {
	if data == nil || data.Len() == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, doc := range s.dbs[s.active][table] {
		ok, err := matches(doc, where)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		for k, v := range data.Map() {
			doc[k] = v
		}
		n++
	}
	return n, nil
}

// Delete implements storage.Storage
func (s *Store) Delete(_ context.Context, q *condition.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db := s.dbs[s.active]

	kept := db[q.Table][:0]
	var n int64
	for _, doc := range db[q.Table] {
		ok, err := matches(doc, q.Where)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
			continue
		}
		kept = append(kept, doc)
	}
	if _, ok := db[q.Table]; ok {
		db[q.Table] = kept
	}
	return n, nil
}

// Select implements storage.Storage. OrderBy accepts "field [ASC|DESC]".
func (s *Store) Select(_ context.Context, q *condition.Query) ([]map[string]any, error) {
	docs, err := s.filter(q)
	if err != nil {
		return nil, err
	}

	if q.OrderBy != "" {
		parts := strings.Fields(q.OrderBy)
		field, desc := parts[0], len(parts) > 1 && strings.EqualFold(parts[1], "desc")
		sort.SliceStable(docs, func(i, j int) bool {
			c := compareValues(docs[i][field], docs[j][field])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	if q.Offset != nil {
		if *q.Offset >= len(docs) {
			docs = nil
		} else {
			docs = docs[*q.Offset:]
		}
	}
	limit := -1
	if q.Limit != nil {
		limit = *q.Limit
	}
	if q.FindOne {
		limit = 1
	}
	if limit >= 0 && limit < len(docs) {
		docs = docs[:limit]
	}

	out := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		out = append(out, project(doc, q.Fields))
	}
	return out, nil
}

// PaginationOffset implements storage.Storage
func (s *Store) PaginationOffset(_ context.Context, q *condition.Query) (*storage.Pagination, error) {
	docs, err := s.filter(q)
	if err != nil {
		return nil, err
	}
	return storage.NewPagination(len(docs), q.CurrentPage, q.ResultsPerPage), nil
}

func (s *Store) filter(q *condition.Query) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []map[string]any
	for _, doc := range s.dbs[s.active][q.Table] {
		ok, err := matches(doc, q.Where)
		if err != nil {
			return nil, err
		}
		if ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func project(doc map[string]any, fields []string) map[string]any {
	out := make(map[string]any, len(doc))
	if len(fields) == 0 || (len(fields) == 1 && fields[0] == "*") {
		for k, v := range doc {
			out[k] = v
		}
		return out
	}
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}
