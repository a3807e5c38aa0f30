// Package sqlstore implements storage.Storage on database/sql for PostgreSQL
// (lib/pq or pgx) and SQLite (go-sqlite3).
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/prodigyview/helium/internal/collection"
	"github.com/prodigyview/helium/internal/orm/condition"
	"github.com/prodigyview/helium/internal/orm/schema"
	"github.com/prodigyview/helium/internal/orm/storage"
)

// Connection is a named database handle
type Connection struct {
	Name    string
	DB      *sql.DB
	Dialect Dialect
	// Schema qualifies table names on PostgreSQL
	Schema string
}

// Store is a set of named connections with one active at a time
type Store struct {
	mu     sync.RWMutex
	conns  map[string]*Connection
	active string
	logger *zap.Logger
}

var _ storage.Storage = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger statements are traced to at debug level
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		conns:  make(map[string]*Connection),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers a connection. The first connection added becomes active.
func (s *Store) Add(conn *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn.Name] = conn
	if s.active == "" {
		s.active = conn.Name
	}
}

// Names returns the registered connection names, sorted
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.conns))
	for name := range s.conns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

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
	if _, ok := s.conns[name]; !ok {
		return fmt.Errorf("%w: %s", storage.ErrUnknownConnection, name)
	}
	s.active = name
	return nil
}

// Close closes every connection
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, c := range s.conns {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Store) current() (*Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conns[s.active]
	if !ok {
		return nil, storage.ErrNoConnection
	}
	return c, nil
}

// DatabaseType implements storage.Storage. It reports SQLite when no connection is active.
func (s *Store) DatabaseType() storage.DatabaseType {
	c, err := s.current()
	if err != nil {
		return storage.SQLite
	}
	return c.Dialect.DatabaseType()
}

// FormatTableName implements storage.Storage
func (s *Store) FormatTableName(name string) string {
	c, err := s.current()
	if err != nil || c.Schema == "" || c.Dialect.DatabaseType() != storage.PostgreSQL {
		return name
	}
	if strings.Contains(name, ".") {
		return name
	}
	return c.Schema + "." + name
}

// splitTable separates an optional schema qualifier from a table name
func (s *Store) splitTable(c *Connection, table string) (string, string) {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[:i], table[i+1:]
	}
	if c.Schema != "" {
		return c.Schema, table
	}
	return c.Dialect.DefaultSchema(), table
}

// TableExists implements storage.Storage
func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	c, err := s.current()
	if err != nil {
		return false, err
	}
	schemaName, table := s.splitTable(c, name)
	ok, err := c.Dialect.TableExists(ctx, c.DB, schemaName, table)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return ok, nil
}

// ColumnExists implements storage.Storage
func (s *Store) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	c, err := s.current()
	if err != nil {
		return false, err
	}
	schemaName, name := s.splitTable(c, table)
	ok, err := c.Dialect.ColumnExists(ctx, c.DB, schemaName, name, column)
	if err != nil {
		return false, fmt.Errorf("check column %s.%s: %w", table, column, err)
	}
	return ok, nil
}

// CreateTable implements storage.Storage
func (s *Store) CreateTable(ctx context.Context, name string, fields []schema.Field, opts storage.CreateTableOptions) error {
	c, err := s.current()
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, c, createTableSQL(c.Dialect, name, fields, opts.PrimaryKey))
	return mapError("create table", name, err)
}

// AddColumn implements storage.Storage
func (s *Store) AddColumn(ctx context.Context, table string, field schema.Field) error {
	c, err := s.current()
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, c, addColumnSQL(c.Dialect, table, field))
	return mapError("add column", table, err)
}

func insertSQL(pb ParamBuilder, table string, data *collection.Collection) string {
	if data == nil || data.Len() == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", table)
	}
	cols := make([]string, 0, data.Len())
	placeholders := make([]string, 0, data.Len())
	data.Each(func(key string, value any) bool {
		cols = append(cols, key)
		placeholders = append(placeholders, pb.Add(value))
		return true
	})
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
}

// Insert implements storage.Storage
func (s *Store) Insert(ctx context.Context, table string, data *collection.Collection) error {
	c, err := s.current()
	if err != nil {
		return err
	}
	pb := c.Dialect.NewParamBuilder()
	_, err = s.exec(ctx, c, insertSQL(pb, table, data), pb.Params()...)
	return mapError("insert into", table, err)
}

// InsertReturning implements storage.Storage. PostgreSQL uses RETURNING,
// SQLite reads the last insert rowid.
func (s *Store) InsertReturning(ctx context.Context, table, idField string, data *collection.Collection) (any, error) {
	c, err := s.current()
	if err != nil {
		return nil, err
	}
	pb := c.Dialect.NewParamBuilder()
	query := insertSQL(pb, table, data)

	if c.Dialect.Returning() {
		query += " RETURNING " + idField
		s.trace(query, pb.Params())
		var id any
		if err := c.DB.QueryRowContext(ctx, query, pb.Params()...).Scan(&id); err != nil {
			return nil, mapError("insert into", table, err)
		}
		if b, ok := id.([]byte); ok {
			id = string(b)
		}
		return id, nil
	}

	res, err := s.exec(ctx, c, query, pb.Params()...)
	if err != nil {
		return nil, mapError("insert into", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert into %s: last insert id: %w", table, err)
	}
	return id, nil
}

// Update implements storage.Storage and returns the number of affected rows
func (s *Store) Update(ctx context.Context, table string, data *collection.Collection, where map[string]any) (int64, error) {
	if data == nil || data.Len() == 0 {
		return 0, nil
	}
	c, err := s.current()
	if err != nil {
		return 0, err
	}
	pb := c.Dialect.NewParamBuilder()

	sets := make([]string, 0, data.Len())
	data.Each(func(key string, value any) bool {
		sets = append(sets, fmt.Sprintf("%s = %s", key, pb.Add(value)))
		return true
	})
	query := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(sets, ", "))

	clause, err := buildWhere(where, pb)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}
	if clause != "" {
		query += " WHERE " + clause
	}

	res, err := s.exec(ctx, c, query, pb.Params()...)
	if err != nil {
		return 0, mapError("update", table, err)
	}
	return res.RowsAffected()
}

// Delete implements storage.Storage. Only the table and where clause of q apply.
func (s *Store) Delete(ctx context.Context, q *condition.Query) (int64, error) {
	c, err := s.current()
	if err != nil {
		return 0, err
	}
	pb := c.Dialect.NewParamBuilder()
	query := "DELETE FROM " + q.Table

	clause, err := buildWhere(q.Where, pb)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", q.Table, err)
	}
	if clause != "" {
		query += " WHERE " + clause
	}

	res, err := s.exec(ctx, c, query, pb.Params()...)
	if err != nil {
		return 0, mapError("delete from", q.Table, err)
	}
	return res.RowsAffected()
}

func selectSQL(c *Connection, pb ParamBuilder, q *condition.Query) (string, error) {
	var b strings.Builder
	if q.PreQuery != "" {
		b.WriteString(q.PreQuery)
		b.WriteString(" ")
	}

	fields := "*"
	if len(q.Fields) > 0 {
		fields = strings.Join(q.Fields, ", ")
	}
	fmt.Fprintf(&b, "SELECT %s FROM %s", fields, q.Table)

	if join := strings.TrimSpace(q.Join); join != "" {
		b.WriteString(" ")
		b.WriteString(join)
	}

	clause, err := buildWhere(q.Where, pb)
	if err != nil {
		return "", err
	}
	if clause != "" {
		b.WriteString(" WHERE ")
		b.WriteString(clause)
	}
	if q.GroupBy != "" {
		b.WriteString(" GROUP BY ")
		b.WriteString(q.GroupBy)
	}
	if q.OrderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.OrderBy)
	}

	switch {
	case q.Limit != nil:
		fmt.Fprintf(&b, " LIMIT %d", *q.Limit)
	case q.Offset != nil && c.Dialect.DatabaseType() == storage.SQLite:
		b.WriteString(" LIMIT -1")
	}
	if q.Offset != nil {
		fmt.Fprintf(&b, " OFFSET %d", *q.Offset)
	}

	if q.PostQuery != "" {
		b.WriteString(" ")
		b.WriteString(q.PostQuery)
	}
	return b.String(), nil
}

// Select implements storage.Storage
func (s *Store) Select(ctx context.Context, q *condition.Query) ([]map[string]any, error) {
	c, err := s.current()
	if err != nil {
		return nil, err
	}
	pb := c.Dialect.NewParamBuilder()
	query, err := selectSQL(c, pb, q)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", q.Table, err)
	}
	return s.query(ctx, c, q.Table, query, pb.Params())
}

// PaginationOffset implements storage.Storage. It counts the rows matched by
// the query's join and where clause using its paginate fields.
func (s *Store) PaginationOffset(ctx context.Context, q *condition.Query) (*storage.Pagination, error) {
	c, err := s.current()
	if err != nil {
		return nil, err
	}
	pb := c.Dialect.NewParamBuilder()

	fields := q.PaginateFields
	if fields == "" {
		fields = condition.DefaultPaginateFields
	}
	query := fmt.Sprintf("SELECT %s FROM %s", fields, q.Table)
	if join := strings.TrimSpace(q.Join); join != "" {
		query += " " + join
	}
	clause, err := buildWhere(q.Where, pb)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", q.Table, err)
	}
	if clause != "" {
		query += " WHERE " + clause
	}

	rows, err := s.query(ctx, c, q.Table, query, pb.Params())
	if err != nil {
		return nil, err
	}

	count := 0
	if len(rows) > 0 {
		count = countValue(rows[0])
	}
	return storage.NewPagination(count, q.CurrentPage, q.ResultsPerPage), nil
}

// countValue reads the "count" column, or the only column of a single-column row
func countValue(row map[string]any) int {
	v, ok := row["count"]
	if !ok && len(row) == 1 {
		for _, only := range row {
			v = only
		}
	}
	n, _ := schema.Apply(v, schema.CastInteger)
	i, _ := n.(int64)
	return int(i)
}

func (s *Store) exec(ctx context.Context, c *Connection, query string, args ...any) (sql.Result, error) {
	s.trace(query, args)
	return c.DB.ExecContext(ctx, query, args...)
}

func (s *Store) query(ctx context.Context, c *Connection, table, query string, args []any) ([]map[string]any, error) {
	s.trace(query, args)
	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("select from", table, err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	return result, nil
}

func (s *Store) trace(query string, args []any) {
	s.logger.Debug("sql", zap.String("query", query), zap.Int("args", len(args)))
}
