// Package storage defines the contract between models and the database layer.
// Implementations live in sub-packages: sqlstore for relational databases and
// memstore for the in-process document store.
package storage

import (
	"context"
	"errors"

	"github.com/prodigyview/helium/internal/collection"
	"github.com/prodigyview/helium/internal/orm/condition"
	"github.com/prodigyview/helium/internal/orm/schema"
)

// DatabaseType identifies the kind of database behind a Storage
type DatabaseType string

const (
	PostgreSQL DatabaseType = "postgresql"
	MySQL      DatabaseType = "mysql"
	SQLite     DatabaseType = "sqlite"
	Mongo      DatabaseType = "mongo"
)

// IsSchemaless reports whether the database stores documents without a table schema
func (t DatabaseType) IsSchemaless() bool {
	return t == Mongo
}

var (
	// ErrUnknownConnection is returned when switching to a connection that was never registered
	ErrUnknownConnection = errors.New("unknown connection")
	// ErrNoConnection is returned when an operation runs before any connection is registered
	ErrNoConnection = errors.New("no active connection")
)

// CreateTableOptions carries table-level DDL options
type CreateTableOptions struct {
	// PrimaryKey is a comma separated list of key columns
	PrimaryKey string
}

// Storage is the database collaborator used by models
type Storage interface {
	DatabaseType() DatabaseType
	// FormatTableName qualifies a table name for the active connection
	FormatTableName(name string) string

	TableExists(ctx context.Context, name string) (bool, error)
	CreateTable(ctx context.Context, name string, fields []schema.Field, opts CreateTableOptions) error
	ColumnExists(ctx context.Context, table, column string) (bool, error)
	AddColumn(ctx context.Context, table string, field schema.Field) error

	Insert(ctx context.Context, table string, data *collection.Collection) error
	// InsertReturning inserts data and returns the generated value of idField
	InsertReturning(ctx context.Context, table, idField string, data *collection.Collection) (any, error)
	Update(ctx context.Context, table string, data *collection.Collection, where map[string]any) (int64, error)
	Delete(ctx context.Context, q *condition.Query) (int64, error)
	Select(ctx context.Context, q *condition.Query) ([]map[string]any, error)
	PaginationOffset(ctx context.Context, q *condition.Query) (*Pagination, error)

	// Connection returns the name of the active connection
	Connection() string
	// UseConnection makes name the active connection
	UseConnection(name string) error
}
