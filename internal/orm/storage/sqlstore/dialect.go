package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prodigyview/helium/internal/orm/schema"
	"github.com/prodigyview/helium/internal/orm/storage"
)

// Querier is the subset of *sql.DB used for catalogue lookups
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect abstracts database-specific SQL generation and behavior.
type Dialect interface {
	// Name returns "postgres" or "sqlite".
	Name() string

	// DatabaseType reports the storage type models see.
	DatabaseType() storage.DatabaseType

	// NewParamBuilder creates a dialect-aware parameter builder.
	NewParamBuilder() ParamBuilder

	// ColumnType maps a schema field to the database DDL type.
	ColumnType(f schema.Field) string

	// AutoIncrementType returns the DDL for an auto-incrementing column. inline
	// reports whether the primary key is declared on the column itself, in which
	// case no table-level PRIMARY KEY clause may follow.
	AutoIncrementType(f schema.Field, soleKey bool) (ddl string, inline bool)

	// BoolLiteral renders a boolean default.
	BoolLiteral(b bool) string

	// Returning reports whether INSERT ... RETURNING yields generated ids.
	Returning() bool

	// DefaultSchema is the schema searched when a connection sets none.
	DefaultSchema() string

	// TableExists checks whether a table exists.
	TableExists(ctx context.Context, q Querier, schemaName, table string) (bool, error)

	// ColumnExists checks whether a table has a column.
	ColumnExists(ctx context.Context, q Querier, schemaName, table, column string) (bool, error)
}

// ParamBuilder accumulates query parameters and generates dialect-specific placeholders.
type ParamBuilder interface {
	// Add appends a value and returns the placeholder string.
	Add(v any) string

	// Params returns all accumulated parameter values.
	Params() []any
}

// DialectFor returns the dialect used by a database/sql driver name
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return &PostgresDialect{}, nil
	case "sqlite3":
		return &SQLiteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

type pgParamBuilder struct {
	params []any
}

func (p *pgParamBuilder) Add(v any) string {
	p.params = append(p.params, v)
	return fmt.Sprintf("$%d", len(p.params))
}

func (p *pgParamBuilder) Params() []any { return p.params }

type sqliteParamBuilder struct {
	params []any
}

func (p *sqliteParamBuilder) Add(v any) string {
	p.params = append(p.params, v)
	return "?"
}

func (p *sqliteParamBuilder) Params() []any { return p.params }
