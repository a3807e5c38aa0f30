package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prodigyview/helium/internal/orm/schema"
	"github.com/prodigyview/helium/internal/orm/storage"
)

// SQLiteDialect implements Dialect for go-sqlite3.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string                       { return "sqlite" }
func (d *SQLiteDialect) DatabaseType() storage.DatabaseType { return storage.SQLite }
func (d *SQLiteDialect) NewParamBuilder() ParamBuilder      { return &sqliteParamBuilder{} }
func (d *SQLiteDialect) Returning() bool                    { return false }
func (d *SQLiteDialect) DefaultSchema() string              { return "" }

func (d *SQLiteDialect) BoolLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (d *SQLiteDialect) ColumnType(f schema.Field) string {
	switch f.Type {
	case schema.TypeInteger, schema.TypeBigInt, schema.TypeBoolean:
		return "INTEGER"
	case schema.TypeFloat, schema.TypeDecimal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// AutoIncrementType declares the key inline; SQLite only auto-increments a
// sole INTEGER PRIMARY KEY column.
func (d *SQLiteDialect) AutoIncrementType(_ schema.Field, soleKey bool) (string, bool) {
	if soleKey {
		return "INTEGER PRIMARY KEY AUTOINCREMENT", true
	}
	return "INTEGER", false
}

func (d *SQLiteDialect) TableExists(ctx context.Context, q Querier, _ string, table string) (bool, error) {
	var name string
	err := q.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
		table,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *SQLiteDialect) ColumnExists(ctx context.Context, q Querier, _ string, table, column string) (bool, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull int
		var dfltValue any
		var pk int
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			found = true
		}
	}
	return found, rows.Err()
}
