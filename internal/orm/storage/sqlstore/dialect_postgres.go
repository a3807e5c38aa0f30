package sqlstore

import (
	"context"
	"fmt"

	"github.com/prodigyview/helium/internal/orm/schema"
	"github.com/prodigyview/helium/internal/orm/storage"
)

// PostgresDialect implements Dialect for PostgreSQL via lib/pq or pgx/stdlib.
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string                       { return "postgres" }
func (d *PostgresDialect) DatabaseType() storage.DatabaseType { return storage.PostgreSQL }
func (d *PostgresDialect) NewParamBuilder() ParamBuilder      { return &pgParamBuilder{} }
func (d *PostgresDialect) Returning() bool                    { return true }
func (d *PostgresDialect) DefaultSchema() string              { return "public" }

func (d *PostgresDialect) BoolLiteral(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (d *PostgresDialect) ColumnType(f schema.Field) string {
	switch f.Type {
	case schema.TypeString:
		if f.Length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", f.Length)
		}
		return "TEXT"
	case schema.TypeText:
		return "TEXT"
	case schema.TypeInteger:
		return "INTEGER"
	case schema.TypeBigInt:
		return "BIGINT"
	case schema.TypeFloat:
		return "DOUBLE PRECISION"
	case schema.TypeDecimal:
		if f.Precision > 0 {
			return fmt.Sprintf("NUMERIC(%d,%d)", f.Precision, f.Scale)
		}
		return "NUMERIC"
	case schema.TypeBoolean:
		return "BOOLEAN"
	case schema.TypeUUID:
		return "UUID"
	case schema.TypeTimestamp:
		return "TIMESTAMPTZ"
	case schema.TypeDate:
		return "DATE"
	case schema.TypeJSON:
		return "JSONB"
	default:
		return "TEXT"
	}
}

func (d *PostgresDialect) AutoIncrementType(f schema.Field, _ bool) (string, bool) {
	if f.Type == schema.TypeBigInt {
		return "BIGSERIAL", false
	}
	return "SERIAL", false
}

func (d *PostgresDialect) TableExists(ctx context.Context, q Querier, schemaName, table string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = $1 AND table_schema = $2)`,
		table, schemaName,
	).Scan(&exists)
	return exists, err
}

func (d *PostgresDialect) ColumnExists(ctx context.Context, q Querier, schemaName, table, column string) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM information_schema.columns WHERE table_name = $1 AND column_name = $2 AND table_schema = $3)`,
		table, column, schemaName,
	).Scan(&exists)
	return exists, err
}
