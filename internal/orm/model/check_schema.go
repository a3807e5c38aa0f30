package model

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/prodigyview/helium/internal/orm/schema"
	"github.com/prodigyview/helium/internal/orm/storage"
)

// CheckSchema makes the table match the declared schema: a missing table is
// created when CreateTable is configured, and missing columns of an existing
// table are added when ColumnCheck is configured. force does both regardless
// of configuration. Schema-less storage is left alone.
func (m *Model) CheckSchema(ctx context.Context, force bool) error {
	return m.run(ctx, &Invocation{Operation: OpCheckSchema, Options: &force})
}

func (m *Model) checkSchema(ctx context.Context, inv *Invocation) error {
	force, _ := inv.Options.(*bool)
	forced := force != nil && *force

	if m.documents() || m.def.Schema.Len() == 0 {
		return nil
	}

	release, err := m.useConnection()
	if err != nil {
		return err
	}
	defer release()

	table := m.TableName(true)
	lookup := table
	if m.store.DatabaseType() == storage.PostgreSQL {
		lookup = m.TableName(false)
	}

	exists, err := m.store.TableExists(ctx, lookup)
	if err != nil {
		return fmt.Errorf("check table %s: %w", table, err)
	}

	if !exists {
		if !m.cfg.CreateTable && !forced {
			return nil
		}
		fields, keys := createFields(m.def.Schema)
		if err := m.store.CreateTable(ctx, table, fields, storage.CreateTableOptions{PrimaryKey: strings.Join(keys, ",")}); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
		m.logger.Debug("table created", zap.String("table", table), zap.Int("fields", len(fields)))
		inv.Result = true
		return nil
	}

	if !m.cfg.ColumnCheck && !forced {
		return nil
	}
	added := 0
	for _, f := range m.def.Schema.Fields() {
		ok, err := m.store.ColumnExists(ctx, lookup, f.Name)
		if err != nil {
			return fmt.Errorf("check column %s.%s: %w", table, f.Name, err)
		}
		if ok {
			continue
		}
		if err := m.store.AddColumn(ctx, table, f); err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, f.Name, err)
		}
		m.logger.Debug("column added", zap.String("table", table), zap.String("column", f.Name))
		added++
	}
	inv.Result = added > 0
	return nil
}

// createFields prepares the schema for CREATE TABLE. Non-key fields whose
// declared default is empty get an empty string literal, and an auto-increment
// field with a non-empty default is created as a plain column.
func createFields(s *schema.Schema) ([]schema.Field, []string) {
	fields := s.Fields()
	var keys []string
	for i := range fields {
		f := &fields[i]
		if f.PrimaryKey {
			keys = append(keys, f.Name)
		} else if f.HasDefault() && emptyDefault(f.Default) {
			f.Default = schema.Literal("''")
		}
		if f.AutoIncrement && schema.Truthy(f.Default) {
			f.AutoIncrement = false
		}
	}
	return fields, keys
}

// emptyDefault reports whether a declared default is an empty string or an
// empty list. Zero numbers are real defaults, and so is false: a boolean
// column keeps a false default instead of having it blanked to ''.
func emptyDefault(v any) bool {
	switch t := v.(type) {
	case string:
		return t == ""
	case schema.Literal:
		return t == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return false
}
