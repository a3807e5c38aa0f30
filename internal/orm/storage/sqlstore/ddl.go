package sqlstore

import (
	"fmt"
	"strings"

	"github.com/prodigyview/helium/internal/orm/schema"
)

// createTableSQL renders CREATE TABLE for fields. primaryKey is the comma
// separated key list; it becomes a table-level PRIMARY KEY clause unless the
// dialect declared the key inline on an auto-increment column.
func createTableSQL(d Dialect, table string, fields []schema.Field, primaryKey string) string {
	keys := splitKeys(primaryKey)

	defs := make([]string, 0, len(fields)+1)
	inlineKey := false
	for _, f := range fields {
		soleKey := len(keys) == 1 && keys[0] == f.Name
		def, inline := columnDef(d, f, soleKey)
		inlineKey = inlineKey || inline
		defs = append(defs, def)
	}
	if len(keys) > 0 && !inlineKey {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(keys, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
}

func addColumnSQL(d Dialect, table string, f schema.Field) string {
	def, _ := columnDef(d, f, false)
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, def)
}

func columnDef(d Dialect, f schema.Field, soleKey bool) (string, bool) {
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteString(" ")

	if f.AutoIncrement {
		typ, inline := d.AutoIncrementType(f, soleKey)
		b.WriteString(typ)
		return b.String(), inline
	}

	b.WriteString(d.ColumnType(f))
	if !f.Null && f.HasDefault() && !f.PrimaryKey {
		b.WriteString(" NOT NULL")
	}
	if f.Unique && !f.PrimaryKey {
		b.WriteString(" UNIQUE")
	}
	if f.HasDefault() {
		b.WriteString(" DEFAULT ")
		b.WriteString(defaultLiteral(d, f.Default))
	}
	return b.String(), false
}

func defaultLiteral(d Dialect, v any) string {
	switch val := v.(type) {
	case schema.Literal:
		return string(val)
	case string:
		return quote(val)
	case bool:
		return d.BoolLiteral(val)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(val)
	default:
		return quote(fmt.Sprint(val))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func splitKeys(list string) []string {
	var keys []string
	for _, k := range strings.Split(list, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
