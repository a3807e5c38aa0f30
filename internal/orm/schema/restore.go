package schema

import (
	"encoding/json"
	"time"
)

// Restore converts a value decoded from JSON with json.Decoder.UseNumber back
// to the type a database read yields for t. Numbers become int64, or float64
// for float fields and non-integral values. Timestamp and date strings become
// time.Time. Nested lists and maps are restored as untyped values.
func Restore(t FieldType, value any) any {
	switch v := value.(type) {
	case json.Number:
		if t != TypeFloat {
			if i, err := v.Int64(); err == nil {
				return i
			}
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case string:
		if t == TypeTimestamp || t == TypeDate {
			if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
				return ts
			}
		}
		return v
	case []any:
		for i := range v {
			v[i] = Restore(TypeJSON, v[i])
		}
		return v
	case map[string]any:
		for k := range v {
			v[k] = Restore(TypeJSON, v[k])
		}
		return v
	}
	return value
}

// RestoreRow applies Restore to every column of row in place. Columns the
// schema does not declare, such as joined ones, are restored as untyped values.
func (s *Schema) RestoreRow(row map[string]any) {
	for k, v := range row {
		t := TypeJSON
		if f, ok := s.Field(k); ok {
			t = f.Type
		}
		row[k] = Restore(t, v)
	}
}
