package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Apply converts value according to cast. Conversions follow loose scripting
// semantics: strings are parsed leniently and never fail, with the exception
// of uuid which rejects malformed input.
func Apply(value any, cast Cast) (any, error) {
	switch cast {
	case CastNone:
		return value, nil
	case CastBoolean:
		return Truthy(value), nil
	case CastInteger:
		return toInt(value), nil
	case CastFloat:
		return toFloat(value), nil
	case CastString:
		return toString(value), nil
	case CastArray:
		return toArray(value), nil
	case CastObject:
		return toObject(value)
	case CastNull:
		return nil, nil
	case CastUUID:
		return toUUID(value)
	case CastArrayRecursive:
		return toGeneric(toArray(value))
	default:
		return nil, fmt.Errorf("unknown cast %d", cast)
	}
}

// Truthy reports whether value is considered non-empty: nil, false, zero
// numbers, "", "0" and empty collections are false.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "0"
	case []byte:
		return len(v) > 0 && string(v) != "0"
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// IsEmpty is the negation of Truthy
func IsEmpty(value any) bool {
	return !Truthy(value)
}

func toInt(value any) int64 {
	switch v := value.(type) {
	case nil:
		return 0
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		return leadingInt(v)
	case []byte:
		return leadingInt(string(v))
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return int64(f)
	case reflect.Slice, reflect.Map, reflect.Array:
		if rv.Len() > 0 {
			return 1
		}
	}
	return 0
}

func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	for i, r := range s {
		if (r == '-' || r == '+') && i == 0 {
			end = i + 1
			continue
		}
		if r < '0' || r > '9' {
			break
		}
		end = i + 1
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return int64(f)
		}
		return 0
	}
	return n
}

func toFloat(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return float64(leadingInt(v))
		}
		return f
	case []byte:
		return toFloat(string(v))
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return float64(toInt(value))
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		if v {
			return "1"
		}
		return ""
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

func toArray(value any) any {
	if value == nil {
		return []any{}
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if _, isBytes := value.([]byte); isBytes {
			return []any{string(value.([]byte))}
		}
		return value
	case reflect.Map:
		return value
	case reflect.Struct, reflect.Pointer:
		if obj, err := toObject(value); err == nil {
			return obj
		}
	}
	return []any{value}
}

func toObject(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Struct, reflect.Map, reflect.Pointer:
		out, err := toGeneric(value)
		if err != nil {
			return nil, err
		}
		if m, ok := out.(map[string]any); ok {
			return m, nil
		}
	case reflect.Slice, reflect.Array:
		m := make(map[string]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			m[strconv.Itoa(i)] = rv.Index(i).Interface()
		}
		return m, nil
	}
	return map[string]any{"scalar": value}, nil
}

// toGeneric converts nested structs into maps and slices via a JSON round trip
func toGeneric(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("array_recursive cast: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("array_recursive cast: %w", err)
	}
	return out, nil
}

func toUUID(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case uuid.UUID:
		return v.String(), nil
	case []byte:
		if len(v) == 16 {
			id, err := uuid.FromBytes(v)
			if err != nil {
				return nil, fmt.Errorf("uuid cast: %w", err)
			}
			return id.String(), nil
		}
		return toUUID(string(v))
	case string:
		if v == "" {
			return nil, nil
		}
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("uuid cast: %w", err)
		}
		return id.String(), nil
	}
	return nil, fmt.Errorf("uuid cast: unsupported type %T", value)
}
