// Package schema defines the per-model field table that drives table creation,
// insert defaults and value casting.
package schema

import "fmt"

// FieldType is the storage type of a field
type FieldType int

const (
	TypeString FieldType = iota
	TypeText
	TypeInteger
	TypeBigInt
	TypeFloat
	TypeDecimal
	TypeBoolean
	TypeTimestamp
	TypeDate
	TypeUUID
	TypeJSON
)

// String returns the string representation of the field type
func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeText:
		return "text"
	case TypeInteger:
		return "integer"
	case TypeBigInt:
		return "bigint"
	case TypeFloat:
		return "float"
	case TypeDecimal:
		return "decimal"
	case TypeBoolean:
		return "boolean"
	case TypeTimestamp:
		return "timestamp"
	case TypeDate:
		return "date"
	case TypeUUID:
		return "uuid"
	case TypeJSON:
		return "json"
	default:
		return "unknown"
	}
}

// IsNumeric returns true for integer and floating point types
func (t FieldType) IsNumeric() bool {
	switch t {
	case TypeInteger, TypeBigInt, TypeFloat, TypeDecimal:
		return true
	}
	return false
}

// ParseFieldType converts a string to a FieldType
func ParseFieldType(s string) (FieldType, error) {
	switch s {
	case "string", "varchar":
		return TypeString, nil
	case "text":
		return TypeText, nil
	case "integer", "int":
		return TypeInteger, nil
	case "bigint":
		return TypeBigInt, nil
	case "float", "double":
		return TypeFloat, nil
	case "decimal", "numeric":
		return TypeDecimal, nil
	case "boolean", "bool":
		return TypeBoolean, nil
	case "timestamp", "datetime":
		return TypeTimestamp, nil
	case "date":
		return TypeDate, nil
	case "uuid":
		return TypeUUID, nil
	case "json":
		return TypeJSON, nil
	default:
		return 0, fmt.Errorf("unknown field type: %s", s)
	}
}

// Cast is a value conversion applied to a field before it is written
type Cast int

const (
	CastNone Cast = iota
	CastBoolean
	CastInteger
	CastFloat
	CastString
	CastArray
	CastObject
	CastNull
	CastUUID
	CastArrayRecursive
)

// String returns the string representation of the cast
func (c Cast) String() string {
	switch c {
	case CastBoolean:
		return "boolean"
	case CastInteger:
		return "integer"
	case CastFloat:
		return "float"
	case CastString:
		return "string"
	case CastArray:
		return "array"
	case CastObject:
		return "object"
	case CastNull:
		return "null"
	case CastUUID:
		return "uuid"
	case CastArrayRecursive:
		return "array_recursive"
	default:
		return ""
	}
}

// ParseCast converts a string to a Cast. The empty string is CastNone.
func ParseCast(s string) (Cast, error) {
	switch s {
	case "":
		return CastNone, nil
	case "boolean", "bool":
		return CastBoolean, nil
	case "integer", "int":
		return CastInteger, nil
	case "float", "double":
		return CastFloat, nil
	case "string":
		return CastString, nil
	case "array":
		return CastArray, nil
	case "object":
		return CastObject, nil
	case "null":
		return CastNull, nil
	case "uuid":
		return CastUUID, nil
	case "array_recursive":
		return CastArrayRecursive, nil
	default:
		return CastNone, fmt.Errorf("unknown cast: %s", s)
	}
}
