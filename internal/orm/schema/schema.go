package schema

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MaxPrimaryKeys bounds the size of a composite primary key
const MaxPrimaryKeys = 4

var (
	// ErrEmptyFieldName is returned when a field has no name
	ErrEmptyFieldName = errors.New("field name is empty")
	// ErrDuplicateField is returned when two fields share a name
	ErrDuplicateField = errors.New("duplicate field")
	// ErrTooManyPrimaryKeys is returned when the composite key exceeds MaxPrimaryKeys
	ErrTooManyPrimaryKeys = errors.New("too many primary key fields")
	// ErrAutoIncrementType is returned when a non-integer field auto-increments
	ErrAutoIncrementType = errors.New("auto_increment requires an integer field")
)

// Literal is a default value written verbatim into DDL
type Literal string

// Field describes a single column of a model
type Field struct {
	Name          string
	Type          FieldType
	PrimaryKey    bool
	Unique        bool
	AutoIncrement bool
	// AutoGenerated fields are filled by the database (defaults, triggers) and
	// never written on create
	AutoGenerated bool
	// Exclude keeps the field out of insert and update payloads
	Exclude bool
	// Null allows NULL values; empty input for a nullable field is not written on update
	Null bool
	// Default is nil when no default is declared
	Default any
	Cast    Cast
	// Length applies to string columns, Precision/Scale to decimals
	Length    int
	Precision int
	Scale     int
}

// DefaultValue returns the declared default, or the empty string when none is declared
func (f Field) DefaultValue() any {
	if f.Default == nil {
		return ""
	}
	return f.Default
}

// HasDefault reports whether a default was declared
func (f Field) HasDefault() bool {
	return f.Default != nil
}

// Schema is an ordered field table. It is immutable once built.
type Schema struct {
	fields []Field
	index  map[string]int
}

// New builds a schema from fields in declaration order
func New(fields ...Field) *Schema {
	s := &Schema{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		if _, exists := s.index[f.Name]; exists {
			// keep the first declaration; Validate reports the duplicate
			s.fields = append(s.fields, f)
			continue
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s
}

// Field returns the field named name
func (s *Schema) Field(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Fields returns a copy of the fields in declaration order
func (s *Schema) Fields() []Field {
	if s == nil {
		return nil
	}
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the field names in declaration order
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of fields
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// PrimaryKeys returns the primary key field names in declaration order
func (s *Schema) PrimaryKeys() []string {
	var keys []string
	for _, f := range s.Fields() {
		if f.PrimaryKey {
			keys = append(keys, f.Name)
		}
	}
	return keys
}

// AutoIncrement returns the auto-increment field, if any
func (s *Schema) AutoIncrement() (Field, bool) {
	for _, f := range s.Fields() {
		if f.AutoIncrement {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks the structural invariants of the schema
func (s *Schema) Validate() error {
	seen := make(map[string]bool, s.Len())
	primaries := 0
	for _, f := range s.Fields() {
		if strings.TrimSpace(f.Name) == "" {
			return ErrEmptyFieldName
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateField, f.Name)
		}
		seen[f.Name] = true
		if f.PrimaryKey {
			primaries++
		}
		if f.AutoIncrement && f.Type != TypeInteger && f.Type != TypeBigInt {
			return fmt.Errorf("%w: %s is %s", ErrAutoIncrementType, f.Name, f.Type)
		}
	}
	if primaries > MaxPrimaryKeys {
		return fmt.Errorf("%w: %d > %d", ErrTooManyPrimaryKeys, primaries, MaxPrimaryKeys)
	}
	return nil
}

// TableName derives a table name from a CamelCase model name: every upper case
// letter starts a new lower-cased part and parts are joined with underscores,
// so UserProfile becomes user_profile.
func TableName(model string) string {
	var parts []string
	var current []rune
	for _, r := range model {
		if unicode.IsUpper(r) && len(current) > 0 {
			parts = append(parts, string(current))
			current = current[:0]
		}
		current = append(current, unicode.ToLower(r))
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return strings.Join(parts, "_")
}
