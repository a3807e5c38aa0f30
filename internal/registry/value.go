package registry

// Kind identifies which member of a Value is populated
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindStrings
	KindMap
	KindErrors
	KindObject
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindStrings:
		return "strings"
	case KindMap:
		return "map"
	case KindErrors:
		return "errors"
	case KindObject:
		return "object"
	default:
		return "none"
	}
}

// Value is a tagged union of the value kinds a registry can hold
type Value struct {
	kind   Kind
	str    string
	num    int64
	float  float64
	flag   bool
	list   []string
	dict   map[string]any
	errs   map[string][]string
	object any
}

// String wraps a string
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int wraps an integer
func Int(i int64) Value { return Value{kind: KindInt, num: i} }

// Float wraps a float
func Float(f float64) Value { return Value{kind: KindFloat, float: f} }

// Bool wraps a boolean
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Strings wraps a string list
func Strings(s []string) Value { return Value{kind: KindStrings, list: s} }

// Map wraps a string-keyed map
func Map(m map[string]any) Value { return Value{kind: KindMap, dict: m} }

// Errors wraps a field → messages mapping
func Errors(e map[string][]string) Value { return Value{kind: KindErrors, errs: e} }

// Object wraps any other value
func Object(o any) Value { return Value{kind: KindObject, object: o} }

// Kind returns the populated kind
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether the value holds nothing
func (v Value) IsZero() bool { return v.kind == KindNone }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

func (v Value) AsInt() (int64, bool) { return v.num, v.kind == KindInt }

func (v Value) AsFloat() (float64, bool) { return v.float, v.kind == KindFloat }

func (v Value) AsBool() (bool, bool) { return v.flag, v.kind == KindBool }

func (v Value) AsStrings() ([]string, bool) { return v.list, v.kind == KindStrings }

func (v Value) AsMap() (map[string]any, bool) { return v.dict, v.kind == KindMap }

func (v Value) AsErrors() (map[string][]string, bool) { return v.errs, v.kind == KindErrors }

func (v Value) AsObject() (any, bool) { return v.object, v.kind == KindObject }

// Interface returns the wrapped value as an untyped value
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.float
	case KindBool:
		return v.flag
	case KindStrings:
		return v.list
	case KindMap:
		return v.dict
	case KindErrors:
		return v.errs
	case KindObject:
		return v.object
	default:
		return nil
	}
}
