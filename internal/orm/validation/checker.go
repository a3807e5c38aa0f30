package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/prodigyview/helium/internal/orm/schema"
)

// Predicate checks a value. includes holds the values of the rule's included fields.
type Predicate func(value any, options map[string]any, includes map[string]any) bool

// DefaultChecker is the built-in Checker. Unknown keys pass.
type DefaultChecker struct {
	mu         sync.RWMutex
	predicates map[string]Predicate
}

// NewDefaultChecker creates a checker with the built-in predicates registered
func NewDefaultChecker() *DefaultChecker {
	c := &DefaultChecker{predicates: map[string]Predicate{}}
	c.Register("notempty", checkNotEmpty)
	c.Register("required", checkRequired)
	c.Register("email", checkEmail)
	c.Register("url", checkURL)
	c.Register("integer", func(v any, _, _ map[string]any) bool { return isInteger(v) })
	c.Register("numeric", func(v any, _, _ map[string]any) bool { _, ok := toFloat64(v); return ok })
	c.Register("boolean", checkBoolean)
	c.Register("alpha", runeClass(unicode.IsLetter))
	c.Register("alphanumeric", runeClass(func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }))
	c.Register("min_length", lengthBound(func(n, bound int64) bool { return n >= bound }))
	c.Register("max_length", lengthBound(func(n, bound int64) bool { return n <= bound }))
	c.Register("min", numericBound(func(v, bound float64) bool { return v >= bound }))
	c.Register("max", numericBound(func(v, bound float64) bool { return v <= bound }))
	c.Register("regex", checkRegex)
	c.Register("match", checkMatch)
	c.Register("in", checkIn)
	c.Register("uuid", checkUUID)
	return c
}

// Register adds or replaces the predicate for key
func (c *DefaultChecker) Register(key string, p Predicate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.predicates[key] = p
}

// Check implements Checker
func (c *DefaultChecker) Check(key string, value any, options map[string]any, includes map[string]any) bool {
	c.mu.RLock()
	p, ok := c.predicates[key]
	c.mu.RUnlock()
	if !ok {
		return true
	}
	return p(value, options, includes)
}

// IsInteger implements Checker
func (c *DefaultChecker) IsInteger(value any) bool {
	return isInteger(value)
}

var regexCache sync.Map

func compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}

func checkNotEmpty(value any, _, _ map[string]any) bool {
	return schema.Truthy(value)
}

func checkRequired(value any, _, _ map[string]any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	}
	return true
}

func checkEmail(value any, _, _ map[string]any) bool {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func checkURL(value any, _, _ map[string]any) bool {
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func checkBoolean(value any, _, _ map[string]any) bool {
	switch v := value.(type) {
	case bool:
		return true
	case string:
		_, err := strconv.ParseBool(v)
		return err == nil
	}
	if n, ok := toInt64(value); ok {
		return n == 0 || n == 1
	}
	return false
}

func checkRegex(value any, options, _ map[string]any) bool {
	pattern, _ := options["pattern"].(string)
	if pattern == "" {
		return true
	}
	re, err := compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(fmt.Sprint(value))
}

// checkMatch passes when value equals every included field, e.g. password confirmation
func checkMatch(value any, _, includes map[string]any) bool {
	for _, other := range includes {
		if fmt.Sprint(other) != fmt.Sprint(value) {
			return false
		}
	}
	return true
}

func checkIn(value any, options, _ map[string]any) bool {
	values := reflect.ValueOf(options["values"])
	if values.Kind() != reflect.Slice && values.Kind() != reflect.Array {
		return false
	}
	want := fmt.Sprint(value)
	for i := 0; i < values.Len(); i++ {
		if fmt.Sprint(values.Index(i).Interface()) == want {
			return true
		}
	}
	return false
}

func checkUUID(value any, _, _ map[string]any) bool {
	switch v := value.(type) {
	case uuid.UUID:
		return true
	case string:
		_, err := uuid.Parse(v)
		return err == nil
	}
	return false
}

func runeClass(allowed func(rune) bool) Predicate {
	return func(value any, _, _ map[string]any) bool {
		s, ok := value.(string)
		if !ok || s == "" {
			return false
		}
		for _, r := range s {
			if !allowed(r) {
				return false
			}
		}
		return true
	}
}

// lengthBound compares the rune length of a string, or the length of a
// slice or map, against options["length"]
func lengthBound(cmp func(n, bound int64) bool) Predicate {
	return func(value any, options, _ map[string]any) bool {
		bound, ok := toInt64(options["length"])
		if !ok {
			return true
		}
		var n int64
		switch v := value.(type) {
		case nil:
			n = 0
		case string:
			n = int64(utf8.RuneCountInString(v))
		default:
			rv := reflect.ValueOf(value)
			switch rv.Kind() {
			case reflect.Slice, reflect.Array, reflect.Map:
				n = int64(rv.Len())
			default:
				n = int64(utf8.RuneCountInString(fmt.Sprint(value)))
			}
		}
		return cmp(n, bound)
	}
}

// numericBound compares a numeric value against options["value"]
func numericBound(cmp func(v, bound float64) bool) Predicate {
	return func(value any, options, _ map[string]any) bool {
		bound, ok := toFloat64(options["value"])
		if !ok {
			return true
		}
		v, ok := toFloat64(value)
		if !ok {
			return false
		}
		return cmp(v, bound)
	}
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return err == nil
	case float32:
		return float32(int64(v)) == v
	case float64:
		return float64(int64(v)) == v
	}
	_, ok := toInt64(value)
	return ok
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float32:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	if n, ok := toInt64(value); ok {
		return float64(n), true
	}
	return 0, false
}
