package memstore

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// matches applies where with the same shapes the SQL store accepts
func matches(doc map[string]any, where map[string]any) (bool, error) {
	for field, want := range where {
		got, present := doc[field]
		ok, err := matchValue(got, present, want)
		if err != nil {
			return false, fmt.Errorf("field %s: %w", field, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchValue(got any, present bool, want any) (bool, error) {
	if want == nil {
		return !present || got == nil, nil
	}
	if ops, ok := want.(map[string]any); ok {
		for op, operand := range ops {
			ok, err := apply(strings.ToLower(strings.TrimSpace(op)), got, operand)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	if isList(want) {
		return apply("in", got, want)
	}
	return present && compareValues(got, want) == 0, nil
}

func apply(op string, got, operand any) (bool, error) {
	switch op {
	case "=":
		return compareValues(got, operand) == 0, nil
	case "!=", "<>":
		return compareValues(got, operand) != 0, nil
	case ">":
		return compareValues(got, operand) > 0, nil
	case ">=":
		return compareValues(got, operand) >= 0, nil
	case "<":
		return compareValues(got, operand) < 0, nil
	case "<=":
		return compareValues(got, operand) <= 0, nil
	case "like":
		return like(fmt.Sprint(got), fmt.Sprint(operand)), nil
	case "not like":
		return !like(fmt.Sprint(got), fmt.Sprint(operand)), nil
	case "in", "not in":
		if !isList(operand) {
			return false, fmt.Errorf("%s requires a list", op)
		}
		rv := reflect.ValueOf(operand)
		found := false
		for i := 0; i < rv.Len(); i++ {
			if compareValues(got, rv.Index(i).Interface()) == 0 {
				found = true
				break
			}
		}
		return found == (op == "in"), nil
	}
	return false, fmt.Errorf("unsupported operator %q", op)
}

func isList(v any) bool {
	if _, ok := v.([]byte); ok {
		return false
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// compareValues orders numbers numerically and everything else by string form
func compareValues(a, b any) int {
	fa, okA := number(a)
	fb, okB := number(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// like implements SQL LIKE with % and _ wildcards
func like(s, pattern string) bool {
	if pattern == "" {
		return s == ""
	}
	switch pattern[0] {
	case '%':
		for i := 0; i <= len(s); i++ {
			if like(s[i:], pattern[1:]) {
				return true
			}
		}
		return false
	case '_':
		return s != "" && like(s[1:], pattern[1:])
	default:
		return s != "" && s[0] == pattern[0] && like(s[1:], pattern[1:])
	}
}
