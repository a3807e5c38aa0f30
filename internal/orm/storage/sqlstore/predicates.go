package sqlstore

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

var operators = map[string]string{
	"=":        "=",
	"!=":       "!=",
	"<>":       "<>",
	">":        ">",
	">=":       ">=",
	"<":        "<",
	"<=":       "<=",
	"like":     "LIKE",
	"not like": "NOT LIKE",
	"in":       "IN",
	"not in":   "NOT IN",
}

// buildWhere converts a condition map into an AND-joined predicate list.
// Fields are emitted in sorted order so statements are deterministic.
//
//	{"a": 1}                 a = ?
//	{"a": nil}               a IS NULL
//	{"a": []int{1, 2}}       a IN (?, ?)
//	{"a": {">": 1, "<": 9}}  a < ? AND a > ?
func buildWhere(where map[string]any, pb ParamBuilder) (string, error) {
	if len(where) == 0 {
		return "", nil
	}

	fields := make([]string, 0, len(where))
	for f := range where {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		sql, err := predicate(field, where[field], pb)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	return strings.Join(parts, " AND "), nil
}

func predicate(field string, value any, pb ParamBuilder) (string, error) {
	if value == nil {
		return field + " IS NULL", nil
	}

	if ops, ok := value.(map[string]any); ok {
		keys := make([]string, 0, len(ops))
		for k := range ops {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			op, ok := operators[strings.ToLower(strings.TrimSpace(k))]
			if !ok {
				return "", fmt.Errorf("field %s: unsupported operator %q", field, k)
			}
			sql, err := compare(field, op, ops[k], pb)
			if err != nil {
				return "", err
			}
			parts = append(parts, sql)
		}
		return strings.Join(parts, " AND "), nil
	}

	if isList(value) {
		return compare(field, "IN", value, pb)
	}
	return compare(field, "=", value, pb)
}

func compare(field, op string, value any, pb ParamBuilder) (string, error) {
	switch op {
	case "IN", "NOT IN":
		items, ok := listItems(value)
		if !ok {
			return "", fmt.Errorf("field %s: %s requires a list", field, op)
		}
		if len(items) == 0 {
			if op == "IN" {
				return "1=0", nil
			}
			return "1=1", nil
		}
		placeholders := make([]string, len(items))
		for i, item := range items {
			placeholders[i] = pb.Add(item)
		}
		return fmt.Sprintf("%s %s (%s)", field, op, strings.Join(placeholders, ", ")), nil
	}

	if value == nil {
		switch op {
		case "=":
			return field + " IS NULL", nil
		case "!=", "<>":
			return field + " IS NOT NULL", nil
		}
	}
	return fmt.Sprintf("%s %s %s", field, op, pb.Add(value)), nil
}

func isList(value any) bool {
	if _, ok := value.([]byte); ok {
		return false
	}
	k := reflect.ValueOf(value).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func listItems(value any) ([]any, bool) {
	if !isList(value) {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}
