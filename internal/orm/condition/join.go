package condition

import (
	"fmt"
	"strings"
)

// JoinType is the SQL join flavour of a JoinDef
type JoinType string

const (
	JoinNatural JoinType = "natural"
	JoinLeft    JoinType = "left"
	JoinRight   JoinType = "right"
	JoinInner   JoinType = "join"
	JoinFull    JoinType = "full"
)

// Keyword returns the SQL keyword for the join type. Unknown types are natural joins.
func (t JoinType) Keyword() string {
	switch JoinType(strings.ToLower(string(t))) {
	case JoinLeft:
		return "LEFT JOIN"
	case JoinRight:
		return "RIGHT JOIN"
	case JoinInner:
		return "JOIN"
	case JoinFull:
		return "FULL JOIN"
	default:
		return "NATURAL JOIN"
	}
}

// JoinDef is a pre-declared join of a model
type JoinDef struct {
	Type JoinType
	// Table is the joined table; ignored when Model is set
	Table string
	// Model names another registered model whose table is joined
	Model string
	Alias string
	On    string
	// Using names another join rendered in front of this one
	Using string
	// RawTable disables lower-casing and formatting of Table
	RawTable bool
}

// Joins is the named join table of a model
type Joins map[string]JoinDef

// TableResolver resolves the table names used by joins
type TableResolver interface {
	// FormatTableName applies storage-specific formatting to a table name
	FormatTableName(name string) string
	// ModelTable returns the table of a registered model
	ModelTable(model string) (string, error)
}

// RenderJoin renders def as `<TYPE> <table>[ AS alias][ ON cond]`. A Using
// reference is rendered first, followed by a single space.
func RenderJoin(def JoinDef, joins Joins, resolve TableResolver) (string, error) {
	return renderJoin(def, joins, resolve, map[string]bool{})
}

func renderJoin(def JoinDef, joins Joins, resolve TableResolver, seen map[string]bool) (string, error) {
	var b strings.Builder

	if def.Using != "" {
		if seen[def.Using] {
			return "", fmt.Errorf("join %q: cyclic using reference", def.Using)
		}
		used, ok := joins[def.Using]
		if !ok {
			return "", fmt.Errorf("join %q: unknown using reference", def.Using)
		}
		seen[def.Using] = true
		prefix, err := renderJoin(used, joins, resolve, seen)
		if err != nil {
			return "", err
		}
		b.WriteString(prefix)
		b.WriteString(" ")
	}

	table := def.Table
	switch {
	case def.Model != "":
		if resolve == nil {
			return "", fmt.Errorf("join on model %q: no table resolver", def.Model)
		}
		t, err := resolve.ModelTable(def.Model)
		if err != nil {
			return "", fmt.Errorf("join on model %q: %w", def.Model, err)
		}
		table = t
	case !def.RawTable:
		table = strings.ToLower(table)
		if resolve != nil {
			table = resolve.FormatTableName(table)
		}
	}

	b.WriteString(def.Type.Keyword())
	b.WriteString(" ")
	b.WriteString(table)
	if def.Alias != "" {
		b.WriteString(" AS ")
		b.WriteString(def.Alias)
	}
	if def.On != "" {
		b.WriteString(" ON ")
		b.WriteString(def.On)
	}
	return b.String(), nil
}

// RenderJoins renders each name of the list: pre-declared joins are rendered
// followed by a space, anything else is passed through as a literal fragment
// surrounded by spaces.
func RenderJoins(names []string, joins Joins, resolve TableResolver) (string, error) {
	var b strings.Builder
	for _, name := range names {
		if def, ok := joins[name]; ok {
			s, err := RenderJoin(def, joins, resolve)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
			b.WriteString(" ")
			continue
		}
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString(" ")
	}
	return b.String(), nil
}
