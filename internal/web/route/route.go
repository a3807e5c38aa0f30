// Package route parses raw request routes into a controller, an action and
// named variables using chi's pattern matcher.
package route

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Route is the controller and action a raw route resolves to. Either may be
// empty when the matched pattern does not name it.
type Route struct {
	Controller string
	Action     string
}

// Parser is the per-dispatch route-parsing collaborator
type Parser interface {
	SetRoute(raw string)
	Route() Route
	Variable(name string) string
	Variables() map[string]string
}

// Rule is a route pattern. Controller and Action pin the route to a fixed
// target; when empty they are taken from the {controller} and {action}
// variables of the pattern.
type Rule struct {
	Pattern    string
	Controller string
	Action     string
}

// DefaultRules are the conventional /controller/action/id patterns
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "/"},
		{Pattern: "/{controller}"},
		{Pattern: "/{controller}/{action}"},
		{Pattern: "/{controller}/{action}/{id}"},
	}
}

// Table holds route rules compiled into a chi mux used only for matching
type Table struct {
	mux   *chi.Mux
	rules []Rule
	index map[string]Rule
}

// NewTable compiles rules. With no rules the DefaultRules are used.
func NewTable(rules ...Rule) (t *Table, err error) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	t = &Table{
		mux:   chi.NewMux(),
		rules: append([]Rule(nil), rules...),
		index: make(map[string]Rule, len(rules)),
	}

	// chi panics on malformed patterns
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("invalid route pattern: %v", r)
		}
	}()

	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, rule := range rules {
		if _, dup := t.index[rule.Pattern]; dup {
			return nil, fmt.Errorf("duplicate route pattern %q", rule.Pattern)
		}
		t.index[rule.Pattern] = rule
		t.mux.Handle(rule.Pattern, noop)
	}
	return t, nil
}

// MustTable is NewTable that panics on error
func MustTable(rules ...Rule) *Table {
	t, err := NewTable(rules...)
	if err != nil {
		panic(err)
	}
	return t
}

// Rules returns the compiled rules in declaration order
func (t *Table) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}

// Match resolves path against the table. It returns false when no pattern matches.
func (t *Table) Match(path string) (Route, map[string]string, bool) {
	path = "/" + strings.Trim(path, "/")

	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, http.MethodGet, path) {
		return Route{}, map[string]string{}, false
	}

	vars := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if v, err := url.PathUnescape(rctx.URLParams.Values[i]); err == nil {
			vars[key] = v
		} else {
			vars[key] = rctx.URLParams.Values[i]
		}
	}

	rule := t.index[rctx.RoutePattern()]
	r := Route{Controller: rule.Controller, Action: rule.Action}
	if r.Controller == "" {
		r.Controller = vars["controller"]
	}
	if r.Action == "" {
		r.Action = vars["action"]
	}
	return r, vars, true
}

// NewParser returns a fresh parser over the table
func (t *Table) NewParser() Parser {
	return &ChiParser{table: t, vars: map[string]string{}}
}

// ChiParser is a Parser backed by a Table. Query parameters of the raw route
// are merged into the variables without overriding path variables.
type ChiParser struct {
	table *Table
	route Route
	vars  map[string]string
}

// SetRoute parses raw, e.g. "/posts/view/3?draft=1"
func (p *ChiParser) SetRoute(raw string) {
	path, query, _ := strings.Cut(raw, "?")

	route, vars, _ := p.table.Match(path)
	if values, err := url.ParseQuery(query); err == nil {
		for key := range values {
			if _, ok := vars[key]; !ok {
				vars[key] = values.Get(key)
			}
		}
	}
	p.route = route
	p.vars = vars
}

// Route returns the parsed route
func (p *ChiParser) Route() Route {
	return p.route
}

// Variable returns a single route variable, or ""
func (p *ChiParser) Variable(name string) string {
	return p.vars[name]
}

// Variables returns a copy of the route variables
func (p *ChiParser) Variables() map[string]string {
	out := make(map[string]string, len(p.vars))
	for k, v := range p.vars {
		out[k] = v
	}
	return out
}
