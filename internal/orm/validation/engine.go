package validation

import "sort"

// Checker runs named predicates against values
type Checker interface {
	// Check returns true when value passes the predicate named key
	Check(key string, value any, options map[string]any, includes map[string]any) bool
	// IsInteger reports whether value is an integer or integer string
	IsInteger(value any) bool
}

// Options controls a single validation run
type Options struct {
	Event Events
	// Display formats messages with DisplayMessage
	Display bool
}

// Engine applies a rule set to data using a Checker
type Engine struct {
	rules   Set
	checker Checker
}

// NewEngine creates an engine. A nil checker uses DefaultChecker.
func NewEngine(rules Set, checker Checker) *Engine {
	if checker == nil {
		checker = NewDefaultChecker()
	}
	return &Engine{rules: rules, checker: checker}
}

// Checker returns the engine's predicate checker
func (e *Engine) Checker() Checker {
	return e.checker
}

// Validate runs every rule whose events match opts.Event and records a message
// for each failing predicate. It returns true when no rule failed.
func (e *Engine) Validate(data map[string]any, opts Options) (bool, Errors) {
	errs := Errors{}

	fields := make([]string, 0, len(e.rules))
	for field := range e.rules {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		for _, rule := range e.rules[field] {
			if !MatchEvent(opts.Event, rule.events()) {
				continue
			}

			includes := make(map[string]any, len(rule.Include))
			for _, name := range rule.Include {
				includes[name] = data[name]
			}

			options := rule.Options
			if options == nil {
				options = map[string]any{}
			}

			if e.checker.Check(rule.Key, data[field], options, includes) {
				continue
			}

			msg := rule.Error
			if opts.Display {
				msg = DisplayMessage(msg)
			}
			errs.Add(field, msg)
		}
	}

	return len(errs) == 0, errs
}
