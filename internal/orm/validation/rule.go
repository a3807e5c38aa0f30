package validation

// Rule is one predicate applied to a field
type Rule struct {
	// Key names the predicate run by the Checker, e.g. "notempty" or "email"
	Key string
	// Events restricts the rule to operations; nil means create and update
	Events *Events
	// Options are passed through to the predicate
	Options map[string]any
	// Include names other fields whose values are handed to the predicate
	Include []string
	// Error is the message recorded when the predicate fails
	Error string
}

// events returns the declared events or the defaults
func (r Rule) events() Events {
	if r.Events == nil {
		return DefaultEvents()
	}
	return *r.Events
}

// Set maps field names to their ordered rules
type Set map[string][]Rule
