package validation

import (
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var displayPolicy = bluemonday.StrictPolicy()

// Errors maps a field name to its validation messages, in the order they were added
type Errors map[string][]string

// Add appends a message for field
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Field returns the concatenated messages of field, or "" when there are none
func (e Errors) Field(name string) string {
	return strings.Join(e[name], "")
}

// Has reports whether field has any message
func (e Errors) Has(name string) bool {
	return len(e[name]) > 0
}

// Count returns the total number of messages
func (e Errors) Count() int {
	n := 0
	for _, msgs := range e {
		n += len(msgs)
	}
	return n
}

// Fields returns the names of fields with errors, sorted
func (e Errors) Fields() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of the underlying map
func (e Errors) Map() map[string][]string {
	out := make(map[string][]string, len(e))
	for k, v := range e {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// DisplayMessage escapes message and wraps it for display in a page
func DisplayMessage(message string) string {
	return `<span class="error">` + displayPolicy.Sanitize(message) + `</span>`
}
