package validation

// Event names used by model operations
const (
	EventCreate = "create"
	EventUpdate = "update"
)

// Events is either a single event name or a list of names. The zero value is
// the single empty name, which only matches an allowed empty name.
type Events struct {
	Names []string
	List  bool
}

// On returns a single event
func On(name string) Events {
	return Events{Names: []string{name}}
}

// OnAny returns an event list
func OnAny(names ...string) Events {
	return Events{Names: append([]string(nil), names...), List: true}
}

// DefaultEvents is the event list a rule fires on when none is declared
func DefaultEvents() Events {
	return OnAny(EventCreate, EventUpdate)
}

func (e Events) name() string {
	if len(e.Names) == 0 {
		return ""
	}
	return e.Names[0]
}

func (e Events) contains(name string) bool {
	for _, n := range e.Names {
		if n == name {
			return true
		}
	}
	return false
}

// MatchEvent reports whether the passed event selects a rule declared for allowed.
//
//	single / single: names are equal
//	list   / list:   any passed name is allowed
//	list   / single: the allowed name is among the passed ones
//	single / list:   the passed name is among the allowed ones
func MatchEvent(passed, allowed Events) bool {
	switch {
	case !passed.List && !allowed.List:
		return passed.name() == allowed.name()
	case passed.List && allowed.List:
		for _, n := range passed.Names {
			if allowed.contains(n) {
				return true
			}
		}
		return false
	case passed.List:
		return passed.contains(allowed.name())
	default:
		return allowed.contains(passed.name())
	}
}
