package element

import "fmt"

// State is a target condition the wait engine resolves an element into.
type State int

const (
	Present State = iota
	Absent
	Visible
	Invisible
	Clickable
	Unclickable
	Selected
	Unselected
)

var stateNames = map[State]string{
	Present:     "present",
	Absent:      "absent",
	Visible:     "visible",
	Invisible:   "invisible",
	Clickable:   "clickable",
	Unclickable: "unclickable",
	Selected:    "selected",
	Unselected:  "unselected",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseState converts a state name to a State. Used by the CLI.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", name)
}

// status renders the state for timeout messages. Invisible and unclickable
// waits that accept absence report both acceptable terminal states.
func (s State) status(presentRequired bool) string {
	if !presentRequired && (s == Invisible || s == Unclickable) {
		return s.String() + " or absent"
	}
	return s.String()
}
