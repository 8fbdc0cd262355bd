package pipeline

import (
	"fmt"
	"strings"
)

// State is the position of a run in the generation lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateExtracting State = "extracting"
	StatePrompting  State = "prompting"
	StateParsing    State = "parsing"
	StatePackaged   State = "packaged"
	StateFailed     State = "failed"
)

// StateDefinition describes a state and the states reachable from it.
type StateDefinition struct {
	State    State
	Terminal bool
	Next     []State
}

// StateRegistry holds the lifecycle. Every non-terminal state may move to failed.
var StateRegistry = map[State]StateDefinition{
	StateIdle: {
		State: StateIdle,
		Next:  []State{StateExtracting, StateFailed},
	},
	StateExtracting: {
		State: StateExtracting,
		Next:  []State{StatePrompting, StateFailed},
	},
	StatePrompting: {
		State: StatePrompting,
		Next:  []State{StateParsing, StateFailed},
	},
	StateParsing: {
		State: StateParsing,
		Next:  []State{StatePackaged, StateFailed},
	},
	StatePackaged: {
		State:    StatePackaged,
		Terminal: true,
	},
	StateFailed: {
		State:    StateFailed,
		Terminal: true,
	},
}

// Terminal reports whether no further transitions are allowed from s.
func (s State) Terminal() bool {
	return StateRegistry[s].Terminal
}

// TransitionError is returned when a run attempts an illegal state change.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	def, ok := StateRegistry[e.From]
	if !ok {
		return fmt.Sprintf("unknown state %q", e.From)
	}
	allowed := make([]string, 0, len(def.Next))
	for _, s := range def.Next {
		allowed = append(allowed, string(s))
	}
	return fmt.Sprintf("invalid transition %s -> %s (allowed: [%s])", e.From, e.To, strings.Join(allowed, ", "))
}

// ValidateTransition returns a *TransitionError unless to is reachable from from.
func ValidateTransition(from, to State) error {
	def, ok := StateRegistry[from]
	if !ok {
		return &TransitionError{From: from, To: to}
	}
	for _, next := range def.Next {
		if next == to {
			return nil
		}
	}
	return &TransitionError{From: from, To: to}
}
