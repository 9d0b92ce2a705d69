package reference

import (
	"fmt"
	"strings"
)

// State is the local lifecycle state of a challenge.
type State string

// Lifecycle states, in the order a challenge normally passes through them.
const (
	StateSaved     State = "SAVED"
	StateActive    State = "ACTIVE"
	StateQueued    State = "QUEUED"
	StateFinal     State = "FINAL"
	StateCompleted State = "COMPLETED"
)

// States lists every valid state.
var States = []State{StateSaved, StateActive, StateQueued, StateFinal, StateCompleted}

// ParseState maps a state token to a State. Matching is case-insensitive
// because older data files stored lower-case tokens.
func ParseState(s string) (State, error) {
	for _, st := range States {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown state %q", s)
}

func (s State) String() string {
	return string(s)
}

// Record identifies one challenge the user has interacted with.
type Record struct {
	ID    string
	Slug  string
	State State
}
