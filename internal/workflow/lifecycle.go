package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/thruflo/nodewars/internal/reference"
)

// none stands for "no local record yet" in the transition table.
const none reference.State = ""

// transitions maps a target state to the states it may be entered from.
// Self-loops on ACTIVE and QUEUED let a user re-train the current challenge
// and re-submit after an interrupted poll. They are the only additions to
// the forward lifecycle and the failed-evaluation return to ACTIVE; every
// other pair is rejected.
var transitions = map[reference.State][]reference.State{
	reference.StateSaved:     {none},
	reference.StateActive:    {none, reference.StateSaved, reference.StateCompleted, reference.StateActive, reference.StateQueued},
	reference.StateQueued:    {reference.StateActive, reference.StateQueued},
	reference.StateFinal:     {reference.StateQueued},
	reference.StateCompleted: {reference.StateFinal},
}

// canTrain reports whether a training session may start from the given state.
// QUEUED -> ACTIVE is reserved for a failed evaluation.
func canTrain(from reference.State) bool {
	return from != reference.StateQueued && CanTransition(from, reference.StateActive)
}

// CanTransition reports whether the lifecycle allows from -> to. Use "" for
// a challenge with no local record.
func CanTransition(from, to reference.State) bool {
	for _, allowed := range transitions[to] {
		if allowed == from {
			return true
		}
	}
	return false
}

// AllowedFrom lists the states to may be entered from, excluding "".
func AllowedFrom(to reference.State) []reference.State {
	var out []reference.State
	for _, st := range transitions[to] {
		if st != none {
			out = append(out, st)
		}
	}
	return out
}

// InvalidStateError is returned when an operation needs the record in a
// different lifecycle state.
type InvalidStateError struct {
	Identifier string
	Operation  string
	Actual     reference.State
	Required   []reference.State
}

func (e *InvalidStateError) Error() string {
	required := make([]string, len(e.Required))
	for i, st := range e.Required {
		required[i] = string(st)
	}
	actual := string(e.Actual)
	if actual == "" {
		actual = "NOT SAVED"
	}
	return fmt.Sprintf("cannot %s %s: state is %s, must be %s",
		e.Operation, e.Identifier, actual, strings.Join(required, " or "))
}

// IsInvalidState checks if an error is an InvalidStateError.
func IsInvalidState(err error) bool {
	var ise *InvalidStateError
	return errors.As(err, &ise)
}

func checkTransition(operation, identifier string, from, to reference.State) error {
	if CanTransition(from, to) {
		return nil
	}
	return &InvalidStateError{
		Identifier: identifier,
		Operation:  operation,
		Actual:     from,
		Required:   AllowedFrom(to),
	}
}

func checkTrain(identifier string, from reference.State) error {
	if canTrain(from) {
		return nil
	}
	return &InvalidStateError{
		Identifier: identifier,
		Operation:  "train",
		Actual:     from,
		Required:   []reference.State{reference.StateSaved, reference.StateActive, reference.StateCompleted},
	}
}
