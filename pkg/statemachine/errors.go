package statemachine

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a transition is declared with an
// empty state or event.
var ErrInvalidTransition = errors.New("invalid transition: from, to, and event are required")

// NoTransitionError indicates the fired event is not legal from the current
// state.
type NoTransitionError struct {
	State State
	Event Event
}

func (e *NoTransitionError) Error() string {
	return fmt.Sprintf("no transition from state %q for event %q", e.State, e.Event)
}
