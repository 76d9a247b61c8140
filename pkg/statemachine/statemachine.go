package statemachine

import (
	"fmt"
	"sync"
)

// State is a named state.
type State string

// Event triggers a state transition.
type Event string

// Machine is a thread-safe finite state machine with a fixed transition
// table. Transitions are keyed [from][event] for O(1) lookup.
type Machine struct {
	mu          sync.RWMutex
	initial     State
	current     State
	transitions map[State]map[Event]State
}

// Option declares a transition during construction.
type Option func(*Machine) error

// WithTransition adds one legal transition.
func WithTransition(from, to State, event Event) Option {
	return func(m *Machine) error {
		if from == "" || to == "" || event == "" {
			return ErrInvalidTransition
		}
		if _, ok := m.transitions[from]; !ok {
			m.transitions[from] = make(map[Event]State)
		}
		m.transitions[from][event] = to
		return nil
	}
}

// New creates a machine in the initial state with the declared transitions.
func New(initial State, opts ...Option) (*Machine, error) {
	if initial == "" {
		return nil, ErrInvalidTransition
	}

	m := &Machine{
		initial:     initial,
		current:     initial,
		transitions: make(map[State]map[Event]State),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is New that panics on a misdeclared transition table. Transition
// tables are static; a bad one is a programming error.
func MustNew(initial State, opts ...Option) *Machine {
	m, err := New(initial, opts...)
	if err != nil {
		panic(fmt.Sprintf("statemachine: %v", err))
	}
	return m
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Fire applies an event, moving to the target state. It fails with a
// *NoTransitionError when the event is not legal from the current state,
// leaving the state unchanged.
func (m *Machine) Fire(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	to, ok := m.transitions[m.current][event]
	if !ok {
		return &NoTransitionError{State: m.current, Event: event}
	}
	m.current = to
	return nil
}

// CanFire reports whether the event is legal from the current state.
func (m *Machine) CanFire(event Event) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.transitions[m.current][event]
	return ok
}

// Reset returns the machine to its initial state.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}
