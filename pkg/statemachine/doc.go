// Package statemachine is a small finite-state-machine used to enforce the
// legal progression of multi-step operations.
//
// States and events are plain strings. Transitions are declared up front via
// functional options; Fire refuses any event that is not legal from the
// current state, which turns sequencing bugs into loud errors instead of
// silently corrupted flows. The machine is safe for concurrent use, though a
// typical operation owns one machine per run.
package statemachine
