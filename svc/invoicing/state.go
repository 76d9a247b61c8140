package invoicing

import "github.com/facturio/facturio/pkg/statemachine"

// Operation lifecycle states. The machine makes step ordering explicit and
// refuses out-of-order transitions; the current state is attached to every
// failure log so an operator can see exactly how far an operation got.
const (
	stateIdle         statemachine.State = "idle"
	stateLockPending  statemachine.State = "lock_pending"
	stateQuotaCheck   statemachine.State = "quota_check"
	stateFolioAlloc   statemachine.State = "folio_allocated"
	stateExternalCall statemachine.State = "external_call_pending"
	statePersisting   statemachine.State = "persisting"
	stateDone         statemachine.State = "done"
	stateFailed       statemachine.State = "failed"
)

const (
	eventAdvance statemachine.Event = "advance"
	eventFail    statemachine.Event = "fail"
)

// newOperationMachine builds the per-run lifecycle machine. Every working
// state can fail; only the happy path advances.
func newOperationMachine() *statemachine.Machine {
	return statemachine.MustNew(stateIdle,
		statemachine.WithTransition(stateIdle, stateLockPending, eventAdvance),
		statemachine.WithTransition(stateLockPending, stateQuotaCheck, eventAdvance),
		statemachine.WithTransition(stateQuotaCheck, stateFolioAlloc, eventAdvance),
		statemachine.WithTransition(stateFolioAlloc, stateExternalCall, eventAdvance),
		statemachine.WithTransition(stateExternalCall, statePersisting, eventAdvance),
		statemachine.WithTransition(statePersisting, stateDone, eventAdvance),

		statemachine.WithTransition(stateLockPending, stateFailed, eventFail),
		statemachine.WithTransition(stateQuotaCheck, stateFailed, eventFail),
		statemachine.WithTransition(stateFolioAlloc, stateFailed, eventFail),
		statemachine.WithTransition(stateExternalCall, stateFailed, eventFail),
		statemachine.WithTransition(statePersisting, stateFailed, eventFail),
	)
}
