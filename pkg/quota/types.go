package quota

// Unlimited disables the invoice cap for a plan (-1 for SQL compatibility).
const Unlimited int64 = -1

// Status represents the lifecycle state of a subscription.
type Status string

const (
	StatusTrial          Status = "trial"
	StatusActive         Status = "active"
	StatusPaymentPending Status = "payment_pending"
	StatusSuspended      Status = "suspended"
	StatusExpired        Status = "expired"
	StatusCancelled      Status = "cancelled"
)

// Billable reports whether invoices may be generated in this status at all.
// Trial is billable until the trial end timestamp; the guard checks that
// separately.
func (s Status) Billable() bool {
	return s == StatusActive || s == StatusTrial
}

// Decision is the guard's verdict for one invoice-creation attempt.
// Reason is user-facing and distinct per denial case, so operators can tell a
// business limit from an account problem.
type Decision struct {
	CanGenerate bool
	Reason      string
}

// Denial reasons. Capacity problems (queue full) deliberately do not appear
// here: those come from pkg/pacqueue and must stay distinguishable.
const (
	ReasonNoSubscription = "no active subscription for this business"
	ReasonTrialExpired   = "trial period has expired, choose a plan to continue invoicing"
	ReasonLimitReached   = "invoice limit of the current plan has been reached"
	ReasonSuspended      = "subscription is suspended"
	ReasonPaymentPending = "subscription payment is pending"
	ReasonCancelled      = "subscription was cancelled"
	ReasonExpired        = "subscription has expired"
)
