package quota

import (
	"time"

	"github.com/google/uuid"
)

// Subscription ties a tenant to a plan and tracks invoice usage within the
// period. Only the most recently created non-cancelled subscription counts as
// current for a tenant.
type Subscription struct {
	ID                  uuid.UUID
	TenantID            uuid.UUID
	PlanID              string
	Status              Status
	InvoicesUsed        int64
	TrialEndsAt         *time.Time
	CurrentPeriodEndsAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	CancelledAt         *time.Time
}

// IsTrialExpired reports whether a trial subscription has run out.
func (s *Subscription) IsTrialExpired() bool {
	if s.Status != StatusTrial || s.TrialEndsAt == nil {
		return false
	}
	return time.Now().UTC().After(*s.TrialEndsAt)
}

// Remaining returns how many invoices the plan still allows, or Unlimited.
func (s *Subscription) Remaining(plan Plan) int64 {
	if plan.Unlimited() {
		return Unlimited
	}
	if r := plan.InvoiceLimit - s.InvoicesUsed; r > 0 {
		return r
	}
	return 0
}
