package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Guard answers the single question: may this tenant create one more invoice?
type Guard struct {
	plans map[string]Plan
	store Store
}

// NewGuard loads the plan catalog once and creates a Guard.
// The plan map is treated as immutable afterwards; recreate the guard to pick
// up catalog changes.
func NewGuard(ctx context.Context, src Source, store Store) (*Guard, error) {
	if src == nil {
		panic("quota: plan source is required")
	}
	if store == nil {
		panic("quota: subscription store is required")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	if err := validatePlans(plans); err != nil {
		return nil, err
	}

	return &Guard{plans: plans, store: store}, nil
}

// CanGenerateInvoice evaluates the tenant's current subscription and fails
// closed on every doubtful case. An error return means infrastructure
// trouble (database unavailable, unknown plan), not a business denial.
//
// The verdict is advisory on its own. Callers creating invoices must
// re-evaluate it inside the tenant lock, after acquiring it, to close the
// check-then-act race between concurrent operators.
func (g *Guard) CanGenerateInvoice(ctx context.Context, tenantID uuid.UUID) (Decision, error) {
	sub, err := g.store.Current(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrNoSubscription) {
			return Decision{Reason: ReasonNoSubscription}, nil
		}
		return Decision{}, err
	}

	switch sub.Status {
	case StatusCancelled:
		return Decision{Reason: ReasonCancelled}, nil
	case StatusSuspended:
		return Decision{Reason: ReasonSuspended}, nil
	case StatusPaymentPending:
		return Decision{Reason: ReasonPaymentPending}, nil
	case StatusExpired:
		return Decision{Reason: ReasonExpired}, nil
	case StatusTrial:
		if sub.IsTrialExpired() {
			return Decision{Reason: ReasonTrialExpired}, nil
		}
	case StatusActive:
		// fall through to the limit check
	default:
		return Decision{Reason: ReasonNoSubscription}, nil
	}

	plan, ok := g.plans[sub.PlanID]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s", ErrPlanNotFound, sub.PlanID)
	}

	if !plan.Unlimited() && sub.InvoicesUsed >= plan.InvoiceLimit {
		return Decision{Reason: ReasonLimitReached}, nil
	}

	return Decision{CanGenerate: true}, nil
}

// Plan returns the catalog entry for a plan ID.
func (g *Guard) Plan(planID string) (Plan, bool) {
	p, ok := g.plans[planID]
	return p, ok
}
