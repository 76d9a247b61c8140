package quota

import "errors"

var (
	// ErrNoSubscription is returned by Store.Current when the tenant has no
	// non-cancelled subscription.
	ErrNoSubscription = errors.New("quota: no subscription found")

	// ErrNoActiveSubscription is returned by IncrementUsage when no active or
	// trial subscription exists. The guard should have rejected the call
	// earlier, so hitting this mid-operation is a consistency violation, not
	// a user error.
	ErrNoActiveSubscription = errors.New("quota: no active or trial subscription to increment")

	// ErrPlanNotFound is returned when a subscription references a plan the
	// configured source does not know. Treated as misconfiguration; the guard
	// fails closed.
	ErrPlanNotFound = errors.New("quota: subscription plan not found")

	// ErrFailedToLoadPlans is returned when a plan source cannot be read.
	ErrFailedToLoadPlans = errors.New("quota: failed to load plans")

	// ErrInvalidPlanConfiguration is returned for internally inconsistent
	// plan definitions.
	ErrInvalidPlanConfiguration = errors.New("quota: invalid plan configuration")
)
