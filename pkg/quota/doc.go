// Package quota decides whether a tenant's subscription allows creating one
// more invoice.
//
// Each tenant has at most one current subscription: the most recently created
// one that is not cancelled. A subscription references a plan whose
// InvoiceLimit caps invoices per billing period (Unlimited disables the cap).
//
// Guard.CanGenerateInvoice fails closed and returns a distinct human-readable
// reason per denial case (no subscription, trial expired, limit reached,
// suspended, payment pending, cancelled, expired) so the chat layer can show
// an accurate message instead of a generic failure.
//
// On its own the check is advisory: between "check" and "increment" another
// operator of the same tenant may slip in. The invoicing service re-runs the
// guard inside the tenant lock (pkg/lock) to close that race, and the usage
// counter increments in the same database transaction that persists the
// invoice row.
package quota
