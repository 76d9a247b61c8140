// Package invoicing composes the locking, quota, folio, and outbound queue
// layers into the one operation the product exists for: generating an
// invoice safely under concurrency.
//
// The operation holds the tenant's invoice lock across quota re-check, folio
// allocation, the provider call, and persistence, so two operators of the
// same business can never double-spend a quota slot or a folio. Failures
// after folio allocation abandon the folio (a documented numbering gap)
// rather than risk reuse; failures after provider success are logged loudly
// with every identifier needed for manual reconciliation.
//
// Errors returned to callers are classified so the chat layer can phrase
// them for a non-technical user: a quota denial carries its reason, a busy
// lock or a full queue means "try again in a moment", and a provider
// rejection explains what the provider refused.
package invoicing
