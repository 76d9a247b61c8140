// Package tenant holds the minimal tenant model the invoicing core needs:
// identity, fiscal data (RFC), and an active flag checked before any
// invoicing work starts.
//
// The chat gateway resolves the tenant once per conversation and carries it
// in the request context; everything downstream reads it with FromContext or
// receives the ID explicitly.
package tenant
