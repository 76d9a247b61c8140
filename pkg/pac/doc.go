// Package pac defines the boundary to the external invoicing provider
// (Proveedor Autorizado de Certificación).
//
// The package owns the request and result types exchanged with the provider
// and the error classification the retry machinery depends on, but not the
// provider implementation itself: concrete adapters (HTTP, SOAP, sandbox)
// implement Client elsewhere and are injected into the invoicing service.
//
// Errors returned by a Client fall into two classes. Transient failures
// (timeouts, connection resets, provider unavailability) are safe to retry
// and are recognized by IsTransient. Terminal rejections carry a provider
// code and message in a *RejectionError and must never be retried, because
// the provider already evaluated the request and said no.
package pac
