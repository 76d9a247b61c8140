// Package health exposes the operational endpoints of an invoicing worker:
// readiness of its dependencies and saturation of the outbound provider
// queue. It is not a business API; the chat gateway never calls it.
//
//	GET /healthz  — 200 READY when all dependency checks pass, 500 otherwise
//	GET /queuez   — outbound queue metrics snapshot as JSON
package health
