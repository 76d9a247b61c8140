// Package pg owns PostgreSQL connectivity for the module: pgxpool connection
// setup with retry, goose schema migrations, health checking, and error
// classification helpers.
//
// PostgreSQL is one of the two coordination points every invariant in this
// module relies on (the other is Redis, see pkg/lock). The folio counter and
// the subscription usage counter are both single-row atomic mutations; the
// unique index on (tenant_id, series, folio_number) is the last-resort safety
// net if the distributed lock is ever bypassed. IsDuplicateKeyError exists so
// callers can recognize that net firing.
package pg
