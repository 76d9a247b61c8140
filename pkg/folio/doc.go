// Package folio allocates sequential invoice numbers (folios) per tenant and
// series.
//
// A folio, once handed to a caller, is never handed out again for the same
// (tenant, series) pair. The counter row advances in a single atomic upsert
// statement, so database-level uniqueness holds even without the distributed
// lock. The lock (pkg/lock) is still required around the full invoicing
// sequence: it coordinates the allocation with the quota re-check and the
// external stamping call as one logical unit, which no single SQL statement
// can do.
//
// The first allocation for a (tenant, series) pair creates the counter row
// lazily and returns Seed (1). Gaps in the sequence are expected: a folio
// consumed by a failed external call is logged and skipped, never reused.
//
// The optional batch mode reserves N numbers in one statement and serves
// subsequent calls from an in-process cache scoped to tenant+series. Every
// number served was reserved in the database first, so a process crash only
// wastes the remainder of the batch (more gaps, never duplicates).
package folio
