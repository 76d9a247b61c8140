// Package redis owns Redis connectivity for the module.
//
// Redis is the shared low-latency store behind the distributed lock service
// (pkg/lock). This package only establishes and health-checks the connection;
// lock semantics live with the lock package.
//
// When no Redis endpoint is configured the lock service falls back to an
// in-process implementation that is unsafe across multiple worker processes;
// see pkg/lock for the guard rails around that mode.
package redis
