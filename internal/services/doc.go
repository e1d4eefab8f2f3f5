// Package services implements the business logic layer of the dashboard.
// It sits between the transport handlers and the selector package so that
// HTTP and websocket clients share one set of view rules.
//
// # Available Services
//
//	- DashboardService: groups, table metadata and the series, scatter and
//	  histogram views, all derived from the cached canonical table
//	- HealthService: liveness, readiness and version information
//
// # Date Windows
//
// Views take a Window whose missing bounds default to the table's first and
// last timestamps. ParseWindow reads a bare date as the start of that day for
// the lower bound and the end of that day for the upper bound.
//
// # Error Handling
//
// Services return the selector package's sentinel and typed errors
// unchanged (wrapped with %w where context helps); the transport layer maps
// them to RFC 7807 problems.
package services
