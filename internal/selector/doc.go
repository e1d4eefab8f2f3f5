// Package selector derives dashboard views from the canonical pump table.
//
// The table is loaded once per path through Cache and then shared
// read-only. Callers pick a pump group (four groups of ten parameters), an
// inclusive date range and, for comparison views, an (x, y) column pair.
// Every derivation returns a fresh table; nothing here mutates the cache.
//
// Session wraps these functions with per-viewer state for long-lived
// connections.
package selector
