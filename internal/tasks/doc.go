// Package tasks turns route parameters into fully loaded correction pages with real-time progress reporting.
//
// # Core Operations
//
// [CorrectionEngine] implements two interfaces:
//
//  1. [Loader.Load] : Correction page
//     - Validates the route parameters before any request
//     - Fetches the correction detail first; nothing else is requested if it fails
//     - Fetches the baseline diff (or the comparison), revisions and entity history concurrently
//     - Records each failure on the page instead of returning it
//     - Derives the compare candidates from the history
//
//  2. [BulkExporter.ExportHistory] : Entity history export
//     - Compares each correction with the one before it in the history
//     - Rate-limited page loads on a worker pool
//     - One file per correction plus an export manifest
//
// [CorrectionEngine.Moderate] approves or rejects a correction and invalidates the cached queries it touched.
//
// # Sessions
//
// A [Session] holds the current selection (correction and compare target). Changing either reloads
// through the cache, which answers unchanged parts without a request. Results of superseded loads
// never reach observers.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
