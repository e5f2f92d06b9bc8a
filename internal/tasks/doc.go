// Package tasks runs multi-request catalog operations with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines two operations:
//
//  1. [Engine.Diff] : Compare two track lists
//     - Resolves both inputs (album or playlist links, track links, or keywords)
//     - Matches tracks via ISRC (preferred) or normalized title/artist
//     - Reports matched count, missing tracks, and extra tracks
//
//  2. [Engine.BulkExport] : Export many inputs to disk
//     - Resolves inputs through a rate limited producer
//     - Writes json, csv, markdown or txt files from a worker pool
//     - Optionally downloads cover images next to markdown exports
//     - Writes an export_manifest.json summarizing every input
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [CatalogEngine] implements [Engine] on top of a [services.Searcher].
package tasks
