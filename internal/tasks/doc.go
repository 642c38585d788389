// Package tasks runs the multilink pipeline for one inbound message.
//
// # Pipeline
//
// [Engine] implements [Pipeline] in four steps:
//
//  1. Recognize : find the first link and the service that owns it ([services.Registry.Recognize])
//     - No supported link yields the fixed invalid-input reply; nothing is fetched
//  2. Extract : read title and performer through the origin service, bounded by the extract timeout
//     - A link the service cannot parse yields the fixed error reply and no searches
//  3. Search : query every other registered service concurrently, each under its own timeout
//     - Results keep service-table order; the origin never appears
//     - A failed, panicking or overdue search becomes a result with an empty URL
//  4. Format : render the reply with [formatter.Formatter]
//
// # Progress Reporting
//
// [Engine.Resolve] accepts an optional channel of [ProgressUpdate] values.
// Updates use select with default to prevent blocking.
package tasks
