// Package core provides the taxonomy service shared by the HTTP server and
// the command line tool.
//
// This package holds all load and query logic independent of any transport.
// It can be used by web handlers, the CLI, or tests without modification.
//
// # Loading
//
// A [Service] reads taxonomy documents from a [source.Source] and builds
// them into a [taxonomy.Registry]:
//
//  1. [Service.LoadAll] lists the source and builds every document, several
//     at a time (see [Options.Concurrency])
//  2. Each document is fetched, validated, decoded and built independently;
//     one bad document never prevents the others from loading
//  3. The outcome of the run is returned as a [LoadReport] tagged with a
//     load id that also appears in every log line of the run
//
// Loaded taxonomies are never replaced. Loading an entry point a second
// time is reported as already loaded and the original stays in service
// until the process restarts. [Service.Watch] feeds documents reported by
// a file watcher through the same path.
//
// # Queries
//
// [Service.LookupConcept] finds a concept by QName, local name or label and
// has three outcomes: a concept, [taxonomy.ErrConceptNotFound], or an
// [*taxonomy.AmbiguousError] listing every candidate. The view types
// ([ConceptView], [DimensionsView], [GroupView]) are the response shapes
// of both the HTTP API and the CLI.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError]
// and to response codes using [HTTPStatus]. Each error category has a
// unique code for support reference:
//
//   - TAX001-TAX006: Taxonomy errors (unknown, ambiguous, not found, malformed)
//   - SRC001: Document errors
//   - QN001: Malformed or unbound QNames
//   - REQ001-REQ003: Request errors (cancelled, timeout, bad parameters)
//   - RATE001: Rate limiting
package core
