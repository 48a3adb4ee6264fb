// Package taxonomy is an in-memory, read-only model of an XBRL taxonomy
// built from the flattened JSON the extraction step produces.
//
// # Construction
//
// [Parse] validates and decodes a taxonomy document; [New] turns it into a
// fully indexed [Taxonomy] or fails. Construction is all-or-nothing: a
// taxonomy with malformed concepts, dangling references, mixed dimension
// containers or conflicting role definitions is rejected outright.
//
// Concepts are built in two phases. Every concept is first created from its
// raw attributes; once the whole concept table exists each concept is
// reified, which resolves references to other concepts (extensible
// enumeration domains) and binds the concept to its taxonomy.
//
// # Queries
//
// A built Taxonomy answers the lookups a fact-mapping layer needs:
//
//   - concepts by QName, bare local name or (tolerantly matched) label
//   - labels with a language fallback chain
//   - which dimensions apply to a primary item and which members they allow
//   - presentation networks, classified as list, table, hybrid or empty
//
// Lookups by a human-facing key never guess: more than one candidate is
// reported as an [*AmbiguousError] listing every candidate.
//
// # Registry
//
// Taxonomies are few, large and reused by every conversion, so they are
// kept for the life of the process in a [Registry] keyed by entry point.
// Entries are append-only and immutable, and reads take no locks.
package taxonomy
