// Package lift implements the LIFT (Lexicon Interchange FormaT) document
// conversion engine: a bidirectional mapping between the in-memory entry
// model in core/model and standards-compliant LIFT XML text.
//
// The engine tolerates the two namespace conventions found in real corpora
// (hand-authored bare elements and namespace-prefixed FieldWorks exports),
// preserves unlimited-depth subsense nesting, and guarantees that
// parse -> edit -> serialize round-trips never silently drop a field.
// Output is always emitted in namespaced form regardless of the source
// document's convention.
//
// Parsing and serialization are pure, stateless transformations with no I/O.
// The only per-call state is the namespace resolver's detected mode, scoped
// to a single invocation, so concurrent parses of independent documents need
// no synchronization.
package lift
