// Package schematic builds the schema relationship diagram for a set of
// collections.
//
// # Pipeline
//
// The diagram is derived in three synchronous steps, all recomputed from
// scratch whenever the collection set changes:
//
//  1. [ExtractReferences] turns reference-typed fields into labeled edges.
//  2. Leveling places every collection at the depth of the references below
//     it (see [transform.AssignLevels]); cycles are tolerated.
//  3. [ComputeLayout] lays each level out as a row on a fixed grid.
//
// [Compute] runs all three. [Diagram] wraps the result together with a
// [viewport.Viewport] and an [interact.Machine] for interactive use.
//
// # Reference Matching
//
// A reference value such as "projects/p1/collections/users" is reduced to the
// fragment after the first "collections/". The target is the first collection,
// in input order, whose resource name contains the fragment or whose display
// name equals it. Matches against the referencing collection itself are
// dropped, as are references that match nothing. Matching is best-effort and
// is not a foreign-key check.
//
// # Layout Grid
//
// With the default [Options] every card is 300x200 world units, cards in a row
// are 370 apart, and rows are 350 apart starting at (100, 100). Within a row,
// more connected collections come first.
package schematic
