// Package outline flattens a family's relationship graph into an ordered list
// of display rows.
//
// # Overview
//
// [Build] runs the full reconstruction chain from the transform package over a
// working set of members and walks the resulting forest depth-first. Each row
// stands for a couple, a multi-spouse group or an individual and carries:
//
//   - Column: the generation (indentation level) the row was reached at
//   - Value: a color-tagged, human-readable display string
//   - MemberIDs: the identities shown on the row, for click-through lookups
//
// Exporters and renderers consume only this row contract.
//
// # Classification
//
// When the walker reaches an unplaced member it emits exactly one row, trying
// in order:
//
//  1. couple with shared children: recurse into the shared children only
//  2. couple without shared children: recurse into both partners' children
//  3. multi-spouse group: the member with every unplaced spouse
//  4. individual: the member alone, noting already placed spouses
//
// Children are visited by generation, then name. Members already placed are
// never emitted twice; the walker's visited set is global to one build,
// unlike the path-local set used for generation assignment.
//
// # Display Strings
//
// A member renders as "●#self ○#parent1 ○#parent2 Name ♂". Couples join two
// members with " ⚭ ", groups with " & ", and every row ends with a generation
// label such as "[Generation 2]". [ParseRow] and [ParseDisplay] recover the
// color tokens and clean names.
//
// # Leftovers
//
// Members the walk never reaches (disconnected, or beyond the depth cap) are
// listed after a "=== Additional Family Members ===" header, so no member of
// the working set is ever dropped.
package outline
