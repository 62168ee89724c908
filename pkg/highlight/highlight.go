// Package highlight merges backend highlight fragments into document fields.
//
// A fragment is a copy of (part of) a field value in which matched spans are
// wrapped in emphasis markers, e.g. "The <em>quick</em> fox". Merging finds
// the unmarked form of every fragment in the raw field value and replaces it
// with the marked form.
//
// Matches are computed against the original value as intervals. Overlapping
// matches are resolved first-fragment-wins. Spans that are already marked in
// the input, and copies of a marked fragment already present in it, are never
// matched again, so merging its own output with the same fragments is a no-op.
package highlight
