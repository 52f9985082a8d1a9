// Package table provides the labeled two-dimensional table used by every
// reshaping stage.
//
// A Table has a row Index and a column Index. Each index is a list of
// composite keys (Key) whose components (Label) are integers, instants or
// strings, one per named level. Cells are float64 with NaN as the missing
// value marker; a Kind records whether the table still holds whole numbers
// only.
//
// # Primitives
//
// Reshapes are expressed as a small set of named operations that each return
// a new table and never touch their receiver:
//
//   - SortRows, SortColumns, SortAxes: canonical ascending order
//   - Stack: move a column level onto the row axis
//   - Unstack: move a row level onto the column axis
//   - Shift, ShiftMasked: positional shift along rows with NaN boundaries
//   - AppendRowLevel, InsertRowLevel: tag rows with an extra key level
//   - Concat: row-wise concatenation aligned on column keys
//   - Reindex: restrict rows to a reference key set
//
// Key ordering and duplicate detection are backed by an ordered B-tree.
package table
