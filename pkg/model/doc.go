// Package model is the structured document the engine repairs.
//
// A Document is an arena of nodes addressed by NodeID. Mutations happen
// inside change blocks through a Writer; when a block ends, registered
// post-fixers run until none of them reports a change. The driver bounds
// the number of cycles and detects cycles that revisit an earlier state.
package model
