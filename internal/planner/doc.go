// Package planner decides what install and uninstall will do before any file
// is touched.
//
// The patcher computes the effect of every patch as a FileChange. The planner
// turns those into an ordered Plan of operations and flags conflicts: missing
// targets on install, and files edited since install whose edits an
// uninstall would discard.
//
// Key responsibilities:
//   - Generate install and uninstall plans in patch order
//   - Detect drift against the checksums recorded at install
//   - Give dry runs and the diff command something to render
package planner
