// Package runlog persists pipeline run history in SQLite: one row per
// execution plus its stage transitions, powering `reelforge runs` and
// batch-mode bookkeeping.
package runlog
