// Package store persists conformance run history in SQLite: one row
// per evaluation pass, one row per check, so regressions across vendor
// drops can be diffed without rerunning old binaries.
package store
