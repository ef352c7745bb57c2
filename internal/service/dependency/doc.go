// Package dependency copies the resolved runtime artifacts into the bundle's
// Java directory using the Maven repository layout
// (repo/<group path>/<artifact>/<base version>/<artifact>-<version>[-<classifier>].<ext>).
//
// The primary project artifact always comes first. Remaining dependencies keep
// the order supplied by the build host unless sorting by coordinate is
// requested.
package dependency
