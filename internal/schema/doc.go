// Package schema implements idempotent, dependency-ordered initialization of
// database schema objects.
//
// A Node describes one schema object: a check query, a CheckFunc that turns
// the query's rows into the corrective statements still needed, and an
// ordered list of prerequisite nodes. Converge brings a node into the desired
// state:
//
//  1. Run the check query and apply the CheckFunc.
//  2. No statements: the object is satisfied. Prerequisites are not visited.
//  3. Otherwise converge every prerequisite in declared order, then run the
//     statements in order and re-check exactly once. A non-empty re-check is
//     a verification failure.
//
// Execution is strictly sequential and stops at the first error. Statements
// already applied are not rolled back.
//
// # Dry Run
//
// With dryRun set no corrective statement reaches the database. Intended
// statements are logged at info level and the result is StateOk, the same
// value returned for an already satisfied object. Callers tell the two apart
// by the flag they passed.
//
// # Errors
//
// Every failure is a *StateError naming exactly one node and a phase
// (PhaseCheck or PhaseMeet). Errors from prerequisites are returned as-is;
// they already name the prerequisite that failed.
package schema
