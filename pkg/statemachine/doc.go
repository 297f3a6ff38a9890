// Package statemachine provides the small finite-state-machine core that
// drives multi-step prompt workflows in notifyd.
//
// Two minimal interfaces - State and Event - let callers model their own
// states and events while the machine handles transition lookup, guard
// evaluation, and side-effect Actions. Several transitions may share a
// (from, event) pair; guards select the first that applies, which is how the
// pincode prompt branches on "submitted code matches" versus "retry".
//
// Rich error types with predicates (IsNoTransitionAvailableError,
// IsTransitionRejectedError) let callers tell "transition not defined" apart
// from "guard rejected".
package statemachine
