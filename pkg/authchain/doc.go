// Package authchain verifies the action URIs embedded in an alert against an
// external authorization service before the alert is shown.
//
// An alert may carry several clickable actions (an on-close action plus one
// per button). Every URI discovered while validating the request is pushed
// onto a list in order of appearance; verification then pops from the back,
// so the most recently discovered URI is checked first. Checks are strictly
// sequential - a new RPC is only issued after the previous reply arrived -
// and strictly short-circuiting: the first rejection or transport failure
// aborts the chain and becomes the caller's single failure reply. Both
// properties are required invariants, not incidental.
package authchain
