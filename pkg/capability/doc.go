// Package capability implements the readiness gate that decides whether a
// notification surface (toast, alert, input, pin prompt) may receive
// deliveries right now.
//
// Each capability carries an independent set of block flags: FlagSystem for
// platform states that suppress all notifications, FlagExternal for blocks
// requested by other services (with a free-text reason), and FlagUI for "no
// presentation surface is subscribed yet". A capability is available for a
// check mask only when every flag in the mask is clear.
//
// Subscribers registered with Gate.Subscribe observe availability flips of the
// full mask. The gate emits exactly one callback per boolean flip; clearing
// one of several simultaneous block reasons emits nothing.
//
// Toast additionally carries a silence flag sourced from store-mode
// configuration. Silence is a content-level opt-out, not a readiness block:
// silenced toasts are accepted and acknowledged but never delivered or queued.
package capability
