// Package bus fans display payloads out to subscribed display surfaces.
//
// Each display surface (toast area, alert overlay, input dialog, pincode
// prompt, notification center) subscribes to its own channel. Posting never
// blocks: envelopes beyond a subscriber's buffer are spilled and handed over
// in order as the surface catches up, so a replayed backlog survives the
// handoff. The bus reports presence transitions, which lets callers treat
// "first subscriber attached" as the surface becoming ready and "last
// subscriber detached" as it going away.
package bus
