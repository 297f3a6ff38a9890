// Package notify is the notification manager façade.
//
// The Service validates inbound requests, checks the readiness gate, runs
// alert action URIs through the authorization chain, and either posts the
// resulting payload to the presentation bus or parks it in a pending queue
// until the matching display surface subscribes. Readiness is driven by bus
// presence: the first subscriber on a surface's channel clears its UI block
// and drains the queued payloads in arrival order; the last subscriber
// leaving restores the block.
//
// Readiness blocks are not errors. A toast created before the toast surface
// exists is accepted, acknowledged with its generated id, and delivered
// later; only administrative blocks (system or external disable) reject a
// request outright.
package notify
