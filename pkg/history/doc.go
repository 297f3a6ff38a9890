// Package history persists notifications so display clients can replay them
// after reconnecting.
//
// Records keep the wire field names of the stored documents (sourceId,
// toastId, notiId, schedule.expire and friends). Two Storage implementations
// are provided: a document store on the official mongo driver and an
// in-memory store for development and tests. The Scheduler removes expired
// records exactly once per process lifetime, waiting for the first trusted
// time sync before it trusts expiry comparisons.
package history
