// Package systime models the external system-time source: a synced flag that
// flips when the platform confirms the wall clock is trustworthy, plus boot
// notifications. Expiry purging keys off the first synced=true flip.
package systime
