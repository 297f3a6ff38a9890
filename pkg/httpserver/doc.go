// Package httpserver runs the daemon's HTTP listener with graceful,
// signal-aware shutdown. Configuration comes from env-tagged Config fields.
package httpserver
