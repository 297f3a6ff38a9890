// Package logger provides a thin factory around log/slog plus attribute
// helpers shared by every notifyd component.
//
// New builds a logger from functional options; WithDevelopment and
// WithProduction bundle sane per-environment defaults. The attr helpers
// (Error, SourceID, Capability, ...) keep attribute keys consistent across
// packages so log aggregation queries do not have to chase spelling variants.
package logger
