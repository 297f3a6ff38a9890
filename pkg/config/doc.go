// Package config loads notifyd configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: values
// come from the process environment with an optional .env fallback, and are
// parsed into plain structs via `env` field tags. MustLoad panics on failure
// for configuration the service cannot start without.
package config
