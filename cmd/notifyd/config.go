package main

import (
	"time"

	"github.com/dmitrymomot/notifyd/pkg/httpserver"
)

type appConfig struct {
	HTTP httpserver.Config

	Environment string `env:"ENVIRONMENT" envDefault:"production"`

	// MongoURL selects the history backend: set it to use the document
	// store, leave it empty for the in-memory store.
	MongoURL string `env:"MONGODB_URL"`

	// AuthzURL is the endpoint of the authorization service consulted for
	// alert action URIs. Empty means every URI is allowed.
	AuthzURL string `env:"AUTHZ_URL"`

	// Retention is the default lifetime of notifications saved without a
	// schedule.
	Retention time.Duration `env:"NOTIFY_RETENTION" envDefault:"720h"`

	// BusBuffer is the per-subscriber envelope buffer on the presentation
	// bus.
	BusBuffer int `env:"NOTIFY_BUS_BUFFER" envDefault:"16"`

	// Seed values for the settings cache in deployments without a settings
	// service to pull from.
	SystemPin        string `env:"NOTIFY_SYSTEM_PIN"`
	SystemPinHash    string `env:"NOTIFY_SYSTEM_PIN_HASH"`
	Country          string `env:"NOTIFY_COUNTRY"`
	StoreMode        string `env:"NOTIFY_STORE_MODE"`
	EnableToastPopup string `env:"NOTIFY_ENABLE_TOAST_POPUP" envDefault:"on"`
}
