package settings

import (
	"context"
	"strings"
	"sync"
)

// Keys consumed from the external settings service. The dotted form flattens
// the service's category/key pairs.
const (
	KeySystemPin        = "systemPin"
	KeySystemPinHash    = "systemPinHash"
	KeyInitialPinCode   = "lock.initialPinCode"
	KeyCountry          = "country"
	KeyStoreMode        = "storeMode"
	KeyEnableToastPopup = "enableToastPopup"
)

// Service is the external settings lookup/write collaborator.
type Service interface {
	// Get returns the values for the requested keys; absent keys are omitted.
	Get(ctx context.Context, keys ...string) (map[string]string, error)

	// Set writes the given values.
	Set(ctx context.Context, values map[string]string) error
}

// System caches the subset of system settings the notification manager
// consults on hot paths: the system PIN (plaintext or hash), the country
// code, and the store-mode flags that silence toasts.
type System struct {
	mu               sync.RWMutex
	pin              string
	pinHash          string
	country          string
	storeMode        string
	enableToastPopup string
}

// NewSystem creates an empty settings cache.
func NewSystem() *System {
	return &System{}
}

// Refresh re-reads the cached keys from the settings service.
func (s *System) Refresh(ctx context.Context, svc Service) error {
	values, err := svc.Get(ctx,
		KeySystemPin, KeySystemPinHash, KeyCountry, KeyStoreMode, KeyEnableToastPopup)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := values[KeySystemPin]; ok {
		s.pin = v
	}
	if v, ok := values[KeySystemPinHash]; ok {
		s.pinHash = v
	}
	if v, ok := values[KeyCountry]; ok {
		s.country = strings.ToUpper(v)
	}
	if v, ok := values[KeyStoreMode]; ok {
		s.storeMode = v
	}
	if v, ok := values[KeyEnableToastPopup]; ok {
		s.enableToastPopup = v
	}
	return nil
}

// SystemPin returns the cached plaintext system PIN, which may be empty when
// only the hash is known.
func (s *System) SystemPin() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pin
}

// SystemPinHash returns the cached hex SHA-256 hash of the system PIN.
func (s *System) SystemPinHash() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pinHash
}

// SetSystemPin updates the cached plaintext PIN after a successful commit.
func (s *System) SetSystemPin(pin string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pin = pin
}

// Country returns the cached ISO country code.
func (s *System) Country() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.country
}

// SetCountry updates the cached country code.
func (s *System) SetCountry(country string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.country = strings.ToUpper(country)
}

// SetStoreMode updates the cached store-mode flags.
func (s *System) SetStoreMode(mode, enableToastPopup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storeMode = mode
	s.enableToastPopup = enableToastPopup
}

// SilencesToast reports whether the store-mode configuration silences toast
// delivery: showroom devices with toast popups switched off accept toasts but
// never display them.
func (s *System) SilencesToast() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.storeMode == "store" && s.enableToastPopup == "off"
}
