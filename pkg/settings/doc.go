// Package settings defines the interface to the external settings service
// and a small cache of the system settings the notification manager reads on
// hot paths: the system PIN used by the pincode prompt, the country code
// feeding the PIN denylist, and the store-mode flags that silence toasts.
package settings
