package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystem_Refresh(t *testing.T) {
	svc := NewMemory(map[string]string{
		KeySystemPin:        "1234",
		KeyCountry:          "fra",
		KeyStoreMode:        "store",
		KeyEnableToastPopup: "off",
	})

	sys := NewSystem()
	require.NoError(t, sys.Refresh(context.Background(), svc))

	assert.Equal(t, "1234", sys.SystemPin())
	assert.Equal(t, "FRA", sys.Country())
	assert.True(t, sys.SilencesToast())
}

func TestSystem_SilencesToast(t *testing.T) {
	sys := NewSystem()
	assert.False(t, sys.SilencesToast())

	sys.SetStoreMode("store", "on")
	assert.False(t, sys.SilencesToast())

	sys.SetStoreMode("store", "off")
	assert.True(t, sys.SilencesToast())

	sys.SetStoreMode("home", "off")
	assert.False(t, sys.SilencesToast())
}

func TestMemory_SetGet(t *testing.T) {
	svc := NewMemory(nil)
	require.NoError(t, svc.Set(context.Background(), map[string]string{
		KeySystemPin:      "9999",
		KeyInitialPinCode: "true",
	}))

	got, err := svc.Get(context.Background(), KeySystemPin, KeyInitialPinCode, "missing")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		KeySystemPin:      "9999",
		KeyInitialPinCode: "true",
	}, got)
}
