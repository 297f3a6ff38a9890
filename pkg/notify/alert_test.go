package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyd/pkg/authchain"
	"github.com/dmitrymomot/notifyd/pkg/bus"
)

func TestCreateAlert_RequiresPrivilege(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateAlert(context.Background(), app, CreateAlertRequest{Message: "hi"})
	assert.True(t, IsPermissionError(err))
}

func TestCreateAlert_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateAlert(context.Background(), system, CreateAlertRequest{})
	assert.True(t, IsValidationError(err))

	_, err = f.svc.CreateAlert(context.Background(), system, CreateAlertRequest{
		Message: "hi", Type: "fancy",
	})
	assert.True(t, IsValidationError(err))

	_, err = f.svc.CreateAlert(context.Background(), system, CreateAlertRequest{
		Message: "hi",
		Buttons: []Button{{Label: "OK", Type: "maybe"}},
	})
	assert.True(t, IsValidationError(err))

	_, err = f.svc.CreateAlert(context.Background(), system, CreateAlertRequest{
		Message: "hi",
		Buttons: []Button{{Label: "OK", OnClick: "not-a-uri"}},
	})
	assert.True(t, IsValidationError(err))
}

func TestCreateAlert_AuthorizedAndPosted(t *testing.T) {
	f := newFixture(t)

	sub, err := f.bus.Subscribe(context.Background(), bus.ChannelAlert)
	require.NoError(t, err)

	f.auth.On("CheckCallAllowed", mock.Anything, "luna://close.svc/handle", system.ID).
		Return(authchain.Decision{ReturnValue: true, Allowed: true}, nil).Once()
	f.auth.On("CheckCallAllowed", mock.Anything, "luna://button.svc/click", system.ID).
		Return(authchain.Decision{ReturnValue: true, Allowed: true}, nil).Once()

	resp, err := f.svc.CreateAlert(context.Background(), system, CreateAlertRequest{
		Message: "battery low",
		Type:    "battery",
		OnClose: &Action{URI: "luna://close.svc/handle"},
		Buttons: []Button{{Label: "OK", Type: "ok", OnClick: "luna://button.svc/click"}},
	})
	require.NoError(t, err)
	assert.Contains(t, resp.AlertID, system.ID+"-")

	env := recv(t, sub)
	assert.Equal(t, "battery", env.Payload["type"])
	assert.Equal(t, resp.AlertID, env.Payload["alertId"])
	f.auth.AssertExpectations(t)
}

func TestCreateAlert_DenialShortCircuits(t *testing.T) {
	f := newFixture(t)

	sub, err := f.bus.Subscribe(context.Background(), bus.ChannelAlert)
	require.NoError(t, err)

	// URIs are checked as a stack: the button's URI was discovered last, so
	// it is checked first; its denial means the onclose URI is never checked.
	f.auth.On("CheckCallAllowed", mock.Anything, "luna://b.svc/denied", system.ID).
		Return(authchain.Decision{ReturnValue: true, Allowed: false}, nil).Once()

	_, err = f.svc.CreateAlert(context.Background(), system, CreateAlertRequest{
		Message: "hi",
		OnClose: &Action{URI: "luna://a.svc/allowed"},
		Buttons: []Button{{Label: "OK", OnClick: "luna://b.svc/denied"}},
	})
	require.Error(t, err)
	assert.True(t, authchain.IsNotAllowedError(err))
	assert.Contains(t, err.Error(), "luna://b.svc/denied")

	expectSilence(t, sub)
	f.auth.AssertExpectations(t)
	f.auth.AssertNumberOfCalls(t, "CheckCallAllowed", 1)
}

func TestCreateAlert_QueuedWhileSurfaceDetached(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.CreateAlert(context.Background(), system, CreateAlertRequest{Message: "queued"})
	require.NoError(t, err)

	sub, err := f.bus.Subscribe(context.Background(), bus.ChannelAlert)
	require.NoError(t, err)

	env := recv(t, sub)
	assert.Equal(t, resp.AlertID, env.Payload["alertId"])
	assert.Equal(t, "queued", env.Payload["message"])
}

func TestCloseAlertOperations(t *testing.T) {
	f := newFixture(t)

	sub, err := f.bus.Subscribe(context.Background(), bus.ChannelAlert)
	require.NoError(t, err)

	assert.True(t, IsValidationError(f.svc.CloseAlert(context.Background(), system, CloseAlertRequest{})))

	require.NoError(t, f.svc.CloseAlert(context.Background(), system, CloseAlertRequest{AlertID: "x-1"}))
	env := recv(t, sub)
	assert.Equal(t, "close", env.Payload["alertAction"])
	assert.Equal(t, "x-1", env.Payload["alertId"])

	assert.True(t, IsPermissionError(f.svc.CloseAllAlerts(context.Background(), app, CloseAllAlertsRequest{})))
	require.NoError(t, f.svc.CloseAllAlerts(context.Background(), system, CloseAllAlertsRequest{DisplayID: 1}))
	env = recv(t, sub)
	assert.Equal(t, "closeAll", env.Payload["alertAction"])
	assert.Equal(t, 1, env.Payload["displayId"])
}

func TestInputAlert_RequiresAttachedSurface(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateInputAlert(context.Background(), system, CreateInputAlertRequest{Message: "pin?"})
	assert.True(t, IsBlockedError(err))

	sub, err := f.bus.Subscribe(context.Background(), bus.ChannelInput)
	require.NoError(t, err)

	resp, err := f.svc.CreateInputAlert(context.Background(), system, CreateInputAlertRequest{
		Message: "pin?", InputType: "password",
	})
	require.NoError(t, err)

	env := recv(t, sub)
	assert.Equal(t, resp.InputID, env.Payload["inputId"])
	assert.Equal(t, "password", env.Payload["inputType"])

	require.NoError(t, f.svc.CloseInputAlert(context.Background(), system, CloseInputAlertRequest{InputID: resp.InputID}))
	env = recv(t, sub)
	assert.Equal(t, "close", env.Payload["inputAction"])
}
