package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrymomot/notifyd/pkg/authchain"
)

// httpAuthorizer asks an external authorization service whether a principal
// may call an action URI.
type httpAuthorizer struct {
	endpoint string
	client   *http.Client
}

func newHTTPAuthorizer(endpoint string) *httpAuthorizer {
	return &httpAuthorizer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *httpAuthorizer) CheckCallAllowed(ctx context.Context, uri, requester string) (authchain.Decision, error) {
	body, err := json.Marshal(map[string]string{
		"uri":       uri,
		"requester": requester,
	})
	if err != nil {
		return authchain.Decision{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return authchain.Decision{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(req)
	if err != nil {
		return authchain.Decision{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return authchain.Decision{}, fmt.Errorf("authorization service replied %d", res.StatusCode)
	}

	var decision authchain.Decision
	if err := json.NewDecoder(res.Body).Decode(&decision); err != nil {
		return authchain.Decision{}, err
	}
	return decision, nil
}

// allowAllAuthorizer approves every URI. Used when no authorization service
// is configured.
type allowAllAuthorizer struct{}

func (allowAllAuthorizer) CheckCallAllowed(ctx context.Context, uri, requester string) (authchain.Decision, error) {
	return authchain.Decision{ReturnValue: true, Allowed: true}, nil
}
