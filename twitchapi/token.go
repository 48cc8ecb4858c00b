// Package twitchapi contains minimal helpers to interact with Twitch Helix APIs
// for the user, stream, and game lookups behind one polling cycle, using an
// app access token.
package twitchapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const defaultTokenURL = "https://id.twitch.tv/oauth2/token"

// TokenSource fetches and caches a Twitch app access (client credentials)
// token via x/oauth2, refreshing it transparently before expiry.
type TokenSource struct {
	ClientID     string
	ClientSecret string
	TokenURL     string       // defaults to the Twitch id endpoint
	HTTPClient   *http.Client // defaults to http.DefaultClient

	mu  sync.Mutex
	src oauth2.TokenSource
}

// Get returns a valid (fresh or cached) app access token.
func (ts *TokenSource) Get(ctx context.Context) (string, error) {
	if ts.ClientID == "" || ts.ClientSecret == "" {
		return "", errors.New("missing client id/secret for twitch app token")
	}
	tok, err := ts.source().Token()
	if err != nil {
		return "", fmt.Errorf("twitch token request failed: %w", err)
	}
	return tok.AccessToken, nil
}

// Invalidate drops the cached token so the next Get fetches a fresh one.
// Used when Helix rejects a token that has not reached its expiry yet.
func (ts *TokenSource) Invalidate() {
	ts.mu.Lock()
	ts.src = nil
	ts.mu.Unlock()
}

func (ts *TokenSource) source() oauth2.TokenSource {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.src == nil {
		tokenURL := ts.TokenURL
		if tokenURL == "" {
			tokenURL = defaultTokenURL
		}
		cfg := &clientcredentials.Config{
			ClientID:     ts.ClientID,
			ClientSecret: ts.ClientSecret,
			TokenURL:     tokenURL,
		}
		// The token source outlives any single request context, so it is
		// built on a background context; per-call deadlines apply to the
		// Helix requests, not the cached token refresh.
		cctx := context.Background()
		if ts.HTTPClient != nil {
			cctx = context.WithValue(cctx, oauth2.HTTPClient, ts.HTTPClient)
		}
		ts.src = cfg.TokenSource(cctx)
	}
	return ts.src
}
