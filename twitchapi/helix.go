package twitchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://api.twitch.tv/helix"

	// helixMaxRetries bounds attempts against transient 5xx responses.
	helixMaxRetries = 3
)

// HelixClient provides the lookups one reconciliation cycle needs. Absent
// resources (unknown login, streamer offline, unknown game) are reported as
// (nil, nil); errors are reserved for transport and auth failures.
type HelixClient struct {
	AppTokenSource *TokenSource
	ClientID       string
	BaseURL        string       // defaults to the public Helix endpoint
	HTTPClient     *http.Client // defaults to http.DefaultClient
}

func (hc *HelixClient) http() *http.Client {
	if hc.HTTPClient != nil {
		return hc.HTTPClient
	}
	return http.DefaultClient
}

func (hc *HelixClient) base() string {
	if hc.BaseURL != "" {
		return hc.BaseURL
	}
	return defaultBaseURL
}

// GetUser resolves a login name to its profile.
func (hc *HelixClient) GetUser(ctx context.Context, login string) (*User, error) {
	if login == "" {
		return nil, fmt.Errorf("login empty")
	}
	var body struct {
		Data []User `json:"data"`
	}
	if err := hc.get(ctx, "/users", url.Values{"login": {login}}, &body); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 {
		return nil, nil
	}
	return &body.Data[0], nil
}

// GetStream returns the live-stream descriptor for a login, or nil when the
// streamer is not currently live.
func (hc *HelixClient) GetStream(ctx context.Context, login string) (*Stream, error) {
	if login == "" {
		return nil, fmt.Errorf("login empty")
	}
	var body struct {
		Data []Stream `json:"data"`
	}
	if err := hc.get(ctx, "/streams", url.Values{"user_login": {login}}, &body); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 {
		return nil, nil
	}
	return &body.Data[0], nil
}

// GetGame returns category metadata, or nil when the id is empty or unknown.
func (hc *HelixClient) GetGame(ctx context.Context, id string) (*Game, error) {
	if id == "" {
		return nil, nil
	}
	var body struct {
		Data []Game `json:"data"`
	}
	if err := hc.get(ctx, "/games", url.Values{"id": {id}}, &body); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 {
		return nil, nil
	}
	return &body.Data[0], nil
}

// get performs an authenticated Helix GET with bounded retries on 5xx and a
// single token refresh on 401. The refresh attempt does not consume a retry
// slot.
func (hc *HelixClient) get(ctx context.Context, path string, q url.Values, out any) error {
	var lastErr error
	refreshed := false
	for attempt := 0; attempt < helixMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
			}
		}
		tok, err := hc.AppTokenSource.Get(ctx)
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, hc.base()+path, nil)
		if err != nil {
			return err
		}
		req.URL.RawQuery = q.Encode()
		req.Header.Set("Client-Id", hc.ClientID)
		req.Header.Set("Authorization", "Bearer "+tok)

		resp, err := hc.http().Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		switch {
		case resp.StatusCode == http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			drainClose(resp)
			if err != nil {
				return fmt.Errorf("helix %s: decode: %w", path, err)
			}
			return nil
		case resp.StatusCode == http.StatusUnauthorized && !refreshed:
			drainClose(resp)
			hc.AppTokenSource.Invalidate()
			refreshed = true
			attempt--
		case resp.StatusCode >= 500:
			drainClose(resp)
			lastErr = fmt.Errorf("helix %s: %s", path, resp.Status)
		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			drainClose(resp)
			return fmt.Errorf("helix %s: %s: %s", path, resp.Status, string(b))
		}
	}
	return fmt.Errorf("helix %s: retries exhausted: %w", path, lastErr)
}

func drainClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	if err := resp.Body.Close(); err != nil {
		slog.Warn("failed to close response body", slog.Any("err", err))
	}
}
