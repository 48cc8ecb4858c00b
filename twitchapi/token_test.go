package twitchapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/tencreator/discord-bot/testutil"
)

func newTestTokenSource(m *testutil.MockTwitchServer) *TokenSource {
	return &TokenSource{
		ClientID:     "cid",
		ClientSecret: "secret",
		TokenURL:     m.URL + "/oauth2/token",
		HTTPClient:   m.Client(),
	}
}

// countRequests wraps a handler and increments *n on every call.
func countRequests(n *int, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*n++
		h(w, r)
	}
}

func TestTokenSourceGet(t *testing.T) {
	m := testutil.NewMockTwitchServer(t)
	m.MockOAuthTokenResponse("tok-1", 3600)

	ts := newTestTokenSource(m)
	tok, err := ts.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if tok != "tok-1" {
		t.Fatalf("token = %q, want tok-1", tok)
	}
}

func TestTokenSourceCachesToken(t *testing.T) {
	m := testutil.NewMockTwitchServer(t)
	m.MockOAuthTokenResponse("tok-1", 3600)
	requests := 0
	m.Handlers["/oauth2/token"] = countRequests(&requests, m.Handlers["/oauth2/token"])

	ts := newTestTokenSource(m)
	for i := 0; i < 3; i++ {
		if _, err := ts.Get(context.Background()); err != nil {
			t.Fatalf("Get() #%d error = %v", i, err)
		}
	}
	if requests != 1 {
		t.Fatalf("token endpoint hit %d times, want 1 (cached)", requests)
	}
}

func TestTokenSourceInvalidateForcesRefetch(t *testing.T) {
	m := testutil.NewMockTwitchServer(t)
	m.MockOAuthTokenResponse("tok-1", 3600)
	requests := 0
	m.Handlers["/oauth2/token"] = countRequests(&requests, m.Handlers["/oauth2/token"])

	ts := newTestTokenSource(m)
	if _, err := ts.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	ts.Invalidate()
	if _, err := ts.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	if requests != 2 {
		t.Fatalf("token endpoint hit %d times, want 2 after Invalidate", requests)
	}
}

func TestTokenSourceMissingCredentials(t *testing.T) {
	ts := &TokenSource{}
	if _, err := ts.Get(context.Background()); err == nil {
		t.Fatal("expected error without client credentials")
	}
}
