package monitor

import (
	"testing"
	"time"

	"github.com/tencreator/discord-bot/twitchapi"
)

func TestPreviewURL(t *testing.T) {
	got := PreviewURL("https://cdn.example/thumb-{width}x{height}.jpg", "s1")
	want := "https://cdn.example/thumb-1920x1080.jpg?sig=s1"
	if got != want {
		t.Fatalf("PreviewURL() = %q, want %q", got, want)
	}
}

func TestPreviewURLEmptyStreamID(t *testing.T) {
	got := PreviewURL("https://cdn.example/thumb-{width}x{height}.jpg", "")
	want := "https://cdn.example/thumb-1920x1080.jpg"
	if got != want {
		t.Fatalf("PreviewURL() = %q, want %q", got, want)
	}
}

func TestRendererLive(t *testing.T) {
	r := Renderer{
		Color:         0x6441A4,
		LiveText:      "go watch!",
		FooterText:    "notifier-bot",
		FooterIconURL: "https://cdn.example/bot.png",
	}
	user := testUser()
	stream := testStream("s1")
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	p := r.Live(user, stream, &twitchapi.Game{ID: "g1", Name: "Game One"}, now)

	if p.Content != "go watch!" {
		t.Fatalf("content = %q", p.Content)
	}
	e := p.Embed
	if e.Author.Name != "Alice is streaming on Twitch!" {
		t.Fatalf("author = %q", e.Author.Name)
	}
	if e.URL != "https://twitch.tv/alice" || e.Author.URL != e.URL {
		t.Fatalf("channel URL = %q / %q", e.URL, e.Author.URL)
	}
	if e.Title != stream.Title {
		t.Fatalf("title = %q", e.Title)
	}
	if e.Image == nil || e.Image.URL != "https://cdn.example/thumb-1920x1080.jpg?sig=s1" {
		t.Fatalf("image = %+v", e.Image)
	}
	wantFields := []struct{ name, value string }{
		{"Playing", "Game One"},
		{"Viewers", "42"},
		{"Status", "Live"},
	}
	if len(e.Fields) != len(wantFields) {
		t.Fatalf("got %d fields, want %d", len(e.Fields), len(wantFields))
	}
	for i, w := range wantFields {
		f := e.Fields[i]
		if f.Name != w.name || f.Value != w.value || !f.Inline {
			t.Fatalf("field %d = %+v, want inline %s=%s", i, f, w.name, w.value)
		}
	}
	if e.Footer == nil || e.Footer.Text != "notifier-bot" {
		t.Fatalf("footer = %+v", e.Footer)
	}
	if e.Timestamp != "2026-08-29T12:00:00Z" {
		t.Fatalf("timestamp = %q", e.Timestamp)
	}
}

func TestRendererLiveNilGame(t *testing.T) {
	r := Renderer{}
	p := r.Live(testUser(), testStream("s1"), nil, time.Now())
	if got := p.Embed.Fields[0].Value; got != "Unknown" {
		t.Fatalf("game field = %q, want Unknown", got)
	}
}

func TestRendererOffline(t *testing.T) {
	r := Renderer{OfflineText: "stream over"}
	user := testUser()

	p := r.Offline(user, time.Now())

	if p.Content != "stream over" {
		t.Fatalf("content = %q", p.Content)
	}
	e := p.Embed
	if e.Description != "Stream is offline! But you can still watch the VOD! https://twitch.tv/alice" {
		t.Fatalf("description = %q", e.Description)
	}
	if e.Image == nil || e.Image.URL != user.OfflineImageURL {
		t.Fatalf("image = %+v, want offline banner", e.Image)
	}
	if e.Footer != nil {
		t.Fatalf("footer = %+v, want nil without footer text", e.Footer)
	}
}

func TestRendererOfflineNoBanner(t *testing.T) {
	r := Renderer{}
	user := testUser()
	user.OfflineImageURL = ""

	p := r.Offline(user, time.Now())
	if p.Embed.Image != nil {
		t.Fatalf("image = %+v, want nil without an offline banner", p.Embed.Image)
	}
}
