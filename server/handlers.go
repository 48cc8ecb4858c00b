package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/tencreator/discord-bot/db"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	db       *sql.DB
	streamer string
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(dbc *sql.DB, streamer string) *Handlers {
	return &Handlers{db: dbc, streamer: streamer}
}

// HandleHealthz responds to liveness probes by checking database connectivity.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz responds to readiness probes with detailed checks.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"database", func() error { return h.db.PingContext(r.Context()) }},
		{"credentials", func() error {
			if os.Getenv("TWITCH_CLIENT_ID") == "" || os.Getenv("TWITCH_CLIENT_SECRET") == "" {
				return fmt.Errorf("missing twitch credentials")
			}
			return nil
		}},
	}

	for _, check := range checks {
		if err := check.fn(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status":       "not_ready",
				"failed_check": check.name,
				"error":        err.Error(),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

type statusNotification struct {
	GuildID   string    `json:"guild_id"`
	MessageID string    `json:"message_id"`
	StreamID  string    `json:"stream_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

type statusResponse struct {
	Streamer   string               `json:"streamer"`
	Live       bool                 `json:"live"`
	Tracked    []statusNotification `json:"tracked"`
	LastCycle  string               `json:"last_cycle,omitempty"`
	LastResult string               `json:"last_result,omitempty"`
}

// HandleStatus reports the tracked notifications and the poller heartbeats.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := db.List(ctx, h.db)
	if err != nil {
		http.Error(w, "status query failed", http.StatusInternalServerError)
		return
	}
	resp := statusResponse{Streamer: h.streamer, Tracked: []statusNotification{}}
	for _, row := range rows {
		resp.Tracked = append(resp.Tracked, statusNotification{
			GuildID:   row.GuildID,
			MessageID: row.MessageID,
			StreamID:  row.StreamID,
			UpdatedAt: row.UpdatedAt,
		})
	}
	resp.Live = len(rows) > 0
	resp.LastCycle, _ = db.GetKV(ctx, h.db, "monitor_last_cycle")
	resp.LastResult, _ = db.GetKV(ctx, h.db, "monitor_last_result")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
