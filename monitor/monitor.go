// Package monitor implements the reconciliation engine: once per tick it
// compares the streamer's current Twitch status against the previously posted
// Discord notification and creates, edits, or retires that message so the
// channel always shows at most one accurate notice.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tencreator/discord-bot/db"
	"github.com/tencreator/discord-bot/discord"
	"github.com/tencreator/discord-bot/presence"
	"github.com/tencreator/discord-bot/telemetry"
	"github.com/tencreator/discord-bot/twitchapi"
)

// CycleResult describes what a reconciliation cycle did.
type CycleResult int

const (
	CycleNoOp CycleResult = iota
	CycleCreatedLive
	CycleUpdatedLive
	CycleTransitionedOffline
)

func (r CycleResult) String() string {
	switch r {
	case CycleNoOp:
		return "noop"
	case CycleCreatedLive:
		return "created_live"
	case CycleUpdatedLive:
		return "updated_live"
	case CycleTransitionedOffline:
		return "transitioned_offline"
	default:
		return "unknown"
	}
}

// UpstreamClient fetches remote status. Absent resources are (nil, nil);
// errors abort the cycle. Satisfied by *twitchapi.HelixClient.
type UpstreamClient interface {
	GetUser(ctx context.Context, login string) (*twitchapi.User, error)
	GetStream(ctx context.Context, login string) (*twitchapi.Stream, error)
	GetGame(ctx context.Context, id string) (*twitchapi.Game, error)
}

// ChatGateway is the messaging surface. Satisfied by *discord.SessionGateway.
type ChatGateway interface {
	ResolveChannel(channelID string) (*discordgo.Channel, error)
	FetchMessage(channelID, messageID string) (*discordgo.Message, error)
	EditMessage(channelID, messageID string, p *discord.Payload) (*discordgo.Message, error)
	SendMessage(channelID string, p *discord.Payload) (*discordgo.Message, error)
}

// NotificationStore is the durable record of the tracked message. Satisfied
// by *db.StreamStore.
type NotificationStore interface {
	Find(ctx context.Context, guildID, streamerID string) (*db.TrackedNotification, error)
	Upsert(ctx context.Context, n db.TrackedNotification) error
	Delete(ctx context.Context, guildID, streamerID string) error
}

// Engine runs one reconciliation cycle per invocation. It owns all reads and
// writes to the store and the presence cache; callers must not overlap cycles
// for the same streamer (the poller runs them sequentially).
type Engine struct {
	Upstream  UpstreamClient
	Gateway   ChatGateway
	Store     NotificationStore
	Presence  *presence.Cache
	Streamer  string // login
	ChannelID string
	Renderer  Renderer
}

// RunCycle polls upstream status and applies whichever transition the
// tracked state requires. Upstream and channel-resolution failures abort the
// cycle before any mutation; the periodic trigger is the retry mechanism.
func (e *Engine) RunCycle(ctx context.Context) (CycleResult, error) {
	user, err := e.Upstream.GetUser(ctx, e.Streamer)
	if err != nil {
		return CycleNoOp, fmt.Errorf("fetch user %q: %w", e.Streamer, err)
	}
	if user == nil {
		return CycleNoOp, fmt.Errorf("%w: %q", ErrUserNotFound, e.Streamer)
	}
	stream, err := e.Upstream.GetStream(ctx, e.Streamer)
	if err != nil {
		return CycleNoOp, fmt.Errorf("fetch stream %q: %w", e.Streamer, err)
	}
	channel, err := e.Gateway.ResolveChannel(e.ChannelID)
	if err != nil {
		return CycleNoOp, fmt.Errorf("%w: %s: %v", ErrChannelUnavailable, e.ChannelID, err)
	}
	if stream == nil {
		return e.reconcileOffline(ctx, channel, user)
	}
	return e.reconcileLive(ctx, channel, user, stream)
}

func (e *Engine) reconcileOffline(ctx context.Context, channel *discordgo.Channel, user *twitchapi.User) (CycleResult, error) {
	if !e.Presence.Has(channel.GuildID, user.ID) {
		// Already settled offline.
		return CycleNoOp, nil
	}
	rec, err := e.Store.Find(ctx, channel.GuildID, user.ID)
	if err != nil {
		return CycleNoOp, fmt.Errorf("find notification: %w", err)
	}
	if rec == nil {
		// Cache says live but the store has no record. The cache is the
		// disposable side, so drop the stale flag and settle as offline.
		e.Presence.Delete(channel.GuildID, user.ID)
		return CycleNoOp, nil
	}

	payload := e.Renderer.Offline(user, time.Now().UTC())
	if _, err := e.editOrSend(channel.ID, rec.MessageID, payload); err != nil {
		// Offline notices are best-effort; the record still comes down so the
		// next live transition starts clean.
		slog.Warn("offline notice failed", slog.String("streamer", user.Login), slog.Any("err", err))
	}

	e.Presence.Delete(channel.GuildID, user.ID)
	if err := e.Store.Delete(ctx, channel.GuildID, user.ID); err != nil {
		slog.Warn("notification record delete failed, store and chat disagree until a future cycle",
			slog.String("streamer", user.Login), slog.Any("err", err))
	}
	telemetry.IncTransition("offline")
	telemetry.SetLive(false)
	return CycleTransitionedOffline, nil
}

func (e *Engine) reconcileLive(ctx context.Context, channel *discordgo.Channel, user *twitchapi.User, stream *twitchapi.Stream) (CycleResult, error) {
	rec, err := e.Store.Find(ctx, channel.GuildID, user.ID)
	if err != nil {
		return CycleNoOp, fmt.Errorf("find notification: %w", err)
	}

	var game *twitchapi.Game
	if stream.GameID != "" {
		game, err = e.Upstream.GetGame(ctx, stream.GameID)
		if err != nil {
			// Placeholder rendering covers the gap; a flaky category lookup
			// should not cost the whole cycle.
			slog.Warn("game lookup failed", slog.String("game_id", stream.GameID), slog.Any("err", err))
		}
	}
	payload := e.Renderer.Live(user, stream, game, time.Now().UTC())

	if rec == nil {
		e.Presence.Set(channel.GuildID, user.ID)
		msg, err := e.Gateway.SendMessage(channel.ID, payload)
		if err != nil {
			e.Presence.Delete(channel.GuildID, user.ID)
			return CycleNoOp, fmt.Errorf("send live notice: %w", err)
		}
		telemetry.IncMessageSent()
		e.persist(ctx, channel.GuildID, user, msg.ID, stream.ID)
		telemetry.IncTransition("live")
		telemetry.SetLive(true)
		return CycleCreatedLive, nil
	}

	e.Presence.Set(channel.GuildID, user.ID)
	msg, err := e.editOrSend(channel.ID, rec.MessageID, payload)
	if err != nil {
		return CycleNoOp, fmt.Errorf("refresh live notice: %w", err)
	}
	// A stream restart changes the stream id without a new message; the
	// record follows whichever message now carries the notice.
	e.persist(ctx, channel.GuildID, user, msg.ID, stream.ID)
	telemetry.SetLive(true)
	return CycleUpdatedLive, nil
}

// editOrSend refreshes the tracked message in place when it still exists and
// falls back to sending a replacement when it does not. Both branches of the
// engine share it so a vanished message is recovered identically in each
// direction.
func (e *Engine) editOrSend(channelID, messageID string, p *discord.Payload) (*discordgo.Message, error) {
	if messageID != "" {
		if _, ferr := e.Gateway.FetchMessage(channelID, messageID); ferr == nil {
			msg, eerr := e.Gateway.EditMessage(channelID, messageID, p)
			if eerr == nil {
				telemetry.IncMessageEdited()
				return msg, nil
			}
			slog.Debug("message edit failed, sending replacement", slog.String("message_id", messageID), slog.Any("err", eerr))
		} else {
			slog.Debug("tracked message gone, sending replacement", slog.String("message_id", messageID), slog.Any("err", ferr))
		}
	}
	msg, err := e.Gateway.SendMessage(channelID, p)
	if err != nil {
		return nil, err
	}
	telemetry.IncMessageSent()
	return msg, nil
}

// persist upserts the tracked record after a successful send/edit. A store
// failure at this point is a consistency warning, not a cycle failure: the
// chat side is already updated and the next cycle's lookup re-converges.
func (e *Engine) persist(ctx context.Context, guildID string, user *twitchapi.User, messageID, streamID string) {
	n := db.TrackedNotification{
		GuildID:    guildID,
		StreamerID: user.ID,
		MessageID:  messageID,
		StreamID:   streamID,
	}
	if err := e.Store.Upsert(ctx, n); err != nil {
		slog.Warn("notification record persist failed, chat and store disagree until next cycle",
			slog.String("streamer", user.Login), slog.String("message_id", messageID), slog.Any("err", err))
	}
}
