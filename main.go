// Command stream-notifier polls Twitch for a streamer's live status and keeps
// a single Discord notification message reconciled against it.
// It:
//   - Loads configuration and initializes structured logging.
//   - Connects to Postgres and runs idempotent migrations.
//   - Opens the Discord session and starts the reconciliation poller.
//   - Exposes a minimal HTTP server with /healthz, /readyz, /status, /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"github.com/tencreator/discord-bot/config"
	"github.com/tencreator/discord-bot/db"
	"github.com/tencreator/discord-bot/discord"
	"github.com/tencreator/discord-bot/monitor"
	"github.com/tencreator/discord-bot/presence"
	"github.com/tencreator/discord-bot/server"
	"github.com/tencreator/discord-bot/telemetry"
	"github.com/tencreator/discord-bot/twitchapi"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(".env")

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	var handler slog.Handler
	switch strings.ToLower(os.Getenv("LOG_FORMAT")) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config invalid", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()
	shutdown, err := telemetry.InitTracing("stream-notifier", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// DB
	database, err := db.Connect()
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}()
	if err := db.Migrate(context.Background(), database); err != nil {
		slog.Error("failed to migrate db", slog.Any("err", err))
		os.Exit(1)
	}

	// Discord session. Only REST calls are needed, but an open gateway
	// session populates State.User for embed footers and validates the token
	// at boot instead of on the first cycle.
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		slog.Error("failed to create discord session", slog.Any("err", err))
		os.Exit(1)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	if err := session.Open(); err != nil {
		slog.Error("failed to open discord session", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := session.Close(); err != nil {
			slog.Error("failed to close discord session", slog.Any("err", err))
		}
	}()

	gateway := discord.NewSessionGateway(session)
	botName, botIcon := gateway.BotUser()

	engine := &monitor.Engine{
		Upstream: &twitchapi.HelixClient{
			AppTokenSource: &twitchapi.TokenSource{
				ClientID:     cfg.TwitchClientID,
				ClientSecret: cfg.TwitchClientSecret,
			},
			ClientID: cfg.TwitchClientID,
		},
		Gateway:   gateway,
		Store:     db.NewStreamStore(database),
		Presence:  presence.NewCache(),
		Streamer:  cfg.TwitchStreamer,
		ChannelID: cfg.DiscordChannelID,
		Renderer: monitor.Renderer{
			Color:         cfg.EmbedColor,
			LiveText:      cfg.LiveMessage,
			OfflineText:   cfg.OfflineMessage,
			FooterText:    botName,
			FooterIconURL: botIcon,
		},
	}

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go monitor.StartStreamMonitor(ctx, database, engine, cfg.PollInterval)

	go func() {
		if err := server.Start(ctx, database, cfg.HTTPAddr, cfg.TwitchStreamer); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}
