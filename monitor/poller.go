package monitor

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tencreator/discord-bot/db"
	"github.com/tencreator/discord-bot/telemetry"
)

// StartStreamMonitor runs reconciliation cycles for the configured streamer
// until ctx is cancelled. Cycles run strictly sequentially; a slow cycle
// delays the next tick rather than overlapping it, which is what lets the
// engine go without internal locking.
func StartStreamMonitor(ctx context.Context, dbc *sql.DB, e *Engine, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	slog.Info("stream monitor starting", slog.String("streamer", e.Streamer), slog.Duration("interval", interval))

	// Kick an immediate run so we don't wait a full interval after boot.
	runCycleOnce(ctx, dbc, e)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("stream monitor stopped")
			return
		case <-ticker.C:
			runCycleOnce(ctx, dbc, e)
		}
	}
}

func runCycleOnce(ctx context.Context, dbc *sql.DB, e *Engine) {
	cctx := telemetry.WithCorrelation(ctx, uuid.NewString())
	cctx, span := telemetry.StartSpan(cctx, "monitor", "monitor.cycle",
		attribute.String("streamer", e.Streamer))
	defer span.End()

	start := time.Now()
	result, err := e.RunCycle(cctx)
	telemetry.ObserveCycleDuration(time.Since(start))
	telemetry.IncCycle(err == nil)

	logger := telemetry.LoggerWithCorr(cctx)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.Warn("reconciliation cycle failed", slog.String("streamer", e.Streamer), slog.Any("err", err))
	} else {
		telemetry.SetSpanSuccess(span)
		if result != CycleNoOp {
			logger.Info("reconciliation cycle applied transition",
				slog.String("streamer", e.Streamer), slog.String("result", result.String()))
		}
	}
	recordHeartbeat(cctx, dbc, result, err)
}

// recordHeartbeat writes the last-cycle markers the /status endpoint reads.
func recordHeartbeat(ctx context.Context, dbc *sql.DB, result CycleResult, cycleErr error) {
	if dbc == nil {
		return
	}
	val := result.String()
	if cycleErr != nil {
		val = "error: " + cycleErr.Error()
	}
	if err := db.SetKV(ctx, dbc, "monitor_last_cycle", time.Now().UTC().Format(time.RFC3339)); err != nil {
		slog.Debug("heartbeat write failed", slog.Any("err", err))
	}
	if err := db.SetKV(ctx, dbc, "monitor_last_result", val); err != nil {
		slog.Debug("heartbeat write failed", slog.Any("err", err))
	}
}
