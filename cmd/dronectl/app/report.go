package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/ardrone-link/internal/link"
	"github.com/roman-kulish/ardrone-link/internal/telemetry"
)

// logState writes one line with the current drone state and link counters
func logState(ctx context.Context, logger *slog.Logger, provider telemetry.Provider, stats link.Stats, lastSequence uint32) {
	linkAttrs := slog.Group("link",
		slog.String("frames", humanize.Comma(int64(stats.Frames))),
		slog.String("rejected", humanize.Comma(int64(stats.Rejected))),
		slog.String("checksumMismatches", humanize.Comma(int64(stats.ChecksumMismatches))),
		slog.String("timeouts", humanize.Comma(int64(stats.Timeouts))),
		slog.String("keepAlives", humanize.Comma(int64(stats.KeepAlives))),
		slog.Uint64("lastCommandSeq", uint64(lastSequence)),
	)

	t := provider.Get()
	if t == nil {
		logger.Info("waiting for navdata", linkAttrs)
		return
	}

	droneAttrs := []any{
		slog.Uint64("seq", uint64(t.Sequence)),
		slog.String("received", humanize.Time(t.Timestamp)),
		slog.Bool("initialized", t.Initialized),
		slog.Bool("commandMode", t.CommandMode),
		slog.Bool("flying", t.Flying),
		slog.Bool("checksumValid", t.ChecksumValid),
	}
	if t.FlightState != nil {
		droneAttrs = append(droneAttrs, slog.String("state", *t.FlightState))
	}
	if t.Battery != nil {
		droneAttrs = append(droneAttrs, slog.String("battery", fmt.Sprintf("%d%%", *t.Battery)))
	}
	if t.Altitude != nil {
		droneAttrs = append(droneAttrs, slog.String("altitude", fmt.Sprintf("%0.2fm", *t.Altitude)))
	}
	if t.Roll != nil && t.Pitch != nil && t.Yaw != nil {
		droneAttrs = append(droneAttrs, slog.String("attitude", fmt.Sprintf("roll=%0.1f° pitch=%0.1f° yaw=%0.1f°", *t.Roll, *t.Pitch, *t.Yaw)))
	}

	level := slog.LevelInfo
	if t.LowBattery || t.Emergency {
		level = slog.LevelWarn
	}

	logger.Log(ctx, level, "drone state", slog.Group("drone", droneAttrs...), linkAttrs)
}

// durationOrDefault returns d, or def when d is zero
func durationOrDefault(d Duration, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d.Duration()
}
