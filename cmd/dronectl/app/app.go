package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/roman-kulish/ardrone-link/internal/command"
	"github.com/roman-kulish/ardrone-link/internal/link"
	"github.com/roman-kulish/ardrone-link/internal/storage"
)

// JournalFile is the name of the command journal inside the data directory
const JournalFile = "dronectl_journal.sqlite"

// Run connects to the drone, brings the link up and keeps it alive until ctx is cancelled
func Run(ctx context.Context, config *Config, logger *slog.Logger) (err error) {
	var senderOptions []func(*link.Sender)

	if config.Journal.Enabled {
		store, err := createStorage(&config.Journal)
		if err != nil {
			return fmt.Errorf("failed to create storage: %w", err)
		}
		defer store.Close()

		sessionID, err := store.CreateSession(ctx, config.Drone.Address, config)
		if err != nil {
			return fmt.Errorf("creating session: %w", err)
		}

		recorder := newJournalRecorder(store, sessionID, logger,
			WithMaxBatchSize(config.Journal.MaxBatchSize),
			WithFlushInterval(config.Journal.FlushInterval.Duration()))
		defer recorder.Close() // runs after the sender is closed, nothing records past it

		senderOptions = append(senderOptions, link.WithJournal(recorder))
		logger.Info("journaling commands", slog.Int64("session", sessionID))
	}

	senderOptions = append(senderOptions,
		link.WithSenderLogger(logger),
		link.WithRepeatInterval(config.Link.RepeatInterval.Duration()))

	sender, err := link.Dial(ctx, config.Drone.CommandAddress(), senderOptions...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, sender.Close())
	}()

	receiver, err := link.ListenTelemetry(ctx, config.Drone.LocalNavdataAddress(), config.Drone.NavdataAddress(),
		link.WithReceiverLogger(logger),
		link.WithKeepAliveInterval(config.Link.KeepAliveInterval.Duration()),
		link.WithReadTimeout(config.Link.ReadTimeout.Duration()),
		link.WithReadErrorsThreshold(config.Link.ReadErrorsThreshold),
		link.WithStrictChecksum(config.Link.StrictChecksum))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, receiver.Close())
	}()

	sendStartupCommands(sender, &config.Startup, logger)

	stopped, err := receiver.Start(ctx)
	if err != nil {
		return fmt.Errorf("starting receiver: %w", err)
	}

	if receiver.WaitForFirstFrame(ctx, config.Link.FirstFrameAttempts, config.Link.FirstFramePoll.Duration()) {
		logger.Info("drone initialized", slog.Bool("commandMode", receiver.CommandModeEnabled()))
	} else {
		logger.Warn("no navdata from the drone yet, keeping the link open")
	}

	return keepLink(ctx, sender, receiver, stopped, config, logger)
}

// sendStartupCommands enables the demo navdata stream and applies the startup configuration.
// Each AT*CONFIG is acknowledged with AT*CTRL in ack mode.
func sendStartupCommands(sender *link.Sender, config *StartupConfig, logger *slog.Logger) {
	configure := func(key, value string) {
		if !sender.SetConfiguration(key, value) {
			logger.Warn("configuration not sent", slog.String("key", key))
			return
		}
		sender.SetControlMode(command.ControlAck)
	}

	if config.NavdataDemo {
		configure("general:navdata_demo", "TRUE")
	}

	// stable order on the wire
	keys := make([]string, 0, len(config.Configuration))
	for key := range config.Configuration {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		configure(key, config.Configuration[key])
	}

	if mode, ok := config.CameraMode(); ok {
		sender.SwitchCamera(mode)
	}
	if config.FlatTrim {
		sender.FlatTrim()
	}
}

// keepLink resets the communication watchdog whenever the drone reports it and
// logs the state periodically, until ctx is done or the receive loop fails.
func keepLink(ctx context.Context, sender *link.Sender, receiver *link.Receiver, stopped <-chan error, config *Config, logger *slog.Logger) error {
	report := time.NewTicker(durationOrDefault(config.Link.ReportInterval, defaultReportInterval))
	defer report.Stop()

	watchdog := time.NewTicker(config.Link.KeepAliveInterval.Duration())
	defer watchdog.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil

		case err, ok := <-stopped:
			if ok && err != nil {
				return fmt.Errorf("navdata link: %w", err)
			}
			return nil

		case <-watchdog.C:
			if s := receiver.Snapshot(); s != nil && s.Header.WatchdogProblem() {
				sender.ResetWatchdog()
			}

		case <-report.C:
			logState(ctx, logger, receiver, receiver.Stats(), sender.LastSequenceNumber())
		}
	}
}

func createStorage(config *JournalConfig) (*storage.SqliteStore, error) {
	dir := config.DataDirectory
	if dir == "" {
		dir = defaultDataDirectory
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving storage directory: %w", err)
	}

	stat, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dir, err)
		}
		return nil, fmt.Errorf("checking storage directory '%s': %w", dir, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dir)
	}

	return storage.NewSqliteStore(filepath.Join(dir, JournalFile)), nil
}
