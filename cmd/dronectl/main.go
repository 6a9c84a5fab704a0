package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roman-kulish/ardrone-link/cmd/dronectl/app"
)

func main() {
	var logLevel slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &logLevel}))

	rootCmd := &cobra.Command{
		Use:           "dronectl",
		Short:         "Keeps an AR.Drone command and navdata link alive",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newRunCmd(logger, &logLevel), newJournalCmd())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error(err.Error())

		cancel()
		os.Exit(1)
	}
}

// runCmd connects to the drone and keeps the link up until interrupted
func newRunCmd(logger *slog.Logger, logLevel *slog.LevelVar) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the drone and keep the link alive",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return errors.New("no configuration file provided")
			}

			config, err := app.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration file '%s': %w", configPath, err)
			}

			logLevel.Set(config.Settings.LogLevel)

			return app.Run(cmd.Context(), config, logger)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file")

	return cmd
}

// journalCmd prints the sessions and commands recorded by "run"
func newJournalCmd() *cobra.Command {
	var opts app.ListOptions

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List journaled sessions, or the commands of one session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ListJournal(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.DBPath, "db", "data/"+app.JournalFile, "Path to the journal database")
	cmd.Flags().Int64VarP(&opts.SessionID, "session", "s", 0, "Session to list commands for")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "Only list commands of this kind, e.g. Move")
	cmd.Flags().BoolVar(&opts.RejectedOnly, "rejected", false, "Only list commands the socket did not accept")

	return cmd
}
