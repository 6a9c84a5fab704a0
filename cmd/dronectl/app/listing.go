package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/ardrone-link/internal/storage"
)

// ListOptions selects what ListJournal prints
type ListOptions struct {
	DBPath       string
	SessionID    int64 // 0 lists the sessions instead of commands
	Kind         string
	RejectedOnly bool
}

// ListJournal prints the sessions of a journal, or the commands of one session
func ListJournal(ctx context.Context, w io.Writer, opts ListOptions) (err error) {
	stat, err := os.Stat(opts.DBPath)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}

	store := storage.NewSqliteStore(opts.DBPath)
	defer func() {
		if cErr := store.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if opts.SessionID == 0 {
		fmt.Fprintf(tw, "journal %s (%s)\n", opts.DBPath, humanize.Bytes(uint64(stat.Size())))
		return listSessions(ctx, tw, store)
	}

	return listCommands(ctx, tw, store, opts)
}

func listSessions(ctx context.Context, w io.Writer, store storage.Store) error {
	sessions, err := store.Sessions(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "ID\tSTARTED\tDRONE\tCOMMANDS")
	for _, s := range sessions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			s.ID,
			humanize.Time(s.StartTime),
			s.DroneAddress,
			humanize.Comma(s.CommandCount))
	}
	return nil
}

func listCommands(ctx context.Context, w io.Writer, store storage.Store, opts ListOptions) (err error) {
	var filters []storage.ReaderOption
	if opts.Kind != "" {
		filters = append(filters, storage.WithKind(opts.Kind))
	}
	if opts.RejectedOnly {
		filters = append(filters, storage.WithRejectedOnly())
	}

	r, err := store.ReadCommands(ctx, opts.SessionID, filters...)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := r.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	s := r.Session()
	fmt.Fprintf(w, "session %d, drone %s, started %s, %s commands\n",
		s.ID, s.DroneAddress, humanize.Time(s.StartTime), humanize.Comma(s.CommandCount))

	fmt.Fprintln(w, "SEQ\tSENT\tKIND\tACCEPTED\tDESCRIPTION\tFRAME")
	for r.Next(ctx) {
		c := r.Current()
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\t%s\n",
			c.Sequence,
			c.SentAt.Local().Format(time.TimeOnly+".000"),
			c.Kind,
			c.Accepted,
			c.Description,
			quoteFrame(c.Frame))
	}
	return r.Error()
}

// quoteFrame makes the trailing carriage return visible
func quoteFrame(frame string) string {
	return strings.TrimSuffix(strconv.Quote(frame), `"`)[1:]
}
