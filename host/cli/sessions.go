package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"quasar/host/tracedb"
)

// SessionsOptions holds flags for the sessions command.
type SessionsOptions struct {
	*RootOptions
	Database string
}

// NewSessionsCommand creates the sessions command. With a session id it
// prints that session's events.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:          "sessions [session-id]",
		Short:        "List archived captures or show one",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := tracedb.Open(opts.Database)
			if err != nil {
				return err
			}
			defer db.Close()
			if len(args) == 1 {
				return showSession(cmd, db, args[0])
			}
			return listSessions(cmd, db)
		},
	}
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

func listSessions(cmd *cobra.Command, db *tracedb.DB) error {
	sessions, err := db.Sessions(cmd.Context())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDEVICE\tPRESET\tSTARTED\tEVENTS")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			s.ID, s.Device, s.Preset, s.StartedAt.UTC().Format(time.RFC3339), s.Events)
	}
	return w.Flush()
}

func showSession(cmd *cobra.Command, db *tracedb.DB, id string) error {
	events, err := db.Events(cmd.Context(), id)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return fmt.Errorf("session %s has no events", id)
	}
	out := cmd.OutOrStdout()
	for _, e := range events {
		fmt.Fprintln(out, e.String())
	}
	return nil
}
