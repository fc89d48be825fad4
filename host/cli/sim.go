package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"quasar/host/scenario"
	"quasar/host/tracedb"
)

// SimOptions holds flags for the sim command.
type SimOptions struct {
	*RootOptions
	Database string
	Quiet    bool
}

// NewSimCommand creates the sim command.
func NewSimCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sim <scenario.yaml|dir>...",
		Short: "Replay power cycle scenarios on the simulated driver",
		Long: `Run each scenario against a fresh simulated driver, print its
transcript and check its expectations.

Example:
  quasar-host sim host/scenario/testdata/scenarios
  quasar-host sim --db trace.db group-change.yaml`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(opts.logger(cmd.ErrOrStderr()))
			return runSim(cmd.Context(), opts, args, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Database, "db", "", "archive the simulated events in this SQLite database")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "print only the verdicts")
	return cmd
}

func loadScenarios(args []string) ([]*scenario.Scenario, error) {
	var out []*scenario.Scenario
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			list, err := scenario.LoadDir(arg)
			if err != nil {
				return nil, err
			}
			out = append(out, list...)
			continue
		}
		s, err := scenario.Load(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func runSim(ctx context.Context, opts *SimOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	list, err := loadScenarios(args)
	if err != nil {
		return err
	}

	var db *tracedb.DB
	if opts.Database != "" {
		db, err = tracedb.Open(opts.Database)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	out := cmd.OutOrStdout()
	var failed []error
	for _, s := range list {
		tr, err := scenario.Run(s)
		if err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		if !opts.Quiet {
			out.Write(tr.Render())
		}
		if db != nil {
			if err := archive(ctx, db, tr); err != nil {
				return err
			}
		}
		if err := s.Check(tr); err != nil {
			fmt.Fprintf(out, "FAIL %s\n", s.Name)
			failed = append(failed, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s\n", s.Name)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d scenarios failed: %w", len(failed), len(list), errors.Join(failed...))
	}
	return nil
}

func archive(ctx context.Context, db *tracedb.DB, tr *scenario.Transcript) error {
	id, err := db.Begin(ctx, "sim:"+tr.Name, tr.Preset)
	if err != nil {
		return err
	}
	for _, c := range tr.Cycles {
		if err := db.Append(ctx, id, c.Events...); err != nil {
			return err
		}
	}
	slog.Debug("archived scenario", "scenario", tr.Name, "session", id)
	return nil
}
