package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"quasar/host/monitor"
	"quasar/host/serial"
	"quasar/host/tracedb"
)

// MonitorOptions holds flags for the monitor command.
type MonitorOptions struct {
	*RootOptions
	Device   string
	Baud     int
	Database string
}

// NewMonitorCommand creates the monitor command.
func NewMonitorCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MonitorOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print the trace events of a connected driver",
		Long: `Read the framed trace stream from the driver's UART and print each
event. With --db every event is archived in a new session.

Example:
  quasar-host monitor --device /dev/ttyUSB0 --db trace.db`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(opts.logger(cmd.ErrOrStderr()))
			return runMonitor(opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Device, "device", "/dev/ttyUSB0", "serial device path")
	cmd.Flags().IntVar(&opts.Baud, "baud", serial.DefaultBaud, "baud rate")
	cmd.Flags().StringVar(&opts.Database, "db", "", "archive events in this SQLite database")
	return cmd
}

func runMonitor(opts *MonitorOptions, cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := serial.DefaultConfig(opts.Device)
	cfg.Baud = opts.Baud
	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()
	if err := port.Flush(); err != nil {
		slog.Warn("flush failed", "device", opts.Device, "error", err)
	}

	mopts := []monitor.Option{monitor.WithOutput(cmd.OutOrStdout())}
	if opts.Database != "" {
		db, err := tracedb.Open(opts.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		mopts = append(mopts, monitor.WithArchive(db))
	}

	m := monitor.New(opts.Device, mopts...)
	slog.Info("monitoring", "device", opts.Device, "baud", opts.Baud)
	err = m.Run(ctx, port)
	st := m.Stats()
	slog.Info("capture ended", "events", m.Events(), "frames", st.Frames,
		"dropped", st.Dropped, "errors", st.Errors, "session", m.Session())
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	return nil
}
