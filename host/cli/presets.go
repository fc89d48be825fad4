package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quasar/core"
)

// NewPresetsCommand creates the presets command.
func NewPresetsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "presets",
		Short:        "Show the built-in driver presets",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range core.PresetNames() {
				cfg, _ := core.Preset(name)
				fmt.Fprintf(out, "%s: strategy=%s drive=%s policy=%s slots=%d lock=%d battcheck=%d\n",
					cfg.Name, cfg.Strategy, cfg.Drive, cfg.Policy, cfg.Ledger.Slots, cfg.LockTime, cfg.BattCheckClicks)
				for g := uint8(0); g < cfg.Table.Groups(); g++ {
					fmt.Fprintf(out, "  group %d:", g)
					for m := uint8(0); m < cfg.Table.Cycle(g); m++ {
						code := cfg.Table.Level(g, m)
						if p := cfg.Pattern(code); p != core.PatternNone {
							fmt.Fprintf(out, " %s", p)
							continue
						}
						fmt.Fprintf(out, " %d", code)
					}
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}
}
