package cli

import (
	"github.com/spf13/cobra"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/engine"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/patch"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/state"
)

// OrderResult holds the resolved execution order.
type OrderResult struct {
	Order []string `json:"order"`
	Cycle bool     `json:"cycle"`
}

// NewOrderCommand creates the order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "order <patch.yaml>",
		Short: "Print the resolved execution order of a patch",
		Long: `Resolve the topological execution order of a patch's blocks.
Cycles are reported but non-fatal; cycle members execute in insertion order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(rootOpts, args[0], cmd)
		},
	}
}

func runOrder(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	p, err := patch.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "load patch", err)
	}
	store, err := patch.Build(p, patch.NewLibrary(), state.UUIDv7Generator{})
	if err != nil {
		return WrapExitError(ExitFailure, "build patch", err)
	}

	order, cycle := engine.ResolveOrder(store.Instances(), store.Connections())
	if opts.Format == "json" {
		return formatter.JSON(OrderResult{Order: order, Cycle: cycle})
	}
	for i, id := range order {
		formatter.Textf("%3d  %s", i+1, id)
	}
	if cycle {
		formatter.Textf("warning: graph contains a cycle; trailing members use insertion order")
	}
	return nil
}
