package cli

import (
	"github.com/spf13/cobra"

	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/patch"
	"github.com/HEXmodular/Audio-Blocks-Playground-sub000/internal/state"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool   `json:"valid"`
	Blocks      int    `json:"blocks,omitempty"`
	Connections int    `json:"connections,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <patch.yaml>",
		Short: "Validate a patch file without running it",
		Long: `Validate a patch file: YAML shape, block types, port existence,
type compatibility, and fan-in constraints.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	p, err := patch.Load(path)
	if err != nil {
		return reportInvalid(formatter, err)
	}

	lib := patch.NewLibrary()
	store, err := patch.Build(p, lib, state.UUIDv7Generator{})
	if err != nil {
		return reportInvalid(formatter, err)
	}

	result := ValidationResult{
		Valid:       true,
		Blocks:      len(store.Instances()),
		Connections: len(store.Connections()),
	}
	if opts.Format == "json" {
		return formatter.JSON(result)
	}
	formatter.Textf("patch %s is valid: %d blocks, %d connections", p.Name, result.Blocks, result.Connections)
	return nil
}

func reportInvalid(formatter *OutputFormatter, err error) error {
	if formatter.Format == "json" {
		_ = formatter.JSON(ValidationResult{Valid: false, Error: err.Error()})
	} else {
		formatter.Textf("invalid: %v", err)
	}
	return WrapExitError(ExitFailure, "validation failed", err)
}
