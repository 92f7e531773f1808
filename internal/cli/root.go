package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/hsticky/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// The logger is attached to every command's context before it runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "hsticky lays out horizontally scrolling collections with sticky headers",
		Long:         `hsticky computes the layout of a horizontally scrolling, sectioned collection whose section headers stick to the leading edge, and animates every element with springs. Collections are described in TOML scenario files.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// addEngineFlags registers the engine overrides on cmd.
func addEngineFlags(cmd *cobra.Command, f *engineFlags) {
	cmd.Flags().StringVar(&f.visibility, "visibility", "", "visibility mode: global (default), exact")
	cmd.Flags().BoolVar(&f.popOut, "pop-out", false, "raise headers overlapping the focused cell")
	cmd.Flags().BoolVar(&f.reflow, "reflow", false, "animate visible cells to new positions between passes")
}
