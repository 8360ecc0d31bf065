package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/docmill/pkg/clidocs"
)

// clidocsOpts holds the command-line flags for the clidocs command.
type clidocsOpts struct {
	output   string
	maxDepth int
}

// clidocsCommand creates the clidocs command, which documents a command
// line tool by running its help output recursively.
func (c *CLI) clidocsCommand() *cobra.Command {
	opts := clidocsOpts{}

	cmd := &cobra.Command{
		Use:   "clidocs <binary>",
		Short: "Generate Markdown reference docs for a command line tool",
		Long: `Generate one Markdown page per command of a CLI tool by running
"<binary> [subcommand...] --help" recursively and parsing the output.

Example:
  docmill clidocs ./bin/mytool -o /tmp/docs/cli`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runClidocs(cmd, &opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (required)")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "subcommand recursion limit (0 = default)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func (c *CLI) runClidocs(cmd *cobra.Command, opts *clidocsOpts, binary string) error {
	outDir, err := filepath.Abs(opts.output)
	if err != nil {
		return err
	}

	tool := filepath.Base(binary)

	sp := newSpinnerWithContext(cmd.Context(), "Collecting help output from "+tool)
	sp.Start()
	root, err := clidocs.Collect(cmd.Context(), clidocs.NewExecRunner(binary), tool, opts.maxDepth)
	if err != nil {
		sp.StopWithError("Collecting help output failed")
		return err
	}
	sp.Stop()

	if err := clidocs.Write(root, outDir); err != nil {
		return err
	}

	printSuccess("Documented %d commands for %s", countCommands(root), tool)
	printFile(outDir)
	return nil
}

func countCommands(cmd *clidocs.Command) int {
	n := 1
	for _, sub := range cmd.Subcommands {
		n += countCommands(sub)
	}
	return n
}
