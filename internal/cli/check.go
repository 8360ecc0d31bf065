package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/docmill/pkg/cache"
	"github.com/matzehuels/docmill/pkg/errors"
	"github.com/matzehuels/docmill/pkg/generate"
)

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	config   string
	snapshot string
	title    string
}

// checkCommand creates the check command, a lint pass over all documented
// docstrings that reports dangling cross references.
func (c *CLI) checkCommand() *cobra.Command {
	opts := checkOpts{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check docstrings for dangling cross references",
		Long: `Check every documented docstring for backtick references into the
project that do not resolve to a known symbol. Exits non-zero when any
dangling reference is found, so the command can gate CI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config file (docmill.toml in cwd if empty)")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "API snapshot file (overrides config)")
	cmd.Flags().StringVar(&opts.title, "title", "", "project title (overrides config)")

	return cmd
}

func (c *CLI) runCheck(cmd *cobra.Command, opts *checkOpts) error {
	genOpts := generateOpts{config: opts.config, snapshot: opts.snapshot, title: opts.title}
	pipeOpts, _, err := genOpts.loadOptions()
	if err != nil {
		return err
	}

	// Checking never writes pages, so the cache stays out of the way.
	runner := generate.NewRunner(cache.NewNullCache(), nil, c.Logger)
	defer runner.Close()

	result, err := runner.Check(cmd.Context(), pipeOpts)
	if err != nil {
		return err
	}

	if result.OK() {
		printSuccess("No dangling references across %d symbols", result.SymbolCount)
		return nil
	}

	printWarning("Found %d dangling references", len(result.Dangling))
	for _, d := range result.Dangling {
		printDetail("%s references unknown symbol %s", d.Symbol, d.Reference)
	}
	return errors.New(errors.ErrCodeReferenceNotFound, "%d dangling references", len(result.Dangling))
}
