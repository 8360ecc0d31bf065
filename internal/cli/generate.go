package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/docmill/pkg/config"
	"github.com/matzehuels/docmill/pkg/generate"
)

// generateOpts holds the command-line flags for the generate command.
// Flags override the corresponding docmill.toml settings.
type generateOpts struct {
	config        string // config file path (docmill.toml in cwd if empty)
	snapshot      string // snapshot file, overrides config
	output        string // output root, overrides config
	title         string // project title, overrides config
	sitePath      string // site-relative publication directory
	workers       int    // page build pool size
	refresh       bool   // bypass the page cache
	noCache       bool   // disable the page cache entirely
	skipRedirects bool   // do not emit _redirects.yaml
	localOnly     bool   // hide members defined outside their module's directory
}

// loadOptions builds pipeline options from the config file (when present)
// and the flag overrides. The cache configuration is returned separately
// because the runner, not the pipeline, owns the backend.
func (o *generateOpts) loadOptions() (generate.Options, config.CacheConfig, error) {
	var opts generate.Options
	var cacheCfg config.CacheConfig

	path := o.config
	if path == "" {
		if _, err := os.Stat(config.DefaultFileName); err == nil {
			path = config.DefaultFileName
		}
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return opts, cacheCfg, err
		}
		opts = generate.FromConfig(cfg)
		cacheCfg = cfg.Cache
	}

	if o.snapshot != "" {
		opts.SnapshotPath = o.snapshot
	}
	if o.title != "" {
		opts.Title = o.title
	}
	if o.sitePath != "" {
		opts.SitePath = o.sitePath
	}
	if o.output != "" {
		abs, err := filepath.Abs(o.output)
		if err != nil {
			return opts, cacheCfg, err
		}
		opts.OutputDir = abs
	}
	if o.localOnly {
		opts.LocalOnly = true
	}
	opts.Workers = o.workers
	opts.Refresh = o.refresh
	opts.SkipRedirects = o.skipRedirects

	return opts, cacheCfg, nil
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate reference docs from an API snapshot",
		Long: `Generate the Markdown reference tree from an API snapshot.

Settings are read from docmill.toml in the working directory (or the file
named with --config); flags override individual settings.

Examples:
  docmill generate                                  # docmill.toml in cwd
  docmill generate -c docs/docmill.toml --refresh   # explicit config, no cache
  docmill generate --snapshot api.json --title MyLib --output /tmp/docs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "config file (docmill.toml in cwd if empty)")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "API snapshot file (overrides config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (overrides config)")
	cmd.Flags().StringVar(&opts.title, "title", "", "project title (overrides config)")
	cmd.Flags().StringVar(&opts.sitePath, "site-path", "", "site-relative publication directory")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "page build workers (0 = default)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the page cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the page cache")
	cmd.Flags().BoolVar(&opts.skipRedirects, "skip-redirects", false, "do not emit _redirects.yaml")
	cmd.Flags().BoolVar(&opts.localOnly, "local-only", false, "hide re-exports from sibling packages")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts *generateOpts) error {
	pipeOpts, cacheCfg, err := opts.loadOptions()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cacheCfg, pipeOpts.Title, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	logger.Infof("Generating docs for %s", pipeOpts.Title)

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, pipeOpts)
	if err != nil {
		return err
	}
	prog.done("Generation complete")

	printSuccess("Generated docs for %s", pipeOpts.Title)
	cached := result.Stats.PageCount > 0 && result.CacheInfo.PageMisses == 0
	printStats(result.Stats.PageCount, result.Stats.SymbolCount, cached)
	printFile(pipeOpts.OutputDir)
	printNextStep("Preview the docs", appName+" serve --dir "+pipeOpts.OutputDir)
	return nil
}
