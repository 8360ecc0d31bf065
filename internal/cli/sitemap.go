package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/docmill/pkg/sitemap"
)

// sitemapOpts holds the command-line flags for the sitemap command.
type sitemapOpts struct {
	template    string
	skipSummary bool
}

// sitemapCommand creates the sitemap command, which reshapes a generated
// tree into GitBook layout.
func (c *CLI) sitemapCommand() *cobra.Command {
	opts := sitemapOpts{}

	cmd := &cobra.Command{
		Use:   "sitemap <docs-dir>",
		Short: "Convert a generated docs tree into GitBook layout",
		Long: `Convert a generated docs tree into GitBook layout: module pages move
into their directories as README.md landing pages, and SUMMARY.md is
written from a template with the {autodoc} slot replaced by the page list.

Example:
  docmill sitemap /tmp/docs --template SUMMARY.tmpl.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSitemap(&opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.template, "template", "", "SUMMARY.md template file (built-in template if empty)")
	cmd.Flags().BoolVar(&opts.skipSummary, "skip-summary", false, "reshape the tree without writing SUMMARY.md")

	return cmd
}

func (c *CLI) runSitemap(opts *sitemapOpts, dir string) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	template := ""
	if opts.template != "" {
		data, err := os.ReadFile(opts.template)
		if err != nil {
			return err
		}
		template = string(data)
	}

	if err := sitemap.Convert(root); err != nil {
		return err
	}
	if !opts.skipSummary {
		if err := sitemap.WriteSummary(root, template); err != nil {
			return err
		}
	}

	printSuccess("Converted %s for GitBook", root)
	if !opts.skipSummary {
		printFile(filepath.Join(root, "SUMMARY.md"))
	}
	return nil
}
