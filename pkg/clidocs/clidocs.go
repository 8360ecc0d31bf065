// Package clidocs generates Markdown reference pages for a command line
// tool by running its help output recursively and parsing the
// Usage/Commands/Flags sections.
package clidocs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/matzehuels/docmill/pkg/errors"
)

// DefaultMaxDepth bounds the subcommand recursion.
const DefaultMaxDepth = 5

// Option is one parsed flag row: the flag spec and its description.
type Option struct {
	Flag        string
	Description string
}

// Command is one node of the parsed command tree.
type Command struct {
	// Name is the full command path ("docmill cache clear").
	Name string

	// Summary is the descriptive text above the usage block.
	Summary string

	// Usage is the first usage line.
	Usage string

	// Options are the parsed flag rows, global flags included.
	Options []Option

	// Subcommands are the children named in the commands section, in
	// help output order.
	Subcommands []*Command
}

// HelpRunner produces the help text for one command path. The exec
// implementation shells out; tests substitute canned output.
type HelpRunner interface {
	Help(ctx context.Context, args []string) (string, error)
}

type execRunner struct {
	binary string
}

// NewExecRunner returns a HelpRunner that executes `binary args...
// --help` and captures combined output: some tools print help to
// stderr.
func NewExecRunner(binary string) HelpRunner {
	return &execRunner{binary: binary}
}

func (r *execRunner) Help(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, r.binary, append(append([]string{}, args...), "--help")...)
	out, err := cmd.CombinedOutput()
	if err != nil && len(out) == 0 {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "run %s --help", strings.Join(append([]string{r.binary}, args...), " "))
	}
	return string(out), nil
}

// Collect builds the command tree rooted at the tool itself, running
// help for every discovered subcommand down to maxDepth levels. The
// built-in "help" command is skipped. Zero maxDepth means
// DefaultMaxDepth.
func Collect(ctx context.Context, runner HelpRunner, tool string, maxDepth int) (*Command, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return collect(ctx, runner, tool, nil, maxDepth)
}

func collect(ctx context.Context, runner HelpRunner, tool string, args []string, depth int) (*Command, error) {
	help, err := runner.Help(ctx, args)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(tool + " " + strings.Join(args, " "))
	cmd := Parse(name, help)

	if depth <= 1 {
		cmd.Subcommands = nil
		return cmd, nil
	}
	for i, sub := range cmd.Subcommands {
		short := shortName(sub.Name)
		full, err := collect(ctx, runner, tool, append(append([]string{}, args...), short), depth-1)
		if err != nil {
			return nil, err
		}
		// Keep the one-line description from the parent's command table
		// when the child prints no long text of its own.
		if full.Summary == "" {
			full.Summary = sub.Summary
		}
		cmd.Subcommands[i] = full
	}
	return cmd, nil
}

// sectionHeaderRe matches unindented "Usage:" style section headers.
var sectionHeaderRe = regexp.MustCompile(`^[A-Z][A-Za-z ]*:$`)

// twoColumnRe splits an indented help row into its name column and
// description column.
var twoColumnRe = regexp.MustCompile(`^\s+(\S.*?)\s{2,}(\S.*)$`)

// Parse parses one help text into a command node. Text above the first
// section header becomes the summary; "Usage:" supplies the usage line;
// flag sections ("Flags:", "Options:", "Global Flags:") fill the option
// rows; command sections name the subcommands.
func Parse(name, help string) *Command {
	cmd := &Command{Name: name}

	section := ""
	var summary []string
	for _, line := range strings.Split(help, "\n") {
		trimmed := strings.TrimRight(line, " \t")
		if sectionHeaderRe.MatchString(trimmed) {
			section = strings.TrimSuffix(trimmed, ":")
			continue
		}
		if trimmed == "" {
			continue
		}

		switch {
		case section == "":
			summary = append(summary, strings.TrimSpace(trimmed))
		case section == "Usage":
			if cmd.Usage == "" {
				cmd.Usage = strings.TrimSpace(trimmed)
			}
		case strings.Contains(section, "Flags") || section == "Options":
			if m := twoColumnRe.FindStringSubmatch(trimmed); m != nil {
				cmd.Options = append(cmd.Options, Option{Flag: m[1], Description: m[2]})
			} else if len(cmd.Options) > 0 {
				last := &cmd.Options[len(cmd.Options)-1]
				last.Description += " " + strings.TrimSpace(trimmed)
			}
		case strings.Contains(section, "Commands"):
			if m := twoColumnRe.FindStringSubmatch(trimmed); m != nil {
				sub := strings.Fields(m[1])[0]
				if sub == "help" {
					continue
				}
				cmd.Subcommands = append(cmd.Subcommands, &Command{
					Name:    name + " " + sub,
					Summary: m[2],
				})
			}
		}
	}

	cmd.Summary = strings.Join(summary, " ")
	return cmd
}

// shortName returns the last space-separated segment of a command path.
func shortName(name string) string {
	fields := strings.Fields(name)
	return fields[len(fields)-1]
}

// PagePath maps a command path onto its page path relative to the
// output root: "docmill cache clear" becomes "docmill/cache/clear.md".
func PagePath(name string) string {
	return strings.ReplaceAll(name, " ", "/") + ".md"
}

// Render produces the Markdown page for one command node.
func Render(cmd *Command) string {
	var b strings.Builder

	b.WriteString("# " + cmd.Name + "\n\n")
	if cmd.Summary != "" {
		b.WriteString(cmd.Summary + "\n\n")
	}
	if cmd.Usage != "" {
		b.WriteString("**Usage**\n\n`" + cmd.Usage + "`\n\n")
	}

	if len(cmd.Options) > 0 {
		b.WriteString("**Options**\n\n")
		b.WriteString("| Option | Description |\n")
		b.WriteString("| :--- | :--- |\n")
		for _, opt := range cmd.Options {
			b.WriteString("| `" + opt.Flag + "` | " + opt.Description + " |\n")
		}
		b.WriteString("\n")
	}

	if len(cmd.Subcommands) > 0 {
		b.WriteString("**Commands**\n\n")
		dir := shortName(cmd.Name)
		for _, sub := range cmd.Subcommands {
			short := shortName(sub.Name)
			b.WriteString("* [`" + short + "`](./" + dir + "/" + short + ".md)")
			if sub.Summary != "" {
				b.WriteString(": " + sub.Summary)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Write renders the whole command tree into outputDir, one page per
// node. outputDir must be absolute, matching the doc generator's output
// contract.
func Write(root *Command, outputDir string) error {
	if err := errors.ValidateOutputRoot(outputDir); err != nil {
		return err
	}
	return writeTree(root, outputDir)
}

func writeTree(cmd *Command, outputDir string) error {
	path := filepath.Join(outputDir, filepath.FromSlash(PagePath(cmd.Name)))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, []byte(Render(cmd)), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "cannot write docs for %s to %s", cmd.Name, path)
	}
	for _, sub := range cmd.Subcommands {
		if err := writeTree(sub, outputDir); err != nil {
			return err
		}
	}
	return nil
}
