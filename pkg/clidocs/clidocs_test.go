package clidocs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const rootHelp = `Generate Markdown API reference docs from an API snapshot.

Usage:
  docmill [command]

Available Commands:
  cache       Manage the page cache
  generate    Generate reference docs
  help        Help about any command

Flags:
  -h, --help               help for docmill
      --log-level string   log level (debug, info, warn, error)
                           (default "info")
`

const generateHelp = `Generate reference docs from a snapshot.

Usage:
  docmill generate [flags]

Flags:
  -c, --config string   path to docmill.toml
      --refresh         bypass the page cache
`

const cacheHelp = `Usage:
  docmill cache [command]

Available Commands:
  clear       Remove cached pages
`

const clearHelp = `Usage:
  docmill cache clear [flags]
`

// fakeRunner serves canned help output keyed by the joined args.
type fakeRunner struct {
	helps map[string]string
}

func (f *fakeRunner) Help(ctx context.Context, args []string) (string, error) {
	return f.helps[strings.Join(args, " ")], nil
}

func testRunner() *fakeRunner {
	return &fakeRunner{helps: map[string]string{
		"":            rootHelp,
		"generate":    generateHelp,
		"cache":       cacheHelp,
		"cache clear": clearHelp,
	}}
}

func TestParse(t *testing.T) {
	cmd := Parse("docmill", rootHelp)

	if cmd.Summary != "Generate Markdown API reference docs from an API snapshot." {
		t.Errorf("Summary = %q", cmd.Summary)
	}
	if cmd.Usage != "docmill [command]" {
		t.Errorf("Usage = %q", cmd.Usage)
	}

	if len(cmd.Options) != 2 {
		t.Fatalf("Options = %+v, want 2 rows", cmd.Options)
	}
	if cmd.Options[0].Flag != "-h, --help" || cmd.Options[0].Description != "help for docmill" {
		t.Errorf("Options[0] = %+v", cmd.Options[0])
	}
	// The wrapped default continues the previous description.
	if !strings.HasSuffix(cmd.Options[1].Description, `(default "info")`) {
		t.Errorf("Options[1].Description = %q, want the continuation folded in", cmd.Options[1].Description)
	}

	// The built-in help command is not documented.
	var names []string
	for _, sub := range cmd.Subcommands {
		names = append(names, sub.Name)
	}
	want := []string{"docmill cache", "docmill generate"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("Subcommands = %v, want %v", names, want)
	}
}

func TestCollect(t *testing.T) {
	root, err := Collect(context.Background(), testRunner(), "docmill", 0)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}

	if root.Name != "docmill" {
		t.Errorf("root.Name = %q", root.Name)
	}
	if len(root.Subcommands) != 2 {
		t.Fatalf("root has %d subcommands, want 2", len(root.Subcommands))
	}

	cacheCmd := root.Subcommands[0]
	if cacheCmd.Name != "docmill cache" {
		t.Fatalf("Subcommands[0].Name = %q", cacheCmd.Name)
	}
	// The child prints no long text, so the parent's one-liner is kept.
	if cacheCmd.Summary != "Manage the page cache" {
		t.Errorf("cache Summary = %q", cacheCmd.Summary)
	}
	if len(cacheCmd.Subcommands) != 1 || cacheCmd.Subcommands[0].Name != "docmill cache clear" {
		t.Errorf("cache Subcommands = %+v", cacheCmd.Subcommands)
	}

	genCmd := root.Subcommands[1]
	if genCmd.Summary != "Generate reference docs from a snapshot." {
		t.Errorf("generate Summary = %q", genCmd.Summary)
	}
	if len(genCmd.Options) != 2 {
		t.Errorf("generate Options = %+v, want 2 rows", genCmd.Options)
	}
}

func TestCollectDepthLimit(t *testing.T) {
	root, err := Collect(context.Background(), testRunner(), "docmill", 2)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	for _, sub := range root.Subcommands {
		if len(sub.Subcommands) != 0 {
			t.Errorf("%s should not recurse past the depth limit: %+v", sub.Name, sub.Subcommands)
		}
	}
}

func TestPagePath(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"docmill", "docmill.md"},
		{"docmill generate", "docmill/generate.md"},
		{"docmill cache clear", "docmill/cache/clear.md"},
	}
	for _, tt := range tests {
		if got := PagePath(tt.name); got != tt.want {
			t.Errorf("PagePath(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	cmd := Parse("docmill generate", generateHelp)
	got := Render(cmd)

	for _, want := range []string{
		"# docmill generate\n",
		"Generate reference docs from a snapshot.\n",
		"`docmill generate [flags]`",
		"| `-c, --config string` | path to docmill.toml |",
		"| `--refresh` | bypass the page cache |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render missing %q in:\n%s", want, got)
		}
	}
}

func TestWrite(t *testing.T) {
	root, err := Collect(context.Background(), testRunner(), "docmill", 0)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}

	outDir := t.TempDir()
	if err := Write(root, outDir); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	for _, rel := range []string{
		"docmill.md",
		"docmill/cache.md",
		"docmill/cache/clear.md",
		"docmill/generate.md",
	} {
		if _, err := os.Stat(filepath.Join(outDir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("%s: %v", rel, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(outDir, "docmill.md"))
	if err != nil {
		t.Fatalf("read docmill.md: %v", err)
	}
	if !strings.Contains(string(data), "* [`generate`](./docmill/generate.md): Generate reference docs") {
		t.Errorf("root page should link the generate subcommand:\n%s", data)
	}

	if err := Write(root, "relative"); err == nil {
		t.Error("Write should reject a relative output dir")
	}
}
