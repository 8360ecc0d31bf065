// Package sitemap converts a generated documentation tree into GitBook
// layout: every module directory gets a README.md landing page, and a
// SUMMARY.md table of contents is built from a template.
package sitemap

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matzehuels/docmill/pkg/errors"
)

// AutodocSlot is the template marker SUMMARY generation replaces with
// the generated page list.
const AutodocSlot = "{autodoc}"

// DefaultSummaryTemplate is used when no template is supplied.
const DefaultSummaryTemplate = "# Table of contents\n\n" + AutodocSlot + "\n"

// Entry is one node of the scanned documentation tree.
type Entry struct {
	// Title is the link label: the page's first heading when present,
	// otherwise the file or directory name.
	Title string

	// Path is the page path relative to the tree root, slash separated.
	// Empty for directories without a landing page.
	Path string

	// Children are nested entries, directories first.
	Children []Entry
}

// Convert rewrites the tree in place: every module page with a matching
// child directory moves into that directory as its README.md, so GitBook
// treats the directory as a section with a landing page.
//
// "mylib.md" next to "mylib/" becomes "mylib/README.md"; leaf pages are
// left alone. Conversion is idempotent.
func Convert(root string) error {
	if root == "" {
		return errors.New(errors.ErrCodeInvalidPath, "sitemap root cannot be empty")
	}

	var dirs []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "scan %s", root)
	}

	// Deepest directories first, so a parent rename never invalidates a
	// pending child rename.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })

	for _, dir := range dirs {
		page := dir + ".md"
		if _, err := os.Stat(page); err != nil {
			continue
		}
		target := filepath.Join(dir, "README.md")
		if err := os.Rename(page, target); err != nil {
			return errors.Wrap(errors.ErrCodeOutputWrite, err, "move %s to %s", page, target)
		}
	}
	return nil
}

// Scan reads a converted tree into nested entries: directories first,
// then leaf pages, both alphabetical. Files and directories with a "_"
// prefix (sidebar and redirect artifacts) and README.md files (already
// represented by their directory) are skipped.
func Scan(root string) ([]Entry, error) {
	return scanDir(root, "")
}

func scanDir(root, rel string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", rel)
	}
	sort.Slice(dirEntries, func(i, j int) bool { return dirEntries[i].Name() < dirEntries[j].Name() })

	var dirs, files []Entry
	for _, de := range dirEntries {
		name := de.Name()
		if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			continue
		}
		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}

		if de.IsDir() {
			children, err := scanDir(root, childRel)
			if err != nil {
				return nil, err
			}
			entry := Entry{Title: name, Children: children}
			if readme := childRel + "/README.md"; fileExists(root, readme) {
				entry.Path = readme
				entry.Title = pageTitle(root, readme, name)
			}
			dirs = append(dirs, entry)
			continue
		}

		if !strings.HasSuffix(name, ".md") || name == "README.md" || name == "SUMMARY.md" {
			continue
		}
		files = append(files, Entry{
			Title: pageTitle(root, childRel, strings.TrimSuffix(name, ".md")),
			Path:  childRel,
		})
	}

	return append(dirs, files...), nil
}

func fileExists(root, rel string) bool {
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil && !info.IsDir()
}

// pageTitle returns the page's first H1 text, or fallback when the page
// has no heading.
func pageTitle(root, rel, fallback string) string {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return fallback
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return fallback
}

// Autodoc renders entries as the nested bullet list SUMMARY.md embeds.
func Autodoc(entries []Entry) string {
	var b strings.Builder
	writeEntries(&b, entries, 0)
	return strings.TrimSuffix(b.String(), "\n")
}

func writeEntries(b *strings.Builder, entries []Entry, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, entry := range entries {
		if entry.Path != "" {
			b.WriteString(indent + "* [" + entry.Title + "](" + entry.Path + ")\n")
		} else {
			b.WriteString(indent + "* " + entry.Title + "\n")
		}
		writeEntries(b, entry.Children, depth+1)
	}
}

// WriteSummary scans root and writes SUMMARY.md from the template, with
// the autodoc slot replaced by the generated page list. An empty
// template means DefaultSummaryTemplate.
func WriteSummary(root, template string) error {
	if template == "" {
		template = DefaultSummaryTemplate
	}
	if !strings.Contains(template, AutodocSlot) {
		return errors.New(errors.ErrCodeInvalidInput, "summary template has no %s slot", AutodocSlot)
	}

	entries, err := Scan(root)
	if err != nil {
		return err
	}

	content := strings.ReplaceAll(template, AutodocSlot, Autodoc(entries))
	path := filepath.Join(root, "SUMMARY.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "write %s", path)
	}
	return nil
}
