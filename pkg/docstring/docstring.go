// Package docstring parses free-form docstrings into a structured
// intermediate representation.
//
// A docstring is split into a one-line brief followed by an ordered sequence
// of parts, where each part is either free Markdown text or a TitleBlock
// (an "Args:"/"Returns:"-style section with optional name/description
// items). Before splitting, a preprocessing pipeline normalizes common
// docstring quirks: TODO markers, lint-suppression directives, unfenced
// doctest examples, and keyword headings written as Markdown headers.
//
// Every preprocessing step is total: it never fails, it only rewrites text.
package docstring

import (
	"regexp"
	"strings"
)

// Parsed is the result of parsing one docstring.
type Parsed struct {
	// Brief is the first line of the docstring.
	Brief string

	// Parts is the remainder, split into free text and TitleBlocks in
	// source order.
	Parts []Part
}

// Part is one segment of a parsed docstring: free Markdown text or a
// TitleBlock.
type Part interface {
	part()
}

// Text is a free Markdown text segment.
type Text string

func (Text) part() {}

// Parse preprocesses a raw docstring and splits it into a brief line plus
// an ordered sequence of text and TitleBlock parts.
//
// Parse never fails. An empty docstring yields an empty brief and no parts.
func Parse(raw string) Parsed {
	return Split(Preprocess(raw))
}

// Split pops the brief line off already-preprocessed docstring text and
// splits the remainder into parts. Callers that rewrite references between
// preprocessing and splitting use this instead of Parse.
func Split(doc string) Parsed {
	lines := strings.Split(doc, "\n")
	brief := lines[0]
	rest := strings.Join(lines[1:], "\n")

	return Parsed{
		Brief: brief,
		Parts: splitParts(rest),
	}
}

// Preprocess applies the full normalization pipeline to a raw docstring.
// Steps are applied in order: TODO removal, lint-directive removal, doctest
// fencing, keyword-header downgrading.
func Preprocess(raw string) string {
	doc := stripTODOs(raw)
	doc = stripLintDirectives(doc)
	doc = addDoctestFences(doc)
	doc = downgradeKeywordHeaders(doc)
	return doc
}

var todoRe = regexp.MustCompile(`#? *TODO.*`)

// stripTODOs removes TODO markers through end of line.
func stripTODOs(doc string) string {
	return todoRe.ReplaceAllString(doc, "")
}

var lintDirectiveRe = regexp.MustCompile(`(?i)# *(pylint|pyformat):.*`)

// stripLintDirectives removes lint-suppression comments through end of line.
func stripLintDirectives(doc string) string {
	return lintDirectiveRe.ReplaceAllString(doc, "")
}

// addDoctestFences wraps bare interactive-example blocks in code fences.
//
// A doctest block starts at a line whose content begins with ">>>" directly
// after a blank line, and runs until the next blank line. Blocks inside an
// existing fence are left alone, so already-fenced examples are never
// double-fenced.
func addDoctestFences(doc string) string {
	lines := strings.Split(doc, "\n")
	var out []string

	inFence := false
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			out = append(out, line)
			continue
		}

		prevBlank := i == 0 || strings.TrimSpace(lines[i-1]) == ""
		if inFence || !prevBlank || !strings.HasPrefix(strings.TrimLeft(line, " "), ">>>") {
			out = append(out, line)
			continue
		}

		indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
		out = append(out, indent+"```")
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			out = append(out, lines[i])
			i++
		}
		out = append(out, indent+"```")
		if i < len(lines) {
			out = append(out, lines[i]) // the terminating blank line
		}
	}

	return strings.Join(out, "\n")
}

var keywordHeaderRe = regexp.MustCompile(`^([ \t]*)#[ \t]*(Args|Arguments|Returns|Raises|Yields|Examples?|Notes?)[ \t]*:?`)

// downgradeKeywordHeaders rewrites keyword headings written as Markdown
// headers ("# Args") into the canonical plain "Args:" form. Lines inside
// code fences are left untouched.
func downgradeKeywordHeaders(doc string) string {
	lines := strings.Split(doc, "\n")

	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if !inFence {
			lines[i] = keywordHeaderRe.ReplaceAllString(line, "$1$2:")
		}
	}

	return strings.Join(lines, "\n")
}
