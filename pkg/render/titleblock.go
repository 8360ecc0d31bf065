package render

import (
	"strings"

	"github.com/matzehuels/docmill/pkg/docstring"
)

// tableTitlePrefixes selects the blocks rendered as HTML tables. Everything
// else falls back to the heading-plus-bullets list view.
var tableTitlePrefixes = []string{"arg", "return", "raise", "attr", "yield"}

func isTableTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, prefix := range tableTitlePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// formatPart renders one docstring part: table-titled blocks as tables,
// other blocks as lists, free text verbatim.
func formatPart(part docstring.Part) string {
	switch v := part.(type) {
	case *docstring.TitleBlock:
		if isTableTitle(v.Title) {
			return tableView(v)
		}
		return listView(v)
	case docstring.Text:
		return string(v)
	default:
		return ""
	}
}

// tableView renders a block as an HTML-in-Markdown table, one row per item.
// Items with empty descriptions are dropped.
func tableView(b *docstring.TitleBlock) string {
	text := strings.TrimSpace(b.Text)
	if text != "" {
		text = stripIndent("<tr>\n<td>\n" + text + "\n</td>\n</tr>")
	}

	var items strings.Builder
	for _, item := range b.Items {
		name := strings.TrimSpace(item.Name)
		description := strings.TrimSpace(item.Description)
		if description == "" {
			continue
		}
		row := "<tr>\n<td>\n<code>" + name + "</code>\n</td>\n<td>\n" + description + "\n</td>\n</tr>"
		items.WriteString(stripIndent(row))
	}

	return "\n\n<!-- Tabular view -->\n<table>\n<tr><th>" + b.Title + "</th></tr>\n" +
		text + "\n" + items.String() + "\n</table>\n\n"
}

// listView renders a block as a "#### Title:" heading followed by a
// bulleted list of bold-coded names.
func listView(b *docstring.TitleBlock) string {
	var sb strings.Builder
	sb.WriteString("\n\n#### " + b.Title + ":\n")
	sb.WriteString(dedent(b.Text))
	sb.WriteString("\n")

	for _, item := range b.Items {
		description := strings.TrimSpace(item.Description)
		if description == "" {
			sb.WriteString("* <b>`" + item.Name + "`</b>\n")
		} else {
			sb.WriteString("* <b>`" + item.Name + "`</b>: " + description + "\n")
		}
	}
	return sb.String()
}

// stripIndent removes leading spaces from every line. Table rows embed
// multi-line descriptions whose indentation would otherwise read as
// Markdown code blocks.
func stripIndent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, " ")
	}
	return strings.Join(lines, "\n")
}

// dedent strips the longest common leading whitespace of all non-blank
// lines.
func dedent(s string) string {
	lines := strings.Split(s, "\n")

	margin := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	if margin <= 0 {
		return s
	}
	for i, line := range lines {
		if len(line) >= margin && strings.TrimSpace(line) != "" {
			lines[i] = line[margin:]
		}
	}
	return strings.Join(lines, "\n")
}
