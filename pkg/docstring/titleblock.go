package docstring

import (
	"regexp"
	"strings"
)

// Item is one name/description pair inside a TitleBlock.
type Item struct {
	Name        string
	Description string
}

// TitleBlock is a structured docstring section like "Args:" or "Returns:".
//
// Blocks are delimited by indentation: a block starts at a "Title:" line
// after a blank line (or directly after another block) and its content runs
// until the next non-indented line. Text is any freeform prose between the
// title and the first item. A block with empty text and no items is
// preserved; it still renders as a bare heading.
type TitleBlock struct {
	Title string
	Text  string
	Items []Item
}

func (*TitleBlock) part() {}

// titleLineRe matches a block opener: a sentence-case title of at most 21
// characters followed by a colon and nothing else on the line.
var titleLineRe = regexp.MustCompile(`^([A-Z][\w \t]{0,20}?)[ \t]*:[ \t]*$`)

// itemRe matches an item marker at the start of a content line: an optional
// "*"/"**" prefix, a dotted name, and a colon followed by whitespace.
var itemRe = regexp.MustCompile(`(?m)^(\*{0,2}\w[\w.]*)[ \t]*:\s`)

// splitParts splits docstring body text into free-text and TitleBlock parts.
//
// A title line opens a block when it is the first line, follows a blank
// line, or directly follows the content of a previous block. Block content
// is the run of indented or blank lines after the title.
func splitParts(body string) []Part {
	if body == "" {
		return nil
	}

	lines := strings.Split(body, "\n")
	var parts []Part
	var free []string

	flushFree := func() {
		if len(free) == 0 {
			return
		}
		text := strings.Join(free, "\n")
		free = nil
		if strings.TrimSpace(text) != "" {
			parts = append(parts, Text(text))
		}
	}

	afterBlock := false
	i := 0
	for i < len(lines) {
		line := lines[i]

		canStart := i == 0 || afterBlock || (len(free) > 0 && strings.TrimSpace(free[len(free)-1]) == "")
		m := titleLineRe.FindStringSubmatch(line)
		if m == nil || !canStart {
			free = append(free, line)
			afterBlock = false
			i++
			continue
		}

		flushFree()

		// Consume indented or blank lines as the block's content.
		i++
		var content []string
		for i < len(lines) {
			l := lines[i]
			if strings.TrimSpace(l) != "" && !strings.HasPrefix(l, " ") && !strings.HasPrefix(l, "\t") {
				break
			}
			content = append(content, l)
			i++
		}

		text, items := splitItems(dedent(strings.Join(content, "\n")))
		parts = append(parts, &TitleBlock{
			Title: strings.TrimSpace(m[1]),
			Text:  text,
			Items: items,
		})
		afterBlock = true
	}

	flushFree()
	return parts
}

// splitItems separates a block's content into leading free text and
// name/description item pairs. Descriptions are trimmed of surrounding
// whitespace.
func splitItems(content string) (string, []Item) {
	locs := itemRe.FindAllStringSubmatchIndex(content, -1)
	if locs == nil {
		return strings.TrimSpace(content), nil
	}

	text := strings.TrimSpace(content[:locs[0][0]])

	items := make([]Item, 0, len(locs))
	for i, loc := range locs {
		name := content[loc[2]:loc[3]]
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		items = append(items, Item{
			Name:        name,
			Description: strings.TrimSpace(content[loc[1]:end]),
		})
	}

	return text, items
}

// dedent strips the longest common leading whitespace from every non-blank
// line.
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
