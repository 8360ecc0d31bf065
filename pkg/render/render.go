// Package render turns built documentation pages into Markdown.
//
// Rendering is a pure function of the page: all lookups, filtering, and
// docstring parsing happen during page construction, so two renders of the
// same page always produce identical output.
package render

import (
	"sort"
	"strings"

	"github.com/matzehuels/docmill/pkg/docstring"
	"github.com/matzehuels/docmill/pkg/errors"
	"github.com/matzehuels/docmill/pkg/page"
	"github.com/matzehuels/docmill/pkg/signature"
	"github.com/matzehuels/docmill/pkg/symbol"
)

// decoratorAllowlist names the decorators worth showing in signature code
// blocks. Everything else (caching wrappers, logging shims) is noise.
var decoratorAllowlist = map[string]bool{
	"classmethod":               true,
	"staticmethod":              true,
	"contextlib.contextmanager": true,
	"abc.abstractmethod":        true,
	"types.method":              true,
}

// Renderer renders pages to Markdown. Annotations supplies custom page
// content that replaces or extends the generated body.
type Renderer struct {
	Annotations *symbol.Annotations
}

// Render returns the Markdown document for a page.
func (r *Renderer) Render(p page.Page) (string, error) {
	switch pg := p.(type) {
	case *page.FunctionPage:
		return r.renderFunction(pg), nil
	case *page.ClassPage:
		return r.renderClass(pg), nil
	case *page.ModulePage:
		return r.renderModule(pg), nil
	default:
		return "", errors.New(errors.ErrCodeUnsupportedKind, "unknown page type %T", p)
	}
}

func (r *Renderer) renderFunction(p *page.FunctionPage) string {
	var sb strings.Builder
	sb.WriteString("# " + p.ShortName() + "\n\n")
	sb.WriteString(topSourceLink(p.DefinedIn()))
	sb.WriteString("\n\n")
	sb.WriteString(p.Doc().Brief + "\n\n")

	sb.WriteString(signatureBlock(p.ShortName(), p.Signature, p.Decorators))
	sb.WriteString("\n\n")

	for _, part := range p.Doc().Parts {
		sb.WriteString(formatPart(part))
	}

	if content, ok := r.Annotations.PageContent(p.Object); ok {
		sb.WriteString(content)
	}
	return sb.String()
}

func (r *Renderer) renderClass(p *page.ClassPage) string {
	var sb strings.Builder
	sb.WriteString("# " + p.ShortName() + "\n\n")
	sb.WriteString(topSourceLink(p.DefinedIn()))
	sb.WriteString("\n\n")
	sb.WriteString(p.Doc().Brief + "\n\n")

	if len(p.Bases) > 0 {
		links := make([]string, len(p.Bases))
		for i, base := range p.Bases {
			links[i] = "[`" + base.ShortName + "`](" + base.URL + ")"
		}
		sb.WriteString("Inherits From: " + strings.Join(links, ", ") + "\n\n")
	}

	ctor, others := splitMethods(p.Methods)

	if ctor != nil {
		sb.WriteString(signatureBlock(p.ShortName(), ctor.Signature, ctor.Decorators))
		sb.WriteString("\n\n")
	}

	for _, part := range mergeConstructorBlocks(p.Doc().Parts, ctor) {
		sb.WriteString(formatPart(part))
	}
	sb.WriteString("\n\n")

	if content, ok := r.Annotations.PageContent(p.Object); ok {
		sb.WriteString(content)
		return sb.String()
	}

	if p.AttrBlock != nil {
		sb.WriteString(tableView(p.AttrBlock))
		sb.WriteString("\n\n")
	}

	if len(p.Classes) > 0 {
		sb.WriteString("## Child Classes\n")
		links := make([]string, len(p.Classes))
		for i, class := range p.Classes {
			links[i] = "[`class " + class.ShortName + "`](" + class.URL + ")\n\n"
		}
		sort.Strings(links)
		for _, link := range links {
			sb.WriteString(link)
		}
	}

	if len(others) > 0 {
		sb.WriteString("## Methods\n\n")
		sortMethods(others)
		for _, method := range others {
			sb.WriteString(methodSection(method))
		}
		sb.WriteString("\n\n")
	}

	if len(p.OtherMembers) > 0 {
		sb.WriteString(otherMembers(p.OtherMembers, "Class Variables"))
	}
	return sb.String()
}

func (r *Renderer) renderModule(p *page.ModulePage) string {
	var sb strings.Builder
	sb.WriteString("# " + p.ShortName() + "\n\n")
	sb.WriteString("<!-- Insert buttons and diff -->\n")
	sb.WriteString(topSourceLink(p.DefinedIn()))
	sb.WriteString("\n\n")
	sb.WriteString(p.Doc().Brief + "\n\n")

	for _, part := range p.Doc().Parts {
		sb.WriteString(formatPart(part))
	}
	sb.WriteString("\n\n")

	if content, ok := r.Annotations.PageContent(p.Object); ok {
		sb.WriteString(content)
		return sb.String()
	}

	if len(p.Modules) > 0 {
		sb.WriteString("## Modules\n\n")
		writeModuleParts(&sb, p.Modules, moduleLink, true)
	}
	if len(p.Classes) > 0 {
		sb.WriteString("## Classes\n\n")
		writeModuleParts(&sb, p.Classes, classLink, false)
	}
	if len(p.Functions) > 0 {
		sb.WriteString("## Functions\n\n")
		writeModuleParts(&sb, p.Functions, functionLink, false)
	}
	if len(p.OtherMembers) > 0 {
		sb.WriteString(otherMembers(p.OtherMembers, "Other Members"))
	}
	return sb.String()
}

func moduleLink(m page.MemberInfo, url string) string {
	return "[`" + m.ShortName + "`](" + url + ") module"
}

func classLink(m page.MemberInfo, url string) string {
	return "[`class " + m.ShortName + "`](" + url + ")"
}

func functionLink(m page.MemberInfo, url string) string {
	return "[`" + m.ShortName + "(...)`](" + url + ")"
}

// writeModuleParts writes one link line per member. Links are relative to
// the module page's own directory, so the URL collapses to its lowercased
// last segment; module links additionally drop the .md extension because
// submodule pages live in subdirectories.
func writeModuleParts(sb *strings.Builder, members []page.MemberInfo, link func(page.MemberInfo, string) string, module bool) {
	for _, m := range members {
		segments := strings.Split(m.URL, "/")
		url := "./" + strings.ToLower(segments[len(segments)-1])
		if module {
			url = strings.ReplaceAll(url, ".md", "")
		}
		sb.WriteString(link(m, url))
		if m.Doc.Brief != "" {
			sb.WriteString(": " + m.Doc.Brief)
		}
		sb.WriteString("\n\n")
	}
}

// splitMethods separates a class's constructor from its remaining methods.
// When both __init__ and __new__ exist, __init__ is documented.
func splitMethods(methods []page.MethodInfo) (*page.MethodInfo, []page.MethodInfo) {
	var ctor *page.MethodInfo
	var newCtor *page.MethodInfo
	var others []page.MethodInfo

	for i := range methods {
		switch methods[i].ShortName {
		case "__init__":
			ctor = &methods[i]
		case "__new__":
			newCtor = &methods[i]
		default:
			others = append(others, methods[i])
		}
	}
	if ctor == nil {
		ctor = newCtor
	}
	return ctor, others
}

// mergeConstructorBlocks lifts the constructor's Args, Arguments, and Raises
// blocks into the class docstring, unless the class already declares a block
// with a matching title. Args and Arguments count as the same title.
func mergeConstructorBlocks(classParts []docstring.Part, ctor *page.MethodInfo) []docstring.Part {
	merged := append([]docstring.Part(nil), classParts...)
	if ctor == nil {
		return merged
	}

	var existing []string
	for _, part := range classParts {
		block, ok := part.(*docstring.TitleBlock)
		if !ok {
			continue
		}
		title := block.Title
		if strings.HasPrefix(title, "Args") || strings.HasPrefix(title, "Arguments") {
			title = "Arg"
		}
		existing = append(existing, title)
	}

	for _, part := range ctor.Doc.Parts {
		block, ok := part.(*docstring.TitleBlock)
		if !ok {
			continue
		}
		if !strings.HasPrefix(block.Title, "Args") &&
			!strings.HasPrefix(block.Title, "Arguments") &&
			!strings.HasPrefix(block.Title, "Raises") {
			continue
		}
		covered := false
		for _, title := range existing {
			if strings.HasPrefix(block.Title, title) {
				covered = true
				break
			}
		}
		if !covered {
			merged = append(merged, block)
		}
	}
	return merged
}

// sortMethods orders method sections: public methods first, dunders next,
// private methods last. Names sort alphabetically within a tier.
func sortMethods(methods []page.MethodInfo) {
	sort.SliceStable(methods, func(i, j int) bool {
		ti, tj := methodTier(methods[i].ShortName), methodTier(methods[j].ShortName)
		if ti != tj {
			return ti < tj
		}
		return methods[i].ShortName < methods[j].ShortName
	})
}

func methodTier(name string) int {
	if strings.HasPrefix(name, "__") {
		return 1
	}
	if strings.HasPrefix(name, "_") {
		return 2
	}
	return -1
}

func methodSection(m page.MethodInfo) string {
	var sb strings.Builder
	sb.WriteString("### `" + m.ShortName + "`\n\n")

	if m.DefinedIn != nil {
		sb.WriteString(smallSourceLink(m.DefinedIn))
	}
	sb.WriteString(signatureBlock(m.ShortName, m.Signature, m.Decorators))
	sb.WriteString(m.Doc.Brief + "\n")

	for _, part := range m.Doc.Parts {
		sb.WriteString(formatPart(part))
	}
	sb.WriteString("\n\n")
	return sb.String()
}

// otherMembers renders members that are neither callables, classes, nor
// modules as a single table, one row per member with its full docstring as
// the description.
func otherMembers(members []page.MemberInfo, title string) string {
	var items strings.Builder
	for _, m := range members {
		description := []string{m.Doc.Brief}
		for _, part := range m.Doc.Parts {
			if block, ok := part.(*docstring.TitleBlock); ok {
				description = append(description, listView(block))
			} else if text, ok := part.(docstring.Text); ok {
				description = append(description, string(text))
			}
		}
		items.WriteString("<tr>\n<td>\n`" + m.ShortName + "`" +
			"<a id=\"" + m.ShortName + "\"></a>\n</td>\n<td>\n" +
			strings.Join(description, "\n") + "\n</td>\n</tr>")
	}

	return "\n\n<!-- Tabular view -->\n<table>\n<tr><th>" + title + "</th></tr>\n" +
		"\n" + items.String() + "\n</table>\n\n"
}

// signatureBlock renders a fenced code block with the callable's allowlisted
// decorators and its wrapped signature.
func signatureBlock(name string, sig signature.Components, decorators []string) string {
	var sb strings.Builder
	sb.WriteString("```python\n")
	for _, dec := range decorators {
		if decoratorAllowlist[dec] {
			sb.WriteString("@" + dec + "\n")
		}
	}
	sb.WriteString(name + sig.String() + "\n")
	sb.WriteString("```\n\n")
	return sb.String()
}

// topSourceLink renders the page-header source link: a CTA button for GitHub
// URLs, a plain "View source" link otherwise.
func topSourceLink(location *page.FileLocation) string {
	content := ""
	footer := ""
	if location != nil && location.URL != "" {
		if strings.Contains(location.URL, "github.com") {
			content = "{{< cta-button githubLink=\"" + location.URL + "\" >}}"
		} else {
			footer = smallSourceLink(location)
		}
	}
	return "\n\n" + content + "\n\n" + footer
}

func smallSourceLink(location *page.FileLocation) string {
	if location.URL == "" {
		return ""
	}
	return "[View source](" + location.URL + ")\n\n"
}
