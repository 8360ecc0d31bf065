package generate

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/docmill/pkg/errors"
	"github.com/matzehuels/docmill/pkg/reference"
	"github.com/matzehuels/docmill/pkg/symbol"
	"github.com/matzehuels/docmill/pkg/traverse"
)

// tocEntry is one _toc.yaml node. Field order matters: the sidebar file
// is diffed by humans, so title comes first and status sits between the
// title and the target.
type tocEntry struct {
	Title   string     `yaml:"title"`
	Status  string     `yaml:"status,omitempty"`
	Path    string     `yaml:"path,omitempty"`
	Section []tocEntry `yaml:"section,omitempty"`
}

type tocFile struct {
	Toc []tocEntry `yaml:"toc"`
}

// marshalTOC serializes the sidebar document.
func marshalTOC(entries []tocEntry) ([]byte, error) {
	data, err := yaml.Marshal(tocFile{Toc: entries})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize _toc.yaml")
	}
	return data, nil
}

// tocModule gathers one documented module, its page-owning children, and
// its nested submodules before the sidebar tree is emitted.
type tocModule struct {
	fullName   string
	path       string
	deprecated bool
	children   []tocChild
	submodules []*tocModule
}

type tocChild struct {
	fullName   string
	title      string
	path       string
	deprecated bool
}

// title is the module's sidebar label: nested modules show only their
// last segment, top-level modules their full dotted name.
func (m *tocModule) title() string {
	if strings.Count(m.fullName, ".") > 1 {
		parts := strings.Split(m.fullName, ".")
		return parts[len(parts)-1]
	}
	return m.fullName
}

func (m *tocModule) experimental() bool {
	return strings.Contains(symbol.ShortName(m.fullName), "experimental")
}

func (c *tocChild) experimental() bool {
	return strings.Contains(symbol.ShortName(c.fullName), "experimental")
}

// buildTOC assembles the nested sidebar structure: one section per
// module, an Overview entry first, page-owning children after, and
// submodule sections nested below.
//
// Deprecation propagates downward: a child or submodule only carries its
// own "deprecated" status when no ancestor already carries it, because a
// deprecated parent already grays out its whole subtree.
func buildTOC(idx *traverse.Index, resolver *reference.Resolver, ann *symbol.Annotations, sitePath string) []tocEntry {
	modules := make(map[string]*tocModule)

	pagePath := func(fullName string) string {
		return "/" + sitePath + "/" + strings.TrimSuffix(resolver.DocPath(fullName), ".md")
	}

	names := pageNames(idx, resolver)
	for _, name := range names {
		obj := idx.Objects[name]
		if obj.Kind == symbol.KindModule {
			if _, inTree := idx.Tree[name]; inTree {
				modules[name] = &tocModule{
					fullName:   name,
					path:       pagePath(name),
					deprecated: ann.Has(obj, symbol.FlagDeprecated),
				}
			}
		}
	}

	// Attach every non-module page to its nearest enclosing module.
	for _, name := range names {
		obj := idx.Objects[name]
		if obj.Kind == symbol.KindModule {
			continue
		}
		parent := enclosingModule(name, idx)
		mod, ok := modules[parent]
		if !ok {
			continue
		}
		mod.children = append(mod.children, tocChild{
			fullName:   name,
			title:      strings.TrimPrefix(name, parent+"."),
			path:       pagePath(name),
			deprecated: ann.Has(obj, symbol.FlagDeprecated),
		})
	}

	// Wire submodules under their parents; modules whose parent module is
	// not documented become top-level sections.
	moduleNames := make([]string, 0, len(modules))
	for name := range modules {
		moduleNames = append(moduleNames, name)
	}
	sortCaseInsensitive(moduleNames)

	var baseNames []string
	for _, name := range moduleNames {
		if strings.Count(name, ".") > 1 {
			if parent, ok := modules[symbol.ParentName(name)]; ok {
				parent.submodules = append(parent.submodules, modules[name])
				continue
			}
		}
		baseNames = append(baseNames, name)
	}

	visited := make(map[string]bool)
	toc := make([]tocEntry, 0, len(baseNames))
	for _, name := range baseNames {
		mod := modules[name]
		section := tocChildren(mod, mod.deprecated)
		for _, sub := range mod.submodules {
			section = append(section, tocSection(sub, visited, mod.deprecated))
		}

		entry := tocEntry{Title: mod.title(), Section: section}
		if mod.deprecated {
			entry.Status = "deprecated"
		} else if mod.experimental() {
			entry.Status = "experimental"
		}
		toc = append(toc, entry)
	}
	return toc
}

// tocChildren lists a module's own entries: the Overview link followed by
// its page-owning children sorted by full name.
func tocChildren(mod *tocModule, parentDeprecated bool) []tocEntry {
	sort.Slice(mod.children, func(i, j int) bool {
		return mod.children[i].fullName < mod.children[j].fullName
	})

	entries := []tocEntry{{Title: "Overview", Path: mod.path}}
	for _, child := range mod.children {
		entry := tocEntry{Title: child.title, Path: child.path}
		if child.deprecated && !parentDeprecated {
			entry.Status = "deprecated"
		} else if child.experimental() {
			entry.Status = "experimental"
		}
		entries = append(entries, entry)
	}
	return entries
}

// tocSection recursively emits one submodule section.
func tocSection(mod *tocModule, visited map[string]bool, parentDeprecated bool) tocEntry {
	visited[mod.fullName] = true

	section := tocChildren(mod, parentDeprecated || mod.deprecated)
	for _, sub := range mod.submodules {
		if !visited[sub.fullName] {
			section = append(section, tocSection(sub, visited, parentDeprecated || mod.deprecated))
		}
	}

	entry := tocEntry{Title: mod.title(), Section: section}
	if mod.deprecated && !parentDeprecated {
		entry.Status = "deprecated"
	} else if mod.experimental() {
		entry.Status = "experimental"
	}
	return entry
}

// enclosingModule walks up the dotted name until it finds a module,
// resolving aliased parents to their main name.
func enclosingModule(fullName string, idx *traverse.Index) string {
	name := fullName
	for strings.Contains(name, ".") {
		name = symbol.ParentName(name)
		if obj, ok := idx.Objects[name]; ok && obj.Kind == symbol.KindModule {
			return idx.MainName(name)
		}
	}
	return name
}

// sortCaseInsensitive sorts names alphabetically ignoring case, with the
// original spelling as the tie-break.
func sortCaseInsensitive(names []string) {
	sort.Slice(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
}
