package page

import (
	"regexp"
	"strings"

	"github.com/matzehuels/docmill/pkg/docstring"
	"github.com/matzehuels/docmill/pkg/errors"
	"github.com/matzehuels/docmill/pkg/signature"
	"github.com/matzehuels/docmill/pkg/symbol"
)

// Build constructs the documentation page for one symbol.
//
// The page is built under the symbol's main name; aliases are recorded on
// the page. Only modules, classes, and callables own pages; any other kind
// reports UNSUPPORTED_KIND.
func Build(fullName string, obj *symbol.Object, cfg *Config) (Page, error) {
	mainName := cfg.Index.MainName(fullName)

	var aliases []string
	for _, name := range cfg.Index.Duplicates[mainName] {
		if name != mainName {
			aliases = append(aliases, name)
		}
	}

	var p Page
	switch obj.Kind {
	case symbol.KindClass:
		p = &ClassPage{
			PageInfo:         PageInfo{FullName: mainName, Object: obj},
			namedtupleFields: newOrderedItems(),
			properties:       newOrderedItems(),
		}
	case symbol.KindCallable:
		p = &FunctionPage{PageInfo: PageInfo{FullName: mainName, Object: obj}}
	case symbol.KindModule:
		p = &ModulePage{PageInfo: PageInfo{FullName: mainName, Object: obj}}
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedKind, "cannot make docs for %s: kind %s", fullName, obj.Kind)
	}

	info := p.Info()
	if err := info.SetDoc(cfg.ParseDoc(obj)); err != nil {
		return nil, err
	}
	if err := info.SetAliases(aliases); err != nil {
		return nil, err
	}

	var err error
	switch pg := p.(type) {
	case *FunctionPage:
		err = pg.collect(cfg)
	case *ClassPage:
		err = pg.collect(cfg)
	case *ModulePage:
		err = pg.collect(cfg)
	}
	if err != nil {
		return nil, err
	}

	if err := info.SetDefinedIn(cfg.DefinedIn(obj)); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *FunctionPage) collect(cfg *Config) error {
	p.Signature = signature.Generate(p.Object)
	p.Decorators = extractDecorators(p.Object)
	return nil
}

// extractDecorators recovers decorator names from the object's source text.
// Missing or unparseable source yields no decorators.
func extractDecorators(obj *symbol.Object) []string {
	if obj.Source == nil || obj.Source.Text == "" {
		return nil
	}
	info, err := signature.Analyze(obj.Source.Text)
	if err != nil {
		return nil
	}
	return info.Decorators
}

// aliasFieldRe matches the useless docstring namedtuple gives its field
// accessors.
var aliasFieldRe = regexp.MustCompile(`^Alias for field number [0-9]+`)

func (p *ClassPage) collect(cfg *Config) error {
	relPath := cfg.RelativePathToRoot(p.FullName)

	if err := p.setBases(relPath, cfg); err != nil {
		return err
	}

	for _, name := range p.Object.TupleFields {
		p.namedtupleFields.set(name, "")
	}

	for _, shortName := range cfg.Index.Tree[p.FullName] {
		childFullName := p.FullName + "." + shortName
		child, ok := cfg.Index.Objects[childFullName]
		if !ok {
			continue
		}

		defining := definingClass(p.Object, shortName)
		if defining != nil && defining.Builtin {
			continue
		}
		if cfg.Annotations.ShouldSkipClassAttr(p.Object, shortName) {
			continue
		}

		url, err := cfg.Resolver.ReferenceToPath(childFullName, relPath)
		if err != nil {
			return err
		}
		member := MemberInfo{
			ShortName: shortName,
			FullName:  childFullName,
			Object:    child,
			Doc:       cfg.ParseDoc(child),
			URL:       url,
		}

		switch child.Kind {
		case symbol.KindProperty:
			p.addProperty(member)
		case symbol.KindClass:
			if defining != nil {
				p.Classes = append(p.Classes, member)
			}
		case symbol.KindCallable:
			p.addMethod(member, defining, cfg)
		case symbol.KindOther:
			p.OtherMembers = append(p.OtherMembers, member)
		}
	}

	p.AttrBlock = p.mergeAttributes()
	return nil
}

// setBases records the class's documented ancestors, in MRO order, skipping
// ancestors absent from the index.
func (p *ClassPage) setBases(relPath string, cfg *Config) error {
	for _, base := range p.Object.MRO {
		baseName, ok := cfg.Index.ReverseIndex[base]
		if !ok {
			continue
		}
		url, err := cfg.Resolver.ReferenceToPath(baseName, relPath)
		if err != nil {
			return err
		}
		p.Bases = append(p.Bases, MemberInfo{
			ShortName: symbol.ShortName(baseName),
			FullName:  baseName,
			Object:    base,
			Doc:       cfg.ParseDoc(base),
			URL:       url,
		})
	}
	return nil
}

// addProperty records a property description for the attribute block.
// Namedtuple accessor docstrings are blanked; Args/Returns-style blocks are
// stripped because the description lands inside a table cell.
func (p *ClassPage) addProperty(member MemberInfo) {
	doc := member.Doc
	if aliasFieldRe.MatchString(doc.Brief) {
		doc = docstring.Parsed{}
	}

	parts := []string{indentLines(doc.Brief, "  ")}
	for _, part := range doc.Parts {
		if text, ok := part.(docstring.Text); ok {
			parts = append(parts, indentLines(string(text), "  "))
		}
	}
	parts = append(parts, "")
	desc := strings.Join(parts, "\n")

	if p.namedtupleFields.has(member.ShortName) {
		p.namedtupleFields.set(member.ShortName, desc)
	} else {
		p.properties.set(member.ShortName, desc)
	}
}

func (p *ClassPage) addMethod(member MemberInfo, defining *symbol.Object, cfg *Config) {
	if defining == nil {
		return
	}

	// Commonly overridden without documentation; obvious enough to omit.
	if strings.TrimSpace(member.Doc.Brief) == "" &&
		(member.ShortName == "__del__" || member.ShortName == "__copy__") {
		return
	}

	// Dataclass constructors are generated and have no retrievable source,
	// so the class itself supplies the signature.
	sigObj := member.Object
	if p.Object.Dataclass && member.ShortName == "__init__" {
		sigObj = p.Object
	}

	p.Methods = append(p.Methods, MethodInfo{
		MemberInfo: member,
		Signature:  signature.Generate(sigObj),
		Decorators: extractDecorators(member.Object),
		DefinedIn:  cfg.DefinedIn(member.Object),
	})
}

// mergeAttributes synthesizes the attribute block and removes any declared
// "Attributes:" block from the docstring parts.
//
// Merge order, first writer wins per key: namedtuple fields, the declared
// doc block, property descriptions, dataclass field placeholders. A doc
// block entry replaces an empty namedtuple placeholder without changing
// its position.
func (p *ClassPage) mergeAttributes() *docstring.TitleBlock {
	attrs := newOrderedItems()
	for _, item := range p.namedtupleFields.items() {
		attrs.set(item.Name, item.Description)
	}

	var remaining []docstring.Part
	found := false
	for _, part := range p.doc.Parts {
		block, ok := part.(*docstring.TitleBlock)
		if ok && !found && strings.HasPrefix(block.Title, "Attr") {
			found = true
			for _, item := range block.Items {
				attrs.set(item.Name, item.Description)
			}
			continue
		}
		remaining = append(remaining, part)
	}
	p.replaceDocParts(remaining)

	for _, item := range p.properties.items() {
		attrs.setDefault(item.Name, item.Description)
	}
	if p.Object.Dataclass {
		for _, name := range p.Object.DataclassFields {
			if !strings.HasPrefix(name, "_") {
				attrs.setDefault(name, "Dataclass field")
			}
		}
	}

	items := attrs.items()
	if len(items) == 0 {
		return nil
	}
	return &docstring.TitleBlock{Title: "Attributes", Items: items}
}

// moduleMemberDenylist names import machinery and compatibility flags that
// never appear on a module page.
var moduleMemberDenylist = map[string]bool{
	"__builtins__":     true,
	"__doc__":          true,
	"__file__":         true,
	"__name__":         true,
	"__path__":         true,
	"__package__":      true,
	"__cached__":       true,
	"__loader__":       true,
	"__spec__":         true,
	"absolute_import":  true,
	"division":         true,
	"print_function":   true,
	"unicode_literals": true,
}

func (p *ModulePage) collect(cfg *Config) error {
	relPath := cfg.RelativePathToRoot(p.FullName)

	for _, shortName := range cfg.Index.Tree[p.FullName] {
		if moduleMemberDenylist[shortName] {
			continue
		}

		memberFullName := p.FullName + "." + shortName
		member, ok := cfg.Index.Objects[memberFullName]
		if !ok {
			continue
		}

		url, err := cfg.Resolver.ReferenceToPath(memberFullName, relPath)
		if err != nil {
			return err
		}
		info := MemberInfo{
			ShortName: shortName,
			FullName:  memberFullName,
			Object:    member,
			Doc:       cfg.ParseDoc(member),
			URL:       url,
		}

		switch member.Kind {
		case symbol.KindModule:
			p.Modules = append(p.Modules, info)
		case symbol.KindClass:
			p.Classes = append(p.Classes, info)
		case symbol.KindCallable:
			p.Functions = append(p.Functions, info)
		default:
			p.OtherMembers = append(p.OtherMembers, info)
		}
	}
	return nil
}

// definingClass returns the closest class in the MRO, the class itself
// included, that defines the named member. Nil when no class defines it.
func definingClass(class *symbol.Object, name string) *symbol.Object {
	if class.Child(name) != nil {
		return class
	}
	for _, base := range class.MRO {
		if base.Child(name) != nil {
			return base
		}
	}
	return nil
}

// indentLines prefixes every non-empty line with prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
