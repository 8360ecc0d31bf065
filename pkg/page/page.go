// Package page aggregates everything one documentation page needs: parsed
// docstring, signature, members, bases, and attribute blocks. Builders own
// construction; the renderer only reads the result.
package page

import (
	"strings"

	"github.com/matzehuels/docmill/pkg/docstring"
	"github.com/matzehuels/docmill/pkg/errors"
	"github.com/matzehuels/docmill/pkg/signature"
	"github.com/matzehuels/docmill/pkg/symbol"
)

// FileLocation points at the source region a symbol was defined in.
type FileLocation struct {
	URL       string
	StartLine int
	EndLine   int
}

// MemberInfo is a lightweight cross-reference record for one member of a
// class or module page. Built fresh per page, never cached.
type MemberInfo struct {
	ShortName string
	FullName  string
	Object    *symbol.Object
	Doc       docstring.Parsed
	URL       string
}

// MethodInfo extends MemberInfo with the data a method section renders.
type MethodInfo struct {
	MemberInfo
	Signature  signature.Components
	Decorators []string
	DefinedIn  *FileLocation
}

// PageInfo is the common state of every documentation page. The doc,
// defined-in, and aliases fields are write-once: a second set reports an
// ALREADY_SET error, which indicates a builder invocation bug.
type PageInfo struct {
	FullName string
	Object   *symbol.Object

	definedIn    *FileLocation
	definedInSet bool
	aliases      []string
	aliasesSet   bool
	doc          docstring.Parsed
	docSet       bool
}

// ShortName returns the last dotted segment of the full name.
func (p *PageInfo) ShortName() string {
	parts := strings.Split(p.FullName, ".")
	return parts[len(parts)-1]
}

// Doc returns the parsed docstring.
func (p *PageInfo) Doc() docstring.Parsed { return p.doc }

// SetDoc sets the parsed docstring, once.
func (p *PageInfo) SetDoc(doc docstring.Parsed) error {
	if p.docSet {
		return errors.New(errors.ErrCodeAlreadySet, "doc already set for %s", p.FullName)
	}
	p.doc = doc
	p.docSet = true
	return nil
}

// replaceDocParts swaps the docstring parts in place. Used by the class
// builder when lifting constructor blocks and extracting the attribute
// block; it is not a second SetDoc.
func (p *PageInfo) replaceDocParts(parts []docstring.Part) {
	p.doc.Parts = parts
}

// DefinedIn returns the source location, or nil when unknown.
func (p *PageInfo) DefinedIn() *FileLocation { return p.definedIn }

// SetDefinedIn sets the source location, once. A nil location is recorded
// as "unknown" and still counts as the one write.
func (p *PageInfo) SetDefinedIn(loc *FileLocation) error {
	if p.definedInSet {
		return errors.New(errors.ErrCodeAlreadySet, "defined_in already set for %s", p.FullName)
	}
	p.definedIn = loc
	p.definedInSet = true
	return nil
}

// Aliases returns the alternate full names for this page's object.
func (p *PageInfo) Aliases() []string { return p.aliases }

// SetAliases sets the alias list, once.
func (p *PageInfo) SetAliases(aliases []string) error {
	if p.aliasesSet {
		return errors.New(errors.ErrCodeAlreadySet, "aliases already set for %s", p.FullName)
	}
	p.aliases = aliases
	p.aliasesSet = true
	return nil
}

// Page is a fully built documentation page of one of the three kinds.
type Page interface {
	Info() *PageInfo
}

// FunctionPage documents a free function or unbound callable.
type FunctionPage struct {
	PageInfo
	Signature  signature.Components
	Decorators []string
}

func (p *FunctionPage) Info() *PageInfo { return &p.PageInfo }

// ClassPage documents a class: bases, methods, nested classes, other
// members, and the synthesized attribute block.
type ClassPage struct {
	PageInfo
	Bases        []MemberInfo
	Methods      []MethodInfo
	Classes      []MemberInfo
	OtherMembers []MemberInfo

	// AttrBlock merges namedtuple fields, the declared "Attributes:" doc
	// block, property descriptions, and dataclass placeholders. Nil when
	// the class has no attributes to document.
	AttrBlock *docstring.TitleBlock

	namedtupleFields *orderedItems
	properties       *orderedItems
}

func (p *ClassPage) Info() *PageInfo { return &p.PageInfo }

// ModulePage documents a module: its children classified by kind.
type ModulePage struct {
	PageInfo
	Modules      []MemberInfo
	Classes      []MemberInfo
	Functions    []MemberInfo
	OtherMembers []MemberInfo
}

func (p *ModulePage) Info() *PageInfo { return &p.PageInfo }

// orderedItems is an insertion-ordered name/description map. Overwrites
// keep the original position; setDefault never overwrites.
type orderedItems struct {
	names  []string
	values map[string]string
}

func newOrderedItems() *orderedItems {
	return &orderedItems{values: make(map[string]string)}
}

func (o *orderedItems) set(name, desc string) {
	if _, ok := o.values[name]; !ok {
		o.names = append(o.names, name)
	}
	o.values[name] = desc
}

func (o *orderedItems) setDefault(name, desc string) {
	if _, ok := o.values[name]; ok {
		return
	}
	o.names = append(o.names, name)
	o.values[name] = desc
}

func (o *orderedItems) has(name string) bool {
	_, ok := o.values[name]
	return ok
}

func (o *orderedItems) items() []docstring.Item {
	out := make([]docstring.Item, 0, len(o.names))
	for _, name := range o.names {
		out = append(out, docstring.Item{Name: name, Description: o.values[name]})
	}
	return out
}
