package symbol

// Flag is a doc-visibility marker attached to a symbol.
//
// Flags are carried out-of-band in an Annotations map rather than on the
// objects themselves, so a configuration pass can mark symbols before
// traversal without mutating the graph.
type Flag int

const (
	// FlagSkip excludes a symbol from documentation entirely.
	FlagSkip Flag = iota

	// FlagSkipInheritable excludes a class attribute from every subclass,
	// unless a closer definition carries FlagDocInCurrentAndSubclasses.
	FlagSkipInheritable

	// FlagForSubclassImplementers documents an attribute only on its
	// defining class, never on subclasses. No override applies.
	FlagForSubclassImplementers

	// FlagDocPrivate documents an underscore-prefixed name that the
	// public-API filter would otherwise drop.
	FlagDocPrivate

	// FlagDocInCurrentAndSubclasses overrides an inherited
	// FlagSkipInheritable for the marked definition and its subclasses.
	FlagDocInCurrentAndSubclasses

	// FlagDeprecated marks a symbol as deprecated in the sidebar and page
	// header.
	FlagDeprecated
)

// Annotations maps symbol identity to visibility flags and custom content.
// A nil *Annotations behaves as an empty map on all read methods.
type Annotations struct {
	flags  map[*Object]map[Flag]bool
	custom map[*Object]string
}

// NewAnnotations creates an empty annotation map.
func NewAnnotations() *Annotations {
	return &Annotations{
		flags:  make(map[*Object]map[Flag]bool),
		custom: make(map[*Object]string),
	}
}

// Set attaches a flag to a symbol.
func (a *Annotations) Set(obj *Object, flag Flag) {
	if a.flags[obj] == nil {
		a.flags[obj] = make(map[Flag]bool)
	}
	a.flags[obj][flag] = true
}

// Has reports whether a symbol carries the given flag.
func (a *Annotations) Has(obj *Object, flag Flag) bool {
	if a == nil || obj == nil {
		return false
	}
	return a.flags[obj][flag]
}

// SetPageContent attaches custom page content that replaces the structural
// body of the symbol's rendered page.
func (a *Annotations) SetPageContent(obj *Object, content string) {
	a.custom[obj] = content
}

// PageContent returns custom page content for a symbol, if set.
func (a *Annotations) PageContent(obj *Object) (string, bool) {
	if a == nil {
		return "", false
	}
	content, ok := a.custom[obj]
	return content, ok
}

// attrDef is one definition of a class attribute along the MRO.
type attrDef struct {
	owner *Object
	obj   *Object
}

// attrDefs collects every definition of name along class's MRO,
// closest (the class itself) first.
func attrDefs(class *Object, name string) []attrDef {
	var defs []attrDef
	if obj := class.Child(name); obj != nil {
		defs = append(defs, attrDef{owner: class, obj: obj})
	}
	for _, ancestor := range class.MRO {
		if obj := ancestor.Child(name); obj != nil {
			defs = append(defs, attrDef{owner: ancestor, obj: obj})
		}
	}
	return defs
}

// ShouldSkipClassAttr reports whether the named attribute of class should be
// left undocumented.
//
// Rules, in order:
//   - An attribute with no definition anywhere along the MRO is skipped.
//   - An attribute whose closest definition carries FlagSkip is skipped.
//   - An attribute whose closest definition lives on a builtin/opaque base
//     is skipped.
//   - An ancestor definition carrying FlagForSubclassImplementers skips the
//     attribute on every class except the defining one, regardless of any
//     override.
//   - An ancestor definition carrying FlagSkipInheritable skips the
//     attribute unless a closer definition carries
//     FlagDocInCurrentAndSubclasses.
func (a *Annotations) ShouldSkipClassAttr(class *Object, name string) bool {
	defs := attrDefs(class, name)
	if len(defs) == 0 {
		return true
	}

	closest := defs[0]
	if a.Has(closest.obj, FlagSkip) {
		return true
	}
	if closest.owner.Builtin {
		return true
	}

	for _, d := range defs {
		if d.owner != class && a.Has(d.obj, FlagForSubclassImplementers) {
			return true
		}
	}

	for i, d := range defs {
		if d.owner == class {
			continue
		}
		if !a.Has(d.obj, FlagSkipInheritable) {
			continue
		}
		overridden := false
		for _, closer := range defs[:i] {
			if a.Has(closer.obj, FlagDocInCurrentAndSubclasses) {
				overridden = true
				break
			}
		}
		if !overridden {
			return true
		}
	}

	return false
}
