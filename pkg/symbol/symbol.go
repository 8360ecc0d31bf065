// Package symbol defines the object model for the documented API surface.
//
// Docmill does not introspect a live runtime. Instead, an external
// introspector dumps the library's public object graph into an API snapshot
// (see Load), and this package models that graph as a closed set of symbol
// kinds. Every downstream stage (traversal, page building, rendering)
// dispatches on Kind rather than probing runtime attributes.
//
// Object identity is pointer identity: two parents referencing the same
// *Object are aliases of one symbol. The traverser relies on this to build
// alias groups and to terminate on cyclic graphs.
package symbol

import "strings"

// Kind classifies a symbol for page building.
type Kind int

const (
	// KindOther covers constants, data members, and anything without a
	// dedicated page builder.
	KindOther Kind = iota

	// KindModule is a namespace with child members.
	KindModule

	// KindClass is a type with bases, methods, and attributes.
	KindClass

	// KindCallable is a free function, method, or other callable.
	KindCallable

	// KindProperty is a computed attribute documented on its owning class.
	KindProperty
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindClass:
		return "class"
	case KindCallable:
		return "callable"
	case KindProperty:
		return "property"
	default:
		return "other"
	}
}

// ParamKind classifies a callable parameter.
type ParamKind int

const (
	// ParamPositional is a normal positional-or-keyword parameter.
	ParamPositional ParamKind = iota

	// ParamPositionalOnly precedes a "/" marker in the signature.
	ParamPositionalOnly

	// ParamVarPositional is the "*args" parameter.
	ParamVarPositional

	// ParamKeywordOnly follows the "*" separator.
	ParamKeywordOnly

	// ParamVarKeyword is the "**kwargs" parameter.
	ParamVarKeyword
)

// Param describes one parameter as reported by the introspector.
// Annotation and Default carry runtime-level text (repr output); the static
// analyzer may later supply better source-level text for both.
type Param struct {
	Name       string
	Kind       ParamKind
	HasDefault bool
	Default    string // runtime repr of the default value
	Annotation string // runtime annotation text, empty if absent
}

// Source locates a symbol's definition in the library source tree.
// Text carries the raw definition snippet when the introspector could
// retrieve it; it feeds the static signature analyzer.
type Source struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Text      string `json:"text,omitempty"`
}

// Child is one named member edge in the object graph.
// Member order is the introspector's declaration order and is preserved.
type Child struct {
	Name   string
	Object *Object
}

// Object is one node in the documented object graph.
//
// Only kind-relevant fields are populated: Params and Return for callables,
// MRO and TupleFields for classes, Children for modules and classes.
type Object struct {
	Kind      Kind
	Docstring string
	Children  []Child

	// MRO is the linearized ancestor list for classes, most-derived first,
	// excluding the class itself.
	MRO []*Object

	// Callable data.
	Params []Param
	Return string // runtime return annotation text, empty if absent

	Source *Source

	// TupleFields is the ordered field list for named-tuple classes.
	TupleFields []string

	// DataclassFields is the ordered field list for dataclass classes.
	DataclassFields []string

	// Builtin marks opaque objects (builtins, extension types) whose
	// members are never documented.
	Builtin bool

	// Dataclass marks classes generated from dataclass definitions.
	Dataclass bool
}

// Child returns the member with the given short name, or nil.
func (o *Object) Child(name string) *Object {
	for _, c := range o.Children {
		if c.Name == name {
			return c.Object
		}
	}
	return nil
}

// HasChildren reports whether the object declares any members.
func (o *Object) HasChildren() bool {
	return len(o.Children) > 0
}

// ShortName returns the last dotted segment of a full name.
func ShortName(fullName string) string {
	if i := strings.LastIndex(fullName, "."); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}

// ParentName returns everything before the last dotted segment, or "".
func ParentName(fullName string) string {
	if i := strings.LastIndex(fullName, "."); i >= 0 {
		return fullName[:i]
	}
	return ""
}

// Join joins a parent full name and a child short name.
func Join(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
