// Package signature renders callable signatures from introspection data.
//
// Two inputs feed a signature: the runtime-level parameter list carried in
// the API snapshot, and a best-effort static analysis of the callable's
// source text (see Analyze) that recovers annotation and default-value
// source spelling. The static pass is expected to fail for builtins and
// generated code; the generator then degrades to the runtime repr data.
package signature

import (
	"html"
	"regexp"
	"strings"

	"github.com/matzehuels/docmill/pkg/symbol"
)

// Components holds the renderable parts of one callable signature.
type Components struct {
	// Arguments is the ordered rendered argument list, including the "/"
	// and "*" separators and the "*args"/"**kwargs" entries.
	Arguments []string

	// HasArgTypehints reports whether any argument carries a recovered
	// type annotation. Controls line wrapping in String.
	HasArgTypehints bool

	// HasReturnTypehint reports whether a static return annotation was
	// recovered.
	HasReturnTypehint bool

	// ReturnType is the rendered return type, "None" when unknown.
	ReturnType string
}

// String renders the signature as Python code.
// Arguments with no type annotations are wrapped to 80 columns; annotated
// argument lists keep one argument per line.
func (c Components) String() string {
	argsText := ""
	if len(c.Arguments) > 0 {
		joined := strings.Join(c.Arguments, ",\n")
		if !c.HasArgTypehints {
			joined = fill(joined, 80)
		}
		argsText = "\n" + indent(joined, "    ") + "\n"
	}

	full := "(" + argsText + ")"
	if c.HasReturnTypehint {
		full += " -> " + c.ReturnType
	}
	return full
}

// memoryAddressRe matches repr output of the form
// "<pkg.Type object at 0x7f...>". Addresses are stripped to avoid
// meaningless doc churn between runs.
var memoryAddressRe = regexp.MustCompile(`<(.+) object at 0x[\da-f]+>`)

// Generate builds signature components for a callable.
//
// Parameters are classified by kind, a leading self/cls parameter is
// skipped, and rendered in order: positional-only args then a "/" marker,
// required positional args, defaulted positional args, a "*" marker (only
// when no variadic positional parameter provides the separator), keyword-
// only args, "*name", and finally "**name". Annotation and default text
// prefer the static analysis result over the runtime repr.
func Generate(obj *symbol.Object) Components {
	var info *PartialInfo
	if obj.Source != nil && obj.Source.Text != "" {
		// Static analysis is best-effort: parse failures fall back to
		// runtime data silently.
		info, _ = Analyze(obj.Source.Text)
	}
	if info == nil {
		info = &PartialInfo{}
	}

	var posOnly, args, kwargs, onlyKwargs []symbol.Param
	var varargs *symbol.Param
	varargsIndex := -1
	var varkwargs *symbol.Param

	position := 0
	for i, param := range obj.Params {
		if i == 0 && (param.Name == "self" || param.Name == "cls" || param.Name == "_cls") {
			// Only skip the first parameter.
			continue
		}
		switch {
		case param.Kind == symbol.ParamPositionalOnly:
			posOnly = append(posOnly, param)
		case param.Kind == symbol.ParamPositional && !param.HasDefault:
			args = append(args, param)
		case param.Kind == symbol.ParamPositional && param.HasDefault:
			kwargs = append(kwargs, param)
		case param.Kind == symbol.ParamVarPositional:
			p := param
			varargs = &p
			varargsIndex = position
		case param.Kind == symbol.ParamKeywordOnly:
			onlyKwargs = append(onlyKwargs, param)
		case param.Kind == symbol.ParamVarKeyword:
			p := param
			varkwargs = &p
		}
		position++
	}

	var all []string

	if len(posOnly) > 0 {
		all = append(all, formatArgs(posOnly, info)...)
		all = append(all, "/")
	}

	all = append(all, formatArgs(args, info)...)
	all = append(all, formatKwargs(kwargs, info.ArgDefaults, info)...)

	if len(onlyKwargs) > 0 {
		if varargs == nil {
			all = append(all, "*")
		}
		all = append(all, formatKwargs(onlyKwargs, info.KwOnlyDefaults, info)...)
	}

	if varargs != nil {
		entry := "*" + varargs.Name
		if varargsIndex > len(all) {
			varargsIndex = len(all)
		}
		all = append(all[:varargsIndex], append([]string{entry}, all[varargsIndex:]...)...)
	}

	if varkwargs != nil {
		all = append(all, "**"+varkwargs.Name)
	}

	returnType := "None"
	if obj.Return != "" && info.Annotations["return"] != "" {
		returnType = info.Annotations["return"]
	}

	return Components{
		Arguments:         all,
		HasArgTypehints:   info.HasArgAnnotations,
		HasReturnTypehint: info.HasReturnAnnotation,
		ReturnType:        returnType,
	}
}

// formatArgs renders parameters without default values, adding recovered
// type annotations where available.
func formatArgs(params []symbol.Param, info *PartialInfo) []string {
	var out []string
	for _, param := range params {
		if anno, ok := info.Annotations[param.Name]; ok {
			out = append(out, param.Name+": "+anno)
		} else {
			out = append(out, param.Name)
		}
	}
	return out
}

// formatKwargs renders parameters with default values. Default text prefers
// the source literal recovered by the static pass over the runtime repr;
// memory-address reprs are normalized either way.
func formatKwargs(params []symbol.Param, staticDefaults []string, info *PartialInfo) []string {
	var out []string
	for i, param := range params {
		if !param.HasDefault {
			out = append(out, formatArgs([]symbol.Param{param}, info)...)
			continue
		}

		var defaultText string
		if i < len(staticDefaults) && staticDefaults[i] != "" {
			defaultText = staticDefaults[i]
		} else {
			defaultText = memoryAddressRe.ReplaceAllString(param.Default, "<$1>")
		}
		defaultText = html.EscapeString(defaultText)

		if anno, ok := info.Annotations[param.Name]; ok {
			out = append(out, param.Name+": "+anno+" = "+defaultText)
		} else {
			out = append(out, param.Name+"="+defaultText)
		}
	}
	return out
}

// fill rewraps text into lines of at most width characters, greedy on
// word boundaries.
func fill(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		if i == 0 {
			b.WriteString(word)
			lineLen = len(word)
			continue
		}
		if lineLen+1+len(word) > width {
			b.WriteString("\n")
			b.WriteString(word)
			lineLen = len(word)
		} else {
			b.WriteString(" ")
			b.WriteString(word)
			lineLen += 1 + len(word)
		}
	}
	return b.String()
}

// indent prefixes every non-empty line of text with prefix.
func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
