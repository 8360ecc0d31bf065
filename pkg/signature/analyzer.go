package signature

import (
	"strings"

	"github.com/matzehuels/docmill/pkg/errors"
)

// PartialInfo is the result of statically analyzing a callable's source
// text. Every field may be empty: the analyzer recovers what it can and
// leaves the rest for runtime data.
type PartialInfo struct {
	// Annotations maps parameter names to their annotation source text.
	// The "return" key holds the return annotation.
	Annotations map[string]string

	// HasArgAnnotations reports whether at least one parameter is annotated.
	HasArgAnnotations bool

	// HasReturnAnnotation reports whether a return annotation is present.
	HasReturnAnnotation bool

	// ArgDefaults holds the default-value source text for defaulted
	// positional parameters, in declaration order.
	ArgDefaults []string

	// KwOnlyDefaults holds the default-value source text for defaulted
	// keyword-only parameters, in declaration order.
	KwOnlyDefaults []string

	// Decorators holds decorator names in source order, without the "@".
	Decorators []string
}

// Analyze extracts signature details from Python source text.
//
// The input is the source of a single "def" (annotations, default literals,
// decorators) or a "class" (dataclass-style annotated fields). Analysis is
// shallow by design: it reads the header only and never evaluates anything.
// Callers must treat failure as expected; builtins and dynamically created
// callables have no recoverable source.
func Analyze(source string) (*PartialInfo, error) {
	src := dedentSource(source)
	lines := strings.Split(src, "\n")

	info := &PartialInfo{Annotations: make(map[string]string)}

	defLine := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "@"):
			info.Decorators = append(info.Decorators, decoratorName(trimmed))
		case strings.HasPrefix(trimmed, "def ") || strings.HasPrefix(trimmed, "async def "):
			defLine = i
		case strings.HasPrefix(trimmed, "class "):
			analyzeClassBody(lines[i+1:], info)
			return info, nil
		}
		if defLine >= 0 {
			break
		}
	}
	if defLine < 0 {
		return info, errors.New(errors.ErrCodeInvalidInput, "no def or class header in source")
	}

	header, err := collectHeader(lines[defLine:])
	if err != nil {
		return info, err
	}
	if err := analyzeDefHeader(header, info); err != nil {
		return info, err
	}
	return info, nil
}

// collectHeader joins lines from the "def" line until the parenthesis
// nesting closes and a ":" terminates the header.
func collectHeader(lines []string) (string, error) {
	var b strings.Builder
	depth := 0
	opened := false
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("\n")
		for _, ch := range line {
			switch ch {
			case '(', '[', '{':
				depth++
				opened = true
			case ')', ']', '}':
				depth--
			}
		}
		if opened && depth == 0 {
			return b.String(), nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unterminated def header")
}

// analyzeDefHeader parses "def name(params) -> ret:" into info.
func analyzeDefHeader(header string, info *PartialInfo) error {
	open := strings.Index(header, "(")
	if open < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "malformed def header")
	}
	close := matchingParen(header, open)
	if close < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "malformed def header")
	}

	// Return annotation sits between ")" and the terminating ":". The colon
	// lookup is bracket-aware so "-> Dict[str, int]:" survives intact.
	tail := header[close+1:]
	if colon := topLevelIndex(tail, ':'); colon >= 0 {
		tail = tail[:colon]
	}
	if arrow := strings.Index(tail, "->"); arrow >= 0 {
		anno := strings.TrimSpace(tail[arrow+2:])
		if anno != "" {
			info.Annotations["return"] = anno
			info.HasReturnAnnotation = true
		}
	}

	keywordOnly := false
	for _, raw := range splitTopLevel(header[open+1:close], ',') {
		param := strings.TrimSpace(raw)
		if param == "" {
			continue
		}
		if param == "*" {
			keywordOnly = true
			continue
		}
		if param == "/" {
			continue
		}
		if strings.HasPrefix(param, "**") {
			param = param[2:]
		} else if strings.HasPrefix(param, "*") {
			keywordOnly = true
			param = param[1:]
		}

		name, anno, def := splitParam(param)
		if name == "" {
			continue
		}
		if anno != "" {
			info.Annotations[name] = anno
			info.HasArgAnnotations = true
		}
		if def != "" {
			if keywordOnly {
				info.KwOnlyDefaults = append(info.KwOnlyDefaults, def)
			} else {
				info.ArgDefaults = append(info.ArgDefaults, def)
			}
		}
	}
	return nil
}

// analyzeClassBody records annotated assignments at the first indentation
// level of a class body, the shape dataclass fields take. Method bodies are
// skipped because their statements are indented deeper.
func analyzeClassBody(lines []string, info *PartialInfo) {
	bodyIndent := -1
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if bodyIndent < 0 {
			bodyIndent = indent
		}
		if indent != bodyIndent {
			continue
		}
		if strings.HasPrefix(trimmed, "def ") || strings.HasPrefix(trimmed, "async def ") ||
			strings.HasPrefix(trimmed, "@") || strings.HasPrefix(trimmed, "class ") {
			continue
		}

		name, anno, def := splitParam(trimmed)
		if name == "" || anno == "" || !isIdentifier(name) {
			continue
		}
		info.Annotations[name] = anno
		info.HasArgAnnotations = true
		if def != "" {
			info.ArgDefaults = append(info.ArgDefaults, def)
		}
	}
}

// splitParam splits "name: anno = default" at top-level ":" and "=" markers.
func splitParam(param string) (name, anno, def string) {
	if eq := topLevelIndex(param, '='); eq >= 0 {
		def = strings.TrimSpace(param[eq+1:])
		param = param[:eq]
	}
	if colon := topLevelIndex(param, ':'); colon >= 0 {
		anno = strings.TrimSpace(param[colon+1:])
		param = param[:colon]
	}
	return strings.TrimSpace(param), anno, def
}

// decoratorName strips the "@" and any call arguments from a decorator line.
func decoratorName(line string) string {
	name := strings.TrimPrefix(line, "@")
	if open := strings.Index(name, "("); open >= 0 {
		name = name[:open]
	}
	return strings.TrimSpace(name)
}

// matchingParen returns the index of the ")" matching the "(" at open,
// respecting nesting and string literals.
func matchingParen(s string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == quote && (i == 0 || s[i-1] != '\\') {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on sep, ignoring separators nested in brackets or
// string literals.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == quote && s[i-1] != '\\' {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// topLevelIndex returns the index of the first sep outside brackets and
// string literals, or -1.
func topLevelIndex(s string, sep byte) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == quote && s[i-1] != '\\' {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// isIdentifier reports whether s is a plain Python identifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// dedentSource strips the common leading whitespace of all non-blank lines,
// so method sources extracted mid-class parse like top-level defs.
func dedentSource(s string) string {
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
		if len(line) >= margin {
			lines[i] = line[margin:]
		}
	}
	return strings.Join(lines, "\n")
}
