// Package escape makes arbitrary text safe to embed in the two template
// dialects the renderers use: Pango markup and XeLaTeX source.
package escape

import (
	"fmt"
	"strings"
)

// Dialect selects the reserved character table.
type Dialect string

const (
	Markup      Dialect = "markup"
	Typesetting Dialect = "typesetting"
)

// ParseDialect accepts the dialect names and the engine names that use them.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markup", "pango":
		return Markup, nil
	case "typesetting", "xelatex":
		return Typesetting, nil
	}
	return "", fmt.Errorf("unknown dialect %q", s)
}

// markupTable maps Pango reserved characters to entities. The trailing `\;`
// keeps an entity from running into the character after it.
var markupTable = map[rune]string{
	'&':  `&amp\;`,
	'<':  `&lt\;`,
	'>':  `&gt\;`,
	'"':  `&quot\;`,
	'\'': `&apos\;`,
	'\\': `&#x5c\;`,
	'%':  `&#x25\;`,
}

var typesettingTable = map[rune]string{
	'#':  `\#`,
	'&':  `\&`,
	'%':  `\%`,
	'$':  `\$`,
	'_':  `\_`,
	'{':  `\{`,
	'}':  `\}`,
	'~':  `\textasciitilde{}`,
	'^':  `\textasciicircum{}`,
	'\\': `\textbackslash{}`,
	'"':  `\char"22`,
}

var (
	markupReplacer      = newReplacer(markupTable)
	typesettingReplacer = newReplacer(typesettingTable)
)

func newReplacer(table map[rune]string) *strings.Replacer {
	pairs := make([]string, 0, len(table)*2)
	for r, repl := range table {
		pairs = append(pairs, string(r), repl)
	}
	return strings.NewReplacer(pairs...)
}

// Escape replaces every reserved character of the dialect. Input that
// already contains escape sequences is escaped again.
func Escape(text string, d Dialect) string {
	switch d {
	case Typesetting:
		return typesettingReplacer.Replace(text)
	default:
		return markupReplacer.Replace(text)
	}
}

// EscapeMarkup escapes text for a Pango markup string.
func EscapeMarkup(text string) string {
	return markupReplacer.Replace(text)
}

// EscapeTypesetting escapes text for a XeLaTeX document body.
func EscapeTypesetting(text string) string {
	return typesettingReplacer.Replace(text)
}

// Reserved returns the reserved characters of a dialect and their
// replacements. The returned map is a copy.
func Reserved(d Dialect) map[rune]string {
	src := markupTable
	if d == Typesetting {
		src = typesettingTable
	}
	out := make(map[rune]string, len(src))
	for r, repl := range src {
		out[r] = repl
	}
	return out
}
