package render

import (
	"fmt"
	"strings"
)

// DefaultPangoTemplate is used when a deck does not define one.
const DefaultPangoTemplate = "pango:<markup>" +
	"<span font_family=\"{1}\" size=\"192000\"> \n {0} \n </span>" +
	"</markup>"

// DefaultXelatexTemplate renders left-to-right text.
const DefaultXelatexTemplate = `%!TEX TS-program = xelatex
%!TEX encoding = UTF-8 Unicode
\documentclass[border=10mm]{{standalone}}
\nofiles
\usepackage{{fixltx2e}}
\usepackage{{fontspec}}
\usepackage{{xunicode,xltxtra}}
\defaultfontfeatures{{Mapping=tex-text,Scale=MatchLowercase}}
\setmainfont{{{1}}}
\begin{{document}}
\fontsize{{30pt}}{{30pt}}
\selectfont
{0}
\end{{document}}
`

// HebrewXelatexTemplate sets Hebrew as the main language so text runs
// right to left.
const HebrewXelatexTemplate = `%!TEX TS-program = xelatex
%!TEX encoding = UTF-8 Unicode
\documentclass[border=10mm]{{standalone}}
\nofiles
\usepackage{{polyglossia}}
\setmainlanguage{{hebrew}}
\usepackage{{fontspec}}
\defaultfontfeatures{{Mapping=tex-text,Scale=MatchLowercase}}
\setmainfont{{{1}}}
\begin{{document}}
\fontsize{{30pt}}{{30pt}}
\selectfont
{0}
\end{{document}}
`

// Expand fills a template. "{0}" is replaced by text, "{1}" by font, and
// "{{" / "}}" stand for literal braces. Anything else inside braces is an
// error.
func Expand(tmpl, text, font string) (string, error) {
	args := [...]string{text, font}

	var b strings.Builder
	b.Grow(len(tmpl) + len(text))
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("template: unclosed '{' at offset %d", i)
			}
			field := tmpl[i+1 : i+end]
			switch field {
			case "0", "1":
				b.WriteString(args[field[0]-'0'])
			default:
				return "", fmt.Errorf("template: unknown field {%s}", field)
			}
			i += end
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("template: single '}' at offset %d", i)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
