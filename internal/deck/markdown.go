package deck

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var markdownParser = goldmark.New().Parser()

// ParseMarkdown reads a word-list deck:
//
//	---
//	font: Ezra SIL
//	---
//	# Hebrew letters        deck name
//	## Consonants           subset
//	- alef: א               segment "alef" rendering "א"
//	- ב                     segment named and rendered "ב"
//	  - בּ                   extra rendition of the item above
//
// Lists before the first level-2 heading are rejected.
func ParseMarkdown(data []byte) (*Deck, error) {
	d := &Deck{}
	fm, err := extractFrontmatter(data)
	if err != nil {
		return nil, err
	}
	offset := 0
	if fm != nil {
		fm.apply(&d.Settings)
		data = fm.body(data)
		offset = fm.EndLine
	}

	doc := markdownParser.Parse(text.NewReader(data))

	var cur *Subset
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Heading:
			title := inlineText(n, data)
			switch n.Level {
			case 1:
				if d.Settings.Name == "" {
					d.Settings.Name = title
				}
			case 2:
				d.Subsets = append(d.Subsets, Subset{Name: title})
				cur = &d.Subsets[len(d.Subsets)-1]
			}

		case *ast.List:
			if cur == nil {
				return nil, fmt.Errorf("line %d: list before the first subset heading", offset+lineOf(n, data))
			}
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				seg, ok := segmentFromItem(item, data)
				if ok {
					cur.Segments = append(cur.Segments, seg)
				}
			}
		}
	}
	return d, nil
}

func segmentFromItem(item ast.Node, source []byte) (Segment, bool) {
	var seg Segment
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.TextBlock, *ast.Paragraph, *ast.HTMLBlock:
			if seg.Name != "" {
				continue
			}
			line := blockText(c, source)
			if label, body, ok := strings.Cut(line, ": "); ok && strings.TrimSpace(label) != "" && strings.TrimSpace(body) != "" {
				seg.Name = strings.TrimSpace(label)
				seg.Renditions = append(seg.Renditions, Rendition{UTF8: strings.TrimSpace(body)})
			} else if line != "" {
				seg.Name = line
				seg.Renditions = append(seg.Renditions, Rendition{UTF8: line})
			}
		case *ast.List:
			for sub := c.FirstChild(); sub != nil; sub = sub.NextSibling() {
				if s := inlineText(sub, source); s != "" {
					seg.Renditions = append(seg.Renditions, Rendition{UTF8: s})
				}
			}
		}
	}
	return seg, seg.Name != ""
}

// blockText is the text of a single block: its inline content, or the raw
// lines of an HTML block.
func blockText(n ast.Node, source []byte) string {
	if h, ok := n.(*ast.HTMLBlock); ok {
		return htmlBlockText(h, source)
	}
	return inlineText(n, source)
}

// inlineText concatenates the text below n the way it reads once rendered:
// backslash escapes and character references are resolved, raw HTML is kept
// as written and line breaks become spaces. Nested lists are not descended
// into.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.List:
				continue
			case *ast.Text:
				v := c.Segment.Value(source)
				if !c.IsRaw() {
					v = util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(v)))
				}
				b.Write(v)
				if c.SoftLineBreak() || c.HardLineBreak() {
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(c.Value)
			case *ast.RawHTML:
				for i := 0; i < c.Segments.Len(); i++ {
					seg := c.Segments.At(i)
					b.Write(seg.Value(source))
				}
			case *ast.AutoLink:
				b.Write(c.Label(source))
			case *ast.HTMLBlock:
				b.WriteString(htmlBlockText(c, source))
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

func htmlBlockText(n *ast.HTMLBlock, source []byte) string {
	var parts []string
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if s := strings.TrimSpace(string(seg.Value(source))); s != "" {
			parts = append(parts, s)
		}
	}
	if n.HasClosure() {
		if s := strings.TrimSpace(string(n.ClosureLine.Value(source))); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func lineOf(n ast.Node, source []byte) int {
	for c := n; c != nil && c.Type() == ast.TypeBlock; c = c.FirstChild() {
		if lines := c.Lines(); lines != nil && lines.Len() > 0 {
			return 1 + strings.Count(string(source[:lines.At(0).Start]), "\n")
		}
	}
	return 0
}
