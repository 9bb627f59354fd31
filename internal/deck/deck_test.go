package deck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "settings": {
    "name": "Hebrew letters",
    "defaultFont": "Ezra SIL",
    "pango": "pango:<span font_family=\"{1}\">{0}</span>"
  },
  "subsets": {
    "zeta": [
      {"name": "alef", "renditions": [{"utf8": "א"}, {"utf8": "א", "font": "David", "pango-flip": true}]}
    ],
    "alpha": [
      {"name": "bet", "renditions": [{"utf8": "ב", "xelatex": "\\textbf{ב}"}]},
      {"name": "gimel", "renditions": [{"pango": "<b>ג</b>", "pango-flop": true}]}
    ]
  }
}`

func TestParseJSON(t *testing.T) {
	d, err := ParseJSON([]byte(sampleJSON))
	require.NoError(t, err)

	assert.Equal(t, "Hebrew letters", d.Settings.Name)
	assert.Equal(t, "Ezra SIL", d.Settings.DefaultFont)
	assert.Equal(t, `pango:<span font_family="{1}">{0}</span>`, d.Settings.Pango)

	require.Len(t, d.Subsets, 2)
	assert.Equal(t, "zeta", d.Subsets[0].Name, "source order is kept")
	assert.Equal(t, "alpha", d.Subsets[1].Name)

	alef := d.Subsets[0].Segments[0]
	require.Len(t, alef.Renditions, 2)
	assert.Equal(t, "David", alef.Renditions[1].Font)
	assert.True(t, alef.Renditions[1].PangoFlip)

	gimel := d.Subsets[1].Segments[1]
	assert.True(t, gimel.Renditions[0].PangoFlop)
	assert.Equal(t, 4, d.Items())
}

func TestParseJSON_NoSubsets(t *testing.T) {
	d, err := ParseJSON([]byte(`{"settings": {"name": "empty"}}`))
	require.NoError(t, err)
	assert.Empty(t, d.Subsets)

	d, err = ParseJSON([]byte(`{"settings": {}, "subsets": null}`))
	require.NoError(t, err)
	assert.Empty(t, d.Subsets)
}

func TestParseJSON_Errors(t *testing.T) {
	for _, input := range []string{
		`{`,
		`{"subsets": []}`,
		`{"subsets": {"a": {"name": "x"}}}`,
	} {
		_, err := ParseJSON([]byte(input))
		assert.Error(t, err, input)
	}
}

func TestRenditionSource(t *testing.T) {
	r := Rendition{UTF8: "a&b", Pango: "a&amp;b"}

	text, pre := r.Source("pango")
	assert.Equal(t, "a&amp;b", text)
	assert.True(t, pre)

	text, pre = r.Source("xelatex")
	assert.Equal(t, "a&b", text)
	assert.False(t, pre)
}

func TestParseYAML(t *testing.T) {
	input := `
settings:
  name: Greek
  defaultFont: Gentium
subsets:
  lower:
    - name: alpha
      renditions:
        - utf8: α
        - utf8: α
          pango-flop: true
  upper:
    - name: Alpha
      renditions:
        - utf8: Α
`
	d, err := ParseYAML([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, "Greek", d.Settings.Name)
	assert.Equal(t, "Gentium", d.Settings.DefaultFont)
	require.Len(t, d.Subsets, 2)
	assert.Equal(t, "lower", d.Subsets[0].Name)
	assert.Equal(t, "upper", d.Subsets[1].Name)
	assert.True(t, d.Subsets[0].Segments[0].Renditions[1].PangoFlop)
}

func TestParseYAML_BadSubsets(t *testing.T) {
	_, err := ParseYAML([]byte("subsets:\n  - a\n  - b\n"))
	assert.Error(t, err)
}

func TestParseMarkdown(t *testing.T) {
	input := `---
font: "Ezra SIL"
---

# Hebrew letters

Some prose that is ignored.

## Consonants

- alef: א
- ב
  - בּ
  - בֿ

## Final forms

- final kaf: ך
`
	d, err := ParseMarkdown([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, "Hebrew letters", d.Settings.Name)
	assert.Equal(t, "Ezra SIL", d.Settings.DefaultFont)
	require.Len(t, d.Subsets, 2)

	cons := d.Subsets[0]
	assert.Equal(t, "Consonants", cons.Name)
	require.Len(t, cons.Segments, 2)
	assert.Equal(t, "alef", cons.Segments[0].Name)
	assert.Equal(t, "א", cons.Segments[0].Renditions[0].UTF8)

	bet := cons.Segments[1]
	assert.Equal(t, "ב", bet.Name)
	require.Len(t, bet.Renditions, 3)
	assert.Equal(t, "בּ", bet.Renditions[1].UTF8)

	assert.Equal(t, "final kaf", d.Subsets[1].Segments[0].Name)
}

func TestParseMarkdown_ListBeforeSubset(t *testing.T) {
	_, err := ParseMarkdown([]byte("# Deck\n\n- stray\n"))
	assert.ErrorContains(t, err, "line 3")

	_, err = ParseMarkdown([]byte("---\nfont: David\n---\n# Deck\n\n- stray\n"))
	assert.ErrorContains(t, err, "line 6", "lines count from the top of the file")
}

func TestParseMarkdown_InlineText(t *testing.T) {
	tests := []struct {
		name string
		item string
		want string
	}{
		{"backslash escape", `- star: 5 \* 3`, "5 * 3"},
		{"escaped underscore", `- low: a\_b`, "a_b"},
		{"named entity", "- amp: a &amp; b", "a & b"},
		{"numeric reference", "- shin: &#x5E9;", "ש"},
		{"inline html", "- tag: <b>bold</b>", "<b>bold</b>"},
		{"code span is verbatim", "- code: `a\\*b`", `a\*b`},
		{"emphasis flattened", "- em: *alef*", "alef"},
		{"autolink", "- link: <https://example.com>", "https://example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseMarkdown([]byte("## S\n\n" + tt.item + "\n"))
			require.NoError(t, err)
			require.Len(t, d.Subsets, 1)
			require.Len(t, d.Subsets[0].Segments, 1)
			assert.Equal(t, tt.want, d.Subsets[0].Segments[0].Renditions[0].UTF8)
		})
	}
}

func TestParseMarkdown_HTMLBlockItem(t *testing.T) {
	d, err := ParseMarkdown([]byte("## Tags\n\n- <i>\n"))
	require.NoError(t, err)
	require.Len(t, d.Subsets[0].Segments, 1)
	seg := d.Subsets[0].Segments[0]
	assert.Equal(t, "<i>", seg.Name)
	assert.Equal(t, "<i>", seg.Renditions[0].UTF8)
}

func TestParseMarkdown_Frontmatter(t *testing.T) {
	input := `---
name: "Quoted \"name\""
font: 'Ezra SIL'
defaultFont: Taamey Frank CLM
pango: |
  pango:<span font_family="{1}">
  {0}</span>
xelatex: "\\fontspec{{{1}}}{0}"
unknown: ignored
---
## S

- a
`
	d, err := ParseMarkdown([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, `Quoted "name"`, d.Settings.Name)
	assert.Equal(t, "Taamey Frank CLM", d.Settings.DefaultFont, "defaultFont wins over font")
	assert.Equal(t, "pango:<span font_family=\"{1}\">\n{0}</span>\n", d.Settings.Pango)
	assert.Equal(t, `\fontspec{{{1}}}{0}`, d.Settings.Xelatex)
	require.Len(t, d.Subsets, 1)
	assert.Equal(t, "a", d.Subsets[0].Segments[0].Name)
}

func TestParseMarkdown_FrontmatterErrors(t *testing.T) {
	_, err := ParseMarkdown([]byte("---\nfont: [unclosed\n---\n## S\n- a\n"))
	assert.ErrorContains(t, err, "frontmatter")

	// An unclosed block is ordinary content.
	d, err := ParseMarkdown([]byte("---\n## S\n\n- a\n"))
	require.NoError(t, err)
	require.Len(t, d.Subsets, 1)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, d.Path)
	assert.NoError(t, d.Validate("pango"))
}

func TestLoad_UnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := Load(path)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, path, fe.Path)
}

func TestValidate(t *testing.T) {
	d := &Deck{Path: "d.json", Subsets: []Subset{{
		Name: "s",
		Segments: []Segment{
			{Name: "only pango", Renditions: []Rendition{{Pango: "<b>x</b>"}}},
		},
	}}}
	assert.NoError(t, d.Validate("pango"))
	assert.ErrorContains(t, d.Validate("xelatex"), "no text for xelatex")

	d.Subsets[0].Segments = append(d.Subsets[0].Segments, Segment{Name: "empty"})
	assert.ErrorContains(t, d.Validate("pango"), "no renditions")

	d.Subsets[0].Segments = []Segment{{Renditions: []Rendition{{UTF8: "x"}}}}
	assert.ErrorContains(t, d.Validate("pango"), "has no name")
}
