package deck

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// frontmatter holds the "---" delimited YAML header of a markdown deck.
type frontmatter struct {
	Name        *string `yaml:"name"`
	Font        *string `yaml:"font"`
	DefaultFont *string `yaml:"defaultFont"`
	Pango       *string `yaml:"pango"`
	Xelatex     *string `yaml:"xelatex"`

	EndLine int `yaml:"-"` // number of lines the block occupies, delimiters included
}

// extractFrontmatter decodes the header block. It returns nil when content
// does not open with "---" or the block is never closed.
func extractFrontmatter(content []byte) (*frontmatter, error) {
	lines := bytes.SplitAfter(content, []byte("\n"))
	if len(lines) == 0 || string(bytes.TrimSpace(lines[0])) != "---" {
		return nil, nil
	}

	end := 0
	for i := 1; i < len(lines); i++ {
		if string(bytes.TrimSpace(lines[i])) == "---" {
			end = i
			break
		}
	}
	if end == 0 {
		return nil, nil
	}

	fm := &frontmatter{EndLine: end + 1}
	if err := yaml.Unmarshal(bytes.Join(lines[1:end], nil), fm); err != nil {
		return nil, fmt.Errorf("frontmatter: %w", err)
	}
	return fm, nil
}

// body returns content after the frontmatter block.
func (fm *frontmatter) body(content []byte) []byte {
	lines := bytes.SplitAfter(content, []byte("\n"))
	if fm.EndLine >= len(lines) {
		return nil
	}
	return bytes.Join(lines[fm.EndLine:], nil)
}

func (fm *frontmatter) apply(s *Settings) {
	if fm.Name != nil {
		s.Name = *fm.Name
	}
	if fm.Font != nil {
		s.DefaultFont = *fm.Font
	}
	if fm.DefaultFont != nil {
		s.DefaultFont = *fm.DefaultFont
	}
	if fm.Pango != nil {
		s.Pango = *fm.Pango
	}
	if fm.Xelatex != nil {
		s.Xelatex = *fm.Xelatex
	}
}
