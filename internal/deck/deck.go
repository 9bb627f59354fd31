// Package deck loads batch specifications: the settings, subsets, segments
// and renditions that the batch driver turns into PNG files.
package deck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Settings apply to the whole deck.
type Settings struct {
	Name        string `json:"name" yaml:"name"`
	DefaultFont string `json:"defaultFont" yaml:"defaultFont"`
	Pango       string `json:"pango" yaml:"pango"`
	Xelatex     string `json:"xelatex" yaml:"xelatex"`
}

// Rendition is one way of drawing a segment. Pango and Xelatex hold
// pre-escaped source that is used verbatim instead of UTF8.
type Rendition struct {
	UTF8      string `json:"utf8" yaml:"utf8"`
	Pango     string `json:"pango" yaml:"pango"`
	Xelatex   string `json:"xelatex" yaml:"xelatex"`
	Font      string `json:"font" yaml:"font"`
	PangoFlip bool   `json:"pango-flip" yaml:"pango-flip"`
	PangoFlop bool   `json:"pango-flop" yaml:"pango-flop"`
}

// Source returns the text to render with the given engine and whether it is
// already escaped for that engine's dialect.
func (r Rendition) Source(engine string) (string, bool) {
	switch engine {
	case "pango":
		if r.Pango != "" {
			return r.Pango, true
		}
	case "xelatex":
		if r.Xelatex != "" {
			return r.Xelatex, true
		}
	}
	return r.UTF8, false
}

// Segment is a named item with one or more renditions.
type Segment struct {
	Name       string      `json:"name" yaml:"name"`
	Renditions []Rendition `json:"renditions" yaml:"renditions"`
}

// Subset groups segments into one output subdirectory.
type Subset struct {
	Name     string
	Segments []Segment
}

// Deck is a loaded batch specification. Subsets keep source order.
type Deck struct {
	Path     string
	Settings Settings
	Subsets  []Subset
}

// Items counts renditions across all subsets.
func (d *Deck) Items() int {
	n := 0
	for _, s := range d.Subsets {
		for _, seg := range s.Segments {
			n += len(seg.Renditions)
		}
	}
	return n
}

// FormatError reports a deck file that could not be understood.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("deck %s: %s", e.Path, e.Reason)
}

// Load reads a deck, picking the format from the file extension.
func Load(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}

	var d *Deck
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		d, err = ParseJSON(data)
	case ".yaml", ".yml":
		d, err = ParseYAML(data)
	case ".md", ".markdown":
		d, err = ParseMarkdown(data)
	default:
		return nil, &FormatError{Path: path, Reason: "unsupported file extension (want .json, .yaml or .md)"}
	}
	if err != nil {
		return nil, &FormatError{Path: path, Reason: err.Error()}
	}
	d.Path = path
	return d, nil
}

// Validate checks that every segment can be named and rendered with engine.
func (d *Deck) Validate(engine string) error {
	for _, s := range d.Subsets {
		if s.Name == "" {
			return &FormatError{Path: d.Path, Reason: "subset with empty name"}
		}
		for i, seg := range s.Segments {
			if seg.Name == "" {
				return &FormatError{Path: d.Path, Reason: fmt.Sprintf("subset %q: segment %d has no name", s.Name, i+1)}
			}
			if len(seg.Renditions) == 0 {
				return &FormatError{Path: d.Path, Reason: fmt.Sprintf("subset %q: segment %q has no renditions", s.Name, seg.Name)}
			}
			for j, r := range seg.Renditions {
				if text, _ := r.Source(engine); text == "" {
					return &FormatError{Path: d.Path, Reason: fmt.Sprintf("subset %q: segment %q rendition %d has no text for %s", s.Name, seg.Name, j+1, engine)}
				}
			}
		}
	}
	return nil
}
