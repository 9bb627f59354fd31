package batch

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// EventKind tells progress listeners what happened.
type EventKind int

const (
	SubsetStarted EventKind = iota
	ItemDone
	SubsetDone
)

func (k EventKind) String() string {
	switch k {
	case SubsetStarted:
		return "subset-started"
	case ItemDone:
		return "item-done"
	case SubsetDone:
		return "subset-done"
	}
	return "unknown"
}

// Event reports batch progress. Done and Total count items across the
// whole deck.
type Event struct {
	Kind   EventKind
	Subset string
	Items  int // SubsetStarted: items scheduled; SubsetDone: items written
	Label  string
	File   string
	Cached bool
	Err    error
	Done   int
	Total  int
}

// Failure is one rendition that produced no image.
type Failure struct {
	Subset string
	Label  string
	File   string
	Err    error
}

// SubsetResult counts the outcome of one subset.
type SubsetResult struct {
	Name    string
	Dir     string
	Items   int
	Written int
	Failed  int
}

// Summary is the outcome of a run.
type Summary struct {
	RunID     string
	OutputDir string
	Subsets   []SubsetResult
	Written   int
	Failures  []Failure
	CacheHits int
	Bytes     int64
	Elapsed   time.Duration
	// Substitutions maps requested font families that are not installed to
	// the family fontconfig used instead.
	Substitutions map[string]string
}

// OK reports whether every item was rendered.
func (s Summary) OK() bool { return len(s.Failures) == 0 }

func (s Summary) String() string {
	return fmt.Sprintf("%d PNGs created in %s (%s, %d cached, %d failed, %s)",
		s.Written, s.OutputDir, humanize.Bytes(uint64(s.Bytes)), s.CacheHits,
		len(s.Failures), s.Elapsed.Round(time.Millisecond))
}
