package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pfassina/rendercards/internal/batch"
)

var errNoCache = errors.New("render cache is disabled")

// ErrItemsFailed is returned when a run finished with failed items.
var ErrItemsFailed = errors.New("some items failed to render")

// RunError folds item failures into the error of a run.
func RunError(sum batch.Summary, err error) error {
	if err != nil {
		return err
	}
	if !sum.OK() {
		return fmt.Errorf("%w: %d of %d", ErrItemsFailed, len(sum.Failures), len(sum.Failures)+sum.Written)
	}
	return nil
}

// CacheStats prints the cache size and the most recent runs.
func (a *App) CacheStats(w io.Writer) error {
	if a.db == nil {
		return errNoCache
	}
	st, err := a.db.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n", a.cfg.CachePath)
	fmt.Fprintf(w, "%s renders, %s, %s runs\n",
		humanize.Comma(st.Entries), humanize.Bytes(uint64(st.Bytes)), humanize.Comma(st.Runs))

	runs, err := a.db.RecentRuns(5)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(w, "  %s  %-8s %s: %d written, %d cached, %d failed\n",
			humanize.Time(r.StartedAt), r.Engine, r.Deck, r.Total, r.Cached, r.Failed)
	}
	return nil
}

// CachePrune removes renders older than age.
func (a *App) CachePrune(w io.Writer, age time.Duration) error {
	if a.db == nil {
		return errNoCache
	}
	n, err := a.db.Prune(time.Now().Add(-age))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "removed %s cached renders older than %s\n", humanize.Comma(n), age)
	return nil
}
