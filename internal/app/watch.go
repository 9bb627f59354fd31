package app

import (
	"context"

	"github.com/pfassina/rendercards/internal/tui"
	"github.com/pfassina/rendercards/internal/watch"
)

// Watch renders the deck once and again every time the file changes, until
// ctx is cancelled. report receives the outcome of every run.
func (a *App) Watch(ctx context.Context, req tui.Request, report func(error)) error {
	w, err := watch.New(req.DeckPath, func(err error) {
		a.logger.Error("watch", "err", err)
	})
	if err != nil {
		return err
	}

	once := func(ctx context.Context) {
		sum, err := a.Render(ctx, req, nil)
		if err == nil {
			a.logger.Info(sum.String())
		}
		if report != nil {
			report(RunError(sum, err))
		}
	}

	a.logger.Info("watching", "deck", req.DeckPath)
	once(ctx)
	return w.Run(ctx, once)
}
