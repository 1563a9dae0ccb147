package gameover

import (
	"context"
	"errors"
	"time"

	"github.com/ayusman/fistjump/internal/render"
)

// pollInterval paces redraws while waiting for a key.
const pollInterval = 30 * time.Millisecond

// Window draws the game-over panel on the game surface and waits for a key.
type Window struct {
	surface render.Surface
	scene   *render.Scene
}

// NewWindow creates a prompter drawing with scene on surface.
func NewWindow(surface render.Surface, scene *render.Scene) *Window {
	return &Window{surface: surface, scene: scene}
}

// Prompt redraws the panel until the player presses restart or quit.
// Closing the surface counts as quit.
func (w *Window) Prompt(ctx context.Context, o Outcome) (Choice, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	// Drop keys pressed during the round.
	for w.surface.PollKey() != render.KeyNone {
	}

	for {
		w.scene.GameOver(w.surface, o.Round, o.Score, o.HighScore, o.Record)
		if err := w.surface.Present(); err != nil {
			if errors.Is(err, render.ErrQuit) {
				return Quit, nil
			}
			return Quit, err
		}

		switch w.surface.PollKey() {
		case render.KeyRestart:
			return Restart, nil
		case render.KeyQuit:
			return Quit, nil
		}

		select {
		case <-ctx.Done():
			return Quit, ctx.Err()
		case <-ticker.C:
		}
	}
}
