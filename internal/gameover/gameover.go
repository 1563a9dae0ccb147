// Package gameover asks the player what to do after a round ends.
package gameover

import (
	"context"
	"errors"

	"github.com/ayusman/fistjump/internal/game"
)

// ErrNoChoice is returned when a prompter could not get an answer.
var ErrNoChoice = errors.New("no game-over choice")

// Choice is the player's answer at the end of a round.
type Choice int

const (
	Quit Choice = iota
	Restart
)

// String returns "restart" or "quit".
func (c Choice) String() string {
	if c == Restart {
		return "restart"
	}
	return "quit"
}

// ParseChoice parses "restart" or "quit".
func ParseChoice(s string) (Choice, error) {
	switch s {
	case "restart":
		return Restart, nil
	case "quit":
		return Quit, nil
	}
	return Quit, ErrNoChoice
}

// Outcome describes a finished round.
type Outcome struct {
	Score     int
	HighScore int
	// Record is set when Score beat the previous high score.
	Record bool
	// Round is the finished round, for prompters that redraw it. May be nil.
	Round *game.Round
}

// Prompter asks the player to restart or quit.
type Prompter interface {
	Prompt(ctx context.Context, o Outcome) (Choice, error)
}

// Fixed always answers with the same choice.
type Fixed Choice

// Prompt returns the fixed choice.
func (f Fixed) Prompt(ctx context.Context, o Outcome) (Choice, error) {
	if err := ctx.Err(); err != nil {
		return Quit, err
	}
	return Choice(f), nil
}

// Fallback asks Primary and falls back to Secondary when Primary fails
// for any reason other than cancellation.
type Fallback struct {
	Primary   Prompter
	Secondary Prompter
	// OnError is called with Primary's error before falling back.
	OnError func(error)
}

// Prompt implements Prompter.
func (f Fallback) Prompt(ctx context.Context, o Outcome) (Choice, error) {
	choice, err := f.Primary.Prompt(ctx, o)
	if err == nil || ctx.Err() != nil {
		return choice, err
	}
	if f.OnError != nil {
		f.OnError(err)
	}
	return f.Secondary.Prompt(ctx, o)
}
