package gameover

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Console asks on a text stream, such as a terminal.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole creates a prompter reading answers from in and writing to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Prompt prints the result and reads lines until one is a valid answer.
// End of input means quit.
func (c *Console) Prompt(ctx context.Context, o Outcome) (Choice, error) {
	fmt.Fprintf(c.out, "Game over! Score: %d\n", o.Score)
	if o.Record {
		fmt.Fprintf(c.out, "New high score: %d\n", o.HighScore)
	} else {
		fmt.Fprintf(c.out, "High score: %d\n", o.HighScore)
	}

	type answer struct {
		line string
		err  error
	}

	for {
		fmt.Fprint(c.out, "Play again? [r]estart / [q]uit: ")

		// ReadString blocks; run it aside so cancellation is honoured.
		ch := make(chan answer, 1)
		go func() {
			line, err := c.in.ReadString('\n')
			ch <- answer{line, err}
		}()

		var a answer
		select {
		case <-ctx.Done():
			return Quit, ctx.Err()
		case a = <-ch:
		}

		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "r", "restart", "y", "yes":
			return Restart, nil
		case "q", "quit", "n", "no":
			return Quit, nil
		}
		if a.err == io.EOF {
			return Quit, nil
		}
		if a.err != nil {
			return Quit, fmt.Errorf("failed to read answer: %w", a.err)
		}
	}
}
