package gesture

import "fmt"

// Debounce window defaults. A jump command needs DefaultThreshold fist
// samples among the last DefaultWindow processed frames.
const (
	DefaultWindow    = 5
	DefaultThreshold = 3
)

// Debouncer is a sliding-window majority vote over gesture samples.
// It keeps no state beyond the raw window.
type Debouncer struct {
	window    int
	threshold int
	history   []bool
	trues     int
	command   bool
}

// NewDebouncer creates a Debouncer holding the last window samples and
// commanding a jump when at least threshold of them are true.
func NewDebouncer(window, threshold int) (*Debouncer, error) {
	if window <= 0 {
		return nil, fmt.Errorf("debounce window must be positive, got %d", window)
	}
	if threshold <= 0 || threshold > window {
		return nil, fmt.Errorf("debounce threshold must be in [1, %d], got %d", window, threshold)
	}

	return &Debouncer{
		window:    window,
		threshold: threshold,
		history:   make([]bool, 0, window),
	}, nil
}

// NewDefaultDebouncer creates a 3-of-5 Debouncer.
func NewDefaultDebouncer() *Debouncer {
	d, _ := NewDebouncer(DefaultWindow, DefaultThreshold)
	return d
}

// Observe appends a sample, evicting the oldest one when the window is full,
// and returns the recomputed command.
func (d *Debouncer) Observe(sample bool) bool {
	if len(d.history) >= d.window {
		if d.history[0] {
			d.trues--
		}
		copy(d.history, d.history[1:])
		d.history = d.history[:d.window-1]
	}
	d.history = append(d.history, sample)
	if sample {
		d.trues++
	}

	d.command = d.trues >= d.threshold
	return d.command
}

// Command returns the command computed by the last Observe.
func (d *Debouncer) Command() bool {
	return d.command
}

// Len returns the number of retained samples.
func (d *Debouncer) Len() int {
	return len(d.history)
}

// Trues returns how many retained samples are true.
func (d *Debouncer) Trues() int {
	return d.trues
}

// History returns a copy of the retained samples, oldest first.
func (d *Debouncer) History() []bool {
	out := make([]bool, len(d.history))
	copy(out, d.history)
	return out
}

// Reset clears the window.
func (d *Debouncer) Reset() {
	d.history = d.history[:0]
	d.trues = 0
	d.command = false
}
