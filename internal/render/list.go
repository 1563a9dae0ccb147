package render

import (
	"image"
	"image/color"
	"sync"
)

// OpKind identifies a recorded drawing operation.
type OpKind int

const (
	OpClear OpKind = iota
	OpBlit
	OpText
)

// Op is one recorded drawing call.
type Op struct {
	Kind  OpKind
	Rect  image.Rectangle
	At    image.Point
	Text  string
	Color color.RGBA
}

// List is a Surface that records drawing operations instead of showing
// them. Each Present snapshots the ops drawn since the last Clear.
type List struct {
	mu     sync.Mutex
	ops    []Op
	last   []Op
	frames int
	keys   []Key
	quit   bool
}

// NewList creates an empty display list.
func NewList() *List {
	return &List{}
}

func (l *List) Clear(c color.RGBA) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops[:0], Op{Kind: OpClear, Color: c})
}

func (l *List) Blit(s Sprite, x, y int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, Op{Kind: OpBlit, Rect: s.Rect(x, y), At: image.Pt(x, y), Color: s.Color})
}

func (l *List) Text(s string, x, y int, c color.RGBA) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, Op{Kind: OpText, At: image.Pt(x, y), Text: s, Color: c})
}

// Present snapshots the current ops as the last frame.
func (l *List) Present() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.quit {
		return ErrQuit
	}
	l.last = append(l.last[:0], l.ops...)
	l.frames++
	return nil
}

// PollKey pops the next queued key.
func (l *List) PollKey() Key {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.keys) == 0 {
		return KeyNone
	}
	k := l.keys[0]
	l.keys = l.keys[1:]
	return k
}

// PressKeys queues keys for PollKey.
func (l *List) PressKeys(keys ...Key) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, keys...)
}

// RequestQuit makes every later Present return ErrQuit.
func (l *List) RequestQuit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quit = true
}

// Frames returns how many frames were presented.
func (l *List) Frames() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Last returns a copy of the ops of the last presented frame.
func (l *List) Last() []Op {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Op(nil), l.last...)
}

// Texts returns the text strings of the last presented frame.
func (l *List) Texts() []string {
	var out []string
	for _, op := range l.Last() {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Replay draws ops onto c.
func Replay(c Canvas, ops []Op) {
	for _, op := range ops {
		switch op.Kind {
		case OpClear:
			c.Clear(op.Color)
		case OpBlit:
			c.Blit(Sprite{Width: op.Rect.Dx(), Height: op.Rect.Dy(), Color: op.Color}, op.Rect.Min.X, op.Rect.Min.Y)
		case OpText:
			c.Text(op.Text, op.At.X, op.At.Y, op.Color)
		}
	}
}
