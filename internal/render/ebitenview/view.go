// Package ebitenview shows the game in an ebiten window. The game loop keeps
// its own ticker on a separate goroutine and hands finished frames to the
// view; ebiten only displays the newest one.
package ebitenview

import (
	"context"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/ayusman/fistjump/internal/render"
)

const keyBuffer = 8

// View is a render.Surface drawn by ebiten. Drawing calls are recorded and
// become visible on Present; ebiten reads the last presented frame.
type View struct {
	*render.List

	width, height int
	title         string

	keys chan render.Key
	done chan struct{}

	mu   sync.Mutex
	quit bool
	ctx  context.Context
}

// New creates a view with a fixed logical size.
func New(title string, width, height int) *View {
	return &View{
		List:   render.NewList(),
		width:  width,
		height: height,
		title:  title,
		keys:   make(chan render.Key, keyBuffer),
		done:   make(chan struct{}),
		ctx:    context.Background(),
	}
}

// Present publishes the recorded frame. It returns render.ErrQuit once the
// window was closed or Esc was pressed.
func (v *View) Present() error {
	if v.quitRequested() {
		return render.ErrQuit
	}
	return v.List.Present()
}

// PollKey returns the oldest unread key press, or KeyNone.
func (v *View) PollKey() render.Key {
	select {
	case k := <-v.keys:
		return k
	default:
		return render.KeyNone
	}
}

// Run opens the window and runs fn on its own goroutine. It must be called
// from the main goroutine and returns when both the window and fn are done.
func (v *View) Run(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	v.mu.Lock()
	v.ctx = ctx
	v.mu.Unlock()

	ebiten.SetWindowSize(v.width, v.height)
	ebiten.SetWindowTitle(v.title)
	ebiten.SetWindowClosingHandled(true)

	errc := make(chan error, 1)
	go func() {
		defer close(v.done)
		errc <- fn(ctx)
	}()

	runErr := ebiten.RunGame(v)
	v.requestQuit()
	cancel()

	err := <-errc
	if runErr != nil {
		return runErr
	}
	return err
}

// Update implements ebiten.Game.
func (v *View) Update() error {
	select {
	case <-v.done:
		return ebiten.Termination
	case <-v.context().Done():
		return ebiten.Termination
	default:
	}

	if ebiten.IsWindowBeingClosed() {
		v.requestQuit()
		return ebiten.Termination
	}

	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		key := translate(k)
		if k == ebiten.KeyEscape {
			v.requestQuit()
		}
		select {
		case v.keys <- key:
		default:
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (v *View) Draw(screen *ebiten.Image) {
	for _, op := range v.Last() {
		switch op.Kind {
		case render.OpClear:
			screen.Fill(op.Color)
		case render.OpBlit:
			r := op.Rect
			vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), op.Color, false)
		case render.OpText:
			ebitenutil.DebugPrintAt(screen, op.Text, op.At.X, op.At.Y)
		}
	}
}

// Layout implements ebiten.Game.
func (v *View) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.width, v.height
}

func (v *View) requestQuit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.quit = true
}

func (v *View) quitRequested() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.quit
}

func (v *View) context() context.Context {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ctx
}

func translate(k ebiten.Key) render.Key {
	switch k {
	case ebiten.KeyEscape, ebiten.KeyQ:
		return render.KeyQuit
	case ebiten.KeyR, ebiten.KeySpace, ebiten.KeyEnter:
		return render.KeyRestart
	default:
		return render.KeyOther
	}
}
