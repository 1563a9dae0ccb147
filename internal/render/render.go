// Package render draws game state onto a drawing surface.
package render

import (
	"errors"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/fistjump/internal/detector"
)

// ErrQuit is returned by a Surface when the user asked to leave: the window
// was closed or Esc was pressed.
var ErrQuit = errors.New("quit requested")

// Sprite is a solid block drawn at integer coordinates.
type Sprite struct {
	Width  int
	Height int
	Color  color.RGBA
}

// Rect returns the area the sprite covers when drawn at (x, y).
func (s Sprite) Rect(x, y int) image.Rectangle {
	return image.Rect(x, y, x+s.Width, y+s.Height)
}

// Canvas is the drawing API the scene is rendered with.
type Canvas interface {
	Clear(c color.RGBA)
	Blit(s Sprite, x, y int)
	// Text draws s with its top-left corner at (x, y).
	Text(s string, x, y int, c color.RGBA)
}

// Key is a user input relevant to the game, independent of the backend.
type Key int

const (
	// KeyNone means no key was pressed since the last poll.
	KeyNone Key = iota
	// KeyRestart starts another round (R, Enter or Space).
	KeyRestart
	// KeyQuit leaves the game (Q or Esc).
	KeyQuit
	// KeyOther is any other key.
	KeyOther
)

// String returns the key name.
func (k Key) String() string {
	switch k {
	case KeyNone:
		return "none"
	case KeyRestart:
		return "restart"
	case KeyQuit:
		return "quit"
	default:
		return "other"
	}
}

// Surface is a Canvas that can be shown to the player.
type Surface interface {
	Canvas
	// Present shows everything drawn since the last Clear. It returns
	// ErrQuit once the player closed the surface.
	Present() error
	// PollKey returns the key pressed since the previous poll, or KeyNone.
	PollKey() Key
}

// Previewer is implemented by surfaces that can also show the camera image.
type Previewer interface {
	ShowPreview(frame *gocv.Mat, hands []detector.HandLandmarks) error
}

// KeyFromCode maps an ASCII key code, as returned by highgui, to a Key.
// Negative codes mean no key.
func KeyFromCode(code int) Key {
	if code < 0 {
		return KeyNone
	}
	switch code & 0xff {
	case 27, 'q', 'Q':
		return KeyQuit
	case 'r', 'R', ' ', '\r', '\n':
		return KeyRestart
	default:
		return KeyOther
	}
}
