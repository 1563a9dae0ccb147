package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/fistjump/internal/detector"
)

const (
	textFont      = gocv.FontHersheySimplex
	textScale     = 0.8
	textThickness = 2
	escKey        = 27
)

var (
	boneColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	jointColor = color.RGBA{R: 0, G: 0, B: 255, A: 255}
)

// Window is a Surface backed by an OpenCV highgui window. It can also show
// the camera preview in a second window.
type Window struct {
	win     *gocv.Window
	preview *gocv.Window
	canvas  gocv.Mat
	key     Key
}

// NewWindow opens a game window of the given size. When preview is set a
// second window shows the camera image with the tracked hand skeleton.
func NewWindow(title string, width, height int, preview bool) *Window {
	w := &Window{
		win:    gocv.NewWindow(title),
		canvas: gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3),
	}
	w.win.ResizeWindow(width, height)
	if preview {
		w.preview = gocv.NewWindow("Hand Tracking")
	}
	return w
}

func (w *Window) Clear(c color.RGBA) {
	w.canvas.SetTo(gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0))
}

func (w *Window) Blit(s Sprite, x, y int) {
	gocv.Rectangle(&w.canvas, s.Rect(x, y), s.Color, -1)
}

func (w *Window) Text(s string, x, y int, c color.RGBA) {
	size := gocv.GetTextSize(s, textFont, textScale, textThickness)
	gocv.PutText(&w.canvas, s, image.Pt(x, y+size.Y), textFont, textScale, c, textThickness)
}

// Present shows the canvas and pumps the highgui event loop. Esc or closing
// the window yields ErrQuit.
func (w *Window) Present() error {
	if !w.win.IsOpen() {
		return ErrQuit
	}
	w.win.IMShow(w.canvas)
	code := w.win.WaitKey(1)
	if code >= 0 && code&0xff == escKey {
		return ErrQuit
	}
	if k := KeyFromCode(code); k != KeyNone {
		w.key = k
	}
	if w.win.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
		return ErrQuit
	}
	return nil
}

// PollKey returns the last key seen by Present and forgets it.
func (w *Window) PollKey() Key {
	k := w.key
	w.key = KeyNone
	return k
}

// ShowPreview draws the hand skeletons over a copy of frame and shows it.
func (w *Window) ShowPreview(frame *gocv.Mat, hands []detector.HandLandmarks) error {
	if w.preview == nil || frame == nil || frame.Empty() {
		return nil
	}

	img := frame.Clone()
	defer img.Close()
	DrawHands(&img, hands)

	w.preview.IMShow(img)
	return nil
}

// Close releases both windows and the canvas.
func (w *Window) Close() error {
	if w.preview != nil {
		w.preview.Close()
	}
	err := w.win.Close()
	w.canvas.Close()
	return err
}

// DrawHands draws each hand's bones and joints onto img, scaling
// normalized landmark coordinates to pixels.
func DrawHands(img *gocv.Mat, hands []detector.HandLandmarks) {
	cols, rows := float64(img.Cols()), float64(img.Rows())
	pixel := func(p detector.Point3D) image.Point {
		return image.Pt(int(p.X*cols), int(p.Y*rows))
	}

	for i := range hands {
		h := &hands[i]
		for _, bone := range detector.Connections {
			if h.Has(bone[0], bone[1]) {
				gocv.Line(img, pixel(h.Points[bone[0]]), pixel(h.Points[bone[1]]), boneColor, 2)
			}
		}
		for j := 0; j < h.Count && j < detector.NumLandmarks; j++ {
			if h.Has(j) {
				gocv.Circle(img, pixel(h.Points[j]), 4, jointColor, -1)
			}
		}
	}
}
