// Package detector provides hand detection interfaces and types for gesture control.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Connections lists the landmark pairs joined when a skeleton is drawn.
var Connections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Point3D represents a landmark position. X and Y are normalized to [0,1]
// of the image width and height; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents one detected hand skeleton for one frame.
//
// Count is the number of leading landmarks the source supplied. A tracker that
// loses part of the hand reports fewer than NumLandmarks points; the rest of
// Points is zero and must not be read.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Count      int                   `json:"count"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Has reports whether every listed landmark was supplied with finite coordinates.
func (h *HandLandmarks) Has(indices ...int) bool {
	if h == nil {
		return false
	}
	for _, i := range indices {
		if i < 0 || i >= h.Count || i >= NumLandmarks {
			return false
		}
		p := h.Points[i]
		if !finite(p.X) || !finite(p.Y) {
			return false
		}
	}
	return true
}

// Complete reports whether all NumLandmarks points are present.
func (h *HandLandmarks) Complete() bool {
	if h == nil || h.Count < NumLandmarks {
		return false
	}
	for i := 0; i < NumLandmarks; i++ {
		if !h.Has(i) {
			return false
		}
	}
	return true
}

// Distance2D returns the Euclidean distance between two landmarks in the image plane.
func Distance2D(a, b Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
