package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results, either with one fixed
// answer or with a per-call script.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	script [][]HandLandmarks
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetScript queues per-call answers. Once the script runs out, Detect falls
// back to the hands set with SetHands.
func (m *MockDetector) SetScript(script [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = script
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		return next, nil
	}
	return m.hands, nil
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// FistLandmarks returns a preset closed fist: thumb, index and middle tips
// pressed together in front of the palm.
func FistLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Count:      NumLandmarks,
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.80, Z: 0.0}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: -0.01}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.57, Y: 0.71, Z: -0.02}
	landmarks.Points[ThumbIP] = Point3D{X: 0.55, Y: 0.67, Z: -0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.52, Y: 0.66, Z: -0.04}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.64, Z: -0.02}
	landmarks.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.60, Z: -0.05}
	landmarks.Points[IndexDIP] = Point3D{X: 0.53, Y: 0.63, Z: -0.05}
	landmarks.Points[IndexTip] = Point3D{X: 0.53, Y: 0.65, Z: -0.04}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.63, Z: -0.02}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.59, Z: -0.05}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.62, Z: -0.05}
	landmarks.Points[MiddleTip] = Point3D{X: 0.51, Y: 0.64, Z: -0.04}

	landmarks.Points[RingMCP] = Point3D{X: 0.46, Y: 0.64, Z: -0.02}
	landmarks.Points[RingPIP] = Point3D{X: 0.46, Y: 0.60, Z: -0.05}
	landmarks.Points[RingDIP] = Point3D{X: 0.47, Y: 0.63, Z: -0.05}
	landmarks.Points[RingTip] = Point3D{X: 0.47, Y: 0.66, Z: -0.04}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.42, Y: 0.67, Z: -0.02}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.42, Y: 0.64, Z: -0.04}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.43, Y: 0.66, Z: -0.04}
	landmarks.Points[PinkyTip] = Point3D{X: 0.44, Y: 0.68, Z: -0.03}

	return landmarks
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Count:      NumLandmarks,
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}

// PartialLandmarks returns a hand whose tracking stopped after the first n
// landmarks, as happens when fingers leave the frame.
func PartialLandmarks(n int) HandLandmarks {
	landmarks := FistLandmarks()
	if n < 0 {
		n = 0
	}
	if n > NumLandmarks {
		n = NumLandmarks
	}
	for i := n; i < NumLandmarks; i++ {
		landmarks.Points[i] = Point3D{}
	}
	landmarks.Count = n
	return landmarks
}
