package detector

import (
	"time"

	"gocv.io/x/gocv"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ModelComplexity selects the MediaPipe hand model (0 = lite, 1 = full).
	ModelComplexity int

	// ResponseTimeout bounds the wait for one landmark response. Zero waits
	// forever.
	ResponseTimeout time.Duration

	// StartupTimeout replaces ResponseTimeout for the first response of a
	// freshly started service, which includes loading the model.
	StartupTimeout time.Duration
}

// DefaultConfig returns a Config tuned for low-latency game control.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		ModelComplexity: 0,
		ResponseTimeout: time.Second,
		StartupTimeout:  20 * time.Second,
	}
}
