// Package gesture turns hand landmarks into a debounced jump command.
package gesture

import "github.com/ayusman/fistjump/internal/detector"

// FistThreshold is the largest thumb-to-fingertip distance, in normalized
// image units, that still counts as touching. Calibrated for a hand filling
// roughly a third of the frame width; tune it, it is not derived.
const FistThreshold = 0.05

// RequiredLandmarks are the landmarks a skeleton must carry to be classified.
var RequiredLandmarks = []int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip}

// Classifier decides whether a single hand skeleton is a closed fist.
type Classifier struct {
	// Threshold is the proximity threshold; zero means FistThreshold.
	Threshold float64
}

// NewClassifier creates a Classifier using FistThreshold.
func NewClassifier() *Classifier {
	return &Classifier{Threshold: FistThreshold}
}

func (c *Classifier) threshold() float64 {
	if c == nil || c.Threshold <= 0 {
		return FistThreshold
	}
	return c.Threshold
}

// IsFist reports whether the thumb tip is within the threshold of both the
// index and the middle fingertip. The hand must carry RequiredLandmarks.
func (c *Classifier) IsFist(hand *detector.HandLandmarks) bool {
	thumb := hand.Points[detector.ThumbTip]
	limit := c.threshold()

	return detector.Distance2D(thumb, hand.Points[detector.IndexTip]) < limit &&
		detector.Distance2D(thumb, hand.Points[detector.MiddleTip]) < limit
}

// Sample reduces one frame's hands to a single gesture sample. Hands missing
// a required landmark are skipped. The sample is true if any classified hand
// is a fist; classified counts the hands that were checked.
func (c *Classifier) Sample(hands []detector.HandLandmarks) (fist bool, classified int) {
	for i := range hands {
		hand := &hands[i]
		if !hand.Has(RequiredLandmarks...) {
			continue
		}
		classified++
		if c.IsFist(hand) {
			fist = true
		}
	}
	return fist, classified
}
