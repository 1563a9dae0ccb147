package capture

import (
	"errors"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ErrFrameTimeout is returned when the device does not deliver a frame in time.
var ErrFrameTimeout = errors.New("timed out waiting for camera frame")

type readResult struct {
	mat *gocv.Mat
	err error
}

// TimedCamera bounds every ReadFrame of the wrapped camera. At most one
// device read is in flight; a read that finishes after its caller gave up
// has its frame released by the reading goroutine.
type TimedCamera struct {
	Camera
	timeout time.Duration

	mu      sync.Mutex
	pending chan readResult
}

// NewTimedCamera wraps cam so reads fail with ErrFrameTimeout after timeout.
// A non-positive timeout returns cam unchanged.
func NewTimedCamera(cam Camera, timeout time.Duration) Camera {
	if timeout <= 0 {
		return cam
	}
	return &TimedCamera{Camera: cam, timeout: timeout}
}

// ReadFrame waits up to the configured timeout for the next frame. If a
// previous read is still running, ReadFrame waits on that read instead of
// starting a second one.
func (c *TimedCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		ch := make(chan readResult, 1)
		c.pending = ch
		go func() {
			mat, err := c.Camera.ReadFrame()
			ch <- readResult{mat: mat, err: err}
		}()
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case res := <-c.pending:
		c.pending = nil
		return res.mat, res.err
	case <-timer.C:
		return nil, ErrFrameTimeout
	}
}

// Close drops any read in flight, then closes the wrapped camera.
func (c *TimedCamera) Close() error {
	c.mu.Lock()
	if ch := c.pending; ch != nil {
		c.pending = nil
		go func() {
			if res := <-ch; res.mat != nil {
				res.mat.Close()
			}
		}()
	}
	c.mu.Unlock()
	return c.Camera.Close()
}
