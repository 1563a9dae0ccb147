package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/fistjump/internal/feed"
)

// streamInterval paces MJPEG parts (~15 FPS).
const streamInterval = 66 * time.Millisecond

// StreamHandler serves the mirrored camera image as MJPEG. Frames are only
// encoded by the game loop while at least one viewer is connected.
type StreamHandler struct {
	feed *feed.Feed
}

// NewStreamHandler creates a new StreamHandler reading from f.
func NewStreamHandler(f *feed.Feed) *StreamHandler {
	return &StreamHandler{feed: f}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	leave := h.feed.Watch()
	defer leave()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		buf, seq := h.feed.Frame()
		if seq == lastSeq || len(buf) == 0 {
			continue
		}
		lastSeq = seq

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(buf))
		if _, err := w.Write(buf); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if flusher != nil {
			flusher.Flush()
		}
	}
}
