// Package feed hands the latest game state and camera frame from the game
// loop to observers on other goroutines. Every slot holds only the newest
// value; observers never block the loop and never write game state.
package feed

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/fistjump/internal/game"
)

// PlayerView is the player part of a Snapshot.
type PlayerView struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	VelocityY int    `json:"velocity_y"`
	Phase     string `json:"phase"`
}

// ObstacleView is one obstacle in a Snapshot.
type ObstacleView struct {
	ID     int `json:"id"`
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Snapshot is a copy of the visible game state after one tick.
type Snapshot struct {
	RoundID   string         `json:"round_id"`
	Tick      int            `json:"tick"`
	Score     int            `json:"score"`
	HighScore int            `json:"high_score"`
	Over      bool           `json:"over"`
	Jump      bool           `json:"jump_command"`
	Hands     int            `json:"hands"`
	Player    PlayerView     `json:"player"`
	Obstacles []ObstacleView `json:"obstacles"`
	Timestamp int64          `json:"timestamp"`
}

// SnapshotOf copies the state of r. The result shares no memory with r.
func SnapshotOf(r *game.Round, high int, jump bool, hands int) Snapshot {
	s := Snapshot{
		RoundID:   r.ID.String(),
		Tick:      r.Tick,
		Score:     r.Score,
		HighScore: high,
		Over:      r.Over,
		Jump:      jump,
		Hands:     hands,
		Player: PlayerView{
			X:         r.Player.X,
			Y:         r.Player.Y,
			VelocityY: r.Player.VelocityY,
			Phase:     r.Player.Phase.String(),
		},
		Obstacles: make([]ObstacleView, len(r.Obstacles)),
		Timestamp: time.Now().UnixMilli(),
	}
	for i, o := range r.Obstacles {
		s.Obstacles[i] = ObstacleView{ID: o.ID, X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
	}
	return s
}

// Feed is a set of single-slot mailboxes.
type Feed struct {
	mu       sync.RWMutex
	snap     Snapshot
	snapSeq  uint64
	frame    []byte
	frameSeq uint64

	watchers atomic.Int32
}

// New creates an empty feed.
func New() *Feed {
	return &Feed{}
}

// Publish replaces the latest snapshot.
func (f *Feed) Publish(s Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = s
	f.snapSeq++
}

// Latest returns the newest snapshot and its sequence number, 0 when
// nothing was published yet.
func (f *Feed) Latest() (Snapshot, uint64) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snap, f.snapSeq
}

// PublishFrame replaces the latest encoded camera frame. The feed takes
// ownership of jpeg.
func (f *Feed) PublishFrame(jpeg []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frame = jpeg
	f.frameSeq++
}

// Frame returns the newest encoded frame and its sequence number. The
// returned bytes must not be modified.
func (f *Feed) Frame() ([]byte, uint64) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.frame, f.frameSeq
}

// Watch registers a frame viewer. Call the returned func when it leaves.
func (f *Feed) Watch() func() {
	f.watchers.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { f.watchers.Add(-1) })
	}
}

// Watching reports whether any frame viewer is connected.
func (f *Feed) Watching() bool {
	return f.watchers.Load() > 0
}
