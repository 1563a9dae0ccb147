package game

import (
	"image"

	"github.com/google/uuid"
)

// Phase is the vertical state of the player.
type Phase int

const (
	// Grounded means the player rests on the ground line and may jump.
	Grounded Phase = iota
	// Airborne means a jump is in progress.
	Airborne
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Grounded:
		return "grounded"
	case Airborne:
		return "airborne"
	default:
		return "unknown"
	}
}

// Player is the jumping sprite. X never changes during a round.
type Player struct {
	X, Y          int
	Width, Height int
	VelocityY     int
	Phase         Phase
}

// Bounds returns the player's bounding box.
func (p Player) Bounds() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// Obstacle is an axis-aligned block scrolling towards the player.
type Obstacle struct {
	ID            int
	X, Y          int
	Width, Height int
}

// Bounds returns the obstacle's bounding box.
func (o Obstacle) Bounds() image.Rectangle {
	return image.Rect(o.X, o.Y, o.X+o.Width, o.Y+o.Height)
}

// Round is the complete mutable state of one playthrough.
type Round struct {
	ID        uuid.UUID
	Tick      int
	Score     int
	Speed     int
	Over      bool
	Jumps     int
	Player    Player
	Obstacles []Obstacle

	// lastCommand is the jump command seen on the previous tick, for edge detection.
	lastCommand bool
	// sinceSpawn counts ticks since the last spawn.
	sinceSpawn int
	nextID     int
}

// NewRound creates a round with the player grounded and no obstacles.
func NewRound(cfg Config) *Round {
	return &Round{
		ID:    uuid.New(),
		Speed: cfg.ObstacleSpeed,
		Player: Player{
			X:      cfg.PlayerX,
			Y:      cfg.GroundY,
			Width:  cfg.PlayerWidth,
			Height: cfg.PlayerHeight,
			Phase:  Grounded,
		},
		Obstacles: make([]Obstacle, 0, 4),
	}
}
