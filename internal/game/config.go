// Package game implements the per-tick physics, obstacle and scoring rules of a round.
package game

import (
	"fmt"
	"math"
	"time"
)

// Default field geometry and physics, in pixels and pixels per tick.
const (
	DefaultFieldWidth    = 800
	DefaultFieldHeight   = 400
	DefaultGroundY       = 300
	DefaultGroundHeight  = 50
	DefaultPlayerX       = 50
	DefaultPlayerSize    = 50
	DefaultObstacleSize  = 30
	DefaultGravity       = 1
	DefaultJumpImpulse   = -20
	DefaultObstacleSpeed = 5
	DefaultTickRate      = 60
	DefaultSpawnInterval = 2500 * time.Millisecond
)

// Config holds the geometry and physics constants of a round.
type Config struct {
	FieldWidth  int
	FieldHeight int

	// GroundY is the resting top edge of the player and of every obstacle.
	GroundY      int
	GroundHeight int

	PlayerX      int
	PlayerWidth  int
	PlayerHeight int

	ObstacleWidth  int
	ObstacleHeight int
	ObstacleSpeed  int

	Gravity     int
	JumpImpulse int

	// SpawnEvery is the number of ticks between obstacle spawns.
	SpawnEvery int
}

// DefaultConfig returns the reference geometry running at DefaultTickRate.
func DefaultConfig() Config {
	return Config{
		FieldWidth:     DefaultFieldWidth,
		FieldHeight:    DefaultFieldHeight,
		GroundY:        DefaultGroundY,
		GroundHeight:   DefaultGroundHeight,
		PlayerX:        DefaultPlayerX,
		PlayerWidth:    DefaultPlayerSize,
		PlayerHeight:   DefaultPlayerSize,
		ObstacleWidth:  DefaultObstacleSize,
		ObstacleHeight: DefaultObstacleSize,
		ObstacleSpeed:  DefaultObstacleSpeed,
		Gravity:        DefaultGravity,
		JumpImpulse:    DefaultJumpImpulse,
		SpawnEvery:     SpawnTicks(DefaultSpawnInterval, DefaultTickRate),
	}
}

// SpawnTicks converts a wall-clock spawn interval into whole ticks at tickRate.
func SpawnTicks(interval time.Duration, tickRate int) int {
	ticks := int(math.Round(interval.Seconds() * float64(tickRate)))
	if ticks < 1 {
		return 1
	}
	return ticks
}

// Validate checks that the configuration can run a round.
func (c Config) Validate() error {
	switch {
	case c.FieldWidth <= 0 || c.FieldHeight <= 0:
		return fmt.Errorf("field size must be positive, got %dx%d", c.FieldWidth, c.FieldHeight)
	case c.PlayerWidth <= 0 || c.PlayerHeight <= 0:
		return fmt.Errorf("player size must be positive, got %dx%d", c.PlayerWidth, c.PlayerHeight)
	case c.ObstacleWidth <= 0 || c.ObstacleHeight <= 0:
		return fmt.Errorf("obstacle size must be positive, got %dx%d", c.ObstacleWidth, c.ObstacleHeight)
	case c.ObstacleSpeed <= 0:
		return fmt.Errorf("obstacle speed must be positive, got %d", c.ObstacleSpeed)
	case c.Gravity <= 0:
		return fmt.Errorf("gravity must be positive, got %d", c.Gravity)
	case c.JumpImpulse >= 0:
		return fmt.Errorf("jump impulse must be negative, got %d", c.JumpImpulse)
	case c.SpawnEvery <= 0:
		return fmt.Errorf("spawn interval must be positive, got %d ticks", c.SpawnEvery)
	}
	return nil
}
