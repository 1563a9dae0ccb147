package game

// Events reports what happened during one tick.
type Events struct {
	Jumped  bool
	Landed  bool
	Spawned bool
	// Scored is the number of obstacles that left the field this tick.
	Scored int
	// Over is set on the tick the player hit an obstacle.
	Over bool
	// Hit is the obstacle the player collided with, valid when Over is set.
	Hit Obstacle
}

// Engine advances rounds one fixed tick at a time.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine after validating cfg.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// NewRound creates a fresh round for this engine's configuration.
func (e *Engine) NewRound() *Round {
	return NewRound(e.cfg)
}

// Tick advances r by one tick using the current jump command. It moves the
// player, spawns, scrolls and scores obstacles, then checks collisions.
// Ticks on a finished round do nothing.
func (e *Engine) Tick(r *Round, jump bool) Events {
	var ev Events
	if r.Over {
		return ev
	}
	r.Tick++

	e.stepPlayer(r, jump, &ev)
	e.spawn(r, &ev)
	e.scroll(r, &ev)
	e.collide(r, &ev)

	return ev
}

func (e *Engine) stepPlayer(r *Round, jump bool, ev *Events) {
	p := &r.Player

	// Only a rising edge seen while grounded starts a jump; an edge that
	// arrives mid-air is consumed.
	rising := jump && !r.lastCommand
	r.lastCommand = jump
	if rising && p.Phase == Grounded {
		p.VelocityY = e.cfg.JumpImpulse
		p.Phase = Airborne
		r.Jumps++
		ev.Jumped = true
	}

	p.VelocityY += e.cfg.Gravity
	p.Y += p.VelocityY

	if p.Y >= e.cfg.GroundY {
		p.Y = e.cfg.GroundY
		p.VelocityY = 0
		if p.Phase == Airborne {
			ev.Landed = true
		}
		p.Phase = Grounded
	}
}

func (e *Engine) spawn(r *Round, ev *Events) {
	r.sinceSpawn++
	if r.sinceSpawn < e.cfg.SpawnEvery {
		return
	}
	r.sinceSpawn = 0

	r.nextID++
	r.Obstacles = append(r.Obstacles, Obstacle{
		ID:     r.nextID,
		X:      e.cfg.FieldWidth,
		Y:      e.cfg.GroundY,
		Width:  e.cfg.ObstacleWidth,
		Height: e.cfg.ObstacleHeight,
	})
	ev.Spawned = true
}

func (e *Engine) scroll(r *Round, ev *Events) {
	kept := r.Obstacles[:0]
	for _, o := range r.Obstacles {
		o.X -= r.Speed
		if o.X+o.Width < 0 {
			r.Score++
			ev.Scored++
			continue
		}
		kept = append(kept, o)
	}
	r.Obstacles = kept
}

func (e *Engine) collide(r *Round, ev *Events) {
	player := r.Player.Bounds()
	for _, o := range r.Obstacles {
		if player.Overlaps(o.Bounds()) {
			r.Over = true
			ev.Over = true
			ev.Hit = o
			return
		}
	}
}
