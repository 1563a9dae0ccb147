// Package app runs FistJump sessions: the start screen, rounds driven by
// the camera pipeline and the game-over prompt between them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ayusman/fistjump/internal/capture"
	"github.com/ayusman/fistjump/internal/detector"
	"github.com/ayusman/fistjump/internal/feed"
	"github.com/ayusman/fistjump/internal/game"
	"github.com/ayusman/fistjump/internal/gameover"
	"github.com/ayusman/fistjump/internal/gesture"
	"github.com/ayusman/fistjump/internal/render"
	"github.com/ayusman/fistjump/internal/store"
	"github.com/ayusman/fistjump/internal/telemetry"
)

// DefaultInferenceEvery runs hand detection on every second captured frame.
const DefaultInferenceEvery = 2

// Config holds the collaborators of a session.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	Surface  render.Surface
	Prompter gameover.Prompter
	Scores   store.HighScores

	// Feed receives spectator snapshots. May be nil.
	Feed *feed.Feed

	Game           game.Config
	TickRate       int
	InferenceEvery int
	Preview        bool

	// SkipStart starts the first round without the start screen.
	SkipStart bool

	// OnScore is called when the score or the high score changes.
	OnScore func(score, high int)
}

// App is a game session.
type App struct {
	config   Config
	engine   *game.Engine
	scene    *render.Scene
	pipeline *Pipeline
	high     int
}

// New validates config and builds a session.
func New(config Config) (*App, error) {
	switch {
	case config.Camera == nil:
		return nil, errors.New("app: camera is required")
	case config.Detector == nil:
		return nil, errors.New("app: detector is required")
	case config.Surface == nil:
		return nil, errors.New("app: surface is required")
	case config.Scores == nil:
		return nil, errors.New("app: high score store is required")
	}
	if config.Prompter == nil {
		config.Prompter = gameover.Fixed(gameover.Quit)
	}
	if config.TickRate <= 0 {
		config.TickRate = game.DefaultTickRate
	}
	if config.InferenceEvery <= 0 {
		config.InferenceEvery = DefaultInferenceEvery
	}

	engine, err := game.NewEngine(config.Game)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	scene := render.NewScene(config.Game)

	a := &App{
		config: config,
		engine: engine,
		scene:  scene,
	}
	a.pipeline = &Pipeline{
		camera:     config.Camera,
		detector:   config.Detector,
		classifier: gesture.NewClassifier(),
		debouncer:  gesture.NewDefaultDebouncer(),
		engine:     engine,
		scene:      scene,
		surface:    config.Surface,
		feed:       config.Feed,
		interval:   time.Second / time.Duration(config.TickRate),
		every:      config.InferenceEvery,
		preview:    config.Preview,
		OnTick:     a.onTick,
	}
	return a, nil
}

// HighScore returns the best score known to the session.
func (a *App) HighScore() int {
	return a.high
}

// Run plays rounds until the player quits, the surface closes or ctx is
// cancelled. Quitting is not an error.
func (a *App) Run(ctx context.Context) error {
	a.high = a.loadHighScore()
	a.notify(0)

	if !a.config.SkipStart {
		if err := a.waitStart(ctx); err != nil {
			return quitIsNil(err)
		}
	}

	for {
		o, err := a.playRound(ctx)
		if err != nil {
			return quitIsNil(err)
		}
		log.Printf("round over: score %d, high score %d", o.Score, o.HighScore)

		choice, err := a.prompt(ctx, o)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("game-over prompt failed, quitting: %v", err)
			}
			return nil
		}
		if choice == gameover.Quit {
			return nil
		}
	}
}

// loadHighScore reads the persisted high score. Unreadable values are
// logged and count as 0.
func (a *App) loadHighScore() int {
	high, err := a.config.Scores.Load()
	if err != nil {
		log.Printf("ignoring stored high score: %v", err)
		return 0
	}
	return high
}

// waitStart shows the start screen until the player presses any key other
// than quit or holds a fist.
func (a *App) waitStart(ctx context.Context) error {
	if err := a.config.Camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer a.closeCamera()

	classifier := gesture.NewClassifier()
	debouncer := gesture.NewDefaultDebouncer()

	ticker := time.NewTicker(a.pipeline.interval)
	defer ticker.Stop()

	for {
		a.scene.Start(a.config.Surface, a.high)
		if err := a.config.Surface.Present(); err != nil {
			return err
		}

		switch a.config.Surface.PollKey() {
		case render.KeyNone:
		case render.KeyQuit:
			return render.ErrQuit
		default:
			return nil
		}

		if frame, err := a.config.Camera.ReadFrame(); err == nil {
			hands, err := a.config.Detector.Detect(frame)
			frame.Close()
			fist := false
			if err == nil {
				fist, _ = classifier.Sample(hands)
			}
			if debouncer.Observe(fist) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", render.ErrQuit, ctx.Err())
		case <-ticker.C:
		}
	}
}

// playRound acquires the camera, plays one round to its end and releases
// the camera on every path.
func (a *App) playRound(ctx context.Context) (gameover.Outcome, error) {
	if err := a.config.Camera.Open(); err != nil {
		return gameover.Outcome{}, fmt.Errorf("open camera: %w", err)
	}
	defer a.closeCamera()

	r := a.engine.NewRound()
	ctx, span := telemetry.Tracer().Start(ctx, "round",
		trace.WithAttributes(attribute.String("round.id", r.ID.String())))
	defer span.End()

	log.Printf("round %s started", r.ID)
	a.pipeline.Begin(r, a.high)
	a.notify(0)

	err := a.pipeline.Run(ctx)
	span.SetAttributes(
		attribute.Int("round.score", r.Score),
		attribute.Int("round.ticks", r.Tick),
		attribute.Int("round.jumps", r.Jumps),
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return gameover.Outcome{}, err
	}

	o := gameover.Outcome{Score: r.Score, Round: r}
	if r.Score > a.high {
		a.high = r.Score
		o.Record = true
		if err := a.config.Scores.Save(a.high); err != nil {
			log.Printf("failed to save high score: %v", err)
		}
		a.notify(r.Score)
	}
	o.HighScore = a.high
	span.SetAttributes(attribute.Bool("round.record", o.Record))
	return o, nil
}

func (a *App) prompt(ctx context.Context, o gameover.Outcome) (gameover.Choice, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "game_over.prompt")
	defer span.End()

	choice, err := a.config.Prompter.Prompt(ctx, o)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return gameover.Quit, err
	}
	span.SetAttributes(attribute.String("choice", choice.String()))
	return choice, nil
}

func (a *App) onTick(r *game.Round, ev game.Events) {
	if ev.Scored > 0 {
		a.notify(r.Score)
	}
}

func (a *App) notify(score int) {
	if a.config.OnScore != nil {
		a.config.OnScore(score, a.high)
	}
}

func (a *App) closeCamera() {
	if err := a.config.Camera.Close(); err != nil {
		log.Printf("error closing camera: %v", err)
	}
}

func quitIsNil(err error) error {
	if errors.Is(err, render.ErrQuit) {
		return nil
	}
	return err
}
