package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gocv.io/x/gocv"

	"github.com/ayusman/fistjump/internal/capture"
	"github.com/ayusman/fistjump/internal/detector"
	"github.com/ayusman/fistjump/internal/feed"
	"github.com/ayusman/fistjump/internal/game"
	"github.com/ayusman/fistjump/internal/gameover"
	"github.com/ayusman/fistjump/internal/render"
	"github.com/ayusman/fistjump/internal/store"
)

// scriptedPrompter answers with choices in order and records every outcome.
type scriptedPrompter struct {
	mu       sync.Mutex
	choices  []gameover.Choice
	outcomes []gameover.Outcome
}

func (p *scriptedPrompter) Prompt(ctx context.Context, o gameover.Outcome) (gameover.Choice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcomes = append(p.outcomes, o)
	if len(p.choices) == 0 {
		return gameover.Quit, nil
	}
	c := p.choices[0]
	p.choices = p.choices[1:]
	return c, nil
}

type harness struct {
	app      *App
	camera   *capture.MockCamera
	detector *detector.MockDetector
	surface  *render.List
	scores   *store.File
	feed     *feed.Feed
	prompter *scriptedPrompter
}

func newHarness(t *testing.T, mutate func(*Config)) *harness {
	t.Helper()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })

	h := &harness{
		camera:   capture.NewMockCamera([]*gocv.Mat{&frame}, true),
		detector: detector.NewMockDetector(),
		surface:  render.NewList(),
		scores:   store.NewFile(filepath.Join(t.TempDir(), "highscore.txt")),
		feed:     feed.New(),
		prompter: &scriptedPrompter{},
	}

	cfg := Config{
		Camera:         h.camera,
		Detector:       h.detector,
		Surface:        h.surface,
		Prompter:       h.prompter,
		Scores:         h.scores,
		Feed:           h.feed,
		Game:           game.DefaultConfig(),
		TickRate:       2000,
		InferenceEvery: 1,
		SkipStart:      true,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.app = a
	return h
}

func TestNew_Validation(t *testing.T) {
	frame := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer frame.Close()

	full := func() Config {
		return Config{
			Camera:   capture.NewMockCamera([]*gocv.Mat{&frame}, true),
			Detector: detector.NewMockDetector(),
			Surface:  render.NewList(),
			Scores:   store.NewFile(filepath.Join(t.TempDir(), "hs.txt")),
			Game:     game.DefaultConfig(),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"complete", func(*Config) {}, false},
		{"no camera", func(c *Config) { c.Camera = nil }, true},
		{"no detector", func(c *Config) { c.Detector = nil }, true},
		{"no surface", func(c *Config) { c.Surface = nil }, true},
		{"no scores", func(c *Config) { c.Scores = nil }, true},
		{"bad physics", func(c *Config) { c.Game.Gravity = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := full()
			tt.mutate(&cfg)
			_, err := New(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	frame := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer frame.Close()

	a, err := New(Config{
		Camera:   capture.NewMockCamera([]*gocv.Mat{&frame}, true),
		Detector: detector.NewMockDetector(),
		Surface:  render.NewList(),
		Scores:   store.NewFile(filepath.Join(t.TempDir(), "hs.txt")),
		Game:     game.DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if a.pipeline.every != DefaultInferenceEvery {
		t.Errorf("inference cadence = %d, want %d", a.pipeline.every, DefaultInferenceEvery)
	}
	if want := time.Second / game.DefaultTickRate; a.pipeline.interval != want {
		t.Errorf("tick interval = %v, want %v", a.pipeline.interval, want)
	}
	if a.config.Prompter == nil {
		t.Error("expected a default prompter")
	}
}

func TestApp_NoJumpRestartThenQuit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full round test in short mode")
	}

	h := newHarness(t, nil)
	h.prompter.choices = []gameover.Choice{gameover.Restart, gameover.Quit}

	if err := h.app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(h.prompter.outcomes) != 2 {
		t.Fatalf("prompted %d times, want 2", len(h.prompter.outcomes))
	}
	for i, o := range h.prompter.outcomes {
		if o.Score != 0 || o.Record {
			t.Errorf("round %d outcome = %+v, want score 0 and no record", i, o)
		}
		if o.Round == nil || !o.Round.Over {
			t.Errorf("round %d outcome carries no finished round", i)
		}
	}
	if h.prompter.outcomes[0].Round.ID == h.prompter.outcomes[1].Round.ID {
		t.Error("restart reused the round id")
	}

	opens, closes, _ := h.camera.Stats()
	if opens != 2 || closes != 2 {
		t.Errorf("camera opens/closes = %d/%d, want 2/2", opens, closes)
	}
}

func TestApp_TimedFistClearsObstacleAndSavesRecord(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full round test in short mode")
	}

	var scoreUpdates [][2]int
	h := newHarness(t, func(c *Config) {
		c.OnScore = func(score, high int) { scoreUpdates = append(scoreUpdates, [2]int{score, high}) }
	})

	// Samples 278..280 are fists, so the command rises on tick 280 and the
	// player clears the first obstacle. Held fists never re-trigger, so the
	// second obstacle ends the round.
	h.detector.SetScript(make([][]detector.HandLandmarks, 277))
	h.detector.SetHands([]detector.HandLandmarks{detector.FistLandmarks()})

	if err := h.app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(h.prompter.outcomes) != 1 {
		t.Fatalf("prompted %d times, want 1", len(h.prompter.outcomes))
	}
	o := h.prompter.outcomes[0]
	if o.Score != 1 || !o.Record || o.HighScore != 1 {
		t.Errorf("outcome = score %d record %v high %d, want 1 true 1", o.Score, o.Record, o.HighScore)
	}
	if o.Round.Jumps != 1 {
		t.Errorf("jumps = %d, want 1", o.Round.Jumps)
	}

	saved, err := h.scores.Load()
	if err != nil || saved != 1 {
		t.Errorf("saved high score = %d, %v, want 1", saved, err)
	}

	if len(scoreUpdates) == 0 || scoreUpdates[len(scoreUpdates)-1] != [2]int{1, 1} {
		t.Errorf("score updates = %v, want last {1 1}", scoreUpdates)
	}
}

func TestApp_MalformedHighScoreCountsAsZero(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full round test in short mode")
	}

	h := newHarness(t, nil)
	if err := os.WriteFile(h.scores.Path(), []byte("lots"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := h.app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if h.app.HighScore() != 0 {
		t.Errorf("HighScore() = %d, want 0", h.app.HighScore())
	}
	if o := h.prompter.outcomes[0]; o.HighScore != 0 || o.Record {
		t.Errorf("outcome = %+v", o)
	}
}

func TestApp_SurfaceQuitReleasesCamera(t *testing.T) {
	h := newHarness(t, nil)
	h.surface.RequestQuit()

	if err := h.app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil on quit", err)
	}
	if len(h.prompter.outcomes) != 0 {
		t.Error("quit mid-round must not prompt")
	}

	opens, closes, _ := h.camera.Stats()
	if opens != 1 || closes != 1 {
		t.Errorf("camera opens/closes = %d/%d, want 1/1", opens, closes)
	}
	if h.camera.IsOpen() {
		t.Error("camera still open after quit")
	}
}

func TestApp_CancelReleasesCamera(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.TickRate = 60 })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := h.app.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v, want nil on cancel", err)
	}
	if h.camera.IsOpen() {
		t.Error("camera still open after cancel")
	}
}

func TestApp_OpenFailure(t *testing.T) {
	h := newHarness(t, nil)
	openErr := errors.New("no device")
	h.app.config.Camera = failingCamera{Camera: h.camera, err: openErr}
	h.app.pipeline.camera = h.app.config.Camera

	if err := h.app.Run(context.Background()); !errors.Is(err, openErr) {
		t.Errorf("Run() error = %v, want %v", err, openErr)
	}
}

type failingCamera struct {
	capture.Camera
	err error
}

func (c failingCamera) Open() error { return c.err }

func TestApp_StartScreen(t *testing.T) {
	for _, key := range []render.Key{render.KeyRestart, render.KeyOther} {
		t.Run(key.String()+" key starts", func(t *testing.T) {
			h := newHarness(t, func(c *Config) { c.SkipStart = false })
			h.surface.PressKeys(key)

			if err := h.app.waitStart(context.Background()); err != nil {
				t.Fatalf("waitStart() error = %v", err)
			}
			if texts := h.surface.Texts(); len(texts) == 0 || texts[0] != "Play Game" {
				t.Errorf("start screen texts = %v", texts)
			}
			if got := h.detector.Calls(); got != 0 {
				t.Errorf("detector calls = %d, want 0 when a key starts the game", got)
			}
		})
	}

	t.Run("held fist starts", func(t *testing.T) {
		h := newHarness(t, func(c *Config) { c.SkipStart = false })
		h.detector.SetHands([]detector.HandLandmarks{detector.FistLandmarks()})

		if err := h.app.waitStart(context.Background()); err != nil {
			t.Fatalf("waitStart() error = %v", err)
		}
		if got := h.detector.Calls(); got != 3 {
			t.Errorf("detector calls = %d, want 3", got)
		}
		if h.camera.IsOpen() {
			t.Error("start screen left the camera open")
		}
	})

	t.Run("quit key quits", func(t *testing.T) {
		h := newHarness(t, func(c *Config) { c.SkipStart = false })
		h.surface.PressKeys(render.KeyQuit)

		if err := h.app.Run(context.Background()); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		opens, _, _ := h.camera.Stats()
		if opens != 1 {
			t.Errorf("camera opened %d times, want 1 (start screen only)", opens)
		}
		if len(h.prompter.outcomes) != 0 {
			t.Error("no round should have been played")
		}
	})
}

func TestApp_Spans(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full round test in short mode")
	}

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		tp.Shutdown(context.Background())
	})

	h := newHarness(t, nil)
	if err := h.app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	names := map[string]bool{}
	for _, s := range rec.Ended() {
		names[s.Name()] = true
	}
	for _, want := range []string{"round", "game_over.prompt"} {
		if !names[want] {
			t.Errorf("missing span %q, got %v", want, names)
		}
	}
}
