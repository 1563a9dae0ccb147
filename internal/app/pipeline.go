package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/fistjump/internal/capture"
	"github.com/ayusman/fistjump/internal/detector"
	"github.com/ayusman/fistjump/internal/feed"
	"github.com/ayusman/fistjump/internal/game"
	"github.com/ayusman/fistjump/internal/gesture"
	"github.com/ayusman/fistjump/internal/render"
)

// failureLogEvery rate-limits capture failure logs to the first failure
// and every n-th one after it.
const failureLogEvery = 60

// Pipeline runs one round: capture, inference, physics and drawing, one
// tick at a time.
//
// Pipeline logic per tick:
//  1. Read the newest (mirrored) camera frame; on failure skip the tick
//  2. On every n-th captured frame run detector -> classifier -> debouncer
//  3. Advance the engine one tick with the current jump command
//  4. Draw the round, the camera preview and publish a spectator snapshot
type Pipeline struct {
	camera     capture.Camera
	detector   detector.Detector
	classifier *gesture.Classifier
	debouncer  *gesture.Debouncer
	engine     *game.Engine
	scene      *render.Scene
	surface    render.Surface
	feed       *feed.Feed

	interval time.Duration
	every    int
	preview  bool

	// OnTick is called after every tick that advanced the round.
	OnTick func(r *game.Round, ev game.Events)

	round    *game.Round
	high     int
	command  bool
	hands    []detector.HandLandmarks
	captured int
	failures int
}

// Begin resets per-round state. The debouncer history is cleared so the
// new round starts with a false command.
func (p *Pipeline) Begin(r *game.Round, high int) {
	p.round = r
	p.high = high
	p.command = false
	p.hands = nil
	p.captured = 0
	p.failures = 0
	p.debouncer.Reset()
}

// Round returns the round in progress.
func (p *Pipeline) Round() *game.Round {
	return p.round
}

// Command returns the current debounced jump command.
func (p *Pipeline) Command() bool {
	return p.command
}

// Step runs a single iteration. It reports done once the round is over.
// A failed camera read skips the iteration and is not an error.
func (p *Pipeline) Step(ctx context.Context) (done bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %w", render.ErrQuit, err)
	}
	if p.round == nil {
		return false, errors.New("pipeline has no round")
	}
	if p.round.Over {
		return true, nil
	}

	frame, err := p.camera.ReadFrame()
	if err != nil {
		p.failures++
		if p.failures == 1 || p.failures%failureLogEvery == 0 {
			log.Printf("camera read failed (%d in a row): %v", p.failures, err)
		}
		return false, nil
	}
	defer frame.Close()

	if p.failures > 0 {
		log.Printf("camera recovered after %d failed reads", p.failures)
		p.failures = 0
	}

	if p.captured%p.every == 0 {
		p.infer(frame)
	}
	p.captured++

	ev := p.engine.Tick(p.round, p.command)
	if ev.Jumped {
		log.Printf("jump at tick %d", p.round.Tick)
	}

	if err := p.draw(frame); err != nil {
		return false, err
	}
	p.publish(frame)

	if p.OnTick != nil {
		p.OnTick(p.round, ev)
	}

	return ev.Over, nil
}

// infer samples the frame and feeds the debouncer. Detector errors count
// as a negative sample.
func (p *Pipeline) infer(frame *gocv.Mat) {
	hands, err := p.detector.Detect(frame)
	if err != nil {
		log.Printf("hand detection failed: %v", err)
		p.hands = nil
		p.command = p.debouncer.Observe(false)
		return
	}

	p.hands = hands
	fist, _ := p.classifier.Sample(hands)
	p.command = p.debouncer.Observe(fist)
}

func (p *Pipeline) draw(frame *gocv.Mat) error {
	p.scene.Round(p.surface, p.round, p.high)
	if err := p.surface.Present(); err != nil {
		return err
	}

	if !p.preview {
		return nil
	}
	if pv, ok := p.surface.(render.Previewer); ok {
		if err := pv.ShowPreview(frame, p.hands); err != nil {
			log.Printf("preview failed: %v", err)
		}
	}
	return nil
}

// publish hands the tick to spectators. The frame is only JPEG-encoded
// while someone is watching the stream.
func (p *Pipeline) publish(frame *gocv.Mat) {
	if p.feed == nil {
		return
	}

	p.feed.Publish(feed.SnapshotOf(p.round, p.high, p.command, len(p.hands)))

	if !p.feed.Watching() {
		return
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		log.Printf("frame encode failed: %v", err)
		return
	}
	defer buf.Close()
	p.feed.PublishFrame(append([]byte(nil), buf.GetBytes()...))
}

// Run steps the round on a fixed-rate ticker until it is over. Context
// cancellation and surface quit requests return an error wrapping
// render.ErrQuit.
func (p *Pipeline) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		done, err := p.Step(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", render.ErrQuit, ctx.Err())
		case <-ticker.C:
		}
	}
}
