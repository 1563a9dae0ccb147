package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/fistjump/internal/app"
	"github.com/ayusman/fistjump/internal/capture"
	"github.com/ayusman/fistjump/internal/config"
	"github.com/ayusman/fistjump/internal/detector"
	"github.com/ayusman/fistjump/internal/feed"
	"github.com/ayusman/fistjump/internal/gameover"
	"github.com/ayusman/fistjump/internal/plugin"
	"github.com/ayusman/fistjump/internal/render"
	"github.com/ayusman/fistjump/internal/render/ebitenview"
	"github.com/ayusman/fistjump/internal/server"
	"github.com/ayusman/fistjump/internal/store"
	"github.com/ayusman/fistjump/internal/telemetry"
	"github.com/ayusman/fistjump/internal/tray"
)

const title = "FistJump"

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("FistJump failed: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	fmt.Println("FistJump - make a fist to jump")

	shutdown, err := telemetry.Setup(ctx, "fistjump", cfg.OTelEndpoint)
	if err != nil {
		log.Printf("Tracing disabled: %v", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Printf("Failed to flush traces: %v", err)
		}
	}()

	scores, err := store.Open(cfg.HighScorePath)
	if err != nil {
		return fmt.Errorf("open high score store: %w", err)
	}
	defer scores.Close()

	// Try MediaPipe first, fall back to a detector that never sees a hand
	var det detector.Detector
	if mp, err := detector.NewMediaPipeDetector(cfg.Detector()); err == nil {
		det = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), no hands will be detected", err)
		det = detector.NewMockDetector()
	}
	defer det.Close()

	cam := capture.NewTimedCamera(
		capture.NewCamera(cfg.CameraID, capture.WithMirror(cfg.Mirror)),
		cfg.ReadTimeout,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	var spectators *feed.Feed
	if cfg.HTTPAddr != "" {
		spectators = feed.New()
		staticDir := cfg.StaticDir
		if staticDir == "" {
			staticDir = findWebDir()
		}
		if staticDir != "" {
			fmt.Printf("Serving spectator page from: %s\n", staticDir)
		}
		srv := server.New(server.Config{StaticDir: staticDir, Feed: spectators})
		g.Go(func() error {
			if err := srv.Run(gctx, cfg.HTTPAddr); err != nil {
				return fmt.Errorf("spectator server: %w", err)
			}
			return nil
		})
	}

	var onScore func(score, high int)
	if cfg.Tray && trayConflicts(runtime.GOOS, cfg.Frontend) {
		log.Printf("Warning: the tray and the %s frontend both drive GTK on %s; tray disabled (use -frontend=ebiten)", cfg.Frontend, runtime.GOOS)
	} else if cfg.Tray {
		tr := tray.New()
		tr.OnQuit(cancel)
		if cfg.HTTPAddr != "" {
			tr.OnOpen(func() { openBrowser(spectatorURL(cfg.HTTPAddr)) })
		}
		onScore = tr.SetScore
		g.Go(func() error {
			tr.Run()
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			tr.Stop()
			return nil
		})
	}

	gameCfg := cfg.Game()
	scene := render.NewScene(gameCfg)

	play := func(ctx context.Context, surface render.Surface) error {
		prompter, err := newPrompter(cfg, surface, scene)
		if err != nil {
			return err
		}

		a, err := app.New(app.Config{
			Camera:         cam,
			Detector:       det,
			Surface:        surface,
			Prompter:       prompter,
			Scores:         scores,
			Feed:           spectators,
			Game:           gameCfg,
			TickRate:       cfg.TickRate,
			InferenceEvery: cfg.InferenceEvery,
			Preview:        cfg.Preview,
			OnScore:        onScore,
		})
		if err != nil {
			return err
		}
		return a.Run(ctx)
	}

	// The game owns the main goroutine; both GUI toolkits need it.
	var gameErr error
	switch cfg.Frontend {
	case "ebiten":
		view := ebitenview.New(title, gameCfg.FieldWidth, gameCfg.FieldHeight)
		gameErr = view.Run(gctx, func(ctx context.Context) error { return play(ctx, view) })
	default:
		win := render.NewWindow(title, gameCfg.FieldWidth, gameCfg.FieldHeight, cfg.Preview)
		gameErr = play(gctx, win)
		if err := win.Close(); err != nil {
			log.Printf("Error closing window: %v", err)
		}
	}

	cancel()
	return errors.Join(gameErr, g.Wait())
}

// newPrompter builds the game-over prompter named by cfg.Prompt. The
// plugin prompter falls back to the in-window panel.
func newPrompter(cfg config.Config, surface render.Surface, scene *render.Scene) (gameover.Prompter, error) {
	window := gameover.NewWindow(surface, scene)

	switch cfg.Prompt {
	case "console":
		return gameover.NewConsole(os.Stdin, os.Stdout), nil
	case "restart":
		return gameover.Fixed(gameover.Restart), nil
	case "quit":
		return gameover.Fixed(gameover.Quit), nil
	case "plugin":
		mgr := plugin.NewManager(cfg.PluginDir)
		if err := mgr.Discover(); err != nil {
			return nil, fmt.Errorf("discover plugins: %w", err)
		}
		log.Printf("Discovered %d plugins in %s", len(mgr.List()), mgr.PluginDir())
		return gameover.Fallback{
			Primary:   gameover.NewPlugin(mgr, plugin.NewExecutor(cfg.PluginTimeout), cfg.PluginName),
			Secondary: window,
			OnError: func(err error) {
				log.Printf("Game-over plugin failed, asking in the window: %v", err)
			},
		}, nil
	default:
		return window, nil
	}
}

// trayConflicts reports whether the tray cannot run next to frontend. On
// Linux both systray and the highgui window run GTK loops, and GTK may only
// be driven from one thread.
func trayConflicts(goos, frontend string) bool {
	return goos == "linux" && frontend == "window"
}

// findWebDir searches for the spectator page in common locations.
// It checks: "web", "../web", "../../web", and ~/.fistjump/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".fistjump", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// spectatorURL turns a listen address into a browsable URL.
func spectatorURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open %s: %v", url, err)
		return
	}
	go cmd.Wait()
}
