// Package config loads FistJump settings from FISTJUMP_* environment
// variables, overridden by command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ayusman/fistjump/internal/detector"
	"github.com/ayusman/fistjump/internal/game"
)

// Frontends and prompts accepted by Validate.
var (
	Frontends = []string{"window", "ebiten"}
	Prompts   = []string{"window", "console", "plugin", "restart", "quit"}
)

// Config holds process configuration.
type Config struct {
	CameraID    int           `env:"FISTJUMP_CAMERA"        envDefault:"0"`
	Mirror      bool          `env:"FISTJUMP_MIRROR"        envDefault:"true"`
	ReadTimeout time.Duration `env:"FISTJUMP_READ_TIMEOUT"  envDefault:"500ms"`

	TickRate       int `env:"FISTJUMP_TICK_RATE"        envDefault:"60"`
	InferenceEvery int `env:"FISTJUMP_INFERENCE_EVERY"  envDefault:"2"`

	Frontend string `env:"FISTJUMP_FRONTEND" envDefault:"window"`
	Preview  bool   `env:"FISTJUMP_PREVIEW"  envDefault:"true"`
	Prompt   string `env:"FISTJUMP_PROMPT"   envDefault:"window"`

	PluginDir     string        `env:"FISTJUMP_PLUGIN_DIR"     envDefault:"plugins"`
	PluginName    string        `env:"FISTJUMP_PLUGIN"`
	PluginTimeout time.Duration `env:"FISTJUMP_PLUGIN_TIMEOUT" envDefault:"2m"`

	HighScorePath string `env:"FISTJUMP_HIGHSCORE" envDefault:"highscore.txt"`

	HTTPAddr  string `env:"FISTJUMP_HTTP_ADDR"`
	StaticDir string `env:"FISTJUMP_STATIC_DIR"`
	Tray      bool   `env:"FISTJUMP_TRAY"`

	OTelEndpoint string `env:"FISTJUMP_OTEL_ENDPOINT"`

	MaxHands        int     `env:"FISTJUMP_MAX_HANDS"           envDefault:"2"`
	MinConfidence   float64 `env:"FISTJUMP_MIN_CONFIDENCE"      envDefault:"0.5"`
	MinTrackingConf float64 `env:"FISTJUMP_MIN_TRACKING_CONF"   envDefault:"0.5"`
}

// Parse reads the environment, then parses args with fs. Flags win.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.IntVar(&cfg.CameraID, "camera", cfg.CameraID, "camera device id")
	fs.BoolVar(&cfg.Mirror, "mirror", cfg.Mirror, "mirror the camera image")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "camera read timeout (0 waits forever)")
	fs.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "game ticks per second")
	fs.IntVar(&cfg.InferenceEvery, "inference-every", cfg.InferenceEvery, "run hand detection on every n-th frame")
	fs.StringVar(&cfg.Frontend, "frontend", cfg.Frontend, "game window: window or ebiten")
	fs.BoolVar(&cfg.Preview, "preview", cfg.Preview, "show the camera preview with hand landmarks")
	fs.StringVar(&cfg.Prompt, "prompt", cfg.Prompt, "game-over prompt: window, console, plugin, restart or quit")
	fs.StringVar(&cfg.PluginDir, "plugin-dir", cfg.PluginDir, "plugin directory")
	fs.StringVar(&cfg.PluginName, "plugin", cfg.PluginName, "game-over plugin name (empty picks any)")
	fs.DurationVar(&cfg.PluginTimeout, "plugin-timeout", cfg.PluginTimeout, "game-over plugin timeout")
	fs.StringVar(&cfg.HighScorePath, "highscore", cfg.HighScorePath, "high score file (.db for sqlite)")
	fs.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "spectator server address (empty disables)")
	fs.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "spectator page directory")
	fs.BoolVar(&cfg.Tray, "tray", cfg.Tray, "show a system tray menu (not with -frontend=window on Linux)")
	fs.StringVar(&cfg.OTelEndpoint, "otel-endpoint", cfg.OTelEndpoint, "OTLP/HTTP trace endpoint (empty disables)")
	fs.IntVar(&cfg.MaxHands, "max-hands", cfg.MaxHands, "maximum hands to detect")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.TickRate <= 0:
		return errors.New("tick rate must be positive")
	case c.InferenceEvery <= 0:
		return errors.New("inference cadence must be positive")
	case c.ReadTimeout < 0:
		return errors.New("read timeout must not be negative")
	case c.MaxHands <= 0:
		return errors.New("max hands must be positive")
	case !slices.Contains(Frontends, c.Frontend):
		return fmt.Errorf("unknown frontend %q", c.Frontend)
	case !slices.Contains(Prompts, c.Prompt):
		return fmt.Errorf("unknown prompt %q", c.Prompt)
	case c.HighScorePath == "":
		return errors.New("high score path is required")
	}
	return nil
}

// Detector returns the hand detector settings.
func (c Config) Detector() detector.Config {
	d := detector.DefaultConfig()
	d.MaxHands = c.MaxHands
	d.MinConfidence = c.MinConfidence
	d.MinTrackingConf = c.MinTrackingConf
	return d
}

// Game returns the physics settings with the spawn interval converted at
// the configured tick rate.
func (c Config) Game() game.Config {
	g := game.DefaultConfig()
	g.SpawnEvery = game.SpawnTicks(game.DefaultSpawnInterval, c.TickRate)
	return g
}
