package render

import (
	"fmt"
	"image/color"

	"github.com/ayusman/fistjump/internal/game"
)

// Palette of the default scene.
var (
	SkyColor      = color.RGBA{R: 200, G: 230, B: 255, A: 255}
	GroundColor   = color.RGBA{R: 110, G: 84, B: 60, A: 255}
	PlayerColor   = color.RGBA{R: 40, G: 120, B: 60, A: 255}
	ObstacleColor = color.RGBA{R: 180, G: 40, B: 40, A: 255}
	InkColor      = color.RGBA{A: 255}
	PanelColor    = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	PaperColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	AccentColor   = color.RGBA{R: 255, G: 200, B: 0, A: 255}
)

// Scene draws rounds for one field configuration.
type Scene struct {
	cfg      game.Config
	ground   Sprite
	player   Sprite
	obstacle Sprite
}

// NewScene builds the sprites for cfg.
func NewScene(cfg game.Config) *Scene {
	return &Scene{
		cfg:      cfg,
		ground:   Sprite{Width: cfg.FieldWidth, Height: cfg.GroundHeight, Color: GroundColor},
		player:   Sprite{Width: cfg.PlayerWidth, Height: cfg.PlayerHeight, Color: PlayerColor},
		obstacle: Sprite{Width: cfg.ObstacleWidth, Height: cfg.ObstacleHeight, Color: ObstacleColor},
	}
}

// Round draws background, ground, player, obstacles and the score overlay.
func (s *Scene) Round(c Canvas, r *game.Round, high int) {
	c.Clear(SkyColor)
	c.Blit(s.ground, 0, s.cfg.FieldHeight-s.cfg.GroundHeight)
	c.Blit(s.player, r.Player.X, r.Player.Y)
	for _, o := range r.Obstacles {
		c.Blit(s.obstacle, o.X, o.Y)
	}
	c.Text(fmt.Sprintf("Score: %d", r.Score), 10, 10, InkColor)
	if high > 0 {
		c.Text(fmt.Sprintf("Best: %d", high), s.cfg.FieldWidth-160, 10, InkColor)
	}
}

// GameOver draws the end-of-round panel over the last frame of r, or over
// an empty sky when r is nil. record marks a score that beat the previous
// high score.
func (s *Scene) GameOver(c Canvas, r *game.Round, score, high int, record bool) {
	if r != nil {
		s.Round(c, r, high)
	} else {
		c.Clear(SkyColor)
	}

	panel := Sprite{Width: 360, Height: 180, Color: PanelColor}
	x := (s.cfg.FieldWidth - panel.Width) / 2
	y := (s.cfg.FieldHeight - panel.Height) / 2
	c.Blit(panel, x, y)

	c.Text("GAME OVER", x+100, y+20, PaperColor)
	c.Text(fmt.Sprintf("Score: %d", score), x+30, y+60, PaperColor)
	if record {
		c.Text(fmt.Sprintf("New high score: %d", high), x+30, y+90, AccentColor)
	} else {
		c.Text(fmt.Sprintf("High score: %d", high), x+30, y+90, PaperColor)
	}
	c.Text("R: play again   Q: quit", x+30, y+140, PaperColor)
}

// Start draws the title screen shown before the first round.
func (s *Scene) Start(c Canvas, high int) {
	c.Clear(PaperColor)
	button := Sprite{Width: 200, Height: 50, Color: PlayerColor}
	x := s.cfg.FieldWidth/2 - button.Width/2
	y := s.cfg.FieldHeight/2 - button.Height/2
	c.Blit(button, x, y)
	c.Text("Play Game", x+45, y+15, PaperColor)
	c.Text("Press any key or make a fist to start", x-95, y+80, InkColor)
	if high > 0 {
		c.Text(fmt.Sprintf("High score: %d", high), x+30, y-60, InkColor)
	}
}
