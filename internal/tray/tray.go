// Package tray provides a system tray menu for FistJump: the current and
// best score, a link to the spectator page and Quit.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onOpen func()
	onQuit func()
	score  int
	high   int
	mu     sync.RWMutex

	// exit stops the tray loop; replaced in tests.
	exit func()

	// Menu items stored for later updates
	menuScore *systray.MenuItem
	menuBest  *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{exit: systray.Quit}
}

// OnOpen sets the callback for the "Open spectator page" item. The item is
// only shown when a callback is set before Run.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Stop is called or Quit is clicked.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Stop ends Run.
func (t *Tray) Stop() {
	t.exit()
}

// onReady sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("FistJump")
	systray.SetTooltip("FistJump: make a fist to jump")

	t.mu.Lock()
	t.menuScore = systray.AddMenuItem(scoreTitle(t.score), "Score of the current round")
	t.menuScore.Disable()
	t.menuBest = systray.AddMenuItem(bestTitle(t.high), "Best score so far")
	t.menuBest.Disable()
	hasOpen := t.onOpen != nil
	t.mu.Unlock()
	systray.AddSeparator()

	openCh := make(<-chan struct{})
	if hasOpen {
		menuOpen := systray.AddMenuItem("Open spectator page...", "Watch the game in a browser")
		openCh = menuOpen.ClickedCh
		systray.AddSeparator()
	}

	menuQuit := systray.AddMenuItem("Quit", "Quit FistJump")

	go func() {
		for {
			select {
			case <-openCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	t.exit()
}

// SetScore updates the score lines in the menu.
func (t *Tray) SetScore(score, high int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.score, t.high = score, high
	if t.menuScore != nil {
		t.menuScore.SetTitle(scoreTitle(score))
	}
	if t.menuBest != nil {
		t.menuBest.SetTitle(bestTitle(high))
	}
}

// Score returns the last values passed to SetScore.
func (t *Tray) Score() (score, high int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.score, t.high
}

func scoreTitle(score int) string { return fmt.Sprintf("Score: %d", score) }

func bestTitle(high int) string {
	if high <= 0 {
		return "Best: none"
	}
	return fmt.Sprintf("Best: %d", high)
}
