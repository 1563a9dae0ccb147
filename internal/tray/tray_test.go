package tray

import "testing"

func TestTitles(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"score zero", scoreTitle(0), "Score: 0"},
		{"score", scoreTitle(12), "Score: 12"},
		{"no best yet", bestTitle(0), "Best: none"},
		{"best", bestTitle(7), "Best: 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestTray_SetScoreBeforeReady(t *testing.T) {
	tr := New()
	tr.SetScore(3, 9)

	score, high := tr.Score()
	if score != 3 || high != 9 {
		t.Errorf("Score() = %d, %d, want 3, 9", score, high)
	}
}

func TestTray_Callbacks(t *testing.T) {
	tr := New()
	exited := 0
	tr.exit = func() { exited++ }

	var opened, quit bool
	tr.OnOpen(func() { opened = true })
	tr.OnQuit(func() { quit = true })

	tr.handleOpen()
	if !opened {
		t.Error("open callback not called")
	}

	tr.handleQuit()
	if !quit {
		t.Error("quit callback not called")
	}
	if exited != 1 {
		t.Errorf("exit called %d times, want 1", exited)
	}

	tr.Stop()
	if exited != 2 {
		t.Errorf("Stop did not exit the tray loop")
	}
}

func TestTray_NoCallbacks(t *testing.T) {
	tr := New()
	tr.exit = func() {}

	// Must not panic.
	tr.handleOpen()
	tr.handleQuit()
}
