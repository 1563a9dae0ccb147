package gameover

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/fistjump/internal/game"
	"github.com/ayusman/fistjump/internal/plugin"
	"github.com/ayusman/fistjump/internal/render"
)

var (
	_ Prompter = Fixed(Restart)
	_ Prompter = Fallback{}
	_ Prompter = (*Console)(nil)
	_ Prompter = (*Window)(nil)
	_ Prompter = (*Plugin)(nil)
)

func TestParseChoice(t *testing.T) {
	tests := []struct {
		in      string
		want    Choice
		wantErr bool
	}{
		{"restart", Restart, false},
		{"quit", Quit, false},
		{"", Quit, true},
		{"Restart", Quit, true},
	}
	for _, tt := range tests {
		got, err := ParseChoice(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseChoice(%q) = %v, %v", tt.in, got, err)
		}
		if err == nil && got.String() != tt.in {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), tt.in)
		}
	}
}

func TestFixed(t *testing.T) {
	got, err := Fixed(Restart).Prompt(context.Background(), Outcome{})
	if err != nil || got != Restart {
		t.Errorf("Prompt() = %v, %v; want restart", got, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Fixed(Restart).Prompt(ctx, Outcome{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Prompt() on canceled ctx error = %v", err)
	}
}

type failingPrompter struct{ err error }

func (f failingPrompter) Prompt(ctx context.Context, o Outcome) (Choice, error) {
	return Quit, f.err
}

func TestFallback(t *testing.T) {
	var reported error
	boom := errors.New("no display")
	p := Fallback{
		Primary:   failingPrompter{boom},
		Secondary: Fixed(Restart),
		OnError:   func(err error) { reported = err },
	}

	got, err := p.Prompt(context.Background(), Outcome{})
	if err != nil || got != Restart {
		t.Errorf("Prompt() = %v, %v; want restart from secondary", got, err)
	}
	if !errors.Is(reported, boom) {
		t.Errorf("OnError got %v, want %v", reported, boom)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Primary = failingPrompter{context.Canceled}
	if _, err := p.Prompt(ctx, Outcome{}); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled prompt should not fall back, error = %v", err)
	}
}

func TestConsole(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Choice
	}{
		{"restart", "r\n", Restart},
		{"quit word", "quit\n", Quit},
		{"retries on garbage", "maybe\n\nyes\n", Restart},
		{"eof means quit", "", Quit},
		{"last line without newline", "r", Restart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := NewConsole(strings.NewReader(tt.input), &out).Prompt(context.Background(), Outcome{Score: 5, HighScore: 8})
			if err != nil {
				t.Fatalf("Prompt() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Prompt() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(out.String(), "Score: 5") || !strings.Contains(out.String(), "High score: 8") {
				t.Errorf("output %q missing scores", out.String())
			}
		})
	}
}

func TestConsole_Record(t *testing.T) {
	var out bytes.Buffer
	NewConsole(strings.NewReader("q\n"), &out).Prompt(context.Background(), Outcome{Score: 9, HighScore: 9, Record: true})
	if !strings.Contains(out.String(), "New high score: 9") {
		t.Errorf("output %q missing record line", out.String())
	}
}

func TestWindow(t *testing.T) {
	cfg := game.DefaultConfig()
	scene := render.NewScene(cfg)

	tests := []struct {
		name string
		keys []render.Key
		quit bool
		want Choice
	}{
		{"restart key", []render.Key{render.KeyRestart}, false, Restart},
		{"quit key", []render.Key{render.KeyQuit}, false, Quit},
		{"window closed", nil, true, Quit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := render.NewList()
			if tt.quit {
				list.RequestQuit()
			}

			w := NewWindow(list, scene)
			go func() {
				time.Sleep(2 * pollInterval)
				list.PressKeys(tt.keys...)
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			got, err := w.Prompt(ctx, Outcome{Score: 2, HighScore: 4, Round: game.NewRound(cfg)})
			if err != nil {
				t.Fatalf("Prompt() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Prompt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWindow_IgnoresStaleKeys(t *testing.T) {
	list := render.NewList()
	list.PressKeys(render.KeyRestart, render.KeyOther)

	ctx, cancel := context.WithTimeout(context.Background(), 5*pollInterval)
	defer cancel()

	_, err := NewWindow(list, render.NewScene(game.DefaultConfig())).Prompt(ctx, Outcome{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Prompt() error = %v, want deadline: keys pressed before the prompt must be dropped", err)
	}
	if !slices.Contains(list.Texts(), "GAME OVER") {
		t.Errorf("panel not drawn, texts %q", list.Texts())
	}
}

func dialogPlugin(t *testing.T, script string) *plugin.Manager {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	root := t.TempDir()
	dir := filepath.Join(root, "dialog")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "plugin.json"), []byte(`{"name":"dialog","executable":"run.sh","actions":["game_over"]}`), 0644)
	if err := os.WriteFile(filepath.Join(dir, "run.sh"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	m := plugin.NewManager(root)
	if err := m.Discover(); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestPlugin(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		want    Choice
		wantErr bool
	}{
		{
			name:   "restart",
			script: "#!/bin/sh\ncat >/dev/null\necho '{\"success\":true,\"data\":{\"choice\":\"restart\"}}'\n",
			want:   Restart,
		},
		{
			name:   "quit",
			script: "#!/bin/sh\ncat >/dev/null\necho '{\"success\":true,\"data\":{\"choice\":\"quit\"}}'\n",
			want:   Quit,
		},
		{
			name:    "plugin failure",
			script:  "#!/bin/sh\ncat >/dev/null\necho '{\"success\":false,\"error\":\"no display\"}'\n",
			wantErr: true,
		},
		{
			name:    "unknown choice",
			script:  "#!/bin/sh\ncat >/dev/null\necho '{\"success\":true,\"data\":{\"choice\":\"maybe\"}}'\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := dialogPlugin(t, tt.script)
			p := NewPlugin(m, plugin.NewExecutor(5*time.Second), "")

			got, err := p.Prompt(context.Background(), Outcome{Score: 1, HighScore: 2})
			if tt.wantErr {
				if !errors.Is(err, ErrNoChoice) {
					t.Errorf("Prompt() error = %v, want ErrNoChoice", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Prompt() = %v, %v; want %v", got, err, tt.want)
			}
		})
	}
}

func TestPlugin_NotFound(t *testing.T) {
	m := plugin.NewManager(t.TempDir())
	m.Discover()

	_, err := NewPlugin(m, plugin.NewExecutor(time.Second), "").Prompt(context.Background(), Outcome{})
	if !errors.Is(err, plugin.ErrPluginNotFound) {
		t.Errorf("Prompt() error = %v, want ErrPluginNotFound", err)
	}

	_, err = NewPlugin(m, plugin.NewExecutor(time.Second), "named").Prompt(context.Background(), Outcome{})
	if !errors.Is(err, plugin.ErrPluginNotFound) {
		t.Errorf("Prompt() error = %v, want ErrPluginNotFound", err)
	}
}
