package gameover

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ayusman/fistjump/internal/plugin"
)

// Plugin asks through an external dialog plugin speaking the game_over action.
type Plugin struct {
	manager  *plugin.Manager
	executor *plugin.Executor
	name     string
}

// NewPlugin creates a prompter. An empty name selects the first discovered
// plugin that supports game_over.
func NewPlugin(manager *plugin.Manager, executor *plugin.Executor, name string) *Plugin {
	return &Plugin{manager: manager, executor: executor, name: name}
}

// Prompt runs the plugin and decodes its choice.
func (p *Plugin) Prompt(ctx context.Context, o Outcome) (Choice, error) {
	plug, err := p.lookup()
	if err != nil {
		return Quit, err
	}

	params, err := json.Marshal(plugin.GameOverParams{
		Score:     o.Score,
		HighScore: o.HighScore,
		Record:    o.Record,
	})
	if err != nil {
		return Quit, fmt.Errorf("failed to encode params: %w", err)
	}

	resp, err := p.executor.Execute(ctx, plug, &plugin.Request{
		Action: plugin.ActionGameOver,
		Params: params,
	})
	if err != nil {
		return Quit, err
	}
	if !resp.Success {
		return Quit, fmt.Errorf("%w: plugin %s: %s", ErrNoChoice, plug.Manifest.Name, resp.Error)
	}

	var data plugin.GameOverData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return Quit, fmt.Errorf("%w: plugin %s: %v", ErrNoChoice, plug.Manifest.Name, err)
	}
	choice, err := ParseChoice(data.Choice)
	if err != nil {
		return Quit, fmt.Errorf("%w: plugin %s answered %q", ErrNoChoice, plug.Manifest.Name, data.Choice)
	}
	return choice, nil
}

func (p *Plugin) lookup() (*plugin.Plugin, error) {
	if p.name != "" {
		return p.manager.Get(p.name)
	}
	return p.manager.Find(plugin.ActionGameOver)
}
