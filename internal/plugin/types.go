// Package plugin discovers and runs external helper programs that speak a
// JSON request/response protocol over stdin and stdout.
package plugin

import "encoding/json"

// ActionGameOver asks a plugin to show the end-of-round dialog.
const ActionGameOver = "game_over"

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Supports reports whether the manifest lists action.
func (m Manifest) Supports(action string) bool {
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Request represents a request sent to a plugin for execution.
type Request struct {
	Action string          `json:"action"`
	Config json.RawMessage `json:"config,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// GameOverParams are the params of a game_over request.
type GameOverParams struct {
	Score     int  `json:"score"`
	HighScore int  `json:"high_score"`
	Record    bool `json:"record"`
}

// GameOverData is the data of a successful game_over response.
type GameOverData struct {
	// Choice is "restart" or "quit".
	Choice string `json:"choice"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
