// Package main provides the game-over dialog plugin.
// It asks the player whether to play again, using AppleScript on macOS and
// zenity on Linux.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

const (
	title       = "FistJump"
	playAgain   = "Play Again"
	quitLabel   = "Quit"
	choiceAgain = "restart"
	choiceQuit  = "quit"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Config json.RawMessage `json:"config"`
	Params json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// GameOverParams carries the finished round.
type GameOverParams struct {
	Score     int  `json:"score"`
	HighScore int  `json:"high_score"`
	Record    bool `json:"record"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	switch req.Action {
	case "game_over":
		choice, err := handleGameOver(req.Params)
		if err != nil {
			writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
			return
		}
		writeChoiceResponse(choice)
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
	}
}

// handleGameOver shows the dialog and returns "restart" or "quit".
func handleGameOver(params json.RawMessage) (string, error) {
	var p GameOverParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return "", fmt.Errorf("failed to parse params: %w", err)
		}
	}

	message := buildMessage(p)
	switch runtime.GOOS {
	case "darwin":
		out, err := runAppleScript(buildDialogScript(message))
		if err != nil {
			return "", err
		}
		return parseAppleScriptChoice(out), nil
	case "linux":
		return runZenity(message)
	default:
		return "", fmt.Errorf("no dialog available on %s", runtime.GOOS)
	}
}

// buildMessage formats the dialog text.
func buildMessage(p GameOverParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game over!\nScore: %d\n", p.Score)
	if p.Record {
		fmt.Fprintf(&b, "New high score: %d", p.HighScore)
	} else {
		fmt.Fprintf(&b, "High score: %d", p.HighScore)
	}
	return b.String()
}

// buildDialogScript generates an AppleScript dialog with quit and play-again buttons.
func buildDialogScript(message string) string {
	escaped := strings.ReplaceAll(message, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	return fmt.Sprintf(`display dialog "%s" buttons {"%s", "%s"} default button "%s" with title "%s"`,
		escaped, quitLabel, playAgain, playAgain, title)
}

// parseAppleScriptChoice maps osascript output like "button returned:Quit".
func parseAppleScriptChoice(output string) string {
	if strings.Contains(output, "button returned:"+playAgain) {
		return choiceAgain
	}
	return choiceQuit
}

// runZenity asks with a question dialog: OK plays again, Cancel quits.
func runZenity(message string) (string, error) {
	cmd := exec.Command("zenity", "--question",
		"--title="+title,
		"--text="+message,
		"--ok-label="+playAgain,
		"--cancel-label="+quitLabel,
	)
	err := cmd.Run()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return choiceAgain, nil
	case errors.As(err, &exitErr) && exitErr.ExitCode() == 1:
		return choiceQuit, nil
	default:
		return "", fmt.Errorf("zenity: %w", err)
	}
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeChoiceResponse writes a success response carrying the choice.
func writeChoiceResponse(choice string) {
	data, _ := json.Marshal(map[string]string{"choice": choice})
	resp := Response{
		Success: true,
		Data:    data,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// runAppleScript executes an AppleScript command and returns its output.
func runAppleScript(script string) (string, error) {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, string(output))
	}
	return string(output), nil
}
