package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dotcommander/claudesink/internal/actions"
	"github.com/dotcommander/claudesink/internal/app"
	"github.com/dotcommander/claudesink/internal/commands/hookcmd"
)

// maxHookStdinBytes caps stdin reads. Hook payloads are small JSON objects;
// 1 MB is generous headroom that prevents unbounded allocation.
const maxHookStdinBytes = 1 << 20

// NewHookCmd creates the hook parent command.
func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Hook handlers and installers for Claude Code",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(hookcmd.NewInstallCmd())
	cmd.AddCommand(hookcmd.NewUninstallCmd())
	cmd.AddCommand(hookcmd.NewStatusCmd())

	// Handler subcommands are invoked by Claude Code, not by people. Hidden
	// from help output to reduce command surface noise.
	for _, sub := range []*cobra.Command{
		newHookNotifyCmd(),
		newHookSavePromptCmd(),
		newHookSaveOutputCmd(),
	} {
		sub.Hidden = true
		cmd.AddCommand(sub)
	}

	return cmd
}

// hookInput is the JSON Claude Code sends on stdin to hooks.
type hookInput struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	CWD            string `json:"cwd"`
	HookEventName  string `json:"hook_event_name"`
	Prompt         string `json:"prompt"`
}

func (in hookInput) event() actions.Event {
	return actions.Event{
		SessionID:      in.SessionID,
		TranscriptPath: in.TranscriptPath,
		CWD:            in.CWD,
		Prompt:         in.Prompt,
	}
}

func parseHookInput(data []byte) (hookInput, error) {
	var input hookInput
	if err := json.Unmarshal(data, &input); err != nil {
		return hookInput{}, fmt.Errorf("parse hook input: %w", err)
	}
	return input, nil
}

func readHookStdin(r io.Reader) (hookInput, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxHookStdinBytes))
	if err != nil {
		return hookInput{}, fmt.Errorf("read hook stdin: %w", err)
	}
	return parseHookInput(data)
}

// loadHookSettings loads settings tolerantly. A broken config file is logged
// and the environment overlay still applies; handlers keep working on
// whatever configuration is available.
func loadHookSettings() app.Settings {
	st, err := app.LoadSettings()
	if err != nil {
		slog.Warn("config file unreadable, using environment only", "error", err.Error())
	}
	return st
}
