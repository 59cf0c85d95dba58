// Package hookcmd provides hook installation and lifecycle commands.
// This package is separate from the main commands package to allow independent
// evolution of hook lifecycle management.
package hookcmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dotcommander/claudesink/internal/models"
	"github.com/dotcommander/claudesink/internal/output"
)

const claudesinkCommandFallback = "claudesink"

//nolint:gochecknoglobals // sync.Once singleton cache for hook definitions; required by the sync.Once pattern
var (
	claudesinkHooksOnce  sync.Once
	claudesinkHooksCache map[string]hookEntry
)

type hookHandler struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout"`
}

type hookEntry struct {
	Matcher string        `json:"matcher"`
	Hooks   []hookHandler `json:"hooks"`
}

func claudeSettingsPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "settings.json")
}

func projectClaudeSettingsPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".", ".claude", "settings.json")
	}
	return filepath.Join(wd, ".claude", "settings.json")
}

func resolveClaudeSettingsPath(projectScoped bool) string {
	if projectScoped {
		return projectClaudeSettingsPath()
	}
	return claudeSettingsPath()
}

func claudesinkExecutable() string {
	exe, err := os.Executable()
	if err != nil || strings.TrimSpace(exe) == "" {
		return claudesinkCommandFallback
	}
	return exe
}

func buildHookCommand(subcommand string) string {
	exe := claudesinkExecutable()
	if exe == claudesinkCommandFallback {
		return fmt.Sprintf("claudesink hook %s", subcommand)
	}
	return fmt.Sprintf("%q hook %s", exe, subcommand)
}

func claudesinkHooks() map[string]hookEntry {
	claudesinkHooksOnce.Do(func() {
		claudesinkHooksCache = buildClaudesinkHooks()
	})
	return claudesinkHooksCache
}

// buildClaudesinkHooks defines the managed settings.json entries. Timeouts
// are in seconds; save-output and save-prompt get larger budgets because they
// may open a database connection.
func buildClaudesinkHooks() map[string]hookEntry {
	return map[string]hookEntry{
		models.HookEventStop: {
			Matcher: "",
			Hooks: []hookHandler{
				{Type: "command", Command: buildHookCommand("notify"), Timeout: 10},
				{Type: "command", Command: buildHookCommand("save-output"), Timeout: 30},
			},
		},
		models.HookEventNotification: {
			Matcher: "",
			Hooks: []hookHandler{{
				Type:    "command",
				Command: buildHookCommand("notify"),
				Timeout: 10,
			}},
		},
		models.HookEventUserPromptSubmit: {
			Matcher: "",
			Hooks: []hookHandler{{
				Type:    "command",
				Command: buildHookCommand("save-prompt"),
				Timeout: 30,
			}},
		},
	}
}

func managedHookEvents() []string {
	events := make([]string, 0, len(claudesinkHooks()))
	for name := range claudesinkHooks() {
		events = append(events, name)
	}
	sort.Strings(events)
	return events
}

func readSettings(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the well-known Claude settings location
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return settings, nil
}

func writeSettings(path string, settings map[string]any) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// HasClaudesinkHook checks if a hooks array already contains a claudesink hook command.
func HasClaudesinkHook(entries []any) bool {
	return len(claudesinkCommandsIn(entries)) > 0
}

// claudesinkCommandsIn lists the claudesink hook commands present in a hooks array.
func claudesinkCommandsIn(entries []any) []string {
	var cmds []string
	for _, entry := range entries {
		entryMap, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		hooks, ok := entryMap["hooks"].([]any)
		if !ok {
			continue
		}
		for _, h := range hooks {
			hMap, ok := h.(map[string]any)
			if !ok {
				continue
			}
			cmd, _ := hMap["command"].(string)
			if IsClaudesinkHookCommand(cmd) {
				cmds = append(cmds, cmd)
			}
		}
	}
	return cmds
}

// IsClaudesinkHookCommand checks if a command string is a claudesink hook command.
func IsClaudesinkHookCommand(command string) bool {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return false
	}
	parts := strings.Fields(cmd)
	if len(parts) < 3 {
		return false
	}

	execToken := strings.Trim(parts[0], "\"'")
	if filepath.Base(execToken) != "claudesink" {
		return false
	}
	if parts[1] != "hook" {
		return false
	}

	switch parts[2] {
	case "notify", "save-prompt", "save-output":
		return true
	default:
		return false
	}
}

func hookEntryEqual(a, b map[string]any) bool {
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	return string(aj) == string(bj)
}

type installOutcome int

const (
	hookInstalled installOutcome = iota
	hookUpdated
	hookSkipped
)

// upsertClaudesinkHookEntry replaces any existing claudesink entry with
// newEntry while preserving entries owned by other tools.
func upsertClaudesinkHookEntry(existing []any, newEntry map[string]any) ([]any, installOutcome) {
	var kept []any
	hadOurs := false
	matchingOurs := false

	for _, currentEntry := range existing {
		entryObj, ok := currentEntry.(map[string]any)
		if !ok {
			kept = append(kept, currentEntry)
			continue
		}
		hooks, ok := entryObj["hooks"].([]any)
		if !ok {
			kept = append(kept, currentEntry)
			continue
		}
		isOurs := false
		for _, h := range hooks {
			hMap, ok := h.(map[string]any)
			if !ok {
				continue
			}
			cmd, _ := hMap["command"].(string)
			if IsClaudesinkHookCommand(cmd) {
				isOurs = true
				break
			}
		}
		if isOurs {
			hadOurs = true
			if hookEntryEqual(entryObj, newEntry) {
				matchingOurs = true
			}
			continue
		}
		kept = append(kept, currentEntry)
	}

	kept = append(kept, newEntry)
	if matchingOurs {
		return kept, hookSkipped
	}
	if hadOurs {
		return kept, hookUpdated
	}
	return kept, hookInstalled
}

// NewInstallCmd creates the hook install command.
func NewInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Register claudesink hooks in Claude Code settings",
		Long: `Registers the notify, save-prompt and save-output handlers in Claude Code's
settings.json. Hook entries owned by other tools are preserved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectScoped, _ := cmd.Flags().GetBool("project")
			path := resolveClaudeSettingsPath(projectScoped)

			settings, err := readSettings(path)
			if err != nil {
				return err
			}

			hooksObj, _ := settings["hooks"].(map[string]any)
			if hooksObj == nil {
				hooksObj = map[string]any{}
			}

			var installed, updated, skipped []string
			for eventName, entry := range claudesinkHooks() {
				existing, _ := hooksObj[eventName].([]any)

				entryJSON, _ := json.Marshal(entry)
				var entryMap map[string]any
				_ = json.Unmarshal(entryJSON, &entryMap)

				entries, outcome := upsertClaudesinkHookEntry(existing, entryMap)
				hooksObj[eventName] = entries

				switch outcome {
				case hookInstalled:
					installed = append(installed, eventName)
				case hookUpdated:
					updated = append(updated, eventName)
				case hookSkipped:
					skipped = append(skipped, eventName)
				}
			}

			settings["hooks"] = hooksObj
			if err := writeSettings(path, settings); err != nil {
				return err
			}

			sort.Strings(installed)
			sort.Strings(updated)
			sort.Strings(skipped)

			msg := "Claude Code hooks already installed"
			switch {
			case len(installed) > 0 && len(updated) > 0:
				msg = fmt.Sprintf("Hooks installed (%s) and updated (%s)",
					strings.Join(installed, ", "), strings.Join(updated, ", "))
			case len(installed) > 0:
				msg = fmt.Sprintf("Hooks installed (%s)", strings.Join(installed, ", "))
			case len(updated) > 0:
				msg = fmt.Sprintf("Hooks updated (%s)", strings.Join(updated, ", "))
			}

			type result struct {
				Message   string   `json:"message"`
				Path      string   `json:"path"`
				Installed []string `json:"installed"`
				Updated   []string `json:"updated,omitempty"`
				Skipped   []string `json:"skipped"`
			}
			return output.PrintSuccess(result{
				Message:   msg + ". Run 'claudesink hook status' to verify.",
				Path:      path,
				Installed: installed,
				Updated:   updated,
				Skipped:   skipped,
			})
		},
	}

	cmd.Flags().Bool("project", false, "Install hooks in ./.claude/settings.json")
	return cmd
}

// NewUninstallCmd creates the hook uninstall command.
func NewUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove claudesink hooks from Claude Code settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectScoped, _ := cmd.Flags().GetBool("project")
			path := resolveClaudeSettingsPath(projectScoped)

			settings, err := readSettings(path)
			if err != nil {
				return err
			}

			type result struct {
				Path    string   `json:"path"`
				Removed []string `json:"removed"`
			}

			hooksObj, _ := settings["hooks"].(map[string]any)
			if hooksObj == nil {
				return output.PrintSuccess(result{Path: path, Removed: []string{}})
			}

			// Scan every event, not just the managed ones, so entries moved
			// by hand still get cleaned up.
			eventNames := make([]string, 0, len(hooksObj))
			for name := range hooksObj {
				eventNames = append(eventNames, name)
			}
			sort.Strings(eventNames)

			removed := []string{}
			for _, eventName := range eventNames {
				entries, ok := hooksObj[eventName].([]any)
				if !ok {
					continue
				}

				var kept []any
				for _, entry := range entries {
					entryMap, ok := entry.(map[string]any)
					if !ok {
						kept = append(kept, entry)
						continue
					}
					hooks, ok := entryMap["hooks"].([]any)
					if !ok {
						kept = append(kept, entry)
						continue
					}

					isOurs := false
					for _, h := range hooks {
						hMap, ok := h.(map[string]any)
						if !ok {
							continue
						}
						cmd, _ := hMap["command"].(string)
						if IsClaudesinkHookCommand(cmd) {
							isOurs = true
							break
						}
					}
					if !isOurs {
						kept = append(kept, entry)
					}
				}

				if len(kept) != len(entries) {
					removed = append(removed, eventName)
				}
				if len(kept) == 0 {
					delete(hooksObj, eventName)
				} else {
					hooksObj[eventName] = kept
				}
			}

			settings["hooks"] = hooksObj
			if err := writeSettings(path, settings); err != nil {
				return err
			}

			return output.PrintSuccess(result{Path: path, Removed: removed})
		},
	}

	cmd.Flags().Bool("project", false, "Uninstall hooks from ./.claude/settings.json")
	return cmd
}

// NewStatusCmd creates the hook status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which claudesink hooks are registered",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectScoped, _ := cmd.Flags().GetBool("project")
			path := resolveClaudeSettingsPath(projectScoped)

			settings, err := readSettings(path)
			if err != nil {
				return err
			}

			hooksObj, _ := settings["hooks"].(map[string]any)

			type eventStatus struct {
				Installed bool     `json:"installed"`
				Commands  []string `json:"commands,omitempty"`
			}

			events := map[string]eventStatus{}
			allInstalled := true
			for _, eventName := range managedHookEvents() {
				entries, _ := hooksObj[eventName].([]any)
				cmds := claudesinkCommandsIn(entries)
				st := eventStatus{Installed: len(cmds) > 0, Commands: cmds}
				if !st.Installed {
					allInstalled = false
				}
				events[eventName] = st
			}

			type resp struct {
				Path      string                 `json:"path"`
				Installed bool                   `json:"installed"`
				Events    map[string]eventStatus `json:"events"`
			}
			return output.PrintSuccess(resp{Path: path, Installed: allInstalled, Events: events})
		},
	}

	cmd.Flags().Bool("project", false, "Inspect ./.claude/settings.json")
	return cmd
}
