package hookcmd

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	original := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = original }()

	fn()

	require.NoError(t, w.Close())
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	return string(b)
}

func TestIsClaudesinkHookCommand(t *testing.T) {
	require.True(t, IsClaudesinkHookCommand("claudesink hook notify"))
	require.True(t, IsClaudesinkHookCommand("claudesink hook save-prompt"))
	require.True(t, IsClaudesinkHookCommand("claudesink hook save-output"))
	require.True(t, IsClaudesinkHookCommand("/usr/local/bin/claudesink hook notify"))
	require.True(t, IsClaudesinkHookCommand(`"/home/someone/go/bin/claudesink" hook save-output`))

	require.False(t, IsClaudesinkHookCommand(""))
	require.False(t, IsClaudesinkHookCommand("claudesink doctor"))
	require.False(t, IsClaudesinkHookCommand("claudesink hook"))
	require.False(t, IsClaudesinkHookCommand("claudesink hook install"))
	require.False(t, IsClaudesinkHookCommand("claudesink hook unknown-subcommand"))
	require.False(t, IsClaudesinkHookCommand("echo claudesink hook notify"))
	require.False(t, IsClaudesinkHookCommand("/usr/local/bin/not-claudesink hook notify"))
}

func TestHasClaudesinkHook(t *testing.T) {
	require.False(t, HasClaudesinkHook(nil))

	entries := []any{
		map[string]any{
			"hooks": []any{
				map[string]any{"command": "claudesink hook notify"},
			},
		},
	}
	require.True(t, HasClaudesinkHook(entries))

	// Malformed entries should not panic.
	require.False(t, HasClaudesinkHook([]any{"not-a-map"}))
	require.False(t, HasClaudesinkHook([]any{map[string]any{"hooks": "not-a-slice"}}))
}

func TestManagedHookEvents(t *testing.T) {
	require.Equal(t, []string{"Notification", "Stop", "UserPromptSubmit"}, managedHookEvents())
}

func TestBuildClaudesinkHooks_StopRunsBothHandlers(t *testing.T) {
	hooks := buildClaudesinkHooks()

	stop := hooks["Stop"]
	require.Len(t, stop.Hooks, 2)
	require.Contains(t, stop.Hooks[0].Command, "hook notify")
	require.Contains(t, stop.Hooks[1].Command, "hook save-output")

	notification := hooks["Notification"]
	require.Len(t, notification.Hooks, 1)
	require.Contains(t, notification.Hooks[0].Command, "hook notify")

	prompt := hooks["UserPromptSubmit"]
	require.Len(t, prompt.Hooks, 1)
	require.Contains(t, prompt.Hooks[0].Command, "hook save-prompt")

	for _, entry := range hooks {
		for _, h := range entry.Hooks {
			require.Equal(t, "command", h.Type)
			require.Positive(t, h.Timeout)
		}
	}
}

func TestHookEntryEqual(t *testing.T) {
	a := map[string]any{
		"matcher": "",
		"hooks": []any{
			map[string]any{"type": "command", "command": "claudesink hook notify", "timeout": float64(10)},
		},
	}
	b := map[string]any{
		"matcher": "",
		"hooks": []any{
			map[string]any{"type": "command", "command": "claudesink hook notify", "timeout": float64(10)},
		},
	}
	require.True(t, hookEntryEqual(a, b))

	// Different timeout
	c := map[string]any{
		"matcher": "",
		"hooks": []any{
			map[string]any{"type": "command", "command": "claudesink hook notify", "timeout": float64(30)},
		},
	}
	require.False(t, hookEntryEqual(a, c))
}

func TestUpsertClaudesinkHookEntry(t *testing.T) {
	newEntry := map[string]any{
		"matcher": "",
		"hooks": []any{
			map[string]any{"type": "command", "command": "claudesink hook save-prompt", "timeout": float64(30)},
		},
	}

	// Fresh install (nil existing)
	entries, outcome := upsertClaudesinkHookEntry(nil, newEntry)
	require.Equal(t, hookInstalled, outcome)
	require.Len(t, entries, 1)

	// Skip (identical entry already present)
	entries, outcome = upsertClaudesinkHookEntry(entries, newEntry)
	require.Equal(t, hookSkipped, outcome)
	require.Len(t, entries, 1)

	// Update (different timeout)
	updatedEntry := map[string]any{
		"matcher": "",
		"hooks": []any{
			map[string]any{"type": "command", "command": "claudesink hook save-prompt", "timeout": float64(60)},
		},
	}
	entries, outcome = upsertClaudesinkHookEntry(entries, updatedEntry)
	require.Equal(t, hookUpdated, outcome)
	require.Len(t, entries, 1)

	// Non-claudesink entries are preserved
	foreign := map[string]any{
		"hooks": []any{
			map[string]any{"type": "command", "command": "other-tool do-thing"},
		},
	}
	mixed := []any{foreign, entries[0]}
	entries, outcome = upsertClaudesinkHookEntry(mixed, updatedEntry)
	require.Equal(t, hookSkipped, outcome)
	require.Len(t, entries, 2)
}

func TestReadSettings_AndWriteSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	settings, err := readSettings(path)
	require.NoError(t, err)
	require.Empty(t, settings)

	input := map[string]any{"hooks": map[string]any{"Stop": []any{}}}
	require.NoError(t, writeSettings(path, input))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, b)
	require.Equal(t, byte('\n'), b[len(b)-1])

	loaded, err := readSettings(path)
	require.NoError(t, err)
	require.Contains(t, loaded, "hooks")
}

func TestReadSettings_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	settings, err := readSettings(path)
	require.Error(t, err)
	require.Nil(t, settings)
}

// seedSettings writes a settings.json under a fake home and returns its path.
func seedSettings(t *testing.T, home string, settings map[string]any) string {
	t.Helper()
	path := filepath.Join(home, ".claude", "settings.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, writeSettings(path, settings))
	return path
}

func TestInstall_PreservesForeignEntries(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CLAUDESINK_PRETTY_JSON", "")

	path := seedSettings(t, home, map[string]any{
		"model": "opus",
		"hooks": map[string]any{
			"Stop": []any{
				map[string]any{
					"matcher": "",
					"hooks": []any{
						map[string]any{"type": "command", "command": "other-tool notify-me"},
					},
				},
			},
		},
	})

	cmd := NewInstallCmd()
	cmd.SetArgs([]string{})
	out := captureStdout(t, func() {
		require.NoError(t, cmd.Execute())
	})
	require.Contains(t, out, `"success":true`)

	settings, err := readSettings(path)
	require.NoError(t, err)
	require.Equal(t, "opus", settings["model"])

	hooksObj, ok := settings["hooks"].(map[string]any)
	require.True(t, ok)

	for _, event := range managedHookEvents() {
		require.Contains(t, hooksObj, event)
	}

	stopEntries, ok := hooksObj["Stop"].([]any)
	require.True(t, ok)
	require.Len(t, stopEntries, 2)

	first, ok := stopEntries[0].(map[string]any)
	require.True(t, ok)
	firstHooks, ok := first["hooks"].([]any)
	require.True(t, ok)
	firstCmd, _ := firstHooks[0].(map[string]any)["command"].(string)
	require.Equal(t, "other-tool notify-me", firstCmd)

	ours, ok := stopEntries[1].(map[string]any)
	require.True(t, ok)
	ourHooks, ok := ours["hooks"].([]any)
	require.True(t, ok)
	require.Len(t, ourHooks, 2)
}

func TestInstall_CreatesSettingsFromScratch(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cmd := NewInstallCmd()
	cmd.SetArgs([]string{})
	out := captureStdout(t, func() {
		require.NoError(t, cmd.Execute())
	})
	require.Contains(t, out, "Hooks installed")

	settings, err := readSettings(filepath.Join(home, ".claude", "settings.json"))
	require.NoError(t, err)
	hooksObj, ok := settings["hooks"].(map[string]any)
	require.True(t, ok)
	require.Len(t, hooksObj, 3)
}

func TestUninstall_RemovesOnlyOurEntries(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CLAUDESINK_PRETTY_JSON", "")

	path := seedSettings(t, home, map[string]any{
		"hooks": map[string]any{
			"Stop": []any{
				map[string]any{
					"matcher": "",
					"hooks": []any{
						map[string]any{"type": "command", "command": "claudesink hook notify", "timeout": float64(10)},
						map[string]any{"type": "command", "command": "claudesink hook save-output", "timeout": float64(30)},
					},
				},
				map[string]any{
					"matcher": "",
					"hooks": []any{
						map[string]any{"type": "command", "command": "other-tool notify-me"},
					},
				},
			},
			"UserPromptSubmit": []any{
				map[string]any{
					"matcher": "",
					"hooks": []any{
						map[string]any{"type": "command", "command": "claudesink hook save-prompt", "timeout": float64(30)},
					},
				},
			},
		},
	})

	cmd := NewUninstallCmd()
	cmd.SetArgs([]string{})
	out := captureStdout(t, func() {
		require.NoError(t, cmd.Execute())
	})
	require.Contains(t, out, `"removed":["Stop","UserPromptSubmit"]`)

	settings, err := readSettings(path)
	require.NoError(t, err)
	hooksObj, ok := settings["hooks"].(map[string]any)
	require.True(t, ok)

	// The foreign Stop entry survives; UserPromptSubmit is gone entirely.
	stopEntries, ok := hooksObj["Stop"].([]any)
	require.True(t, ok)
	require.Len(t, stopEntries, 1)
	require.NotContains(t, hooksObj, "UserPromptSubmit")
}

func TestStatus_ReportsPerEvent(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	seedSettings(t, home, map[string]any{
		"hooks": map[string]any{
			"Stop": []any{
				map[string]any{
					"matcher": "",
					"hooks": []any{
						map[string]any{"type": "command", "command": "claudesink hook notify", "timeout": float64(10)},
					},
				},
			},
		},
	})

	cmd := NewStatusCmd()
	cmd.SetArgs([]string{})
	out := captureStdout(t, func() {
		require.NoError(t, cmd.Execute())
	})

	var resp struct {
		Data struct {
			Path      string `json:"path"`
			Installed bool   `json:"installed"`
			Events    map[string]struct {
				Installed bool     `json:"installed"`
				Commands  []string `json:"commands"`
			} `json:"events"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	require.False(t, resp.Data.Installed)
	require.True(t, resp.Data.Events["Stop"].Installed)
	require.False(t, resp.Data.Events["Notification"].Installed)
	require.False(t, resp.Data.Events["UserPromptSubmit"].Installed)
	require.Equal(t, []string{"claudesink hook notify"}, resp.Data.Events["Stop"].Commands)
}
