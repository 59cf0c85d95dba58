package actions

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/claudesink/internal/app"
	"github.com/dotcommander/claudesink/internal/store"
)

func TestSaveOutput_RejectsMissingTranscriptPath(t *testing.T) {
	err := SaveOutput(context.Background(), app.Settings{}, Event{CWD: t.TempDir()})
	require.Error(t, err)
}

func TestSaveOutput_TranscriptReadErrorReturned(t *testing.T) {
	ev := Event{
		TranscriptPath: filepath.Join(t.TempDir(), "absent.jsonl"),
		CWD:            t.TempDir(),
	}

	err := SaveOutput(context.Background(), app.Settings{}, ev)

	require.Error(t, err)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSaveOutput_NoAssistantMessageSkips(t *testing.T) {
	ev := Event{
		TranscriptPath: writeHookTranscript(t,
			`{"type":"user","message":{"role":"user","content":"hello"}}`,
		),
		CWD: t.TempDir(),
	}

	err := SaveOutput(context.Background(), app.Settings{}, ev)

	require.NoError(t, err)
}

func TestSaveOutput_NoFileFallback(t *testing.T) {
	dir := t.TempDir()
	ev := Event{
		TranscriptPath: writeHookTranscript(t, assistantLine("the answer")),
		CWD:            dir,
	}

	err := SaveOutput(context.Background(), app.Settings{}, ev)

	// Unconfigured database surfaces as the error; outputs never divert to
	// the prompt fallback file.
	require.ErrorIs(t, err, store.ErrMissingConfig)
	require.NoFileExists(t, filepath.Join(dir, "user_prompts.yaml"))
}
