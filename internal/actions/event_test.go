package actions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/claudesink/internal/app"
)

func TestResolveSessionID(t *testing.T) {
	const valid = "0d4af2b8-7c3e-4c2a-b1f0-9e8d7c6b5a43"

	tests := []struct {
		name      string
		fromInput string
		fromEnv   string
		want      string
	}{
		{"input wins", valid, "11111111-2222-4333-8444-555555555555", valid},
		{"uppercase canonicalized", "0D4AF2B8-7C3E-4C2A-B1F0-9E8D7C6B5A43", "", valid},
		{"surrounding whitespace trimmed", "  " + valid + "  ", "", valid},
		{"invalid input falls back to env", "session-42", valid, valid},
		{"both invalid", "nope", "also nope", ""},
		{"both empty", "", "", ""},
		{"env only", "", valid, valid},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, resolveSessionID(tc.fromInput, tc.fromEnv))
		})
	}
}

func TestNewRecord_FreshTimestampAndContext(t *testing.T) {
	const fromInput = "0d4af2b8-7c3e-4c2a-b1f0-9e8d7c6b5a43"
	st := app.Settings{SessionID: "11111111-2222-4333-8444-555555555555"}
	ev := Event{SessionID: fromInput, CWD: t.TempDir()}

	before := time.Now().UTC()
	rec := newRecord(context.Background(), st, ev, "captured text")
	after := time.Now().UTC()

	require.Equal(t, "captured text", rec.Text)
	require.Equal(t, fromInput, rec.SessionID)
	require.Equal(t, time.UTC, rec.CreatedAt.Location())
	require.False(t, rec.CreatedAt.Before(before))
	require.False(t, rec.CreatedAt.After(after))
	require.Empty(t, rec.Repository)
	require.Nil(t, rec.Usage)
}
