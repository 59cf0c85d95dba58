// Package actions holds the three hook flows: notify, save-prompt and
// save-output. Each flow turns one hook invocation into one record and hands
// it to a sink dispatcher; the command layer above only parses stdin and maps
// returned errors to exit codes.
package actions

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dotcommander/claudesink/internal/app"
	"github.com/dotcommander/claudesink/internal/gitinfo"
	"github.com/dotcommander/claudesink/internal/models"
)

// Event carries the fields of one hook invocation that the flows consume.
// It is the parsed form of the JSON Claude Code writes to the handler's
// stdin.
type Event struct {
	SessionID      string
	TranscriptPath string
	CWD            string
	Prompt         string
}

// newRecord assembles the invocation context every record shares: fresh UTC
// capture timestamp, validated session identifier, normalized repository of
// the directory the hook fired in.
func newRecord(ctx context.Context, st app.Settings, ev Event, text string) models.OutputRecord {
	return models.OutputRecord{
		Text:       text,
		CreatedAt:  time.Now().UTC(),
		SessionID:  resolveSessionID(ev.SessionID, st.SessionID),
		Repository: gitinfo.Resolve(ctx, app.WorkDir(st, ev.CWD)),
	}
}

// resolveSessionID picks the session identifier from the hook input, falling
// back to the CLAUDE_SESSION_ID override when the input carries none. Values
// that do not parse as a UUID are dropped rather than stored as junk; the
// returned form is canonical lowercase.
func resolveSessionID(fromInput, fromEnv string) string {
	for _, candidate := range []string{fromInput, fromEnv} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		id, err := uuid.Parse(candidate)
		if err != nil {
			slog.Debug("discarding invalid session id", "value", candidate)
			continue
		}
		return id.String()
	}
	return ""
}
