package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dotcommander/claudesink/internal/app"
	"github.com/dotcommander/claudesink/internal/models"
	"github.com/dotcommander/claudesink/internal/sink"
	"github.com/dotcommander/claudesink/internal/transcript"
)

// SaveOutput persists the last assistant message of the session transcript.
// Outputs carry no file fallback: the transcript remains on disk, so a failed
// insert loses nothing that cannot be re-read later.
func SaveOutput(ctx context.Context, st app.Settings, ev Event) error {
	if ev.TranscriptPath == "" {
		return errors.New("hook input carries no transcript_path")
	}

	res, err := transcript.LastAssistantMessage(ev.TranscriptPath)
	if errors.Is(err, transcript.ErrNoAssistantMessage) {
		slog.Warn("transcript has no assistant message, nothing to save", "path", ev.TranscriptPath)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	rec := newRecord(ctx, st, ev, res.Text)
	if res.Usage != nil {
		rec.Usage = &models.UsageMetadata{
			InputTokens:  res.Usage.InputTokens,
			OutputTokens: res.Usage.OutputTokens,
			Model:        res.Model,
			ServiceTier:  res.Usage.ServiceTier,
		}
	}

	d := sink.Dispatcher{
		Primary: sink.NewOutputSink(st.Postgres),
		Policy:  sink.FallbackNone,
	}
	return d.Dispatch(ctx, rec)
}
