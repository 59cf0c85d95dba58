package actions

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dotcommander/claudesink/internal/app"
	"github.com/dotcommander/claudesink/internal/sink"
	"github.com/dotcommander/claudesink/internal/transcript"
)

// Notify sends the last assistant message of the session transcript to
// Telegram. A missing transcript or a session without assistant output is a
// silent skip; missing credentials or a failed send comes back as the error.
func Notify(ctx context.Context, st app.Settings, ev Event) error {
	tg := sink.NewTelegramSink(st.Telegram, app.WorkDir(st, ev.CWD))
	return notify(ctx, st, ev, tg)
}

func notify(ctx context.Context, st app.Settings, ev Event, tg sink.Sink) error {
	// Credentials are checked before any transcript work so a misconfigured
	// environment reports the same way whether or not a transcript exists.
	if err := tg.CheckConfig(); err != nil {
		return err
	}

	res, err := transcript.LastAssistantMessage(ev.TranscriptPath)
	if errors.Is(err, transcript.ErrNoAssistantMessage) {
		slog.Info("transcript has no assistant message, nothing to send",
			"transcript", ev.TranscriptPath)
		return nil
	}
	if err != nil {
		slog.Warn("transcript unavailable, skipping notification",
			"transcript", ev.TranscriptPath, "error", err.Error())
		return nil
	}

	d := sink.Dispatcher{Primary: tg, Policy: sink.FallbackNone}
	return d.Dispatch(ctx, newRecord(ctx, st, ev, res.Text))
}
