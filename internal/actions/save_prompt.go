package actions

import (
	"context"
	"errors"
	"strings"

	"github.com/dotcommander/claudesink/internal/app"
	"github.com/dotcommander/claudesink/internal/sink"
)

// SavePrompt persists one submitted prompt. PostgreSQL is the primary store;
// when it is unconfigured or unreachable the prompt is appended to the local
// fallback file instead. Prompts get the fallback tier because a prompt not
// captured at submission time is gone for good.
func SavePrompt(ctx context.Context, st app.Settings, ev Event) error {
	if strings.TrimSpace(ev.Prompt) == "" {
		return errors.New("hook input carries no prompt")
	}

	workDir := app.WorkDir(st, ev.CWD)
	d := sink.Dispatcher{
		Primary:  sink.NewPromptSink(st.Postgres),
		Fallback: sink.NewFileSink(app.FallbackPath(st, workDir)),
		Policy:   sink.FallbackFile,
	}

	// The prompt is stored verbatim, untrimmed; only the emptiness check
	// above looks at a normalized form.
	return d.Dispatch(ctx, newRecord(ctx, st, ev, ev.Prompt))
}
