package sink

import (
	"context"
	"database/sql"

	"github.com/dotcommander/claudesink/internal/app"
	"github.com/dotcommander/claudesink/internal/models"
	"github.com/dotcommander/claudesink/internal/store"
)

// postgresSink persists records to one table. The connection is opened per
// delivery and closed with it; a hook process lives for milliseconds and a
// pooled idle connection would outlive it anyway.
type postgresSink struct {
	cfg  app.PostgresSettings
	name string
	save func(ctx context.Context, db *sql.DB, rec models.OutputRecord) error
}

// NewPromptSink persists to user_prompts.
func NewPromptSink(cfg app.PostgresSettings) Sink {
	return &postgresSink{cfg: cfg, name: "postgres/user_prompts", save: store.SaveUserPrompt}
}

// NewOutputSink persists to llm_outputs.
func NewOutputSink(cfg app.PostgresSettings) Sink {
	return &postgresSink{cfg: cfg, name: "postgres/llm_outputs", save: store.SaveLLMOutput}
}

func (s *postgresSink) Name() string { return s.name }

func (s *postgresSink) CheckConfig() error {
	if missing := store.MissingConfig(s.cfg); len(missing) > 0 {
		return &store.MissingConfigError{Missing: missing}
	}
	return nil
}

// Deliver opens a connection, writes the record in one transaction and
// closes. The whole exchange shares a single timeout so a stalled server
// cannot hold the hook past its budget.
func (s *postgresSink) Deliver(ctx context.Context, rec models.OutputRecord) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.EffectiveTimeout())
	defer cancel()

	dsn, err := store.ResolveDSN(s.cfg)
	if err != nil {
		return err
	}

	db, err := store.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return s.save(ctx, db, rec)
}
