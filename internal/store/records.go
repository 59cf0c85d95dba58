package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dotcommander/claudesink/internal/models"
)

// Inserts are parameterized without exception; captured text reaches the
// server as a bind value even when it looks like SQL.
const (
	insertUserPromptSQL = `
		INSERT INTO user_prompts (created_at, prompt, session_id, repository)
		VALUES ($1, $2, $3, $4)`

	insertLLMOutputSQL = `
		INSERT INTO llm_outputs (created_at, output, session_id, repository,
			input_tokens, output_tokens, model, service_tier)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

// SaveUserPrompt persists one prompt record in its own transaction.
func SaveUserPrompt(ctx context.Context, db *sql.DB, rec models.OutputRecord) error {
	return Transact(ctx, db, func(tx *sql.Tx) error {
		return InsertUserPrompt(ctx, tx, rec)
	})
}

// SaveLLMOutput persists one assistant output record in its own transaction.
func SaveLLMOutput(ctx context.Context, db *sql.DB, rec models.OutputRecord) error {
	return Transact(ctx, db, func(tx *sql.Tx) error {
		return InsertLLMOutput(ctx, tx, rec)
	})
}

// InsertUserPrompt writes rec to user_prompts. Empty session and repository
// become NULL rather than empty strings so downstream queries can rely on
// IS NULL.
func InsertUserPrompt(ctx context.Context, q Querier, rec models.OutputRecord) error {
	_, err := q.ExecContext(ctx, insertUserPromptSQL,
		rec.CreatedAt,
		rec.Text,
		nullIfEmpty(rec.SessionID),
		nullIfEmpty(rec.Repository),
	)
	if err != nil {
		return fmt.Errorf("insert user_prompts: %w", err)
	}
	return nil
}

// InsertLLMOutput writes rec to llm_outputs. The usage group is all-or-
// nothing: a record without usage metadata stores NULL for all four columns.
func InsertLLMOutput(ctx context.Context, q Querier, rec models.OutputRecord) error {
	var inputTokens, outputTokens, model, serviceTier any
	if u := rec.Usage; u != nil {
		inputTokens = u.InputTokens
		outputTokens = u.OutputTokens
		model = nullIfEmpty(u.Model)
		serviceTier = nullIfEmpty(u.ServiceTier)
	}

	_, err := q.ExecContext(ctx, insertLLMOutputSQL,
		rec.CreatedAt,
		rec.Text,
		nullIfEmpty(rec.SessionID),
		nullIfEmpty(rec.Repository),
		inputTokens,
		outputTokens,
		model,
		serviceTier,
	)
	if err != nil {
		return fmt.Errorf("insert llm_outputs: %w", err)
	}
	return nil
}

// nullIfEmpty converts "" to NULL at bind time.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
