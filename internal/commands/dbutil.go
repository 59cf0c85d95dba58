package commands

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/dotcommander/claudesink/internal/app"
	"github.com/dotcommander/claudesink/internal/store"
)

// DB is an alias so command code doesn't need to import database/sql.
type DB = sql.DB

type printedError struct {
	err error
}

func (e printedError) Error() string {
	// Intentionally hide the original error: the log entry is the output.
	return "error already printed"
}

func openDB(ctx context.Context) (*DB, func(), error) {
	st, err := app.LoadSettings()
	if err != nil {
		slog.Warn("config file unreadable, using environment only", "error", err.Error())
	}

	if missing := store.MissingConfig(st.Postgres); len(missing) > 0 {
		return nil, nil, &store.MissingConfigError{Missing: missing}
	}

	dsn, err := store.ResolveDSN(st.Postgres)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, st.Postgres.EffectiveTimeout())
	defer cancel()

	db, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = db.Close() }, nil
}

func withDB(ctx context.Context, fn func(db *DB) error) error {
	db, closeDB, err := openDB(ctx)
	if err != nil {
		return cmdErr(err)
	}
	defer closeDB()

	if err := fn(db); err != nil {
		return cmdErr(err)
	}
	return nil
}

func cmdErr(err error) error {
	if err == nil {
		return nil
	}
	attrs := []any{"error", err.Error()}
	type slogAttrError interface {
		SlogAttrs() []any
	}
	var detailed slogAttrError
	if errors.As(err, &detailed) {
		attrs = append(attrs, detailed.SlogAttrs()...)
	}
	slog.Error("command error", attrs...)
	return printedError{err: err}
}
