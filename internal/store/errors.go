package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dotcommander/claudesink/internal/app"
	"github.com/dotcommander/claudesink/internal/models"
)

// RecoverableError is an alias for models.RecoverableError, retained so
// callers can reference store.RecoverableError without importing models.
type RecoverableError = models.RecoverableError

// ErrMissingConfig is the sentinel matched by errors.Is for any
// MissingConfigError, regardless of which variables were absent.
var ErrMissingConfig = errors.New("postgres configuration missing")

// MissingConfigError reports which environment variables must be set before
// the persistence sink can connect.
type MissingConfigError struct {
	Missing []string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("postgres configuration missing: %s", strings.Join(e.Missing, ", "))
}
func (e *MissingConfigError) ErrorCode() string { return "POSTGRES_CONFIG_MISSING" }
func (e *MissingConfigError) Context() map[string]string {
	return map[string]string{
		"missing": strings.Join(e.Missing, ","),
	}
}
func (e *MissingConfigError) SuggestedAction() string {
	return fmt.Sprintf("set %s, or the discrete %s/%s/%s/%s variables",
		app.EnvPostgresDSN, app.EnvPostgresHostPort, app.EnvPostgresUser, app.EnvPostgresPass, app.EnvPostgresDBName)
}
func (e *MissingConfigError) Is(target error) bool { return target == ErrMissingConfig }

// SlogAttrs returns key-value pairs for structured logging.
func (e *MissingConfigError) SlogAttrs() []any {
	return []any{"missing_config", strings.Join(e.Missing, ",")}
}
