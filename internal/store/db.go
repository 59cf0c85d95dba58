package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/dotcommander/claudesink/internal/app"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// connectTimeoutSec is injected into every DSN that does not already pin one.
// It bounds the TCP/TLS/auth handshake; statement execution is bounded
// separately by the caller's context.
const connectTimeoutSec = 5

// defaultPort is assumed when CLAUDE_POSTGRES_SERVER_HOST_PORT carries a bare
// host name.
const defaultPort = "5432"

// Open opens a PostgreSQL connection for the resolved DSN and verifies it
// with a ping. The pool is sized for a short-lived hook process: one
// connection, opened, used for a single transaction, and closed.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// MissingConfig lists the environment variables still needed before a
// PostgreSQL connection can be attempted. Empty means configured. A full DSN
// satisfies everything; otherwise all four discrete settings must be present.
func MissingConfig(cfg app.PostgresSettings) []string {
	if cfg.DSN != "" {
		return nil
	}
	var missing []string
	if cfg.HostPort == "" {
		missing = append(missing, app.EnvPostgresHostPort)
	}
	if cfg.User == "" {
		missing = append(missing, app.EnvPostgresUser)
	}
	if cfg.Password == "" {
		missing = append(missing, app.EnvPostgresPass)
	}
	if cfg.Database == "" {
		missing = append(missing, app.EnvPostgresDBName)
	}
	return missing
}

// ResolveDSN builds the connection string from settings. A configured DSN is
// taken verbatim; otherwise one is assembled from the discrete fields with
// credentials URL-escaped. Either way the result is guaranteed to carry
// sslmode=require and a bounded connect_timeout unless the configuration
// already pins its own values for them.
func ResolveDSN(cfg app.PostgresSettings) (string, error) {
	if missing := MissingConfig(cfg); len(missing) > 0 {
		return "", &MissingConfigError{Missing: missing}
	}

	dsn := cfg.DSN
	if dsn == "" {
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(cfg.User, cfg.Password),
			Host:   hostPortWithDefault(cfg.HostPort),
			Path:   "/" + cfg.Database,
		}
		dsn = u.String()
	}

	dsn = ensureDSNParam(dsn, "sslmode", "require")
	dsn = ensureDSNParam(dsn, "connect_timeout", fmt.Sprintf("%d", connectTimeoutSec))
	return dsn, nil
}

func hostPortWithDefault(hostPort string) string {
	if strings.Contains(hostPort, ":") {
		return hostPort
	}
	return hostPort + ":" + defaultPort
}

// ensureDSNParam appends key=value to a DSN that does not mention key yet.
// Both DSN spellings pgx accepts are handled: URL form gets a query
// parameter, keyword/value form gets a space-separated pair.
func ensureDSNParam(dsn, key, value string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	if strings.Contains(dsn, "://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + key + "=" + value
	}
	return strings.TrimSpace(dsn) + " " + key + "=" + value
}
