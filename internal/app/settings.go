package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized by every flow. These are the contract with
// the Claude Code hook environment; the YAML config file only supplies values
// for whichever of them are unset.
const (
	EnvTelegramBotID    = "CLAUDE_TELEGRAM_BOT_ID"
	EnvTelegramChatID   = "CLAUDE_TELEGRAM_CHAT_ID"
	EnvPostgresDSN      = "CLAUDE_POSTGRES_SERVER_DSN"
	EnvPostgresHostPort = "CLAUDE_POSTGRES_SERVER_HOST_PORT"
	EnvPostgresUser     = "CLAUDE_POSTGRES_SERVER_USER"
	EnvPostgresPass     = "CLAUDE_POSTGRES_SERVER_PASS"
	EnvPostgresDBName   = "CLAUDE_POSTGRES_SERVER_DB_NAME"
	EnvProjectDir       = "CLAUDE_PROJECT_DIR"
	EnvSessionID        = "CLAUDE_SESSION_ID"

	// EnvConfigPath points LoadSettings at an explicit config file, replacing
	// the documented lookup order. Mostly useful for tests and one-off runs.
	EnvConfigPath = "CLAUDESINK_CONFIG"
)

// Settings is the explicit configuration object built once per invocation and
// handed to every flow. Field names match snake_case YAML keys; environment
// variables override file values field by field.
type Settings struct {
	Telegram TelegramSettings `yaml:"telegram"`
	Postgres PostgresSettings `yaml:"postgres"`
	Fallback FallbackSettings `yaml:"fallback"`
	Logging  LoggingSettings  `yaml:"logging"`

	// ProjectDir and SessionID come from the hook environment only; Claude
	// Code exports them per invocation and a config file has no business
	// pinning them.
	ProjectDir string `yaml:"-"`
	SessionID  string `yaml:"-"`
}

// TelegramSettings configure the notification sink.
type TelegramSettings struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// PostgresSettings configure the persistence sink. A full DSN takes
// precedence; the discrete fields exist for environments that ship
// credentials separately.
type PostgresSettings struct {
	DSN            string `yaml:"dsn"`
	HostPort       string `yaml:"host_port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Database       string `yaml:"database"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// FallbackSettings configure the prompt fallback file.
type FallbackSettings struct {
	Path string `yaml:"path"`
}

// LoggingSettings configure the per-flow log files.
type LoggingSettings struct {
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

const (
	defaultPostgresTimeoutSec = 15
	maxPostgresTimeoutSec     = 300
	defaultLogRetentionDays   = 7
	maxLogRetentionDays       = 365
)

// EffectiveTimeout returns the validated connect-and-write budget for one
// PostgreSQL delivery. Invalid or missing config values fall back to safe
// defaults.
func (p PostgresSettings) EffectiveTimeout() time.Duration {
	sec := p.TimeoutSeconds
	if sec <= 0 {
		sec = defaultPostgresTimeoutSec
	}
	if sec > maxPostgresTimeoutSec {
		sec = maxPostgresTimeoutSec
	}
	return time.Duration(sec) * time.Second
}

// EffectiveRetentionDays returns the validated log retention window.
func (l LoggingSettings) EffectiveRetentionDays() int {
	days := l.RetentionDays
	if days <= 0 {
		days = defaultLogRetentionDays
	}
	if days > maxLogRetentionDays {
		days = maxLogRetentionDays
	}
	return days
}

// settingsOnce, fileSettings, settingsErr implement the sync.Once lazy-load
// singleton for the config file. The environment overlay is applied per call
// so values exported by the hook runner are always current.
//
//nolint:gochecknoglobals // sync.Once singleton is intentional process-wide state
var (
	settingsOnce sync.Once
	fileSettings Settings
	settingsErr  error
)

// LoadSettings loads the config file once using the documented lookup order,
// then overlays environment variables. The returned Settings are usable even
// when err is non-nil: an unreadable config file degrades to env-only
// configuration, and operator commands decide whether to surface the error.
// Lookup order (first found wins):
// 1) $CLAUDESINK_CONFIG (when set, the only file consulted)
// 2) ~/.config/claudesink/config.yaml
// 3) /etc/claudesink/config.yaml
// 4) ./config.yaml (lowest priority; allows repo-local overrides if desired)
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		fileSettings, settingsErr = loadFromFiles()
	})

	s := fileSettings
	applyEnv(&s)
	return s, settingsErr
}

func loadFromFiles() (Settings, error) {
	if explicit := os.Getenv(EnvConfigPath); explicit != "" {
		s, err := loadSettingsFile(explicit)
		if err != nil {
			return Settings{}, fmt.Errorf("load config %s: %w", explicit, err)
		}
		return s, nil
	}

	for _, path := range configLookupPaths() {
		s, err := loadSettingsFile(path)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return Settings{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	return Settings{}, nil
}

// configLookupPaths returns the candidate config file paths in precedence
// order. A missing home directory just drops the user-level candidate.
func configLookupPaths() []string {
	var paths []string
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "config.yaml"))
	}
	paths = append(paths,
		filepath.Join(string(os.PathSeparator), "etc", "claudesink", "config.yaml"),
		"config.yaml",
	)
	return paths
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// applyEnv overlays environment variables onto s. Set variables always win
// over file values.
func applyEnv(s *Settings) {
	overlay := func(dst *string, env string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	overlay(&s.Telegram.BotToken, EnvTelegramBotID)
	overlay(&s.Telegram.ChatID, EnvTelegramChatID)
	overlay(&s.Postgres.DSN, EnvPostgresDSN)
	overlay(&s.Postgres.HostPort, EnvPostgresHostPort)
	overlay(&s.Postgres.User, EnvPostgresUser)
	overlay(&s.Postgres.Password, EnvPostgresPass)
	overlay(&s.Postgres.Database, EnvPostgresDBName)
	overlay(&s.ProjectDir, EnvProjectDir)
	overlay(&s.SessionID, EnvSessionID)
}
