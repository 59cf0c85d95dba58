package sink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dotcommander/claudesink/internal/app"
	"github.com/dotcommander/claudesink/internal/models"
)

// telegramHTTPTimeout bounds the whole API exchange; tgbotapi has no context
// support, so the client timeout is the enforcement point.
const telegramHTTPTimeout = 10 * time.Second

// Telegram caps messages at 4096 characters.
const (
	telegramMessageLimit = 4096
	truncationMarker     = "\n[truncated]"
)

// TelegramBot is the slice of the bot API the sink uses, narrowed for mocking.
type TelegramBot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// BotFactory creates TelegramBot instances (allows mocking).
type BotFactory func(token, apiEndpoint string, client *http.Client) (TelegramBot, error)

// defaultBotFactory creates a real telegram bot.
var defaultBotFactory BotFactory = func(token, apiEndpoint string, client *http.Client) (TelegramBot, error) {
	return tgbotapi.NewBotAPIWithClient(token, apiEndpoint, client)
}

// ErrMissingTelegramConfig is the sentinel matched by errors.Is for any
// TelegramConfigError.
var ErrMissingTelegramConfig = errors.New("telegram configuration missing")

// TelegramConfigError reports which environment variables must be set before
// a notification can be attempted.
type TelegramConfigError struct {
	Missing []string
}

func (e *TelegramConfigError) Error() string {
	return fmt.Sprintf("telegram configuration missing: %s", strings.Join(e.Missing, ", "))
}
func (e *TelegramConfigError) ErrorCode() string { return "TELEGRAM_CONFIG_MISSING" }
func (e *TelegramConfigError) Context() map[string]string {
	return map[string]string{"missing": strings.Join(e.Missing, ",")}
}
func (e *TelegramConfigError) SuggestedAction() string {
	return fmt.Sprintf("export %s and %s", app.EnvTelegramBotID, app.EnvTelegramChatID)
}
func (e *TelegramConfigError) Is(target error) bool { return target == ErrMissingTelegramConfig }

// SlogAttrs returns key-value pairs for structured logging.
func (e *TelegramConfigError) SlogAttrs() []any {
	return []any{"missing_config", strings.Join(e.Missing, ",")}
}

// TelegramSink sends one notification message per record. Best-effort by
// contract: exactly one send attempt, no retry, and the caller decides what a
// failure means.
type TelegramSink struct {
	cfg        app.TelegramSettings
	projectDir string
	factory    BotFactory
}

// NewTelegramSink returns a sink using the real Telegram API.
func NewTelegramSink(cfg app.TelegramSettings, projectDir string) *TelegramSink {
	return NewTelegramSinkWithFactory(cfg, projectDir, defaultBotFactory)
}

// NewTelegramSinkWithFactory injects a custom bot factory (for testing).
func NewTelegramSinkWithFactory(cfg app.TelegramSettings, projectDir string, factory BotFactory) *TelegramSink {
	return &TelegramSink{cfg: cfg, projectDir: projectDir, factory: factory}
}

func (s *TelegramSink) Name() string { return "telegram" }

// CheckConfig reports the missing credential variables. No client is built
// and no network is touched until both are present.
func (s *TelegramSink) CheckConfig() error {
	var missing []string
	if s.cfg.BotToken == "" {
		missing = append(missing, app.EnvTelegramBotID)
	}
	if s.cfg.ChatID == "" {
		missing = append(missing, app.EnvTelegramChatID)
	}
	if len(missing) > 0 {
		return &TelegramConfigError{Missing: missing}
	}
	return nil
}

// Deliver sends the formatted notification. One attempt only; a rejected or
// timed-out send is returned to the caller for logging, and the next hook
// event naturally produces the next attempt.
func (s *TelegramSink) Deliver(_ context.Context, rec models.OutputRecord) error {
	if err := s.CheckConfig(); err != nil {
		return err
	}

	bot, err := s.factory(s.cfg.BotToken, tgbotapi.APIEndpoint, &http.Client{Timeout: telegramHTTPTimeout})
	if err != nil {
		return fmt.Errorf("telegram client: %w", err)
	}

	if _, err := bot.Send(s.message(rec)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// message builds the chat message. Numeric chat IDs address users, groups and
// channels directly; anything else is treated as a channel username.
func (s *TelegramSink) message(rec models.OutputRecord) tgbotapi.Chattable {
	text := formatMessage(rec, s.projectDir)

	if id, err := strconv.ParseInt(s.cfg.ChatID, 10, 64); err == nil {
		msg := tgbotapi.NewMessage(id, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		return msg
	}
	msg := tgbotapi.NewMessageToChannel(s.cfg.ChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}

// formatMessage renders the notification body: the assistant text first, then
// a light context trailer. The timestamp is the record's capture time in UTC.
func formatMessage(rec models.OutputRecord, projectDir string) string {
	var b strings.Builder
	b.WriteString("*Claude Code*\n\n")
	b.WriteString(rec.Text)
	b.WriteString("\n")
	fmt.Fprintf(&b, "\n_%s_", rec.CreatedAt.UTC().Format(time.RFC3339))
	if projectDir != "" {
		fmt.Fprintf(&b, "\nProject: %s", projectDir)
	}
	if rec.SessionID != "" {
		fmt.Fprintf(&b, "\nSession: `%s`", rec.SessionID)
	}
	return truncateMessage(b.String(), telegramMessageLimit)
}

// truncateMessage caps s at limit runes, marking the cut. Rune-based so a
// multibyte character is never split.
func truncateMessage(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	marker := []rune(truncationMarker)
	return string(runes[:limit-len(marker)]) + truncationMarker
}
