package sink

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/claudesink/internal/app"
	"github.com/dotcommander/claudesink/internal/models"
)

// mockTelegramBot records sent messages and returns configured errors.
type mockTelegramBot struct {
	sentMsgs []tgbotapi.Chattable
	sendErr  error
}

func (m *mockTelegramBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.sentMsgs = append(m.sentMsgs, c)
	if m.sendErr != nil {
		return tgbotapi.Message{}, m.sendErr
	}
	return tgbotapi.Message{MessageID: 1}, nil
}

// mockFactory returns a factory handing out bot and counting invocations.
func mockFactory(bot *mockTelegramBot, calls *int) BotFactory {
	return func(token, apiEndpoint string, client *http.Client) (TelegramBot, error) {
		*calls++
		return bot, nil
	}
}

func telegramConfig() app.TelegramSettings {
	return app.TelegramSettings{BotToken: "123456:ABC", ChatID: "42"}
}

func outputRecord() models.OutputRecord {
	return models.OutputRecord{
		Text:      "final answer",
		CreatedAt: time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC),
		SessionID: "3f1c0a1e-8c7b-4f5e-9e2d-1a2b3c4d5e6f",
	}
}

func TestTelegramSink_CheckConfig_ListsMissingVariables(t *testing.T) {
	err := NewTelegramSink(app.TelegramSettings{}, "").CheckConfig()
	require.ErrorIs(t, err, ErrMissingTelegramConfig)

	var tce *TelegramConfigError
	require.ErrorAs(t, err, &tce)
	require.ElementsMatch(t, []string{app.EnvTelegramBotID, app.EnvTelegramChatID}, tce.Missing)

	err = NewTelegramSink(app.TelegramSettings{BotToken: "tok"}, "").CheckConfig()
	require.ErrorAs(t, err, &tce)
	require.Equal(t, []string{app.EnvTelegramChatID}, tce.Missing)

	require.NoError(t, NewTelegramSink(telegramConfig(), "").CheckConfig())
}

func TestTelegramSink_MissingConfigMakesNoClientCalls(t *testing.T) {
	bot := &mockTelegramBot{}
	calls := 0
	s := NewTelegramSinkWithFactory(app.TelegramSettings{}, "", mockFactory(bot, &calls))

	err := s.Deliver(context.Background(), outputRecord())
	require.ErrorIs(t, err, ErrMissingTelegramConfig)
	require.Zero(t, calls, "no client may be constructed without credentials")
	require.Empty(t, bot.sentMsgs)
}

func TestTelegramSink_SendsFormattedMessage(t *testing.T) {
	bot := &mockTelegramBot{}
	calls := 0
	s := NewTelegramSinkWithFactory(telegramConfig(), "/srv/project", mockFactory(bot, &calls))

	require.NoError(t, s.Deliver(context.Background(), outputRecord()))
	require.Equal(t, 1, calls)
	require.Len(t, bot.sentMsgs, 1)

	msg, ok := bot.sentMsgs[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	require.Equal(t, int64(42), msg.ChatID)
	require.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	require.Contains(t, msg.Text, "final answer")
	require.Contains(t, msg.Text, "2026-08-25T09:30:00Z")
	require.Contains(t, msg.Text, "Project: /srv/project")
	require.Contains(t, msg.Text, "Session: `3f1c0a1e-8c7b-4f5e-9e2d-1a2b3c4d5e6f`")
}

func TestTelegramSink_ChannelUsernameChatID(t *testing.T) {
	bot := &mockTelegramBot{}
	calls := 0
	cfg := app.TelegramSettings{BotToken: "123456:ABC", ChatID: "@builds"}
	s := NewTelegramSinkWithFactory(cfg, "", mockFactory(bot, &calls))

	require.NoError(t, s.Deliver(context.Background(), outputRecord()))
	msg, ok := bot.sentMsgs[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	require.Equal(t, "@builds", msg.ChannelUsername)
}

func TestTelegramSink_SendFailureIsWrappedAndSingleAttempt(t *testing.T) {
	bot := &mockTelegramBot{sendErr: errors.New("telegram: bad request")}
	calls := 0
	s := NewTelegramSinkWithFactory(telegramConfig(), "", mockFactory(bot, &calls))

	err := s.Deliver(context.Background(), outputRecord())
	require.Error(t, err)
	require.Contains(t, err.Error(), "telegram send")
	require.Len(t, bot.sentMsgs, 1, "exactly one attempt per invocation")
}

func TestTelegramSink_FactoryErrorIsWrapped(t *testing.T) {
	s := NewTelegramSinkWithFactory(telegramConfig(), "", func(string, string, *http.Client) (TelegramBot, error) {
		return nil, errors.New("getMe failed")
	})

	err := s.Deliver(context.Background(), outputRecord())
	require.Error(t, err)
	require.Contains(t, err.Error(), "telegram client")
}

func TestFormatMessage_OmitsEmptyContextLines(t *testing.T) {
	rec := models.OutputRecord{Text: "hi", CreatedAt: time.Now().UTC()}
	out := formatMessage(rec, "")
	require.NotContains(t, out, "Project:")
	require.NotContains(t, out, "Session:")
}

func TestFormatMessage_TruncatesAtTelegramLimit(t *testing.T) {
	rec := models.OutputRecord{Text: strings.Repeat("я", 5000), CreatedAt: time.Now().UTC()}
	out := formatMessage(rec, "/srv/project")

	require.LessOrEqual(t, len([]rune(out)), telegramMessageLimit)
	require.True(t, strings.HasSuffix(out, truncationMarker))
}

func TestTruncateMessage_ShortStringUntouched(t *testing.T) {
	require.Equal(t, "short", truncateMessage("short", 10))
}
