package alert

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/telebot.v4"
)

// DefaultTelegramTimeout bounds one sendMessage call.
const DefaultTelegramTimeout = 8 * time.Second

// TelegramOptions contains configuration for creating a TelegramSink.
type TelegramOptions struct {
	Token   string
	ChatID  string        // numeric id or @channel name
	APIURL  string        // Default: Bot API production URL
	Timeout time.Duration // Default: 8s
	Logger  zerolog.Logger
}

// chatID adapts a configured chat id to telebot.Recipient.
type chatID string

func (c chatID) Recipient() string { return string(c) }

// TelegramSink posts alerts to a Telegram chat in HTML mode without link previews.
// Without a token or chat id it is disabled and Send does nothing.
type TelegramSink struct {
	bot    *telebot.Bot
	chat   chatID
	logger zerolog.Logger
}

var _ Sink = (*TelegramSink)(nil)

// NewTelegramSink creates a Telegram sink. The bot is created offline so a
// bad token surfaces on the first send rather than at startup.
func NewTelegramSink(opts TelegramOptions) (*TelegramSink, error) {
	logger := opts.Logger.With().Str("sink", "telegram").Logger()

	if opts.Token == "" || opts.ChatID == "" {
		logger.Warn().Msg("telegram token or chat id missing, telegram delivery disabled")
		return &TelegramSink{logger: logger}, nil
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTelegramTimeout
	}

	bot, err := telebot.NewBot(telebot.Settings{
		URL:     opts.APIURL,
		Token:   opts.Token,
		Client:  &http.Client{Timeout: timeout},
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramSink{
		bot:    bot,
		chat:   chatID(opts.ChatID),
		logger: logger,
	}, nil
}

// Name returns "telegram".
func (s *TelegramSink) Name() string { return "telegram" }

// Enabled reports whether the sink has credentials.
func (s *TelegramSink) Enabled() bool { return s.bot != nil }

// Send posts msg.Text. telebot has no per-call context, so ctx is only
// checked before sending; the client timeout bounds the call.
func (s *TelegramSink) Send(ctx context.Context, msg Message) error {
	if s.bot == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.bot.Send(s.chat, msg.Text, telebot.ModeHTML, telebot.NoPreview); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	s.logger.Debug().Str("alert_id", msg.AlertID).Msg("telegram alert sent")
	return nil
}
