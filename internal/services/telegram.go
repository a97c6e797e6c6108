package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/desertthunder/geniust/internal/shared"
)

// TelegramNotifier implements [Notifier] with the Telegram Bot API.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	logger *log.Logger
}

// NewTelegramNotifier authenticates the bot token. endpoint is a Bot API URL format
// such as [tgbotapi.APIEndpoint]; empty selects the default.
func NewTelegramNotifier(token, endpoint string, client *http.Client, logger *log.Logger) (*TelegramNotifier, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: telegram bot token", shared.ErrMissingCredentials)
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("%w: telegram: %v", shared.ErrServiceUnavailable, err)
	}

	logger.Info("telegram bot authorized", "username", bot.Self.UserName)
	return &TelegramNotifier{bot: bot, logger: logger}, nil
}

// Username returns the bot's username as reported by Telegram.
func (n *TelegramNotifier) Username() string { return n.bot.Self.UserName }

func (n *TelegramNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("%w: sendMessage: %v", shared.ErrAPIRequest, err)
	}
	n.logger.Debug("sent chat message", "chat_id", chatID)
	return nil
}

// NopNotifier logs messages instead of delivering them.
type NopNotifier struct {
	Logger *log.Logger
}

func (n NopNotifier) Notify(_ context.Context, chatID int64, text string) error {
	if n.Logger != nil {
		n.Logger.Info("chat notification (not sent)", "chat_id", chatID, "text", text)
	}
	return nil
}
