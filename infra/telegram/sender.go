// Package telegram implements the notification transport and the subscriber
// command surface on the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender implements notify.Notifier over a bot connection.
type Sender struct {
	api *tgbotapi.BotAPI
}

// NewSender authenticates the bot and returns a Sender.
func NewSender(cfg Config) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Sender{api: api}, nil
}

// API exposes the underlying bot connection so the command loop can share it.
func (s *Sender) API() *tgbotapi.BotAPI { return s.api }

// Send delivers one message to one chat. The Bot API client carries its own
// HTTP timeout; ctx is honored up front so an expired dispatch deadline does
// not start a new call.
func (s *Sender) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
