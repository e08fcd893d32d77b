// Package telegram delivers formatted notifications to a single chat.
//
// The notifier is send-only: no poller is started and no updates are
// consumed. Delivery is one bot API call per message with a bounded timeout;
// retries are the relay's concern (it has none — undelivered rows simply
// stay in the store).
package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"relaybot/internal/config"
	"relaybot/pkg/logx"
)

const sendTimeout = 30 * time.Second

type Notifier struct {
	bot     *tele.Bot
	chatID  int64
	limiter *rate.Limiter
	log     logx.Logger
}

// New builds the notifier and verifies the token against the bot API.
func New(cfg config.TelegramConfig, log logx.Logger) (*Notifier, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Client: &http.Client{Timeout: sendTimeout},
	})
	if err != nil {
		return nil, err
	}

	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	return &Notifier{
		bot:    b,
		chatID: cfg.ChatID,
		// Token bucket as a safety net under Telegram's per-chat limits;
		// the relay adds its own fixed pause between sends on top.
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		log:     log,
	}, nil
}

// Send delivers one HTML-formatted message to the configured chat.
// A nil error means the endpoint acknowledged the message.
func (n *Notifier) Send(ctx context.Context, text string) error {
	return n.SendTo(ctx, n.chatID, text)
}

// SendTo delivers to an explicit chat instead of the configured default.
func (n *Notifier) SendTo(ctx context.Context, chatID int64, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := n.bot.Send(tele.ChatID(chatID), text, &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return err
	}
	n.log.Debug("message sent", logx.Int64("chat_id", chatID))
	return nil
}
