// Package telegram pings users on Telegram about chat messages that arrived
// while they had no live connection, and runs the bot that links a Telegram
// chat to an account.
package telegram

import (
	"cinesocial/backend/internal/config"
	"cinesocial/backend/internal/localization"
	"cinesocial/backend/internal/logging"
	"cinesocial/backend/internal/models"
	"cinesocial/backend/internal/storage"
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the part of *tgbotapi.BotAPI used for outgoing messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier implements chathub.OfflineNotifier.
type Notifier struct {
	bot   Sender
	users storage.UserStore
	text  *localization.Localizer
	log   zerolog.Logger
}

func NewNotifier(bot Sender, users storage.UserStore, text *localization.Localizer) *Notifier {
	return &Notifier{bot: bot, users: users, text: text, log: logging.With("telegram")}
}

// NotifyOffline sends a short preview of msg to the receiver's linked chat.
// Receivers without a linked chat are skipped silently.
func (n *Notifier) NotifyOffline(ctx context.Context, msg models.ChatMessage) {
	receiver, err := n.users.GetUserByID(ctx, msg.ReceiverID)
	if err != nil {
		n.log.Warn().Err(err).Uint("receiver_id", msg.ReceiverID).Msg("receiver lookup failed")
		return
	}
	if receiver.TelegramChatID == nil {
		return
	}

	// Users carry no language preference; notifications use the default catalog.
	lang := localization.DefaultLanguage
	senderName := n.text.Get(lang, "someone")
	if sender, err := n.users.GetUserByID(ctx, msg.SenderID); err == nil {
		senderName = sender.Name
	}

	text := n.text.Getf(lang, "offline_message", senderName, preview(msg.Text, config.TelegramPreviewRunes))
	if _, err := n.bot.Send(tgbotapi.NewMessage(*receiver.TelegramChatID, text)); err != nil {
		n.log.Error().Err(err).Uint("receiver_id", msg.ReceiverID).Msg("telegram send failed")
		return
	}
	n.log.Debug().Uint("receiver_id", msg.ReceiverID).Uint("message_id", msg.ID).Msg("offline notification sent")
}

func preview(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max]) + "…"
}
