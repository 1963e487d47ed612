package telegram

import (
	"cinesocial/backend/internal/localization"
	"cinesocial/backend/internal/logging"
	"cinesocial/backend/internal/storage"
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// BotService long-polls Telegram for the link commands.
type BotService struct {
	BotAPI   *tgbotapi.BotAPI
	Commands *Commands
	log      zerolog.Logger
}

// NewBotService authorizes the bot token.
func NewBotService(token string, links LinkStore, codes storage.Cache) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorize telegram bot: %w", err)
	}
	bot.Debug = false

	text, err := localization.New()
	if err != nil {
		return nil, fmt.Errorf("load bot texts: %w", err)
	}

	s := &BotService{
		BotAPI:   bot,
		Commands: &Commands{Links: links, Codes: codes, Bot: bot, Text: text},
		log:      logging.With("telegram"),
	}
	s.log.Info().Str("account", bot.Self.UserName).Msg("telegram bot authorized")
	return s, nil
}

// Notifier returns an offline notifier sending through this bot.
func (s *BotService) Notifier(users storage.UserStore) *Notifier {
	return NewNotifier(s.BotAPI, users, s.Commands.Text)
}

// Run receives updates until ctx is cancelled.
func (s *BotService) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			s.BotAPI.StopReceivingUpdates()
			s.log.Info().Msg("telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			s.handleUpdate(ctx, update)
		}
	}
}

func (s *BotService) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	if !msg.IsCommand() {
		if err := s.Commands.reply(msg.Chat.ID, languageOf(msg), "help"); err != nil {
			s.log.Warn().Err(err).Int64("chat_id", msg.Chat.ID).Msg("help reply failed")
		}
		return
	}
	if err := s.Commands.Handle(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("command", msg.Command()).Msg("command failed")
	}
}
