package telegram

import (
	"cinesocial/backend/internal/config"
	"cinesocial/backend/internal/localization"
	"cinesocial/backend/internal/logging"
	"cinesocial/backend/internal/storage"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

const linkKeyPrefix = "tglink:"

// LinkStore is the slice of storage the bot commands touch. LinkTelegramChat
// detaches the chat from any previous owner.
type LinkStore interface {
	LinkTelegramChat(ctx context.Context, userID uint, chatID int64) error
	UnlinkTelegramChat(ctx context.Context, chatID int64) error
}

// IssueLinkCode stores a one-time code that links the next /start <code>
// chat to userID.
func IssueLinkCode(ctx context.Context, cache storage.Cache, userID uint) (string, error) {
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	value := []byte(strconv.FormatUint(uint64(userID), 10))
	if err := cache.CacheSet(ctx, linkKeyPrefix+code, value, config.TelegramLinkTTL); err != nil {
		return "", fmt.Errorf("store link code: %w", err)
	}
	return code, nil
}

// Commands answers /start <code> and /stop.
type Commands struct {
	Links LinkStore
	Codes storage.Cache
	Bot   Sender
	Text  *localization.Localizer
}

// Handle processes one bot command and replies in the same chat, in the
// sender's Telegram language.
func (cmd *Commands) Handle(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	var key string

	switch msg.Command() {
	case "start":
		key = cmd.start(ctx, chatID, strings.TrimSpace(msg.CommandArguments()))
	case "stop":
		switch err := cmd.Links.UnlinkTelegramChat(ctx, chatID); {
		case err == nil:
			key = "stopped"
		case errors.Is(err, storage.ErrNotFound):
			key = "not_linked"
		default:
			key = "failed"
		}
	default:
		key = "unknown_command"
	}
	return cmd.reply(chatID, languageOf(msg), key)
}

func (cmd *Commands) reply(chatID int64, lang, key string) error {
	if _, err := cmd.Bot.Send(tgbotapi.NewMessage(chatID, cmd.Text.Get(lang, key))); err != nil {
		return fmt.Errorf("reply to chat %d: %w", chatID, err)
	}
	return nil
}

func (cmd *Commands) start(ctx context.Context, chatID int64, code string) string {
	if code == "" {
		return "help"
	}
	key := linkKeyPrefix + strings.ToUpper(code)

	raw, err := cmd.Codes.CacheGet(ctx, key)
	if err != nil {
		return "bad_code"
	}
	userID, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil || userID == 0 {
		return "bad_code"
	}

	// The code is spent before linking so a replay cannot reach the store.
	if err := cmd.Codes.CacheDelete(ctx, key); err != nil {
		logging.Warn().Err(err).Str("component", "telegram").Int64("chat_id", chatID).Msg("failed to consume link code")
		return "failed"
	}
	if err := cmd.Links.LinkTelegramChat(ctx, uint(userID), chatID); err != nil {
		logging.Error().Err(err).Str("component", "telegram").Uint64("user_id", userID).Int64("chat_id", chatID).Msg("failed to link chat")
		return "failed"
	}
	return "linked"
}

func languageOf(msg *tgbotapi.Message) string {
	if msg.From == nil {
		return localization.DefaultLanguage
	}
	return msg.From.LanguageCode
}
