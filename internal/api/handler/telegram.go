package handler

import (
	"cinesocial/backend/internal/config"
	"cinesocial/backend/internal/telegram"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TelegramLinkCode issues a one-time code for linking a Telegram chat with /start <code>.
func (h *Handler) TelegramLinkCode(c *gin.Context) {
	code, err := telegram.IssueLinkCode(c.Request.Context(), h.Store, currentUser(c))
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", currentUser(c)).Msg("link code not stored")
		abort(c, http.StatusServiceUnavailable, "telegram linking unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":      code,
		"command":   "/start " + code,
		"expiresIn": int(config.TelegramLinkTTL.Seconds()),
	})
}
