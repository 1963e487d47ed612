package handler

import (
	"cinesocial/backend/internal/chathub"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServeWebSocket upgrades an authenticated request and hands the socket to the hub.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	userID, err := h.authenticate(c.Request)
	if err != nil {
		abort(c, http.StatusUnauthorized, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.Warn().Err(err).Uint("user_id", userID).Msg("websocket upgrade failed")
		return
	}

	chathub.NewWebSocketClient(h.Hub, conn, userID).Run()
}
