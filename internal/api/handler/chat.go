package handler

import (
	"cinesocial/backend/internal/models"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ChatHistory serves GET /api/chat/history?with=&pageSize=&before=.
func (h *Handler) ChatHistory(c *gin.Context) {
	with, err := strconv.ParseUint(c.Query("with"), 10, 64)
	if err != nil || with == 0 {
		abort(c, http.StatusBadRequest, "with must be a user id")
		return
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			abort(c, http.StatusBadRequest, "before must be an RFC 3339 timestamp")
			return
		}
		before = &t
	}

	msgs, err := h.Hub.GetChatHistory(c.Request.Context(), currentUser(c), uint(with), pageSize, before)
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, models.ChatHistoryPayload{With: uint(with), Messages: msgs})
}
