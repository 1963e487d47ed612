package handler

import (
	"cinesocial/backend/internal/config"
	"cinesocial/backend/internal/models"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

func (h *Handler) UserActivity(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	h.writeActivity(c, []uint{userID})
}

func (h *Handler) MyActivity(c *gin.Context) {
	h.writeActivity(c, []uint{currentUser(c)})
}

// FriendsActivity is the caller's friends' feed.
func (h *Handler) FriendsActivity(c *gin.Context) {
	friends, err := h.Store.ListFriends(c.Request.Context(), currentUser(c))
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	ids := lo.Map(friends, func(f models.Friend, _ int) uint { return f.FriendID })
	h.writeActivity(c, ids)
}

func (h *Handler) GlobalActivity(c *gin.Context) {
	h.writeActivity(c, nil)
}

func (h *Handler) writeActivity(c *gin.Context, userIDs []uint) {
	page, size := paging(c, config.DefaultFeedPageSize, maxFeedPageSize)
	entries, total, err := h.Store.ListActivity(c.Request.Context(), userIDs, page, size)
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, newPage(entries, page, size, total))
}
