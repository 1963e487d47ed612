package handler

import (
	"cinesocial/backend/internal/models"
	"cinesocial/backend/internal/storage"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type friendRequestBody struct {
	ReceiverID uint `json:"receiverId" binding:"required"`
}

func (h *Handler) SendFriendRequest(c *gin.Context) {
	var body friendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	ctx := c.Request.Context()
	me := currentUser(c)

	if body.ReceiverID == me {
		abort(c, http.StatusBadRequest, "cannot send a friend request to yourself")
		return
	}
	if _, err := h.Store.GetUserByID(ctx, body.ReceiverID); err != nil {
		h.storeError(c, err, "user not found")
		return
	}

	friends, err := h.Store.AreFriends(ctx, me, body.ReceiverID)
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	if friends {
		abort(c, http.StatusConflict, "already friends")
		return
	}
	if _, err := h.Store.FindPendingRequest(ctx, me, body.ReceiverID); err == nil {
		abort(c, http.StatusConflict, "a pending friend request already exists")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		h.storeError(c, err, "")
		return
	}

	req := &models.FriendRequest{SenderID: me, ReceiverID: body.ReceiverID, Status: models.FriendRequestPending}
	if err := h.Store.CreateFriendRequest(ctx, req); err != nil {
		h.storeError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *Handler) ListIncomingRequests(c *gin.Context) {
	reqs, err := h.Store.ListIncomingRequests(c.Request.Context(), currentUser(c))
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	if reqs == nil {
		reqs = []models.FriendRequest{}
	}
	c.JSON(http.StatusOK, reqs)
}

// AcceptFriendRequest lets the receiver accept a pending request.
func (h *Handler) AcceptFriendRequest(c *gin.Context) {
	req, ok := h.receivedRequest(c)
	if !ok {
		return
	}
	if err := h.Store.AcceptFriendRequest(c.Request.Context(), req); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			abort(c, http.StatusConflict, "friend request is no longer pending")
			return
		}
		h.storeError(c, err, "friend request not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend request accepted"})
}

func (h *Handler) RejectFriendRequest(c *gin.Context) {
	req, ok := h.receivedRequest(c)
	if !ok {
		return
	}
	if err := h.Store.RejectFriendRequest(c.Request.Context(), req.ID); err != nil {
		h.storeError(c, err, "friend request not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend request rejected"})
}

// receivedRequest loads the :id request and checks the caller is its pending receiver.
func (h *Handler) receivedRequest(c *gin.Context) (*models.FriendRequest, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}
	req, err := h.Store.GetFriendRequest(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, "friend request not found")
		return nil, false
	}
	if req.ReceiverID != currentUser(c) {
		abort(c, http.StatusForbidden, "only the receiver can answer a friend request")
		return nil, false
	}
	if req.Status != models.FriendRequestPending {
		abort(c, http.StatusConflict, "friend request is no longer pending")
		return nil, false
	}
	return req, true
}

func (h *Handler) ListFriends(c *gin.Context) {
	h.writeFriends(c, currentUser(c))
}

func (h *Handler) writeFriends(c *gin.Context, userID uint) {
	friends, err := h.Store.ListFriends(c.Request.Context(), userID)
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	if friends == nil {
		friends = []models.Friend{}
	}
	c.JSON(http.StatusOK, friends)
}

func (h *Handler) RemoveFriend(c *gin.Context) {
	friendID, ok := idParam(c, "friendId")
	if !ok {
		return
	}
	if err := h.Store.RemoveFriend(c.Request.Context(), currentUser(c), friendID); err != nil {
		h.storeError(c, err, "not friends")
		return
	}
	c.Status(http.StatusNoContent)
}

// FriendName returns a user's display name.
func (h *Handler) FriendName(c *gin.Context) {
	id, ok := idParam(c, "userId")
	if !ok {
		return
	}
	user, err := h.Store.GetUserByID(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, "user not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": user.ID, "name": user.Name})
}
