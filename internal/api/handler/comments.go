package handler

import (
	"cinesocial/backend/internal/models"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type commentView struct {
	models.Comment
	// UserReaction is "like", "dislike" or empty for the viewer.
	UserReaction string        `json:"userReaction,omitempty"`
	Replies      []commentView `json:"replies,omitempty"`
}

type addCommentRequest struct {
	Text            string `json:"text" binding:"required"`
	ParentCommentID *uint  `json:"parentCommentId"`
	MovieTitle      string `json:"movieTitle"`
	MoviePoster     string `json:"moviePoster"`
}

type reactionRequest struct {
	IsLike *bool `json:"isLike" binding:"required"`
}

// ListComments returns the movie's top-level comments, each with its replies.
func (h *Handler) ListComments(c *gin.Context) {
	ctx := c.Request.Context()
	comments, err := h.Store.ListComments(ctx, c.Param("movieId"))
	if err != nil {
		h.storeError(c, err, "")
		return
	}

	ids := lo.Map(comments, func(cm models.Comment, _ int) uint { return cm.ID })
	reactions, err := h.Store.UserReactions(ctx, currentUser(c), ids)
	if err != nil {
		h.storeError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, buildCommentTree(comments, reactions))
}

func buildCommentTree(comments []models.Comment, reactions map[uint]bool) []commentView {
	view := func(cm models.Comment) commentView {
		v := commentView{Comment: cm}
		if like, ok := reactions[cm.ID]; ok {
			v.UserReaction = lo.Ternary(like, "like", "dislike")
		}
		return v
	}

	replies := lo.GroupBy(
		lo.Filter(comments, func(cm models.Comment, _ int) bool { return cm.ParentCommentID != nil }),
		func(cm models.Comment) uint { return *cm.ParentCommentID },
	)

	tree := []commentView{}
	for _, cm := range comments {
		if cm.ParentCommentID != nil {
			continue
		}
		top := view(cm)
		for _, r := range replies[cm.ID] {
			top.Replies = append(top.Replies, view(r))
		}
		tree = append(tree, top)
	}
	return tree
}

func (h *Handler) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		abort(c, http.StatusBadRequest, "comment text is empty")
		return
	}
	ctx := c.Request.Context()
	me := currentUser(c)
	movieID := c.Param("movieId")

	parentID := req.ParentCommentID
	if parentID != nil {
		parent, err := h.Store.GetComment(ctx, *parentID)
		if err != nil {
			h.storeError(c, err, "parent comment not found")
			return
		}
		if parent.MovieID != movieID {
			abort(c, http.StatusBadRequest, "parent comment belongs to another movie")
			return
		}
		// Replies are one level deep; answering a reply joins its thread.
		if parent.ParentCommentID != nil {
			parentID = parent.ParentCommentID
		}
	}

	user, err := h.Store.GetUserByID(ctx, me)
	if err != nil {
		h.storeError(c, err, "user not found")
		return
	}

	comment := &models.Comment{
		UserID:          me,
		Name:            user.Name,
		MovieID:         movieID,
		Text:            text,
		ParentCommentID: parentID,
	}
	if err := h.Store.CreateComment(ctx, comment); err != nil {
		h.storeError(c, err, "")
		return
	}

	h.logActivity(ctx, me, models.ActivityCommented,
		movieRef{MovieID: movieID, MovieTitle: req.MovieTitle, MoviePoster: req.MoviePoster},
		map[string]any{"commentId": comment.ID})
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment removes the caller's own comment together with its replies.
func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := idParam(c, "commentId")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	comment, err := h.Store.GetComment(ctx, id)
	if err != nil {
		h.storeError(c, err, "comment not found")
		return
	}
	if comment.MovieID != c.Param("movieId") {
		abort(c, http.StatusNotFound, "comment not found")
		return
	}
	if comment.UserID != currentUser(c) {
		abort(c, http.StatusForbidden, "you can only delete your own comments")
		return
	}

	if err := h.Store.DeleteComment(ctx, id); err != nil {
		h.storeError(c, err, "comment not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ToggleReaction(c *gin.Context) {
	id, ok := idParam(c, "commentId")
	if !ok {
		return
	}
	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Store.ToggleReaction(c.Request.Context(), currentUser(c), id, *req.IsLike)
	if err != nil {
		h.storeError(c, err, "comment not found")
		return
	}
	c.JSON(http.StatusOK, result)
}
