package handler

import (
	"cinesocial/backend/internal/config"
	"cinesocial/backend/internal/models"
	"cinesocial/backend/internal/storage"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/samber/lo"
)

const maxFeedPageSize = 100

type movieRef struct {
	MovieID     string `json:"movieId" binding:"required"`
	MovieTitle  string `json:"movieTitle"`
	MoviePoster string `json:"moviePoster"`
}

type watchEntryRequest struct {
	movieRef
	Rating    *int       `json:"rating" binding:"omitempty,min=1,max=10"`
	Review    string     `json:"review"`
	WatchedAt *time.Time `json:"watchedAt"`
}

type watchUpdateRequest struct {
	Rating    *int       `json:"rating" binding:"omitempty,min=1,max=10"`
	Review    string     `json:"review"`
	WatchedAt *time.Time `json:"watchedAt"`
}

func (h *Handler) AddToWishlist(c *gin.Context) {
	var ref movieRef
	if err := c.ShouldBindJSON(&ref); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	ctx := c.Request.Context()
	me := currentUser(c)

	item := &models.WishlistItem{UserID: me, MovieID: ref.MovieID, MovieTitle: ref.MovieTitle, MoviePoster: ref.MoviePoster}
	created, err := h.Store.AddToWishlist(ctx, item)
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "already in wishlist"})
		return
	}
	h.logActivity(ctx, me, models.ActivityWishlisted, ref, nil)
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	if err := h.Store.RemoveFromWishlist(c.Request.Context(), currentUser(c), c.Param("movieId")); err != nil {
		h.storeError(c, err, "movie not in wishlist")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListWishlist(c *gin.Context) {
	items, err := h.Store.ListWishlist(c.Request.Context(), currentUser(c))
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	if items == nil {
		items = []models.WishlistItem{}
	}
	c.JSON(http.StatusOK, items)
}

// AddWatchEntry records a watched movie, or updates the caller's existing
// entry for it. Only a new entry is written to the activity log.
func (h *Handler) AddWatchEntry(c *gin.Context) {
	var req watchEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	ctx := c.Request.Context()
	me := currentUser(c)

	entry, err := h.Store.GetWatchEntry(ctx, me, req.MovieID)
	isNew := errors.Is(err, storage.ErrNotFound)
	if err != nil && !isNew {
		h.storeError(c, err, "")
		return
	}
	if isNew {
		entry = &models.WatchHistory{UserID: me, MovieID: req.MovieID, WatchedAt: time.Now().UTC()}
	}
	entry.MovieTitle = lo.CoalesceOrEmpty(req.MovieTitle, entry.MovieTitle)
	entry.MoviePoster = lo.CoalesceOrEmpty(req.MoviePoster, entry.MoviePoster)
	applyWatchUpdate(entry, watchUpdateRequest{Rating: req.Rating, Review: req.Review, WatchedAt: req.WatchedAt})

	if err := h.Store.SaveWatchEntry(ctx, entry); err != nil {
		h.storeError(c, err, "")
		return
	}
	if !isNew {
		c.JSON(http.StatusOK, entry)
		return
	}

	activity, details := models.ActivityWatched, map[string]any(nil)
	if entry.Rating != nil {
		activity, details = models.ActivityWatchedRated, map[string]any{"rating": *entry.Rating}
	}
	h.logActivity(ctx, me, activity, req.movieRef, details)
	c.JSON(http.StatusCreated, entry)
}

func applyWatchUpdate(entry *models.WatchHistory, req watchUpdateRequest) {
	entry.Rating = req.Rating
	entry.Review = strings.TrimSpace(req.Review)
	if req.WatchedAt != nil {
		entry.WatchedAt = req.WatchedAt.UTC()
	}
}

func (h *Handler) UpdateWatchEntry(c *gin.Context) {
	entry, ok := h.ownWatchEntry(c)
	if !ok {
		return
	}
	var req watchUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	applyWatchUpdate(entry, req)
	if err := h.Store.SaveWatchEntry(c.Request.Context(), entry); err != nil {
		h.storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) RemoveWatchEntry(c *gin.Context) {
	entry, ok := h.ownWatchEntry(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteWatchEntry(c.Request.Context(), entry.ID); err != nil {
		h.storeError(c, err, "watch history entry not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ownWatchEntry(c *gin.Context) (*models.WatchHistory, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}
	entry, err := h.Store.GetWatchEntryByID(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err, "watch history entry not found")
		return nil, false
	}
	if entry.UserID != currentUser(c) {
		abort(c, http.StatusForbidden, "not your watch history entry")
		return nil, false
	}
	return entry, true
}

func (h *Handler) MyWatchHistory(c *gin.Context) {
	h.writeWatchHistory(c, currentUser(c))
}

func (h *Handler) UserWatchHistory(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	h.writeWatchHistory(c, userID)
}

func (h *Handler) writeWatchHistory(c *gin.Context, userID uint) {
	page, size := paging(c, config.DefaultFeedPageSize, maxFeedPageSize)
	entries, total, err := h.Store.ListWatchHistory(c.Request.Context(), userID, page, size)
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, newPage(entries, page, size, total))
}

func (h *Handler) WatchStats(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	stats, err := h.Store.GetWatchStats(c.Request.Context(), userID)
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CheckWatched tells whether the caller has a diary entry for :movieId.
func (h *Handler) CheckWatched(c *gin.Context) {
	entry, err := h.Store.GetWatchEntry(c.Request.Context(), currentUser(c), c.Param("movieId"))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusOK, gin.H{"watched": false})
	case err != nil:
		h.storeError(c, err, "")
	default:
		c.JSON(http.StatusOK, gin.H{"watched": true, "entry": entry})
	}
}

func (h *Handler) LikeMovie(c *gin.Context) {
	var body struct {
		MovieID string `json:"movieId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Store.LikeMovie(c.Request.Context(), currentUser(c), body.MovieID); err != nil {
		h.storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"movieId": body.MovieID, "liked": true})
}

func (h *Handler) LikedMovies(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	ids, err := h.Store.ListLikedMovieIDs(c.Request.Context(), userID)
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, ids)
}

// logActivity appends a feed entry. Failures are logged and never fail the request.
func (h *Handler) logActivity(ctx context.Context, userID uint, activity string, ref movieRef, details map[string]any) {
	entry := &models.ActivityLog{
		UserID:       userID,
		ActivityType: activity,
		MovieID:      ref.MovieID,
		MovieTitle:   ref.MovieTitle,
		MoviePoster:  ref.MoviePoster,
	}
	if user, err := h.Store.GetUserByID(ctx, userID); err == nil {
		entry.UserName = user.Name
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err == nil {
			entry.Details = string(raw)
		}
	}
	if err := h.Store.LogActivity(ctx, entry); err != nil {
		h.log.Warn().Err(err).Uint("user_id", userID).Str("activity", activity).Msg("activity log write failed")
	}
}
