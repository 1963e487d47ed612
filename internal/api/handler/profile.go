package handler

import (
	"cinesocial/backend/internal/config"
	"cinesocial/backend/internal/models"
	"cinesocial/backend/internal/storage"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type profileStats struct {
	Friends       int64   `json:"friends"`
	Watched       int64   `json:"watched"`
	Rated         int64   `json:"rated"`
	AverageRating float64 `json:"averageRating"`
	Reviews       int64   `json:"reviews"`
	Comments      int64   `json:"comments"`
	Wishlist      int64   `json:"wishlist"`
}

type profileResponse struct {
	UserID            uint                  `json:"userId"`
	Name              string                `json:"name"`
	MemberSince       string                `json:"memberSince"`
	Stats             profileStats          `json:"stats"`
	RecentActivity    []models.ActivityLog  `json:"recentActivity"`
	FavoriteMovies    []models.WatchHistory `json:"favoriteMovies"`
	IsFriend          bool                  `json:"isFriend"`
	HasPendingRequest bool                  `json:"hasPendingRequest"`
	IsOwnProfile      bool                  `json:"isOwnProfile"`
	IsOnline          bool                  `json:"isOnline"`
}

// Profile aggregates a user's public profile as seen by the caller.
func (h *Handler) Profile(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	viewer := currentUser(c)

	user, err := h.Store.GetUserByID(ctx, userID)
	if err != nil {
		h.storeError(c, err, "user not found")
		return
	}

	resp := profileResponse{
		UserID:       user.ID,
		Name:         user.Name,
		MemberSince:  user.CreatedAt.Format("2006-01-02"),
		IsOwnProfile: viewer == userID,
		IsOnline:     h.Hub.IsOnline(userID),
	}
	if err := h.loadProfile(ctx, viewer, userID, &resp); err != nil {
		h.storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) loadProfile(ctx context.Context, viewer, userID uint, resp *profileResponse) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		resp.Stats.Friends, err = h.Store.CountFriends(ctx, userID)
		return err
	})
	g.Go(func() error {
		ws, err := h.Store.GetWatchStats(ctx, userID)
		resp.Stats.Watched, resp.Stats.Rated = ws.TotalWatched, ws.TotalRated
		resp.Stats.AverageRating, resp.Stats.Reviews = ws.AverageRating, ws.TotalReviews
		return err
	})
	g.Go(func() (err error) {
		resp.Stats.Comments, err = h.Store.CountComments(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		resp.Stats.Wishlist, err = h.Store.CountWishlist(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		resp.RecentActivity, _, err = h.Store.ListActivity(ctx, []uint{userID}, 1, config.ProfileRecentItems)
		return err
	})
	g.Go(func() (err error) {
		resp.FavoriteMovies, err = h.Store.FavoriteMovies(ctx, userID, config.FavoriteMinRating, config.ProfileFavorites)
		return err
	})

	if viewer != userID {
		g.Go(func() (err error) {
			resp.IsFriend, err = h.Store.AreFriends(ctx, viewer, userID)
			return err
		})
		g.Go(func() error {
			_, err := h.Store.FindPendingRequest(ctx, viewer, userID)
			switch {
			case err == nil:
				resp.HasPendingRequest = true
			case !errors.Is(err, storage.ErrNotFound):
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if resp.RecentActivity == nil {
		resp.RecentActivity = []models.ActivityLog{}
	}
	if resp.FavoriteMovies == nil {
		resp.FavoriteMovies = []models.WatchHistory{}
	}
	return nil
}

// ProfileFriends lists another user's friends.
func (h *Handler) ProfileFriends(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	h.writeFriends(c, userID)
}
