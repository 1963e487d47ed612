package handler

import (
	"cinesocial/backend/internal/models"
	"cinesocial/backend/internal/storage"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestAddToWishlist(t *testing.T) {
	t.Run("new item logs activity", func(t *testing.T) {
		e := newEnv()
		e.store.On("AddToWishlist", mock.Anything, mock.MatchedBy(func(i *models.WishlistItem) bool {
			return i.UserID == 1 && i.MovieID == "tt0113277"
		})).Return(true, nil)
		e.store.On("GetUserByID", mock.Anything, uint(1)).Return(&models.User{ID: 1, Name: "Ann"}, nil)
		e.store.On("LogActivity", mock.Anything, mock.MatchedBy(func(a *models.ActivityLog) bool {
			return a.ActivityType == models.ActivityWishlisted && a.UserName == "Ann" && a.Details == ""
		})).Return(nil)

		w := e.do(t, http.MethodPost, "/api/wishlist", movieRef{MovieID: "tt0113277", MovieTitle: "Heat"}, 1)

		assert.Equal(t, http.StatusCreated, w.Code)
		e.store.AssertExpectations(t)
	})

	t.Run("duplicate is idempotent", func(t *testing.T) {
		e := newEnv()
		e.store.On("AddToWishlist", mock.Anything, mock.Anything).Return(false, nil)

		w := e.do(t, http.MethodPost, "/api/wishlist", movieRef{MovieID: "tt0113277"}, 1)

		assert.Equal(t, http.StatusOK, w.Code)
		e.store.AssertNotCalled(t, "LogActivity", mock.Anything, mock.Anything)
	})

	t.Run("movie id required", func(t *testing.T) {
		e := newEnv()
		assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/api/wishlist", map[string]string{"movieTitle": "Heat"}, 1).Code)
	})
}

func TestRemoveFromWishlist(t *testing.T) {
	e := newEnv()
	e.store.On("RemoveFromWishlist", mock.Anything, uint(1), "tt1").Return(nil)
	e.store.On("RemoveFromWishlist", mock.Anything, uint(1), "tt2").Return(storage.ErrNotFound)

	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/api/wishlist/tt1", nil, 1).Code)
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, "/api/wishlist/tt2", nil, 1).Code)
}

func TestAddWatchEntry_NewRatedEntryLogsActivity(t *testing.T) {
	e := newEnv()
	e.store.On("GetWatchEntry", mock.Anything, uint(1), "tt0113277").Return(nil, storage.ErrNotFound)
	e.store.On("SaveWatchEntry", mock.Anything, mock.MatchedBy(func(w *models.WatchHistory) bool {
		return w.UserID == 1 && w.Rating != nil && *w.Rating == 9 && w.Review == "great" && !w.WatchedAt.IsZero()
	})).Return(nil)
	e.store.On("GetUserByID", mock.Anything, uint(1)).Return(&models.User{ID: 1, Name: "Ann"}, nil)
	e.store.On("LogActivity", mock.Anything, mock.MatchedBy(func(a *models.ActivityLog) bool {
		return a.ActivityType == models.ActivityWatchedRated &&
			a.Details == `{"rating":9}` &&
			a.MovieTitle == "Heat" &&
			a.UserName == "Ann"
	})).Return(nil)

	w := e.do(t, http.MethodPost, "/api/watch-history", watchEntryRequest{
		movieRef: movieRef{MovieID: "tt0113277", MovieTitle: "Heat"},
		Rating:   intPtr(9),
		Review:   " great ",
	}, 1)

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	e.store.AssertExpectations(t)
}

func TestAddWatchEntry_UnratedLogsWatched(t *testing.T) {
	e := newEnv()
	e.store.On("GetWatchEntry", mock.Anything, uint(1), "tt1").Return(nil, storage.ErrNotFound)
	e.store.On("SaveWatchEntry", mock.Anything, mock.Anything).Return(nil)
	e.store.On("GetUserByID", mock.Anything, uint(1)).Return(nil, storage.ErrNotFound)
	e.store.On("LogActivity", mock.Anything, mock.MatchedBy(func(a *models.ActivityLog) bool {
		return a.ActivityType == models.ActivityWatched && a.Details == ""
	})).Return(nil)

	w := e.do(t, http.MethodPost, "/api/watch-history", map[string]string{"movieId": "tt1"}, 1)

	assert.Equal(t, http.StatusCreated, w.Code)
	e.store.AssertExpectations(t)
}

func TestAddWatchEntry_ExistingEntryIsUpdated(t *testing.T) {
	e := newEnv()
	e.store.On("GetWatchEntry", mock.Anything, uint(1), "tt1").
		Return(&models.WatchHistory{ID: 4, UserID: 1, MovieID: "tt1", MovieTitle: "Heat", Rating: intPtr(6)}, nil)
	e.store.On("SaveWatchEntry", mock.Anything, mock.MatchedBy(func(w *models.WatchHistory) bool {
		return w.ID == 4 && *w.Rating == 8 && w.MovieTitle == "Heat"
	})).Return(nil)

	w := e.do(t, http.MethodPost, "/api/watch-history", map[string]any{"movieId": "tt1", "rating": 8}, 1)

	assert.Equal(t, http.StatusOK, w.Code)
	e.store.AssertNotCalled(t, "LogActivity", mock.Anything, mock.Anything)
}

func TestAddWatchEntry_RatingRange(t *testing.T) {
	for _, rating := range []int{0, 11} {
		e := newEnv()
		w := e.do(t, http.MethodPost, "/api/watch-history", map[string]any{"movieId": "tt1", "rating": rating}, 1)
		assert.Equal(t, http.StatusBadRequest, w.Code, "rating %d", rating)
	}
}

func TestUpdateAndRemoveWatchEntry_OwnerOnly(t *testing.T) {
	e := newEnv()
	e.store.On("GetWatchEntryByID", mock.Anything, uint(4)).Return(&models.WatchHistory{ID: 4, UserID: 2}, nil)

	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodPut, "/api/watch-history/4", map[string]any{"rating": 5}, 1).Code)
	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodDelete, "/api/watch-history/4", nil, 1).Code)
	e.store.AssertNotCalled(t, "SaveWatchEntry", mock.Anything, mock.Anything)
	e.store.AssertNotCalled(t, "DeleteWatchEntry", mock.Anything, mock.Anything)
}

func TestRemoveWatchEntry(t *testing.T) {
	e := newEnv()
	e.store.On("GetWatchEntryByID", mock.Anything, uint(4)).Return(&models.WatchHistory{ID: 4, UserID: 1}, nil)
	e.store.On("DeleteWatchEntry", mock.Anything, uint(4)).Return(nil)

	assert.Equal(t, http.StatusNoContent, e.do(t, http.MethodDelete, "/api/watch-history/4", nil, 1).Code)
}

func TestWatchHistory_Paged(t *testing.T) {
	e := newEnv()
	e.store.On("ListWatchHistory", mock.Anything, uint(2), 3, 100).
		Return([]models.WatchHistory{{ID: 1}, {ID: 2}}, int64(202), nil)

	w := e.do(t, http.MethodGet, "/api/profile/2/watch-history?page=3&pageSize=500", nil, 1)

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[pageResponse[models.WatchHistory]](t, w)
	assert.Equal(t, 3, got.Page)
	assert.Equal(t, 100, got.PageSize)
	assert.Equal(t, int64(202), got.Total)
	assert.Len(t, got.Items, 2)
}

func TestCheckWatched(t *testing.T) {
	e := newEnv()
	e.store.On("GetWatchEntry", mock.Anything, uint(1), "tt1").Return(&models.WatchHistory{ID: 4}, nil)
	e.store.On("GetWatchEntry", mock.Anything, uint(1), "tt2").Return(nil, storage.ErrNotFound)

	assert.Contains(t, e.do(t, http.MethodGet, "/api/watch-history/check/tt1", nil, 1).Body.String(), `"watched":true`)
	assert.JSONEq(t, `{"watched":false}`, e.do(t, http.MethodGet, "/api/watch-history/check/tt2", nil, 1).Body.String())
}

func TestLikes(t *testing.T) {
	e := newEnv()
	e.store.On("LikeMovie", mock.Anything, uint(1), "tt1").Return(nil)
	e.store.On("ListLikedMovieIDs", mock.Anything, uint(1)).Return([]string{"tt1"}, nil)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/likes", map[string]string{"movieId": "tt1"}, 1).Code)
	assert.JSONEq(t, `["tt1"]`, e.do(t, http.MethodGet, "/api/likes/1", nil, 1).Body.String())
}

func TestActivityFeeds(t *testing.T) {
	t.Run("friends without friends is empty, not global", func(t *testing.T) {
		e := newEnv()
		e.store.On("ListFriends", mock.Anything, uint(1)).Return([]models.Friend{}, nil)
		e.store.On("ListActivity", mock.Anything, mock.MatchedBy(func(ids []uint) bool {
			return ids != nil && len(ids) == 0
		}), 1, 20).Return([]models.ActivityLog{}, int64(0), nil)

		w := e.do(t, http.MethodGet, "/api/activity/friends", nil, 1)

		require.Equal(t, http.StatusOK, w.Code)
		e.store.AssertExpectations(t)
	})

	t.Run("friends", func(t *testing.T) {
		e := newEnv()
		e.store.On("ListFriends", mock.Anything, uint(1)).Return([]models.Friend{{FriendID: 2}, {FriendID: 3}}, nil)
		e.store.On("ListActivity", mock.Anything, []uint{2, 3}, 2, 5).Return([]models.ActivityLog{{ID: 8}}, int64(6), nil)

		w := e.do(t, http.MethodGet, "/api/activity/friends?page=2&pageSize=5", nil, 1)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(6), decode[pageResponse[models.ActivityLog]](t, w).Total)
	})

	t.Run("global", func(t *testing.T) {
		e := newEnv()
		e.store.On("ListActivity", mock.Anything, mock.MatchedBy(func(ids []uint) bool { return ids == nil }), 1, 20).
			Return(nil, int64(0), nil)

		w := e.do(t, http.MethodGet, "/api/activity/global", nil, 1)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[pageResponse[models.ActivityLog]](t, w).Items)
	})
}
