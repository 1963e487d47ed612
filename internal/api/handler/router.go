package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router registers every route on a new gin engine.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.GET("/healthcheck", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)
	api.POST("/auth/google-login", h.GoogleLogin)

	authed := api.Group("", h.RequireAuth())
	authed.GET("/check-session", h.Session)
	authed.GET("/chat/history", h.ChatHistory)

	friends := authed.Group("/friends")
	friends.GET("", h.ListFriends)
	friends.DELETE("/:friendId", h.RemoveFriend)
	friends.POST("/requests", h.SendFriendRequest)
	friends.GET("/requests", h.ListIncomingRequests)
	friends.POST("/requests/:id/accept", h.AcceptFriendRequest)
	friends.POST("/requests/:id/reject", h.RejectFriendRequest)

	authed.GET("/users/:userId/name", h.FriendName)
	authed.GET("/profile/:userId", h.Profile)
	authed.GET("/profile/:userId/friends", h.ProfileFriends)
	authed.GET("/profile/:userId/watch-history", h.UserWatchHistory)

	authed.GET("/wishlist", h.ListWishlist)
	authed.POST("/wishlist", h.AddToWishlist)
	authed.DELETE("/wishlist/:movieId", h.RemoveFromWishlist)

	history := authed.Group("/watch-history")
	history.GET("", h.MyWatchHistory)
	history.POST("", h.AddWatchEntry)
	history.PUT("/:id", h.UpdateWatchEntry)
	history.DELETE("/:id", h.RemoveWatchEntry)
	history.GET("/stats/:userId", h.WatchStats)
	history.GET("/check/:movieId", h.CheckWatched)

	authed.POST("/likes", h.LikeMovie)
	authed.GET("/likes/:userId", h.LikedMovies)

	activity := authed.Group("/activity")
	activity.GET("/mine", h.MyActivity)
	activity.GET("/friends", h.FriendsActivity)
	activity.GET("/global", h.GlobalActivity)
	activity.GET("/user/:userId", h.UserActivity)

	movies := authed.Group("/movies/:movieId/comments")
	movies.GET("", h.ListComments)
	movies.POST("", h.AddComment)
	movies.DELETE("/:commentId", h.DeleteComment)
	movies.POST("/:commentId/reaction", h.ToggleReaction)

	cat := authed.Group("/catalog")
	cat.GET("/search", h.SearchMovies)
	cat.GET("/browse", h.BrowseMovies)
	cat.GET("/movies/:movieId", h.MovieDetail)
	authed.GET("/recommendations", h.Recommendations)
	authed.GET("/insights", h.MovieInsight)

	authed.POST("/telegram/link-code", h.TelegramLinkCode)
	return r
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := h.log.Debug()
		switch {
		case status >= 500:
			ev = h.log.Error()
		case status >= 400:
			ev = h.log.Info()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
