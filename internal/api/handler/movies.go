package handler

import (
	"cinesocial/backend/internal/catalog"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func filterFrom(c *gin.Context) catalog.Filter {
	return catalog.Filter{Type: c.Query("type"), Year: c.Query("year")}
}

// SearchMovies serves GET /api/catalog/search?q=&type=&year=.
func (h *Handler) SearchMovies(c *gin.Context) {
	if h.Catalog == nil {
		abort(c, http.StatusServiceUnavailable, "movie catalog is not configured")
		return
	}
	movies, err := h.Catalog.Search(c.Request.Context(), c.Query("q"), filterFrom(c))
	if err != nil {
		h.catalogError(c, err)
		return
	}
	if movies == nil {
		movies = []catalog.Movie{}
	}
	c.JSON(http.StatusOK, movies)
}

func (h *Handler) BrowseMovies(c *gin.Context) {
	if h.Catalog == nil {
		abort(c, http.StatusServiceUnavailable, "movie catalog is not configured")
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	result, err := h.Catalog.Browse(c.Request.Context(), filterFrom(c), page)
	if err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Recommendations serves GET /api/recommendations: browse movies whose plots
// resemble the ones the caller liked.
func (h *Handler) Recommendations(c *gin.Context) {
	if h.Catalog == nil {
		abort(c, http.StatusServiceUnavailable, "movie catalog is not configured")
		return
	}
	ctx := c.Request.Context()
	liked, err := h.Store.ListLikedMovieIDs(ctx, currentUser(c))
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	recs, err := h.Catalog.Recommend(ctx, liked)
	if err != nil {
		h.catalogError(c, err)
		return
	}
	if recs == nil {
		recs = []catalog.Recommendation{}
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

func (h *Handler) MovieDetail(c *gin.Context) {
	if h.Catalog == nil {
		abort(c, http.StatusServiceUnavailable, "movie catalog is not configured")
		return
	}
	detail, err := h.Catalog.Detail(c.Request.Context(), c.Param("movieId"))
	if err != nil {
		h.catalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) catalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrEmptyQuery):
		abort(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		abort(c, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("catalog request failed")
		abort(c, http.StatusBadGateway, "movie catalog unavailable")
	}
}

// MovieInsight serves GET /api/insights?title=&refresh=true: trailer, links
// and streaming platforms for a title.
func (h *Handler) MovieInsight(c *gin.Context) {
	if h.Insights == nil {
		abort(c, http.StatusServiceUnavailable, "movie insights are not configured")
		return
	}
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		abort(c, http.StatusBadRequest, "title is required")
		return
	}
	refresh, _ := strconv.ParseBool(c.Query("refresh"))

	ins, err := h.Insights.Get(c.Request.Context(), title, refresh)
	if err != nil {
		h.log.Error().Err(err).Str("title", title).Msg("insight lookup failed")
		abort(c, http.StatusBadGateway, "movie insights unavailable")
		return
	}
	c.JSON(http.StatusOK, ins)
}
