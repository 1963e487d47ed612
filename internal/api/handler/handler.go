// Package handler exposes the HTTP and websocket surface of the service.
package handler

import (
	"cinesocial/backend/internal/auth"
	"cinesocial/backend/internal/catalog"
	"cinesocial/backend/internal/chathub"
	"cinesocial/backend/internal/logging"
	"cinesocial/backend/internal/models"
	"cinesocial/backend/internal/storage"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// MovieCatalog is the movie lookup surface used by the catalog routes.
type MovieCatalog interface {
	Search(ctx context.Context, query string, f catalog.Filter) ([]catalog.Movie, error)
	Browse(ctx context.Context, f catalog.Filter, page int) (*catalog.BrowsePage, error)
	Detail(ctx context.Context, imdbID string) (*catalog.MovieDetail, error)
	Recommend(ctx context.Context, likedIDs []string) ([]catalog.Recommendation, error)
}

type InsightSource interface {
	Get(ctx context.Context, title string, refresh bool) (*models.MovieInsight, error)
}

// IdentityVerifier checks a federated ID token.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*auth.GoogleIdentity, error)
}

// Handler holds every dependency of the routes.
type Handler struct {
	Hub      *chathub.ManagerService
	Store    storage.Storage
	Tokens   *auth.Tokens
	Catalog  MovieCatalog
	Insights InsightSource
	Google   IdentityVerifier

	secureCookies bool
	upgrader      websocket.Upgrader
	log           zerolog.Logger
}

type Option func(*Handler)

func WithCatalog(c MovieCatalog) Option { return func(h *Handler) { h.Catalog = c } }

func WithInsights(i InsightSource) Option { return func(h *Handler) { h.Insights = i } }

// WithGoogleLogin enables POST /api/auth/google-login.
func WithGoogleLogin(v IdentityVerifier) Option { return func(h *Handler) { h.Google = v } }

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option { return func(h *Handler) { h.secureCookies = secure } }

// WithAllowedOrigins restricts websocket upgrades to the given origins.
// An empty list or "*" accepts any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) { h.upgrader.CheckOrigin = originChecker(origins) }
}

func NewHandler(hub *chathub.ManagerService, store storage.Storage, tokens *auth.Tokens, opts ...Option) *Handler {
	h := &Handler{
		Hub:    hub,
		Store:  store,
		Tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(nil),
		},
		log: logging.With("http"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		if len(set) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// storeError maps storage and hub errors to a status code.
func (h *Handler) storeError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		abort(c, http.StatusNotFound, notFound)
	case errors.Is(err, storage.ErrConflict):
		abort(c, http.StatusConflict, "already exists")
	case errors.Is(err, chathub.ErrMalformedInput):
		abort(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, chathub.ErrStoreUnavailable):
		abort(c, http.StatusServiceUnavailable, "store unavailable")
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		abort(c, http.StatusInternalServerError, "internal server error")
	}
}

// idParam parses a positive numeric path parameter, replying 400 otherwise.
func idParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		abort(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(n), true
}

// paging reads ?page=&pageSize= with defaults and bounds.
func paging(c *gin.Context, defaultSize, maxSize int) (page, size int) {
	page, _ = strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(c.Query("pageSize"))
	switch {
	case size <= 0:
		size = defaultSize
	case size > maxSize:
		size = maxSize
	}
	return page, size
}

type pageResponse[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

func newPage[T any](items []T, page, size int, total int64) pageResponse[T] {
	if items == nil {
		items = []T{}
	}
	return pageResponse[T]{Items: items, Page: page, PageSize: size, Total: total}
}
