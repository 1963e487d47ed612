package handler

import (
	"cinesocial/backend/internal/auth"
	"cinesocial/backend/internal/chathub"
	"cinesocial/backend/internal/config"
	"cinesocial/backend/internal/models"
	"cinesocial/backend/internal/storage"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type googleLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

type sessionResponse struct {
	UserID uint   `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func newSession(u *models.User) sessionResponse {
	return sessionResponse{UserID: u.ID, Name: u.Name, Email: u.Email}
}

// Register creates an account and starts a session.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		abort(c, http.StatusBadRequest, "name is required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.storeError(c, err, "")
		return
	}
	user := &models.User{
		Name:         req.Name,
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
	}
	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			abort(c, http.StatusConflict, "email already registered")
			return
		}
		h.storeError(c, err, "")
		return
	}

	if !h.startSession(c, user.ID) {
		return
	}
	h.log.Info().Uint("user_id", user.ID).Msg("user registered")
	c.JSON(http.StatusCreated, newSession(user))
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.Store.GetUserByEmail(c.Request.Context(), normalizeEmail(req.Email))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.storeError(c, err, "")
		return
	}
	if user == nil || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		abort(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if !h.startSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusOK, newSession(user))
}

// GoogleLogin signs in with a Google ID token, creating the account on first
// use. Federated accounts have no password and cannot use Login.
func (h *Handler) GoogleLogin(c *gin.Context) {
	if h.Google == nil {
		abort(c, http.StatusServiceUnavailable, "google login is not configured")
		return
	}
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	identity, err := h.Google.Verify(ctx, req.Token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidGoogleToken) {
			abort(c, http.StatusUnauthorized, "invalid google token")
			return
		}
		h.log.Warn().Err(err).Msg("google token verification failed")
		abort(c, http.StatusBadGateway, "google login unavailable")
		return
	}

	email := normalizeEmail(identity.Email)
	user, err := h.Store.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		user = &models.User{Name: federatedName(identity.Name, email), Email: email}
		err = h.Store.CreateUser(ctx, user)
		if errors.Is(err, storage.ErrConflict) {
			// Lost a race with a concurrent first login.
			user, err = h.Store.GetUserByEmail(ctx, email)
		} else if err == nil {
			h.log.Info().Uint("user_id", user.ID).Msg("user registered via google")
		}
	}
	if err != nil {
		h.storeError(c, err, "")
		return
	}

	if !h.startSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusOK, newSession(user))
}

func federatedName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}

// Logout expires the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.SessionCookieName, "", -1, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Session reports who the current token belongs to.
func (h *Handler) Session(c *gin.Context) {
	user, err := h.Store.GetUserByID(c.Request.Context(), currentUser(c))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			abort(c, http.StatusUnauthorized, "session user no longer exists")
			return
		}
		h.storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, newSession(user))
}

func (h *Handler) startSession(c *gin.Context, userID uint) bool {
	token, err := h.Tokens.Generate(userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("token generation failed")
		abort(c, http.StatusInternalServerError, "failed to create token")
		return false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.SessionCookieName, token, int(h.Tokens.Lifetime().Seconds()), "/", "", h.secureCookies, true)
	return true
}

// RequireAuth resolves the caller from the session cookie or a bearer token.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := h.authenticate(c.Request)
		if err != nil {
			abort(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func (h *Handler) authenticate(r *http.Request) (uint, error) {
	var token string
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	} else if cookie, err := r.Cookie(config.SessionCookieName); err == nil {
		token = cookie.Value
	}
	if token == "" {
		return 0, chathub.ErrAuthenticationMissing
	}

	userID, err := h.Tokens.Parse(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", chathub.ErrAuthenticationMissing, err)
	}
	return userID, nil
}

func currentUser(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
