package handler

import (
	"cinesocial/backend/internal/auth"
	"cinesocial/backend/internal/config"
	"cinesocial/backend/internal/models"
	"cinesocial/backend/internal/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == config.SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", config.SessionCookieName)
	return nil
}

func TestRegister_CreatesUserAndStartsSession(t *testing.T) {
	e := newEnv()
	e.store.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Name == "Ann" && u.Email == "ann@example.com" && auth.VerifyPassword(u.PasswordHash, "secret1")
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 7
	}).Return(nil)

	w := e.do(t, http.MethodPost, "/api/register", map[string]string{
		"name": "  Ann ", "email": "Ann@Example.com", "password": "secret1",
	}, 0)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := decode[sessionResponse](t, w)
	assert.Equal(t, sessionResponse{UserID: 7, Name: "Ann", Email: "ann@example.com"}, got)

	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	userID, err := e.tokens.Parse(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
	e.store.AssertExpectations(t)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "missing name", body: map[string]string{"email": "a@b.co", "password": "secret1"}},
		{name: "blank name", body: map[string]string{"name": "   ", "email": "a@b.co", "password": "secret1"}},
		{name: "bad email", body: map[string]string{"name": "Ann", "email": "nope", "password": "secret1"}},
		{name: "short password", body: map[string]string{"name": "Ann", "email": "a@b.co", "password": "12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			w := e.do(t, http.MethodPost, "/api/register", tt.body, 0)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			e.store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	e := newEnv()
	e.store.On("CreateUser", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: duplicate key", storage.ErrConflict))

	w := e.do(t, http.MethodPost, "/api/register", map[string]string{
		"name": "Ann", "email": "ann@example.com", "password": "secret1",
	}, 0)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	ann := &models.User{ID: 7, Name: "Ann", Email: "ann@example.com", PasswordHash: hash}

	tests := []struct {
		name     string
		email    string
		password string
		found    bool
		status   int
	}{
		{name: "valid", email: "ANN@example.com", password: "secret1", found: true, status: http.StatusOK},
		{name: "wrong password", email: "ann@example.com", password: "secret2", found: true, status: http.StatusUnauthorized},
		{name: "unknown email", email: "ann@example.com", password: "secret1", found: false, status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			if tt.found {
				e.store.On("GetUserByEmail", mock.Anything, "ann@example.com").Return(ann, nil)
			} else {
				e.store.On("GetUserByEmail", mock.Anything, "ann@example.com").Return(nil, storage.ErrNotFound)
			}

			w := e.do(t, http.MethodPost, "/api/login", map[string]string{"email": tt.email, "password": tt.password}, 0)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusOK {
				assert.NotEmpty(t, sessionCookie(t, w).Value)
			}
		})
	}
}

func TestLogout_ExpiresCookie(t *testing.T) {
	e := newEnv()

	w := e.do(t, http.MethodPost, "/api/logout", nil, 0)

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestSession(t *testing.T) {
	e := newEnv()
	e.store.On("GetUserByID", mock.Anything, uint(7)).Return(&models.User{ID: 7, Name: "Ann", Email: "ann@example.com"}, nil)

	t.Run("bearer", func(t *testing.T) {
		w := e.do(t, http.MethodGet, "/api/check-session", nil, 7)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uint(7), decode[sessionResponse](t, w).UserID)
	})

	t.Run("cookie", func(t *testing.T) {
		token, err := e.tokens.Generate(7)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/check-session", nil)
		req.AddCookie(&http.Cookie{Name: config.SessionCookieName, Value: token})
		w := httptest.NewRecorder()
		e.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/api/check-session", nil, 0).Code)
	})

	t.Run("forged", func(t *testing.T) {
		forged, err := auth.NewTokens("another-secret-0123456789").Generate(7)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/check-session", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		w := httptest.NewRecorder()
		e.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

type fakeVerifier struct {
	identity *auth.GoogleIdentity
	err      error
}

func (v fakeVerifier) Verify(_ context.Context, token string) (*auth.GoogleIdentity, error) {
	if token != "google-id-token" {
		return nil, auth.ErrInvalidGoogleToken
	}
	return v.identity, v.err
}

var annFromGoogle = &auth.GoogleIdentity{Subject: "1098", Email: "Ann@Example.com", Name: "Ann"}

func TestGoogleLogin_CreatesUserOnFirstLogin(t *testing.T) {
	e := newEnv(WithGoogleLogin(fakeVerifier{identity: annFromGoogle}))
	e.store.On("GetUserByEmail", mock.Anything, "ann@example.com").
		Return(nil, fmt.Errorf("%w: no rows", storage.ErrNotFound))
	e.store.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Name == "Ann" && u.Email == "ann@example.com" && u.PasswordHash == ""
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 11
	}).Return(nil)

	w := e.do(t, http.MethodPost, "/api/auth/google-login", map[string]string{"token": "google-id-token"}, 0)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, sessionResponse{UserID: 11, Name: "Ann", Email: "ann@example.com"}, decode[sessionResponse](t, w))
	userID, err := e.tokens.Parse(sessionCookie(t, w).Value)
	require.NoError(t, err)
	assert.Equal(t, uint(11), userID)
	e.store.AssertExpectations(t)
}

func TestGoogleLogin_ExistingUser(t *testing.T) {
	e := newEnv(WithGoogleLogin(fakeVerifier{identity: annFromGoogle}))
	e.store.On("GetUserByEmail", mock.Anything, "ann@example.com").
		Return(&models.User{ID: 4, Name: "Ann B", Email: "ann@example.com"}, nil)

	w := e.do(t, http.MethodPost, "/api/auth/google-login", map[string]string{"token": "google-id-token"}, 0)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(4), decode[sessionResponse](t, w).UserID)
	e.store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestGoogleLogin_Failures(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option
		body   map[string]string
		status int
	}{
		{"not configured", nil, map[string]string{"token": "google-id-token"}, http.StatusServiceUnavailable},
		{"missing token", []Option{WithGoogleLogin(fakeVerifier{identity: annFromGoogle})}, map[string]string{}, http.StatusBadRequest},
		{"rejected token", []Option{WithGoogleLogin(fakeVerifier{identity: annFromGoogle})}, map[string]string{"token": "forged"}, http.StatusUnauthorized},
		{"google down", []Option{WithGoogleLogin(fakeVerifier{err: errors.New("tokeninfo returned 503")})}, map[string]string{"token": "google-id-token"}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(tt.opts...)

			w := e.do(t, http.MethodPost, "/api/auth/google-login", tt.body, 0)

			assert.Equal(t, tt.status, w.Code)
			e.store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}
}

func TestLogin_FederatedAccountHasNoPassword(t *testing.T) {
	e := newEnv()
	e.store.On("GetUserByEmail", mock.Anything, "ann@example.com").
		Return(&models.User{ID: 4, Name: "Ann", Email: "ann@example.com"}, nil)

	w := e.do(t, http.MethodPost, "/api/login", map[string]string{"email": "ann@example.com", "password": ""}, 0)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/login", map[string]string{"email": "ann@example.com", "password": "anything"}, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
