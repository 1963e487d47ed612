package auth

import (
	"cinesocial/backend/internal/logging"
	"cinesocial/backend/internal/metrics"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// ErrInvalidGoogleToken is returned for tokens Google rejects or that were
// issued for another client.
var ErrInvalidGoogleToken = errors.New("invalid google token")

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// GoogleVerifier checks ID tokens with Google's tokeninfo endpoint.
type GoogleVerifier struct {
	clientID string
	endpoint string
	client   *http.Client
	cb       *gobreaker.CircuitBreaker[*GoogleIdentity]
	now      func() time.Time
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	const name = "google-tokeninfo"
	metrics.CircuitState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*GoogleIdentity](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A rejected token says nothing about Google's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrInvalidGoogleToken)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitState.WithLabelValues(name).Set(float64(to))
		},
	})
	return &GoogleVerifier{
		clientID: clientID,
		endpoint: googleTokenInfoURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		cb:       cb,
		now:      time.Now,
	}
}

type tokenInfo struct {
	Audience      string `json:"aud"`
	Issuer        string `json:"iss"`
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Expires       string `json:"exp"`
}

// Verify validates idToken and returns the identity it asserts.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if idToken == "" {
		return nil, ErrInvalidGoogleToken
	}
	return v.cb.Execute(func() (*GoogleIdentity, error) {
		return v.verify(ctx, idToken)
	})
}

func (v *GoogleVerifier) verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return nil, err
	}
	res, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("tokeninfo read: %w", err)
	}
	switch {
	case res.StatusCode == http.StatusBadRequest:
		return nil, ErrInvalidGoogleToken
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("tokeninfo returned %d", res.StatusCode)
	}

	var info tokenInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("tokeninfo decode: %w", err)
	}
	if err := v.check(info); err != nil {
		return nil, err
	}
	return &GoogleIdentity{Subject: info.Subject, Email: info.Email, Name: info.Name}, nil
}

func (v *GoogleVerifier) check(info tokenInfo) error {
	switch {
	case info.Audience != v.clientID:
		return fmt.Errorf("%w: audience mismatch", ErrInvalidGoogleToken)
	case info.Issuer != "accounts.google.com" && info.Issuer != "https://accounts.google.com":
		return fmt.Errorf("%w: unexpected issuer %q", ErrInvalidGoogleToken, info.Issuer)
	case info.Email == "" || info.EmailVerified != "true":
		return fmt.Errorf("%w: email not verified", ErrInvalidGoogleToken)
	}
	exp, err := strconv.ParseInt(info.Expires, 10, 64)
	if err != nil || !time.Unix(exp, 0).After(v.now()) {
		return fmt.Errorf("%w: expired", ErrInvalidGoogleToken)
	}
	return nil
}
