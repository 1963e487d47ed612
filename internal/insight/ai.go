// Package insight resolves links and streaming platforms for a movie title
// using generative AI providers and the YouTube search API.
package insight

import (
	"bytes"
	"cinesocial/backend/internal/logging"
	"cinesocial/backend/internal/metrics"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	geminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
	groqURL   = "https://api.groq.com/openai/v1/chat/completions"
	groqModel = "llama-3.1-8b-instant"
)

// ErrNoAnswer is returned when a provider responds without any text.
var ErrNoAnswer = errors.New("provider returned no answer")

// StatusError carries a non-2xx provider response.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.Code, e.Body)
}

func isRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusTooManyRequests
}

// Completer answers a single free-text prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

func postJSON(ctx context.Context, provider, url string, headers map[string]string, body, dst any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", provider, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s read: %w", provider, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &StatusError{Provider: provider, Code: res.StatusCode, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s decode: %w", provider, err)
	}
	return nil
}

type GeminiClient struct {
	apiKey string
	url    string
}

func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{apiKey: apiKey, url: geminiURL}
}

func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	type part struct {
		Text string `json:"text"`
	}
	body := map[string]any{
		"contents": []map[string]any{{"parts": []part{{Text: prompt}}}},
	}

	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []part `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := postJSON(ctx, "gemini", c.url+"?key="+c.apiKey, nil, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoAnswer
	}
	return strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text), nil
}

type GroqClient struct {
	apiKey string
	url    string
}

func NewGroqClient(apiKey string) *GroqClient {
	return &GroqClient{apiKey: apiKey, url: groqURL}
}

func (c *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model":       groqModel,
		"messages":    []map[string]string{{"role": "user", "content": prompt}},
		"temperature": 0.2,
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	if err := postJSON(ctx, "groq", c.url, headers, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoAnswer
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Resolver sends prompts to the primary provider through a circuit breaker.
// A rate-limited primary or an open circuit routes the prompt to the secondary.
type Resolver struct {
	primary   Completer
	secondary Completer
	cb        *gobreaker.CircuitBreaker[string]
}

func NewResolver(primary, secondary Completer) *Resolver {
	const name = "ai-primary"
	metrics.CircuitState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitState.WithLabelValues(name).Set(float64(to))
		},
	})
	return &Resolver{primary: primary, secondary: secondary, cb: cb}
}

func (r *Resolver) Ask(ctx context.Context, prompt string) (string, error) {
	answer, err := r.cb.Execute(func() (string, error) {
		return r.primary.Complete(ctx, prompt)
	})
	if err == nil {
		return answer, nil
	}

	fallback := isRateLimited(err) ||
		errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests)
	if !fallback || r.secondary == nil {
		return "", err
	}

	metrics.AIFallbacks.Inc()
	logging.Debug().Err(err).Msg("primary AI unavailable, using fallback")
	return r.secondary.Complete(ctx, prompt)
}
