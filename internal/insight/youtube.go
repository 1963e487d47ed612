package insight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const youtubeSearchURL = "https://www.googleapis.com/youtube/v3/search"

var ErrNoVideo = errors.New("no matching video")

// VideoFinder returns the YouTube video id of a title's trailer.
type VideoFinder interface {
	TrailerVideoID(ctx context.Context, title string) (string, error)
}

// YouTubeClient searches YouTube; calls wait on a token bucket.
type YouTubeClient struct {
	apiKey  string
	url     string
	limiter *rate.Limiter
	http    *http.Client
}

func NewYouTubeClient(apiKey string, rps float64) *YouTubeClient {
	return &YouTubeClient{
		apiKey:  apiKey,
		url:     youtubeSearchURL,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *YouTubeClient) TrailerVideoID(ctx context.Context, title string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("youtube rate limit: %w", err)
	}

	params := url.Values{
		"part":       {"snippet"},
		"type":       {"video"},
		"maxResults": {"1"},
		"q":          {title + " official trailer"},
		"key":        {c.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("youtube request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", &StatusError{Provider: "youtube", Code: res.StatusCode}
	}

	var body struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode youtube response: %w", err)
	}
	if len(body.Items) == 0 || body.Items[0].ID.VideoID == "" {
		return "", ErrNoVideo
	}
	return body.Items[0].ID.VideoID, nil
}
