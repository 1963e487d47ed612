// Package catalog looks movies up in OMDb and caches the answers.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const omdbBaseURL = "https://www.omdbapi.com/"

var (
	ErrEmptyQuery = errors.New("search query cannot be empty")
	ErrNotFound   = errors.New("movie not found")
)

type Movie struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

type MovieDetail struct {
	Movie
	Rated      string   `json:"Rated"`
	Released   string   `json:"Released"`
	Runtime    string   `json:"Runtime"`
	Genre      string   `json:"Genre"`
	Director   string   `json:"Director"`
	Writer     string   `json:"Writer"`
	Actors     string   `json:"Actors"`
	Plot       string   `json:"Plot"`
	Language   string   `json:"Language"`
	Country    string   `json:"Country"`
	Awards     string   `json:"Awards"`
	Ratings    []Rating `json:"Ratings"`
	Metascore  string   `json:"Metascore"`
	ImdbRating string   `json:"imdbRating"`
	ImdbVotes  string   `json:"imdbVotes"`
	BoxOffice  string   `json:"BoxOffice"`
}

// Filter narrows a search by OMDb type (movie, series, episode) and year.
type Filter struct {
	Type string
	Year string
}

// Provider is the upstream movie database.
type Provider interface {
	Search(ctx context.Context, query string, f Filter, page int) ([]Movie, error)
	Detail(ctx context.Context, imdbID string) (*MovieDetail, error)
}

// OMDbClient talks to the OMDb HTTP API.
type OMDbClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewOMDbClient(apiKey string) *OMDbClient {
	return &OMDbClient{
		apiKey:  apiKey,
		baseURL: omdbBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResponse struct {
	Search   []Movie `json:"Search"`
	Response string  `json:"Response"`
	Error    string  `json:"Error"`
}

func (c *OMDbClient) Search(ctx context.Context, query string, f Filter, page int) ([]Movie, error) {
	params := url.Values{"s": {query}}
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}
	applyFilter(params, f)

	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, err
	}
	if resp.Response == "False" {
		// OMDb reports an empty result set as an error string.
		if isEmptyResult(resp.Error) {
			return []Movie{}, nil
		}
		return nil, fmt.Errorf("omdb search %q: %s", query, resp.Error)
	}
	return resp.Search, nil
}

func (c *OMDbClient) Detail(ctx context.Context, imdbID string) (*MovieDetail, error) {
	var resp struct {
		MovieDetail
		Response string `json:"Response"`
		Error    string `json:"Error"`
	}
	if err := c.get(ctx, url.Values{"i": {imdbID}, "plot": {"full"}}, &resp); err != nil {
		return nil, err
	}
	if resp.Response == "False" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, resp.Error)
	}
	return &resp.MovieDetail, nil
}

func (c *OMDbClient) get(ctx context.Context, params url.Values, dst any) error {
	params.Set("apikey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("omdb request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("omdb returned status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode omdb response: %w", err)
	}
	return nil
}

func applyFilter(params url.Values, f Filter) {
	if t := strings.TrimSpace(f.Type); t != "" {
		params.Set("type", t)
	}
	if y := strings.TrimSpace(f.Year); y != "" {
		params.Set("y", y)
	}
}

func isEmptyResult(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "not found") || strings.Contains(msg, "too many results")
}
