package insight

import (
	"cinesocial/backend/internal/logging"
	"cinesocial/backend/internal/models"
	"cinesocial/backend/internal/storage"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	trailerPrompt   = "Just give a url for the youtube trailer of this movie %s dont give any other text with it"
	imdbPrompt      = "Just give a url for the imdb page of this movie %s dont give any other text with it"
	wikiPrompt      = "Just give a url for the wikipedia page of this movie %s dont give any other text with it"
	reviewsPrompt   = "Just give Rotten Tomatoes url for the movie %s nothing else"
	platformsPrompt = `Return ONLY a JSON array of streaming platforms (strings) where the movie can be watched.
Rules:
- Output must start with [ and end with ]
- Only strings inside the array
- No extra text, no markdown, no code fences
Example: ["Netflix","Prime Video"]
Movie: %s`
)

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>\])]+`)

// Asker is satisfied by Resolver.
type Asker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Service builds MovieInsight records and keeps them in the store.
type Service struct {
	ai    Asker
	video VideoFinder
	store storage.InsightStore
	log   zerolog.Logger
}

// NewService wires the lookups. video may be nil, in which case trailers are
// resolved through the AI provider.
func NewService(ai Asker, video VideoFinder, store storage.InsightStore) *Service {
	return &Service{ai: ai, video: video, store: store, log: logging.With("insight")}
}

// Get returns the stored insight for title, resolving and saving it first
// when absent or when refresh is set.
func (s *Service) Get(ctx context.Context, title string, refresh bool) (*models.MovieInsight, error) {
	key := models.NormalizeTitle(title)
	if key == "" {
		return nil, errors.New("movie title is required")
	}

	if !refresh {
		stored, err := s.store.GetInsight(ctx, key)
		if err == nil {
			return stored, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn().Err(err).Str("title", key).Msg("insight lookup failed, resolving")
		}
	}

	ins, complete, err := s.resolve(ctx, strings.TrimSpace(title))
	if err != nil {
		return nil, err
	}
	ins.MovieTitle = key
	ins.UpdatedAt = time.Now().UTC()

	// Partial answers are returned but not stored, so the next request retries.
	if complete {
		if err := s.store.SaveInsight(ctx, ins); err != nil {
			s.log.Error().Err(err).Str("title", key).Msg("failed to save insight")
		}
	}
	return ins, nil
}

func (s *Service) resolve(ctx context.Context, title string) (*models.MovieInsight, bool, error) {
	ins := &models.MovieInsight{Platforms: pq.StringArray{}}

	var (
		mu     sync.Mutex
		failed int
	)
	fail := func(field string, err error) {
		mu.Lock()
		failed++
		mu.Unlock()
		s.log.Warn().Err(err).Str("title", title).Str("field", field).Msg("insight lookup failed")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)

	g.Go(func() error {
		id, err := s.trailer(gctx, title)
		if err != nil {
			fail("trailer", err)
			return nil
		}
		ins.TrailerVideoID = id
		return nil
	})
	for field, lookup := range map[string]struct {
		prompt string
		dst    *string
	}{
		"imdb":    {imdbPrompt, &ins.ImdbURL},
		"wiki":    {wikiPrompt, &ins.WikiURL},
		"reviews": {reviewsPrompt, &ins.ReviewsURL},
	} {
		g.Go(func() error {
			answer, err := s.ai.Ask(gctx, fmt.Sprintf(lookup.prompt, title))
			if err != nil {
				fail(field, err)
				return nil
			}
			*lookup.dst = ExtractURL(answer)
			return nil
		})
	}
	g.Go(func() error {
		answer, err := s.ai.Ask(gctx, fmt.Sprintf(platformsPrompt, title))
		if err != nil {
			fail("platforms", err)
			return nil
		}
		platforms, err := ParsePlatforms(answer)
		if err != nil {
			fail("platforms", err)
			return nil
		}
		ins.Platforms = platforms
		return nil
	})

	_ = g.Wait()
	if failed == 5 {
		return nil, false, fmt.Errorf("no insight could be resolved for %q", title)
	}
	return ins, failed == 0, nil
}

// trailer prefers the YouTube search API and falls back to asking the AI.
func (s *Service) trailer(ctx context.Context, title string) (string, error) {
	if s.video != nil {
		id, err := s.video.TrailerVideoID(ctx, title)
		if err == nil {
			return id, nil
		}
		s.log.Debug().Err(err).Str("title", title).Msg("youtube search failed, asking AI")
	}

	answer, err := s.ai.Ask(ctx, fmt.Sprintf(trailerPrompt, title))
	if err != nil {
		return "", err
	}
	id := VideoIDFromURL(ExtractURL(answer))
	if id == "" {
		return "", ErrNoVideo
	}
	return id, nil
}

// ExtractURL returns the first http(s) URL in text, or "".
func ExtractURL(text string) string {
	return strings.TrimRight(urlPattern.FindString(text), ".,;")
}

// VideoIDFromURL understands youtube.com/watch?v=, youtu.be/ and /embed/ links.
func VideoIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch {
	case host == "youtu.be":
		return strings.Trim(u.Path, "/")
	case strings.HasSuffix(host, "youtube.com"):
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		if rest, ok := strings.CutPrefix(u.Path, "/embed/"); ok {
			return strings.Trim(rest, "/")
		}
	}
	return ""
}

// ParsePlatforms reads the JSON string array out of an AI answer, tolerating
// code fences and surrounding prose.
func ParsePlatforms(answer string) (pq.StringArray, error) {
	start := strings.Index(answer, "[")
	end := strings.LastIndex(answer, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in answer %q", answer)
	}

	var platforms []string
	if err := json.Unmarshal([]byte(answer[start:end+1]), &platforms); err != nil {
		return nil, fmt.Errorf("parse platforms: %w", err)
	}

	out := pq.StringArray{}
	seen := make(map[string]bool)
	for _, p := range platforms {
		p = strings.TrimSpace(p)
		if p == "" || seen[strings.ToLower(p)] {
			continue
		}
		seen[strings.ToLower(p)] = true
		out = append(out, p)
	}
	return out, nil
}
