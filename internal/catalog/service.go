package catalog

import (
	"cinesocial/backend/internal/config"
	"cinesocial/backend/internal/logging"
	"cinesocial/backend/internal/metrics"
	"cinesocial/backend/internal/storage"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const (
	termsPerPage  = 2
	omdbPageLimit = 10
)

// BrowsePage is one page of the rotating browse listing.
type BrowsePage struct {
	Movies  []Movie `json:"movies"`
	HasMore bool    `json:"hasMore"`
	Page    int     `json:"page"`
}

// Service fronts a Provider with a cache. Cache failures fall through to the provider.
type Service struct {
	provider Provider
	cache    storage.Cache
	log      zerolog.Logger
}

func NewService(p Provider, cache storage.Cache) *Service {
	return &Service{provider: p, cache: cache, log: logging.With("catalog")}
}

func (s *Service) Search(ctx context.Context, query string, f Filter) ([]Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	key := fmt.Sprintf("omdb_search_%s_%s_%s", strings.ToLower(query), f.Type, f.Year)
	return cached(ctx, s, key, config.CatalogSearchTTL, func() ([]Movie, error) {
		return s.provider.Search(ctx, query, f, 1)
	})
}

// Browse walks the seed terms two per page. Once every term has been used on
// OMDb page n, the rotation continues with OMDb page n+1.
func (s *Service) Browse(ctx context.Context, f Filter, page int) (*BrowsePage, error) {
	if page < 1 {
		page = 1
	}
	terms := config.BrowseSeedTerms
	termIndex := ((page - 1) * termsPerPage) % len(terms)
	omdbPage := ((page-1)*termsPerPage)/len(terms) + 1

	var all []Movie
	hasMore := true
	for i := 0; i < termsPerPage; i++ {
		term := terms[(termIndex+i)%len(terms)]
		key := fmt.Sprintf("omdb_browse_%s_%d_%s_%s", term, omdbPage, f.Type, f.Year)

		movies, err := cached(ctx, s, key, config.CatalogBrowseTTL, func() ([]Movie, error) {
			return s.provider.Search(ctx, term, f, omdbPage)
		})
		if err != nil {
			return nil, err
		}
		if len(movies) < omdbPageLimit {
			hasMore = false
		}
		all = append(all, movies...)
	}

	all = lo.UniqBy(all, func(m Movie) string {
		if m.ImdbID != "" {
			return m.ImdbID
		}
		return strings.ToLower(m.Title)
	})
	return &BrowsePage{Movies: all, HasMore: hasMore, Page: page}, nil
}

func (s *Service) Detail(ctx context.Context, imdbID string) (*MovieDetail, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, ErrNotFound
	}
	return cached(ctx, s, "omdb_detail_"+imdbID, config.CatalogDetailTTL, func() (*MovieDetail, error) {
		return s.provider.Detail(ctx, imdbID)
	})
}

func cached[T any](ctx context.Context, s *Service, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	var zero T

	if s.cache != nil {
		raw, err := s.cache.CacheGet(ctx, key)
		switch {
		case err == nil:
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				metrics.CatalogCache.WithLabelValues("hit").Inc()
				return v, nil
			}
			s.log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		case !errors.Is(err, storage.ErrCacheMiss):
			s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
	}
	metrics.CatalogCache.WithLabelValues("miss").Inc()

	v, err := fetch()
	if err != nil {
		return zero, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(v); err == nil {
			if err := s.cache.CacheSet(ctx, key, raw, ttl); err != nil && !errors.Is(err, storage.ErrCacheDisabled) {
				s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
			}
		}
	}
	return v, nil
}
