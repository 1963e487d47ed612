package catalog

import (
	"cinesocial/backend/internal/config"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Recommendation is a browse-listing movie whose plot resembles something
// the user liked.
type Recommendation struct {
	Title  string  `json:"title"`
	ImdbID string  `json:"imdbID"`
	Poster string  `json:"poster"`
	Score  float64 `json:"score"`
}

type plotted struct {
	movie Movie
	plot  string
}

// Recommend compares the plots of likedIDs with the first browse pages and
// returns, for each liked movie, its closest candidates. Results are merged
// in liked order with duplicates and already liked movies removed.
func (s *Service) Recommend(ctx context.Context, likedIDs []string) ([]Recommendation, error) {
	likedIDs = lo.Uniq(lo.Compact(likedIDs))
	if len(likedIDs) > config.RecommendMaxLiked {
		likedIDs = likedIDs[len(likedIDs)-config.RecommendMaxLiked:]
	}
	if len(likedIDs) == 0 {
		return []Recommendation{}, nil
	}

	liked := s.withPlots(ctx, lo.Map(likedIDs, func(id string, _ int) Movie { return Movie{ImdbID: id} }))
	if len(liked) == 0 {
		return []Recommendation{}, nil
	}

	var pool []Movie
	for page := 1; page <= config.RecommendCandidatePages; page++ {
		bp, err := s.Browse(ctx, Filter{}, page)
		if err != nil {
			return nil, err
		}
		pool = append(pool, bp.Movies...)
	}
	seen := lo.SliceToMap(likedIDs, func(id string) (string, struct{}) { return id, struct{}{} })
	pool = lo.Filter(lo.UniqBy(pool, func(m Movie) string { return m.ImdbID }), func(m Movie, _ int) bool {
		_, isLiked := seen[m.ImdbID]
		return m.ImdbID != "" && !isLiked
	})

	candidates := s.withPlots(ctx, pool)
	if len(candidates) == 0 {
		return []Recommendation{}, nil
	}

	docs := make([]string, 0, len(liked)+len(candidates))
	for _, p := range liked {
		docs = append(docs, p.plot)
	}
	for _, p := range candidates {
		docs = append(docs, p.plot)
	}
	vectors := tfidf(docs)
	likedVecs, candVecs := vectors[:len(liked)], vectors[len(liked):]

	var out []Recommendation
	for _, lv := range likedVecs {
		scored := make([]Recommendation, len(candidates))
		for j, c := range candidates {
			scored[j] = Recommendation{
				Title:  c.movie.Title,
				ImdbID: c.movie.ImdbID,
				Poster: c.movie.Poster,
				Score:  cosine(lv, candVecs[j]),
			}
		}
		slices.SortStableFunc(scored, func(a, b Recommendation) int {
			switch {
			case a.Score > b.Score:
				return -1
			case a.Score < b.Score:
				return 1
			}
			return 0
		})
		out = append(out, scored[:min(config.RecommendPerLiked, len(scored))]...)
	}
	return lo.UniqBy(out, func(r Recommendation) string { return r.ImdbID }), nil
}

// withPlots loads details for movies and keeps those with a plot, in input
// order. Lookup failures only drop the movie.
func (s *Service) withPlots(ctx context.Context, movies []Movie) []plotted {
	found := make([]*plotted, len(movies))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.RecommendFetchConcurrency)
	for i, m := range movies {
		g.Go(func() error {
			d, err := s.Detail(gctx, m.ImdbID)
			if err != nil {
				s.log.Debug().Err(err).Str("imdb_id", m.ImdbID).Msg("skipping movie without details")
				return nil
			}
			plot := strings.TrimSpace(d.Plot)
			if plot == "" || plot == "N/A" {
				return nil
			}
			mu.Lock()
			found[i] = &plotted{movie: d.Movie, plot: plot}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return lo.FilterMap(found, func(p *plotted, _ int) (plotted, bool) {
		if p == nil {
			return plotted{}, false
		}
		return *p, true
	})
}
