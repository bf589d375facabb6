package cachedcatalog

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/smizereens/TMDB/internal/domain"
	"github.com/smizereens/TMDB/pkg/prometheus"
)

const detailsCacheSize = 256

// CachedCatalog оборачивает каталог и кэширует детали фильмов в памяти.
// Детали фильма неизменяемы после выхода, инвалидация не требуется,
// вытеснение по LRU.
type CachedCatalog struct {
	domain.MovieCatalog
	details *lru.Cache[int, domain.Movie]
	log     *slog.Logger
}

func NewCachedCatalog(catalog domain.MovieCatalog, log *slog.Logger) (*CachedCatalog, error) {
	const op = "cachedcatalog.NewCachedCatalog"

	details, err := lru.New[int, domain.Movie](detailsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &CachedCatalog{
		MovieCatalog: catalog,
		details:      details,
		log:          log,
	}, nil
}

func (c *CachedCatalog) MovieDetails(ctx context.Context, movieID int) (domain.Movie, error) {
	const op = "cachedcatalog.MovieDetails"

	if movie, ok := c.details.Get(movieID); ok {
		prometheus.CacheOperations.WithLabelValues("hit").Inc()
		return movie, nil
	}

	prometheus.CacheOperations.WithLabelValues("miss").Inc()
	movie, err := c.MovieCatalog.MovieDetails(ctx, movieID)
	if err != nil {
		c.log.Error("Не удалось получить детали фильма из каталога",
			"movieID", movieID, "error", err)
		return domain.Movie{}, fmt.Errorf("%s: %w", op, err)
	}

	c.details.Add(movieID, movie)
	return movie, nil
}
