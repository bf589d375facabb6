package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/smizereens/TMDB/internal/domain"
)

// Эндпоинт популярных не умеет фильтровать по голосам, порог
// применяется здесь.
const minVoteCount = 1000

type MovieFinder struct {
	catalog domain.MovieCatalog
}

func NewMovieFinder(catalog domain.MovieCatalog) *MovieFinder {
	return &MovieFinder{catalog: catalog}
}

// Search ищет фильмы по названию. Результаты не фильтруются по количеству
// голосов, чтобы не терять точные совпадения названий.
func (uc *MovieFinder) Search(ctx context.Context, query string) ([]domain.Movie, error) {
	const op = "usecase.Search"

	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrEmptyQuery)
	}

	page, err := uc.catalog.SearchMovies(ctx, query, 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page.Results, nil
}

func (uc *MovieFinder) Discover(ctx context.Context, criteria domain.DiscoveryCriteria) ([]domain.Movie, error) {
	const op = "usecase.Discover"

	page, err := uc.catalog.DiscoverMovies(ctx, criteria, 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page.Results, nil
}

func (uc *MovieFinder) Popular(ctx context.Context) ([]domain.Movie, error) {
	const op = "usecase.Popular"

	page, err := uc.catalog.PopularMovies(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	filtered := make([]domain.Movie, 0, len(page.Results))
	for _, movie := range page.Results {
		if movie.VoteCount >= minVoteCount {
			filtered = append(filtered, movie)
		}
	}

	return filtered, nil
}

func (uc *MovieFinder) TopRated(ctx context.Context) ([]domain.Movie, error) {
	const op = "usecase.TopRated"

	page, err := uc.catalog.TopRatedMovies(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page.Results, nil
}

func (uc *MovieFinder) Upcoming(ctx context.Context) ([]domain.Movie, error) {
	const op = "usecase.Upcoming"

	page, err := uc.catalog.UpcomingMovies(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page.Results, nil
}

func (uc *MovieFinder) MovieDetails(ctx context.Context, movieID int) (domain.Movie, error) {
	const op = "usecase.MovieDetails"

	movie, err := uc.catalog.MovieDetails(ctx, movieID)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("%s: %w", op, err)
	}

	return movie, nil
}
