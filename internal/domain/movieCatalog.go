package domain

import "context"

// MovieCatalog - внешний провайдер метаданных фильмов. Ошибка означает сбой
// запроса; пустая страница результатов - корректный ответ без совпадений.
type MovieCatalog interface {
	SearchMovies(ctx context.Context, query string, page int) (ResultPage, error)
	DiscoverMovies(ctx context.Context, criteria DiscoveryCriteria, page int) (ResultPage, error)
	PopularMovies(ctx context.Context, page int) (ResultPage, error)
	TopRatedMovies(ctx context.Context, page int) (ResultPage, error)
	UpcomingMovies(ctx context.Context, page int) (ResultPage, error)
	MovieDetails(ctx context.Context, movieID int) (Movie, error)
	FetchImageConfig(ctx context.Context) (ImageConfig, error)
	FetchGenres(ctx context.Context) ([]Genre, error)
}
