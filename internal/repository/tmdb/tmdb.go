package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/smizereens/TMDB/configs"
	"github.com/smizereens/TMDB/internal/domain"
)

const (
	defaultLanguage = "ru-RU"
	// discover отдает много мусора с парой голосов, подбор
	// ограничивается этим порогом.
	voteCountFloor = 1000
)

type Repo struct {
	Path   string
	APIKey string
	Client *http.Client
}

func NewRepo(config *configs.Config) *Repo {

	return &Repo{
		APIKey: config.TMDB.Token,
		Path:   config.TMDB.Path,
		Client: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

func (repo *Repo) SearchMovies(ctx context.Context, query string, page int) (domain.ResultPage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", "false")

	return repo.requestPage(ctx, "search/movie", params)
}

func (repo *Repo) DiscoverMovies(ctx context.Context, criteria domain.DiscoveryCriteria, page int) (domain.ResultPage, error) {
	params := url.Values{}
	if criteria.GenreID != 0 {
		params.Set("with_genres", strconv.Itoa(criteria.GenreID))
	}
	if criteria.Year != 0 {
		params.Set("primary_release_year", strconv.Itoa(criteria.Year))
	}
	if criteria.MinRating != 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(criteria.MinRating, 'f', -1, 64))
	}
	params.Set("sort_by", "popularity.desc")
	params.Set("vote_count.gte", strconv.Itoa(voteCountFloor))
	params.Set("page", strconv.Itoa(page))

	return repo.requestPage(ctx, "discover/movie", params)
}

func (repo *Repo) PopularMovies(ctx context.Context, page int) (domain.ResultPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	// movie/popular не поддерживает vote_count.gte, фильтрация по голосам
	// выполняется на стороне вызывающего.
	return repo.requestPage(ctx, "movie/popular", params)
}

func (repo *Repo) TopRatedMovies(ctx context.Context, page int) (domain.ResultPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	// movie/top_rated применяет порог голосов на своей стороне и не
	// принимает vote_count.gte.
	return repo.requestPage(ctx, "movie/top_rated", params)
}

func (repo *Repo) UpcomingMovies(ctx context.Context, page int) (domain.ResultPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	return repo.requestPage(ctx, "movie/upcoming", params)
}

func (repo *Repo) MovieDetails(ctx context.Context, movieID int) (domain.Movie, error) {
	resp, err := repo.doRequest(ctx, fmt.Sprintf("movie/%d", movieID), nil)
	if err != nil {
		return domain.Movie{}, err
	}

	var movie domain.Movie
	if err = json.Unmarshal(resp, &movie); err != nil {
		return domain.Movie{}, err
	}

	return movie, nil
}

func (repo *Repo) FetchImageConfig(ctx context.Context) (domain.ImageConfig, error) {
	resp, err := repo.doRequest(ctx, "configuration", nil)
	if err != nil {
		return domain.ImageConfig{}, err
	}

	var config struct {
		Images domain.ImageConfig `json:"images"`
	}
	if err = json.Unmarshal(resp, &config); err != nil {
		return domain.ImageConfig{}, err
	}

	return config.Images, nil
}

func (repo *Repo) FetchGenres(ctx context.Context) ([]domain.Genre, error) {
	resp, err := repo.doRequest(ctx, "genre/movie/list", nil)
	if err != nil {
		return nil, err
	}

	var genres struct {
		Genres []domain.Genre `json:"genres"`
	}
	if err = json.Unmarshal(resp, &genres); err != nil {
		return nil, err
	}

	return genres.Genres, nil
}

func (repo *Repo) requestPage(ctx context.Context, endpoint string, params url.Values) (domain.ResultPage, error) {
	resp, err := repo.doRequest(ctx, endpoint, params)
	if err != nil {
		return domain.ResultPage{}, err
	}

	var page domain.ResultPage
	if err = json.Unmarshal(resp, &page); err != nil {
		return domain.ResultPage{}, err
	}

	return page, nil
}

func (repo *Repo) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	const op = "Repo.doRequest"
	if params == nil {
		params = url.Values{}
	}
	if params.Get("language") == "" {
		params.Set("language", defaultLanguage)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		repo.Path+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request:%w", op, err)
	}
	req.Header.Add("accept", "application/json")
	req.Header.Add("Authorization", "Bearer "+repo.APIKey)

	resp, err := repo.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s: bad status %d, response: %s", op, resp.StatusCode, body)
	}

	return io.ReadAll(resp.Body)
}
