package domain

type Movie struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	GenreIDs      []int   `json:"genre_ids"`
	Genres        []Genre `json:"genres"`
	Runtime       int     `json:"runtime"`
	PosterPath    string  `json:"poster_path"`
	Popularity    float64 `json:"popularity"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ImageConfig - конфигурация URL изображений. Заменяется целиком при
// обновлении, после публикации только читается.
type ImageConfig struct {
	SecureBaseURL string   `json:"secure_base_url"`
	PosterSizes   []string `json:"poster_sizes"`
}

func (c ImageConfig) Valid() bool {
	return c.SecureBaseURL != "" && len(c.PosterSizes) > 0
}

type ResultPage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// DiscoveryCriteria - накопленные критерии подбора одного диалога.
// Нулевое значение поля означает, что критерий не задан.
type DiscoveryCriteria struct {
	GenreID   int
	Year      int
	MinRating float64
}
