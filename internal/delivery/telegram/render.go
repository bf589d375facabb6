package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/smizereens/TMDB/internal/domain"
)

const preferredPosterSize = "w500"

type genreResolver interface {
	GenreName(id int) (string, bool)
}

// formatMovie собирает HTML-подпись фильма и URL постера. Все текстовые
// поля каталога экранируются перед встраиванием в разметку. Пустой URL
// означает текстовый показ без изображения.
func formatMovie(movie domain.Movie, img domain.ImageConfig, genres genreResolver) (string, string) {
	title := html.EscapeString(movie.Title)
	if title == "" {
		title = "N/A"
	}
	originalTitle := html.EscapeString(movie.OriginalTitle)
	overview := html.EscapeString(movie.Overview)
	if overview == "" {
		overview = "Описание недоступно."
	}
	releaseDate := movie.ReleaseDate
	if releaseDate == "" {
		releaseDate = "N/A"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎬 <b>%s</b>", title))
	if !strings.EqualFold(movie.Title, movie.OriginalTitle) && originalTitle != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", originalTitle))
	}
	sb.WriteString(fmt.Sprintf("\n\n🗓️ Дата выхода: %s", releaseDate))
	if names := movieGenreNames(movie, genres); len(names) > 0 {
		escaped := make([]string, 0, len(names))
		for _, name := range names {
			escaped = append(escaped, html.EscapeString(name))
		}
		sb.WriteString(fmt.Sprintf("\n🎭 Жанры: %s", strings.Join(escaped, ", ")))
	}
	if movie.Runtime != 0 {
		sb.WriteString(fmt.Sprintf("\n⏱️ Продолжительность: %d мин.", movie.Runtime))
	}
	sb.WriteString(fmt.Sprintf("\n⭐ Рейтинг: %.1f/10 (%d голосов)", movie.VoteAverage, movie.VoteCount))
	sb.WriteString(fmt.Sprintf("\n\n📝 Описание:\n%s", overview))

	return sb.String(), posterURL(img, movie.PosterPath)
}

// formatMoviePlain - тот же макет без HTML-разметки, для резервной отправки
// при сбое доставки.
func formatMoviePlain(movie domain.Movie, genres genreResolver) string {
	title := movie.Title
	if title == "" {
		title = "N/A"
	}
	overview := movie.Overview
	if overview == "" {
		overview = "Описание недоступно."
	}
	releaseDate := movie.ReleaseDate
	if releaseDate == "" {
		releaseDate = "N/A"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎬 %s", title))
	if !strings.EqualFold(movie.Title, movie.OriginalTitle) && movie.OriginalTitle != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", movie.OriginalTitle))
	}
	sb.WriteString(fmt.Sprintf("\n\n🗓️ Дата выхода: %s", releaseDate))
	if names := movieGenreNames(movie, genres); len(names) > 0 {
		sb.WriteString(fmt.Sprintf("\n🎭 Жанры: %s", strings.Join(names, ", ")))
	}
	if movie.Runtime != 0 {
		sb.WriteString(fmt.Sprintf("\n⏱️ Продолжительность: %d мин.", movie.Runtime))
	}
	sb.WriteString(fmt.Sprintf("\n⭐ Рейтинг: %.1f/10 (%d голосов)", movie.VoteAverage, movie.VoteCount))
	sb.WriteString(fmt.Sprintf("\n\n📝 Описание:\n%s", overview))

	return sb.String()
}

// movieGenreNames берет имена из записи фильма, а для списочных результатов
// разрешает идентификаторы через индекс жанров.
func movieGenreNames(movie domain.Movie, genres genreResolver) []string {
	if len(movie.Genres) > 0 {
		names := make([]string, 0, len(movie.Genres))
		for _, genre := range movie.Genres {
			names = append(names, genre.Name)
		}
		return names
	}

	names := make([]string, 0, len(movie.GenreIDs))
	for _, id := range movie.GenreIDs {
		if name, ok := genres.GenreName(id); ok {
			names = append(names, name)
		}
	}
	return names
}

func posterURL(img domain.ImageConfig, posterPath string) string {
	if img.SecureBaseURL == "" || posterPath == "" {
		return ""
	}
	return img.SecureBaseURL + pickPosterSize(img.PosterSizes) + posterPath
}

// pickPosterSize: w500 если доступен, иначе предпоследний из списка,
// иначе единственный доступный, иначе "original".
func pickPosterSize(sizes []string) string {
	for _, size := range sizes {
		if size == preferredPosterSize {
			return size
		}
	}
	switch {
	case len(sizes) >= 2:
		return sizes[len(sizes)-2]
	case len(sizes) == 1:
		return sizes[0]
	default:
		return "original"
	}
}
