package telegram

import (
	"fmt"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/smizereens/TMDB/internal/domain"
)

const (
	btnSearch   = "🔍 Поиск"
	btnDiscover = "💡 Подобрать"
	btnPopular  = "⭐ Популярные"
	btnTopRated = "🏆 Топ Рейтинг"
	btnUpcoming = "📅 Скоро"
	btnHelp     = "❓ Помощь"
)

const (
	cbSkipGenre    = "skip_genre"
	cbRatingAny    = "rating_any"
	cbGenrePrefix  = "genre_"
	cbRatingPrefix = "rating_"
	cbNextPrefix   = "next_movie_"
	cbPrevPrefix   = "prev_movie_"
)

const genresPerRow = 3

func mainReplyMarkup() tgbotapi.ReplyKeyboardMarkup {
	markup := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSearch),
			tgbotapi.NewKeyboardButton(btnDiscover),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnPopular),
			tgbotapi.NewKeyboardButton(btnTopRated),
			tgbotapi.NewKeyboardButton(btnUpcoming),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnHelp),
		),
	)
	markup.ResizeKeyboard = true
	return markup
}

func genreKeyboard(genres []domain.Genre) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(genres)/genresPerRow+2)
	row := make([]tgbotapi.InlineKeyboardButton, 0, genresPerRow)
	for _, genre := range genres {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			capitalize(genre.Name), fmt.Sprintf("%s%d", cbGenrePrefix, genre.ID)))
		if len(row) == genresPerRow {
			rows = append(rows, row)
			row = make([]tgbotapi.InlineKeyboardButton, 0, genresPerRow)
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Пропустить", cbSkipGenre)))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func ratingKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Любой", cbRatingAny),
			tgbotapi.NewInlineKeyboardButtonData("6+", "rating_6"),
			tgbotapi.NewInlineKeyboardButtonData("7+", "rating_7"),
			tgbotapi.NewInlineKeyboardButtonData("8+", "rating_8"),
		),
	)
}

// paginationKeyboard возвращает nil, когда у результата нет соседей.
func paginationKeyboard(index, total int) *tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, 2)
	if index > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			"⬅️ Пред.", fmt.Sprintf("%s%d", cbPrevPrefix, index-1)))
	}
	if index < total-1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			"След. ➡️", fmt.Sprintf("%s%d", cbNextPrefix, index+1)))
	}
	if len(row) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(row)
	return &markup
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
