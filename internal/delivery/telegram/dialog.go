package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/smizereens/TMDB/internal/domain"
	"github.com/smizereens/TMDB/pkg/prometheus"
)

const apiErrorNotice = "Произошла ошибка при запросе к API. Попробуйте позже."

// startDiscovery начинает диалог подбора. Без индекса жанров диалог
// не стартует.
func (b *Bot) startDiscovery(ctx context.Context, chatID int64) {
	if !b.cache.EnsureGenres(ctx) {
		b.sendWithMarkup(ctx, chatID,
			"Не удалось загрузить список жанров. Попробуйте позже.", mainReplyMarkup())
		return
	}

	state := b.sessions.GetStateByID(ctx, chatID)
	if state.Step == domain.StepIdle {
		prometheus.ActiveDialogs.Inc()
	}
	state.Criteria = domain.DiscoveryCriteria{}
	state.Step = domain.StepAskGenre

	markup := genreKeyboard(b.cache.Genres())
	msg := tgbotapi.NewMessage(chatID, "Давайте подберем фильм! Выберите жанр:")
	msg.ReplyMarkup = markup
	if _, err := b.send(ctx, msg, "text"); err != nil {
		b.log.Error("Ошибка отправки клавиатуры жанров", chatIDKey, chatID, errorKey, err)
	}
}

func (b *Bot) handleGenreCallback(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery) {
	state := b.sessions.GetStateByID(ctx, chatID)
	if err := b.AnswerCallbackQuery(cb.ID, ""); err != nil {
		b.log.Debug("Ошибка подтверждения callback", errorKey, err)
	}
	if state.Step != domain.StepAskGenre {
		b.log.Debug("Выбор жанра вне диалога", chatIDKey, chatID, "step", state.Step.String())
		return
	}

	if cb.Data == cbSkipGenre {
		b.log.Info("Жанр пропущен", chatIDKey, chatID,
			correlationIDKey, ctx.Value(correlationIDKey))
		b.editMessageText(ctx, chatID, cb.Message.MessageID, "Жанр пропущен.")
	} else {
		genreID, err := strconv.Atoi(strings.TrimPrefix(cb.Data, cbGenrePrefix))
		if err != nil {
			b.log.Error("Некорректные данные выбора жанра", "data", cb.Data,
				chatIDKey, chatID, errorKey, err)
			b.answerCallbackAlert(cb.ID, "Ошибка выбора жанра.")
			return
		}
		state.Criteria.GenreID = genreID
		genreName := "Выбранный жанр"
		if name, ok := b.cache.GenreName(genreID); ok {
			genreName = capitalize(name)
		}
		b.log.Info("Выбран жанр", "genreID", genreID, "genre", genreName,
			chatIDKey, chatID, correlationIDKey, ctx.Value(correlationIDKey))
		b.editMessageText(ctx, chatID, cb.Message.MessageID,
			fmt.Sprintf("Выбран жанр: %s", genreName))
	}

	state.Step = domain.StepAskYear
	b.sendWithMarkup(ctx, chatID,
		"Теперь введите год выпуска (например, 2023) или напишите 'пропустить':",
		tgbotapi.NewRemoveKeyboard(false))
}

// handleYearInput принимает год выпуска. Неверный формат не продвигает
// диалог, пользователь остается на том же шаге.
func (b *Bot) handleYearInput(ctx context.Context, chatID int64, text string) {
	state := b.sessions.GetStateByID(ctx, chatID)
	input := strings.ToLower(strings.TrimSpace(text))

	switch {
	case input == "пропустить" || input == "skip":
		b.log.Info("Год пропущен", chatIDKey, chatID,
			correlationIDKey, ctx.Value(correlationIDKey))
		b.SendMessage(ctx, chatID, "Год пропущен.")
	case isYear(input):
		year, _ := strconv.Atoi(input)
		state.Criteria.Year = year
		b.log.Info("Выбран год", "year", year, chatIDKey, chatID,
			correlationIDKey, ctx.Value(correlationIDKey))
		b.SendMessage(ctx, chatID, fmt.Sprintf("Выбран год: %d", year))
	default:
		b.sendWithMarkup(ctx, chatID,
			"Неверный формат года. Пожалуйста, введите 4 цифры (например, 2023) или 'пропустить'.",
			tgbotapi.NewRemoveKeyboard(false))
		return
	}

	state.Step = domain.StepAskRating
	msg := tgbotapi.NewMessage(chatID, "Выберите минимальный рейтинг:")
	msg.ReplyMarkup = ratingKeyboard()
	if _, err := b.send(ctx, msg, "text"); err != nil {
		b.log.Error("Ошибка отправки клавиатуры рейтинга", chatIDKey, chatID, errorKey, err)
	}
}

// handleRatingCallback завершает диалог: выполняет подбор с накопленными
// критериями и отдает результаты пагинации. Критерии сбрасываются
// независимо от исхода запроса.
func (b *Bot) handleRatingCallback(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery) {
	state := b.sessions.GetStateByID(ctx, chatID)
	if err := b.AnswerCallbackQuery(cb.ID, ""); err != nil {
		b.log.Debug("Ошибка подтверждения callback", errorKey, err)
	}
	if state.Step != domain.StepAskRating {
		b.log.Debug("Выбор рейтинга вне диалога", chatIDKey, chatID, "step", state.Step.String())
		return
	}

	ratingText := "Любой"
	switch cb.Data {
	case cbRatingAny:
	case "rating_6":
		state.Criteria.MinRating = 6
		ratingText = "6+"
	case "rating_7":
		state.Criteria.MinRating = 7
		ratingText = "7+"
	case "rating_8":
		state.Criteria.MinRating = 8
		ratingText = "8+"
	default:
		b.log.Error("Некорректные данные выбора рейтинга", "data", cb.Data, chatIDKey, chatID)
		b.answerCallbackAlert(cb.ID, "Ошибка выбора рейтинга.")
		return
	}

	b.log.Info("Выбран минимальный рейтинг", "rating", ratingText, chatIDKey, chatID,
		correlationIDKey, ctx.Value(correlationIDKey))
	b.editMessageText(ctx, chatID, cb.Message.MessageID,
		fmt.Sprintf("Выбран минимальный рейтинг: %s", ratingText))

	criteria := state.Criteria
	state.Criteria = domain.DiscoveryCriteria{}
	state.Step = domain.StepIdle
	prometheus.ActiveDialogs.Dec()

	b.sendWithMarkup(ctx, chatID,
		"Ищу фильмы по вашим критериям (голосов > 1000)...", mainReplyMarkup())

	movies, err := b.movies.Discover(ctx, criteria)
	switch {
	case err != nil:
		prometheus.APIFailures.WithLabelValues("discover").Inc()
		b.log.Error("Ошибка подбора фильмов", chatIDKey, chatID,
			correlationIDKey, ctx.Value(correlationIDKey), errorKey, err)
		b.sendWithMarkup(ctx, chatID, apiErrorNotice, mainReplyMarkup())
	case len(movies) == 0:
		b.sendWithMarkup(ctx, chatID, "Не найдено фильмов по вашим критериям.", mainReplyMarkup())
	default:
		state.SetResults(movies)
		b.displayMovie(ctx, chatID, nil, 0)
	}
}

// startSearch начинает диалог поиска по кнопке.
func (b *Bot) startSearch(ctx context.Context, chatID int64) {
	state := b.sessions.GetStateByID(ctx, chatID)
	if state.Step == domain.StepIdle {
		prometheus.ActiveDialogs.Inc()
	}
	state.Step = domain.StepAskSearchQuery
	b.sendWithMarkup(ctx, chatID, "Введите название фильма для поиска:",
		tgbotapi.NewRemoveKeyboard(false))
}

// handleSearchQueryInput завершает диалог поиска. Пустой ввод не доходит
// до каталога.
func (b *Bot) handleSearchQueryInput(ctx context.Context, chatID int64, text string) {
	state := b.sessions.GetStateByID(ctx, chatID)
	state.Step = domain.StepIdle
	prometheus.ActiveDialogs.Dec()

	query := strings.TrimSpace(text)
	if query == "" {
		b.sendWithMarkup(ctx, chatID, "Пожалуйста, введите название.", mainReplyMarkup())
		return
	}

	b.runSearch(ctx, chatID, query)
	b.sendWithMarkup(ctx, chatID, "Выберите следующее действие:", mainReplyMarkup())
}

func (b *Bot) runSearch(ctx context.Context, chatID int64, query string) {
	state := b.sessions.GetStateByID(ctx, chatID)

	movies, err := b.movies.Search(ctx, query)
	switch {
	case err != nil:
		prometheus.APIFailures.WithLabelValues("search").Inc()
		b.log.Error("Ошибка поиска фильмов", queryKey, query, chatIDKey, chatID,
			correlationIDKey, ctx.Value(correlationIDKey), errorKey, err)
		b.sendWithMarkup(ctx, chatID, apiErrorNotice, mainReplyMarkup())
	case len(movies) == 0:
		b.sendWithMarkup(ctx, chatID, "По вашему запросу ничего не найдено.", mainReplyMarkup())
	default:
		state.SetResults(movies)
		b.displayMovie(ctx, chatID, nil, 0)
	}
}

// cancel прерывает любой диалог и очищает состояние чата целиком.
func (b *Bot) cancel(ctx context.Context, chatID int64) {
	state := b.sessions.GetStateByID(ctx, chatID)
	if state.Step != domain.StepIdle {
		prometheus.ActiveDialogs.Dec()
	}
	b.sessions.ResetUserState(ctx, chatID)
	b.sendWithMarkup(ctx, chatID, "Операция отменена.", mainReplyMarkup())
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
