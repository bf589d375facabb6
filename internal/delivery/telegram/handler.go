package telegram

import (
	"context"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/smizereens/TMDB/internal/domain"
	"github.com/smizereens/TMDB/pkg/prometheus"
)

const (
	correlationIDKey = "correlation_id"
	chatIDKey        = "chat_id"
	commandKey       = "command"
	errorKey         = "error"
	successKey       = "success"
	queryKey         = "query"
)

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)

	case update.Message == nil:
		return

	case update.Message.IsCommand():
		b.handleCommand(ctx, update.Message.Chat.ID, update.Message.Command(),
			update.Message.CommandArguments())

	default:
		b.handleText(ctx, update.Message.Chat.ID, strings.TrimSpace(update.Message.Text))
	}
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command string, query string) {
	startTime := time.Now()
	defer func() {
		prometheus.CommandDuration.WithLabelValues(command).Observe(time.Since(startTime).Seconds())
	}()

	status := successKey
	defer func() {
		prometheus.CommandCounter.WithLabelValues(command, status).Inc()
	}()

	ctx = context.WithValue(ctx, correlationIDKey, b.sessions.GetCorrelationID(ctx, chatID))

	b.log.Info(
		"Команда получена", chatIDKey, chatID, commandKey, command, queryKey, query,
		correlationIDKey, ctx.Value(correlationIDKey))

	switch command {
	case "start":
		b.handleStart(ctx, chatID)
	case "help":
		b.handleHelp(ctx, chatID)
	case "search":
		b.handleSearchCommand(ctx, chatID, query)
	case "discover":
		b.startDiscovery(ctx, chatID)
	case "popular":
		b.handlePopular(ctx, chatID)
	case "toprated":
		b.handleTopRated(ctx, chatID)
	case "upcoming":
		b.handleUpcoming(ctx, chatID)
	case "cancel":
		b.cancel(ctx, chatID)
	default:
		status = errorKey
		b.handleUnknown(ctx, chatID)
	}
}

// handleText диспетчеризует свободный текст: сначала по шагу активного
// диалога, затем по кнопкам основной клавиатуры.
func (b *Bot) handleText(ctx context.Context, chatID int64, text string) {
	state := b.sessions.GetStateByID(ctx, chatID)
	startTime := time.Now()
	defer func() {
		prometheus.CommandDuration.WithLabelValues(state.Step.String()).Observe(time.Since(startTime).
			Seconds())
	}()
	ctx = context.WithValue(ctx, correlationIDKey, b.sessions.GetCorrelationID(ctx, chatID))

	switch state.Step {
	case domain.StepAskYear:
		b.handleYearInput(ctx, chatID, text)
		return
	case domain.StepAskSearchQuery:
		b.handleSearchQueryInput(ctx, chatID, text)
		return
	}

	switch text {
	case btnSearch:
		b.startSearch(ctx, chatID)
	case btnDiscover:
		b.startDiscovery(ctx, chatID)
	case btnPopular:
		b.handlePopular(ctx, chatID)
	case btnTopRated:
		b.handleTopRated(ctx, chatID)
	case btnUpcoming:
		b.handleUpcoming(ctx, chatID)
	case btnHelp:
		b.handleHelp(ctx, chatID)
	default:
		b.handleUnknown(ctx, chatID)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	ctx = context.WithValue(ctx, correlationIDKey, b.sessions.GetCorrelationID(ctx, chatID))

	b.log.Info("Получен callback", "data", cb.Data, chatIDKey, chatID,
		correlationIDKey, ctx.Value(correlationIDKey))

	switch {
	case strings.HasPrefix(cb.Data, cbNextPrefix) || strings.HasPrefix(cb.Data, cbPrevPrefix):
		b.handlePagination(ctx, chatID, cb)
	case cb.Data == cbSkipGenre || strings.HasPrefix(cb.Data, cbGenrePrefix):
		b.handleGenreCallback(ctx, chatID, cb)
	case strings.HasPrefix(cb.Data, cbRatingPrefix):
		b.handleRatingCallback(ctx, chatID, cb)
	default:
		b.log.Warn("Неизвестные данные callback", "data", cb.Data, chatIDKey, chatID)
		if err := b.AnswerCallbackQuery(cb.ID, ""); err != nil {
			b.log.Debug("Ошибка подтверждения callback", errorKey, err)
		}
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	b.sendHTMLWithMarkup(ctx, chatID,
		"Привет!\n\nЯ помогу тебе найти фильмы. Используй кнопки ниже или команду /help.",
		mainReplyMarkup())

	// Прогреваем справочники, чтобы первый подбор не ждал два запроса.
	b.cache.EnsureImageConfig(ctx)
	b.cache.EnsureGenres(ctx)
}

func (b *Bot) handleHelp(ctx context.Context, chatID int64) {
	helpText := `<b>Доступные команды и кнопки:</b>
/start - Показать приветствие и кнопки
/help или кнопка '❓ Помощь' - Показать это сообщение
Кнопка '🔍 Поиск' или /search <code>&lt;название&gt;</code> - Поиск по названию
Кнопка '💡 Подобрать' или /discover - Пошаговый подбор по критериям
Кнопка '⭐ Популярные' или /popular - Показать популярные фильмы
Кнопка '🏆 Топ Рейтинг' или /toprated - Показать фильмы с высоким рейтингом
Кнопка '📅 Скоро' или /upcoming - Показать скоро выходящие фильмы
/cancel - Отменить текущую операцию (поиск или подбор)`
	b.sendHTMLWithMarkup(ctx, chatID, helpText, mainReplyMarkup())
}

func (b *Bot) handleUnknown(ctx context.Context, chatID int64) {
	b.sendWithMarkup(ctx, chatID,
		"Неизвестная команда.\nИспользуйте кнопки ниже или /help.", mainReplyMarkup())
}

func (b *Bot) handleSearchCommand(ctx context.Context, chatID int64, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		example := html.EscapeString("/search Начало")
		b.sendHTMLWithMarkup(ctx, chatID,
			"Пожалуйста, укажите название фильма после команды /search.\nПример: <code>"+example+"</code>",
			mainReplyMarkup())
		return
	}
	b.runSearch(ctx, chatID, query)
}

func (b *Bot) handlePopular(ctx context.Context, chatID int64) {
	b.sendHTMLWithMarkup(ctx, chatID,
		"<b>Популярные фильмы (голосов > 1000):</b>", mainReplyMarkup())

	state := b.sessions.GetStateByID(ctx, chatID)
	movies, err := b.movies.Popular(ctx)
	switch {
	case err != nil:
		prometheus.APIFailures.WithLabelValues("popular").Inc()
		b.log.Error("Ошибка запроса популярных фильмов", chatIDKey, chatID,
			correlationIDKey, ctx.Value(correlationIDKey), errorKey, err)
		b.sendWithMarkup(ctx, chatID, apiErrorNotice, mainReplyMarkup())
	case len(movies) == 0:
		b.sendWithMarkup(ctx, chatID,
			"Не найдено популярных фильмов с достаточным количеством голосов (>1000).",
			mainReplyMarkup())
	default:
		state.SetResults(movies)
		b.displayMovie(ctx, chatID, nil, 0)
	}
}

func (b *Bot) handleTopRated(ctx context.Context, chatID int64) {
	b.sendHTMLWithMarkup(ctx, chatID,
		"<b>Фильмы с высоким рейтингом (голосов > 1000):</b>", mainReplyMarkup())

	state := b.sessions.GetStateByID(ctx, chatID)
	movies, err := b.movies.TopRated(ctx)
	switch {
	case err != nil:
		prometheus.APIFailures.WithLabelValues("toprated").Inc()
		b.log.Error("Ошибка запроса топа рейтинга", chatIDKey, chatID,
			correlationIDKey, ctx.Value(correlationIDKey), errorKey, err)
		b.sendWithMarkup(ctx, chatID, apiErrorNotice, mainReplyMarkup())
	case len(movies) == 0:
		b.sendWithMarkup(ctx, chatID,
			"Не найдено фильмов с высоким рейтингом и достаточным количеством голосов.",
			mainReplyMarkup())
	default:
		state.SetResults(movies)
		b.displayMovie(ctx, chatID, nil, 0)
	}
}

func (b *Bot) handleUpcoming(ctx context.Context, chatID int64) {
	b.sendHTMLWithMarkup(ctx, chatID, "<b>Скоро в кино:</b>", mainReplyMarkup())

	state := b.sessions.GetStateByID(ctx, chatID)
	movies, err := b.movies.Upcoming(ctx)
	switch {
	case err != nil:
		prometheus.APIFailures.WithLabelValues("upcoming").Inc()
		b.log.Error("Ошибка запроса скоро выходящих фильмов", chatIDKey, chatID,
			correlationIDKey, ctx.Value(correlationIDKey), errorKey, err)
		b.sendWithMarkup(ctx, chatID, apiErrorNotice, mainReplyMarkup())
	case len(movies) == 0:
		b.sendWithMarkup(ctx, chatID, "Не найдено скоро выходящих фильмов.", mainReplyMarkup())
	default:
		state.SetResults(movies)
		b.displayMovie(ctx, chatID, nil, 0)
	}
}
