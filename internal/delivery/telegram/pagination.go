package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/smizereens/TMDB/internal/domain"
	"github.com/smizereens/TMDB/pkg/prometheus"
)

const paginationErrorNotice = "Ошибка пагинации или нет результатов."

// handlePagination разбирает callback навигации вида next_movie_5 /
// prev_movie_4. Некорректный токен не меняет состояние сессии.
func (b *Bot) handlePagination(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery) {
	if err := b.AnswerCallbackQuery(cb.ID, ""); err != nil {
		b.log.Debug("Ошибка подтверждения callback", errorKey, err)
	}

	parts := strings.Split(cb.Data, "_")
	if len(parts) != 3 || parts[1] != "movie" {
		b.log.Error("Некорректные данные callback пагинации", "data", cb.Data, chatIDKey, chatID)
		b.answerCallbackAlert(cb.ID, "Ошибка пагинации.")
		return
	}
	index, err := strconv.Atoi(parts[2])
	if err != nil {
		b.log.Error("Некорректный индекс пагинации", "data", cb.Data, chatIDKey, chatID, errorKey, err)
		b.answerCallbackAlert(cb.ID, "Ошибка пагинации.")
		return
	}

	b.displayMovie(ctx, chatID, cb, index)
}

// displayMovie показывает результат под номером index. Ненулевой cb
// означает ответ на навигацию: прежнее сообщение редактируется, либо
// удаляется и отправляется заново при смене класса содержимого.
func (b *Bot) displayMovie(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery, index int) {
	state := b.sessions.GetStateByID(ctx, chatID)
	results := state.Results
	if len(results) == 0 || index < 0 || index >= len(results) {
		b.log.Warn("Неверный индекс или нет результатов для пагинации",
			"index", index, "results", len(results), chatIDKey, chatID,
			correlationIDKey, ctx.Value(correlationIDKey))
		b.SendMessage(ctx, chatID, paginationErrorNotice)
		return
	}

	movie := results[index]
	// Списочные результаты не содержат продолжительности и имен жанров,
	// обогащаем записью деталей. При сбое показываем то, что есть.
	if details, err := b.movies.MovieDetails(ctx, movie.ID); err == nil {
		movie = details
	} else {
		b.log.Warn("Не удалось получить детали фильма", "movieID", movie.ID, errorKey, err)
	}

	b.cache.EnsureImageConfig(ctx)
	text, poster := formatMovie(movie, b.cache.ImageConfig(), b.cache)
	markup := paginationKeyboard(index, len(results))

	if cb != nil {
		b.editDisplayedMovie(ctx, chatID, cb, state, index, text, poster, markup)
		return
	}
	b.sendInitialMovie(ctx, chatID, state, index, movie, text, poster, markup)
}

func (b *Bot) editDisplayedMovie(ctx context.Context, chatID int64, cb *tgbotapi.CallbackQuery,
	state *domain.SessionState, index int, text, poster string, markup *tgbotapi.InlineKeyboardMarkup) {

	hasCurrentPhoto := len(cb.Message.Photo) > 0
	hasNewPhoto := poster != ""

	var err error
	switch {
	case hasCurrentPhoto && hasNewPhoto:
		media := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(poster))
		media.Caption = text
		media.ParseMode = tgbotapi.ModeHTML
		edit := tgbotapi.EditMessageMediaConfig{
			BaseEdit: tgbotapi.BaseEdit{
				ChatID:      chatID,
				MessageID:   cb.Message.MessageID,
				ReplyMarkup: markup,
			},
			Media: media,
		}
		_, err = b.send(ctx, edit, "edit")

	case !hasCurrentPhoto && !hasNewPhoto:
		edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		edit.DisableWebPagePreview = true
		edit.ReplyMarkup = markup
		_, err = b.send(ctx, edit, "edit")

	default:
		// Класс содержимого изменился, редактирование невозможно.
		err = b.deleteAndResend(ctx, chatID, cb.Message.MessageID, text, poster, markup)
	}

	if err != nil {
		if isNotModified(err) {
			// Сообщение уже показывает нужный результат.
			b.log.Info("Сообщение не изменено", chatIDKey, chatID)
			state.CurrentIndex = index
			return
		}
		b.log.Error("Ошибка обновления сообщения пагинации",
			"index", index, chatIDKey, chatID,
			correlationIDKey, ctx.Value(correlationIDKey), errorKey, err)
		b.answerCallbackAlert(cb.ID, "Ошибка при обновлении сообщения.")
		return
	}

	// Индекс фиксируется только после подтвержденной доставки, чтобы он
	// не разошелся с тем, что пользователь видит на экране.
	state.CurrentIndex = index
}

func (b *Bot) deleteAndResend(ctx context.Context, chatID int64, messageID int,
	text, poster string, markup *tgbotapi.InlineKeyboardMarkup) error {

	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.Warn("Ошибка удаления сообщения", chatIDKey, chatID, errorKey, err)
	} else {
		prometheus.MessagesSent.WithLabelValues("delete").Inc()
	}

	if poster != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(poster))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		if markup != nil {
			photo.ReplyMarkup = *markup
		}
		_, err := b.send(ctx, photo, "photo")
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	_, err := b.send(ctx, msg, "text")
	return err
}

func (b *Bot) sendInitialMovie(ctx context.Context, chatID int64, state *domain.SessionState,
	index int, movie domain.Movie, text, poster string, markup *tgbotapi.InlineKeyboardMarkup) {

	// При единственном результате навигация не нужна, возвращаем
	// основную клавиатуру.
	var replyMarkup interface{}
	if markup != nil {
		replyMarkup = *markup
	} else {
		replyMarkup = mainReplyMarkup()
	}

	var err error
	if poster != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(poster))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		photo.ReplyMarkup = replyMarkup
		_, err = b.send(ctx, photo, "photo")
	} else {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		msg.ReplyMarkup = replyMarkup
		_, err = b.send(ctx, msg, "text")
	}
	if err == nil {
		state.CurrentIndex = index
		return
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		b.log.Error("Превышен лимит запросов при отправке",
			"movieID", movie.ID, "retryAfter", apiErr.RetryAfter, chatIDKey, chatID)
		b.sendWithMarkup(ctx, chatID,
			fmt.Sprintf("Слишком много запросов. Попробуйте через %d секунд.", apiErr.RetryAfter),
			mainReplyMarkup())
		return
	}

	// Резервная отправка: обычный текст без разметки и изображения.
	b.log.Error("Ошибка отправки сообщения с фильмом, отправляю обычный текст",
		"movieID", movie.ID, chatIDKey, chatID, errorKey, err)
	plain := formatMoviePlain(movie, b.cache)
	msg := tgbotapi.NewMessage(chatID, plain)
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = replyMarkup
	if _, err := b.send(ctx, msg, "text"); err != nil {
		b.log.Error("Не удалось отправить даже обычный текст",
			"movieID", movie.ID, chatIDKey, chatID, errorKey, err)
		return
	}
	state.CurrentIndex = index
}

func isNotModified(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "message is not modified")
}
