package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/smizereens/TMDB/internal/domain"
)

func threeMovies() []domain.Movie {
	return []domain.Movie{
		{ID: 1, Title: "Первый", PosterPath: "/p1.jpg"},
		{ID: 2, Title: "Второй", PosterPath: "/p2.jpg"},
		{ID: 3, Title: "Третий"},
	}
}

func textCallback(chatID int64, messageID int, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		Data:    data,
		Message: &tgbotapi.Message{MessageID: messageID, Chat: &tgbotapi.Chat{ID: chatID}},
	}
}

func photoCallback(chatID int64, messageID int, data string) *tgbotapi.CallbackQuery {
	cb := textCallback(chatID, messageID, data)
	cb.Message.Photo = []tgbotapi.PhotoSize{{FileID: "photo"}}
	return cb
}

// Индекс вне границ не меняет состояние и выдает уведомление об ошибке
// пагинации.
func TestDisplayMovie_OutOfRange(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	bot, states := newTestBot(api, &fakeMovies{}, &fakeCache{})

	state := states.GetStateByID(ctx, 1)
	state.SetResults(threeMovies())
	state.CurrentIndex = 1

	for _, index := range []int{-1, 3, 100} {
		bot.displayMovie(ctx, 1, nil, index)
		if state.CurrentIndex != 1 {
			t.Errorf("индекс изменился на невалидном значении %d: %d", index, state.CurrentIndex)
		}
	}
	if !containsText(api, paginationErrorNotice) {
		t.Errorf("нет уведомления об ошибке пагинации: %v", sentTexts(api))
	}
}

func TestDisplayMovie_EmptyResults(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	bot, _ := newTestBot(api, &fakeMovies{}, &fakeCache{})

	bot.displayMovie(ctx, 1, nil, 0)

	if !containsText(api, paginationErrorNotice) {
		t.Errorf("нет уведомления об ошибке пагинации: %v", sentTexts(api))
	}
}

// Некорректный токен навигации выдает ошибку и не трогает индекс.
func TestHandlePagination_MalformedToken(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	bot, states := newTestBot(api, &fakeMovies{}, &fakeCache{})

	state := states.GetStateByID(ctx, 1)
	state.SetResults(threeMovies())

	for _, data := range []string{"next_movie_abc", "next_movie", "next_film_1"} {
		before := len(api.sent)
		bot.handlePagination(ctx, 1, textCallback(1, 10, data))
		if state.CurrentIndex != 0 {
			t.Errorf("индекс изменился на токене %q: %d", data, state.CurrentIndex)
		}
		if len(api.sent) != before {
			t.Errorf("на токене %q отправлено сообщение", data)
		}
	}
}

// Текст -> текст: сообщение редактируется на месте, без удаления.
func TestNavigation_TextToText_Edits(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	bot, states := newTestBot(api, &fakeMovies{}, &fakeCache{})

	state := states.GetStateByID(ctx, 1)
	state.SetResults([]domain.Movie{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}})

	bot.handlePagination(ctx, 1, textCallback(1, 10, "next_movie_1"))

	edit, ok := lastSentOf[tgbotapi.EditMessageTextConfig](api)
	if !ok {
		t.Fatalf("ожидалось редактирование текста, отправлено: %#v", api.sent)
	}
	if edit.MessageID != 10 {
		t.Errorf("редактируется чужое сообщение: %d", edit.MessageID)
	}
	if state.CurrentIndex != 1 {
		t.Errorf("индекс после навигации = %d, ожидался 1", state.CurrentIndex)
	}
	for _, c := range api.requests {
		if _, isDelete := c.(tgbotapi.DeleteMessageConfig); isDelete {
			t.Error("сообщение удалено при совпадении классов содержимого")
		}
	}
}

// Фото -> фото: редактирование медиа, идентичность сообщения сохраняется.
func TestNavigation_PhotoToPhoto_EditsMedia(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	cache := &fakeCache{img: testImageConfig()}
	bot, states := newTestBot(api, &fakeMovies{}, cache)

	state := states.GetStateByID(ctx, 1)
	state.SetResults(threeMovies())

	bot.handlePagination(ctx, 1, photoCallback(1, 10, "next_movie_1"))

	if _, ok := lastSentOf[tgbotapi.EditMessageMediaConfig](api); !ok {
		t.Fatalf("ожидалось редактирование медиа, отправлено: %#v", api.sent)
	}
	if state.CurrentIndex != 1 {
		t.Errorf("индекс после навигации = %d, ожидался 1", state.CurrentIndex)
	}
}

// Фото -> текст: старое сообщение удаляется, новое отправляется заново.
func TestNavigation_PhotoToText_DeletesAndResends(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	cache := &fakeCache{img: testImageConfig()}
	bot, states := newTestBot(api, &fakeMovies{}, cache)

	state := states.GetStateByID(ctx, 1)
	state.SetResults(threeMovies())
	state.CurrentIndex = 1

	// Третий фильм без постера, класс содержимого меняется.
	bot.handlePagination(ctx, 1, photoCallback(1, 10, "next_movie_2"))

	var deleted bool
	for _, c := range api.requests {
		if del, ok := c.(tgbotapi.DeleteMessageConfig); ok {
			deleted = true
			if del.MessageID != 10 {
				t.Errorf("удалено чужое сообщение: %d", del.MessageID)
			}
		}
	}
	if !deleted {
		t.Fatal("старое сообщение не удалено при смене класса содержимого")
	}
	if _, ok := lastSentOf[tgbotapi.MessageConfig](api); !ok {
		t.Fatalf("новое текстовое сообщение не отправлено: %#v", api.sent)
	}
	if state.CurrentIndex != 2 {
		t.Errorf("индекс после навигации = %d, ожидался 2", state.CurrentIndex)
	}
}

// Текст -> фото: удаление и отправка фото.
func TestNavigation_TextToPhoto_DeletesAndResends(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	cache := &fakeCache{img: testImageConfig()}
	bot, states := newTestBot(api, &fakeMovies{}, cache)

	state := states.GetStateByID(ctx, 1)
	state.SetResults(threeMovies())
	state.CurrentIndex = 2

	bot.handlePagination(ctx, 1, textCallback(1, 10, "prev_movie_1"))

	if _, ok := lastSentOf[tgbotapi.PhotoConfig](api); !ok {
		t.Fatalf("фото не отправлено после удаления: %#v", api.sent)
	}
	if state.CurrentIndex != 1 {
		t.Errorf("индекс после навигации = %d, ожидался 1", state.CurrentIndex)
	}
}

// Индекс фиксируется только после подтвержденной доставки: при сбое
// редактирования пользователь все еще видит прежний результат.
func TestNavigation_EditFailure_KeepsIndex(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{sendErr: errors.New("bad request")}
	bot, states := newTestBot(api, &fakeMovies{}, &fakeCache{})

	state := states.GetStateByID(ctx, 1)
	state.SetResults([]domain.Movie{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}})

	bot.handlePagination(ctx, 1, textCallback(1, 10, "next_movie_1"))

	if state.CurrentIndex != 0 {
		t.Errorf("индекс изменился при сбое доставки: %d", state.CurrentIndex)
	}
}

// "message is not modified" - безобидный исход, состояние согласовано.
func TestNavigation_NotModified_IsBenign(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{sendErr: errors.New("Bad Request: message is not modified")}
	bot, states := newTestBot(api, &fakeMovies{}, &fakeCache{})

	state := states.GetStateByID(ctx, 1)
	state.SetResults([]domain.Movie{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}})
	state.CurrentIndex = 1

	bot.handlePagination(ctx, 1, textCallback(1, 10, "next_movie_1"))

	if state.CurrentIndex != 1 {
		t.Errorf("индекс = %d, ожидался 1", state.CurrentIndex)
	}
	// Никаких алертов об ошибке пользователю.
	for _, c := range api.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok && cb.ShowAlert {
			t.Error("на безобидный исход отправлен алерт")
		}
	}
}

// Первый показ - всегда новое сообщение; при единственном результате
// без кнопок навигации, с основной клавиатурой.
func TestInitialDisplay_SingleResult(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	bot, states := newTestBot(api, &fakeMovies{}, &fakeCache{})

	state := states.GetStateByID(ctx, 1)
	state.SetResults([]domain.Movie{{ID: 1, Title: "Inception"}})

	bot.displayMovie(ctx, 1, nil, 0)

	msg, ok := lastSentOf[tgbotapi.MessageConfig](api)
	if !ok {
		t.Fatalf("сообщение не отправлено: %#v", api.sent)
	}
	if _, isReply := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup); !isReply {
		t.Errorf("для единственного результата ожидалась основная клавиатура: %#v", msg.ReplyMarkup)
	}
}

func TestInitialDisplay_MultipleResults_NavKeyboard(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	bot, states := newTestBot(api, &fakeMovies{}, &fakeCache{})

	state := states.GetStateByID(ctx, 1)
	state.SetResults([]domain.Movie{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}})

	bot.displayMovie(ctx, 1, nil, 0)

	msg, ok := lastSentOf[tgbotapi.MessageConfig](api)
	if !ok {
		t.Fatalf("сообщение не отправлено: %#v", api.sent)
	}
	markup, isInline := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !isInline {
		t.Fatalf("ожидалась inline клавиатура навигации: %#v", msg.ReplyMarkup)
	}
	if *markup.InlineKeyboard[0][0].CallbackData != "next_movie_1" {
		t.Errorf("callback навигации = %q", *markup.InlineKeyboard[0][0].CallbackData)
	}
	if state.CurrentIndex != 0 {
		t.Errorf("индекс после первого показа = %d", state.CurrentIndex)
	}
}

// Лимит исходящих запросов Telegram: пользователю сообщается время
// ожидания, индекс не двигается.
func TestInitialSend_RateLimited(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{sendErrs: []error{
		&tgbotapi.Error{
			Message:            "Too Many Requests: retry after 30",
			ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 30},
		},
	}}
	bot, states := newTestBot(api, &fakeMovies{}, &fakeCache{})

	state := states.GetStateByID(ctx, 1)
	state.SetResults([]domain.Movie{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}})

	bot.displayMovie(ctx, 1, nil, 1)

	if !containsText(api, "Слишком много запросов. Попробуйте через 30 секунд.") {
		t.Errorf("нет уведомления о лимите запросов: %v", sentTexts(api))
	}
	if state.CurrentIndex != 0 {
		t.Errorf("индекс зафиксирован без доставки: %d", state.CurrentIndex)
	}
}

// Сбой отправки с разметкой: резервная отправка обычным текстом, без
// HTML и фото, индекс фиксируется после ее доставки.
func TestInitialSend_FallsBackToPlainText(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{sendErrs: []error{errors.New("Bad Request: can't parse entities")}}
	bot, states := newTestBot(api, &fakeMovies{}, &fakeCache{})

	state := states.GetStateByID(ctx, 1)
	state.SetResults([]domain.Movie{{ID: 1, Title: "Первый"}, {ID: 2, Title: "Второй"}})

	bot.displayMovie(ctx, 1, nil, 1)

	msg, ok := lastSentOf[tgbotapi.MessageConfig](api)
	if !ok {
		t.Fatalf("резервное сообщение не отправлено: %#v", api.sent)
	}
	if msg.ParseMode != "" {
		t.Errorf("резервная отправка с разметкой: %q", msg.ParseMode)
	}
	if !strings.Contains(msg.Text, "Второй") {
		t.Errorf("в резервном тексте нет фильма: %q", msg.Text)
	}
	if state.CurrentIndex != 1 {
		t.Errorf("индекс после резервной доставки = %d, ожидался 1", state.CurrentIndex)
	}
}

// Сбой и основной, и резервной отправки: индекс остается на последнем
// доставленном результате.
func TestInitialSend_FallbackFailure_KeepsIndex(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{sendErrs: []error{
		errors.New("network down"),
		errors.New("network down"),
	}}
	bot, states := newTestBot(api, &fakeMovies{}, &fakeCache{})

	state := states.GetStateByID(ctx, 1)
	state.SetResults([]domain.Movie{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}})

	bot.displayMovie(ctx, 1, nil, 1)

	if state.CurrentIndex != 0 {
		t.Errorf("индекс зафиксирован без доставки: %d", state.CurrentIndex)
	}
	if len(api.sent) != 2 {
		t.Errorf("отправок = %d, ожидались основная и резервная", len(api.sent))
	}
}

// Детали фильма обогащают списочный результат продолжительностью.
func TestDisplayMovie_EnrichesWithDetails(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	movies := &fakeMovies{details: map[int]domain.Movie{
		1: {ID: 1, Title: "A", Runtime: 120},
	}}
	bot, states := newTestBot(api, movies, &fakeCache{})

	state := states.GetStateByID(ctx, 1)
	state.SetResults([]domain.Movie{{ID: 1, Title: "A"}})

	bot.displayMovie(ctx, 1, nil, 0)

	if !containsText(api, "Продолжительность: 120 мин.") {
		t.Errorf("показ не обогащен деталями: %v", sentTexts(api))
	}
}

// Сбой деталей не мешает показу списочной записи.
func TestDisplayMovie_DetailsFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	movies := &fakeMovies{detailsErr: errors.New("api down")}
	bot, states := newTestBot(api, movies, &fakeCache{})

	state := states.GetStateByID(ctx, 1)
	state.SetResults([]domain.Movie{{ID: 1, Title: "Inception"}})

	bot.displayMovie(ctx, 1, nil, 0)

	if !containsText(api, "Inception") {
		t.Errorf("фильм не показан при сбое деталей: %v", sentTexts(api))
	}
}
