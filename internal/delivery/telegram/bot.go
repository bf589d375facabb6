package telegram

import (
	"context"
	"log/slog"
	"net/http"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/smizereens/TMDB/configs"
	"github.com/smizereens/TMDB/pkg/prometheus"
)

const maxMessageLen = 4000

type Bot struct {
	api      BotAPI
	movies   MovieProvider
	sessions StateProvider
	cache    CatalogCache
	limiter  *rate.Limiter
	log      *slog.Logger
}

func NewBot(config *configs.Config, sessions StateProvider, movies MovieProvider,
	cache CatalogCache, log *slog.Logger) (*Bot, error) {

	api, err := tgbotapi.NewBotAPI(config.TG.Token)
	if err != nil {
		return nil, err
	}
	api.Client = &http.Client{
		Timeout: config.TG.ConnectionTimeout,
	}

	return &Bot{
		api:      api,
		movies:   movies,
		sessions: sessions,
		cache:    cache,
		limiter:  rate.NewLimiter(rate.Limit(config.TG.SendRate), 1),
		log:      log,
	}, nil
}

func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		b.handleUpdate(ctx, update)
	}
}

func (b *Bot) Stop(ctx context.Context) {
	b.api.StopReceivingUpdates()
}

// send выполняет отправку с учетом лимита исходящих сообщений.
func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable, kind string) (tgbotapi.Message, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return tgbotapi.Message{}, err
	}
	msg, err := b.api.Send(c)
	if err == nil {
		prometheus.MessagesSent.WithLabelValues(kind).Inc()
	}
	return msg, err
}

func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	return b.sendWithMarkup(ctx, chatID, text, nil)
}

func (b *Bot) sendWithMarkup(ctx context.Context, chatID int64, text string, markup interface{}) error {
	if len(text) > maxMessageLen {
		cut := maxMessageLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	_, err := b.send(ctx, msg, "text")
	if err != nil {
		b.log.Error("Ошибка отправки сообщения", chatIDKey, chatID, errorKey, err)
	}
	return err
}

func (b *Bot) sendHTMLWithMarkup(ctx context.Context, chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = markup
	_, err := b.send(ctx, msg, "text")
	if err != nil {
		b.log.Error("Ошибка отправки сообщения", chatIDKey, chatID, errorKey, err)
	}
	return err
}

func (b *Bot) AnswerCallbackQuery(callbackID string, text string) error {
	cfg := tgbotapi.NewCallback(callbackID, text)
	_, err := b.api.Request(cfg)
	return err
}

func (b *Bot) answerCallbackAlert(callbackID string, text string) {
	cfg := tgbotapi.NewCallbackWithAlert(callbackID, text)
	if _, err := b.api.Request(cfg); err != nil {
		b.log.Debug("Ошибка ответа на callback", errorKey, err)
	}
}

// editMessageText меняет текст сообщения с жанром/рейтингом на итог выбора.
func (b *Bot) editMessageText(ctx context.Context, chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.send(ctx, edit, "edit"); err != nil {
		b.log.Debug("Ошибка редактирования сообщения", chatIDKey, chatID, errorKey, err)
	}
}
