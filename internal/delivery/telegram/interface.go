package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/smizereens/TMDB/internal/domain"
)

type StateProvider interface {
	GetStateByID(ctx context.Context, chatID int64) *domain.SessionState
	ResetUserState(ctx context.Context, chatID int64)
	GetCorrelationID(ctx context.Context, chatID int64) string
}

type MovieProvider interface {
	Search(ctx context.Context, query string) ([]domain.Movie, error)
	Discover(ctx context.Context, criteria domain.DiscoveryCriteria) ([]domain.Movie, error)
	Popular(ctx context.Context) ([]domain.Movie, error)
	TopRated(ctx context.Context) ([]domain.Movie, error)
	Upcoming(ctx context.Context) ([]domain.Movie, error)
	MovieDetails(ctx context.Context, movieID int) (domain.Movie, error)
}

type CatalogCache interface {
	EnsureImageConfig(ctx context.Context) bool
	EnsureGenres(ctx context.Context) bool
	ImageConfig() domain.ImageConfig
	Genres() []domain.Genre
	GenreID(name string) (int, bool)
	GenreName(id int) (string, bool)
	Invalidate()
}

// BotAPI - поверхность обмена сообщениями Telegram, за которой стоит
// *tgbotapi.BotAPI.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}
