package telegram

import (
	"context"
	"io"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/smizereens/TMDB/internal/domain"
	"github.com/smizereens/TMDB/internal/repository/sessions"
)

type fakeAPI struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
	// sendErrs задает исход каждой отправки по очереди, nil - успех.
	// После исчерпания очереди отправки успешны.
	sendErrs []error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		if err != nil {
			return tgbotapi.Message{}, err
		}
		return tgbotapi.Message{MessageID: len(f.sent)}, nil
	}
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeAPI) StopReceivingUpdates() {}

// lastSent возвращает последнее отправленное сообщение нужного типа.
func lastSentOf[T tgbotapi.Chattable](f *fakeAPI) (T, bool) {
	for i := len(f.sent) - 1; i >= 0; i-- {
		if c, ok := f.sent[i].(T); ok {
			return c, true
		}
	}
	var zero T
	return zero, false
}

func sentTexts(f *fakeAPI) []string {
	texts := make([]string, 0, len(f.sent))
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func containsText(f *fakeAPI, substr string) bool {
	for _, text := range sentTexts(f) {
		if strings.Contains(text, substr) {
			return true
		}
	}
	return false
}

type fakeMovies struct {
	searchResults   []domain.Movie
	searchErr       error
	searchCalls     int
	lastQuery       string
	discoverResults []domain.Movie
	discoverErr     error
	discoverCalls   int
	lastCriteria    domain.DiscoveryCriteria
	listResults     []domain.Movie
	listErr         error
	details         map[int]domain.Movie
	detailsErr      error
}

func (f *fakeMovies) Search(ctx context.Context, query string) ([]domain.Movie, error) {
	f.searchCalls++
	f.lastQuery = query
	return f.searchResults, f.searchErr
}

func (f *fakeMovies) Discover(ctx context.Context, criteria domain.DiscoveryCriteria) ([]domain.Movie, error) {
	f.discoverCalls++
	f.lastCriteria = criteria
	return f.discoverResults, f.discoverErr
}

func (f *fakeMovies) Popular(ctx context.Context) ([]domain.Movie, error) {
	return f.listResults, f.listErr
}

func (f *fakeMovies) TopRated(ctx context.Context) ([]domain.Movie, error) {
	return f.listResults, f.listErr
}

func (f *fakeMovies) Upcoming(ctx context.Context) ([]domain.Movie, error) {
	return f.listResults, f.listErr
}

func (f *fakeMovies) MovieDetails(ctx context.Context, movieID int) (domain.Movie, error) {
	if f.detailsErr != nil {
		return domain.Movie{}, f.detailsErr
	}
	if movie, ok := f.details[movieID]; ok {
		return movie, nil
	}
	return domain.Movie{}, domain.ErrRecordNotFound
}

type fakeCache struct {
	img        domain.ImageConfig
	genres     []domain.Genre
	genresFail bool
}

func (f *fakeCache) EnsureImageConfig(ctx context.Context) bool { return f.img.Valid() }

func (f *fakeCache) EnsureGenres(ctx context.Context) bool {
	return !f.genresFail && len(f.genres) > 0
}

func (f *fakeCache) ImageConfig() domain.ImageConfig { return f.img }

func (f *fakeCache) Genres() []domain.Genre { return f.genres }

func (f *fakeCache) GenreID(name string) (int, bool) {
	for _, genre := range f.genres {
		if genre.Name == name {
			return genre.ID, true
		}
	}
	return 0, false
}

func (f *fakeCache) GenreName(id int) (string, bool) {
	for _, genre := range f.genres {
		if genre.ID == id {
			return genre.Name, true
		}
	}
	return "", false
}

func (f *fakeCache) Invalidate() {}

func newTestBot(api *fakeAPI, movies MovieProvider, cache CatalogCache) (*Bot, *sessions.SessionStates) {
	states := sessions.NewSessionStates()
	bot := &Bot{
		api:      api,
		movies:   movies,
		sessions: states,
		cache:    cache,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return bot, states
}
