package catalogcache

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/smizereens/TMDB/internal/domain"
)

type ConfigProvider interface {
	FetchImageConfig(ctx context.Context) (domain.ImageConfig, error)
	FetchGenres(ctx context.Context) ([]domain.Genre, error)
}

// CatalogCache хранит медленно меняющиеся справочники каталога:
// конфигурацию изображений и индекс жанров. Запрос выполняется вне
// блокировки, поэтому конкурирующие вызовы могут выполнить его дважды,
// результат перезаписывается целиком.
type CatalogCache struct {
	catalog ConfigProvider
	log     *slog.Logger

	mu         sync.RWMutex
	img        domain.ImageConfig
	genres     []domain.Genre
	genreIDs   map[string]int
	genreNames map[int]string
}

func NewCatalogCache(catalog ConfigProvider, log *slog.Logger) *CatalogCache {
	return &CatalogCache{
		catalog: catalog,
		log:     log,
	}
}

// EnsureImageConfig гарантирует наличие валидной конфигурации изображений.
// При ошибке запроса кэш сбрасывается, следующий вызов запросит заново.
func (c *CatalogCache) EnsureImageConfig(ctx context.Context) bool {
	c.mu.RLock()
	valid := c.img.Valid()
	c.mu.RUnlock()
	if valid {
		return true
	}

	img, err := c.catalog.FetchImageConfig(ctx)
	if err != nil || !img.Valid() {
		c.log.Error("Не удалось получить конфигурацию изображений", "error", err)
		c.mu.Lock()
		c.img = domain.ImageConfig{}
		c.mu.Unlock()
		return false
	}

	c.mu.Lock()
	c.img = img
	c.mu.Unlock()
	return true
}

// EnsureGenres гарантирует наличие индекса жанров. Прямой и обратный
// индексы строятся из одного ответа и публикуются атомарно.
func (c *CatalogCache) EnsureGenres(ctx context.Context) bool {
	c.mu.RLock()
	populated := len(c.genreIDs) > 0
	c.mu.RUnlock()
	if populated {
		return true
	}

	genres, err := c.catalog.FetchGenres(ctx)
	if err != nil || len(genres) == 0 {
		c.log.Error("Не удалось получить список жанров", "error", err)
		c.mu.Lock()
		c.genres = nil
		c.genreIDs = nil
		c.genreNames = nil
		c.mu.Unlock()
		return false
	}

	genreIDs := make(map[string]int, len(genres))
	genreNames := make(map[int]string, len(genres))
	for _, genre := range genres {
		genreIDs[strings.ToLower(genre.Name)] = genre.ID
		genreNames[genre.ID] = genre.Name
	}
	sorted := make([]domain.Genre, len(genres))
	copy(sorted, genres)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	c.mu.Lock()
	c.genres = sorted
	c.genreIDs = genreIDs
	c.genreNames = genreNames
	c.mu.Unlock()
	return true
}

func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.img = domain.ImageConfig{}
	c.genres = nil
	c.genreIDs = nil
	c.genreNames = nil
}

func (c *CatalogCache) ImageConfig() domain.ImageConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.img
}

// Genres возвращает жанры, отсортированные по имени.
func (c *CatalogCache) Genres() []domain.Genre {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.genres
}

func (c *CatalogCache) GenreID(name string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.genreIDs[strings.ToLower(name)]
	return id, ok
}

func (c *CatalogCache) GenreName(id int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.genreNames[id]
	return name, ok
}
