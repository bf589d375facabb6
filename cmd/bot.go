package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smizereens/TMDB/configs"
	"github.com/smizereens/TMDB/configs/loader/dotenvloader"
	"github.com/smizereens/TMDB/internal/delivery/telegram"
	"github.com/smizereens/TMDB/internal/repository/cachedcatalog"
	"github.com/smizereens/TMDB/internal/repository/catalogcache"
	"github.com/smizereens/TMDB/internal/repository/sessions"
	"github.com/smizereens/TMDB/internal/repository/tmdb"
	"github.com/smizereens/TMDB/internal/usecase"
	"github.com/smizereens/TMDB/pkg/logger"
	"github.com/smizereens/TMDB/pkg/prometheus"
)

func main() {

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	loader := dotenvloader.DotEnvLoader{}
	cfg := configs.MustLoad(loader)
	log := logger.NewLogger(cfg)

	repo := tmdb.NewRepo(cfg)
	catalog, err := cachedcatalog.NewCachedCatalog(repo, log)
	if err != nil {
		log.Error("failed to create catalog cache:", "error", err)
		os.Exit(1)
	}
	movies := usecase.NewMovieFinder(catalog)
	cache := catalogcache.NewCatalogCache(repo, log)
	states := sessions.NewSessionStates()

	prometheus.Init()
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(cfg.Metrics.Addr, nil)
	log.Info("Starting prometheus", "addr", cfg.Metrics.Addr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bot, err := telegram.NewBot(cfg, states, movies, cache, log)
	if err != nil {
		log.Error("failed to create bot:", "error", err)
		os.Exit(1)
	}
	log.Info("Starting bot")
	go bot.Run(ctx)
	<-done
	log.Info("Shutting down bot")

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	bot.Stop(ctx)
	log.Info("Service stopped")
}
