package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xyd945/travel-ai-agent/internal/adapters/gemini"
	"github.com/xyd945/travel-ai-agent/internal/adapters/gplaces"
	server "github.com/xyd945/travel-ai-agent/internal/adapters/http_server"
	"github.com/xyd945/travel-ai-agent/internal/adapters/memcache"
	"github.com/xyd945/travel-ai-agent/internal/adapters/observability"
	redisad "github.com/xyd945/travel-ai-agent/internal/adapters/redis"
	"github.com/xyd945/travel-ai-agent/internal/app"
	"github.com/xyd945/travel-ai-agent/internal/domain"
	"github.com/xyd945/travel-ai-agent/internal/session"
	"github.com/xyd945/travel-ai-agent/internal/shared"
	mysqlrepo "github.com/xyd945/travel-ai-agent/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql open failed")
	}
	defer db.Close()
	log.Info().Msg("database connection ok")

	// cache: redis when configured, in-process otherwise
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, lookups will bypass it")
		}
		cache = rc
	} else {
		log.Info().Msg("REDIS_ADDR empty, using in-memory cache")
		cache = memcache.New(cfg.CacheTTL)
	}

	// external APIs
	llm, err := gemini.New(ctx, gemini.Config{
		APIKey:  cfg.GeminiKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("gemini client init failed")
	}
	places := gplaces.New(cfg.PlacesBaseURL, cfg.PlacesKey, cfg.PlacesRPS)

	// services
	sessions := session.NewStore(cfg.SessionTTL)
	assistant := app.NewAssistantService(llm)
	resolver := app.NewPlaceResolver(places, cache, cfg.CacheTTL, cfg.ResolveConcurrency)
	hotels := app.NewHotelService(mysqlrepo.New(db), cache, cfg.CacheTTL)

	// http
	srv := server.New(server.Options{
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Assistant: assistant,
		Places:    resolver,
		Hotels:    hotels,
		Chat:      app.NewChatService(assistant, resolver, sessions),
		Sessions:  sessions,
		MapsKey:   cfg.MapsBrowserKey,
	})

	go reportSessions(ctx, sessions)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func reportSessions(ctx context.Context, s *session.Store) {
	t := time.NewTicker(15 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			observability.SetActiveSessions(s.Len())
		}
	}
}
