package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/traveller-reservation/internal/clock"
	"github.com/iliyamo/traveller-reservation/internal/config"
	"github.com/iliyamo/traveller-reservation/internal/handler"
	"github.com/iliyamo/traveller-reservation/internal/logger"
	"github.com/iliyamo/traveller-reservation/internal/middleware"
	"github.com/iliyamo/traveller-reservation/internal/queue"
	"github.com/iliyamo/traveller-reservation/internal/repository"
	"github.com/iliyamo/traveller-reservation/internal/roster"
	"github.com/iliyamo/traveller-reservation/internal/router"
	"github.com/iliyamo/traveller-reservation/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("4")
		logger.Logger.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.LogLevel)
	if cfg.LogDir != "" {
		path, err := logger.AddFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("file logger")
		}
		logger.Logger.Info().Str("path", path).Msg("logging to file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := repository.Open(ctx, cfg.Store)
	if err != nil {
		logger.Logger.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("open store")
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Logger.Warn().Err(err).Msg("close store")
		}
	}()

	clk := clock.NewSystem()
	r := roster.Load(ctx, store, roster.WithKey(cfg.Store.Key), roster.WithClock(clk))
	if issue := r.LoadIssue(); issue != nil {
		// The snapshot is unusable; start empty rather than refuse to serve.
		logger.Logger.Warn().Err(issue).Str("key", cfg.Store.Key).Msg("discarded persisted roster")
	}
	logger.Logger.Info().Int("booked", r.Len()).Int("free", r.FreeSeatCount()).Msg("roster loaded")

	var pub service.Publisher = service.NopPublisher{}
	if cfg.Queue.Enabled {
		pub = service.NewAMQPPublisher(cfg.Queue.URL)
		if cfg.Queue.Consume {
			go func() {
				if err := queue.StartEventConsumer(ctx, cfg.Queue.URL, cfg.Queue.LogDir); err != nil && !errors.Is(err, context.Canceled) {
					logger.Logger.Error().Err(err).Msg("event consumer stopped")
				}
			}()
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger())
	router.RegisterRoutes(e)

	rlCfg := config.LoadRateLimitConfig()
	var rdb *redis.Client
	if rlCfg.Enabled {
		if rdb = config.NewRedisClient(cfg.Store.Redis); rdb == nil {
			logger.Logger.Warn().Str("addr", cfg.Store.Redis.Addr).Msg("redis unavailable; rate limiting disabled")
		} else {
			defer rdb.Close()
		}
	}
	h := handler.NewTravellerHandler(r, pub, clk)
	router.RegisterTravellers(e, h, middleware.NewTokenBucket(rlCfg, rdb))

	addr := ":" + cfg.Port
	logger.Logger.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", cfg.Store.Driver).Msg("listening")

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("shutdown")
	}
	h.Wait()
}
