package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/event-booking-calendar/internal/config"
	"github.com/iliyamo/event-booking-calendar/internal/database"
	"github.com/iliyamo/event-booking-calendar/internal/handler"
	"github.com/iliyamo/event-booking-calendar/internal/middleware"
	"github.com/iliyamo/event-booking-calendar/internal/queue"
	"github.com/iliyamo/event-booking-calendar/internal/repository"
	"github.com/iliyamo/event-booking-calendar/internal/router"
	"github.com/iliyamo/event-booking-calendar/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("reading .env: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	qcfg := config.LoadQueueConfig()
	var pub service.BookingPublisher = service.NopPublisher{}
	if qcfg.Enabled {
		pub = service.NewRabbitPublisher(qcfg)
		go func() {
			if err := queue.NewConsumer(qcfg).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("booking-consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	router.Register(e, router.Deps{
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
		Cache:     cache,
		RateLimit: config.LoadRateLimitConfig(),
		DB:        db,
		Auth:      handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)),
		Events:    handler.NewEventHandler(repository.NewEventRepo(db), pub, cache, cfg.Location),
		Profiles:  handler.NewProfileHandler(repository.NewProfileRepo(db)),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
