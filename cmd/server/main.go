package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/jmwangi/casetrack/internal/config"
	"github.com/jmwangi/casetrack/internal/database"
	"github.com/jmwangi/casetrack/internal/fieldcache"
	"github.com/jmwangi/casetrack/internal/handler"
	"github.com/jmwangi/casetrack/internal/middleware"
	"github.com/jmwangi/casetrack/internal/queue"
	"github.com/jmwangi/casetrack/internal/repository"
	"github.com/jmwangi/casetrack/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client turns the field cache into a
	// pass-through and disables response caching and rate limiting.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	fieldRepo := repository.NewFieldRepo(db)
	attrs := repository.NewAttributeRepo(db)
	records := repository.NewRecordRepo(db, attrs)
	notifications := repository.NewNotificationRepo(db)
	forecasts := repository.NewForecastRepo(db)

	cacheCfg := config.LoadCacheConfig()
	fields := fieldcache.New(fieldRepo, rdb, cacheCfg.TTL)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	fieldH := handler.NewFieldHandler(cfg, fields, rdb, cacheCfg)
	recordH := handler.NewRecordHandler(cfg, records, fields)
	exchangeH := handler.NewExchangeHandler(cfg, records, fields)
	notifH := handler.NewNotificationHandler(cfg, notifications)
	forecastH := handler.NewForecastHandler(cfg, forecasts)
	adminH := handler.NewAdminHandler(cfg, users, records)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	if rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	if rdb != nil {
		router.RegisterFields(e, fieldH, cfg.JWTSecret, middleware.NewRedisCache(cacheCfg, rdb))
	} else {
		router.RegisterFields(e, fieldH, cfg.JWTSecret)
	}
	router.RegisterRecords(e, recordH, exchangeH, notifH, cfg.JWTSecret)
	router.RegisterForecasts(e, forecastH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, forecastH, cfg.JWTSecret)

	// Consumer writes the record change feed to logs/records.log and
	// reconnects on broker failures.
	go func() {
		if err := queue.StartRecordConsumer(); err != nil {
			log.Printf("record consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
