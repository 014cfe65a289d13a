package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tripfriend/backend/internal/auth"
	"github.com/tripfriend/backend/internal/config"
	"github.com/tripfriend/backend/internal/credstore"
	"github.com/tripfriend/backend/internal/es"
	"github.com/tripfriend/backend/internal/handlers"
	"github.com/tripfriend/backend/internal/logging"
	"github.com/tripfriend/backend/internal/member"
	authmw "github.com/tripfriend/backend/internal/middleware/auth"
	"github.com/tripfriend/backend/internal/mykafka"
	"github.com/tripfriend/backend/internal/recruit"
	"github.com/tripfriend/backend/internal/token"
	httpserver "github.com/tripfriend/backend/internal/transport/http"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(ctx, configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	store, err := credstore.Dial(ctx, configuration.REDIS_ADDR, configuration.REDIS_PASSWORD)
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatalf("elasticsearch init error: %v", err)
	}

	prod := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})

	codec := token.New([]byte(configuration.JWT_SECRET))
	authService := &auth.Service{DB: db, Codec: codec, Store: store}
	memberService := &member.Service{DB: db, Store: store}

	go memberService.RunPurgeLoop(logging.IntoContext(ctx, logger), 24*time.Hour)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqCtx := logging.IntoContext(c.Request().Context(), logger)
			c.SetRequest(c.Request().WithContext(reqCtx))
			return next(c)
		}
	})

	deps := httpserver.Deps{
		DB:             db,
		AuthHandler:    &handlers.AuthHandler{Auth: authService, Producer: prod},
		MemberHandler:  &handlers.MemberHandler{Members: memberService, Auth: authService, Producer: prod},
		RecruitHandler: &handlers.RecruitHandler{Recruits: &recruit.Service{DB: db}, Engine: &recruit.Engine{DB: db}, Auth: authService, Producer: prod},
		PlaceHandler:   &handlers.PlaceHandler{DB: db, ES: esClient, Index: "place"},
		AuthMW:         &authmw.Middleware{Auth: authService},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := store.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
	os.Exit(0)
}
