// Package main is the entry point for the Foodgram API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/foodgram/backend/internal/auth"
	"github.com/pkordes/foodgram/backend/internal/config"
	"github.com/pkordes/foodgram/backend/internal/handler"
	"github.com/pkordes/foodgram/backend/internal/media"
	"github.com/pkordes/foodgram/backend/internal/middleware"
	"github.com/pkordes/foodgram/backend/internal/repo"
	"github.com/pkordes/foodgram/backend/internal/service"
	"github.com/pkordes/foodgram/backend/migrations"
	"github.com/pkordes/foodgram/backend/spec"
)

func main() {
	migrate := flag.Bool("migrate", true, "apply pending database migrations before serving")
	flag.Parse()

	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if *migrate {
		// goose drives database/sql; borrow a *sql.DB view of the pool.
		sqlDB := stdlib.OpenDBFromPool(pool)
		err := migrations.Up(context.Background(), sqlDB, logger)
		sqlDB.Close()
		if err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	// --- Dependencies -----------------------------------------------------
	users := repo.NewUserRepo(pool)
	follows := repo.NewFollowRepo(pool)
	tokens := repo.NewTokenRepo(pool)
	tags := repo.NewTagRepo(pool)
	ingredients := repo.NewIngredientRepo(pool)
	recipes := repo.NewRecipeRepo(pool)
	selections := repo.NewSelectionRepo(pool)

	images := media.NewStore(cfg.MediaDir, cfg.MediaURL)
	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)

	authSvc := service.NewAuthService(users, tokens, issuer, logger)
	server := handler.NewServer(handler.Deps{
		Users:       service.NewUserService(users, follows),
		Auth:        authSvc,
		Tags:        service.NewTagService(tags),
		Ingredients: service.NewIngredientService(ingredients),
		Recipes: service.NewRecipeService(service.RecipeDeps{
			Recipes:     recipes,
			Ingredients: ingredients,
			Tags:        tags,
			Users:       users,
			Follows:     follows,
			Selections:  selections,
			Images:      images,
			Log:         logger,
		}),
		Selections:    service.NewSelectionService(recipes, selections),
		Follows:       service.NewFollowService(users, follows, recipes),
		ShoppingLists: service.NewShoppingListService(users, selections, recipes, logger),
		Images:        images,
		LoginLimiter:  middleware.NewRateLimiter(cfg.LoginRatePerMin),
		OpenAPI:       spec.OpenAPI,
		Log:           logger,
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP only for
	// connections from TRUSTED_PROXIES; the login rate limiter keys on it.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewRealIP(cfg.TrustedProxies))
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	// Uploaded images are served from disk when MEDIA_URL is a local path;
	// an absolute URL means a proxy or CDN serves them.
	if strings.HasPrefix(cfg.MediaURL, "/") {
		prefix := strings.TrimSuffix(cfg.MediaURL, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(images.Root()))))
	}
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
