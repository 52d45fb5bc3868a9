package main

// POST /login                          - exchange credentials for a bearer token
// POST /api/user/create                - register a user (public)
// GET  /api/user/{username}            - look up a user by name
// GET  /api/user/id/{id}               - look up a user by id
// GET  /api/item                       - list the catalog
// GET  /api/item/{id}                  - look up an item
// GET  /api/item/name/{name}           - look up items by exact name
// POST /api/cart/addToCart             - add units of an item to a cart
// POST /api/cart/removeFromCart        - remove units of an item from a cart
// POST /api/order/submit/{username}    - turn the cart into an order
// GET  /api/order/history/{username}   - list a user's orders

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/blee0617/nd035-c4-Security-and-DevOps/auth"
	"github.com/blee0617/nd035-c4-Security-and-DevOps/cache"
	"github.com/blee0617/nd035-c4-Security-and-DevOps/config"
	"github.com/blee0617/nd035-c4-Security-and-DevOps/handler"
	"github.com/blee0617/nd035-c4-Security-and-DevOps/service"
	"github.com/blee0617/nd035-c4-Security-and-DevOps/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)
	if cfg.UsesDefaultJWTSecret() {
		log.Warn().Msg("JWT_SECRET is not set, signing tokens with the built-in default key")
	}

	// --- Migrations ---
	if cfg.MigrateOnStart {
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("failed running migrations")
		}
		log.Info().Msg("database migrations applied")
	}

	// --- Store ---
	st, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("DB connection failed")
	}
	defer st.Close()

	// --- Item cache ---
	var itemCache cache.ItemCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis not available, continuing without item cache")
		} else {
			itemCache = cache.NewRedisItemCache(rdb, cfg.ItemCacheTTL)
		}
	}

	// --- Service ---
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	svc := service.NewService(st, tokens,
		service.WithItemCache(itemCache),
		service.WithMinPasswordLength(cfg.MinPasswordLength),
		service.WithBcryptCost(cfg.BcryptCost),
	)

	// --- Handlers ---
	h := handler.NewHandler(svc)

	// --- Router ---
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	var root http.Handler = auth.Filter(tokens, handler.PublicRoutes...)(r)
	root = handler.RequestLogger(log.Logger)(root)
	root = cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{auth.HeaderName, "Content-Type"},
		ExposedHeaders: []string{auth.HeaderName},
	}).Handler(root)
	root = handler.Timeout(cfg.RequestTimeout)(root)

	// --- Server ---
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      root,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &log.Logger
}
