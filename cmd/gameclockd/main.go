package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/rakeshashastri/gameclock/internal/catalog"
	"github.com/rakeshashastri/gameclock/internal/clock"
	"github.com/rakeshashastri/gameclock/internal/events"
	"github.com/rakeshashastri/gameclock/internal/gateway"
	"github.com/rakeshashastri/gameclock/internal/prefs"
	"github.com/rakeshashastri/gameclock/internal/storage/file"
	"github.com/rakeshashastri/gameclock/internal/storage/memory"
	"github.com/rakeshashastri/gameclock/internal/storage/postgres"
)

// recordStore is the union of the repository contracts the apps need; every
// storage backend satisfies it.
type recordStore interface {
	catalog.Repository
	prefs.Repository
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	if level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	cfg, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := setupStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up storage")
	}
	defer cleanup()

	publisher, pubCleanup, err := setupPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up event publisher")
	}
	defer pubCleanup()

	catalogApp := catalog.NewApp(store)
	prefsApp := prefs.NewApp(store)
	engine := clock.NewEngine(clockwork.NewRealClock(), catalogApp, prefsApp, publisher)
	engine.Bootstrap(ctx)

	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.ConsumerConfig.URL = cfg.NATS.URL
	gatewayConfig.ConsumerConfig.SubjectPrefix = cfg.NATS.SubjectPrefix
	gatewayConfig.RelayEvents = cfg.NATS.Enabled

	gw, err := gateway.NewService(gatewayConfig, engine, prefsApp)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gateway")
	}
	go func() {
		if err := gw.Start(ctx); err != nil {
			log.Error().Err(err).Msg("gateway failed")
		}
	}()

	srv := setupServer(cfg, gw)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func setupStore(ctx context.Context, cfg Config) (recordStore, func(), error) {
	switch cfg.Storage.Backend {
	case "", "memory":
		log.Info().Msg("using in-memory storage")
		return memory.NewStore(), func() {}, nil
	case "file":
		log.Info().Str("path", cfg.Storage.FilePath).Msg("using file storage")
		return file.NewStore(cfg.Storage.FilePath), func() {}, nil
	case "postgres":
		store, err := postgres.NewStore(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		log.Info().Msg("using postgres storage")
		return store, store.Close, nil
	default:
		return nil, nil, errors.New("unknown storage backend: " + cfg.Storage.Backend)
	}
}

func setupPublisher(cfg Config) (events.Publisher, func(), error) {
	if !cfg.NATS.Enabled {
		return events.NopPublisher{}, func() {}, nil
	}
	pub, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("url", cfg.NATS.URL).Msg("publishing events to NATS")
	return pub, pub.Close, nil
}

func setupServer(cfg Config, gw *gateway.Service) *http.Server {
	mux := http.NewServeMux()
	gw.RegisterRoutes(mux)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	return &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: h2c.NewHandler(c.Handler(mux), &http2.Server{}),
	}
}
