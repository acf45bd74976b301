package main

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"github.com/pkg/errors"

	"github.com/mmynk/tripbite/internal/account"
	"github.com/mmynk/tripbite/internal/auth"
	"github.com/mmynk/tripbite/internal/authz"
	"github.com/mmynk/tripbite/internal/config"
	"github.com/mmynk/tripbite/internal/consensus"
	"github.com/mmynk/tripbite/internal/group"
	"github.com/mmynk/tripbite/internal/metrics"
	"github.com/mmynk/tripbite/internal/middleware"
	"github.com/mmynk/tripbite/internal/places"
	"github.com/mmynk/tripbite/internal/recommend"
	"github.com/mmynk/tripbite/internal/service"
	"github.com/mmynk/tripbite/internal/storage"
	"github.com/mmynk/tripbite/internal/storage/memory"
	"github.com/mmynk/tripbite/internal/storage/sqlite"
)

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		slog.Warn("Using in-memory storage, data is lost on restart")
		return memory.New(), nil
	case config.DriverSQLite:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "database", cfg.DBPath)
		return store, nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func newSearcher(cfg config.Places) places.Searcher {
	if cfg.APIKey == "" {
		slog.Warn("No places API key configured, serving mock restaurants")
		return places.MockSearcher{}
	}
	return places.NewGoogleClient(places.GoogleConfig{
		APIKey:        cfg.APIKey,
		BaseURL:       cfg.BaseURL,
		Language:      cfg.Language,
		RatePerSecond: cfg.RatePerSecond,
		Timeout:       cfg.Timeout,
	})
}

// newHandler wires every service over store and returns the root HTTP handler.
func newHandler(cfg *config.Config, store storage.Store, searcher places.Searcher) http.Handler {
	authenticator := auth.NewPasswordAuthenticator(store)
	if cfg.BcryptCost > 0 {
		authenticator = authenticator.WithCost(cfg.BcryptCost)
	}
	sessions := auth.NewSessionManager(authenticator, auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL), store)
	guard := authz.NewGuard(sessions)
	m := metrics.New()

	groups := group.NewRepository(store, guard)
	recommender := recommend.NewService(groups, searcher, consensus.NewScorer(cfg.Weights), m, cfg.Places.Keyword)
	groups.WithCanceler(recommender)
	accounts := account.NewService(store, guard, sessions)

	interceptors := connect.WithInterceptors(
		middleware.BearerToken(),
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m),
	)

	mux := http.NewServeMux()
	mux.Handle(service.NewAuthServiceHandler(service.NewAuthService(sessions, accounts), interceptors))
	mux.Handle(service.NewGroupServiceHandler(service.NewGroupService(groups), interceptors))
	mux.Handle(service.NewRecommendationServiceHandler(service.NewRecommendationService(recommender), interceptors))
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return corsMiddleware(mux)
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
