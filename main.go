package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WaveLink/WL-Backend/internal/admin"
	"github.com/WaveLink/WL-Backend/internal/auth"
	"github.com/WaveLink/WL-Backend/internal/config"
	"github.com/WaveLink/WL-Backend/internal/db"
	"github.com/WaveLink/WL-Backend/internal/employee"
	"github.com/WaveLink/WL-Backend/internal/logging"
	"github.com/WaveLink/WL-Backend/internal/middleware"
	"github.com/WaveLink/WL-Backend/internal/passenger"
	"github.com/WaveLink/WL-Backend/internal/pdfmeta"
	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/WaveLink/WL-Backend/internal/storage"
	"github.com/WaveLink/WL-Backend/internal/transit"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// HealthHandler reports whether the server and its database are up.
func HealthHandler(svc *db.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "text/plain")
		if err := svc.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintln(w, "Database unreachable")
			return
		}
		fmt.Fprintln(w, "Server is up!")
	}
}

func newObjectStore(cfg *config.Config, log *zap.SugaredLogger) (storage.ObjectStore, error) {
	if cfg.StorageEndpoint == "" {
		log.Warn("STORAGE_ENDPOINT is not set; uploads are kept in memory")
		return storage.NewMemoryStore(), nil
	}
	return storage.NewS3Store(storage.S3Options{
		Endpoint:        cfg.StorageEndpoint,
		Region:          cfg.StorageRegion,
		AccessKeyID:     cfg.StorageAccessKeyID,
		SecretAccessKey: cfg.StorageSecretAccessKey,
		PublicBaseURL:   cfg.StoragePublicBaseURL,
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	svc, err := db.Connect(cfg.DatabaseURL, cfg.Env != config.EnvProduction)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}

	// transit before passenger: preferences reference routes.
	for _, m := range []struct {
		name string
		init func(*db.Service) error
	}{
		{"auth", auth.Init},
		{"transit", transit.Init},
		{"employee", employee.Init},
		{"passenger", passenger.Init},
	} {
		if err := m.init(svc); err != nil {
			log.Fatalw("failed to migrate", "module", m.name, "error", err)
		}
	}

	objects, err := newObjectStore(cfg, log)
	if err != nil {
		log.Fatalw("failed to configure object storage", "error", err)
	}

	codec, err := session.NewCodec(cfg.SecretKey)
	if err != nil {
		log.Fatalw("failed to configure sessions", "error", err)
	}
	sessions := session.NewManager(codec, session.Options{
		CookieName: cfg.SessionCookieName,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.CookieSecure,
	})

	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		log.Fatalw("failed to configure password hashing", "error", err)
	}

	accounts := auth.NewStore(svc)
	network := transit.NewStore(svc)

	employees := employee.NewHandler(employee.NewStore(svc), objects, pdfmeta.InfoScanner{}, employee.Options{
		Bucket:            cfg.StorageBucket,
		SignedURLTTL:      cfg.SignedURLTTL,
		DownloadURLTTL:    cfg.DownloadURLTTL,
		DefaultTerminalID: cfg.DefaultTerminalID,
	}, log.Named("employee"))
	passengers := passenger.NewHandler(passenger.NewStore(svc), network, objects, cfg.StorageBucket, log.Named("passenger"))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(log.Named("http")))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORSMiddleware(cfg.Origins()))
	r.Use(sessions.Load)

	r.Get("/healthz", HealthHandler(svc))

	auth.RegisterRoutes(r, auth.NewHandler(accounts, hasher, sessions, log.Named("auth")))
	admin.RegisterRoutes(r, admin.NewHandler(accounts, hasher, log.Named("admin")))
	transit.RegisterRoutes(r, transit.NewHandler(network, log.Named("transit")))
	r.Mount("/employee", employee.SetupRoutes(employees))
	r.Mount("/api", employee.SetupAPIRoutes(employees))
	r.Mount("/passenger", passenger.SetupRoutes(passengers))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Infow("server listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
	if err := svc.Close(); err != nil {
		log.Errorw("failed to close database", "error", err)
	}
	log.Info("server stopped")
}
