package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/AirLinkPros/airlink-backend/internal/auth"
	"github.com/AirLinkPros/airlink-backend/internal/catalog"
	"github.com/AirLinkPros/airlink-backend/internal/config"
	"github.com/AirLinkPros/airlink-backend/internal/db"
	"github.com/AirLinkPros/airlink-backend/internal/findpro"
	"github.com/AirLinkPros/airlink-backend/internal/jobs"
	"github.com/AirLinkPros/airlink-backend/internal/logging"
	"github.com/AirLinkPros/airlink-backend/internal/metrics"
	"github.com/AirLinkPros/airlink-backend/internal/middleware"
	"github.com/AirLinkPros/airlink-backend/internal/signals"
	"github.com/AirLinkPros/airlink-backend/internal/workspace"
)

// notifyBuffer bounds queued workspace change notices before they are dropped.
const notifyBuffer = 256

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

// server holds the feature handlers mounted by routes.
type server struct {
	store     auth.Store
	catalog   *catalog.Catalog
	auth      *auth.Handlers
	signals   *signals.Handlers
	pros      *findpro.Handlers
	workspace *workspace.Handlers
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logging.RequestLogger(s.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(middleware.CORSMiddleware)

	r.Get("/", RootHandler)
	r.Get("/healthz", RootHandler)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Mount("/auth", s.auth.SetupRoutes())
	r.Mount("/catalog", s.catalog.SetupRoutes())
	r.Mount("/signals", s.signals.SetupRoutes(s.store, s.store))
	r.Mount("/pros", s.pros.SetupRoutes())
	r.Mount("/workspace", s.workspace.SetupRoutes(s.store))

	return r
}

func newServer(cfg config.Config, store auth.Store, cat *catalog.Catalog, reg *workspace.Registry, m *metrics.Metrics, logger *zap.Logger) *server {
	return &server{
		store:   store,
		catalog: cat,
		auth: auth.NewHandlers(auth.Deps{
			Store:         store,
			Workspaces:    reg,
			Limiter:       middleware.NewRateLimiter(cfg.LoginRPS, cfg.LoginBurst),
			Metrics:       m,
			Log:           logger,
			SecureCookies: cfg.SecureCookies,
		}),
		signals:   signals.NewHandlers(cat.Signals, reg, m, logger),
		pros:      findpro.NewHandlers(cat.Contractors, cat.Categories, m, logger),
		workspace: workspace.NewHandlers(reg, m, logger),
		metrics:   m,
		log:       logger,
	}
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("config: ", err)
	}

	logger, err := logging.New(cfg.Production())
	if err != nil {
		log.Fatal("logger: ", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := db.Connect(cfg.DatabaseURL); err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer db.Close()
	auth.Init()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("catalog", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []workspace.Option
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	switch {
	case err != nil:
		logger.Warn("redis unavailable, workspace notices disabled", zap.Error(err))
	case rdb != nil:
		defer rdb.Close()
		n := workspace.NewNotifier(rdb, logger, notifyBuffer)
		go n.Run(ctx)
		opts = append(opts, workspace.WithListener(n.Listener()))
	}

	reg, err := workspace.NewRegistry(cfg.WorkspaceCacheSize, cat.WorkspaceSeed, opts...)
	if err != nil {
		logger.Fatal("workspace registry", zap.Error(err))
	}

	m := metrics.New()
	store := auth.NewGormStore(db.DB)

	sched := jobs.New(store, cfg.SessionPurgeSpec, m, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Fatal("scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           newServer(cfg, store, cat, reg, m, logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}
