package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/handlers"
	"taskboard/internal/logger"
	"taskboard/internal/middleware"
	"taskboard/internal/repository/postgres"
	"taskboard/internal/service"
	"taskboard/internal/worker"
)

type App struct {
	config    *config.Config
	storage   *postgres.Storage
	server    *http.Server
	worker    *worker.RetentionWorker
	shutdowns []func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	if err := postgres.Migrate(a.config.Database.URL); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	storage, err := postgres.New(ctx, a.config.Database.URL, postgres.Options{
		MaxConns:    a.config.Database.MaxConnections,
		MinConns:    a.config.Database.MinConnections,
		IdleTimeout: a.config.Database.IdleTimeout,
	})
	if err != nil {
		return fmt.Errorf("connecting to storage: %w", err)
	}
	a.storage = storage
	a.shutdowns = append(a.shutdowns, storage.Close)

	hasher := auth.NewPasswordHasher()
	tokens := auth.NewTokenManager(a.config.Auth.Secret, "taskboard")

	resolver := service.NewAccessResolver(storage, storage)
	taskService := service.NewTaskService(storage, resolver)
	invitationService := service.NewInvitationService(storage, storage, resolver)
	authService := service.NewAuthService(storage, hasher, tokens,
		a.config.Auth.TokenTTL, a.config.Auth.RememberMeTTL)

	taskHandler := handlers.NewTaskHandler(taskService, invitationService)
	authHandler := handlers.NewAuthHandler(authService)

	a.server = &http.Server{
		Addr:    a.config.ServerAddr(),
		Handler: a.router(taskHandler, authHandler, tokens),
	}

	a.worker = worker.NewRetentionWorker(storage,
		a.config.Worker.SweepInterval, a.config.Worker.Retention)

	return nil
}

func (a *App) router(taskHandler *handlers.TaskHandler, authHandler *handlers.AuthHandler, tokens *auth.TokenManager) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(100))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	authenticated := middleware.Authenticate(tokens)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/verify", authHandler.Verify)
			r.Put("/profile", authHandler.UpdateProfile)
		})
	})

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(authenticated)

		r.Get("/", taskHandler.List)
		r.Post("/", taskHandler.Create)

		r.Route("/share-invitations", func(r chi.Router) {
			r.Get("/pending", taskHandler.ListPendingInvitations)
			r.Patch("/{invitationId}", taskHandler.RespondInvitation)
		})

		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", taskHandler.Update)
			r.Delete("/", taskHandler.Delete)
			r.Patch("/pin", taskHandler.TogglePin)
			r.Patch("/complete", taskHandler.ToggleComplete)
			r.Patch("/position", taskHandler.Move)
			r.Post("/share", taskHandler.Share)
		})
	})

	r.Get("/health", a.healthCheck)

	return r
}

func (a *App) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := a.storage.HealthCheck(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unhealthy"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// Run serves HTTP until ctx is cancelled, then shuts everything down in
// reverse initialization order.
func (a *App) Run(ctx context.Context) error {
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.worker.Start(workerCtx)
	a.shutdowns = append(a.shutdowns, cancelWorker)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: server started on " + a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.shutdown()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("App: forced server shutdown")
		a.server.Close()
	}

	a.shutdown()
	return nil
}

func (a *App) shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
