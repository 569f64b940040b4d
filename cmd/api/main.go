package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskBuddy/internal/auth"
	"taskBuddy/internal/blob"
	"taskBuddy/internal/config"
	"taskBuddy/internal/handlers"
	"taskBuddy/internal/logger"
	"taskBuddy/internal/middleware"
	"taskBuddy/internal/repository/task/inmemory"
	"taskBuddy/internal/repository/task/postgres"
	"taskBuddy/internal/selection"
	"taskBuddy/internal/service"
	"taskBuddy/internal/session"
	"taskBuddy/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func main() {
	// .env нужен только для локальной разработки, его отсутствие не ошибка
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Init(cfg.Logging.Development); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repo service.RemoteStore
	switch cfg.Repository.Type {
	case "postgres":
		if err := postgres.Migrate(cfg.Database.URL); err != nil {
			logger.Error("Main: Ошибка миграции базы", err)
			os.Exit(1)
		}
		storage, err := postgres.New(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("Main: Ошибка подключения к базе", err)
			os.Exit(1)
		}
		defer storage.Close()
		repo = storage
	default:
		logger.Info("Main: Используется хранилище в памяти")
		repo = inmemory.NewTaskStorage()
	}

	var blobs blob.Store
	switch cfg.Blob.Type {
	case "http":
		blobs = blob.NewHTTPStore(cfg.Blob.BaseURL)
	default:
		blobs = blob.NewLocalStore(afero.NewOsFs(), cfg.Blob.Dir)
	}

	sessions := session.NewRepository(afero.NewOsFs(), cfg.Session.File)
	provider := auth.NewGoogleProvider(cfg.Auth.ClientID, cfg.Auth.ClientSecret, cfg.Auth.RedirectPort)

	manager := service.NewTaskManager(repo, blobs, sessions, provider)
	controller := selection.NewController(manager)
	handler := handlers.NewTaskHandler(manager, controller)

	// если слот сессии пережил перезапуск, сразу тянем коллекцию владельца
	if manager.CurrentUser() != nil {
		if err := manager.FetchTasks(ctx); err != nil {
			logger.Warn("Main: Не удалось загрузить задачи при старте", zap.Error(err))
		}
	}

	if cfg.Worker.Enabled {
		refreshWorker := worker.NewRefreshWorker(manager, &cfg.Worker.Interval)
		go refreshWorker.Start(ctx)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(100))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		// логин ждёт подтверждения в браузере, таймаут ему не назначаем
		r.Post("/login", handler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Post("/logout", handler.Logout)
			r.Get("/me", handler.Me)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", handler.GetTasks)           // GET /tasks?category=&due=&q=
			r.Post("/", handler.PostTask)          // POST /tasks
			r.Get("/board", handler.GetBoard)      // GET /tasks/board
			r.Post("/refresh", handler.RefreshTasks) // POST /tasks/refresh

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", handler.UpdateTaskByID)  // PATCH /tasks/{id}
				r.Delete("/", handler.DeleteTaskByID) // DELETE /tasks/{id}
			})
		})

		r.Route("/selection", func(r chi.Router) {
			r.Get("/", handler.GetSelection)       // GET /selection
			r.Post("/toggle", handler.ToggleSelection)
			r.Delete("/", handler.ClearSelection)  // DELETE /selection
			r.Post("/status", handler.BatchStatus) // POST /selection/status
			r.Post("/delete", handler.BatchDelete) // POST /selection/delete
		})

		r.Get("/health", handler.HealthCheck)
	})

	server := &http.Server{
		Addr:    cfg.GetServerAddr(),
		Handler: r,
	}

	go func() {
		logger.Info("Server started", zap.String("addr", cfg.GetServerAddr()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Main: Ошибка сервера", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Main: Ошибка остановки сервера", err)
	}
	logger.Info("Server stopped")
}
