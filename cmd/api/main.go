package main

import (
	"context"
	"log"
	"net/http"

	"aibosBackend/internal/config"
	"aibosBackend/internal/handlers"
	"aibosBackend/internal/logger"
	"aibosBackend/internal/middleware"
	"aibosBackend/internal/repository/task/inmemory"
	"aibosBackend/internal/repository/task/postgres"
	"aibosBackend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env загружаем до чтения переменных окружения
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	if err := logger.Init(cfg.Logging.Development); err != nil {
		log.Fatalf("инициализация логгера: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var repo service.TaskRepository
	switch cfg.Repository.Type {
	case "postgres":
		storage, err := postgres.New(ctx, cfg.Database)
		if err != nil {
			logger.Error("Не удалось подключиться к PostgreSQL", err)
			log.Fatalf("подключение к базе: %v", err)
		}
		defer storage.Close()

		if err := storage.Migrate(ctx); err != nil {
			logger.Error("Не удалось применить миграции", err)
			log.Fatalf("миграции: %v", err)
		}
		repo = storage
	default:
		logger.Info("Используется хранилище в памяти")
		repo = inmemory.NewTaskStorage()
	}

	taskService := service.NewTaskService(repo)
	taskHandler := handlers.NewTaskHandler(&taskService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(300))
	r.Use(cors.Handler(corsOptions(cfg)))

	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", taskHandler.GetTasks)   // GET /api/tasks
		r.Post("/", taskHandler.PostTask)  // POST /api/tasks

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTaskByID)       // GET /api/tasks/{id}
			r.Patch("/", taskHandler.PatchTaskByID)   // PATCH /api/tasks/{id}
			r.Delete("/", taskHandler.DeleteTaskByID) // DELETE /api/tasks/{id}
		})
	})

	r.Route("/api/tags", func(r chi.Router) {
		r.Get("/", taskHandler.GetTags)  // GET /api/tags
		r.Post("/", taskHandler.PostTag) // POST /api/tags
	})

	r.Get("/healthz", taskHandler.HealthCheck)

	logger.Info("Server started", zap.String("addr", cfg.GetServerAddr()))
	if err := http.ListenAndServe(cfg.GetServerAddr(), r); err != nil {
		logger.Error("Сервер остановился", err)
	}
}

func corsOptions(cfg *config.Config) cors.Options {
	methods := []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}

	if cfg.CORS.AllowAll {
		// разрешаем всё для локальной разработки;
		// credentials выключены, как требует спецификация CORS при "*"
		return cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   methods,
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
		}
	}

	origins := []string{
		"http://localhost:5173",
		"http://127.0.0.1:5173",
	}
	origins = append(origins, cfg.CORS.AllowedOrigins...)

	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   methods,
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}
