package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dokkai-practice-service/internal/app"
	"dokkai-practice-service/internal/config"
	"dokkai-practice-service/internal/domain"
	filesource "dokkai-practice-service/internal/infra/file"
	"dokkai-practice-service/internal/infra/memory"
	pgloader "dokkai-practice-service/internal/infra/postgres"
	redisinfra "dokkai-practice-service/internal/infra/redis"
	transport "dokkai-practice-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the practice server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	// Passage content: postgres when configured, otherwise static JSON files,
	// otherwise a built-in sample set.
	var loader memory.PassageLoader
	var metadata app.MetadataSource
	switch {
	case pool != nil:
		pg := pgloader.NewPassageLoader(pool)
		loader, metadata = pg, pg
	case cfg.Content.Dir != "":
		src := filesource.NewContentSource(cfg.Content.Dir)
		loader, metadata = src, src
	default:
		static := memory.NewStaticPassageLoader(samplePassages())
		loader, metadata = static, static
	}

	contentTTL := config.TTLDuration(cfg.Content.TTL, 10*time.Minute)
	var passages app.PassageRepository
	if redisClient != nil {
		passages = redisinfra.NewPassageRepository(redisClient, loader, contentTTL)
	} else {
		passages = memory.NewPassageRepository(loader, contentTTL)
	}

	var kv app.KeyValueStore
	if redisClient != nil {
		kv = redisinfra.NewKVStore(redisClient)
	} else {
		kv = memory.NewKVStore()
	}
	progress := app.NewProgressStore(kv)
	service := app.NewPracticeService(passages, metadata, progress)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting dokkai practice service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// samplePassages provides a minimal content set so the server runs without
// any backing store configured.
func samplePassages() map[string]domain.Passage {
	return map[string]domain.Passage{
		"sample-001": {
			ID:            "sample-001",
			Title:         "Morning Routines",
			Category:      "essay",
			Difficulty:    2,
			EstimatedTime: 5,
			Text:          "Many people say the first hour of the day shapes the rest of it...",
			Questions: []domain.Question{
				{
					ID:           "q1",
					QuestionText: "According to the passage, what shapes the rest of the day?",
					Choices: []domain.Choice{
						{ID: "a", Text: "The first hour"},
						{ID: "b", Text: "Breakfast"},
						{ID: "c", Text: "The weather"},
					},
					CorrectAnswer: "a",
					Explanation:   "The opening sentence states it directly.",
				},
			},
		},
	}
}
