package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/legisequity/bloggen/internal/application"
	appblog "github.com/legisequity/bloggen/internal/application/blog"
	appcluster "github.com/legisequity/bloggen/internal/application/cluster"
	appgen "github.com/legisequity/bloggen/internal/application/generation"
	"github.com/legisequity/bloggen/internal/config"
	domblog "github.com/legisequity/bloggen/internal/domain/blog"
	domcluster "github.com/legisequity/bloggen/internal/domain/cluster"
	domgen "github.com/legisequity/bloggen/internal/domain/generation"
	aiopenai "github.com/legisequity/bloggen/internal/infra/ai/openai"
	mysqlp "github.com/legisequity/bloggen/internal/infra/db/mysql"
	postgresp "github.com/legisequity/bloggen/internal/infra/db/postgres"
	"github.com/legisequity/bloggen/internal/infra/cache"
	"github.com/legisequity/bloggen/internal/infra/httpserver"
	"github.com/legisequity/bloggen/internal/infra/markdown"
	minioStore "github.com/legisequity/bloggen/internal/infra/storage"
	"github.com/legisequity/bloggen/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	ctx := context.Background()

	var (
		clusterRepo    domcluster.Repository
		blogRepo       domblog.Repository
		generationRepo domgen.Repository
		failureRepo    domgen.FailureRepository
		dbChecker      middleware.HealthChecker
	)

	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("mysql connect error")
		}
		defer db.Close()
		clusterRepo = mysqlp.NewClusterRepository(db)
		blogRepo = mysqlp.NewBlogRepository(db)
		generationRepo = mysqlp.NewGenerationRepository(db)
		failureRepo = mysqlp.NewFailureRepository(db)
		dbChecker = &middleware.DatabaseHealthChecker{DB: db}
	default:
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connect error")
		}
		defer db.Close()
		clusterRepo = postgresp.NewClusterRepository(db)
		blogRepo = postgresp.NewBlogRepository(db)
		generationRepo = postgresp.NewGenerationRepository(db)
		failureRepo = postgresp.NewFailureRepository(db)
		dbChecker = &middleware.DatabaseHealthChecker{DB: db}
	}

	checkers := map[string]middleware.HealthChecker{"database": dbChecker}

	var feedCache *cache.Cache
	if cfg.Redis.URL != "" {
		ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second
		if ttl <= 0 {
			ttl = 60 * time.Second
		}
		feedCache, err = cache.New(ctx, cfg.Redis.URL, ttl)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connect error")
		}
		defer feedCache.Close()
		checkers["redis"] = &middleware.PingHealthChecker{Ping: feedCache.Ping}
	}

	var images domgen.ImageStore
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
			cfg.Minio.PublicBaseURL,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("minio init error")
		}
		images = store
		checkers["minio"] = &middleware.PingHealthChecker{Ping: store.Ping}
	}

	clock := application.SystemClock{}

	clusterSvc := &appcluster.Service{
		Repo:        clusterRepo,
		Generations: generationRepo,
		Failures:    failureRepo,
	}

	blogSvc := &appblog.Service{
		Repo:  blogRepo,
		Cache: feedCache,
		Clock: clock,
		Log:   log,
	}

	startTag, endTag := cfg.ThinkTagPair()
	genSvc := &appgen.Service{
		Clusters:    clusterRepo,
		Generations: generationRepo,
		Failures:    failureRepo,
		Posts:       blogRepo,
		Images:      images,
		Render:      markdown.Render,
		Clock:       clock,
		Log:         log,
		Opts: appgen.Options{
			Model:          cfg.LLM.Model,
			ThinkStartTag:  startTag,
			ThinkEndTag:    endTag,
			JSONMode:       cfg.LLM.JSONMode,
			MaxTokens:      cfg.LLM.MaxTokens,
			MaxBills:       cfg.LLM.MaxBills,
			EphemeralHosts: cfg.LLM.EphemeralImageHosts,
		},
	}
	if cfg.LLMConfigured() {
		genSvc.AI = aiopenai.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	} else {
		log.Warn().Msg("llm not configured, generation disabled")
	}

	users := make(map[string]middleware.User, len(cfg.Auth.Users))
	for _, u := range cfg.Auth.Users {
		if u.APIKey == "" {
			continue
		}
		users[u.APIKey] = middleware.User{Name: u.Name, Role: u.Role}
	}

	capacity := cfg.RateLimit.Capacity
	if capacity <= 0 {
		capacity = 100
	}
	refill := cfg.RateLimit.RefillRate
	if refill <= 0 {
		refill = 10
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	mux.Use(middleware.LoggingMiddleware(log))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(capacity, refill))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Mount("/", httpserver.NewRouter(
		clusterSvc,
		blogSvc,
		genSvc,
		middleware.APIKeyAuth(users),
		log,
	))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout stays zero so long-lived event streams are not cut off.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
