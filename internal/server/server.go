package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/fridgechef/backend/config"
	"github.com/pageza/fridgechef/backend/internal/api"
	"github.com/pageza/fridgechef/backend/internal/database"
	"github.com/pageza/fridgechef/backend/internal/middleware"
	"github.com/pageza/fridgechef/backend/internal/service"
	"github.com/pageza/fridgechef/backend/internal/workflow"
)

const migrationsDir = "migrations"

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
	logger *zap.SugaredLogger
}

// New creates a server around already constructed handler dependencies
func New(cfg *config.Config, deps api.Dependencies, logger *zap.SugaredLogger) *Server {
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger.Named("http")),
		middleware.ErrorHandler(logger),
		middleware.CORS(cfg.AllowedOrigins),
	)
	api.RegisterRoutes(router, deps)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		db:     deps.DB,
		logger: logger,
	}
}

// Build opens the database, cache and object store and wires every service
// and handler from cfg.
func Build(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*Server, error) {
	db, err := database.New(cfg, logger.Named("database"))
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db, migrationsDir, logger.Named("migrations")); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	redisClient, err := database.NewRedisClient(cfg, logger.Named("redis"))
	if err != nil {
		// Rate limiting and caching are optional
		logger.Warnw("redis unavailable, continuing without rate limiting and caching", "error", err)
		redisClient = nil
	}

	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}

	gemini, err := service.NewGeminiService(cfg, logger)
	if err != nil {
		return nil, err
	}
	spoonacular, err := service.NewSpoonacularService(cfg, logger)
	if err != nil {
		return nil, err
	}
	images := service.NewImageService(s3Config, logger)
	auth := service.NewAuthService(db, cfg.JWTSecret, logger)

	router := workflow.NewRouter(workflow.Services{
		Vision:     gemini,
		Language:   gemini,
		Classifier: gemini,
		Recipes:    spoonacular,
		Images:     images,
	}, logger)

	srv := New(cfg, api.Dependencies{
		DB:           db,
		Auth:         auth,
		SavedRecipes: service.NewSavedRecipeService(db, logger),
		Popular:      service.NewPopularRecipeService(spoonacular, redisClient, logger),
		Images:       images,
		Chat:         router,
		ChatLimiter:  middleware.NewChatRateLimiter(redisClient, cfg.ChatRateLimit, logger),
		Logger:       logger,
	}, logger)
	srv.redis = redisClient
	return srv, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Infow("starting server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// the database and cache connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil {
			s.logger.Warnw("failed to close redis", "error", cerr)
		}
	}
	if s.db != nil {
		if sqlDB, derr := s.db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
	}
	return err
}
