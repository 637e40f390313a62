package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"core/internal/config"
	"core/internal/handler"
	"core/internal/repository"
	"core/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("property search core starting",
		"version", Version, "build_time", BuildTime, "git_commit", GitCommit)

	gin.SetMode(cfg.Server.GinMode)

	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
		cfg.Search.PageSize,
	)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to PostgreSQL")

	analyzer := service.NewVisionClient(&cfg.Analyzer, logger)
	if analyzer.IsEnabled() {
		logger.Info("vision analyzer enabled", "api_base", cfg.Analyzer.APIBase, "model", cfg.Analyzer.Model)
	} else {
		logger.Warn("vision analyzer disabled - image search will not work; set ANALYZER_API_KEY to enable")
	}

	cache := service.NewQueryCache(repo, time.Duration(cfg.Cache.StaleTimeMs)*time.Millisecond, logger)
	suggestions := service.NewSuggestionFetcher(repo, time.Duration(cfg.Suggest.DebounceMs)*time.Millisecond, cfg.Search.SuggestLimit)
	voice := service.NewVoiceController(cfg.Voice.ConfidenceThreshold, cfg.Voice.HistoryLimit, logger)
	presets := service.NewPresetService(repo)

	defaultWeights, ok := service.QuickPreset(cfg.Similarity.DefaultPreset)
	if !ok {
		logger.Warn("unknown default preset, using balanced", "preset", cfg.Similarity.DefaultPreset)
		defaultWeights, _ = service.QuickPreset(service.PresetBalanced)
	}

	session := service.NewSearchSession(service.SearchSessionDeps{
		Cache:          cache,
		Ranker:         service.NewRanker(),
		Analyzer:       analyzer,
		Suggestions:    suggestions,
		Voice:          voice,
		SearchLog:      repo,
		Vectors:        repo,
		Logger:         logger,
		DefaultWeights: defaultWeights,
	})

	searchHandler := handler.NewSearchHandler(session)
	voiceHandler := handler.NewVoiceHandler(session, presets)
	presetHandler := handler.NewPresetHandler(presets)
	feedbackHandler := handler.NewFeedbackHandler(repo)
	embeddingHandler := handler.NewEmbeddingHandler(repo)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "property-search-core",
			"version": Version,
		})
	})
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/search", searchHandler.Search)
		apiV1.GET("/suggest", searchHandler.Suggest)
		apiV1.POST("/search/page", searchHandler.GoToPage)
		apiV1.POST("/search/page/next", searchHandler.NextPage)
		apiV1.POST("/search/page/prev", searchHandler.PrevPage)
		apiV1.POST("/search/image", searchHandler.ImageSearch)
		apiV1.GET("/search/image/scores", searchHandler.ScoredResults)
		apiV1.GET("/search/image/candidates", searchHandler.CandidatePool)
		apiV1.POST("/search/thresholds", searchHandler.SetThresholds)
		apiV1.GET("/search/rank/:feature", searchHandler.RankByFeature)
		apiV1.POST("/search/cache/clear", searchHandler.ClearCache)
		apiV1.GET("/search/cache/stats", searchHandler.CacheStats)

		apiV1.POST("/voice/listen", voiceHandler.Listen)
		apiV1.POST("/voice/transcript", voiceHandler.Transcript)
		apiV1.POST("/voice/accept", voiceHandler.Accept)
		apiV1.POST("/voice/retry", voiceHandler.Retry)
		apiV1.POST("/voice/dismiss", voiceHandler.Dismiss)
		apiV1.GET("/voice/history", voiceHandler.History)
		apiV1.GET("/voice/language", voiceHandler.GetLanguage)
		apiV1.PUT("/voice/language", voiceHandler.SetLanguage)

		apiV1.GET("/presets", presetHandler.List)
		apiV1.POST("/presets", presetHandler.Save)
		apiV1.DELETE("/presets/:name", presetHandler.Delete)
		apiV1.GET("/presets/quick/:name", presetHandler.Quick)

		apiV1.POST("/feedback", feedbackHandler.Submit)
		apiV1.POST("/embeddings/batch", embeddingHandler.BatchUpdate)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
