package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hegdeshashank73/chat-analyser/internal/config"
	dbRedis "github.com/hegdeshashank73/chat-analyser/internal/db/redis"
	"github.com/hegdeshashank73/chat-analyser/internal/domain"
	logpkg "github.com/hegdeshashank73/chat-analyser/internal/logger"
	"github.com/hegdeshashank73/chat-analyser/internal/metrics"
	messagerepo "github.com/hegdeshashank73/chat-analyser/internal/repository/message"
	"github.com/hegdeshashank73/chat-analyser/internal/transport/httpapi"
	openaiTransport "github.com/hegdeshashank73/chat-analyser/internal/transport/openai"
	answeruc "github.com/hegdeshashank73/chat-analyser/internal/usecase/answer"
	healthuc "github.com/hegdeshashank73/chat-analyser/internal/usecase/health"
	ingestuc "github.com/hegdeshashank73/chat-analyser/internal/usecase/ingest"
	"github.com/hegdeshashank73/chat-analyser/internal/version"
)

func main() {
	indexPath := flag.String("index", "", "path to a WhatsApp chat export to index, then exit")
	flag.Parse()

	// Local development keeps OPENAI_API_KEY and friends in .env
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting chat-analyser",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := logpkg.ContextWithLogger(context.Background(), logger)
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterCompletionMetrics()
	metrics.RegisterRetrievalMetrics()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	completer := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
		APIKey:      cfg.Completion.APIKey,
		BaseURL:     cfg.Completion.BaseURL,
		Model:       cfg.Completion.Model,
		Temperature: cfg.Completion.Temperature,
		MaxTokens:   cfg.Completion.MaxTokens,
		Logger:      logger,
	})
	logger.Info("Providers created",
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.String("completion_model", cfg.Completion.Model),
	)

	repo := messagerepo.New(store, cfg.Storage.KeyPrefix, cfg.Embedding.Dimensions).
		WithHNSW(messagerepo.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		})
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure index schema", zap.Error(err))
	}

	// A model that disagrees with the index dimensionality would silently
	// match nothing, so fail at startup instead.
	if err := domain.ValidateDimensions(ctx, embedder, cfg.Embedding.Dimensions); err != nil {
		logger.Fatal("Embedding dimension validation failed", zap.Error(err))
	}

	if *indexPath != "" {
		runIngest(ctx, logger, repo, embedder, cfg, *indexPath)
		return
	}

	promptBuilder, err := answeruc.NewPromptBuilder(cfg.Prompt.MaxContextTokens, cfg.Prompt.Participants)
	if err != nil {
		logger.Fatal("Failed to create prompt builder", zap.Error(err))
	}

	answerSvc := answeruc.New(repo, embedder, completer, promptBuilder, answeruc.Options{
		Limit:             cfg.Retrieval.Limit,
		Oversample:        cfg.Retrieval.Oversample,
		DistanceThreshold: cfg.Retrieval.DistanceThreshold,
	})
	healthSvc := healthuc.New(store, embedder)

	server := httpapi.NewServer(answerSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(httpapi.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// runIngest indexes a chat export file and exits.
func runIngest(
	ctx context.Context,
	logger *zap.Logger,
	repo *messagerepo.Repo,
	embedder *openaiTransport.Embedder,
	cfg config.Config,
	path string,
) {
	f, err := os.Open(path)
	if err != nil {
		logger.Fatal("Failed to open chat export", zap.String("path", path), zap.Error(err))
	}
	defer f.Close()

	svc := ingestuc.New(repo, embedder, ingestuc.Options{
		BatchSize:     cfg.Ingest.BatchSize,
		ProgressEvery: cfg.Ingest.ProgressEvery,
	})

	stats, err := svc.Run(ctx, f)
	if err != nil {
		logger.Fatal("Indexing failed", zap.Error(err))
	}

	logger.Info("Chat export indexed",
		zap.String("path", path),
		zap.Int("parsed", stats.Parsed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("indexed", stats.Indexed),
		zap.Int("failed", stats.Failed),
	)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
