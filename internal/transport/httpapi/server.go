package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hegdeshashank73/chat-analyser/internal/domain"
	"github.com/hegdeshashank73/chat-analyser/internal/usecase/answer"
	healthuc "github.com/hegdeshashank73/chat-analyser/internal/usecase/health"
)

const maxQuestionLen = 2000

// Asker answers questions over the indexed chat history.
type Asker interface {
	Ask(ctx context.Context, query string) (answer.Answer, error)
}

// Server exposes the question-answering pipeline over HTTP.
type Server struct {
	asker  Asker
	health *healthuc.Service
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(asker Asker, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{asker: asker, health: health, logger: logger}
}

// Register mounts the API routes on a chi router.
func (s *Server) Register(r chi.Router) {
	r.Post("/ask", s.handleAsk)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

type askRequest struct {
	Question string `json:"question"`
}

type sourceItem struct {
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Distance  float64   `json:"distance"`
}

type askResponse struct {
	Answer  string       `json:"answer"`
	Sources []sourceItem `json:"sources"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleAsk handles POST /ask.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "question is required")
		return
	}
	if len(question) > maxQuestionLen {
		writeError(w, http.StatusBadRequest, "validation_failed", "question is too long")
		return
	}

	ans, err := s.asker.Ask(r.Context(), question)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	sources := make([]sourceItem, len(ans.Sources))
	for i, h := range ans.Sources {
		sources[i] = sourceItem{
			Content:   h.Content(),
			Sender:    h.Sender(),
			Timestamp: h.Timestamp(),
			Distance:  h.Distance(),
		}
	}

	writeJSON(w, http.StatusOK, askResponse{Answer: ans.Text, Sources: sources})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmbeddingProvider):
		s.logger.Warn("embedding provider error", zap.Error(err))
		writeError(w, http.StatusBadGateway, "embedding_provider_error", domain.ErrEmbeddingProvider.Error())
	case errors.Is(err, domain.ErrCompletionProvider):
		s.logger.Warn("completion provider error", zap.Error(err))
		writeError(w, http.StatusBadGateway, "completion_provider_error", domain.ErrCompletionProvider.Error())
	case errors.Is(err, domain.ErrVectorDimMismatch):
		s.logger.Error("vector dimension mismatch", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "vector_dim_mismatch", domain.ErrVectorDimMismatch.Error())
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
