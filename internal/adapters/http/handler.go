package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/PabloGalante/planora/internal/domain"
	"github.com/PabloGalante/planora/internal/observability"
)

// maxBodyBytes bounds a request, inline media included.
const maxBodyBytes = 20 << 20

// Pipeline runs one assistant turn.
type Pipeline interface {
	Handle(ctx context.Context, in domain.InboundMessage) (*domain.PipelineResponse, error)
}

type Server struct {
	pipeline Pipeline
	auth     domain.Authenticator
}

func NewServer(pipeline Pipeline, auth domain.Authenticator, metrics *observability.Metrics) http.Handler {
	s := &Server{pipeline: pipeline, auth: auth}

	r := chi.NewRouter()
	r.Use(withRequestID, withLogging, middleware.Recoverer, withCORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.withAuth)
		r.Post("/assistant", s.handleAssistant)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		methodNotAllowed(w)
	})
	return r
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req assistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return
		}
		badRequest(w, "invalid JSON body")
		return
	}

	in, err := req.toDomain(principalFrom(r.Context()))
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	out, err := s.pipeline.Handle(r.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			unauthorized(w)
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAssistantResponse(out))
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{
		"error": "unauthorized",
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
