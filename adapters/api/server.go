// Package api exposes the report engine over HTTP as a small JSON
// service.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fairlens/app"
	"fairlens/domain/core"
	"fairlens/internal/logging"
)

// Server wraps the report service behind a chi router
type Server struct {
	router  *chi.Mux
	service *app.ReportService
	log     *logging.Logger
}

// NewServer creates the HTTP server around a report service
func NewServer(service *app.ReportService, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Default
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		log:     log,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/api/reports/summary", s.handleSummary)
	s.router.Post("/api/reports/bias", s.handleBias)
	s.router.Post("/api/reports/performance", s.handlePerformance)
	s.router.Post("/api/reports/data", s.handleData)
	s.router.Post("/api/reports/audit", s.handleAudit)
}

// Handler returns the assembled http handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the server on the given port.
func (s *Server) ListenAndServe(port string) error {
	s.log.Info("report API listening on :%s", port)
	return http.ListenAndServe(":"+port, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	req, payload, err := decodeRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if payload.PrtcAttr == nil {
		s.writeError(w, core.Validation("summary reports require prtc_attr"))
		return
	}
	res, err := s.service.Summary(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeResult(res))
}

func (s *Server) handleBias(w http.ResponseWriter, r *http.Request) {
	req, _, err := decodeRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.service.Bias(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeResult(res))
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	req, _, err := decodeRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.service.Performance(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeResult(res))
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	req, payload, err := decodeRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	Y, err := payload.targetTable()
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := s.service.Data(r.Context(), req, Y, payload.Targets)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeResult(res))
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	req, payload, err := decodeRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if payload.PrtcAttr == nil {
		s.writeError(w, core.Validation("audits require prtc_attr"))
		return
	}
	res, err := s.service.FullAudit(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeAudit(res))
}

// writeError maps application error codes onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch core.GetCode(err) {
	case core.CodeValidationError, core.CodeConfigInvalid:
		status = http.StatusBadRequest
	case core.CodeIOError:
		status = http.StatusUnprocessableEntity
	}
	s.log.Warn("request failed (%d): %v", status, err)
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  core.GetCode(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
