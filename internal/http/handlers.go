package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"studentspend/internal/core"
	"studentspend/internal/log"
	"studentspend/internal/services"
	"studentspend/internal/store"
)

var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidCategory,
	core.ErrInvalidDate,
	core.ErrEmptyDescription,
	core.ErrDescriptionLong,
	core.ErrDescriptionUTF8,
	core.ErrInvalidGoal,
	core.ErrInvalidUser,
	services.ErrEmptyQuery,
}

// writeError maps service and validation errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, errBadRequest):
		BadRequestError(w, err.Error())
		return
	case errors.Is(err, services.ErrExpenseNotFound), errors.Is(err, store.ErrNotFound):
		NotFoundError(w, err.Error())
		return
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		w.WriteHeader(499)
		return
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			UnprocessableEntityError(w, err.Error())
			return
		}
	}

	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, nil)
	InternalServerError(w)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := s.ledger.Ready(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err.Error())
		ErrorResponse(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleMetrics reports request, security and cache counters in a
// Prometheus-like text format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metrics := []struct {
		name, help, kind string
		value            int64
	}{
		{"http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests},
		{"http_response_time_avg_microseconds", "Average response time", "gauge", traceMetrics.AverageResponseTime},
		{"rate_limit_rejected_total", "Requests rejected by the rate limiter", "counter", rateLimitMetrics.Rejected},
		{"rate_limit_active_clients", "Clients tracked by the rate limiter", "gauge", int64(s.rateLimiter.ActiveClients())},
		{"security_suspicious_requests_total", "Requests flagged as suspicious", "counter", securityMetrics.SuspiciousRequests},
		{"stats_cache_size", "Entries in the stats cache", "gauge", int64(s.ledger.StatsCacheSize())},
		{"ledger_expenses", "Expenses in the ledger", "gauge", int64(len(s.ledger.Expenses()))},
		{"uptime_seconds", "Seconds since the server was created", "gauge", int64(s.now().Sub(s.startedAt).Seconds())},
	}
	for _, m := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", m.name, m.help, m.name, m.kind, m.name, m.value)
	}
}
