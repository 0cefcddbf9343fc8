package http

import (
	"net/http"

	"studentspend/internal/assistant"
	"studentspend/internal/log"
)

type askRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, log.OpAsk, err)
		return
	}

	reply, err := s.ledger.Ask(r.Context(), sanitizeInput(req.Query))
	if err != nil {
		s.writeError(w, r, log.OpAsk, err)
		return
	}

	NewJSONResponse().
		Field("role", assistant.RoleAssistant).
		Field("reply", reply).
		Write(w)
}

func (s *Server) handleGreeting(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().
		Field("role", assistant.RoleAssistant).
		Field("reply", s.ledger.Greeting()).
		Write(w)
}
