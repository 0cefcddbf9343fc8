package http

import (
	"net/http"

	"studentspend/internal/core"
	"studentspend/internal/log"
)

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	u, err := s.ledger.CurrentUser(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Field("user", u).Write(w)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var u core.User
	if err := decodeJSON(w, r, &u); err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	ev, err := s.ledger.StartSession(r.Context(), u)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}

	NewJSONResponse().
		Field("user", u).
		Notify(ev).
		Write(w)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	ev, err := s.ledger.EndSession(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}
	NewJSONResponse().
		Notify(ev).
		Write(w)
}
