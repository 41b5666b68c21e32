package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pokedex-bff/pokedex/pkg/pokemon"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	resp, err := s.pokedex.List(r.Context(), listParams(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.pokedex.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, p)
}

func (s *Server) handleEvolution(w http.ResponseWriter, r *http.Request) {
	tree, err := s.pokedex.Evolution(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, r, tree)
}

// listParams reads the list query. Malformed numbers fall back to the
// service defaults rather than failing the request.
func listParams(r *http.Request) pokemon.ListParams {
	q := r.URL.Query()
	return pokemon.ListParams{
		Page:        queryInt(q.Get("page")),
		Limit:       queryInt(q.Get("limit")),
		Search:      q.Get("search"),
		Type:        q.Get("type"),
		Ability:     q.Get("ability"),
		SkipDetails: queryBool(q.Get("skip_details")),
	}
}

func queryInt(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

func queryBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pokemon.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, pokemon.ErrInvalidArgument):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pokemon.ErrBadGateway):
		writeJSONError(w, http.StatusBadGateway, "upstream pokemon api unavailable")
	default:
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.Error(err),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}
