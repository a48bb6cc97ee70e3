package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/glassroot/glassroot/internal/apperr"
	"github.com/glassroot/glassroot/internal/models"
)

// maxBodyBytes bounds POST bodies; the largest valid document is well below it.
const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.HealthResponse{
		OK:        true,
		Timestamp: s.now().UnixMilli(),
		Env:       "runtime",
		Bindings:  s.docs.Bindings(),
	})
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, http.StatusBadRequest, apperr.Validation("", "request body too large"))
			return
		}
		// Malformed JSON is validated as an empty document.
		input = models.DocumentInput{}
	}
	s.logger.Debug("create document request", zap.String("title", input.Title), zap.Int("content_len", len(input.Content)))
	created, err := s.docs.Create(r.Context(), input)
	if err != nil {
		s.fail(w, r, "create document failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, created)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	list, err := s.docs.List(r.Context())
	if err != nil {
		s.fail(w, r, "list documents failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "get document failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	_, hasLimit := params["limit"]
	query, err := models.ParseSearchQuery(params.Get("q"), params.Get("limit"), hasLimit)
	if err != nil {
		s.fail(w, r, "invalid search", err)
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	response, err := s.docs.Search(r.Context(), query)
	if err != nil {
		s.fail(w, r, "search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, r, http.StatusNotFound, &apperr.NotFoundError{})
}

// fail maps err onto its status, logs server-side failures and writes the envelope.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.String("correlation_id", CorrelationID(r.Context())), zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Error(err))
	}
	s.respondError(w, r, status, err)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.respondJSON(w, status, apperr.NewEnvelope(err, status, CorrelationID(r.Context()), s.now()))
}
