package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Clark-Hu/movie-browser/internal/cache"
	"github.com/Clark-Hu/movie-browser/internal/domain"
	"github.com/Clark-Hu/movie-browser/internal/repository"
)

const (
	notFoundResult  = "Not found"
	defaultTopK     = 10
	cacheStatusHead = "X-Cache"
)

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type resultResponse struct {
	Result interface{} `json:"result"`
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

// errBadParam marks query parameter errors so handlers can answer 400.
type errBadParam struct {
	msg string
}

func (e errBadParam) Error() string { return e.msg }

func badParam(format string, args ...interface{}) error {
	return errBadParam{msg: fmt.Sprintf(format, args...)}
}

func (s *Server) handleSearchText(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	text := strings.TrimSpace(query.Get("query"))
	if text == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "query is required")
		return
	}
	opts, err := buildSearchOptions(query, s.cfg.DefaultK)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	s.serveCached(w, r, func(ctx context.Context) (interface{}, error) {
		movies, err := s.catalog.SearchText(ctx, text, opts)
		if err != nil {
			return nil, err
		}
		if len(movies) == 0 {
			return []resultResponse{{Result: notFoundResult}}, nil
		}
		return movies, nil
	})
}

func (s *Server) handleSearchTag(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	tag := strings.TrimSpace(query.Get("tag"))
	if tag == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "tag is required")
		return
	}
	opts, err := buildSearchOptions(query, s.cfg.DefaultK)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	s.serveCached(w, r, func(ctx context.Context) (interface{}, error) {
		return s.catalog.SearchTag(ctx, tag, opts)
	})
}

func (s *Server) handleSearchRelevancy(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	isTag := false
	if raw := strings.TrimSpace(query.Get("is_tag")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid is_tag value")
			return
		}
		isTag = parsed
	}
	k, err := parseK(query, s.cfg.DefaultK)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	text := query.Get("query")

	s.serveCached(w, r, func(ctx context.Context) (interface{}, error) {
		return s.catalog.SearchRelevancy(ctx, text, isTag, k)
	})
}

func (s *Server) handleCommonTags(w http.ResponseWriter, r *http.Request) {
	minOccurrences := s.cfg.TagsMinOccurrences
	if raw := strings.TrimSpace(r.URL.Query().Get("n_occurences")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "n_occurences must be a positive integer")
			return
		}
		minOccurrences = n
	}

	s.serveCached(w, r, func(ctx context.Context) (interface{}, error) {
		tags, err := s.catalog.CommonTags(ctx, minOccurrences)
		if err != nil {
			return nil, err
		}
		return tagsResponse{Tags: tags}, nil
	})
}

func (s *Server) handleTopDocuments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	text := strings.TrimSpace(query.Get("query"))
	if text == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "query is required")
		return
	}
	k, err := parseK(query, defaultTopK)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	if k == 0 {
		k = defaultTopK
	}

	s.serveCached(w, r, func(ctx context.Context) (interface{}, error) {
		docs, err := s.catalog.TopDocuments(ctx, text, k)
		if err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return resultResponse{Result: notFoundResult}, nil
		}
		return resultResponse{Result: docs}, nil
	})
}

// serveCached answers from the response cache when possible and otherwise
// runs load, stores its encoded result, and writes it.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, load func(ctx context.Context) (interface{}, error)) {
	key := cache.Key(r.URL.Path, r.URL.Query())
	if body, ok := s.cache.Get(r.Context(), key); ok {
		w.Header().Set(cacheStatusHead, "HIT")
		s.writeBody(w, http.StatusOK, body)
		return
	}

	payload, err := load(r.Context())
	if err != nil {
		s.logger.Printf("%s failed: %v", r.URL.Path, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to query catalog")
		return
	}
	if movies, ok := payload.([]domain.Movie); ok && movies == nil {
		payload = []domain.Movie{}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Printf("failed to encode response: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to encode response")
		return
	}
	s.cache.Set(r.Context(), key, body)
	if s.cache.Enabled() {
		w.Header().Set(cacheStatusHead, "MISS")
	}
	s.writeBody(w, http.StatusOK, body)
}

// buildSearchOptions reads the optional sort, order, date and k hints.
func buildSearchOptions(query url.Values, defaultK int) (repository.SearchOptions, error) {
	var opts repository.SearchOptions

	if val := strings.TrimSpace(query.Get("sort_by")); val != "" {
		if !repository.ValidSortField(val) {
			return opts, badParam("invalid sort_by value %q", val)
		}
		opts.SortBy = val
	}
	if val := strings.ToLower(strings.TrimSpace(query.Get("order"))); val != "" {
		switch val {
		case "asc", "ascending":
			opts.Order = "ascending"
		case "desc", "descending":
			opts.Order = "descending"
		default:
			return opts, badParam("invalid order value %q", val)
		}
	}
	if val := strings.TrimSpace(query.Get("date_filter")); val != "" {
		if !repository.ValidDateFilter(val) {
			return opts, badParam("invalid date_filter value %q", val)
		}
		opts.DateFilter = val
	}
	k, err := parseK(query, defaultK)
	if err != nil {
		return opts, err
	}
	opts.Limit = k
	return opts, nil
}

func parseK(query url.Values, fallback int) (int, error) {
	val := strings.TrimSpace(query.Get("k"))
	if val == "" {
		return fallback, nil
	}
	k, err := strconv.Atoi(val)
	if err != nil || k < 0 {
		return 0, badParam("invalid k value")
	}
	return k, nil
}

func (s *Server) writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Printf("failed to write response: %v", err)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
