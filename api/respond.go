// ABOUTME: JSON response and request helpers for the REST API
// ABOUTME: Provides writeJSON, error payloads, validation issues, and pagination
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Issue describes one failed validation rule.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeValidationError(w http.ResponseWriter, issues []Issue) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "Validation failed",
		"issues": issues,
	})
}

// writeStoreError maps database sentinel errors onto HTTP statuses.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, db.ErrCompanyNotFound):
		writeError(w, http.StatusNotFound, "Company not found")
	case errors.Is(err, db.ErrContactNotFound):
		writeError(w, http.StatusNotFound, "Contact not found")
	case errors.Is(err, db.ErrDealNotFound):
		writeError(w, http.StatusNotFound, "Deal not found")
	case errors.Is(err, db.ErrActivityNotFound):
		writeError(w, http.StatusNotFound, "Activity not found")
	case errors.Is(err, db.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	case errors.Is(err, db.ErrTagNotFound):
		writeError(w, http.StatusNotFound, "Tag not found")
	case errors.Is(err, db.ErrTemplateNotFound):
		writeError(w, http.StatusNotFound, "Email template not found")
	case errors.Is(err, db.ErrStaleDeal):
		writeError(w, http.StatusConflict, "Deal has been modified by another user. Please refresh and try again.")
	case errors.Is(err, db.ErrDuplicateTag):
		writeError(w, http.StatusConflict, "Tag name already exists")
	default:
		s.logger.Error("store error", "error", err, "path", r.URL.Path, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// pathID parses the {id} path segment; reports the error itself.
func pathID(w http.ResponseWriter, r *http.Request, segment string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(segment))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// Pagination is the list-envelope metadata block.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

func paginate(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

func writePage(w http.ResponseWriter, data any, page, limit, total int) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       data,
		"pagination": paginate(page, limit, total),
	})
}

// pageParams reads ?page= and ?limit= with the original system's defaults.
func pageParams(r *http.Request) (page, limit int) {
	page = 1
	limit = 20
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	return page, limit
}
