// ABOUTME: Cross-entity search REST handler
// ABOUTME: Exposes the db.Search LIKE matcher as GET /api/search
package api

import (
	"net/http"
	"strconv"

	"github.com/sodamhq/sodam/db"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 50 {
			writeValidationError(w, []Issue{{Field: "limit", Message: "must be between 1 and 50"}})
			return
		}
		limit = n
	}

	results, err := db.Search(r.Context(), s.db, q, limit)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}
