// ABOUTME: REST API server with routing, middleware, and graceful shutdown
// ABOUTME: Exposes the CRM entities as JSON endpoints
package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
)

type Server struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewServer(database *sql.DB, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{db: database, logger: logger}
}

// Handler builds the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/companies", s.handleListCompanies)
	mux.HandleFunc("POST /api/companies", s.handleCreateCompany)
	mux.HandleFunc("GET /api/companies/{id}", s.handleGetCompany)
	mux.HandleFunc("PUT /api/companies/{id}", s.handleUpdateCompany)
	mux.HandleFunc("DELETE /api/companies/{id}", s.handleDeleteCompany)
	mux.HandleFunc("GET /api/companies/{id}/delete-preview", s.handleCompanyDeletePreview)
	mux.HandleFunc("GET /api/companies/{id}/tags", s.handleListCompanyTags)
	mux.HandleFunc("POST /api/companies/{id}/tags", s.handleAssignCompanyTag)
	mux.HandleFunc("DELETE /api/companies/{id}/tags/{tagId}", s.handleUnassignCompanyTag)

	mux.HandleFunc("GET /api/contacts", s.handleListContacts)
	mux.HandleFunc("POST /api/contacts", s.handleCreateContact)
	mux.HandleFunc("GET /api/contacts/{id}", s.handleGetContact)
	mux.HandleFunc("PUT /api/contacts/{id}", s.handleUpdateContact)
	mux.HandleFunc("DELETE /api/contacts/{id}", s.handleDeleteContact)
	mux.HandleFunc("GET /api/contacts/{id}/delete-preview", s.handleContactDeletePreview)
	mux.HandleFunc("GET /api/contacts/{id}/tags", s.handleListContactTags)
	mux.HandleFunc("POST /api/contacts/{id}/tags", s.handleAssignContactTag)
	mux.HandleFunc("DELETE /api/contacts/{id}/tags/{tagId}", s.handleUnassignContactTag)

	mux.HandleFunc("GET /api/deals", s.handleListDeals)
	mux.HandleFunc("POST /api/deals", s.handleCreateDeal)
	mux.HandleFunc("GET /api/deals/summary", s.handleDealSummary)
	mux.HandleFunc("GET /api/deals/{id}", s.handleGetDeal)
	mux.HandleFunc("PUT /api/deals/{id}", s.handleUpdateDeal)
	mux.HandleFunc("DELETE /api/deals/{id}", s.handleDeleteDeal)
	mux.HandleFunc("PATCH /api/deals/{id}/stage", s.handleDealStage)
	mux.HandleFunc("GET /api/deals/{id}/tags", s.handleListDealTags)
	mux.HandleFunc("POST /api/deals/{id}/tags", s.handleAssignDealTag)
	mux.HandleFunc("DELETE /api/deals/{id}/tags/{tagId}", s.handleUnassignDealTag)

	mux.HandleFunc("GET /api/activities", s.handleListActivities)
	mux.HandleFunc("POST /api/activities", s.handleCreateActivity)
	mux.HandleFunc("GET /api/activities/{id}", s.handleGetActivity)
	mux.HandleFunc("PUT /api/activities/{id}", s.handleUpdateActivity)
	mux.HandleFunc("DELETE /api/activities/{id}", s.handleDeleteActivity)
	mux.HandleFunc("PATCH /api/activities/{id}/complete", s.handleCompleteActivity)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PUT /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("PATCH /api/tasks/{id}/complete", s.handleToggleTask)

	mux.HandleFunc("GET /api/tags", s.handleListTags)
	mux.HandleFunc("POST /api/tags", s.handleCreateTag)
	mux.HandleFunc("PUT /api/tags/{id}", s.handleUpdateTag)
	mux.HandleFunc("DELETE /api/tags/{id}", s.handleDeleteTag)

	mux.HandleFunc("GET /api/email-templates", s.handleListTemplates)
	mux.HandleFunc("POST /api/email-templates", s.handleCreateTemplate)
	mux.HandleFunc("GET /api/email-templates/{id}", s.handleGetTemplate)
	mux.HandleFunc("PUT /api/email-templates/{id}", s.handleUpdateTemplate)
	mux.HandleFunc("DELETE /api/email-templates/{id}", s.handleDeleteTemplate)

	mux.HandleFunc("GET /api/search", s.handleSearch)

	return s.recoverMiddleware(s.requestLogMiddleware(requestIDMiddleware(mux)))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type requestIDKey struct{}

const requestIDHeader = "X-Request-Id"

// requestIDMiddleware tags each request with a ULID unless the client
// already sent one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the request's ULID, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", RequestID(r.Context()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "path", r.URL.Path)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
