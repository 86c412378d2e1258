// ABOUTME: Email template REST handlers
// ABOUTME: CRUD endpoints for reusable outbound email templates
package api

import (
	"net/http"

	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

type templateInput struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (in *templateInput) validate() []Issue {
	var issues []Issue
	if in.Name == "" {
		issues = append(issues, Issue{Field: "name", Message: "name is required"})
	}
	if in.Subject == "" {
		issues = append(issues, Issue{Field: "subject", Message: "subject is required"})
	}
	if in.Body == "" {
		issues = append(issues, Issue{Field: "body", Message: "body is required"})
	}
	return issues
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := db.ListEmailTemplates(r.Context(), s.db)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if templates == nil {
		templates = []models.EmailTemplate{}
	}

	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var in templateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if issues := in.validate(); issues != nil {
		writeValidationError(w, issues)
		return
	}

	tmpl := &models.EmailTemplate{Name: in.Name, Subject: in.Subject, Body: in.Body}
	if err := db.CreateEmailTemplate(r.Context(), s.db, tmpl); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tmpl)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tmpl, err := db.GetEmailTemplate(r.Context(), s.db, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tmpl)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in templateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if issues := in.validate(); issues != nil {
		writeValidationError(w, issues)
		return
	}

	tmpl, err := db.GetEmailTemplate(r.Context(), s.db, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	tmpl.Name = in.Name
	tmpl.Subject = in.Subject
	tmpl.Body = in.Body
	if err := db.UpdateEmailTemplate(r.Context(), s.db, tmpl); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tmpl)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := db.DeleteEmailTemplate(r.Context(), s.db, id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Email template deleted"})
}
