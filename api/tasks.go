// ABOUTME: Task REST handlers
// ABOUTME: CRUD, filtered listing, and completion toggle endpoints
package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

type taskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Priority    string `json:"priority"`
	ContactID   string `json:"contactId"`
	CompanyID   string `json:"companyId"`
	DealID      string `json:"dealId"`
}

func (in *taskInput) validate() []Issue {
	var issues []Issue
	if in.Title == "" {
		issues = append(issues, Issue{Field: "title", Message: "title is required"})
	}
	if in.Priority != "" && !models.ValidPriority(models.TaskPriority(in.Priority)) {
		issues = append(issues, Issue{Field: "priority", Message: "unknown priority"})
	}
	if in.DueDate != "" {
		if _, err := time.Parse(time.RFC3339, in.DueDate); err != nil {
			issues = append(issues, Issue{Field: "dueDate", Message: "must be an RFC 3339 timestamp"})
		}
	}
	for field, v := range map[string]string{"contactId": in.ContactID, "companyId": in.CompanyID, "dealId": in.DealID} {
		if v != "" {
			if _, err := uuid.Parse(v); err != nil {
				issues = append(issues, Issue{Field: field, Message: "must be a UUID"})
			}
		}
	}
	return issues
}

func (in *taskInput) apply(task *models.Task) {
	task.Title = in.Title
	task.Description = in.Description
	task.DueDate = optionalTime(in.DueDate)
	if in.Priority != "" {
		task.Priority = models.TaskPriority(in.Priority)
	}
	task.ContactID = optionalUUID(in.ContactID)
	task.CompanyID = optionalUUID(in.CompanyID)
	task.DealID = optionalUUID(in.DealID)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()

	var filter db.TaskFilter
	if v := q.Get("completed"); v != "" {
		completed := v == "true"
		filter.Completed = &completed
	}
	if v := q.Get("priority"); v != "" {
		p := models.TaskPriority(v)
		if !models.ValidPriority(p) {
			writeValidationError(w, []Issue{{Field: "priority", Message: "unknown priority"}})
			return
		}
		filter.Priority = p
	}
	for field, dst := range map[string]**uuid.UUID{
		"contactId": &filter.ContactID,
		"companyId": &filter.CompanyID,
		"dealId":    &filter.DealID,
	} {
		if v := q.Get(field); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				writeValidationError(w, []Issue{{Field: field, Message: "must be a UUID"}})
				return
			}
			*dst = &id
		}
	}

	tasks, total, err := db.ListTasks(r.Context(), s.db, filter, page, limit)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	writePage(w, tasks, page, limit, total)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in taskInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if issues := in.validate(); issues != nil {
		writeValidationError(w, issues)
		return
	}

	task := &models.Task{}
	in.apply(task)

	if err := db.CreateTask(r.Context(), s.db, task); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	task, err := db.GetTask(r.Context(), s.db, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in taskInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if issues := in.validate(); issues != nil {
		writeValidationError(w, issues)
		return
	}

	task, err := db.GetTask(r.Context(), s.db, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	in.apply(task)
	if err := db.UpdateTask(r.Context(), s.db, task); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := db.DeleteTask(r.Context(), s.db, id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	task, err := db.ToggleTaskComplete(r.Context(), s.db, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}
