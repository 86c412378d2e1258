// ABOUTME: Activity REST handlers
// ABOUTME: CRUD, filtered listing, and completion endpoints
package api

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

type activityInput struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ScheduledAt string `json:"scheduledAt"`
	ContactID   string `json:"contactId"`
	CompanyID   string `json:"companyId"`
	DealID      string `json:"dealId"`
}

func (in *activityInput) validate() []Issue {
	var issues []Issue
	if !models.ValidActivityType(models.ActivityType(in.Type)) {
		issues = append(issues, Issue{Field: "type", Message: "unknown activity type"})
	}
	if in.Title == "" {
		issues = append(issues, Issue{Field: "title", Message: "title is required"})
	}
	if in.ScheduledAt != "" {
		if _, err := time.Parse(time.RFC3339, in.ScheduledAt); err != nil {
			issues = append(issues, Issue{Field: "scheduledAt", Message: "must be an RFC 3339 timestamp"})
		}
	}
	for field, v := range map[string]string{"contactId": in.ContactID, "companyId": in.CompanyID, "dealId": in.DealID} {
		if v != "" {
			if _, err := uuid.Parse(v); err != nil {
				issues = append(issues, Issue{Field: field, Message: "must be a UUID"})
			}
		}
	}
	if in.ContactID == "" && in.CompanyID == "" && in.DealID == "" {
		issues = append(issues, Issue{Field: "contactId", Message: "at least one of contactId, companyId, dealId is required"})
	}
	return issues
}

func (in *activityInput) apply(activity *models.Activity) {
	activity.Type = models.ActivityType(in.Type)
	activity.Title = in.Title
	activity.Description = in.Description
	activity.ScheduledAt = optionalTime(in.ScheduledAt)
	activity.ContactID = optionalUUID(in.ContactID)
	activity.CompanyID = optionalUUID(in.CompanyID)
	activity.DealID = optionalUUID(in.DealID)
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	var filter db.ActivityFilter
	q := r.URL.Query()
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

	activities, total, err := db.ListActivities(r.Context(), s.db, filter, page, limit)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}

	writePage(w, activities, page, limit, total)
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var in activityInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if issues := in.validate(); issues != nil {
		writeValidationError(w, issues)
		return
	}

	activity := &models.Activity{}
	in.apply(activity)

	if err := db.CreateActivity(r.Context(), s.db, activity); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, activity)
}

func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	activity, err := db.GetActivity(r.Context(), s.db, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

func (s *Server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in activityInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if issues := in.validate(); issues != nil {
		writeValidationError(w, issues)
		return
	}

	activity, err := db.GetActivity(r.Context(), s.db, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	in.apply(activity)
	if err := db.UpdateActivity(r.Context(), s.db, activity); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := db.DeleteActivity(r.Context(), s.db, id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Activity deleted"})
}

func (s *Server) handleCompleteActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in struct {
		CompletedAt string `json:"completedAt"`
	}
	// An empty body means "complete now".
	if err := decodeJSON(r, &in); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var completedAt time.Time
	if in.CompletedAt != "" {
		t, err := time.Parse(time.RFC3339, in.CompletedAt)
		if err != nil {
			writeValidationError(w, []Issue{{Field: "completedAt", Message: "must be an RFC 3339 timestamp"}})
			return
		}
		completedAt = t
	}

	activity, err := db.CompleteActivity(r.Context(), s.db, id, completedAt)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, activity)
}
