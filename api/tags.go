// ABOUTME: Tag REST handlers
// ABOUTME: Tag CRUD plus shared assignment handlers for all entity types
package api

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type tagInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (in *tagInput) validate() []Issue {
	var issues []Issue
	if in.Name == "" {
		issues = append(issues, Issue{Field: "name", Message: "name is required"})
	}
	if len(in.Name) > 50 {
		issues = append(issues, Issue{Field: "name", Message: "name must be 50 characters or less"})
	}
	if !hexColorPattern.MatchString(in.Color) {
		issues = append(issues, Issue{Field: "color", Message: "must be a hex color like #FF5733"})
	}
	return issues
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := db.ListTags(r.Context(), s.db)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}

	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var in tagInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if issues := in.validate(); issues != nil {
		writeValidationError(w, issues)
		return
	}

	tag := &models.Tag{Name: in.Name, Color: in.Color}
	if err := db.CreateTag(r.Context(), s.db, tag); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in tagInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if issues := in.validate(); issues != nil {
		writeValidationError(w, issues)
		return
	}

	tag := &models.Tag{ID: id, Name: in.Name, Color: in.Color}
	if err := db.UpdateTag(r.Context(), s.db, tag); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tag)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := db.DeleteTag(r.Context(), s.db, id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Tag deleted"})
}

// Shared tag-assignment handlers parameterized by entity type.

func (s *Server) listEntityTags(w http.ResponseWriter, r *http.Request, entity db.TagEntity) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tags, err := db.ListEntityTags(r.Context(), s.db, entity, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}

	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) assignEntityTag(w http.ResponseWriter, r *http.Request, entity db.TagEntity) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in struct {
		TagID string `json:"tagId"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	tagID, err := uuid.Parse(in.TagID)
	if err != nil {
		writeValidationError(w, []Issue{{Field: "tagId", Message: "must be a UUID"}})
		return
	}

	if err := db.AssignTag(r.Context(), s.db, entity, id, tagID); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Tag assigned"})
}

func (s *Server) unassignEntityTag(w http.ResponseWriter, r *http.Request, entity db.TagEntity) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	tagID, ok := pathID(w, r, "tagId")
	if !ok {
		return
	}

	if err := db.UnassignTag(r.Context(), s.db, entity, id, tagID); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Tag removed"})
}
