// ABOUTME: Contact REST handlers
// ABOUTME: CRUD, delete preview, and tag assignment endpoints
package api

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^[\d\s\-()+]+$`)
)

type contactInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Position  string `json:"position"`
	CompanyID string `json:"companyId"`
	Memo      string `json:"memo"`
}

func (in *contactInput) validate() []Issue {
	var issues []Issue
	if in.Name == "" {
		issues = append(issues, Issue{Field: "name", Message: "name is required"})
	}
	if in.Email != "" && !emailPattern.MatchString(in.Email) {
		issues = append(issues, Issue{Field: "email", Message: "must be a valid email address"})
	}
	if in.Phone != "" && !phonePattern.MatchString(in.Phone) {
		issues = append(issues, Issue{Field: "phone", Message: "must be a valid phone number"})
	}
	if in.CompanyID != "" {
		if _, err := uuid.Parse(in.CompanyID); err != nil {
			issues = append(issues, Issue{Field: "companyId", Message: "must be a UUID"})
		}
	}
	return issues
}

func (in *contactInput) apply(contact *models.Contact) {
	contact.Name = in.Name
	contact.Email = in.Email
	contact.Phone = in.Phone
	contact.Position = in.Position
	contact.CompanyID = optionalUUID(in.CompanyID)
	contact.Memo = in.Memo
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	var companyID *uuid.UUID
	if v := r.URL.Query().Get("companyId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeValidationError(w, []Issue{{Field: "companyId", Message: "must be a UUID"}})
			return
		}
		companyID = &id
	}

	contacts, total, err := db.ListContacts(r.Context(), s.db, companyID, page, limit)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}

	writePage(w, contacts, page, limit, total)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var in contactInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if issues := in.validate(); issues != nil {
		writeValidationError(w, issues)
		return
	}

	contact := &models.Contact{}
	in.apply(contact)

	if err := db.CreateContact(r.Context(), s.db, contact); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	contact, err := db.GetContact(r.Context(), s.db, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in contactInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if issues := in.validate(); issues != nil {
		writeValidationError(w, issues)
		return
	}

	contact, err := db.GetContact(r.Context(), s.db, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	in.apply(contact)
	if err := db.UpdateContact(r.Context(), s.db, contact); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := db.DeleteContact(r.Context(), s.db, id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Contact deleted"})
}

func (s *Server) handleContactDeletePreview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	impact, err := db.ContactDeletePreview(r.Context(), s.db, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, impact)
}

func (s *Server) handleListContactTags(w http.ResponseWriter, r *http.Request) {
	s.listEntityTags(w, r, db.TagEntityContact)
}

func (s *Server) handleAssignContactTag(w http.ResponseWriter, r *http.Request) {
	s.assignEntityTag(w, r, db.TagEntityContact)
}

func (s *Server) handleUnassignContactTag(w http.ResponseWriter, r *http.Request) {
	s.unassignEntityTag(w, r, db.TagEntityContact)
}
