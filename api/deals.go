// ABOUTME: Deal REST handlers
// ABOUTME: CRUD, pipeline summary, and the optimistic-locked stage update
package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

type dealInput struct {
	Title             string `json:"title"`
	Amount            int64  `json:"amount"`
	Stage             string `json:"stage"`
	ExpectedCloseDate string `json:"expectedCloseDate"`
	ContactID         string `json:"contactId"`
	CompanyID         string `json:"companyId"`
	Memo              string `json:"memo"`
}

func (in *dealInput) validate() []Issue {
	var issues []Issue
	if in.Title == "" {
		issues = append(issues, Issue{Field: "title", Message: "title is required"})
	}
	if in.Amount < 0 {
		issues = append(issues, Issue{Field: "amount", Message: "amount must be zero or positive"})
	}
	if in.Stage != "" && !models.ValidStage(models.DealStage(in.Stage)) {
		issues = append(issues, Issue{Field: "stage", Message: "unknown stage"})
	}
	if in.ExpectedCloseDate != "" {
		if _, err := time.Parse(time.RFC3339, in.ExpectedCloseDate); err != nil {
			issues = append(issues, Issue{Field: "expectedCloseDate", Message: "must be an RFC 3339 timestamp"})
		}
	}
	if in.ContactID != "" {
		if _, err := uuid.Parse(in.ContactID); err != nil {
			issues = append(issues, Issue{Field: "contactId", Message: "must be a UUID"})
		}
	}
	if in.CompanyID != "" {
		if _, err := uuid.Parse(in.CompanyID); err != nil {
			issues = append(issues, Issue{Field: "companyId", Message: "must be a UUID"})
		}
	}
	return issues
}

func (in *dealInput) apply(deal *models.Deal) {
	deal.Title = in.Title
	deal.Amount = in.Amount
	deal.Stage = models.DealStage(in.Stage)
	deal.Memo = in.Memo
	deal.ExpectedCloseDate = optionalTime(in.ExpectedCloseDate)
	deal.ContactID = optionalUUID(in.ContactID)
	deal.CompanyID = optionalUUID(in.CompanyID)
}

func optionalTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	stage := models.DealStage(r.URL.Query().Get("stage"))
	if stage != "" && !models.ValidStage(stage) {
		writeValidationError(w, []Issue{{Field: "stage", Message: "unknown stage"}})
		return
	}

	page, limit := pageParams(r)
	deals, total, err := db.ListDeals(r.Context(), s.db, stage, page, limit)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if deals == nil {
		deals = []models.Deal{}
	}

	writePage(w, deals, page, limit, total)
}

func (s *Server) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	var in dealInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if issues := in.validate(); issues != nil {
		writeValidationError(w, issues)
		return
	}

	deal := &models.Deal{}
	in.apply(deal)

	if err := db.CreateDeal(r.Context(), s.db, deal); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, deal)
}

func (s *Server) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	deal, err := db.GetDeal(r.Context(), s.db, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deal)
}

func (s *Server) handleUpdateDeal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in dealInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if issues := in.validate(); issues != nil {
		writeValidationError(w, issues)
		return
	}

	deal, err := db.GetDeal(r.Context(), s.db, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	// PUT without stage keeps the current one; stage moves with conflict
	// detection go through the stage endpoint.
	prevStage := deal.Stage
	in.apply(deal)
	if in.Stage == "" {
		deal.Stage = prevStage
	}

	if err := db.UpdateDeal(r.Context(), s.db, deal); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deal)
}

func (s *Server) handleDeleteDeal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := db.DeleteDeal(r.Context(), s.db, id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Deal deleted"})
}

func (s *Server) handleDealSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := db.DealStageSummary(r.Context(), s.db)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"stages": summary})
}

type stageUpdateInput struct {
	Stage     string `json:"stage"`
	UpdatedAt string `json:"updatedAt"`
}

// handleDealStage is the optimistic-locked stage move. The body carries the
// requested stage and the updatedAt the client captured when it last read
// the deal; db.TransitionStage enforces the tolerance window and emits the
// audit activity atomically.
func (s *Server) handleDealStage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in stageUpdateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var issues []Issue
	if !models.ValidStage(models.DealStage(in.Stage)) {
		issues = append(issues, Issue{Field: "stage", Message: "unknown stage"})
	}
	clientUpdatedAt, err := time.Parse(time.RFC3339, in.UpdatedAt)
	if err != nil {
		issues = append(issues, Issue{Field: "updatedAt", Message: "must be an RFC 3339 timestamp"})
	}
	if issues != nil {
		writeValidationError(w, issues)
		return
	}

	deal, err := db.TransitionStage(r.Context(), s.db, id, models.DealStage(in.Stage), clientUpdatedAt)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deal)
}

func (s *Server) handleListDealTags(w http.ResponseWriter, r *http.Request) {
	s.listEntityTags(w, r, db.TagEntityDeal)
}

func (s *Server) handleAssignDealTag(w http.ResponseWriter, r *http.Request) {
	s.assignEntityTag(w, r, db.TagEntityDeal)
}

func (s *Server) handleUnassignDealTag(w http.ResponseWriter, r *http.Request) {
	s.unassignEntityTag(w, r, db.TagEntityDeal)
}
