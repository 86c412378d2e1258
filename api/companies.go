// ABOUTME: Company REST handlers
// ABOUTME: CRUD, delete preview, and tag assignment endpoints
package api

import (
	"net/http"
	"net/url"

	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

type companyInput struct {
	Name          string `json:"name"`
	Industry      string `json:"industry"`
	Website       string `json:"website"`
	Address       string `json:"address"`
	EmployeeCount *int   `json:"employeeCount"`
	Memo          string `json:"memo"`
}

func (in *companyInput) validate() []Issue {
	var issues []Issue
	if in.Name == "" {
		issues = append(issues, Issue{Field: "name", Message: "name is required"})
	}
	if in.Website != "" {
		u, err := url.Parse(in.Website)
		if err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, Issue{Field: "website", Message: "must be a valid URL"})
		}
	}
	if in.EmployeeCount != nil && *in.EmployeeCount <= 0 {
		issues = append(issues, Issue{Field: "employeeCount", Message: "must be positive"})
	}
	return issues
}

func (in *companyInput) apply(company *models.Company) {
	company.Name = in.Name
	company.Industry = in.Industry
	company.Website = in.Website
	company.Address = in.Address
	company.EmployeeCount = in.EmployeeCount
	company.Memo = in.Memo
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	companies, total, err := db.ListCompanies(r.Context(), s.db, page, limit)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if companies == nil {
		companies = []models.Company{}
	}

	writePage(w, companies, page, limit, total)
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var in companyInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if issues := in.validate(); issues != nil {
		writeValidationError(w, issues)
		return
	}

	company := &models.Company{}
	in.apply(company)

	if err := db.CreateCompany(r.Context(), s.db, company); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, company)
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	company, err := db.GetCompany(r.Context(), s.db, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in companyInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if issues := in.validate(); issues != nil {
		writeValidationError(w, issues)
		return
	}

	company, err := db.GetCompany(r.Context(), s.db, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	in.apply(company)
	if err := db.UpdateCompany(r.Context(), s.db, company); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := db.DeleteCompany(r.Context(), s.db, id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Company deleted"})
}

func (s *Server) handleCompanyDeletePreview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	impact, err := db.CompanyDeletePreview(r.Context(), s.db, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, impact)
}

func (s *Server) handleListCompanyTags(w http.ResponseWriter, r *http.Request) {
	s.listEntityTags(w, r, db.TagEntityCompany)
}

func (s *Server) handleAssignCompanyTag(w http.ResponseWriter, r *http.Request) {
	s.assignEntityTag(w, r, db.TagEntityCompany)
}

func (s *Server) handleUnassignCompanyTag(w http.ResponseWriter, r *http.Request) {
	s.unassignEntityTag(w, r, db.TagEntityCompany)
}
