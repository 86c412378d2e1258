// ABOUTME: Web UI server with embedded templates
// ABOUTME: Provides a dashboard and pipeline board at localhost
package web

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
	"github.com/sodamhq/sodam/viz"
)

//go:embed templates/*
var templatesFS embed.FS

type Server struct {
	db        *sql.DB
	templates *template.Template
	generator *viz.GraphGenerator
}

func NewServer(database *sql.DB) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		db:        database,
		templates: tmpl,
		generator: viz.NewGraphGenerator(database),
	}, nil
}

func (s *Server) Start(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleDashboard)
	mux.HandleFunc("GET /contacts", s.handleContacts)
	mux.HandleFunc("GET /companies", s.handleCompanies)
	mux.HandleFunc("GET /board", s.handleBoard)
	mux.HandleFunc("GET /graphs", s.handleGraphs)

	// Partials for HTMX
	mux.HandleFunc("GET /partials/deal-detail", s.handleDealDetail)
	mux.HandleFunc("GET /partials/graph", s.handleGraphPartial)
	mux.HandleFunc("POST /board/move", s.handleBoardMove)

	addr := fmt.Sprintf(":%d", port)
	log.Printf("Starting web server at http://localhost%s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	err := s.templates.ExecuteTemplate(w, name, data)
	if err != nil {
		log.Printf("Template error rendering %s: %v", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	stats, err := viz.GenerateDashboardStats(r.Context(), s.db)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Stats":           stats,
		"Stages":          models.DealStages,
		"Title":           "Dashboard",
		"ContentTemplate": "dashboard-content",
	}

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	contacts, _, err := db.ListContacts(r.Context(), s.db, nil, 1, 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	type ContactView struct {
		ID          string
		Name        string
		Email       string
		Position    string
		CompanyName string
	}

	var contactViews []ContactView
	for _, contact := range contacts {
		companyName := ""
		if contact.CompanyID != nil {
			if company, err := db.GetCompany(r.Context(), s.db, *contact.CompanyID); err == nil {
				companyName = company.Name
			}
		}

		contactViews = append(contactViews, ContactView{
			ID:          contact.ID.String(),
			Name:        contact.Name,
			Email:       contact.Email,
			Position:    contact.Position,
			CompanyName: companyName,
		})
	}

	data := map[string]interface{}{
		"Contacts":        contactViews,
		"Title":           "Contacts",
		"ContentTemplate": "contacts-content",
	}

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	companies, _, err := db.ListCompanies(r.Context(), s.db, 1, 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Companies":       companies,
		"Title":           "Companies",
		"ContentTemplate": "companies-content",
	}

	s.renderTemplate(w, "layout.html", data)
}

// DealCard is what the board template renders per deal. UpdatedAtToken is
// echoed back on stage moves so concurrent edits are detected.
type DealCard struct {
	ID             string
	Title          string
	Amount         int64
	CompanyName    string
	UpdatedAtToken string
}

type StageColumn struct {
	Stage models.DealStage
	Deals []DealCard
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	columns, err := s.boardColumns(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Columns":         columns,
		"Stages":          models.DealStages,
		"Conflict":        r.URL.Query().Get("conflict") == "1",
		"Title":           "Pipeline",
		"ContentTemplate": "board-content",
	}

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) boardColumns(r *http.Request) ([]StageColumn, error) {
	deals, _, err := db.ListDeals(r.Context(), s.db, "", 1, 1000)
	if err != nil {
		return nil, err
	}

	byStage := make(map[models.DealStage][]DealCard)
	for _, deal := range deals {
		companyName := ""
		if deal.CompanyID != nil {
			if company, err := db.GetCompany(r.Context(), s.db, *deal.CompanyID); err == nil {
				companyName = company.Name
			}
		}

		byStage[deal.Stage] = append(byStage[deal.Stage], DealCard{
			ID:             deal.ID.String(),
			Title:          deal.Title,
			Amount:         deal.Amount,
			CompanyName:    companyName,
			UpdatedAtToken: deal.UpdatedAt.Format(time.RFC3339Nano),
		})
	}

	var columns []StageColumn
	for _, stage := range models.DealStages {
		columns = append(columns, StageColumn{Stage: stage, Deals: byStage[stage]})
	}
	return columns, nil
}

// handleBoardMove moves a deal to another stage. The form carries the
// updated_at the board was rendered with; a stale token redirects back
// with a conflict flag instead of applying the move.
func (s *Server) handleBoardMove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	dealID, err := uuid.Parse(r.FormValue("deal_id"))
	if err != nil {
		http.Error(w, "Invalid deal ID", http.StatusBadRequest)
		return
	}

	token, err := time.Parse(time.RFC3339Nano, r.FormValue("updated_at"))
	if err != nil {
		http.Error(w, "Invalid updated_at", http.StatusBadRequest)
		return
	}

	stage := models.DealStage(r.FormValue("stage"))
	_, err = db.TransitionStage(r.Context(), s.db, dealID, stage, token)
	switch {
	case err == nil:
		http.Redirect(w, r, "/board", http.StatusSeeOther)
	case errors.Is(err, db.ErrStaleDeal):
		http.Redirect(w, r, "/board?conflict=1", http.StatusSeeOther)
	case errors.Is(err, db.ErrDealNotFound):
		http.Error(w, "Deal not found", http.StatusNotFound)
	case errors.Is(err, db.ErrInvalidStage):
		http.Error(w, "Invalid stage", http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleDealDetail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	deal, err := db.GetDeal(r.Context(), s.db, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	companyName := ""
	if deal.CompanyID != nil {
		if company, err := db.GetCompany(r.Context(), s.db, *deal.CompanyID); err == nil {
			companyName = company.Name
		}
	}

	contactName := ""
	if deal.ContactID != nil {
		if contact, err := db.GetContact(r.Context(), s.db, *deal.ContactID); err == nil {
			contactName = contact.Name
		}
	}

	activities, _, err := db.ListActivities(r.Context(), s.db, db.ActivityFilter{DealID: &id}, 1, 50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Deal":        deal,
		"CompanyName": companyName,
		"ContactName": contactName,
		"Activities":  activities,
	}

	s.renderTemplate(w, "deal-detail.html", data)
}

func (s *Server) handleGraphs(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Title":           "Graphs",
		"ContentTemplate": "graphs-content",
	}

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleGraphPartial(w http.ResponseWriter, r *http.Request) {
	graphType := r.URL.Query().Get("type")
	entityIDStr := r.URL.Query().Get("entity_id")

	var dot string
	var err error

	switch graphType {
	case "company":
		if entityIDStr == "" {
			http.Error(w, "Company ID required", http.StatusBadRequest)
			return
		}
		companyID, parseErr := uuid.Parse(entityIDStr)
		if parseErr != nil {
			http.Error(w, "Invalid company ID", http.StatusBadRequest)
			return
		}
		dot, err = s.generator.GenerateCompanyGraph(r.Context(), companyID)

	case "pipeline":
		dot, err = s.generator.GeneratePipelineGraph(r.Context())

	default:
		http.Error(w, "Invalid graph type", http.StatusBadRequest)
		return
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"DOT": dot,
	}

	s.renderTemplate(w, "graph.html", data)
}
