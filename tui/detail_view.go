package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/sodamhq/sodam/db"
)

// renderDetailView draws a single deal with its timeline.
func (m Model) renderDetailView() string {
	id, err := uuid.Parse(m.selectedID)
	if err != nil {
		return "No deal selected"
	}

	ctx := context.Background()
	deal, err := db.GetDeal(ctx, m.db, id)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(deal.Title))
	s.WriteString("\n\n")

	s.WriteString(fmt.Sprintf("Stage:   %s\n", deal.Stage))
	s.WriteString(fmt.Sprintf("Amount:  %d\n", deal.Amount))
	if deal.ExpectedCloseDate != nil {
		s.WriteString(fmt.Sprintf("Close:   %s\n", deal.ExpectedCloseDate.Format("2006-01-02")))
	}
	s.WriteString(fmt.Sprintf("Updated: %s\n", deal.UpdatedAt.Format("2006-01-02 15:04:05")))

	if deal.CompanyID != nil {
		if company, err := db.GetCompany(ctx, m.db, *deal.CompanyID); err == nil {
			s.WriteString(fmt.Sprintf("Company: %s\n", company.Name))
		}
	}
	if deal.ContactID != nil {
		if contact, err := db.GetContact(ctx, m.db, *deal.ContactID); err == nil {
			s.WriteString(fmt.Sprintf("Contact: %s\n", contact.Name))
		}
	}
	if deal.Memo != "" {
		s.WriteString(fmt.Sprintf("\nMemo: %s\n", deal.Memo))
	}

	activities, total, err := db.ListActivities(ctx, m.db, db.ActivityFilter{DealID: &id}, 1, 20)
	if err == nil && total > 0 {
		s.WriteString(fmt.Sprintf("\nTimeline (%d):\n", total))
		for _, activity := range activities {
			s.WriteString(fmt.Sprintf("  [%s] %s  %s\n",
				activity.Type, activity.Title, activity.CreatedAt.Format("2006-01-02 15:04")))
		}
	}

	if m.banner != "" {
		s.WriteString("\n")
		s.WriteString(bannerStyle.Render(m.banner))
		s.WriteString("\n")
	}

	help := []string{"Esc: Back", "b: Board", "q: Quit"}
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))

	return s.String()
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.banner = ""
	return m, nil
}
