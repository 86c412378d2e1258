package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sodamhq/sodam/db"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("SODAM CRM"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	s.WriteString(m.renderTable())
	s.WriteString("\n\n")

	if m.banner != "" {
		s.WriteString(bannerStyle.Render(m.banner))
		s.WriteString("\n")
	}

	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	tabs := []string{"Contacts", "Companies", "Deals", "Tasks"}
	var rendered []string

	for i, tab := range tabs {
		if EntityType(i) == m.entityType {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTable() string {
	switch m.entityType {
	case EntityContacts:
		return m.renderContactsTable()
	case EntityCompanies:
		return m.renderCompaniesTable()
	case EntityDeals:
		return m.renderDealsTable()
	case EntityTasks:
		return m.renderTasksTable()
	}
	return ""
}

func (m Model) renderContactsTable() string {
	ctx := context.Background()
	contacts, _, err := db.ListContacts(ctx, m.db, nil, 1, 100)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	columns := []table.Column{
		{Title: "Name", Width: 30},
		{Title: "Email", Width: 30},
		{Title: "Company", Width: 20},
	}

	var rows []table.Row
	for _, contact := range contacts {
		companyName := ""
		if contact.CompanyID != nil {
			if company, err := db.GetCompany(ctx, m.db, *contact.CompanyID); err == nil {
				companyName = company.Name
			}
		}

		rows = append(rows, table.Row{
			contact.Name,
			contact.Email,
			companyName,
		})
	}

	return m.buildTable(columns, rows)
}

func (m Model) renderCompaniesTable() string {
	companies, _, err := db.ListCompanies(context.Background(), m.db, 1, 100)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	columns := []table.Column{
		{Title: "Name", Width: 30},
		{Title: "Industry", Width: 20},
		{Title: "Website", Width: 30},
	}

	var rows []table.Row
	for _, company := range companies {
		rows = append(rows, table.Row{
			company.Name,
			company.Industry,
			company.Website,
		})
	}

	return m.buildTable(columns, rows)
}

func (m Model) renderDealsTable() string {
	ctx := context.Background()
	deals, _, err := db.ListDeals(ctx, m.db, "", 1, 100)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	columns := []table.Column{
		{Title: "Title", Width: 30},
		{Title: "Company", Width: 25},
		{Title: "Stage", Width: 13},
		{Title: "Amount", Width: 12},
	}

	var rows []table.Row
	for _, deal := range deals {
		companyName := ""
		if deal.CompanyID != nil {
			if company, err := db.GetCompany(ctx, m.db, *deal.CompanyID); err == nil {
				companyName = company.Name
			}
		}

		rows = append(rows, table.Row{
			deal.Title,
			companyName,
			string(deal.Stage),
			fmt.Sprintf("%d", deal.Amount),
		})
	}

	return m.buildTable(columns, rows)
}

func (m Model) renderTasksTable() string {
	tasks, _, err := db.ListTasks(context.Background(), m.db, db.TaskFilter{}, 1, 100)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	columns := []table.Column{
		{Title: "Title", Width: 35},
		{Title: "Priority", Width: 10},
		{Title: "Due", Width: 12},
		{Title: "Done", Width: 5},
	}

	var rows []table.Row
	for _, task := range tasks {
		due := ""
		if task.DueDate != nil {
			due = task.DueDate.Format("2006-01-02")
		}
		done := ""
		if task.IsCompleted {
			done = "✓"
		}
		rows = append(rows, table.Row{
			task.Title,
			string(task.Priority),
			due,
			done,
		})
	}

	return m.buildTable(columns, rows)
}

func (m Model) buildTable(columns []table.Column, rows []table.Row) string {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.height-10),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"Enter: View details",
		"b: Pipeline board",
		"d: Dashboard",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.banner = ""
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		m.selectedRow++
	case "tab":
		m.entityType = (m.entityType + 1) % 4
		m.selectedRow = 0
	case "enter":
		if m.entityType == EntityDeals {
			m.viewMode = ViewDetail
			m.selectedID = m.getSelectedDealID()
		}
	}

	return m, nil
}

func (m Model) getSelectedDealID() string {
	deals, _, err := db.ListDeals(context.Background(), m.db, "", 1, 100)
	if err == nil && m.selectedRow < len(deals) {
		return deals[m.selectedRow].ID.String()
	}
	return ""
}
