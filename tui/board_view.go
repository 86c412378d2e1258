package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

// renderBoardView draws the pipeline as stage columns with deals under each.
func (m Model) renderBoardView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("PIPELINE BOARD"))
	s.WriteString("\n\n")

	deals, _, err := db.ListDeals(context.Background(), m.db, "", 1, 1000)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	byStage := make(map[models.DealStage][]models.Deal)
	for _, deal := range deals {
		byStage[deal.Stage] = append(byStage[deal.Stage], deal)
	}

	var columns []string
	for i, stage := range models.DealStages {
		var col strings.Builder
		header := fmt.Sprintf("%s (%d)", stage, len(byStage[stage]))
		if i == m.boardStage {
			col.WriteString(stageHeaderStyle.Render(header))
		} else {
			col.WriteString(tabInactiveStyle.Render(header))
		}
		col.WriteString("\n")

		for j, deal := range byStage[stage] {
			line := truncate(deal.Title, 18)
			if i == m.boardStage && j == m.boardRow {
				line = selectedDealStyle.Render(line)
			}
			col.WriteString(line)
			col.WriteString("\n")
		}

		columns = append(columns, lipgloss.NewStyle().Width(20).Render(col.String()))
	}

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	s.WriteString("\n")

	if m.banner != "" {
		s.WriteString(bannerStyle.Render(m.banner))
		s.WriteString("\n")
	}

	help := []string{
		"←/→: Switch stage",
		"↑/↓: Select deal",
		"H/L: Move deal",
		"Enter: Details",
		"Esc: Back",
		"q: Quit",
	}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))

	return s.String()
}

func (m Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.banner = ""
	switch msg.String() {
	case "left", "h":
		if m.boardStage > 0 {
			m.boardStage--
			m.boardRow = 0
		}
	case "right", "l":
		if m.boardStage < len(models.DealStages)-1 {
			m.boardStage++
			m.boardRow = 0
		}
	case "up", "k":
		if m.boardRow > 0 {
			m.boardRow--
		}
	case "down", "j":
		m.boardRow++
	case "H":
		return m.moveSelectedDeal(-1)
	case "L":
		return m.moveSelectedDeal(1)
	case "enter":
		if deal := m.selectedBoardDeal(); deal != nil {
			m.viewMode = ViewDetail
			m.selectedID = deal.ID.String()
		}
	}

	return m, nil
}

// moveSelectedDeal shifts the selected deal one stage left or right. The
// deal's updated_at from the board load is used as the version token, so a
// concurrent edit between render and keypress is caught and surfaced.
func (m Model) moveSelectedDeal(direction int) (tea.Model, tea.Cmd) {
	deal := m.selectedBoardDeal()
	if deal == nil {
		return m, nil
	}

	target := m.boardStage + direction
	if target < 0 || target >= len(models.DealStages) {
		return m, nil
	}

	_, err := db.TransitionStage(context.Background(), m.db, deal.ID, models.DealStages[target], deal.UpdatedAt)
	if errors.Is(err, db.ErrStaleDeal) {
		m.banner = "⚠ Deal was modified by another user - board refreshed, try again"
		return m, nil
	}
	if err != nil {
		m.banner = fmt.Sprintf("⚠ %v", err)
		return m, nil
	}

	m.boardStage = target
	m.boardRow = 0
	return m, nil
}

func (m Model) selectedBoardDeal() *models.Deal {
	deals, _, err := db.ListDeals(context.Background(), m.db, models.DealStages[m.boardStage], 1, 1000)
	if err != nil || m.boardRow >= len(deals) {
		return nil
	}
	return &deals[m.boardRow]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
