// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Provides ASCII dashboard for CRM overview
package viz

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

type DashboardStats struct {
	PipelineByStage map[models.DealStage]db.StageSummary

	TotalContacts  int
	TotalCompanies int
	TotalDeals     int

	// Needs attention
	OverdueTasks []OverdueTask
	StaleDeals   []StaleDeal
}

type OverdueTask struct {
	Title    string
	DaysPast int
}

type StaleDeal struct {
	Title     string
	DaysSince int
}

func GenerateDashboardStats(ctx context.Context, database *sql.DB) (*DashboardStats, error) {
	stats := &DashboardStats{}

	summary, err := db.DealStageSummary(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize pipeline: %w", err)
	}
	stats.PipelineByStage = summary
	for _, s := range summary {
		stats.TotalDeals += s.Count
	}

	_, totalContacts, err := db.ListContacts(ctx, database, nil, 1, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to count contacts: %w", err)
	}
	stats.TotalContacts = totalContacts

	_, totalCompanies, err := db.ListCompanies(ctx, database, 1, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}
	stats.TotalCompanies = totalCompanies

	now := time.Now()

	// Open tasks past their due date
	open := false
	tasks, _, err := db.ListTasks(ctx, database, db.TaskFilter{Completed: &open}, 1, 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	for _, task := range tasks {
		if task.DueDate != nil && task.DueDate.Before(now) {
			stats.OverdueTasks = append(stats.OverdueTasks, OverdueTask{
				Title:    task.Title,
				DaysPast: int(now.Sub(*task.DueDate).Hours() / 24),
			})
		}
	}

	// Open deals untouched for 14+ days
	deals, _, err := db.ListDeals(ctx, database, "", 1, 10000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}
	for _, deal := range deals {
		if deal.Stage == models.StageClosedWon || deal.Stage == models.StageClosedLost {
			continue
		}
		daysSince := int(now.Sub(deal.UpdatedAt).Hours() / 24)
		if daysSince > 14 {
			stats.StaleDeals = append(stats.StaleDeals, StaleDeal{
				Title:     deal.Title,
				DaysSince: daysSince,
			})
		}
	}

	return stats, nil
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  SODAM CRM DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stats.PipelineByStage)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts  🏢 %d companies  💼 %d deals\n\n",
		stats.TotalContacts, stats.TotalCompanies, stats.TotalDeals))

	if len(stats.OverdueTasks) > 0 || len(stats.StaleDeals) > 0 {
		out.WriteString("NEEDS ATTENTION\n")

		if len(stats.OverdueTasks) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d tasks past their due date\n", len(stats.OverdueTasks)))
		}

		if len(stats.StaleDeals) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d open deals untouched for 14+ days\n", len(stats.StaleDeals)))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, pipeline map[models.DealStage]db.StageSummary) {
	maxCount := 0
	for _, s := range pipeline {
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, stage := range models.DealStages {
		s := pipeline[stage]

		barLength := (s.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)

		out.WriteString(fmt.Sprintf("  %-12s %s  %2d (%d)\n",
			stage, bar, s.Count, s.Total))
	}
}
