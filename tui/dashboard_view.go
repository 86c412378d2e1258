package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/sodamhq/sodam/viz"
)

func (m Model) renderDashboardView() string {
	stats, err := viz.GenerateDashboardStats(context.Background(), m.db)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	var s strings.Builder
	s.WriteString(viz.RenderDashboard(stats))
	s.WriteString("\n")

	help := []string{"Esc: Back", "q: Quit"}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))

	return s.String()
}
