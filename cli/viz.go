// ABOUTME: Visualization CLI commands
// ABOUTME: Dashboard and GraphViz output for the pipeline
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/viz"
)

// DashboardCommand prints the terminal dashboard.
func DashboardCommand(database *sql.DB, args []string) error {
	stats, err := viz.GenerateDashboardStats(context.Background(), database)
	if err != nil {
		return fmt.Errorf("failed to generate dashboard: %w", err)
	}

	fmt.Print(viz.RenderDashboard(stats))
	return nil
}

// GraphCommand writes a GraphViz DOT graph to stdout or a file.
func GraphCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	graphType := fs.String("type", "pipeline", "Graph type (pipeline, company)")
	entityID := fs.String("id", "", "Entity UUID (required for company)")
	output := fs.String("output", "", "Output file (default stdout)")
	_ = fs.Parse(args)

	ctx := context.Background()
	generator := viz.NewGraphGenerator(database)

	var dot string
	var err error
	switch *graphType {
	case "pipeline":
		dot, err = generator.GeneratePipelineGraph(ctx)
	case "company":
		if *entityID == "" {
			return fmt.Errorf("--id is required for company graphs")
		}
		var id uuid.UUID
		id, err = uuid.Parse(*entityID)
		if err != nil {
			return fmt.Errorf("invalid --id value: %w", err)
		}
		dot, err = generator.GenerateCompanyGraph(ctx, id)
	default:
		return fmt.Errorf("unknown graph type: %s (valid: pipeline, company)", *graphType)
	}
	if err != nil {
		return fmt.Errorf("failed to generate graph: %w", err)
	}

	if *output == "" {
		fmt.Println(dot)
		return nil
	}

	if err := os.WriteFile(*output, []byte(dot), 0o644); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}
	fmt.Printf("✓ Graph written to %s\n", *output)
	return nil
}
