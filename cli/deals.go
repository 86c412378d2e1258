// ABOUTME: Deal CLI commands
// ABOUTME: Human-friendly commands for managing deals and the pipeline
package cli

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

// AddDealCommand adds a new deal.
func AddDealCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-deal", flag.ExitOnError)
	title := fs.String("title", "", "Deal title (required)")
	company := fs.String("company", "", "Company name (created if not found)")
	amount := fs.Int64("amount", 0, "Deal amount")
	stage := fs.String("stage", "lead", "Stage (lead, qualified, proposal, negotiation, closed_won, closed_lost)")
	memo := fs.String("memo", "", "Free-form memo")
	_ = fs.Parse(args)

	if *title == "" {
		return fmt.Errorf("--title is required")
	}
	if !models.ValidStage(models.DealStage(*stage)) {
		return fmt.Errorf("invalid stage: %s", *stage)
	}

	ctx := context.Background()
	deal := &models.Deal{
		Title:  *title,
		Amount: *amount,
		Stage:  models.DealStage(*stage),
		Memo:   *memo,
	}

	if *company != "" {
		existing, err := db.FindCompanyByName(ctx, database, *company)
		if err != nil {
			return fmt.Errorf("failed to lookup company: %w", err)
		}
		if existing == nil {
			existing = &models.Company{Name: *company}
			if err := db.CreateCompany(ctx, database, existing); err != nil {
				return fmt.Errorf("failed to create company: %w", err)
			}
		}
		deal.CompanyID = &existing.ID
	}

	if err := db.CreateDeal(ctx, database, deal); err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}

	fmt.Printf("✓ Deal created: %s (ID: %s)\n", deal.Title, deal.ID)
	if *company != "" {
		fmt.Printf("  Company: %s\n", *company)
	}
	fmt.Printf("  Amount: %d\n", deal.Amount)
	fmt.Printf("  Stage: %s\n", deal.Stage)

	return nil
}

// ListDealsCommand lists deals, optionally filtered by stage.
func ListDealsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-deals", flag.ExitOnError)
	stage := fs.String("stage", "", "Filter by stage")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	if *stage != "" && !models.ValidStage(models.DealStage(*stage)) {
		return fmt.Errorf("invalid stage: %s", *stage)
	}

	ctx := context.Background()
	deals, total, err := db.ListDeals(ctx, database, models.DealStage(*stage), 1, *limit)
	if err != nil {
		return fmt.Errorf("failed to list deals: %w", err)
	}

	if len(deals) == 0 {
		fmt.Println("No deals found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TITLE\tCOMPANY\tAMOUNT\tSTAGE\tUPDATED\tID")
	_, _ = fmt.Fprintln(w, "-----\t-------\t------\t-----\t-------\t--")

	for _, deal := range deals {
		companyName := "-"
		if deal.CompanyID != nil {
			if company, err := db.GetCompany(ctx, database, *deal.CompanyID); err == nil {
				companyName = company.Name
			}
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			deal.Title, companyName, deal.Amount, deal.Stage,
			deal.UpdatedAt.Format("2006-01-02 15:04"), deal.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nShowing %d of %d deal(s)\n", len(deals), total)
	return nil
}

// MoveDealCommand moves a deal to another stage. The move is rejected when
// the deal changed since it was last read.
func MoveDealCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("move-deal", flag.ExitOnError)
	stage := fs.String("stage", "", "Target stage (required)")
	asOf := fs.String("as-of", "", "The updated_at you last saw, ISO 8601 (defaults to the current one)")
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: move-deal [--stage <stage>] [--as-of <time>] <id>")
	}
	if *stage == "" {
		return fmt.Errorf("--stage is required")
	}

	dealID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid deal ID: %w", err)
	}

	ctx := context.Background()

	var token time.Time
	if *asOf != "" {
		token, err = time.Parse(time.RFC3339, *asOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of value (use ISO 8601/RFC3339): %w", err)
		}
	} else {
		deal, err := db.GetDeal(ctx, database, dealID)
		if err != nil {
			return err
		}
		token = deal.UpdatedAt
	}

	deal, err := db.TransitionStage(ctx, database, dealID, models.DealStage(*stage), token)
	if errors.Is(err, db.ErrStaleDeal) {
		return fmt.Errorf("deal was modified by another user; run 'sodam crm list-deals' to see its current state and retry")
	}
	if err != nil {
		return err
	}

	fmt.Printf("✓ Deal moved: %s → %s\n", deal.Title, deal.Stage)
	fmt.Printf("  Updated: %s\n", deal.UpdatedAt.Format(time.RFC3339))
	return nil
}

// DeleteDealCommand deletes a deal.
func DeleteDealCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("delete-deal", flag.ExitOnError)
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: delete-deal <id>")
	}

	dealID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid deal ID: %w", err)
	}

	if err := db.DeleteDeal(context.Background(), database, dealID); err != nil {
		return err
	}

	fmt.Printf("✓ Deleted deal: %s\n", dealID)
	return nil
}

// PipelineCommand prints the per-stage deal summary.
func PipelineCommand(database *sql.DB, args []string) error {
	summary, err := db.DealStageSummary(context.Background(), database)
	if err != nil {
		return fmt.Errorf("failed to summarize pipeline: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STAGE\tDEALS\tTOTAL")
	_, _ = fmt.Fprintln(w, "-----\t-----\t-----")

	var totalCount int
	var totalAmount int64
	for _, stage := range models.DealStages {
		s := summary[stage]
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\n", stage, s.Count, s.Total)
		totalCount += s.Count
		totalAmount += s.Total
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d deal(s) - %d\n", totalCount, totalAmount)
	return nil
}
