// ABOUTME: Company CLI commands
// ABOUTME: Human-friendly commands for managing companies
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

// AddCompanyCommand adds a new company.
func AddCompanyCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-company", flag.ExitOnError)
	name := fs.String("name", "", "Company name (required)")
	industry := fs.String("industry", "", "Industry sector")
	website := fs.String("website", "", "Company website URL")
	memo := fs.String("memo", "", "Free-form memo")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	company := &models.Company{
		Name:     *name,
		Industry: *industry,
		Website:  *website,
		Memo:     *memo,
	}

	if err := db.CreateCompany(context.Background(), database, company); err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}

	fmt.Printf("✓ Company created: %s (ID: %s)\n", company.Name, company.ID)
	return nil
}

// ListCompaniesCommand lists companies.
func ListCompaniesCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-companies", flag.ExitOnError)
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	companies, total, err := db.ListCompanies(context.Background(), database, 1, *limit)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	if len(companies) == 0 {
		fmt.Println("No companies found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tINDUSTRY\tWEBSITE\tID")
	_, _ = fmt.Fprintln(w, "----\t--------\t-------\t--")

	for _, company := range companies {
		industry := company.Industry
		if industry == "" {
			industry = "-"
		}
		website := company.Website
		if website == "" {
			website = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			company.Name, industry, website, company.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nShowing %d of %d company(ies)\n", len(companies), total)
	return nil
}

// UpdateCompanyCommand updates fields on an existing company. Only flags
// that were set are applied.
func UpdateCompanyCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("update-company", flag.ExitOnError)
	name := fs.String("name", "", "Company name")
	industry := fs.String("industry", "", "Industry sector")
	website := fs.String("website", "", "Company website URL")
	memo := fs.String("memo", "", "Free-form memo")
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: update-company [flags] <id> (flags must come before the ID)")
	}

	companyID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid company ID: %w", err)
	}

	ctx := context.Background()
	company, err := db.GetCompany(ctx, database, companyID)
	if err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			company.Name = *name
		case "industry":
			company.Industry = *industry
		case "website":
			company.Website = *website
		case "memo":
			company.Memo = *memo
		}
	})

	if err := db.UpdateCompany(ctx, database, company); err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}

	fmt.Printf("✓ Company updated: %s\n", company.Name)
	return nil
}

// DeleteCompanyCommand deletes a company, previewing the impact first.
func DeleteCompanyCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("delete-company", flag.ExitOnError)
	force := fs.Bool("force", false, "Delete without confirmation")
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: delete-company [--force] <id>")
	}

	companyID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid company ID: %w", err)
	}

	ctx := context.Background()
	impact, err := db.CompanyDeletePreview(ctx, database, companyID)
	if err != nil {
		return err
	}

	fmt.Printf("Deleting company: %s\n", impact.EntityName)
	fmt.Printf("  Contacts detached: %d\n", impact.SetNull.Contacts)
	fmt.Printf("  Deals detached: %d\n", impact.SetNull.Deals)
	fmt.Printf("  Activities deleted: %d\n", impact.Cascade.Activities)
	fmt.Printf("  Tasks deleted: %d\n", impact.Cascade.Tasks)

	if !*force {
		fmt.Print("Proceed? [y/N]: ")
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := db.DeleteCompany(ctx, database, companyID); err != nil {
		return err
	}

	fmt.Printf("✓ Deleted company: %s\n", impact.EntityName)
	return nil
}
