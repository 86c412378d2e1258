// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for managing contacts
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

// AddContactCommand adds a new contact.
func AddContactCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-contact", flag.ExitOnError)
	name := fs.String("name", "", "Contact name (required)")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	position := fs.String("position", "", "Job title or position")
	company := fs.String("company", "", "Company name (created if not found)")
	memo := fs.String("memo", "", "Free-form memo")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	ctx := context.Background()
	contact := &models.Contact{
		Name:     *name,
		Email:    *email,
		Phone:    *phone,
		Position: *position,
		Memo:     *memo,
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
		contact.CompanyID = &existing.ID
	}

	if err := db.CreateContact(ctx, database, contact); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	fmt.Printf("✓ Contact created: %s (ID: %s)\n", contact.Name, contact.ID)
	if *company != "" {
		fmt.Printf("  Company: %s\n", *company)
	}
	return nil
}

// ListContactsCommand lists contacts, optionally filtered by company.
func ListContactsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-contacts", flag.ExitOnError)
	company := fs.String("company", "", "Filter by company name")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	ctx := context.Background()

	var companyID *uuid.UUID
	if *company != "" {
		existing, err := db.FindCompanyByName(ctx, database, *company)
		if err != nil {
			return fmt.Errorf("failed to lookup company: %w", err)
		}
		if existing == nil {
			fmt.Println("No contacts found")
			return nil
		}
		companyID = &existing.ID
	}

	contacts, total, err := db.ListContacts(ctx, database, companyID, 1, *limit)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}

	if len(contacts) == 0 {
		fmt.Println("No contacts found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEMAIL\tPOSITION\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t--------\t--")

	for _, contact := range contacts {
		email := contact.Email
		if email == "" {
			email = "-"
		}
		position := contact.Position
		if position == "" {
			position = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			contact.Name, email, position, contact.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nShowing %d of %d contact(s)\n", len(contacts), total)
	return nil
}

// UpdateContactCommand updates fields on an existing contact. Only flags
// that were set are applied.
func UpdateContactCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("update-contact", flag.ExitOnError)
	name := fs.String("name", "", "Contact name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	position := fs.String("position", "", "Job title or position")
	memo := fs.String("memo", "", "Free-form memo")
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: update-contact [flags] <id> (flags must come before the ID)")
	}

	contactID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid contact ID: %w", err)
	}

	ctx := context.Background()
	contact, err := db.GetContact(ctx, database, contactID)
	if err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			contact.Name = *name
		case "email":
			contact.Email = *email
		case "phone":
			contact.Phone = *phone
		case "position":
			contact.Position = *position
		case "memo":
			contact.Memo = *memo
		}
	})

	if err := db.UpdateContact(ctx, database, contact); err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	fmt.Printf("✓ Contact updated: %s\n", contact.Name)
	return nil
}

// DeleteContactCommand deletes a contact, previewing the impact first.
func DeleteContactCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("delete-contact", flag.ExitOnError)
	force := fs.Bool("force", false, "Delete without confirmation")
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: delete-contact [--force] <id>")
	}

	contactID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid contact ID: %w", err)
	}

	ctx := context.Background()
	impact, err := db.ContactDeletePreview(ctx, database, contactID)
	if err != nil {
		return err
	}

	fmt.Printf("Deleting contact: %s\n", impact.EntityName)
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

	if err := db.DeleteContact(ctx, database, contactID); err != nil {
		return err
	}

	fmt.Printf("✓ Deleted contact: %s\n", impact.EntityName)
	return nil
}

// SearchCommand searches across contacts, companies, and deals.
func SearchCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum results per entity type")
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: search [--limit <n>] <query>")
	}

	results, err := db.Search(context.Background(), database, fs.Arg(0), *limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results.Contacts) == 0 && len(results.Companies) == 0 && len(results.Deals) == 0 {
		fmt.Println("No matches")
		return nil
	}

	if len(results.Contacts) > 0 {
		fmt.Printf("Contacts (%d):\n", len(results.Contacts))
		for _, c := range results.Contacts {
			fmt.Printf("  %s  %s  %s\n", c.ID.String()[:8], c.Name, c.Email)
		}
	}
	if len(results.Companies) > 0 {
		fmt.Printf("Companies (%d):\n", len(results.Companies))
		for _, c := range results.Companies {
			fmt.Printf("  %s  %s  %s\n", c.ID.String()[:8], c.Name, c.Industry)
		}
	}
	if len(results.Deals) > 0 {
		fmt.Printf("Deals (%d):\n", len(results.Deals))
		for _, d := range results.Deals {
			fmt.Printf("  %s  %s  %d (%s)\n", d.ID.String()[:8], d.Title, d.Amount, d.Stage)
		}
	}

	return nil
}
