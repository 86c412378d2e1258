// ABOUTME: Tag CLI commands
// ABOUTME: Create, list, delete, and attach tags to CRM entities
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

// AddTagCommand creates a new tag.
func AddTagCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-tag", flag.ExitOnError)
	name := fs.String("name", "", "Tag name (required)")
	color := fs.String("color", "#808080", "Hex color (#RRGGBB)")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	tag := &models.Tag{Name: *name, Color: *color}
	if err := db.CreateTag(context.Background(), database, tag); err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}

	fmt.Printf("✓ Tag created: %s (ID: %s)\n", tag.Name, tag.ID)
	return nil
}

// ListTagsCommand lists all tags.
func ListTagsCommand(database *sql.DB, args []string) error {
	tags, err := db.ListTags(context.Background(), database)
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}

	if len(tags) == 0 {
		fmt.Println("No tags found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCOLOR\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t--")
	for _, tag := range tags {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", tag.Name, tag.Color, tag.ID.String()[:8])
	}
	_ = w.Flush()

	return nil
}

// DeleteTagCommand deletes a tag and its assignments.
func DeleteTagCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("delete-tag", flag.ExitOnError)
	_ = fs.Parse(args)

	if len(fs.Args()) != 1 {
		return fmt.Errorf("usage: delete-tag <id>")
	}

	tagID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid tag ID: %w", err)
	}

	if err := db.DeleteTag(context.Background(), database, tagID); err != nil {
		return err
	}

	fmt.Println("✓ Tag deleted")
	return nil
}

// TagCommand attaches or detaches a tag on a contact, company, or deal.
func TagCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("tag", flag.ExitOnError)
	entity := fs.String("entity", "contact", "Entity type (contact, company, deal)")
	remove := fs.Bool("remove", false, "Detach instead of attach")
	_ = fs.Parse(args)

	if len(fs.Args()) != 2 {
		return fmt.Errorf("usage: tag [--entity <type>] [--remove] <entity-id> <tag-id>")
	}

	tagEntity := db.TagEntity(*entity)
	switch tagEntity {
	case db.TagEntityContact, db.TagEntityCompany, db.TagEntityDeal:
	default:
		return fmt.Errorf("unknown entity type: %s (valid: contact, company, deal)", *entity)
	}

	entityID, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid entity ID: %w", err)
	}
	tagID, err := uuid.Parse(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("invalid tag ID: %w", err)
	}

	ctx := context.Background()
	if *remove {
		if err := db.UnassignTag(ctx, database, tagEntity, entityID, tagID); err != nil {
			return err
		}
		fmt.Println("✓ Tag detached")
		return nil
	}

	if err := db.AssignTag(ctx, database, tagEntity, entityID, tagID); err != nil {
		return err
	}
	fmt.Println("✓ Tag attached")
	return nil
}
