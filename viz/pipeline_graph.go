// ABOUTME: Pipeline graph generation with GraphViz
// ABOUTME: Renders deals colored by stage with their companies and contacts
package viz

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/sodamhq/sodam/db"
	"github.com/sodamhq/sodam/models"
)

type GraphGenerator struct {
	db *sql.DB
}

func NewGraphGenerator(database *sql.DB) *GraphGenerator {
	return &GraphGenerator{db: database}
}

// stageColors maps each pipeline stage to a fill color.
var stageColors = map[models.DealStage]string{
	models.StageLead:        "lightgray",
	models.StageQualified:   "lightblue",
	models.StageProposal:    "lightyellow",
	models.StageNegotiation: "orange",
	models.StageClosedWon:   "lightgreen",
	models.StageClosedLost:  "lightpink",
}

// GeneratePipelineGraph creates a graph of all deals with their companies
// and contacts, deals colored by stage.
func (g *GraphGenerator) GeneratePipelineGraph(ctx context.Context) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() {
		if err := gv.Close(); err != nil {
			fmt.Printf("Error closing graphviz: %v\n", err)
		}
	}()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() {
		if err := graph.Close(); err != nil {
			fmt.Printf("Error closing graph: %v\n", err)
		}
	}()

	graph.SetLabel("Deal Pipeline")

	companies, _, err := db.ListCompanies(ctx, g.db, 1, 10000)
	if err != nil {
		return "", fmt.Errorf("failed to fetch companies: %w", err)
	}

	contacts, _, err := db.ListContacts(ctx, g.db, nil, 1, 10000)
	if err != nil {
		return "", fmt.Errorf("failed to fetch contacts: %w", err)
	}

	deals, _, err := db.ListDeals(ctx, g.db, "", 1, 10000)
	if err != nil {
		return "", fmt.Errorf("failed to fetch deals: %w", err)
	}

	companyNodes := make(map[string]*cgraph.Node)
	for _, company := range companies {
		node, err := graph.CreateNodeByName(fmt.Sprintf("company_%s", company.ID.String()[:8]))
		if err != nil {
			return "", fmt.Errorf("failed to create company node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n(Company)", company.Name))
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor("aliceblue")
		companyNodes[company.ID.String()] = node
	}

	contactNodes := make(map[string]*cgraph.Node)
	for _, contact := range contacts {
		node, err := graph.CreateNodeByName(fmt.Sprintf("contact_%s", contact.ID.String()[:8]))
		if err != nil {
			return "", fmt.Errorf("failed to create contact node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s", contact.Name, contact.Position))
		node.SetShape("ellipse")
		node.SetStyle("filled")
		node.SetFillColor("honeydew")
		contactNodes[contact.ID.String()] = node

		if contact.CompanyID != nil {
			if companyNode, ok := companyNodes[contact.CompanyID.String()]; ok {
				edge, err := graph.CreateEdgeByName("works_at", node, companyNode)
				if err != nil {
					return "", fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetLabel("works at")
				edge.SetStyle("dashed")
			}
		}
	}

	for _, deal := range deals {
		node, err := graph.CreateNodeByName(fmt.Sprintf("deal_%s", deal.ID.String()[:8]))
		if err != nil {
			return "", fmt.Errorf("failed to create deal node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%d\n(%s)", deal.Title, deal.Amount, deal.Stage))
		node.SetShape("diamond")
		node.SetStyle("filled")
		node.SetFillColor(stageColors[deal.Stage])

		if deal.CompanyID != nil {
			if companyNode, ok := companyNodes[deal.CompanyID.String()]; ok {
				edge, err := graph.CreateEdgeByName("deal_with", companyNode, node)
				if err != nil {
					return "", fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetLabel("deal")
			}
		}

		if deal.ContactID != nil {
			if contactNode, ok := contactNodes[deal.ContactID.String()]; ok {
				edge, err := graph.CreateEdgeByName("contact_for", contactNode, node)
				if err != nil {
					return "", fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetLabel("contact")
				edge.SetStyle("dotted")
			}
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}

	return buf.String(), nil
}
