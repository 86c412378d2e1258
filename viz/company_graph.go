// ABOUTME: Single-company graph generation
// ABOUTME: Renders one company with its contacts and deals
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/google/uuid"
	"github.com/sodamhq/sodam/db"
)

// GenerateCompanyGraph renders one company with its contacts and deals.
func (g *GraphGenerator) GenerateCompanyGraph(ctx context.Context, companyID uuid.UUID) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.LRRank)

	company, err := db.GetCompany(ctx, g.db, companyID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch company: %w", err)
	}

	companyNode, err := graph.CreateNodeByName("company")
	if err != nil {
		return "", fmt.Errorf("failed to create company node: %w", err)
	}
	companyNode.SetLabel(company.Name)
	companyNode.SetShape("box")
	companyNode.SetStyle("filled")
	companyNode.SetFillColor("aliceblue")

	contacts, _, err := db.ListContacts(ctx, g.db, &companyID, 1, 1000)
	if err != nil {
		return "", fmt.Errorf("failed to fetch contacts: %w", err)
	}

	contactNodes := make(map[string]*cgraph.Node)
	for _, contact := range contacts {
		node, err := graph.CreateNodeByName(fmt.Sprintf("contact_%s", contact.ID.String()[:8]))
		if err != nil {
			return "", fmt.Errorf("failed to create contact node: %w", err)
		}
		node.SetLabel(contact.Name)
		node.SetShape("ellipse")
		node.SetStyle("filled")
		node.SetFillColor("honeydew")
		contactNodes[contact.ID.String()] = node

		edge, err := graph.CreateEdgeByName("works_at", node, companyNode)
		if err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetStyle("dashed")
	}

	deals, _, err := db.ListDeals(ctx, g.db, "", 1, 10000)
	if err != nil {
		return "", fmt.Errorf("failed to fetch deals: %w", err)
	}

	for _, deal := range deals {
		if deal.CompanyID == nil || *deal.CompanyID != companyID {
			continue
		}

		node, err := graph.CreateNodeByName(fmt.Sprintf("deal_%s", deal.ID.String()[:8]))
		if err != nil {
			return "", fmt.Errorf("failed to create deal node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n(%s)", deal.Title, deal.Stage))
		node.SetShape("diamond")
		node.SetStyle("filled")
		node.SetFillColor(stageColors[deal.Stage])

		edge, err := graph.CreateEdgeByName("deal_with", companyNode, node)
		if err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetLabel("deal")

		if deal.ContactID != nil {
			if contactNode, ok := contactNodes[deal.ContactID.String()]; ok {
				cedge, err := graph.CreateEdgeByName("contact_for", contactNode, node)
				if err != nil {
					return "", fmt.Errorf("failed to create edge: %w", err)
				}
				cedge.SetStyle("dotted")
			}
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}

	return buf.String(), nil
}
